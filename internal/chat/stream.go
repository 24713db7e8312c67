package chat

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// SegmentKind tells markdown segments from progress markers.
type SegmentKind int

const (
	SegmentMarkdown SegmentKind = iota
	SegmentProgress
)

// Segment is one piece of a response.
type Segment struct {
	Kind SegmentKind
	Text string
}

// Stream is an append-only response rendered to a terminal as it grows.
type Stream struct {
	mu       sync.Mutex
	out      io.Writer
	segments []Segment
}

// NewStream creates a Stream writing to out.
func NewStream(out io.Writer) *Stream {
	return &Stream{out: out}
}

// Markdown appends a markdown segment.
func (s *Stream) Markdown(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.segments = append(s.segments, Segment{Kind: SegmentMarkdown, Text: text})
	fmt.Fprintln(s.out, renderMarkdown(text))
}

// Progress appends a progress marker.
func (s *Stream) Progress(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.segments = append(s.segments, Segment{Kind: SegmentProgress, Text: text})
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(s.out, "%s %s\n", green("▸"), text)
}

// Error renders an error message.
func (s *Stream) Error(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(s.out, "%s %v\n", red("Error:"), err)
}

// Segments returns a copy of everything appended so far.
func (s *Stream) Segments() []Segment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Segment(nil), s.segments...)
}

// Text joins the markdown segments.
func (s *Stream) Text() string {
	var parts []string
	for _, seg := range s.Segments() {
		if seg.Kind == SegmentMarkdown {
			parts = append(parts, seg.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// renderMarkdown highlights headings and bold markers for the terminal.
func renderMarkdown(text string) string {
	heading := color.New(color.FgCyan, color.Bold).SprintFunc()
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "#") {
			lines[i] = heading(strings.TrimSpace(strings.TrimLeft(line, "#")))
		}
	}
	return strings.Join(lines, "\n")
}
