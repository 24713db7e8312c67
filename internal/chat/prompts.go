package chat

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/jkarethiya/sonarfix/internal/agent"
	errs "github.com/jkarethiya/sonarfix/internal/errors"
)

// LineReader reads a line of user input after showing a prompt.
type LineReader interface {
	SetPrompt(prompt string)
	Readline() (string, error)
}

// TerminalConfirmer asks for the Applied/Skip/Cancel verdict on the terminal.
type TerminalConfirmer struct {
	rl  LineReader
	out io.Writer
}

// NewTerminalConfirmer creates a confirmer reading from rl and writing hints to out.
func NewTerminalConfirmer(rl LineReader, out io.Writer) *TerminalConfirmer {
	return &TerminalConfirmer{rl: rl, out: out}
}

// Confirm asks prompt until a valid answer is given. Ctrl+C is a Cancel verdict.
func (c *TerminalConfirmer) Confirm(ctx context.Context, prompt string) (agent.FixOutcome, error) {
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		c.rl.SetPrompt(prompt + " [a]pplied / [s]kip / [c]ancel: ")
		line, err := c.rl.Readline()
		if err != nil {
			if stderrors.Is(err, readline.ErrInterrupt) {
				return agent.Cancelled, nil
			}
			if stderrors.Is(err, io.EOF) {
				return 0, errs.ErrUserCancelled
			}
			return 0, err
		}
		if v, ok := parseVerdict(line); ok {
			return v, nil
		}
		fmt.Fprintln(c.out, "Please answer a (applied), s (skip) or c (cancel).")
	}
}

func parseVerdict(answer string) (agent.FixOutcome, bool) {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "a", "applied", "apply", "y", "yes":
		return agent.Applied, true
	case "s", "skip", "n", "no":
		return agent.Skipped, true
	case "c", "cancel", "q", "quit":
		return agent.Cancelled, true
	default:
		return 0, false
	}
}

// TerminalPrompter asks yes/no questions on the terminal.
type TerminalPrompter struct {
	rl  LineReader
	out io.Writer
}

// NewTerminalPrompter creates a prompter reading from rl and writing hints to out.
func NewTerminalPrompter(rl LineReader, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{rl: rl, out: out}
}

// Ask returns true for yes. An empty answer is no; Ctrl+C cancels the session.
func (p *TerminalPrompter) Ask(ctx context.Context, question string) (bool, error) {
	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		p.rl.SetPrompt(question + " [y/N]: ")
		line, err := p.rl.Readline()
		if err != nil {
			if stderrors.Is(err, readline.ErrInterrupt) || stderrors.Is(err, io.EOF) {
				return false, errs.ErrUserCancelled
			}
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		case "", "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.out, "Please answer y or n.")
	}
}
