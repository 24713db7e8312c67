package chat

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"

	"github.com/jkarethiya/sonarfix/internal/router"
)

// Prompt is the REPL input prompt.
const Prompt = "sonarfix> "

// NewReadline creates the terminal reader shared by the REPL and the confirmations.
func NewReadline() (*readline.Instance, error) {
	cyan := color.New(color.FgCyan).SprintFunc()
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            cyan(Prompt),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return rl, nil
}

// REPL is the interactive chat loop.
type REPL struct {
	logger    hclog.Logger
	rl        LineReader
	stream    *Stream
	handlers  router.Handlers
	history   []router.Turn
	followups []router.Followup
}

// NewREPL creates a REPL reading lines from rl and answering on stream.
func NewREPL(logger hclog.Logger, rl LineReader, stream *Stream, handlers router.Handlers) *REPL {
	return &REPL{
		logger:    logger,
		rl:        rl,
		stream:    stream,
		handlers:  handlers,
		followups: router.Followups(nil),
	}
}

// History returns the turns processed so far.
func (r *REPL) History() []router.Turn {
	return r.history
}

// Run reads turns until EOF or exit.
func (r *REPL) Run(ctx context.Context) error {
	r.printWelcome()

	cyan := color.New(color.FgCyan).SprintFunc()
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		r.rl.SetPrompt(cyan(Prompt))
		line, err := r.rl.Readline()
		if err != nil {
			if stderrors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if stderrors.Is(err, io.EOF) {
				r.stream.Markdown("Goodbye!")
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "exit", "quit":
			r.stream.Markdown("Goodbye!")
			return nil
		}

		r.Handle(ctx, line)
	}
}

// Handle processes one line of input and prints the follow-up suggestions.
func (r *REPL) Handle(ctx context.Context, line string) {
	turn := r.resolve(line)

	turnCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	intent, err := router.Dispatch(turnCtx, turn, r.handlers, r.stream.Markdown)
	r.logger.Debug("turn handled", "intent", intent.String())
	if err != nil {
		r.logger.Error("turn failed", "intent", intent.String(), "error", err)
		r.stream.Error(err)
	}

	turn.History = nil
	r.history = append(r.history, turn)
	r.followups = router.Followups(r.history)
	r.printFollowups()
}

// resolve turns a follow-up number into its command, anything else into a parsed turn.
func (r *REPL) resolve(line string) router.Turn {
	if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(r.followups) {
		f := r.followups[n-1]
		return router.Turn{Command: f.Command, Prompt: f.Prompt, History: r.history}
	}
	return ParseTurn(line, r.history)
}

func (r *REPL) printFollowups() {
	if len(r.followups) == 0 {
		return
	}
	var b strings.Builder
	b.WriteString("Suggestions:")
	for i, f := range r.followups {
		fmt.Fprintf(&b, "\n  %d. %s (`/%s`)", i+1, f.Label, f.Command)
	}
	r.stream.Markdown(b.String())
}

func (r *REPL) printWelcome() {
	r.stream.Markdown("# sonarfix\nFix static-analysis issues one commit at a time. Type `/help` for commands, `exit` to quit.")
	r.printFollowups()
}
