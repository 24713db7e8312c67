package agent

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-hclog"

	errs "github.com/jkarethiya/sonarfix/internal/errors"
	"github.com/jkarethiya/sonarfix/internal/findings"
)

// FixOutcome is the human verdict on one fix attempt.
type FixOutcome int

const (
	Applied FixOutcome = iota + 1
	Skipped
	Cancelled
)

func (o FixOutcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Skipped:
		return "skipped"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("FixOutcome(%d)", int(o))
	}
}

// Request carries everything the fixing agent needs for one finding.
// Line is 1-based, Line0 is the same position 0-based.
type Request struct {
	Key      string
	Rule     string
	Severity string
	Type     string
	Message  string
	File     string
	Line     int
	Line0    int
	Prompt   string
}

// Agent is the external fixing agent.
type Agent interface {
	Fix(ctx context.Context, req Request) error
	SendMessage(ctx context.Context, req Request) error
}

// Prober reports whether an agent is installed and reachable.
type Prober interface {
	Probe(ctx context.Context) error
}

// Editor moves the user's cursor to a 0-based line of a file.
type Editor interface {
	Open(ctx context.Context, path string, line0 int) error
}

// Confirmer asks the human whether a fix was applied, should be skipped or the session cancelled.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (FixOutcome, error)
}

// Presenter shows markdown to the human.
type Presenter interface {
	Markdown(text string)
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Options configures an Adapter. Agent may be nil, which forces the manual path.
type Options struct {
	Agent          Agent
	Editor         Editor
	Confirmer      Confirmer
	Presenter      Presenter
	PromptTemplate string
	Delay          time.Duration
	Sleep          SleepFunc
}

// Adapter drives the fixing agent, or the human, through one finding at a time.
type Adapter struct {
	logger    hclog.Logger
	agent     Agent
	editor    Editor
	confirmer Confirmer
	presenter Presenter
	prompt    *PromptBuilder
	delay     time.Duration
	sleep     SleepFunc
	degraded  atomic.Bool
}

// NewAdapter creates an Adapter from opts.
func NewAdapter(logger hclog.Logger, opts Options) (*Adapter, error) {
	if opts.Confirmer == nil {
		return nil, stderrors.New("a confirmer is required")
	}
	prompt, err := NewPromptBuilder(opts.PromptTemplate)
	if err != nil {
		return nil, err
	}

	a := &Adapter{
		logger:    logger,
		agent:     opts.Agent,
		editor:    opts.Editor,
		confirmer: opts.Confirmer,
		presenter: opts.Presenter,
		prompt:    prompt,
		delay:     opts.Delay,
		sleep:     opts.Sleep,
	}
	if a.editor == nil {
		a.editor = NoopEditor{}
	}
	if a.presenter == nil {
		a.presenter = discardPresenter{}
	}
	if a.sleep == nil {
		a.sleep = Sleep
	}
	return a, nil
}

// SetDegraded switches the adapter to the manual path for every invocation.
func (a *Adapter) SetDegraded(v bool) {
	a.degraded.Store(v)
}

// Degraded reports whether the adapter skips the agent.
func (a *Adapter) Degraded() bool {
	return a.degraded.Load() || a.agent == nil
}

// Invoke runs one fix attempt for f at path and returns the human verdict.
// A Cancel verdict, or a cancelled context, yields errs.ErrUserCancelled.
// The configured delay follows every attempt, whatever the outcome.
func (a *Adapter) Invoke(ctx context.Context, path string, f findings.Finding) (outcome FixOutcome, err error) {
	defer func() {
		if serr := a.sleep(ctx, a.delay); serr != nil && err == nil {
			outcome, err = Cancelled, fmt.Errorf("%w: %v", errs.ErrUserCancelled, serr)
		}
	}()

	req, err := a.request(path, f)
	if err != nil {
		return 0, err
	}

	if err := a.editor.Open(ctx, path, req.Line0); err != nil {
		a.logger.Warn("failed to open file in editor", "file", path, "line", req.Line, "error", err)
	}

	manual := a.Degraded()
	if !manual {
		if err := a.runAgent(ctx, req); err != nil {
			if ctx.Err() != nil {
				return Cancelled, fmt.Errorf("%w: %v", errs.ErrUserCancelled, ctx.Err())
			}
			a.logger.Warn("fixing agent failed, falling back to manual fix", "issue", f.Key, "error", err)
			manual = true
		}
	}
	if manual {
		a.presenter.Markdown(ManualInstructions(req))
	}

	verdict, err := a.confirmer.Confirm(ctx, ConfirmQuestion(req))
	if err != nil {
		if ctx.Err() != nil || stderrors.Is(err, errs.ErrUserCancelled) {
			return Cancelled, fmt.Errorf("%w: %v", errs.ErrUserCancelled, err)
		}
		a.logger.Error("confirmation failed", "issue", f.Key, "error", err)
		return 0, fmt.Errorf("confirmation for %s failed: %w", f.Key, err)
	}

	switch verdict {
	case Applied, Skipped:
		a.logger.Info("fix attempt finished", "issue", f.Key, "outcome", verdict.String())
		return verdict, nil
	case Cancelled:
		a.logger.Info("remediation cancelled", "issue", f.Key)
		return Cancelled, errs.ErrUserCancelled
	default:
		return 0, fmt.Errorf("unexpected confirmation verdict %v", verdict)
	}
}

func (a *Adapter) runAgent(ctx context.Context, req Request) error {
	if err := a.agent.Fix(ctx, req); err != nil {
		return fmt.Errorf("fix: %w", err)
	}
	if err := a.agent.SendMessage(ctx, req); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func (a *Adapter) request(path string, f findings.Finding) (Request, error) {
	line := f.LineOrZero()
	if line < 1 {
		line = 1
	}
	req := Request{
		Key:      f.Key,
		Rule:     f.Rule,
		Severity: string(f.Severity),
		Type:     string(f.Type),
		Message:  f.Message,
		File:     path,
		Line:     line,
		Line0:    line - 1,
	}
	prompt, err := a.prompt.Build(req)
	if err != nil {
		return Request{}, err
	}
	req.Prompt = prompt
	return req, nil
}

type discardPresenter struct{}

func (discardPresenter) Markdown(string) {}
