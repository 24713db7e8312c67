package agent

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/jkarethiya/sonarfix/internal/config"
	errs "github.com/jkarethiya/sonarfix/internal/errors"
	"github.com/jkarethiya/sonarfix/internal/template"
)

const probeTimeout = 30 * time.Second

// CommandRunner abstracts command execution for testability.
type CommandRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) (stdout string, stderr string, err error)
	LookPath(name string) (string, error)
}

// ExecRunner implements CommandRunner by executing processes.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdoutBuf, stderrBuf strings.Builder
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if err := cmd.Run(); err != nil {
		return stdoutBuf.String(), stderrBuf.String(), fmt.Errorf("%s: %w", name, err)
	}
	return stdoutBuf.String(), stderrBuf.String(), nil
}

func (ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// ExecAgent runs the configured fixing agent CLI.
type ExecAgent struct {
	logger hclog.Logger
	cfg    config.Agent
	dir    string
	runner CommandRunner
}

// NewExecAgent creates an agent running in the workspace dir. A nil runner uses ExecRunner.
func NewExecAgent(logger hclog.Logger, cfg config.Agent, dir string, runner CommandRunner) *ExecAgent {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &ExecAgent{logger: logger, cfg: cfg, dir: dir, runner: runner}
}

// Probe checks the agent command is installed and answers its probe arguments.
func (a *ExecAgent) Probe(ctx context.Context) error {
	if a.cfg.Command == "" {
		return &errs.AgentUnavailableError{Err: fmt.Errorf("no agent command configured")}
	}
	if _, err := a.runner.LookPath(a.cfg.Command); err != nil {
		return &errs.AgentUnavailableError{Agent: a.cfg.Command, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	stdout, _, err := a.runner.Run(ctx, a.dir, a.cfg.Command, a.cfg.ProbeArgs...)
	if err != nil {
		return &errs.AgentUnavailableError{Agent: a.cfg.Command, Err: err}
	}
	a.logger.Debug("fixing agent available", "agent", a.cfg.Command, "version", strings.TrimSpace(stdout))
	return nil
}

// Fix runs the agent with the configured arguments.
func (a *ExecAgent) Fix(ctx context.Context, req Request) error {
	return a.run(ctx, "fix", a.cfg.Args, req)
}

// SendMessage runs the agent with the configured message arguments, if any.
func (a *ExecAgent) SendMessage(ctx context.Context, req Request) error {
	if len(a.cfg.MessageArgs) == 0 {
		return nil
	}
	return a.run(ctx, "message", a.cfg.MessageArgs, req)
}

func (a *ExecAgent) run(ctx context.Context, op string, args []string, req Request) error {
	if a.cfg.Command == "" {
		return &errs.AgentUnavailableError{Err: fmt.Errorf("no agent command configured")}
	}
	expanded, err := template.Expand(args, req)
	if err != nil {
		return err
	}

	timeout := config.SetThen(a.cfg.Timeout, config.DefaultAgentTimeout)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	a.logger.Debug("running fixing agent", "op", op, "agent", a.cfg.Command, "issue", req.Key)
	stdout, stderr, err := a.runner.Run(ctx, a.dir, a.cfg.Command, expanded...)
	if err != nil {
		a.logger.Error("fixing agent failed", "op", op, "issue", req.Key, "error", err, "stderr", strings.TrimSpace(stderr))
		return fmt.Errorf("agent %s failed: %w", op, err)
	}
	if out := strings.TrimSpace(stdout); out != "" {
		a.logger.Debug("fixing agent output", "op", op, "output", out)
	}
	return nil
}

// ExecEditor opens files with the configured editor command.
type ExecEditor struct {
	logger hclog.Logger
	cfg    config.Editor
	dir    string
	runner CommandRunner
}

// NewEditor returns an ExecEditor, or a NoopEditor when no command is configured.
func NewEditor(logger hclog.Logger, cfg config.Editor, dir string, runner CommandRunner) Editor {
	if cfg.Command == "" {
		return NoopEditor{}
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &ExecEditor{logger: logger, cfg: cfg, dir: dir, runner: runner}
}

// Open runs the editor with {{.File}}, {{.Line}} (1-based) and {{.Line0}} expanded.
func (e *ExecEditor) Open(ctx context.Context, path string, line0 int) error {
	args, err := template.Expand(e.cfg.Args, Request{File: path, Line: line0 + 1, Line0: line0})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	if _, stderr, err := e.runner.Run(ctx, e.dir, e.cfg.Command, args...); err != nil {
		return fmt.Errorf("editor failed: %w (%s)", err, strings.TrimSpace(stderr))
	}
	e.logger.Debug("opened file in editor", "file", path, "line", line0+1)
	return nil
}

// NoopEditor does nothing.
type NoopEditor struct{}

func (NoopEditor) Open(context.Context, string, int) error { return nil }
