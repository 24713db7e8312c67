package chat

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/jkarethiya/sonarfix/internal/config"
	errs "github.com/jkarethiya/sonarfix/internal/errors"
	"github.com/jkarethiya/sonarfix/internal/findings"
	"github.com/jkarethiya/sonarfix/internal/orchestrator"
	"github.com/jkarethiya/sonarfix/internal/report"
	"github.com/jkarethiya/sonarfix/internal/router"
)

// IssueSource fetches the open findings.
type IssueSource interface {
	Fetch(ctx context.Context) ([]findings.Finding, int, error)
}

// SessionRunner runs remediation sessions.
type SessionRunner interface {
	Run(ctx context.Context, opts orchestrator.Options) (*orchestrator.Result, error)
}

// Services are the collaborators behind the chat handlers.
type Services struct {
	Logger       hclog.Logger
	Config       *config.Config
	ConfigPath   string
	Source       IssueSource
	Orchestrator SessionRunner
	Stream       *Stream
}

// NewHandlers returns one handler per intent.
func NewHandlers(s Services) router.Handlers {
	return router.Handlers{
		router.FetchIssues: s.fetch,
		router.FixAll:      s.fixAll,
		router.FixSpecific: s.fixSpecific,
		router.Configure:   s.configure,
		router.Analyze:     s.analyze,
		router.Help:        s.help,
		router.General:     s.general,
	}
}

func (s Services) fetch(ctx context.Context, _ router.Turn, _ router.Intent) error {
	s.Stream.Progress("Fetching issues...")
	list, total, err := s.Source.Fetch(ctx)
	if err != nil {
		return err
	}
	s.Stream.Markdown(report.IssueList(list, total))
	return nil
}

func (s Services) analyze(ctx context.Context, _ router.Turn, _ router.Intent) error {
	s.Stream.Progress("Fetching issues for analysis...")
	list, _, err := s.Source.Fetch(ctx)
	if err != nil {
		return err
	}
	s.Stream.Markdown(report.Markdown(report.Summarize(list)))
	return nil
}

func (s Services) fixAll(ctx context.Context, _ router.Turn, _ router.Intent) error {
	return s.runSession(ctx, orchestrator.Options{})
}

func (s Services) fixSpecific(ctx context.Context, _ router.Turn, intent router.Intent) error {
	if intent.NeedsClarification() {
		s.Stream.Markdown("Which issue should I fix? Name it by key, for example `fix issue PROJ-123`, or say `fix all issues`.")
		return nil
	}
	return s.runSession(ctx, orchestrator.Options{Keys: []string{intent.Key}})
}

func (s Services) runSession(ctx context.Context, opts orchestrator.Options) error {
	res, err := s.Orchestrator.Run(ctx, opts)
	switch {
	case stderrors.Is(err, errs.ErrSessionActive):
		s.Stream.Markdown("A remediation session is already running. Wait for it to finish.")
		return nil
	case stderrors.Is(err, errs.ErrUserCancelled):
		s.Stream.Markdown(SessionSummary(res))
		return nil
	case err != nil:
		if res != nil {
			s.Stream.Markdown(SessionSummary(res))
		}
		return err
	}
	s.Stream.Markdown(SessionSummary(res))
	return nil
}

// SessionSummary describes the outcome of a remediation session.
func SessionSummary(res *orchestrator.Result) string {
	if res == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "**Session %s** on `%s`: %d of %d issue(s) fixed", res.State, res.Branch, res.Fixed, res.Total)
	if res.Pushed {
		b.WriteString(", pushed")
	}
	b.WriteString(".")
	if len(res.Skipped) > 0 {
		fmt.Fprintf(&b, " Skipped: %s.", strings.Join(res.Skipped, ", "))
	}
	if res.PRLink != "" {
		fmt.Fprintf(&b, "\n\nPull request: %s", res.PRLink)
	}
	return b.String()
}

func (s Services) configure(context.Context, router.Turn, router.Intent) error {
	s.Stream.Markdown(ConfigurationMarkdown(s.Config, s.ConfigPath))
	return nil
}

// ConfigurationMarkdown lists the settable values with secrets masked.
func ConfigurationMarkdown(cfg *config.Config, path string) string {
	var b strings.Builder
	b.WriteString("## Configuration\n\n| Key | Value |\n|---|---|\n")
	for _, e := range config.Entries(cfg) {
		v := e.Value
		if v == "" {
			v = "_(not set)_"
		}
		fmt.Fprintf(&b, "| %s | %s |\n", e.Key, v)
	}
	fmt.Fprintf(&b, "\nChange a value with `sonarfix config set <key> <value>` (file: `%s`).", path)
	return b.String()
}

// HelpText lists the slash commands and example requests.
const HelpText = `## sonarfix

Slash commands:
- ` + "`/help`" + ` show this message
- ` + "`/config`" + ` show the configuration
- ` + "`/fetch`" + ` list the open issues
- ` + "`/fix-all`" + ` fix every open issue, one commit per fix
- ` + "`/analyze`" + ` summarize issues by severity, type and rule

You can also ask in plain words, for example "list the issues", "fix issue PROJ-12" or "setup".
Type a number to pick a suggestion, ` + "`exit`" + ` to quit.`

func (s Services) help(context.Context, router.Turn, router.Intent) error {
	s.Stream.Markdown(HelpText)
	return nil
}

func (s Services) general(context.Context, router.Turn, router.Intent) error {
	s.Stream.Markdown("I can fetch, analyze and fix the issues reported by the quality server. Try `/fetch` or type `/help`.")
	return nil
}
