package orchestrator

import (
	"context"
	stderrors "errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/jkarethiya/sonarfix/internal/agent"
	"github.com/jkarethiya/sonarfix/internal/config"
	errs "github.com/jkarethiya/sonarfix/internal/errors"
	"github.com/jkarethiya/sonarfix/internal/findings"
	"github.com/jkarethiya/sonarfix/internal/git"
)

// IssueSource fetches the findings of the configured project.
type IssueSource interface {
	Fetch(ctx context.Context) ([]findings.Finding, int, error)
}

// Resolver maps a component reference to an existing workspace file.
type Resolver interface {
	ResolveErr(componentRef string) (string, error)
}

// Fixer runs one fix attempt and returns the human verdict.
type Fixer interface {
	Invoke(ctx context.Context, path string, f findings.Finding) (agent.FixOutcome, error)
	SetDegraded(v bool)
}

// VCS is the version control surface used by a session.
type VCS interface {
	EnsureBranch(name string) error
	DirtyFiles() ([]string, error)
	Commit(message string) (string, error)
	Push(ctx context.Context, branch string) error
	BuildPRLink(branch string) (string, error)
}

// Notifier receives every user-visible message of a session.
type Notifier interface {
	Markdown(text string)
	Progress(text string)
}

// Prompter asks the human a yes/no question.
type Prompter interface {
	Ask(ctx context.Context, question string) (bool, error)
}

// Dependencies are the collaborators of an Orchestrator. Prober may be nil,
// in which case every session runs in degraded mode. OpenVCS is called once
// per session so commands that never fix anything do not need a repository.
type Dependencies struct {
	Source   IssueSource
	Resolver Resolver
	Fixer    Fixer
	Prober   agent.Prober
	OpenVCS  func() (VCS, error)
	Notifier Notifier
	Prompter Prompter
}

// Options narrows a session.
type Options struct {
	// Keys restricts the session to the listed finding keys.
	Keys []string
}

// Session is the state of one remediation run. It is never persisted.
type Session struct {
	ID       string
	Branch   string
	Findings []findings.Finding
	Fixed    int
	Total    int
	Cursor   int
	State    State
}

// Result summarizes a finished session.
type Result struct {
	SessionID   string
	State       State
	Branch      string
	Fixed       int
	Total       int
	ServerTotal int
	Pushed      bool
	PRLink      string
	Commits     []string
	Skipped     []string
}

// Orchestrator runs remediation sessions, one at a time.
type Orchestrator struct {
	logger     hclog.Logger
	branch     string
	installURL string
	deps       Dependencies

	mu     sync.Mutex
	active bool
}

// New creates an Orchestrator.
func New(logger hclog.Logger, cfg *config.Config, deps Dependencies) *Orchestrator {
	return &Orchestrator{
		logger:     logger.Named("orchestrator"),
		branch:     config.SetThen(cfg.Git.Branch, config.DefaultGitBranch),
		installURL: cfg.Agent.InstallURL,
		deps:       deps,
	}
}

func (o *Orchestrator) acquire() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.active {
		return false
	}
	o.active = true
	return true
}

func (o *Orchestrator) release() {
	o.mu.Lock()
	o.active = false
	o.mu.Unlock()
}

// run carries the per-session state through the steps.
type run struct {
	o       *Orchestrator
	logger  hclog.Logger
	session *Session
	result  *Result
	vcs     VCS
}

// Run executes a full remediation session. It returns errs.ErrSessionActive when
// another session is already running on this Orchestrator.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*Result, error) {
	if !o.acquire() {
		return nil, errs.ErrSessionActive
	}
	defer o.release()

	session := &Session{ID: uuid.NewString(), Branch: o.branch, State: StateInit}
	r := &run{
		o:       o,
		logger:  o.logger.With("session", session.ID),
		session: session,
		result:  &Result{SessionID: session.ID, Branch: session.Branch},
	}
	r.logger.Info("remediation session started", "branch", session.Branch)

	err := r.execute(ctx, opts)
	if err != nil {
		if ctx.Err() != nil && !stderrors.Is(err, errs.ErrUserCancelled) {
			err = fmt.Errorf("%w: %v", errs.ErrUserCancelled, err)
		}
		r.logger.Error("remediation session aborted", "state", session.State.String(), "error", err)
		session.State = StateAborted
	} else {
		session.State = StateDone
	}

	r.result.State = session.State
	r.result.Fixed = session.Fixed
	r.result.Total = session.Total
	r.logger.Info("remediation session finished", "state", session.State.String(), "fixed", session.Fixed, "total", session.Total)
	return r.result, err
}

func (r *run) execute(ctx context.Context, opts Options) error {
	if err := r.checkAgent(ctx); err != nil {
		return err
	}
	if err := r.ensureBranch(); err != nil {
		return err
	}
	list, err := r.fetch(ctx, opts)
	if err != nil || len(list) == 0 {
		return err
	}
	if err := r.processAll(ctx, list); err != nil {
		return err
	}
	pushed, err := r.maybePush(ctx)
	if err != nil || !pushed {
		return err
	}
	return r.maybeOfferPR(ctx)
}

func (r *run) notify(format string, args ...any) {
	r.o.deps.Notifier.Markdown(fmt.Sprintf(format, args...))
}

func (r *run) checkAgent(ctx context.Context) error {
	r.session.State = StateCheckAgent
	deps := r.o.deps

	degraded := deps.Prober == nil
	if !degraded {
		if err := deps.Prober.Probe(ctx); err != nil {
			r.logger.Warn("fixing agent unavailable", "error", err)
			degraded = true

			install, err := deps.Prompter.Ask(ctx, "The fixing agent is not available. Do you want to install it?")
			if err != nil {
				return fmt.Errorf("agent check: %w", err)
			}
			if install {
				if r.o.installURL != "" {
					r.notify("Install the fixing agent from %s, then run the command again to use it.", r.o.installURL)
				} else {
					r.notify("Install the fixing agent and set `agent.command` in the configuration.")
				}
			}
		}
	}
	if degraded {
		r.notify("Continuing without the fixing agent: each issue will be shown for a manual fix.")
	}
	deps.Fixer.SetDegraded(degraded)
	return nil
}

func (r *run) ensureBranch() error {
	r.session.State = StateEnsureBranch
	vcs, err := r.o.deps.OpenVCS()
	if err != nil {
		return err
	}
	r.vcs = vcs
	if err := vcs.EnsureBranch(r.session.Branch); err != nil {
		return err
	}
	r.notify("Working on branch `%s`.", r.session.Branch)
	return nil
}

func (r *run) fetch(ctx context.Context, opts Options) ([]findings.Finding, error) {
	r.session.State = StateFetchIssues
	list, serverTotal, err := r.o.deps.Source.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	r.result.ServerTotal = serverTotal
	if serverTotal > len(list) {
		r.logger.Warn("issue list truncated to one page", "returned", len(list), "total", serverTotal)
		r.notify("The server reports %d issues; only the first %d are processed.", serverTotal, len(list))
	}

	if len(opts.Keys) > 0 {
		selected := findings.FilterByKeys(list, opts.Keys)
		if len(selected) == 0 {
			r.notify("Issue %s was not found among the open issues.", strings.Join(opts.Keys, ", "))
			return nil, nil
		}
		list = selected
	}

	if len(list) == 0 {
		r.notify("No issues found. Nothing to fix.")
		return nil, nil
	}

	r.session.Findings = list
	r.session.Total = len(list)
	r.notify("Found %d issue(s) to fix.", len(list))
	return list, nil
}

func (r *run) processAll(ctx context.Context, list []findings.Finding) error {
	r.session.State = StatePerIssue
	for i, f := range list {
		r.session.Cursor = i
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %v", errs.ErrUserCancelled, err)
		}
		if err := r.processOne(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) processOne(ctx context.Context, f findings.Finding) error {
	logger := r.logger.With("issue", f.Key)

	path, err := r.o.deps.Resolver.ResolveErr(f.ComponentRef)
	if err != nil {
		if !errs.IsTolerated(err) {
			return err
		}
		logger.Warn("file not found, skipping issue", "component", f.ComponentRef, "error", err)
		r.notify("Skipping `%s`: file `%s` was not found in the workspace.", f.Key, f.RelativePath())
		r.result.Skipped = append(r.result.Skipped, f.Key)
		return nil
	}
	r.warnDirty(logger, path)

	r.notify("### %s `%s`\n%s (%s) at `%s`", f.Severity, f.Key, f.Message, f.Rule, f.Location())
	outcome, err := r.o.deps.Fixer.Invoke(ctx, path, f)
	if err != nil {
		if stderrors.Is(err, errs.ErrUserCancelled) {
			r.notify("Remediation cancelled. %d of %d issues fixed; nothing was pushed.", r.session.Fixed, r.session.Total)
		}
		return err
	}

	switch outcome {
	case agent.Applied:
		hash, err := r.vcs.Commit(git.CommitMessage(f.Key, f.Message))
		if err != nil {
			return err
		}
		r.session.Fixed++
		r.result.Commits = append(r.result.Commits, hash)
		logger.Info("issue fixed", "commit", hash)
		r.o.deps.Notifier.Progress(fmt.Sprintf("%d/%d issues fixed", r.session.Fixed, r.session.Total))
	case agent.Skipped:
		logger.Info("issue skipped by user")
		r.result.Skipped = append(r.result.Skipped, f.Key)
	}
	return nil
}

// warnDirty logs changes outside the file about to be fixed, since the commit stages everything.
func (r *run) warnDirty(logger hclog.Logger, path string) {
	dirty, err := r.vcs.DirtyFiles()
	if err != nil {
		logger.Debug("unable to read working tree status", "error", err)
		return
	}
	target := filepath.ToSlash(path)
	var others []string
	for _, d := range dirty {
		if !strings.HasSuffix(target, "/"+d) && target != d {
			others = append(others, d)
		}
	}
	if len(others) > 0 {
		logger.Warn("working tree has unrelated changes that will be committed with the fix", "files", others)
	}
}

func (r *run) maybePush(ctx context.Context) (bool, error) {
	r.session.State = StateMaybePush
	if r.session.Fixed == 0 {
		r.notify("No issues were fixed. Nothing to push.")
		return false, nil
	}
	if err := r.vcs.Push(ctx, r.session.Branch); err != nil {
		return false, err
	}
	r.result.Pushed = true
	r.notify("Pushed %d fix(es) to branch `%s`.", r.session.Fixed, r.session.Branch)
	return true, nil
}

func (r *run) maybeOfferPR(ctx context.Context) error {
	r.session.State = StateMaybeOfferPR
	open, err := r.o.deps.Prompter.Ask(ctx, fmt.Sprintf("Create a pull request for branch %s?", r.session.Branch))
	if stderrors.Is(err, errs.ErrUserCancelled) {
		// The branch is already pushed; a cancelled answer only declines the offer.
		r.logger.Info("pull request offer cancelled", "error", err)
		r.notify("No pull request created. Branch `%s` is pushed.", r.session.Branch)
		return nil
	}
	if err != nil {
		return fmt.Errorf("pull request offer: %w", err)
	}
	if !open {
		return nil
	}
	link, err := r.vcs.BuildPRLink(r.session.Branch)
	if err != nil {
		return err
	}
	r.result.PRLink = link
	r.notify("Open the pull request: %s", link)
	return nil
}
