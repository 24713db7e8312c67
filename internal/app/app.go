// Package app assembles the components used by the sonarfix commands.
package app

import (
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/hashicorp/go-hclog"

	"github.com/jkarethiya/sonarfix/internal/agent"
	"github.com/jkarethiya/sonarfix/internal/chat"
	"github.com/jkarethiya/sonarfix/internal/config"
	"github.com/jkarethiya/sonarfix/internal/git"
	"github.com/jkarethiya/sonarfix/internal/logger"
	"github.com/jkarethiya/sonarfix/internal/orchestrator"
	"github.com/jkarethiya/sonarfix/internal/sonar"
	"github.com/jkarethiya/sonarfix/internal/workspace"
)

// App holds the components shared by one command invocation.
type App struct {
	Config     *config.Config
	ConfigPath string
	Logger     hclog.Logger
	Source     *sonar.Client
	Stream     *chat.Stream
	Workspace  *workspace.Resolver

	session      *logger.SessionLogger
	rl           *readline.Instance
	orchestrator *orchestrator.Orchestrator
}

// New creates the read-only part of the application: the session logger,
// the issue source and the workspace resolver. Logs go to stderr and responses to out.
func New(cfg *config.Config, configPath, name string, out io.Writer) (*App, error) {
	session, err := logger.NewSessionLogger(cfg, name, os.Stderr)
	if err != nil {
		return nil, err
	}

	resolver, err := workspace.FromConfig(cfg)
	if err != nil {
		session.Close()
		return nil, err
	}

	return &App{
		Config:     cfg,
		ConfigPath: configPath,
		Logger:     session,
		Source:     sonar.New(cfg, session),
		Stream:     chat.NewStream(out),
		Workspace:  resolver,
		session:    session,
	}, nil
}

// Readline returns the terminal reader, creating it on first use.
func (a *App) Readline() (*readline.Instance, error) {
	if a.rl != nil {
		return a.rl, nil
	}
	rl, err := chat.NewReadline()
	if err != nil {
		return nil, err
	}
	a.rl = rl
	return rl, nil
}

// Orchestrator returns the remediation orchestrator, creating it on first use.
// The repository is only opened when a session reaches the branch step.
func (a *App) Orchestrator() (*orchestrator.Orchestrator, error) {
	if a.orchestrator != nil {
		return a.orchestrator, nil
	}

	rl, err := a.Readline()
	if err != nil {
		return nil, err
	}
	root := a.Workspace.Root()

	fixer := agent.NewExecAgent(a.Logger.Named("agent"), a.Config.Agent, root, nil)
	adapter, err := agent.NewAdapter(a.Logger.Named("adapter"), agent.Options{
		Agent:          fixer,
		Editor:         agent.NewEditor(a.Logger.Named("editor"), a.Config.Editor, root, nil),
		Confirmer:      chat.NewTerminalConfirmer(rl, rl.Stdout()),
		Presenter:      a.Stream,
		PromptTemplate: a.Config.Agent.Prompt,
		Delay:          a.Config.Agent.Delay,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create fix adapter: %w", err)
	}

	a.orchestrator = orchestrator.New(a.Logger, a.Config, orchestrator.Dependencies{
		Source:   a.Source,
		Resolver: a.Workspace,
		Fixer:    adapter,
		Prober:   fixer,
		OpenVCS:  a.openVCS,
		Notifier: a.Stream,
		Prompter: chat.NewTerminalPrompter(rl, rl.Stdout()),
	})
	return a.orchestrator, nil
}

func (a *App) openVCS() (orchestrator.VCS, error) {
	c, err := git.New(a.Logger.Named("git"), a.Config, a.Workspace.Root())
	if err != nil {
		return nil, err
	}
	md := c.Metadata()
	a.Logger.Debug("repository opened", "root", md.RepoRootFolder, "branch", md.BranchName, "commit", md.CommitHash, "repository", md.RepositoryFullName)
	return c, nil
}

// ChatServices returns the collaborators of the chat handlers.
func (a *App) ChatServices() (chat.Services, error) {
	o, err := a.Orchestrator()
	if err != nil {
		return chat.Services{}, err
	}
	return chat.Services{
		Logger:       a.Logger,
		Config:       a.Config,
		ConfigPath:   a.ConfigPath,
		Source:       a.Source,
		Orchestrator: o,
		Stream:       a.Stream,
	}, nil
}

// Close releases the terminal and the session log.
func (a *App) Close() error {
	if a.rl != nil {
		a.rl.Close()
	}
	return a.session.Close()
}

// SessionLogPath returns the location of the session log.
func (a *App) SessionLogPath() string {
	return a.session.Path()
}
