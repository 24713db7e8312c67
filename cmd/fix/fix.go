package fix

import (
	"context"
	stderrors "errors"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/jkarethiya/sonarfix/internal/app"
	"github.com/jkarethiya/sonarfix/internal/chat"
	"github.com/jkarethiya/sonarfix/internal/config"
	errs "github.com/jkarethiya/sonarfix/internal/errors"
	"github.com/jkarethiya/sonarfix/internal/orchestrator"
)

var (
	AppConfig  *config.Config
	configPath string

	exampleFixAllUsage = `  # Fix every open issue, one commit per confirmed fix
  sonarfix fix-all

  # Use another configuration file
  sonarfix fix-all --config ./sonarfix.yml`

	exampleFixUsage = `  # Fix a single issue
  sonarfix fix PROJ-123`
)

var FixAllCmd = &cobra.Command{
	Use:                   "fix-all",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleFixAllUsage,
	Short:                 "Fixes every open issue and pushes the remediation branch",
	Args:                  validateFixAllArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSession(cmd, orchestrator.Options{})
	},
}

var FixCmd = &cobra.Command{
	Use:                   "fix KEY",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleFixUsage,
	Short:                 "Fixes a single issue and pushes the remediation branch",
	Args:                  validateFixArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSession(cmd, orchestrator.Options{Keys: []string{args[0]}})
	},
}

// Init initializes the global configuration variables.
func Init(cfg *config.Config, path string) {
	AppConfig = cfg
	configPath = path
}

// runSession runs one remediation session. Ctrl+C outside a prompt cancels it.
func runSession(cmd *cobra.Command, opts orchestrator.Options) error {
	a, err := app.New(AppConfig, configPath, "core-fix", cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close()

	o, err := a.Orchestrator()
	if err != nil {
		a.Logger.Error("failed to prepare remediation session", "error", err)
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	res, err := o.Run(ctx, opts)
	if summary := chat.SessionSummary(res); summary != "" {
		a.Stream.Markdown(summary)
	}
	if err != nil {
		if stderrors.Is(err, errs.ErrUserCancelled) || stderrors.Is(err, context.Canceled) {
			a.Logger.Warn("remediation session cancelled", "session_log", a.SessionLogPath())
			return errs.NewCommandError(err, errs.ExitCancelled)
		}
		a.Logger.Error("remediation session failed", "error", err, "session_log", a.SessionLogPath())
		return err
	}
	return nil
}
