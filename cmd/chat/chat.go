package chat

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jkarethiya/sonarfix/internal/app"
	ichat "github.com/jkarethiya/sonarfix/internal/chat"
	"github.com/jkarethiya/sonarfix/internal/config"
	errs "github.com/jkarethiya/sonarfix/internal/errors"
)

var (
	AppConfig  *config.Config
	configPath string
)

var ChatCmd = &cobra.Command{
	Use:                   "chat",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Short:                 "Starts an interactive session that understands slash commands and plain requests",
	Example: `  # Start the chat and type /help
  sonarfix chat`,
	Args: func(_ *cobra.Command, args []string) error {
		if len(args) > 0 {
			return errs.NewCommandError(fmt.Errorf("chat takes no positional arguments, got %d", len(args)), errs.ExitInvalidUsage)
		}
		return nil
	},
	RunE: runChatCommand,
}

// Init initializes the global configuration variables.
func Init(cfg *config.Config, path string) {
	AppConfig = cfg
	configPath = path
}

// runChatCommand executes the chat command.
func runChatCommand(cmd *cobra.Command, _ []string) error {
	a, err := app.New(AppConfig, configPath, "core-chat", cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close()

	services, err := a.ChatServices()
	if err != nil {
		a.Logger.Error("failed to prepare chat", "error", err)
		return err
	}
	rl, err := a.Readline()
	if err != nil {
		return err
	}

	repl := ichat.NewREPL(a.Logger.Named("chat"), rl, a.Stream, ichat.NewHandlers(services))
	return repl.Run(cmd.Context())
}
