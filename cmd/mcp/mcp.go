package mcp

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jkarethiya/sonarfix/cmd/version"
	"github.com/jkarethiya/sonarfix/internal/app"
	"github.com/jkarethiya/sonarfix/internal/config"
	errs "github.com/jkarethiya/sonarfix/internal/errors"
	"github.com/jkarethiya/sonarfix/internal/mcpserver"
)

var (
	AppConfig  *config.Config
	configPath string
)

var MCPCmd = &cobra.Command{
	Use:                   "mcp",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Short:                 "Serves the read-only issue tools over the Model Context Protocol on stdio",
	Long: `Serves the fetch_issues, analyze_issues and route_turn tools over the Model
Context Protocol on stdin/stdout. Fixing is not exposed because every fix needs
an interactive confirmation.`,
	Args: func(_ *cobra.Command, args []string) error {
		if len(args) > 0 {
			return errs.NewCommandError(fmt.Errorf("mcp takes no positional arguments, got %d", len(args)), errs.ExitInvalidUsage)
		}
		return nil
	},
	RunE: runMCPCommand,
}

// Init initializes the global configuration variables.
func Init(cfg *config.Config, path string) {
	AppConfig = cfg
	configPath = path
}

// runMCPCommand executes the mcp command. Stdout belongs to the protocol.
func runMCPCommand(cmd *cobra.Command, _ []string) error {
	a, err := app.New(AppConfig, configPath, "core-mcp", io.Discard)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := mcpserver.New(a.Logger, version.CoreVersion, a.Source)
	if err != nil {
		return err
	}
	return s.Run(cmd.Context())
}
