package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jkarethiya/sonarfix/cmd/analyze"
	"github.com/jkarethiya/sonarfix/cmd/chat"
	"github.com/jkarethiya/sonarfix/cmd/configure"
	"github.com/jkarethiya/sonarfix/cmd/fetch"
	"github.com/jkarethiya/sonarfix/cmd/fix"
	"github.com/jkarethiya/sonarfix/cmd/mcp"
	"github.com/jkarethiya/sonarfix/cmd/version"
	"github.com/jkarethiya/sonarfix/internal/config"
	errs "github.com/jkarethiya/sonarfix/internal/errors"
)

var (
	cfgFile   string
	AppConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:                   "sonarfix [command]",
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
		Short:                 "Sonarfix fixes the issues reported by a SonarQube server, one commit per issue.",
		Long: `Sonarfix pulls the open issues of a project from a SonarQube compatible server,
	drives an external fixing agent file by file, asks you to confirm every fix and
	commits each confirmed fix on a dedicated branch before pushing it for review.
	`,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yml)")
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errs.NewCommandError(err, errs.ExitInvalidUsage)
	})

	rootCmd.AddCommand(version.NewVersionCmd())
	rootCmd.AddCommand(fetch.FetchCmd)
	rootCmd.AddCommand(fix.FixAllCmd)
	rootCmd.AddCommand(fix.FixCmd)
	rootCmd.AddCommand(analyze.AnalyzeCmd)
	rootCmd.AddCommand(chat.ChatCmd)
	rootCmd.AddCommand(configure.ConfigCmd)
	rootCmd.AddCommand(mcp.MCPCmd)
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		return errs.ExitCode(err)
	}
	return 0
}

// initConfig loads the configuration before any sub-command runs. The default
// file is optional, an explicit --config file is not.
func initConfig(cmd *cobra.Command, _ []string) error {
	var err error

	required := cfgFile != ""
	path := config.SetThen(cfgFile, config.DefaultConfigFile)

	AppConfig, err = config.LoadConfig(path, required)
	if err != nil {
		return errs.NewCommandError(fmt.Errorf("failed to load config file: %w", err), errs.ExitInvalidUsage)
	}
	if err := config.ValidateConfig(AppConfig); err != nil {
		return errs.NewCommandError(err, errs.ExitInvalidUsage)
	}

	version.Init(AppConfig)
	fetch.Init(AppConfig, path)
	fix.Init(AppConfig, path)
	analyze.Init(AppConfig, path)
	chat.Init(AppConfig, path)
	configure.Init(AppConfig, path)
	mcp.Init(AppConfig, path)
	return nil
}
