package analyze

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jkarethiya/sonarfix/internal/app"
	"github.com/jkarethiya/sonarfix/internal/config"
	errs "github.com/jkarethiya/sonarfix/internal/errors"
	"github.com/jkarethiya/sonarfix/internal/report"
	"github.com/jkarethiya/sonarfix/internal/sarif"
)

// RunOptionsAnalyze holds the arguments for the analyze command.
type RunOptionsAnalyze struct {
	SarifPath string
	JSON      bool
}

var (
	AppConfig           *config.Config
	configPath          string
	analyzeOptions      RunOptionsAnalyze
	exampleAnalyzeUsage = `  # Summarize the open issues by severity, type and rule
  sonarfix analyze

  # Also export the issues as a SARIF report
  sonarfix analyze --sarif ./sonar.sarif

  # Print the summary as JSON
  sonarfix analyze --json`
)

var AnalyzeCmd = &cobra.Command{
	Use:                   "analyze [--sarif PATH] [--json]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleAnalyzeUsage,
	Short:                 "Summarizes the open issues and optionally exports them as SARIF",
	Args: func(_ *cobra.Command, args []string) error {
		if len(args) > 0 {
			return errs.NewCommandError(fmt.Errorf("analyze takes no positional arguments, got %d", len(args)), errs.ExitInvalidUsage)
		}
		return nil
	},
	RunE: runAnalyzeCommand,
}

// Init initializes the global configuration variables.
func Init(cfg *config.Config, path string) {
	AppConfig = cfg
	configPath = path
}

// runAnalyzeCommand executes the analyze command.
func runAnalyzeCommand(cmd *cobra.Command, _ []string) error {
	a, err := app.New(AppConfig, configPath, "core-analyze", cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close()

	list, _, err := a.Source.Fetch(cmd.Context())
	if err != nil {
		a.Logger.Error("failed to fetch issues", "error", err)
		return err
	}

	r := report.Summarize(list)
	if analyzeOptions.JSON {
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	} else {
		a.Stream.Markdown(report.Markdown(r))
	}

	if analyzeOptions.SarifPath != "" {
		if err := sarif.WriteFile(analyzeOptions.SarifPath, list); err != nil {
			a.Logger.Error("failed to write SARIF report", "path", analyzeOptions.SarifPath, "error", err)
			return err
		}
		a.Logger.Info("SARIF report written", "path", analyzeOptions.SarifPath, "results", len(list))
	}
	return nil
}

func init() {
	AnalyzeCmd.Flags().StringVar(&analyzeOptions.SarifPath, "sarif", "", "Write the issues as a SARIF report to this path.")
	AnalyzeCmd.Flags().BoolVar(&analyzeOptions.JSON, "json", false, "Print the summary as JSON instead of markdown.")
	AnalyzeCmd.Flags().BoolP("help", "h", false, "Show help for the analyze command.")
}
