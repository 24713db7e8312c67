package fetch

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jkarethiya/sonarfix/internal/app"
	"github.com/jkarethiya/sonarfix/internal/config"
	"github.com/jkarethiya/sonarfix/internal/findings"
	"github.com/jkarethiya/sonarfix/internal/report"
)

// RunOptionsFetch holds the arguments for the fetch command.
type RunOptionsFetch struct {
	JSON bool
	Keys []string
}

var (
	AppConfig         *config.Config
	configPath        string
	fetchOptions      RunOptionsFetch
	exampleFetchUsage = `  # List the open issues of the configured project
  sonarfix fetch

  # Print the issues as JSON
  sonarfix fetch --json

  # Show only two issues
  sonarfix fetch --key PROJ-12 --key PROJ-40`
)

var FetchCmd = &cobra.Command{
	Use:                   "fetch [--json] [--key KEY]...",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleFetchUsage,
	Short:                 "Lists the open issues reported by the quality server",
	Args:                  validateFetchArgs,
	RunE:                  runFetchCommand,
}

// Init initializes the global configuration variables.
func Init(cfg *config.Config, path string) {
	AppConfig = cfg
	configPath = path
}

// runFetchCommand executes the fetch command.
func runFetchCommand(cmd *cobra.Command, _ []string) error {
	a, err := app.New(AppConfig, configPath, "core-fetch", cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close()

	list, total, err := a.Source.Fetch(cmd.Context())
	if err != nil {
		a.Logger.Error("failed to fetch issues", "error", err)
		return err
	}
	if len(fetchOptions.Keys) > 0 {
		list = findings.FilterByKeys(list, fetchOptions.Keys)
		total = len(list)
	}

	if fetchOptions.JSON {
		return printJSON(cmd, list, total)
	}
	a.Stream.Markdown(report.IssueList(list, total))

	a.Logger.Debug("fetch command completed successfully", "issues", len(list), "total", total)
	return nil
}

func printJSON(cmd *cobra.Command, list []findings.Finding, total int) error {
	if list == nil {
		list = []findings.Finding{}
	}
	data, err := json.MarshalIndent(findings.SearchResult{Total: total, Issues: list}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode issues: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func init() {
	FetchCmd.Flags().BoolVar(&fetchOptions.JSON, "json", false, "Print the issues as JSON instead of markdown.")
	FetchCmd.Flags().StringArrayVar(&fetchOptions.Keys, "key", nil, "Only show the issue with this key. Can be repeated.")
	FetchCmd.Flags().BoolP("help", "h", false, "Show help for the fetch command.")
}
