package version

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/jkarethiya/sonarfix/internal/config"
)

var (
	AppConfig     *config.Config
	CoreVersion   = "unknown"
	GolangVersion = runtime.Version()
	BuildTime     = "unknown"

	jsonOutput bool
)

// Versions holds version information for the application and the configured agent.
type Versions struct {
	Version       string `json:"version"`
	GolangVersion string `json:"golang_version"`
	BuildTime     string `json:"build_time"`
	Agent         string `json:"agent,omitempty"`
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// NewVersionCmd creates a new cobra.Command for the version command.
func NewVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                   "version",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Print the version number of the application",
		RunE: func(cmd *cobra.Command, args []string) error {
			v := Versions{
				Version:       CoreVersion,
				GolangVersion: GolangVersion,
				BuildTime:     BuildTime,
			}
			if AppConfig != nil {
				v.Agent = AppConfig.Agent.Command
			}
			return printVersionInfo(cmd.OutOrStdout(), &v, jsonOutput)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the version information as JSON.")
	return cmd
}

// printVersionInfo prints the version information.
func printVersionInfo(w io.Writer, v *Versions, asJSON bool) error {
	if asJSON {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode version: %w", err)
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	fmt.Fprintf(w, "Core Version: v%s\n", v.Version)
	if v.Agent != "" {
		fmt.Fprintf(w, "Fixing Agent: %s\n", v.Agent)
	} else {
		fmt.Fprintln(w, "Fixing Agent: not configured")
	}
	fmt.Fprintf(w, "Go Version: %s\n", v.GolangVersion)
	fmt.Fprintf(w, "Build Time: %s\n", v.BuildTime)
	return nil
}
