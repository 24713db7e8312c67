package configure

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jkarethiya/sonarfix/internal/chat"
	"github.com/jkarethiya/sonarfix/internal/config"
	errs "github.com/jkarethiya/sonarfix/internal/errors"
	"github.com/jkarethiya/sonarfix/internal/logger"
)

var (
	AppConfig          *config.Config
	configPath         string
	exampleConfigUsage = `  # Show the current configuration, secrets masked
  sonarfix config show

  # Point sonarfix at a project
  sonarfix config set sonarUrl https://sonar.example.com
  sonarfix config set sonarToken sqp_0123456789
  sonarfix config set projectKey my-project
  sonarfix config set gitBranch sonar-auto-fix`
)

var ConfigCmd = &cobra.Command{
	Use:                   "config {show | set KEY VALUE}",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleConfigUsage,
	Short:                 "Shows or changes the sonarfix configuration",
}

var showCmd = &cobra.Command{
	Use:                   "show",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Short:                 "Shows the configuration with secrets masked",
	Args:                  exactArgs(0),
	RunE: func(cmd *cobra.Command, _ []string) error {
		chat.NewStream(cmd.OutOrStdout()).Markdown(chat.ConfigurationMarkdown(AppConfig, configPath))
		return nil
	},
}

var setCmd = &cobra.Command{
	Use:                   "set KEY VALUE",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Short:                 "Sets a configuration value and saves the file",
	Long:                  fmt.Sprintf("Sets a configuration value and saves the file.\n\nKnown keys: %v", config.Keys()),
	Args:                  exactArgs(2),
	RunE:                  runSetCommand,
}

// Init initializes the global configuration variables.
func Init(cfg *config.Config, path string) {
	AppConfig = cfg
	configPath = path
}

// runSetCommand updates only the key given on the command line, so defaults and
// environment overrides are never written to the file.
func runSetCommand(cmd *cobra.Command, args []string) error {
	log := logger.NewLogger(AppConfig, "core-config")
	key, value := args[0], args[1]

	if err := config.SetValue(AppConfig, key, value); err != nil {
		return errs.NewCommandError(err, errs.ExitInvalidUsage)
	}
	if err := config.ValidateConfig(AppConfig); err != nil {
		return errs.NewCommandError(err, errs.ExitInvalidUsage)
	}

	raw := &config.Config{}
	if err := config.LoadYAML(configPath, raw); err != nil && !os.IsNotExist(err) {
		log.Error("failed to read config file", "path", configPath, "error", err)
		return err
	}
	if err := config.SetValue(raw, key, value); err != nil {
		return errs.NewCommandError(err, errs.ExitInvalidUsage)
	}
	if err := config.Save(raw, configPath); err != nil {
		log.Error("failed to save config file", "path", configPath, "error", err)
		return err
	}

	log.Info("configuration updated", "key", key, "path", configPath)
	return nil
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return errs.NewCommandError(fmt.Errorf("%q expects %d argument(s), got %d", cmd.Name(), n, len(args)), errs.ExitInvalidUsage)
		}
		return nil
	}
}

func init() {
	ConfigCmd.AddCommand(showCmd)
	ConfigCmd.AddCommand(setCmd)
}
