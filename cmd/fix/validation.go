package fix

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/jkarethiya/sonarfix/internal/errors"
)

func validateFixAllArgs(_ *cobra.Command, args []string) error {
	if len(args) > 0 {
		return errs.NewCommandError(fmt.Errorf("fix-all takes no positional arguments, got %d", len(args)), errs.ExitInvalidUsage)
	}
	return nil
}

// validateFixArgs requires exactly one non-empty issue key.
func validateFixArgs(_ *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errs.NewCommandError(fmt.Errorf("fix requires exactly one issue key, got %d argument(s)", len(args)), errs.ExitInvalidUsage)
	}
	if strings.TrimSpace(args[0]) == "" {
		return errs.NewCommandError(fmt.Errorf("the issue key must not be empty"), errs.ExitInvalidUsage)
	}
	return nil
}
