package fetch

import (
	"fmt"

	"github.com/spf13/cobra"

	errs "github.com/jkarethiya/sonarfix/internal/errors"
)

// validateFetchArgs validates the arguments provided to the fetch command.
func validateFetchArgs(_ *cobra.Command, args []string) error {
	if len(args) > 0 {
		return errs.NewCommandError(fmt.Errorf("fetch takes no positional arguments, got %d", len(args)), errs.ExitInvalidUsage)
	}
	for _, k := range fetchOptions.Keys {
		if k == "" {
			return errs.NewCommandError(fmt.Errorf("the 'key' flag must not be empty"), errs.ExitInvalidUsage)
		}
	}
	return nil
}
