// Package cli provides the command-line interface for cardmark.
package cli

import (
	stderrors "errors"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrz1836/cardmark/internal/constants"
	"github.com/mrz1836/cardmark/internal/errors"
)

// Exit codes for the CLI.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0
	// ExitError indicates a general error, including a signature mismatch.
	ExitError = 1
	// ExitInvalidInput indicates invalid user input or an unreadable sidecar.
	ExitInvalidInput = 2
)

// Output format constants.
const (
	// OutputText is the default human-readable output format.
	OutputText = "text"
	// OutputJSON is the machine-readable JSON output format.
	OutputJSON = "json"
)

// GlobalFlags holds flags available to all commands.
type GlobalFlags struct {
	// Output specifies the output format (text or json).
	Output string
	// Verbose enables debug-level logging.
	Verbose bool
	// Quiet suppresses non-essential output (warn level only).
	Quiet bool
	// ConfigFile replaces project and global config discovery when set.
	ConfigFile string
}

// AddGlobalFlags adds global flags to a command.
// These flags are available to all subcommands via PersistentFlags.
func AddGlobalFlags(cmd *cobra.Command, flags *GlobalFlags) {
	cmd.PersistentFlags().StringVarP(&flags.Output, "output", "o", OutputText, "output format (text|json)")
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "suppress non-essential output")
	cmd.PersistentFlags().StringVar(&flags.ConfigFile, "config", "", "config file (replaces .cardmark/config.yaml and ~/.cardmark/config.yaml)")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// BindGlobalFlags binds global flags to Viper so they can also be set through
// CARDMARK_-prefixed environment variables (e.g., CARDMARK_OUTPUT).
func BindGlobalFlags(v *viper.Viper, cmd *cobra.Command) error {
	rootFlags := cmd.Root().PersistentFlags()

	for _, name := range []string{"output", "verbose", "quiet"} {
		if err := v.BindPFlag(name, rootFlags.Lookup(name)); err != nil {
			return err
		}
	}

	v.SetEnvPrefix(constants.EnvPrefix)
	v.AutomaticEnv()

	return nil
}

// ValidOutputFormats returns the list of valid output format values.
func ValidOutputFormats() []string {
	return []string{OutputText, OutputJSON}
}

// IsValidOutputFormat reports whether format is text or json.
func IsValidOutputFormat(format string) bool {
	return slices.Contains(ValidOutputFormats(), format)
}

// usageErrorFragments match cobra and pflag argument errors, which carry no
// sentinel to test with errors.Is.
//
//nolint:gochecknoglobals // read-only lookup table
var usageErrorFragments = []string{
	"unknown flag",
	"unknown shorthand flag",
	"flag needs an argument",
	"invalid argument",
	"if any flags in the group",
	"required flag",
	"unknown command",
	"accepts ",
}

// ExitCodeForError maps a command error to the process exit code.
//
//   - nil: ExitSuccess
//   - ExitCode2Error, ErrInvalidOutputFormat, cobra usage errors: ExitInvalidInput
//   - anything else, including a signature mismatch: ExitError
func ExitCodeForError(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.IsExitCode2Error(err),
		stderrors.Is(err, errors.ErrInvalidOutputFormat),
		isUsageError(err):
		return ExitInvalidInput
	default:
		return ExitError
	}
}

func isUsageError(err error) bool {
	msg := err.Error()
	return slices.ContainsFunc(usageErrorFragments, func(fragment string) bool {
		return strings.Contains(msg, fragment)
	})
}
