package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mrz1836/cardmark/internal/constants"
	"github.com/mrz1836/cardmark/internal/crypto/native"
	"github.com/mrz1836/cardmark/internal/errors"
	"github.com/mrz1836/cardmark/internal/logging"
	"github.com/mrz1836/cardmark/internal/tui"
)

type keygenOptions struct {
	bytes   int
	keyFile string
	force   bool
}

// AddKeygenCommand adds the keygen command to the root command.
func AddKeygenCommand(root *cobra.Command, flags *GlobalFlags) {
	root.AddCommand(newKeygenCmd(flags))
}

func newKeygenCmd(flags *GlobalFlags) *cobra.Command {
	opts := &keygenOptions{}

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a random signing key",
		Long: `Generate a random signing key as hex.

Without --key-file the key is printed as an environment assignment ready to
export. With --key-file it is written to that file with mode 0600 and never
printed.

Examples:
  cardmark keygen
  cardmark keygen --key-file ~/.cardmark/signing.key
  cardmark keygen --key-file ~/.cardmark/signing.key --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runKeygen(cmd.Context(), cmd.OutOrStdout(), flags, opts)
		},
	}

	cmd.Flags().IntVar(&opts.bytes, "bytes", constants.DefaultKeyBytes, "number of random bytes")
	cmd.Flags().StringVar(&opts.keyFile, "key-file", "", "write the key to this file instead of printing it")
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "overwrite an existing key file without asking")

	return cmd
}

func runKeygen(ctx context.Context, w io.Writer, flags *GlobalFlags, opts *keygenOptions) error {
	cfg, err := loadConfig(ctx, flags)
	if err != nil {
		return err
	}

	out := tui.NewOutput(w, flags.Output)

	if opts.keyFile != "" {
		proceed, err := confirmKeyFileOverwrite(opts.keyFile, opts.force)
		if err != nil {
			return err
		}
		if !proceed {
			out.Info("Key generation canceled")
			return nil
		}
	}

	key, err := native.GenerateKey(nil, opts.bytes)
	if err != nil {
		return err
	}
	logging.RegisterSecret(key)

	if opts.keyFile == "" {
		if flags.Output == OutputJSON {
			return out.JSON(map[string]string{"env_var": cfg.Signing.KeyEnvVar, "key": key})
		}
		_, _ = fmt.Fprintf(w, "%s=%s\n", cfg.Signing.KeyEnvVar, key)
		return nil
	}

	if err := native.WriteKeyFile(ctx, opts.keyFile, key, cfg.Batch.LockTimeout); err != nil {
		return err
	}
	logger := GetLogger()
	logger.Info().Str("key_file", opts.keyFile).Int("bytes", opts.bytes).Msg("signing key written")

	if flags.Output == OutputJSON {
		return out.JSON(map[string]string{"key_file": opts.keyFile})
	}
	out.Success("Signing key written to " + opts.keyFile)
	out.Info("Set signing.key_file to this path, or unset " + cfg.Signing.KeyEnvVar + " so the file is used.")
	return nil
}

// confirmKeyFileOverwrite reports whether writing path may go ahead.
func confirmKeyFileOverwrite(path string, force bool) (bool, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) || force {
		return true, nil
	}

	if !terminalCheck() {
		return false, tui.NewActionableError("key file "+path+" already exists", "Re-run with --force to overwrite it").
			Wrap(fmt.Errorf("%w: %w", errors.ErrKeyFileExists, errors.ErrNonInteractiveMode))
	}

	var confirm bool
	if err := createKeygenConfirmForm(path, &confirm).Run(); err != nil {
		return false, fmt.Errorf("failed to get confirmation: %w", err)
	}
	return confirm, nil
}

// formRunner is an interface that matches huh.Form's Run method.
type formRunner interface {
	Run() error
}

// createKeygenConfirmForm builds the overwrite confirmation.
// This variable can be overridden in tests to inject mock forms.
//
//nolint:gochecknoglobals // Test injection point - standard Go testing pattern
var createKeygenConfirmForm = defaultCreateKeygenConfirmForm

func defaultCreateKeygenConfirmForm(path string, confirm *bool) formRunner {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Overwrite signing key file '%s'?", path)).
				Description("Sidecars signed with the old key will no longer verify.").
				Affirmative("Yes, overwrite").
				Negative("No, cancel").
				Value(confirm),
		),
	)
}

// terminalCheck is a variable for the terminal check function, allowing tests to override it.
//
//nolint:gochecknoglobals // Test injection point
var terminalCheck = isTerminal

// isTerminal returns true if stdin is a terminal.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
