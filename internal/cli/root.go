package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrz1836/cardmark/internal/errors"
	"github.com/mrz1836/cardmark/internal/tui"
)

// BuildInfo contains version information set at build time via ldflags.
type BuildInfo struct {
	// Version is the semantic version (e.g., "1.0.0").
	Version string
	// Commit is the git commit hash.
	Commit string
	// Date is the build date.
	Date string
}

// globalLogger stores the logger initialized in PersistentPreRunE.
var (
	globalLogger   = zerolog.Nop() //nolint:gochecknoglobals // CLI logger requires global access
	globalLoggerMu sync.RWMutex    //nolint:gochecknoglobals // Protects globalLogger
)

// GetLogger returns the initialized logger for use by subcommands.
// Before the root command's PersistentPreRunE runs it returns a no-op logger.
// This function is safe for concurrent use.
func GetLogger() zerolog.Logger {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	return globalLogger
}

func setLogger(l zerolog.Logger) {
	globalLoggerMu.Lock()
	globalLogger = l
	globalLoggerMu.Unlock()
}

// newRootCmd creates and returns the root command for the cardmark CLI.
func newRootCmd(flags *GlobalFlags, info BuildInfo) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "cardmark",
		Short: "Sign and watermark Hypertext trading cards",
		Long: `cardmark binds a card's identity to its artwork.

It signs the card's identity fields (series, number, word, rarity, card type)
with HMAC-SHA256, writes the signature into a vector sidecar (watermark.svg),
burns a small sigil derived from the signature into the card PNG, and verifies
sidecars against the current card record.

The signing key is read from HYPERTEXT_SIGNING_KEY or signing.key_file.`,
		Version: formatVersion(info),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := BindGlobalFlags(v, cmd); err != nil {
				return fmt.Errorf("failed to bind flags: %w", err)
			}

			if !IsValidOutputFormat(flags.Output) {
				return fmt.Errorf("%w: %q must be one of %v", errors.ErrInvalidOutputFormat, flags.Output, ValidOutputFormats())
			}

			setLogger(InitLogger(flags.Verbose, flags.Quiet))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	AddGlobalFlags(cmd, flags)

	AddSignCommand(cmd, flags)
	AddApplyCommand(cmd, flags)
	AddVerifyCommand(cmd, flags)
	AddBatchCommand(cmd, flags)
	AddKeygenCommand(cmd, flags)
	AddInspectCommand(cmd, flags)
	AddConfigCommand(cmd, flags)

	return cmd
}

// formatVersion creates the version string from build info.
func formatVersion(info BuildInfo) string {
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "none"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date)
}

// Execute runs the root command with the provided context and build info.
// Errors are reported on stderr in the selected output format unless the
// command already emitted them as JSON.
func Execute(ctx context.Context, info BuildInfo) error {
	flags := &GlobalFlags{}
	//nolint:contextcheck // Cobra command pattern uses cmd.Context() internally
	cmd := newRootCmd(flags, info)
	err := cmd.ExecuteContext(ctx)
	if err != nil && !stderrors.Is(err, errors.ErrJSONErrorOutput) {
		tui.NewOutput(cmd.ErrOrStderr(), flags.Output).Error(err)
	}
	return err
}
