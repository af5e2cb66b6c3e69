package cli

import (
	"fmt"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/cardmark/internal/errors"
)

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"mismatch", fmt.Errorf("card: %w", errors.ErrSignatureMismatch), ExitError},
		{"missing key", errors.ErrSigningKeyMissing, ExitError},
		{"missing card", fmt.Errorf("x: %w", errors.ErrInputMissing), ExitError},
		{"exit code 2", errors.NewExitCode2Error(errors.ErrSignatureNotFound), ExitInvalidInput},
		{"wrapped exit code 2", fmt.Errorf("verify: %w", errors.NewExitCode2Error(errors.ErrInputMissing)), ExitInvalidInput},
		{"invalid output", fmt.Errorf("%w: xml", errors.ErrInvalidOutputFormat), ExitInvalidInput},
		{"unknown flag", fmt.Errorf("unknown flag: --nope"), ExitInvalidInput},
		{"required flag", fmt.Errorf(`required flag(s) "card-dir" not set`), ExitInvalidInput},
		{"extra args", fmt.Errorf(`unknown command "x" for "cardmark sign"`), ExitInvalidInput},
		{"arg count", fmt.Errorf("accepts 0 arg(s), received 1"), ExitInvalidInput},
		{"batch failed", fmt.Errorf("%w: 1 of 3 cards", errors.ErrBatchFailed), ExitError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExitCodeForError(tc.err))
		})
	}
}

func TestIsValidOutputFormat(t *testing.T) {
	assert.True(t, IsValidOutputFormat(OutputText))
	assert.True(t, IsValidOutputFormat(OutputJSON))
	assert.False(t, IsValidOutputFormat("yaml"))
	assert.False(t, IsValidOutputFormat(""))
}

func TestAddGlobalFlags(t *testing.T) {
	flags := &GlobalFlags{}
	cmd := &cobra.Command{Use: "cardmark"}
	AddGlobalFlags(cmd, flags)

	for _, name := range []string{"output", "verbose", "quiet", "config"} {
		require.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
	assert.Equal(t, "o", cmd.PersistentFlags().Lookup("output").Shorthand)
	assert.Equal(t, OutputText, flags.Output)
}

func TestGlobalFlags_VerboseQuietExclusive(t *testing.T) {
	isolate(t)

	_, err := runCLI(t, "config", "show", "--verbose", "--quiet")
	require.Error(t, err)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}
