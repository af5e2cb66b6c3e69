package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mrz1836/cardmark/internal/constants"
	"github.com/mrz1836/cardmark/internal/testutil"
)

const magiSignature = "55fe6775978f7d338045df1b5b5c4d722fd1e4c48298f871bfa6ee95e74adf15"

// mockFormRunner implements formRunner for tests.
type mockFormRunner struct {
	runErr error
	onRun  func()
}

func (m *mockFormRunner) Run() error {
	if m.onRun != nil {
		m.onRun()
	}
	return m.runErr
}

// mockTerminalCheckFunc replaces terminalCheck and returns a restore func.
func mockTerminalCheckFunc(isTerminal bool) func() {
	original := terminalCheck
	terminalCheck = func() bool { return isTerminal }
	return func() { terminalCheck = original }
}

// isolate points HOME, CARDMARK_HOME and the working directory at temp dirs
// and sets the test signing key.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv(HomeEnvVar, filepath.Join(home, ".cardmark"))
	t.Setenv(constants.DefaultSigningKeyEnvVar, testutil.TestKey)
	t.Setenv("NO_COLOR", "1")
	work := t.TempDir()
	t.Chdir(work)
	return work
}

// newCard writes a MAGI card with a small PNG under root/name.
func newCard(t *testing.T, root, name string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	testutil.WriteCardJSON(t, dir, testutil.MagiCard())
	testutil.WritePNG(t, filepath.Join(dir, filepath.FromSlash(constants.DefaultCardImage)), testutil.NewCardImage(120, 180))
	return dir
}

// runCLI executes the root command with args and returns stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(CloseLogFile)

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&GlobalFlags{}, BuildInfo{})
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCLI(t, args...)
	require.NoError(t, err)
	return out
}
