package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/cardmark/internal/constants"
	"github.com/mrz1836/cardmark/internal/errors"
	"github.com/mrz1836/cardmark/internal/sidecar"
	"github.com/mrz1836/cardmark/internal/testutil"
)

func TestSignCommand(t *testing.T) {
	work := isolate(t)
	dir := newCard(t, work, "001")

	out := mustRun(t, "sign", "--card-dir", dir)
	path := filepath.Join(dir, "watermark.svg")
	assert.Equal(t, path+"\n", out)

	text, err := sidecar.Read(path)
	require.NoError(t, err)
	sig, err := sidecar.ExtractSignature(text)
	require.NoError(t, err)
	assert.Equal(t, magiSignature, sig)
}

func TestSignCommand_JSONAndCustomPath(t *testing.T) {
	work := isolate(t)
	dir := newCard(t, work, "001")
	custom := filepath.Join(work, "marks", "001.svg")

	out := mustRun(t, "sign", "--card-dir", dir, "--out", custom, "--size", "144", "-o", "json")

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, custom, got["sidecar_path"])

	text, err := sidecar.Read(custom)
	require.NoError(t, err)
	assert.Contains(t, text, `width="144"`)
}

func TestSignCommand_MissingKey(t *testing.T) {
	work := isolate(t)
	t.Setenv(constants.DefaultSigningKeyEnvVar, "")
	dir := newCard(t, work, "001")

	_, err := runCLI(t, "sign", "--card-dir", dir)
	require.ErrorIs(t, err, errors.ErrSigningKeyMissing)
	assert.Equal(t, ExitError, ExitCodeForError(err))
	assert.NoFileExists(t, filepath.Join(dir, "watermark.svg"))
}

func TestSignCommand_KeyFileFromConfig(t *testing.T) {
	work := isolate(t)
	t.Setenv(constants.DefaultSigningKeyEnvVar, "")
	dir := newCard(t, work, "001")

	keyPath := filepath.Join(work, "signing.key")
	require.NoError(t, os.WriteFile(keyPath, []byte("abcdef0123456789\n"), 0o600))
	cfgPath := filepath.Join(work, "cardmark.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("signing:\n  key_file: "+keyPath+"\n"), 0o600))

	mustRun(t, "--config", cfgPath, "sign", "--card-dir", dir)

	t.Setenv(constants.DefaultSigningKeyEnvVar, "abcdef0123456789")
	mustRun(t, "verify", "--card-dir", dir)
}

func TestApplyCommand(t *testing.T) {
	work := isolate(t)
	dir := newCard(t, work, "001")
	out := filepath.Join(work, "stamped.png")

	printed := mustRun(t, "apply", "--card-dir", dir, "--out", out, "--size", "24", "--inset", "0")
	assert.Equal(t, out+"\n", printed)
	assert.FileExists(t, out)
	assert.FileExists(t, filepath.Join(dir, "watermark.svg"))

	img := testutil.ReadPNG(t, out)
	assert.Equal(t, 120, img.Bounds().Dx())
}

func TestApplyCommand_InvalidSize(t *testing.T) {
	work := isolate(t)
	dir := newCard(t, work, "001")

	_, err := runCLI(t, "apply", "--card-dir", dir, "--size", "0")
	require.ErrorIs(t, err, errors.ErrConfigInvalidWatermark)
}

func TestVerifyCommand(t *testing.T) {
	t.Run("match", func(t *testing.T) {
		work := isolate(t)
		dir := newCard(t, work, "001")
		mustRun(t, "sign", "--card-dir", dir)

		out := mustRun(t, "verify", "--card-dir", dir)
		assert.Contains(t, out, "OK")
	})

	t.Run("mismatch exits 1", func(t *testing.T) {
		work := isolate(t)
		dir := newCard(t, work, "001")
		mustRun(t, "sign", "--card-dir", dir)

		tampered := testutil.MagiCard()
		tampered.Word = "MAGE"
		testutil.WriteCardJSON(t, dir, tampered)

		out, err := runCLI(t, "verify", "--card-dir", dir)
		require.ErrorIs(t, err, errors.ErrSignatureMismatch)
		assert.Equal(t, ExitError, ExitCodeForError(err))
		assert.Contains(t, out, "Expected:")
		assert.Contains(t, out, magiSignature)
	})

	t.Run("missing sidecar exits 2", func(t *testing.T) {
		work := isolate(t)
		dir := newCard(t, work, "001")

		_, err := runCLI(t, "verify", "--card-dir", dir)
		require.ErrorIs(t, err, errors.ErrInputMissing)
		assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
	})

	t.Run("no marker exits 2", func(t *testing.T) {
		work := isolate(t)
		dir := newCard(t, work, "001")
		require.NoError(t, os.WriteFile(filepath.Join(dir, "watermark.svg"), []byte("<svg/>"), 0o600))

		_, err := runCLI(t, "verify", "--card-dir", dir)
		require.ErrorIs(t, err, errors.ErrSignatureNotFound)
		assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
	})

	t.Run("missing card exits 1", func(t *testing.T) {
		work := isolate(t)
		dir := newCard(t, work, "001")
		mustRun(t, "sign", "--card-dir", dir)
		require.NoError(t, os.Remove(filepath.Join(dir, "card.json")))

		_, err := runCLI(t, "verify", "--card-dir", dir)
		require.ErrorIs(t, err, errors.ErrInputMissing)
		assert.Equal(t, ExitError, ExitCodeForError(err))
	})

	t.Run("json result", func(t *testing.T) {
		work := isolate(t)
		dir := newCard(t, work, "001")
		mustRun(t, "sign", "--card-dir", dir)
		testutil.WriteRawCardJSON(t, dir, `{"content":{"SERIES":"other"}}`)

		out, err := runCLI(t, "verify", "--card-dir", dir, "-o", "json")
		require.ErrorIs(t, err, errors.ErrSignatureMismatch)
		require.ErrorIs(t, err, errors.ErrJSONErrorOutput)

		var res map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		assert.Equal(t, false, res["valid"])
		assert.Equal(t, magiSignature, res["actual"])
	})
}

func TestBatchCommand(t *testing.T) {
	work := isolate(t)
	series := filepath.Join(work, "2026-Q1")
	for _, n := range []string{"001", "002", "003"} {
		newCard(t, series, n)
	}

	out := mustRun(t, "batch", "--series-dir", series, "--parallel", "2")
	assert.Contains(t, out, "3 cards processed")
	for _, n := range []string{"001", "002", "003"} {
		assert.FileExists(t, filepath.Join(series, n, "watermark.svg"))
	}

	out = mustRun(t, "batch", "--series-dir", series, "--verify")
	assert.Equal(t, 3, strings.Count(out, " ok "))

	tampered := testutil.MagiCard()
	tampered.Rarity = "RARE"
	testutil.WriteCardJSON(t, filepath.Join(series, "002"), tampered)

	out, err := runCLI(t, "batch", "--series-dir", series, "--verify")
	require.ErrorIs(t, err, errors.ErrBatchFailed)
	assert.Equal(t, ExitError, ExitCodeForError(err))
	assert.Contains(t, out, "mismatch")
}

func TestBatchCommand_Errors(t *testing.T) {
	work := isolate(t)

	_, err := runCLI(t, "batch", "--series-dir", work)
	require.ErrorIs(t, err, errors.ErrNoCardsFound)

	newCard(t, work, "001")
	_, err = runCLI(t, "batch", "--series-dir", work, "--parallel", "1000")
	require.ErrorIs(t, err, errors.ErrConfigInvalidBatch)
}

func TestBatchCommand_JSON(t *testing.T) {
	work := isolate(t)
	newCard(t, work, "001")

	out := mustRun(t, "batch", "--series-dir", work, "-o", "json")

	var report struct {
		RunID    string `json:"run_id"`
		Failed   int    `json:"failed"`
		Outcomes []any  `json:"outcomes"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.True(t, strings.HasPrefix(report.RunID, "batch-"))
	assert.Zero(t, report.Failed)
	assert.Len(t, report.Outcomes, 1)
}

var keyLine = regexp.MustCompile(`^HYPERTEXT_SIGNING_KEY=[0-9a-f]{64}\n$`)

func TestKeygenCommand_Print(t *testing.T) {
	isolate(t)

	out := mustRun(t, "keygen")
	assert.Regexp(t, keyLine, out)

	out = mustRun(t, "keygen", "--bytes", "16")
	assert.Regexp(t, `^HYPERTEXT_SIGNING_KEY=[0-9a-f]{32}\n$`, out)

	_, err := runCLI(t, "keygen", "--bytes", "0")
	require.ErrorIs(t, err, errors.ErrValueOutOfRange)
}

func TestKeygenCommand_KeyFile(t *testing.T) {
	work := isolate(t)
	path := filepath.Join(work, "keys", "signing.key")

	out := mustRun(t, "keygen", "--key-file", path)
	assert.Contains(t, out, "Signing key written to "+path)

	data, err := os.ReadFile(path) //#nosec G304 -- test path
	require.NoError(t, err)
	key := strings.TrimSpace(string(data))
	assert.Len(t, key, 64)
	assert.NotContains(t, out, key)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	CloseLogFile()
	logPath, err := LogFilePath()
	require.NoError(t, err)
	logged, err := os.ReadFile(logPath) //#nosec G304 -- test path
	require.NoError(t, err)
	assert.Contains(t, string(logged), "signing key written")
	assert.Contains(t, string(logged), path)
	assert.NotContains(t, string(logged), key)
}

func TestKeygenCommand_ExistingFile(t *testing.T) {
	t.Run("non-interactive refuses", func(t *testing.T) {
		work := isolate(t)
		defer mockTerminalCheckFunc(false)()
		path := filepath.Join(work, "signing.key")
		require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o600))

		_, err := runCLI(t, "keygen", "--key-file", path)
		require.ErrorIs(t, err, errors.ErrKeyFileExists)
		require.ErrorIs(t, err, errors.ErrNonInteractiveMode)

		data, err := os.ReadFile(path) //#nosec G304 -- test path
		require.NoError(t, err)
		assert.Equal(t, "old\n", string(data))
	})

	t.Run("force overwrites", func(t *testing.T) {
		work := isolate(t)
		defer mockTerminalCheckFunc(false)()
		path := filepath.Join(work, "signing.key")
		require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o600))

		mustRun(t, "keygen", "--key-file", path, "--force")

		data, err := os.ReadFile(path) //#nosec G304 -- test path
		require.NoError(t, err)
		assert.Len(t, strings.TrimSpace(string(data)), 64)
	})

	for _, tc := range []struct {
		name    string
		confirm bool
		wantOld bool
	}{
		{"interactive confirm", true, false},
		{"interactive decline", false, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			work := isolate(t)
			defer mockTerminalCheckFunc(true)()

			original := createKeygenConfirmForm
			createKeygenConfirmForm = func(_ string, confirm *bool) formRunner {
				return &mockFormRunner{onRun: func() { *confirm = tc.confirm }}
			}
			defer func() { createKeygenConfirmForm = original }()

			path := filepath.Join(work, "signing.key")
			require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o600))

			out := mustRun(t, "keygen", "--key-file", path)

			data, err := os.ReadFile(path) //#nosec G304 -- test path
			require.NoError(t, err)
			if tc.wantOld {
				assert.Equal(t, "old\n", string(data))
				assert.Contains(t, out, "canceled")
			} else {
				assert.Len(t, strings.TrimSpace(string(data)), 64)
			}
		})
	}
}

func TestKeygenCommand_FormError(t *testing.T) {
	work := isolate(t)
	defer mockTerminalCheckFunc(true)()

	original := createKeygenConfirmForm
	createKeygenConfirmForm = func(_ string, _ *bool) formRunner {
		return &mockFormRunner{runErr: testutil.ErrMockForm}
	}
	defer func() { createKeygenConfirmForm = original }()

	path := filepath.Join(work, "signing.key")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o600))

	_, err := runCLI(t, "keygen", "--key-file", path)
	require.ErrorIs(t, err, testutil.ErrMockForm)
}

func TestInspectCommand(t *testing.T) {
	work := isolate(t)
	dir := newCard(t, work, "001")
	mustRun(t, "sign", "--card-dir", dir)

	out := mustRun(t, "inspect", "--card-dir", dir)
	assert.Contains(t, out, "Card Type:")
	assert.Contains(t, out, "NOUN")
	assert.Contains(t, out, "Embedded Signature:")
	assert.Contains(t, out, "Signature Matches:")
	assert.Contains(t, out, ".#.#.")
	assert.NotContains(t, out, testutil.TestKey+"\n")

	out = mustRun(t, "inspect", "--card-dir", dir, "-o", "json")
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, magiSignature, got["embedded_signature"])
	assert.Equal(t, true, got["signature_matches"])
}

func TestConfigShowCommand(t *testing.T) {
	isolate(t)
	t.Setenv(constants.DefaultSigningKeyEnvVar, "a-very-secret-signing-key")

	out := mustRun(t, "config", "show")
	assert.Contains(t, out, "sidecar_name: watermark.svg")
	assert.Contains(t, out, "lock_timeout: 5s")
	assert.Contains(t, out, "origin: env")
	assert.Contains(t, out, maskedValue)
	assert.NotContains(t, out, "a-very-secret-signing-key")

	out = mustRun(t, "config", "show", "-o", "json")
	var view struct {
		Config struct {
			Batch struct {
				Parallelism int `json:"parallelism"`
			} `json:"batch"`
		} `json:"config"`
		Key struct {
			Loaded bool   `json:"loaded"`
			Key    string `json:"key"`
		} `json:"key"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, constants.DefaultParallelism, view.Config.Batch.Parallelism)
	assert.True(t, view.Key.Loaded)
	assert.Equal(t, maskedValue, view.Key.Key)
}

func TestConfigShowCommand_NoKey(t *testing.T) {
	isolate(t)
	t.Setenv(constants.DefaultSigningKeyEnvVar, "")

	out := mustRun(t, "config", "show")
	assert.Contains(t, out, "loaded: false")
	assert.Contains(t, out, "error:")
}

func TestConfigShowCommand_ConfigFile(t *testing.T) {
	work := isolate(t)
	cfgPath := filepath.Join(work, "custom.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("watermark:\n  svg_size: 96\n"), 0o600))

	out := mustRun(t, "--config", cfgPath, "config", "show")
	assert.Contains(t, out, "svg_size: 96")

	_, err := runCLI(t, "--config", filepath.Join(work, "missing.yaml"), "config", "show")
	require.ErrorIs(t, err, errors.ErrInputMissing)
}
