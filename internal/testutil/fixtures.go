package testutil

import (
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestKey is the signing key used by golden-value tests.
const TestKey = "testkey"

// CardContent is the content object of a card.json fixture.
type CardContent struct {
	Series   string
	Number   string
	Word     string
	Rarity   string
	CardType string
}

// MagiCard is the reference card used across tests.
func MagiCard() CardContent {
	return CardContent{
		Series:   "2026-Q1",
		Number:   "001",
		Word:     "MAGI",
		Rarity:   "COMMON",
		CardType: "NOUN",
	}
}

// WriteCardJSON writes a card.json with the given content into dir and returns its path.
// Extra top-level keys that the pipeline writes are included so loaders are
// exercised against realistic records.
func WriteCardJSON(t *testing.T, dir string, c CardContent) string {
	t.Helper()

	doc := map[string]any{
		"id": "card-" + c.Number,
		"content": map[string]any{
			"SERIES":      c.Series,
			"NUMBER":      c.Number,
			"WORD":        c.Word,
			"RARITY_TEXT": c.Rarity,
			"CARD_TYPE":   c.CardType,
			"DEFINITION":  "a wise one from the east",
		},
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(dir, 0o750))
	path := filepath.Join(dir, "card.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

// WriteRawCardJSON writes raw bytes as card.json into dir.
func WriteRawCardJSON(t *testing.T, dir, raw string) string {
	t.Helper()

	require.NoError(t, os.MkdirAll(dir, 0o750))
	path := filepath.Join(dir, "card.json")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))
	return path
}

// NewCardImage returns an opaque image filled with a deterministic gradient so
// that any modified pixel is detectable.
func NewCardImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / max(w-1, 1)),
				G: uint8(y * 255 / max(h-1, 1)),
				B: uint8((x + y) % 256),
				A: 0xff,
			})
		}
	}
	return img
}

// WritePNG encodes img to path, creating parent directories.
func WritePNG(t *testing.T, path string, img image.Image) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	f, err := os.Create(path) //#nosec G304 -- test fixture path
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	require.NoError(t, png.Encode(f, img))
}

// ReadPNG decodes the PNG at path.
func ReadPNG(t *testing.T, path string) image.Image {
	t.Helper()

	f, err := os.Open(path) //#nosec G304 -- test fixture path
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	img, err := png.Decode(f)
	require.NoError(t, err)
	return img
}
