package watermark

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/cardmark/internal/constants"
	"github.com/mrz1836/cardmark/internal/crypto/native"
	"github.com/mrz1836/cardmark/internal/testutil"
)

const (
	magiPayload   = "series=2026-Q1|number=001|word=MAGI|rarity=COMMON|card_type=NOUN"
	magiSignature = "55fe6775978f7d338045df1b5b5c4d722fd1e4c48298f871bfa6ee95e74adf15"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	signer, err := native.NewHMACSigner(native.SigningConfig{Key: []byte(testutil.TestKey)})
	require.NoError(t, err)
	return NewService(signer, DefaultSettings(), zerolog.Nop())
}

// newCardDir writes a card.json and a small card PNG and returns the card directory.
func newCardDir(t *testing.T, root, name string, c testutil.CardContent) string {
	t.Helper()
	dir := filepath.Join(root, name)
	testutil.WriteCardJSON(t, dir, c)
	testutil.WritePNG(t, filepath.Join(dir, filepath.FromSlash(constants.DefaultCardImage)), testutil.NewCardImage(200, 300))
	return dir
}
