package native

import (
	"context"
	"encoding/hex"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cmerrors "github.com/mrz1836/cardmark/internal/errors"
)

const (
	magiPayload = "series=2026-Q1|number=001|word=MAGI|rarity=COMMON|card_type=NOUN"

	// HMAC-SHA256("testkey", magiPayload), computed with an independent implementation.
	magiSignature = "55fe6775978f7d338045df1b5b5c4d722fd1e4c48298f871bfa6ee95e74adf15"

	// HMAC-SHA256("testkey", payload of an empty identity).
	emptySignature = "1c9dc2db015f5113b6c003cd3c64be2b7017631a20720cc05aaf9c6bd4f7e869"
)

func newTestSigner(t *testing.T) *HMACSigner {
	t.Helper()
	s, err := NewHMACSigner(SigningConfig{Key: []byte("testkey")})
	require.NoError(t, err)
	return s
}

func TestNewHMACSigner(t *testing.T) {
	t.Parallel()

	t.Run("empty key is a config error", func(t *testing.T) {
		t.Parallel()
		_, err := NewHMACSigner(SigningConfig{})
		require.ErrorIs(t, err, cmerrors.ErrSigningKeyMissing)
		assert.ErrorIs(t, err, cmerrors.ErrConfig)
	})

	t.Run("copies the key", func(t *testing.T) {
		t.Parallel()
		key := []byte("testkey")
		s, err := NewHMACSigner(SigningConfig{Key: key})
		require.NoError(t, err)

		key[0] = 'X'
		sig, err := s.SignHex(context.Background(), magiPayload)
		require.NoError(t, err)
		assert.Equal(t, magiSignature, sig)
	})
}

func TestHMACSigner_SignHex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		payload  string
		expected string
	}{
		{"reference card", magiPayload, magiSignature},
		{"empty identity", "series=|number=|word=|rarity=|card_type=", emptySignature},
	}

	s := newTestSigner(t)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			sig, err := s.SignHex(context.Background(), tc.payload)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, sig)
			assert.Len(t, sig, SignatureHexLen)
		})
	}
}

func TestHMACSigner_Deterministic(t *testing.T) {
	t.Parallel()

	s := newTestSigner(t)
	first, err := s.SignHex(context.Background(), magiPayload)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = s.SignHex(context.Background(), magiPayload)
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, first, r)
	}
}

func TestHMACSigner_Sensitivity(t *testing.T) {
	t.Parallel()

	s := newTestSigner(t)
	base, err := s.SignHex(context.Background(), magiPayload)
	require.NoError(t, err)

	variants := []string{
		"series=2026-Q2|number=001|word=MAGI|rarity=COMMON|card_type=NOUN",
		"series=2026-Q1|number=002|word=MAGI|rarity=COMMON|card_type=NOUN",
		"series=2026-Q1|number=001|word=MAGE|rarity=COMMON|card_type=NOUN",
		"series=2026-Q1|number=001|word=MAGI|rarity=RARE|card_type=NOUN",
		"series=2026-Q1|number=001|word=MAGI|rarity=COMMON|card_type=VERB",
	}
	for _, v := range variants {
		sig, err := s.SignHex(context.Background(), v)
		require.NoError(t, err)
		assert.NotEqual(t, base, sig, v)
	}

	other, err := NewHMACSigner(SigningConfig{Key: []byte("otherkey")})
	require.NoError(t, err)
	sig, err := other.SignHex(context.Background(), magiPayload)
	require.NoError(t, err)
	assert.NotEqual(t, base, sig)
}

func TestHMACSigner_Verify(t *testing.T) {
	t.Parallel()

	s := newTestSigner(t)
	ctx := context.Background()

	t.Run("accepts matching signature", func(t *testing.T) {
		t.Parallel()
		sig, err := hex.DecodeString(magiSignature)
		require.NoError(t, err)
		assert.NoError(t, s.Verify(ctx, []byte(magiPayload), sig))
		assert.NoError(t, s.VerifyHex(ctx, magiPayload, magiSignature))
	})

	t.Run("rejects tampered payload", func(t *testing.T) {
		t.Parallel()
		err := s.VerifyHex(ctx, magiPayload+"x", magiSignature)
		require.ErrorIs(t, err, cmerrors.ErrSignatureMismatch)
	})

	t.Run("rejects truncated signature", func(t *testing.T) {
		t.Parallel()
		err := s.VerifyHex(ctx, magiPayload, magiSignature[:62])
		require.ErrorIs(t, err, cmerrors.ErrSignatureMismatch)
	})

	t.Run("rejects non-hex signature", func(t *testing.T) {
		t.Parallel()
		err := s.VerifyHex(ctx, magiPayload, "zz")
		require.ErrorIs(t, err, cmerrors.ErrInvalidSignature)
	})
}

func TestHMACSigner_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newTestSigner(t)
	_, err := s.SignHex(ctx, magiPayload)
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, s.Verify(ctx, nil, nil), context.Canceled)
}
