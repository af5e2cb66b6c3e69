package crypto

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSignerImplementsVerifier is a compile-time check that any Signer can be used as a Verifier.
func TestSignerImplementsVerifier(_ *testing.T) {
	var _ Verifier = (Signer)(nil)
	var _ Signer = (PayloadSigner)(nil)
}

// mockSigner is a simple mock implementation for testing the interface contract.
type mockSigner struct {
	signFunc   func(ctx context.Context, message []byte) ([]byte, error)
	verifyFunc func(ctx context.Context, message, signature []byte) error
}

func (m *mockSigner) Sign(ctx context.Context, message []byte) ([]byte, error) {
	if m.signFunc != nil {
		return m.signFunc(ctx, message)
	}
	return []byte{0xca, 0xfe}, nil
}

func (m *mockSigner) Verify(ctx context.Context, message, signature []byte) error {
	if m.verifyFunc != nil {
		return m.verifyFunc(ctx, message, signature)
	}
	return nil
}

func (m *mockSigner) SignHex(ctx context.Context, payload string) (string, error) {
	sig, err := m.Sign(ctx, []byte(payload))
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sig), nil
}

func TestPayloadSignerInterface(t *testing.T) {
	t.Run("SignHex returns lowercase hex", func(t *testing.T) {
		var signer PayloadSigner = &mockSigner{}

		sig, err := signer.SignHex(context.Background(), "series=|number=|word=|rarity=|card_type=")
		require.NoError(t, err)
		assert.Equal(t, "cafe", sig)
	})

	t.Run("PayloadSigner can be used as Verifier", func(t *testing.T) {
		var verifier Verifier = &mockSigner{}
		assert.NoError(t, verifier.Verify(context.Background(), []byte("message"), []byte("sig")))
	})
}
