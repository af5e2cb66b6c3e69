// Package native provides keyed HMAC-SHA256 signing using standard crypto libraries.
package native

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/mrz1836/cardmark/internal/crypto"
	cmerrors "github.com/mrz1836/cardmark/internal/errors"
)

// SignatureHexLen is the length of a hex-encoded HMAC-SHA256 signature.
const SignatureHexLen = sha256.Size * 2

// SigningConfig carries the secret key into a signer.
// The signer never reads the environment itself; see KeyManager for sourcing.
type SigningConfig struct {
	Key []byte
}

// HMACSigner implements crypto.PayloadSigner with HMAC-SHA256.
// It holds a private copy of the key and is safe for concurrent use.
type HMACSigner struct {
	key []byte
}

var _ crypto.PayloadSigner = (*HMACSigner)(nil)

// NewHMACSigner returns a signer for cfg.Key.
// An empty key is a configuration error.
func NewHMACSigner(cfg SigningConfig) (*HMACSigner, error) {
	if len(cfg.Key) == 0 {
		return nil, cmerrors.ErrSigningKeyMissing
	}
	key := make([]byte, len(cfg.Key))
	copy(key, cfg.Key)
	return &HMACSigner{key: key}, nil
}

// Sign returns the raw 32-byte HMAC-SHA256 digest of message.
func (s *HMACSigner) Sign(ctx context.Context, message []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.digest(message), nil
}

// SignHex returns the lowercase hex HMAC-SHA256 of payload.
func (s *HMACSigner) SignHex(ctx context.Context, payload string) (string, error) {
	sig, err := s.Sign(ctx, []byte(payload))
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sig), nil
}

// Verify recomputes the digest of message and compares it with signature in
// constant time.
func (s *HMACSigner) Verify(ctx context.Context, message, signature []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !hmac.Equal(s.digest(message), signature) {
		return cmerrors.ErrSignatureMismatch
	}
	return nil
}

// VerifyHex is Verify for a hex-encoded signature.
func (s *HMACSigner) VerifyHex(ctx context.Context, payload, sigHex string) error {
	sig, err := hex.DecodeString(sigHex)
	if err != nil {
		return fmt.Errorf("%w: %w", cmerrors.ErrInvalidSignature, err)
	}
	return s.Verify(ctx, []byte(payload), sig)
}

func (s *HMACSigner) digest(message []byte) []byte {
	mac := hmac.New(sha256.New, s.key)
	_, _ = mac.Write(message)
	return mac.Sum(nil)
}
