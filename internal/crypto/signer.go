// Package crypto defines the signing interfaces used by the watermark pipeline.
// Backends live in subpackages; the native backend implements keyed HMAC-SHA256.
package crypto

import "context"

// Signer provides signing capabilities.
// Implementations must be deterministic: signing the same message twice produces the same signature.
type Signer interface {
	// Sign returns the raw signature bytes for message.
	Sign(ctx context.Context, message []byte) ([]byte, error)

	Verifier
}

// Verifier provides signature verification capabilities.
// This is a read-only subset of Signer for consumers that only need to verify.
type Verifier interface {
	// Verify checks that a signature is valid for the given message.
	// Returns nil if valid, error if invalid or verification fails.
	Verify(ctx context.Context, message, signature []byte) error
}

// PayloadSigner signs canonical text payloads and returns the signature as
// lowercase hex, the form embedded in sidecars and fed to the sigil.
type PayloadSigner interface {
	Signer

	SignHex(ctx context.Context, payload string) (string, error)
}
