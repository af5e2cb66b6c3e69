package native

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	cmerrors "github.com/mrz1836/cardmark/internal/errors"
	"github.com/mrz1836/cardmark/internal/fileutil"
)

// GenerateKey reads n random bytes from reader (crypto/rand when nil) and
// returns them hex-encoded.
func GenerateKey(reader io.Reader, n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("key bytes must be greater than zero: %w", cmerrors.ErrValueOutOfRange)
	}
	if reader == nil {
		reader = rand.Reader
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(reader, buf); err != nil {
		return "", fmt.Errorf("generate random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// WriteKeyFile stores a hex key with owner-only permissions.
func WriteKeyFile(ctx context.Context, path, hexKey string, lockTimeout time.Duration) error {
	return fileutil.WriteLocked(ctx, path, []byte(hexKey+"\n"), fileutil.SecretPerm, lockTimeout)
}
