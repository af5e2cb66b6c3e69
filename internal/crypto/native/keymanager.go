package native

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/mrz1836/cardmark/internal/constants"
	cmerrors "github.com/mrz1836/cardmark/internal/errors"
)

// Key origins reported by KeyManager.Origin.
const (
	OriginExplicit = "explicit"
	OriginEnv      = "env"
	OriginFile     = "file"
)

// KeySource describes where a signing key may come from, in priority order:
// explicit bytes, then the environment variable, then the key file.
type KeySource struct {
	Explicit []byte
	EnvVar   string
	KeyFile  string
}

// KeyManager resolves the signing key once and hands out signers for it.
type KeyManager struct {
	src       KeySource
	lookupEnv func(string) (string, bool)

	mu     sync.RWMutex
	key    []byte
	origin string
}

// NewKeyManager creates a KeyManager for src. An empty EnvVar falls back to the
// default signing key variable.
func NewKeyManager(src KeySource) *KeyManager {
	if src.EnvVar == "" {
		src.EnvVar = constants.DefaultSigningKeyEnvVar
	}
	return &KeyManager{src: src, lookupEnv: os.LookupEnv}
}

// Load resolves the key. It is a no-op once a key has been loaded.
func (km *KeyManager) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	km.mu.Lock()
	defer km.mu.Unlock()

	if km.key != nil {
		return nil
	}

	if len(km.src.Explicit) > 0 {
		km.set(km.src.Explicit, OriginExplicit)
		return nil
	}

	if v, ok := km.lookupEnv(km.src.EnvVar); ok && v != "" {
		km.set([]byte(v), OriginEnv)
		return nil
	}

	if km.src.KeyFile != "" {
		key, err := readKeyFile(km.src.KeyFile)
		if err != nil {
			return err
		}
		km.set(key, OriginFile)
		return nil
	}

	return fmt.Errorf("%w: set %s or signing.key_file", cmerrors.ErrSigningKeyMissing, km.src.EnvVar)
}

// Origin reports which source supplied the key, or "" before Load succeeds.
func (km *KeyManager) Origin() string {
	km.mu.RLock()
	defer km.mu.RUnlock()
	return km.origin
}

// EnvVar returns the environment variable consulted for the key.
func (km *KeyManager) EnvVar() string {
	return km.src.EnvVar
}

// NewSigner creates a signer for the loaded key.
func (km *KeyManager) NewSigner() (*HMACSigner, error) {
	km.mu.RLock()
	defer km.mu.RUnlock()

	if km.key == nil {
		return nil, cmerrors.ErrSigningKeyMissing
	}
	return NewHMACSigner(SigningConfig{Key: km.key})
}

func (km *KeyManager) set(key []byte, origin string) {
	km.key = append([]byte(nil), key...)
	km.origin = origin
}

// readKeyFile returns the trimmed hex text of a key file. The text itself is
// the key, matching what keygen prints for the environment variable.
func readKeyFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path comes from configuration
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: key file %s does not exist", cmerrors.ErrSigningKeyMissing, path)
		}
		return nil, fmt.Errorf("failed to read key file %s: %w", path, err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, fmt.Errorf("%w: key file %s is empty", cmerrors.ErrSigningKeyMissing, path)
	}
	if _, err := hex.DecodeString(text); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", cmerrors.ErrInvalidKeyEncoding, path, err)
	}
	return []byte(text), nil
}

// Redact hands the loaded key to register, typically logging.RegisterSecret,
// so log sinks can scrub it. It reports false when no key is loaded.
func (km *KeyManager) Redact(register func(string) bool) bool {
	km.mu.RLock()
	defer km.mu.RUnlock()

	if km.key == nil {
		return false
	}
	return register(string(km.key))
}
