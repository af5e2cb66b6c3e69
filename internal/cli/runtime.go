package cli

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mrz1836/cardmark/internal/config"
	"github.com/mrz1836/cardmark/internal/crypto/native"
	"github.com/mrz1836/cardmark/internal/logging"
	"github.com/mrz1836/cardmark/internal/watermark"
)

// runtime bundles what a signing command needs.
type runtime struct {
	cfg    *config.Config
	keys   *native.KeyManager
	svc    *watermark.Service
	logger zerolog.Logger
}

// loadConfig loads the effective configuration. --config replaces project and
// global discovery; CARDMARK_* environment variables still apply.
func loadConfig(ctx context.Context, flags *GlobalFlags) (*config.Config, error) {
	ctx = GetLogger().WithContext(ctx)
	if flags.ConfigFile != "" {
		return config.LoadFile(ctx, flags.ConfigFile)
	}
	return config.Load(ctx)
}

// newKeyManager builds a key manager from the signing section.
func newKeyManager(cfg *config.Config) *native.KeyManager {
	return native.NewKeyManager(native.KeySource{
		EnvVar:  cfg.Signing.KeyEnvVar,
		KeyFile: cfg.Signing.KeyFile,
	})
}

// newRuntime loads configuration, applies flag overrides, resolves the signing
// key and builds the watermark service. The key is registered for log
// redaction before anything else can log it.
func newRuntime(ctx context.Context, flags *GlobalFlags, overrides *config.Config) (*runtime, error) {
	cfg, err := loadConfig(ctx, flags)
	if err != nil {
		return nil, err
	}
	if overrides != nil {
		if cfg, err = config.ApplyOverrides(cfg, overrides); err != nil {
			return nil, err
		}
	}

	keys := newKeyManager(cfg)
	if err := keys.Load(ctx); err != nil {
		return nil, err
	}
	keys.Redact(logging.RegisterSecret)

	signer, err := keys.NewSigner()
	if err != nil {
		return nil, err
	}

	logger := GetLogger()
	logger.Debug().
		Str("key_origin", keys.Origin()).
		Str("sidecar_name", cfg.Watermark.SidecarName).
		Msg("signing runtime ready")

	return &runtime{
		cfg:    cfg,
		keys:   keys,
		svc:    watermark.NewService(signer, watermark.SettingsFromConfig(cfg), logger),
		logger: logger,
	}, nil
}
