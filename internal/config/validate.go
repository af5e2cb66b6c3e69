package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mrz1836/cardmark/internal/constants"
	"github.com/mrz1836/cardmark/internal/errors"
)

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
//
// Validation rules:
//   - signing.key_env_var must be a non-empty name without "="
//   - artifact file names must be plain names inside the card directory
//   - sizes must be positive, inset and margins non-negative
//   - batch.parallelism must be between 1 and 64
//   - batch.lock_timeout must be positive
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if err := validateSigningConfig(&cfg.Signing); err != nil {
		return err
	}

	if err := validateWatermarkConfig(&cfg.Watermark); err != nil {
		return err
	}

	return validateBatchConfig(&cfg.Batch)
}

// validateSigningConfig checks signing-specific configuration values.
func validateSigningConfig(cfg *SigningConfig) error {
	name := strings.TrimSpace(cfg.KeyEnvVar)
	if name == "" {
		return errors.Wrap(errors.ErrConfigInvalidSigning,
			"signing.key_env_var must not be empty")
	}
	if strings.ContainsAny(name, "= ") {
		return errors.Wrapf(errors.ErrConfigInvalidSigning,
			"signing.key_env_var is not a valid variable name: %q", cfg.KeyEnvVar)
	}
	return nil
}

// validateWatermarkConfig checks artifact names, sizes and placement.
func validateWatermarkConfig(cfg *WatermarkConfig) error {
	if err := validateFileName("watermark.sidecar_name", cfg.SidecarName); err != nil {
		return err
	}
	if err := validateFileName("watermark.card_file", cfg.CardFile); err != nil {
		return err
	}
	if err := validateRelativePath("watermark.default_image", cfg.DefaultImage); err != nil {
		return err
	}

	if cfg.SVGSize <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidWatermark,
			"watermark.svg_size must be positive, got %d", cfg.SVGSize)
	}
	if cfg.RasterSize <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidWatermark,
			"watermark.raster_size must be positive, got %d", cfg.RasterSize)
	}
	if cfg.Inset < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidWatermark,
			"watermark.inset cannot be negative, got %d", cfg.Inset)
	}
	if cfg.MarginX < 0 || cfg.MarginY < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidWatermark,
			"watermark margins cannot be negative, got x=%d y=%d", cfg.MarginX, cfg.MarginY)
	}
	return nil
}

// validateBatchConfig checks batch-specific configuration values.
func validateBatchConfig(cfg *BatchConfig) error {
	if cfg.Parallelism < 1 || cfg.Parallelism > constants.MaxParallelism {
		return errors.Wrapf(errors.ErrConfigInvalidBatch,
			"batch.parallelism must be between 1 and %d, got %d", constants.MaxParallelism, cfg.Parallelism)
	}
	if cfg.LockTimeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidBatch,
			"batch.lock_timeout must be positive, got %s", cfg.LockTimeout)
	}
	return nil
}

// validateFileName requires a bare file name with no directory part.
func validateFileName(key, name string) error {
	if name == "" {
		return errors.Wrapf(errors.ErrConfigInvalidWatermark, "%s must not be empty", key)
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %s must be a file name, got %q: %w", errors.ErrConfigInvalidWatermark, key, name, errors.ErrPathTraversal)
	}
	return nil
}

// validateRelativePath requires a path that stays inside the card directory.
func validateRelativePath(key, p string) error {
	if p == "" {
		return errors.Wrapf(errors.ErrConfigInvalidWatermark, "%s must not be empty", key)
	}
	clean := filepath.Clean(filepath.FromSlash(p))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s must stay inside the card directory, got %q: %w", errors.ErrConfigInvalidWatermark, key, p, errors.ErrPathTraversal)
	}
	return nil
}
