package config

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mrz1836/cardmark/internal/constants"
	"github.com/mrz1836/cardmark/internal/errors"
)

// newViperInstance creates a new Viper instance with the CARDMARK_ env prefix,
// the "." to "_" key replacer and all defaults.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// isConfigNotFoundError returns true if the error is a viper config file not found error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// unmarshalAndValidate unmarshals viper config into Config struct and validates it.
func unmarshalAndValidate(ctx context.Context, v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	zerolog.Ctx(ctx).Debug().
		Str("component", "config").
		Str("signing.key_env_var", cfg.Signing.KeyEnvVar).
		Bool("signing.key_file_set", cfg.Signing.KeyFile != "").
		Int("watermark.svg_size", cfg.Watermark.SVGSize).
		Int("watermark.raster_size", cfg.Watermark.RasterSize).
		Int("batch.parallelism", cfg.Batch.Parallelism).
		Dur("batch.lock_timeout", cfg.Batch.LockTimeout).
		Msg("configuration loaded and unmarshaled")

	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// Load reads configuration from all available sources with proper precedence:
//  1. Environment variables (CARDMARK_* prefix)
//  2. Project config (.cardmark/config.yaml)
//  3. Global config (~/.cardmark/config.yaml)
//  4. Built-in defaults
//
// Missing config files are not an error. For CLI flag overrides, use
// LoadWithOverrides instead.
func Load(ctx context.Context) (*Config, error) {
	v := newViperInstance()

	if err := loadGlobalConfig(v); err != nil {
		return nil, err
	}

	if err := loadProjectConfig(v); err != nil {
		return nil, err
	}

	return unmarshalAndValidate(ctx, v)
}

// LoadFile reads configuration from an explicit file, with environment
// variables and defaults applied. Unlike Load, a missing file is an error.
func LoadFile(ctx context.Context, path string) (*Config, error) {
	v := newViperInstance()

	if !fileExists(path) {
		return nil, errors.Wrapf(errors.ErrInputMissing, "config file %s", path)
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file: %s", path)
	}

	return unmarshalAndValidate(ctx, v)
}

// loadGlobalConfig attempts to load the global config file (~/.cardmark/config.yaml).
// Returns nil if the file doesn't exist or home directory cannot be determined.
func loadGlobalConfig(v *viper.Viper) error {
	globalConfigPath, ok := getGlobalConfigPathIfExists()
	if !ok {
		return nil
	}

	v.SetConfigFile(globalConfigPath)
	if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read global config file")
	}
	return nil
}

// getGlobalConfigPathIfExists returns the global config path if it exists.
func getGlobalConfigPathIfExists() (string, bool) {
	globalDir, err := GlobalConfigDir()
	if err != nil {
		return "", false
	}

	globalConfigPath := filepath.Join(globalDir, constants.GlobalConfigName)
	if _, err := os.Stat(globalConfigPath); err != nil {
		return "", false
	}

	return globalConfigPath, true
}

// loadProjectConfig attempts to load the project config file (.cardmark/config.yaml).
// Returns nil if the file doesn't exist.
func loadProjectConfig(v *viper.Viper) error {
	projectConfigPath := ProjectConfigPath()
	if !fileExists(projectConfigPath) {
		return nil
	}

	v.SetConfigFile(projectConfigPath)
	if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read project config file")
	}
	return nil
}

// fileExists returns true if the file at path exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadWithOverrides loads configuration and applies CLI flag overrides.
// Only non-zero values in overrides are applied.
func LoadWithOverrides(ctx context.Context, overrides *Config) (*Config, error) {
	cfg, err := Load(ctx)
	if err != nil {
		return nil, err
	}

	return ApplyOverrides(cfg, overrides)
}

// ApplyOverrides merges non-zero override values into cfg and re-validates it.
func ApplyOverrides(cfg, overrides *Config) (*Config, error) {
	if overrides != nil {
		applyOverrides(cfg, overrides)
	}

	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration after overrides")
	}
	return cfg, nil
}

// LoadFromPaths loads configuration from specific file paths for testing.
//
// projectConfigPath is the path to project-level config (higher priority).
// globalConfigPath is the path to global config (lower priority).
// Either path can be empty to skip that level.
func LoadFromPaths(ctx context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	if globalConfigPath != "" {
		v.SetConfigFile(globalConfigPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read global config: %s", globalConfigPath)
		}
	}

	if projectConfigPath != "" {
		v.SetConfigFile(projectConfigPath)
		if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read project config: %s", projectConfigPath)
		}
	}

	return unmarshalAndValidate(ctx, v)
}

// setDefaults configures all default values on the Viper instance.
// IMPORTANT: Keys must match the YAML tag names exactly for proper mapping,
// and every key needs a default for AutomaticEnv to see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("signing.key_env_var", d.Signing.KeyEnvVar)
	v.SetDefault("signing.key_file", d.Signing.KeyFile)

	v.SetDefault("watermark.sidecar_name", d.Watermark.SidecarName)
	v.SetDefault("watermark.card_file", d.Watermark.CardFile)
	v.SetDefault("watermark.default_image", d.Watermark.DefaultImage)
	v.SetDefault("watermark.svg_size", d.Watermark.SVGSize)
	v.SetDefault("watermark.raster_size", d.Watermark.RasterSize)
	v.SetDefault("watermark.inset", d.Watermark.Inset)
	v.SetDefault("watermark.margin_x", d.Watermark.MarginX)
	v.SetDefault("watermark.margin_y", d.Watermark.MarginY)

	v.SetDefault("batch.parallelism", d.Batch.Parallelism)
	v.SetDefault("batch.lock_timeout", d.Batch.LockTimeout.String())
}

// applyOverrides merges non-zero override values into the config.
//
// Zero cannot be told apart from "not set", so an override can never set a
// field to zero (for example, inset 0). CLI commands that need that check
// cmd.Flags().Changed and assign the field directly.
func applyOverrides(cfg, overrides *Config) {
	if overrides.Signing.KeyEnvVar != "" {
		cfg.Signing.KeyEnvVar = overrides.Signing.KeyEnvVar
	}
	if overrides.Signing.KeyFile != "" {
		cfg.Signing.KeyFile = overrides.Signing.KeyFile
	}

	applyWatermarkOverrides(&cfg.Watermark, &overrides.Watermark)

	if overrides.Batch.Parallelism != 0 {
		cfg.Batch.Parallelism = overrides.Batch.Parallelism
	}
	if overrides.Batch.LockTimeout != 0 {
		cfg.Batch.LockTimeout = overrides.Batch.LockTimeout
	}
}

// applyWatermarkOverrides applies watermark-related overrides.
// This is extracted from applyOverrides to reduce cognitive complexity.
func applyWatermarkOverrides(cfg, overrides *WatermarkConfig) {
	if overrides.SidecarName != "" {
		cfg.SidecarName = overrides.SidecarName
	}
	if overrides.CardFile != "" {
		cfg.CardFile = overrides.CardFile
	}
	if overrides.DefaultImage != "" {
		cfg.DefaultImage = overrides.DefaultImage
	}
	if overrides.SVGSize != 0 {
		cfg.SVGSize = overrides.SVGSize
	}
	if overrides.RasterSize != 0 {
		cfg.RasterSize = overrides.RasterSize
	}
	if overrides.Inset != 0 {
		cfg.Inset = overrides.Inset
	}
	if overrides.MarginX != 0 {
		cfg.MarginX = overrides.MarginX
	}
	if overrides.MarginY != 0 {
		cfg.MarginY = overrides.MarginY
	}
}

// viperDecoderOption configures mapstructure to handle time.Duration conversion from strings.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	)
}
