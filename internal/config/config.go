// Package config provides configuration management for cardmark with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (CARDMARK_* prefix)
//  3. Project config (.cardmark/config.yaml)
//  4. Global config (~/.cardmark/config.yaml)
//  5. Built-in defaults
//
// An explicit config file (LoadFile, the --config flag) replaces the project and
// global files; environment variables still apply on top of it.
//
// The signing key itself never lives in configuration. Config only names where
// to find it.
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import other internal packages.
package config

import "time"

// Config is the root configuration structure for cardmark.
type Config struct {
	// Signing names the sources of the signing key.
	Signing SigningConfig `yaml:"signing" mapstructure:"signing" json:"signing"`

	// Watermark controls artifact names, sizes and sigil placement.
	Watermark WatermarkConfig `yaml:"watermark" mapstructure:"watermark" json:"watermark"`

	// Batch controls series-wide runs.
	Batch BatchConfig `yaml:"batch" mapstructure:"batch" json:"batch"`
}

// SigningConfig tells the key manager where to look for the key.
type SigningConfig struct {
	// KeyEnvVar is the environment variable holding the key.
	// Default: HYPERTEXT_SIGNING_KEY
	KeyEnvVar string `yaml:"key_env_var" mapstructure:"key_env_var" json:"key_env_var"`

	// KeyFile is an optional path to a file holding the hex key printed by keygen.
	// Consulted only when the environment variable is unset or empty.
	KeyFile string `yaml:"key_file" mapstructure:"key_file" json:"key_file"`
}

// WatermarkConfig contains per-card artifact settings.
type WatermarkConfig struct {
	// SidecarName is the sidecar file name inside a card directory.
	SidecarName string `yaml:"sidecar_name" mapstructure:"sidecar_name" json:"sidecar_name"`

	// CardFile is the metadata record file name inside a card directory.
	CardFile string `yaml:"card_file" mapstructure:"card_file" json:"card_file"`

	// DefaultImage is the card PNG path relative to the card directory.
	DefaultImage string `yaml:"default_image" mapstructure:"default_image" json:"default_image"`

	// SVGSize is the displayed width and height of the sidecar, in pixels.
	SVGSize int `yaml:"svg_size" mapstructure:"svg_size" json:"svg_size"`

	// RasterSize is the side of the sigil burned into the PNG, in pixels.
	RasterSize int `yaml:"raster_size" mapstructure:"raster_size" json:"raster_size"`

	// Inset is the distance from the bottom-right corner, in pixels.
	Inset int `yaml:"inset" mapstructure:"inset" json:"inset"`

	// MarginX is added to Inset horizontally.
	MarginX int `yaml:"margin_x" mapstructure:"margin_x" json:"margin_x"`

	// MarginY is added to Inset vertically.
	MarginY int `yaml:"margin_y" mapstructure:"margin_y" json:"margin_y"`
}

// BatchConfig contains settings for series-wide operations.
type BatchConfig struct {
	// Parallelism is the number of cards processed at once. Valid range: 1-64.
	Parallelism int `yaml:"parallelism" mapstructure:"parallelism" json:"parallelism"`

	// LockTimeout bounds the wait for an artifact file lock.
	LockTimeout time.Duration `yaml:"lock_timeout" mapstructure:"lock_timeout" json:"lock_timeout"`
}
