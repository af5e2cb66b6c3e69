package config

import "github.com/mrz1836/cardmark/internal/constants"

// DefaultConfig returns a new Config with the values used for issued cards.
func DefaultConfig() *Config {
	return &Config{
		Signing: SigningConfig{
			KeyEnvVar: constants.DefaultSigningKeyEnvVar,
		},
		Watermark: WatermarkConfig{
			SidecarName:  constants.SidecarFileName,
			CardFile:     constants.CardFileName,
			DefaultImage: constants.DefaultCardImage,
			SVGSize:      constants.DefaultSVGSize,
			RasterSize:   constants.DefaultRasterSize,
			Inset:        constants.DefaultInset,
			MarginX:      constants.DefaultMarginX,
			MarginY:      constants.DefaultMarginY,
		},
		Batch: BatchConfig{
			Parallelism: constants.DefaultParallelism,
			LockTimeout: constants.DefaultLockTimeout,
		},
	}
}
