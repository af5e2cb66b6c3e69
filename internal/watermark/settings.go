package watermark

import (
	"time"

	"github.com/mrz1836/cardmark/internal/config"
	"github.com/mrz1836/cardmark/internal/constants"
	"github.com/mrz1836/cardmark/internal/raster"
)

// Settings is the resolved per-card configuration the service works with.
type Settings struct {
	CardFile     string
	SidecarName  string
	DefaultImage string
	SVGSize      int
	Raster       raster.Options
	Parallelism  int
	LockTimeout  time.Duration
}

// DefaultSettings matches config.DefaultConfig.
func DefaultSettings() Settings {
	return SettingsFromConfig(config.DefaultConfig())
}

// SettingsFromConfig maps loaded configuration onto service settings.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		CardFile:     cfg.Watermark.CardFile,
		SidecarName:  cfg.Watermark.SidecarName,
		DefaultImage: cfg.Watermark.DefaultImage,
		SVGSize:      cfg.Watermark.SVGSize,
		Raster: raster.Options{
			Size:        cfg.Watermark.RasterSize,
			Inset:       cfg.Watermark.Inset,
			MarginX:     cfg.Watermark.MarginX,
			MarginY:     cfg.Watermark.MarginY,
			LockTimeout: cfg.Batch.LockTimeout,
		},
		Parallelism: cfg.Batch.Parallelism,
		LockTimeout: cfg.Batch.LockTimeout,
	}
}

// withDefaults fills zero fields so a partially built Settings still works.
func (s Settings) withDefaults() Settings {
	d := config.DefaultConfig()
	if s.CardFile == "" {
		s.CardFile = d.Watermark.CardFile
	}
	if s.SidecarName == "" {
		s.SidecarName = d.Watermark.SidecarName
	}
	if s.DefaultImage == "" {
		s.DefaultImage = d.Watermark.DefaultImage
	}
	if s.SVGSize <= 0 {
		s.SVGSize = d.Watermark.SVGSize
	}
	if s.Raster.Size <= 0 {
		s.Raster = raster.DefaultOptions()
	}
	if s.Parallelism <= 0 {
		s.Parallelism = constants.DefaultParallelism
	}
	if s.LockTimeout <= 0 {
		s.LockTimeout = constants.DefaultLockTimeout
	}
	if s.Raster.LockTimeout <= 0 {
		s.Raster.LockTimeout = s.LockTimeout
	}
	return s
}
