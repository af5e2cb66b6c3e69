// Package constants provides centralized constant values used throughout cardmark.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// File names used by the watermarking pipeline inside a card directory.
const (
	// CardFileName is the per-card metadata record produced by content generation.
	CardFileName = "card.json"

	// SidecarFileName is the vector sidecar holding the sigil and the embedded signature.
	SidecarFileName = "watermark.svg"

	// DefaultCardImage is the rendered card PNG, relative to the card directory.
	DefaultCardImage = "outputs/card_1024x1536.png"
)

// Directory names used by cardmark for its own data.
const (
	// CardmarkHome is the hidden directory name where cardmark stores config and logs.
	// This directory is created in the user's home directory.
	CardmarkHome = ".cardmark"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"
)

// Signing defaults.
const (
	// DefaultSigningKeyEnvVar is the environment variable that carries the signing key.
	// Existing sidecars were issued with keys read from this variable.
	DefaultSigningKeyEnvVar = "HYPERTEXT_SIGNING_KEY"

	// DefaultKeyBytes is the number of random bytes produced by keygen.
	DefaultKeyBytes = 32
)

// Sigil geometry and placement defaults.
const (
	// DefaultSVGSize is the width and height, in pixels, of the vector sidecar.
	DefaultSVGSize = 72

	// DefaultRasterSize is the side length, in pixels, of the sigil burned into the PNG.
	DefaultRasterSize = 36

	// DefaultInset is the distance, in pixels, between the sigil and the image corner.
	DefaultInset = 12

	// DefaultMarginX is the extra horizontal offset from the right edge.
	DefaultMarginX = 16

	// DefaultMarginY is the extra vertical offset from the bottom edge.
	DefaultMarginY = 8

	// SigilBits is the number of signature bits rendered in the 5x5 grid.
	SigilBits = 25

	// SigilGridSide is the number of cells per grid row and column.
	SigilGridSide = 5
)

// Sidecar marker tokens. These are part of the artifact format and must not change.
const (
	// SignatureMarker precedes the 64-character hex signature in the sidecar.
	SignatureMarker = "hypertext_sig:"

	// PayloadMarker precedes the canonical payload in the sidecar.
	PayloadMarker = "hypertext_payload:"
)

// Batch and locking defaults.
const (
	// DefaultParallelism is the number of cards processed concurrently in batch mode.
	DefaultParallelism = 4

	// MaxParallelism caps batch concurrency.
	MaxParallelism = 64

	// DefaultLockTimeout is the maximum duration to wait for a file lock.
	DefaultLockTimeout = 5 * time.Second

	// LockRetryInterval is the delay between lock acquisition attempts.
	LockRetryInterval = 50 * time.Millisecond
)
