// Package errors provides centralized error handling for cardmark.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// Errors are grouped into four categories. Every specific sentinel wraps its
// category so callers can branch on either:
//
//	errors.Is(err, ErrSigningKeyMissing) // specific
//	errors.Is(err, ErrConfig)            // category
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import (
	"errors"
	"fmt"
)

// Error categories.
var (
	// ErrConfig indicates a configuration problem. Always fatal, never retried.
	ErrConfig = errors.New("configuration error")

	// ErrInput indicates a required input file is missing or unreadable.
	ErrInput = errors.New("input error")

	// ErrParse indicates an artifact exists but its content cannot be interpreted.
	ErrParse = errors.New("parse error")

	// ErrVerification indicates a signature did not match its recomputed value.
	// This is a semantic result ("not authentic"), not a transient fault.
	ErrVerification = errors.New("verification failed")
)

// Configuration errors.
var (
	// ErrSigningKeyMissing indicates the signing key is absent or empty at call time.
	ErrSigningKeyMissing = fmt.Errorf("%w: signing key is not set", ErrConfig)

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = fmt.Errorf("%w: config is nil", ErrConfig)

	// ErrConfigInvalidSigning indicates an invalid signing configuration value.
	ErrConfigInvalidSigning = fmt.Errorf("%w: invalid signing configuration", ErrConfig)

	// ErrConfigInvalidWatermark indicates an invalid watermark configuration value.
	ErrConfigInvalidWatermark = fmt.Errorf("%w: invalid watermark configuration", ErrConfig)

	// ErrConfigInvalidBatch indicates an invalid batch configuration value.
	ErrConfigInvalidBatch = fmt.Errorf("%w: invalid batch configuration", ErrConfig)

	// ErrInvalidKeyEncoding indicates a key file does not contain valid hex.
	ErrInvalidKeyEncoding = fmt.Errorf("%w: invalid key encoding", ErrConfig)
)

// Input errors.
var (
	// ErrInputMissing indicates a required file (card record, PNG, sidecar) does not exist.
	ErrInputMissing = fmt.Errorf("%w: required file not found", ErrInput)

	// ErrNoCardsFound indicates a series directory contains no card directories.
	ErrNoCardsFound = fmt.Errorf("%w: no cards found", ErrInput)

	// ErrKeyFileExists indicates keygen would overwrite an existing key file.
	ErrKeyFileExists = fmt.Errorf("%w: key file already exists", ErrInput)
)

// Parse errors.
var (
	// ErrSignatureNotFound indicates the sidecar has no embedded signature marker.
	ErrSignatureNotFound = fmt.Errorf("%w: could not find embedded signature", ErrParse)

	// ErrInvalidSignature indicates a signature is not valid hex.
	ErrInvalidSignature = fmt.Errorf("%w: invalid signature encoding", ErrParse)

	// ErrCardRecordCorrupted indicates the card metadata record is not valid JSON.
	ErrCardRecordCorrupted = fmt.Errorf("%w: card record corrupted", ErrParse)

	// ErrImageDecode indicates the source image could not be decoded as PNG.
	ErrImageDecode = fmt.Errorf("%w: image decode failed", ErrParse)
)

// Verification errors.
var (
	// ErrSignatureMismatch indicates the recomputed signature differs from the stored one.
	ErrSignatureMismatch = fmt.Errorf("%w: signature mismatch", ErrVerification)
)

// CLI and runtime errors.
var (
	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrValueOutOfRange indicates that a value is outside the allowed range.
	ErrValueOutOfRange = errors.New("value out of range")

	// ErrPathTraversal indicates an attempt to use path traversal in a filename.
	ErrPathTraversal = errors.New("path traversal detected")

	// ErrLockTimeout indicates a file lock could not be acquired within the timeout period.
	ErrLockTimeout = errors.New("lock acquisition timeout")

	// ErrNonInteractiveMode indicates that an operation requiring confirmation
	// was attempted in non-interactive mode without the force flag.
	ErrNonInteractiveMode = errors.New("use --force in non-interactive mode")

	// ErrBatchFailed indicates one or more cards failed during a batch run.
	ErrBatchFailed = errors.New("batch had failures")

	// ErrJSONErrorOutput indicates that an error has already been output as JSON.
	// This ensures a non-zero exit code while preventing duplicate error messages.
	ErrJSONErrorOutput = errors.New("error output as JSON")
)

// ExitCode2Error wraps an error to indicate exit code 2 should be used.
type ExitCode2Error struct {
	Err error
}

// NewExitCode2Error wraps an error to indicate exit code 2.
func NewExitCode2Error(err error) *ExitCode2Error {
	return &ExitCode2Error{Err: err}
}

// Error implements the error interface.
func (e *ExitCode2Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitCode2Error) Unwrap() error {
	return e.Err
}

// IsExitCode2Error checks if an error should result in exit code 2.
func IsExitCode2Error(err error) bool {
	var e *ExitCode2Error
	return errors.As(err, &e)
}
