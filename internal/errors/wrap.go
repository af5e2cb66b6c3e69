package errors

import "fmt"

// Wrap adds context to errors at package boundaries.
// It returns nil if err is nil, allowing for safe inline usage.
//
// The wrapped error preserves the original error chain:
//
//	if err := sidecar.Write(ctx, path, doc); err != nil {
//	    return errors.Wrap(err, "failed to write sidecar")
//	}
//
// Callers can still check for sentinel errors:
//
//	if errors.Is(err, errors.ErrInputMissing) {
//	    // skip this card
//	}
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf adds formatted context to errors at package boundaries.
// It returns nil if err is nil.
//
//	return errors.Wrapf(err, "failed to sign card %s", cardDir)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", msg, err)
}
