package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

// errorEntry pairs a sentinel error with its user-facing info.
type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries maps sentinel errors to their user-facing messages.
// Specific sentinels come before their categories because lookup stops at
// the first errors.Is() match.
//
//nolint:gochecknoglobals // Pre-built mapping for efficiency
var errorInfoEntries = []errorEntry{
	// ===================
	// Configuration
	// ===================
	{
		err: ErrSigningKeyMissing,
		info: ErrorInfo{
			Message: "No signing key is configured.",
			Action:  "Export HYPERTEXT_SIGNING_KEY or set signing.key_file (see 'cardmark keygen').",
		},
	},
	{
		err: ErrInvalidKeyEncoding,
		info: ErrorInfo{
			Message: "The signing key file does not contain a valid hex key.",
			Action:  "Regenerate the key file with 'cardmark keygen --key-file <path> --force'.",
		},
	},
	{
		err: ErrConfigInvalidWatermark,
		info: ErrorInfo{
			Message: "The watermark configuration is invalid.",
			Action:  "Run 'cardmark config show' and fix the watermark section.",
		},
	},
	{
		err: ErrConfigInvalidSigning,
		info: ErrorInfo{
			Message: "The signing configuration is invalid.",
			Action:  "Check signing.key_env and signing.key_file.",
		},
	},
	{
		err: ErrConfigInvalidBatch,
		info: ErrorInfo{
			Message: "The batch configuration is invalid.",
			Action:  "Set batch.parallelism between 1 and 64.",
		},
	},
	{
		err: ErrConfig,
		info: ErrorInfo{
			Message: "The configuration is invalid.",
			Action:  "Run 'cardmark config show' to inspect the effective configuration.",
		},
	},

	// ===================
	// Inputs
	// ===================
	{
		err: ErrNoCardsFound,
		info: ErrorInfo{
			Message: "No card directories were found.",
			Action:  "Point --series-dir at a directory whose children contain card.json.",
		},
	},
	{
		err: ErrKeyFileExists,
		info: ErrorInfo{
			Message: "A key file already exists at that path.",
			Action:  "Use --force to replace it. Existing sidecars will no longer verify.",
		},
	},
	{
		err: ErrInputMissing,
		info: ErrorInfo{
			Message: "A required file is missing.",
			Action:  "Check the card directory contains card.json and the rendered PNG.",
		},
	},

	// ===================
	// Parsing
	// ===================
	{
		err: ErrSignatureNotFound,
		info: ErrorInfo{
			Message: "The sidecar has no embedded signature.",
			Action:  "Regenerate it with 'cardmark sign --card-dir <dir>'.",
		},
	},
	{
		err: ErrInvalidSignature,
		info: ErrorInfo{
			Message: "The embedded signature is not valid hex.",
			Action:  "Regenerate the sidecar with 'cardmark sign --card-dir <dir>'.",
		},
	},
	{
		err: ErrCardRecordCorrupted,
		info: ErrorInfo{
			Message: "The card record is not valid JSON.",
			Action:  "Regenerate or repair card.json before watermarking.",
		},
	},
	{
		err: ErrImageDecode,
		info: ErrorInfo{
			Message: "The card image could not be decoded as PNG.",
			Action:  "Re-render the card image.",
		},
	},
	{
		err: ErrParse,
		info: ErrorInfo{
			Message: "A card artifact could not be parsed.",
			Action:  "Regenerate the card or its sidecar.",
		},
	},

	// ===================
	// Verification
	// ===================
	{
		err: ErrSignatureMismatch,
		info: ErrorInfo{
			Message: "The watermark does not match this card. Treat the card as not authentic.",
			Action:  "If the card was legitimately edited, re-sign it with 'cardmark sign'.",
		},
	},

	// ===================
	// CLI
	// ===================
	{
		err: ErrPathTraversal,
		info: ErrorInfo{
			Message: "The path escapes its card directory.",
			Action:  "Use a file name relative to the card directory.",
		},
	},
	{
		err: ErrLockTimeout,
		info: ErrorInfo{
			Message: "Another process is writing the same file.",
			Action:  "Wait for the other run to finish and retry.",
		},
	},
	{
		err: ErrNonInteractiveMode,
		info: ErrorInfo{
			Message: "Confirmation is required but no terminal is attached.",
			Action:  "Re-run with --force.",
		},
	},
	{
		err: ErrBatchFailed,
		info: ErrorInfo{
			Message: "Some cards failed during the batch run.",
			Action:  "Check the log output for the failing card directories.",
		},
	},
	{
		err: ErrInvalidOutputFormat,
		info: ErrorInfo{
			Message: "Invalid output format.",
			Action:  "Use --output text or --output json.",
		},
	},
}

// errorInfoMap provides O(1) lookup for direct sentinel error matches.
//
//nolint:gochecknoglobals // Pre-built mapping for O(1) lookup performance
var errorInfoMap = buildErrorInfoMap()

func buildErrorInfoMap() map[error]ErrorInfo {
	m := make(map[error]ErrorInfo, len(errorInfoEntries))
	for _, entry := range errorInfoEntries {
		m[entry.err] = entry.info
	}
	return m
}

// getErrorInfo looks up the ErrorInfo for a given error.
// It first tries a direct map lookup for unwrapped sentinel errors,
// then falls back to errors.Is() traversal for wrapped errors.
func getErrorInfo(err error) ErrorInfo {
	if info, ok := errorInfoMap[err]; ok {
		return info
	}

	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}

	return ErrorInfo{Message: err.Error()}
}

// UserMessage returns a user-friendly message for common errors.
// For unrecognized errors, it returns the error's original message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns a user-friendly error message along with a suggested
// action the user can take to resolve the issue.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}
