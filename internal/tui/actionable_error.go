package tui

// ActionableError wraps an error with an actionable suggestion.
//
// Example usage:
//
//	err := NewActionableError("key file already exists", "Re-run with --force")
//	output.Error(err)
//	// Outputs: ✗ key file already exists
//	//          ▸ Try: Re-run with --force
type ActionableError struct {
	// Message is the primary error message.
	Message string

	// Suggestion provides actionable guidance for resolving the error.
	Suggestion string

	// Context is appended to the message in parentheses when set.
	Context string

	// Err is the underlying error, exposed through Unwrap.
	Err error
}

// NewActionableError creates a new ActionableError with message and suggestion.
func NewActionableError(msg, suggestion string) *ActionableError {
	return &ActionableError{
		Message:    msg,
		Suggestion: suggestion,
	}
}

// Error implements the error interface.
// Returns the message with context if provided, e.g., "file not found (/path/to/file)".
func (e *ActionableError) Error() string {
	if e.Context != "" {
		return e.Message + " (" + e.Context + ")"
	}
	return e.Message
}

// Unwrap returns the underlying error so errors.Is keeps working.
func (e *ActionableError) Unwrap() error {
	return e.Err
}

// WithContext adds optional context to the error.
// Returns the same error for method chaining.
func (e *ActionableError) WithContext(ctx string) *ActionableError {
	e.Context = ctx
	return e
}

// Wrap attaches the underlying error.
// Returns the same error for method chaining.
func (e *ActionableError) Wrap(err error) *ActionableError {
	e.Err = err
	return e
}
