package errors

import "fmt"

// Category represents the type of error.
type Category string

const (
	CategoryConfig    Category = "config"
	CategoryPath      Category = "path"
	CategoryModule    Category = "module"
	CategoryLifecycle Category = "lifecycle"
	CategoryServer    Category = "server"
	CategoryCLI       Category = "cli"
)

// StratoError is a structured error with a stable code, a fix suggestion,
// and a documentation link.
type StratoError struct {
	// Code is a unique error identifier (e.g., "E201").
	Code string

	// Category is the error type (config, module, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *StratoError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *StratoError) Unwrap() error {
	return e.Wrapped
}

// WithDetail adds a detailed explanation to the error.
func (e *StratoError) WithDetail(d string) *StratoError {
	e.Detail = d
	return e
}

// WithDetailf adds a formatted detailed explanation to the error.
func (e *StratoError) WithDetailf(format string, args ...any) *StratoError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *StratoError) WithSuggestion(s string) *StratoError {
	e.Suggestion = s
	return e
}

// Wrap wraps another error.
func (e *StratoError) Wrap(err error) *StratoError {
	e.Wrapped = err
	return e
}

// New creates a StratoError from a registered error code.
func New(code string) *StratoError {
	template, ok := registry[code]
	if !ok {
		return &StratoError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &StratoError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new StratoError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *StratoError {
	return &StratoError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a StratoError.
func FromError(err error, code string) *StratoError {
	if err == nil {
		return nil
	}
	if se, ok := err.(*StratoError); ok {
		return se
	}
	return New(code).Wrap(err)
}
