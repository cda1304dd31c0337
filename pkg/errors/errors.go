package errors

import "errors"

// Error kinds surfaced to HTTP callers.
const (
	CodeValidation     = "validation_error"
	CodeAuthentication = "authentication_error"
	CodeNotFound       = "not_found"
	CodeUpstream       = "upstream_error"
)

// AppError encodes domain specific error details.
type AppError struct {
	Code    string
	Message string
	Err     error
	// Fields carries per-field validation messages for CodeValidation.
	Fields map[string][]string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Wrap produces a new AppError instance.
func Wrap(code, message string, err error) error {
	if err == nil {
		return &AppError{Code: code, Message: message}
	}
	return &AppError{Code: code, Message: message, Err: err}
}

// Validation builds a CodeValidation error carrying field messages.
func Validation(message string, fields map[string][]string) error {
	return &AppError{Code: CodeValidation, Message: message, Fields: fields}
}

// IsCode helps handler differentiate failures.
func IsCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// As extracts the AppError from err's chain, or nil.
func As(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}
