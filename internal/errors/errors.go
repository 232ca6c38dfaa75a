package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Tratativa error code.
type ErrorCode string

const (
	ErrInvalidRequest        ErrorCode = "INVALID_REQUEST"         // 400
	ErrUnknownQuestion       ErrorCode = "UNKNOWN_QUESTION"        // 400
	ErrNotFound              ErrorCode = "NOT_FOUND"               // 404
	ErrFileNotFound          ErrorCode = "FILE_NOT_FOUND"          // 404
	ErrTemplateAlreadyExists ErrorCode = "TEMPLATE_ALREADY_EXISTS" // 409
	ErrClipboardUnavailable  ErrorCode = "CLIPBOARD_UNAVAILABLE"   // 503
	ErrInternal              ErrorCode = "INTERNAL"                // 500
)

// TratativaError represents a structured error with code, status, and details.
type TratativaError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *TratativaError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *TratativaError {
	return &TratativaError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewUnknownQuestion creates a 400 error for a question id outside the checklist.
func NewUnknownQuestion(id string) *TratativaError {
	return &TratativaError{
		Code:    ErrUnknownQuestion,
		Status:  400,
		Message: fmt.Sprintf("unknown question: %s", id),
		Details: map[string]any{"question_id": id},
	}
}

// NewNotFound creates a 404 error for when a template cannot be found.
func NewNotFound(identifier string) *TratativaError {
	return &TratativaError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("template not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewFileNotFound creates a 404 error for a missing import file.
func NewFileNotFound(path string) *TratativaError {
	return &TratativaError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewTemplateAlreadyExists creates a 409 error for template id collisions.
func NewTemplateAlreadyExists(id string) *TratativaError {
	return &TratativaError{
		Code:    ErrTemplateAlreadyExists,
		Status:  409,
		Message: fmt.Sprintf("template with id %q already exists", id),
		Details: map[string]any{"id": id},
	}
}

// NewClipboardUnavailable creates a 503 error when the system clipboard rejects a write.
func NewClipboardUnavailable(target string, err error) *TratativaError {
	msg := fmt.Sprintf("could not copy %s to clipboard", target)
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &TratativaError{
		Code:    ErrClipboardUnavailable,
		Status:  503,
		Message: msg,
		Details: map[string]any{"target": target},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The message stays generic; the cause is kept in Details for logging.
func NewInternal(err error) *TratativaError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &TratativaError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
	}
}

// Is checks if an error (or any error it wraps) is a TratativaError with the given code.
func Is(err error, code ErrorCode) bool {
	var tErr *TratativaError
	if stderrors.As(err, &tErr) {
		return tErr.Code == code
	}
	return false
}
