package errors

import "fmt"

// ErrorCode represents a marginalia error code.
type ErrorCode string

const (
	ErrInvalidRequest   ErrorCode = "INVALID_REQUEST"   // 400
	ErrNotFound         ErrorCode = "NOT_FOUND"         // 404
	ErrDocumentMismatch ErrorCode = "DOCUMENT_MISMATCH" // 409
	ErrInternal         ErrorCode = "INTERNAL"          // 500
)

// Error represents a structured error with code, status, and details. The
// reconciliation engine itself never fails; these errors belong to the ops,
// CLI, and MCP surfaces around it.
type Error struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *Error {
	return &Error{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing snapshot or document.
func NewNotFound(identifier string) *Error {
	return &Error{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewDocumentMismatch creates a 409 error for operations addressed to a
// document other than the session's active one.
func NewDocumentMismatch(active, requested string) *Error {
	return &Error{
		Code:    ErrDocumentMismatch,
		Status:  409,
		Message: fmt.Sprintf("session is bound to document %q, not %q; reset the session first", active, requested),
		Details: map[string]any{"active": active, "requested": requested},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *Error {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &Error{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a marginalia Error with the given code.
func Is(err error, code ErrorCode) bool {
	if appErr, ok := err.(*Error); ok {
		return appErr.Code == code
	}
	return false
}
