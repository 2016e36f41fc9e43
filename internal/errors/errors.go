package errors

import "fmt"

// ErrorCode represents a Tally error code.
type ErrorCode string

const (
	ErrInvalidRequest   ErrorCode = "INVALID_REQUEST"   // 400
	ErrNotFound         ErrorCode = "NOT_FOUND"         // 404
	ErrUnsafeUpload     ErrorCode = "UNSAFE_UPLOAD"     // 409
	ErrValidationFailed ErrorCode = "VALIDATION_FAILED" // 422
	ErrRemoteEmpty      ErrorCode = "REMOTE_EMPTY"      // 404
	ErrInternal         ErrorCode = "INTERNAL"          // 500
)

// TallyError represents a structured error with code, status, and details.
type TallyError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *TallyError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *TallyError {
	return &TallyError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing entity. Operations that hit
// it must leave the ledger untouched.
func NewNotFound(kind, id string) *TallyError {
	return &TallyError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, id),
		Details: map[string]any{"kind": kind, "id": id},
	}
}

// NewUnsafeUpload creates a 409 error for an upload that was refused by the
// safety gate. The reason is user-facing: a rejected upload must say why.
func NewUnsafeUpload(reason string) *TallyError {
	return &TallyError{
		Code:    ErrUnsafeUpload,
		Status:  409,
		Message: fmt.Sprintf("upload refused: %s", reason),
		Details: map[string]any{"reason": reason},
	}
}

// NewValidationFailed creates a 422 error for a snapshot that failed shape
// validation. Errors are carried in Details so callers can decide whether to
// repair and proceed.
func NewValidationFailed(errs []string) *TallyError {
	return &TallyError{
		Code:    ErrValidationFailed,
		Status:  422,
		Message: fmt.Sprintf("snapshot validation failed: %v", errs),
		Details: map[string]any{"errors": errs},
	}
}

// NewRemoteEmpty creates a 404 error for a remote store with no snapshot.
func NewRemoteEmpty(name string) *TallyError {
	return &TallyError{
		Code:    ErrRemoteEmpty,
		Status:  404,
		Message: fmt.Sprintf("remote has no snapshot: %s", name),
		Details: map[string]any{"name": name},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *TallyError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &TallyError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a TallyError with the given code.
func Is(err error, code ErrorCode) bool {
	if tErr, ok := err.(*TallyError); ok {
		return tErr.Code == code
	}
	return false
}
