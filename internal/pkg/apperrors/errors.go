package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors
var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")

	ErrUnauthorized     = errors.New("unauthorized")
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenInvalid     = errors.New("invalid token")
	ErrPermissionDenied = errors.New("permission denied")

	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
)

// Domain errors, each wrapping one of the common sentinels above so the
// HTTP layer can map them without knowing about them individually.
var (
	ErrAcademicYearNotFound = fmt.Errorf("academic year not found: %w", ErrResourceNotFound)
	ErrClassroomNotFound    = fmt.Errorf("classroom not found: %w", ErrResourceNotFound)
	ErrStudentNotFound      = fmt.Errorf("student not found: %w", ErrResourceNotFound)
	ErrUserNotFound         = fmt.Errorf("user not found: %w", ErrResourceNotFound)
	ErrTeacherNotFound      = fmt.Errorf("teacher not found: %w", ErrResourceNotFound)
	ErrAbsenceNotFound      = fmt.Errorf("absence not found: %w", ErrResourceNotFound)
	ErrProxyNotFound        = fmt.Errorf("proxy not found: %w", ErrResourceNotFound)
	ErrAttendanceNotFound   = fmt.Errorf("attendance record not found: %w", ErrResourceNotFound)

	ErrAlreadyEnrolled     = fmt.Errorf("student already enrolled this academic year: %w", ErrConflict)
	ErrRollNumberTaken     = fmt.Errorf("roll number already taken in classroom: %w", ErrConflict)
	ErrProxyNotAssigned    = fmt.Errorf("proxy is no longer assigned: %w", ErrConflict)
	ErrTeacherNotAvailable = fmt.Errorf("teacher not available for period: %w", ErrConflict)
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewValidationError creates a new custom error for a rejected business rule
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// ValidationErrors collects index-tagged messages produced while checking a batch.
// A batch may still be partially applied; the list tells the caller which items were rejected.
type ValidationErrors struct {
	Messages []string
}

// Addf appends a formatted message for the item at idx
func (v *ValidationErrors) Addf(idx int, format string, args ...interface{}) {
	v.Messages = append(v.Messages, fmt.Sprintf("Record %d: ", idx)+fmt.Sprintf(format, args...))
}

// Add appends an untagged message
func (v *ValidationErrors) Add(msg string) {
	v.Messages = append(v.Messages, msg)
}

func (v *ValidationErrors) HasErrors() bool {
	return len(v.Messages) > 0
}

func (v *ValidationErrors) Error() string {
	return strings.Join(v.Messages, "; ")
}

func (v *ValidationErrors) Unwrap() error {
	return ErrValidationFailed
}
