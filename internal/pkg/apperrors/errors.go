package apperrors

import (
	"errors"
	"sort"
)

// Common errors
var (
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrUnauthorized       = errors.New("authentication required")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
)

// Entity errors, all wrapping ErrResourceNotFound so handlers can treat them uniformly
var (
	ErrUserNotFound        = NewResourceNotFoundError("user not found")
	ErrStudentNotFound     = NewResourceNotFoundError("student not found")
	ErrRemarkNotFound      = NewResourceNotFoundError("remark not found")
	ErrUniversityNotFound  = NewResourceNotFoundError("university not found")
	ErrProgramNotFound     = NewResourceNotFoundError("program not found")
	ErrRequirementNotFound = NewResourceNotFoundError("requirements not found")
	ErrApplicationNotFound = NewResourceNotFoundError("application not found")
	ErrDocumentNotFound    = NewResourceNotFoundError("document not found")
	ErrPerformanceNotFound = NewResourceNotFoundError("performance record not found")
	ErrTargetNotFound      = NewResourceNotFoundError("target not found")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
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

// Is returns whether err matches target or any of errList
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
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// FieldErrors collects per-field messages. The zero value is ready to use.
type FieldErrors map[string][]string

// Add appends a message for a field
func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

// Merge copies every message of other into f
func (f FieldErrors) Merge(other FieldErrors) {
	for field, msgs := range other {
		f[field] = append(f[field], msgs...)
	}
}

// Empty reports whether no field has messages
func (f FieldErrors) Empty() bool {
	return len(f) == 0
}

// Fields returns the field names in sorted order
func (f FieldErrors) Fields() []string {
	fields := make([]string, 0, len(f))
	for k := range f {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}

// Validation wraps the field errors as a validation failure.
// Returns nil when there is nothing to report.
func (f FieldErrors) Validation() error {
	if f.Empty() {
		return nil
	}
	return &FieldError{Err: ErrValidationFailed, Fields: f}
}

// Conflict wraps the field errors as a unique constraint conflict
func (f FieldErrors) Conflict() error {
	if f.Empty() {
		return nil
	}
	return &FieldError{Err: ErrResourceAlreadyExists, Fields: f}
}

// FieldError is a validation or conflict failure carrying per-field messages
type FieldError struct {
	Err    error
	Fields FieldErrors
}

func (e *FieldError) Error() string {
	fields := e.Fields.Fields()
	if len(fields) == 0 {
		return e.Err.Error()
	}
	return e.Err.Error() + ": " + fields[0] + ": " + e.Fields[fields[0]][0]
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// NewFieldValidationError is shorthand for a single-field validation failure
func NewFieldValidationError(field, message string) error {
	return FieldErrors{field: {message}}.Validation()
}

// NewFieldConflictError is shorthand for a single-field conflict
func NewFieldConflictError(field, message string) error {
	return FieldErrors{field: {message}}.Conflict()
}

// FieldsOf extracts the per-field messages from err, if it carries any
func FieldsOf(err error) (FieldErrors, bool) {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe.Fields, true
	}
	return nil, false
}
