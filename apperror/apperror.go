// Package apperror provides a structured way to handle application-specific errors.
// Every handler maps collaborator failures into one of these types, so no error
// leaves the HTTP boundary unstructured and no internal cause is shown to clients.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType categorizes an AppError and decides its HTTP status.
type ErrorType int

const (
	UnknownError ErrorType = iota
	DatabaseError
	ConfigError
	AuthError         // missing credentials or bad login (401)
	UnauthorizedError // credentials present but rejected (403)
	NotFoundError
	ValidationError
	BadRequestError
	InternalError
	ExternalServiceError
	ConflictError
	// DuplicateError is a unique-field conflict on a user record. The public API
	// answers these with 400 rather than 409.
	DuplicateError
	// UpstreamError carries the status code of a proxied collaborator response.
	UpstreamError
)

// AppError is the custom error type for the application.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error // underlying error, logged but never serialized
	// Status overrides the type-derived status code when non-zero.
	Status int
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status code that corresponds to the error type.
func (e *AppError) StatusCode() int {
	if e.Status != 0 {
		return e.Status
	}
	switch e.Type {
	case AuthError:
		return http.StatusUnauthorized
	case UnauthorizedError:
		return http.StatusForbidden
	case NotFoundError:
		return http.StatusNotFound
	case ValidationError, BadRequestError, DuplicateError:
		return http.StatusBadRequest
	case ConflictError:
		return http.StatusConflict
	case ExternalServiceError, UpstreamError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// NewAppError creates a new AppError.
func NewAppError(errType ErrorType, message string, underlyingError error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     underlyingError,
	}
}

func NewDatabaseError(message string, underlyingError error) *AppError {
	return NewAppError(DatabaseError, message, underlyingError)
}

func NewConfigError(message string, underlyingError error) *AppError {
	return NewAppError(ConfigError, message, underlyingError)
}

func NewAuthError(message string, underlyingError error) *AppError {
	return NewAppError(AuthError, message, underlyingError)
}

func NewUnauthorizedError(message string, underlyingError error) *AppError {
	return NewAppError(UnauthorizedError, message, underlyingError)
}

func NewNotFoundError(message string, underlyingError error) *AppError {
	return NewAppError(NotFoundError, message, underlyingError)
}

func NewValidationError(message string, underlyingError error) *AppError {
	return NewAppError(ValidationError, message, underlyingError)
}

func NewBadRequestError(message string, underlyingError error) *AppError {
	return NewAppError(BadRequestError, message, underlyingError)
}

func NewInternalError(message string, underlyingError error) *AppError {
	return NewAppError(InternalError, message, underlyingError)
}

func NewExternalServiceError(message string, underlyingError error) *AppError {
	return NewAppError(ExternalServiceError, message, underlyingError)
}

func NewConflictError(message string, underlyingError error) *AppError {
	return NewAppError(ConflictError, message, underlyingError)
}

func NewDuplicateError(message string, underlyingError error) *AppError {
	return NewAppError(DuplicateError, message, underlyingError)
}

// NewUpstreamError wraps a non-2xx response from an outbound collaborator,
// keeping its status so the caller sees what the collaborator answered.
func NewUpstreamError(status int, message string) *AppError {
	return &AppError{Type: UpstreamError, Message: message, Status: status}
}

// ErrorResponse is the JSON body written for every failed request.
type ErrorResponse struct {
	Error string `json:"error" example:"A description of the error"`
}

func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{Error: e.Message}
}

// FromError extracts an *AppError from err, following wrap chains.
func FromError(err error) (*AppError, bool) {
	if err == nil {
		return nil, false
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

func is(err error, types ...ErrorType) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	for _, t := range types {
		if appErr.Type == t {
			return true
		}
	}
	return false
}

func IsNotFound(err error) bool        { return is(err, NotFoundError) }
func IsValidationError(err error) bool { return is(err, ValidationError, BadRequestError) }

// IsConflictError reports uniqueness and state-precondition violations alike.
func IsConflictError(err error) bool { return is(err, ConflictError, DuplicateError) }
