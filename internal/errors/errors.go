package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrConnection is returned when storage or the network is unreachable.
	ErrConnection = errors.New("connection unavailable")
	// ErrNotFound is returned when an entity id has no matching record.
	ErrNotFound = errors.New("record not found")
	// ErrValidation is returned for malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrParse is returned when a remote payload cannot be decoded.
	ErrParse = errors.New("malformed response payload")
	// ErrInvalidID is returned when an id is not in the expected format.
	ErrInvalidID = errors.New("invalid id")
	// ErrDuplicate is returned when a uniqueness constraint is violated.
	ErrDuplicate = errors.New("duplicate record")
	// ErrInvalidTransition is returned when a suggestion status change is not allowed.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrForbidden is returned when the caller may not act on another user's data.
	ErrForbidden = errors.New("forbidden")
)

// StorageError records the entity and operation of a failed storage call.
type StorageError struct {
	Entity string
	Op     string
	Err    error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s.%s: %v", e.Entity, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Validation builds an ErrValidation-wrapping error with a message.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// IsCallerError reports whether err is caused by the caller's input rather
// than by an unavailable dependency.
func IsCallerError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrDuplicate) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrForbidden)
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrValidation):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
	case errors.Is(err, ErrInvalidID):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_ID")
	case errors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, ErrDuplicate):
		return NewHTTPError(http.StatusConflict, err.Error(), "DUPLICATE")
	case errors.Is(err, ErrInvalidTransition):
		return NewHTTPError(http.StatusUnprocessableEntity, err.Error(), "INVALID_TRANSITION")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, err.Error(), "FORBIDDEN")
	case errors.Is(err, ErrConnection):
		return NewHTTPError(http.StatusServiceUnavailable, "storage unavailable", "UNAVAILABLE")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
