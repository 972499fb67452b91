package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write would break a uniqueness rule.
	ErrConflict = errors.New("record already exists")
	// ErrForbidden is returned when the principal may not act on the target.
	ErrForbidden = errors.New("not enough permissions")
	// ErrUnauthorized is returned for a missing, invalid or expired bearer token.
	ErrUnauthorized = errors.New("could not validate credentials")
	// ErrInvalidCredentials is returned by login for any username/password mismatch.
	ErrInvalidCredentials = errors.New("incorrect username or password")
	// ErrValidation is returned when input fails shape or range checks.
	ErrValidation = errors.New("validation failed")
)

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Data       any
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message string, data any) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Data:       data,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Code: e.StatusCode,
		Msg:  e.Message,
		Data: e.Data,
	}
}

// ValidationError carries per-field messages alongside ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return ErrValidation.Error()
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// MapErrorToHTTP maps domain errors to HTTP errors. It returns nil for
// errors outside the taxonomy; callers treat those as internal.
func MapErrorToHTTP(err error) *HTTPError {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return NewHTTPError(http.StatusUnprocessableEntity, verr.Error(), verr.Fields)
	case errors.Is(err, ErrValidation):
		return NewHTTPError(http.StatusUnprocessableEntity, messageFor(err, ErrValidation), nil)
	case errors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, messageFor(err, ErrNotFound), nil)
	case errors.Is(err, ErrConflict):
		return NewHTTPError(http.StatusConflict, messageFor(err, ErrConflict), nil)
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, ErrForbidden.Error(), nil)
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidCredentials.Error(), nil)
	case errors.Is(err, ErrUnauthorized):
		return NewHTTPError(http.StatusUnauthorized, ErrUnauthorized.Error(), nil)
	default:
		return nil
	}
}

// messageFor prefers a wrapping message such as "item not found" when the
// caller supplied one with Wrap.
func messageFor(err, sentinel error) string {
	var d *detailed
	if errors.As(err, &d) && errors.Is(d.err, sentinel) {
		return d.msg
	}
	return sentinel.Error()
}

type detailed struct {
	msg string
	err error
}

func (d *detailed) Error() string { return d.msg }
func (d *detailed) Unwrap() error { return d.err }

// Wrap attaches a client-facing message to a sentinel, e.g.
// Wrap(ErrNotFound, "item not found").
func Wrap(sentinel error, msg string) error {
	return &detailed{msg: msg, err: sentinel}
}
