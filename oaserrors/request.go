package oaserrors

import (
	"errors"
	"net/http"
	"strings"
)

// Sentinels matched by RequestError.
var (
	// ErrNotFound matches request errors reported with status 404.
	ErrNotFound = errors.New("not found")

	// ErrBadRequest matches every request error reported with status 400.
	ErrBadRequest = errors.New("bad request")

	// ErrUnknownQueryParameter matches KindUnknownQueryParameter.
	ErrUnknownQueryParameter = errors.New("unknown query parameter")

	// ErrEmptyQueryParameter matches KindEmptyQueryParameter.
	ErrEmptyQueryParameter = errors.New("empty query parameter")

	// ErrDiscriminatorMismatch matches KindDiscriminatorMismatch.
	ErrDiscriminatorMismatch = errors.New("discriminator mismatch")

	// ErrSchemaValidation matches KindSchemaValidation.
	ErrSchemaValidation = errors.New("schema validation failed")
)

// RequestErrorKind tags the reason a request failed validation.
type RequestErrorKind int

const (
	// KindNotFound means a wildcard route matched a request whose captured
	// path segment was empty.
	KindNotFound RequestErrorKind = iota + 1

	// KindUnknownQueryParameter means a query key was neither declared nor allowlisted.
	KindUnknownQueryParameter

	// KindEmptyQueryParameter means a declared query parameter had an empty
	// value without allowEmptyValue.
	KindEmptyQueryParameter

	// KindDiscriminatorMismatch means the body discriminator value was not
	// one of the declared options.
	KindDiscriminatorMismatch

	// KindSchemaValidation means the general or body schema rejected the request.
	KindSchemaValidation
)

// String returns the snake_case name of the kind.
func (k RequestErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnknownQueryParameter:
		return "unknown_query_parameter"
	case KindEmptyQueryParameter:
		return "empty_query_parameter"
	case KindDiscriminatorMismatch:
		return "discriminator_mismatch"
	case KindSchemaValidation:
		return "schema_validation"
	default:
		return "unknown"
	}
}

// Status returns the HTTP status code that a kind is reported with.
func (k RequestErrorKind) Status() int {
	if k == KindNotFound {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

// sentinel returns the per-kind sentinel.
func (k RequestErrorKind) sentinel() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindUnknownQueryParameter:
		return ErrUnknownQueryParameter
	case KindEmptyQueryParameter:
		return ErrEmptyQueryParameter
	case KindDiscriminatorMismatch:
		return ErrDiscriminatorMismatch
	case KindSchemaValidation:
		return ErrSchemaValidation
	default:
		return nil
	}
}

// ErrorEntry is a single translated validation failure.
type ErrorEntry struct {
	// Path locates the failing value, e.g. ".query.limit" or ".body.name"
	Path string `json:"path" yaml:"path"`
	// Message is a human-readable description
	Message string `json:"message" yaml:"message"`
	// ErrorCode is "<keyword>.openapi.validation"
	ErrorCode string `json:"errorCode,omitempty" yaml:"errorCode,omitempty"`
}

// RequestError is the single failure type returned by request validation.
// Callers switch on Kind (or use errors.Is with the sentinels) to pick a
// response; Status is already set to 400 or 404.
type RequestError struct {
	Kind    RequestErrorKind `json:"-" yaml:"-"`
	Status  int              `json:"status" yaml:"status"`
	Path    string           `json:"path" yaml:"path"`
	Message string           `json:"message" yaml:"message"`
	Errors  []ErrorEntry     `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// NewRequestError creates a RequestError with the status derived from kind.
func NewRequestError(kind RequestErrorKind, path, message string, entries ...ErrorEntry) *RequestError {
	return &RequestError{
		Kind:    kind,
		Status:  kind.Status(),
		Path:    path,
		Message: message,
		Errors:  entries,
	}
}

// Error returns a human-readable error message.
func (e *RequestError) Error() string {
	var b strings.Builder
	b.WriteString(http.StatusText(e.Status))
	if b.Len() == 0 {
		b.WriteString("request error")
	}
	if e.Path != "" {
		b.WriteString(" at ")
		b.WriteString(e.Path)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is reports whether target matches this error.
// ErrBadRequest matches every 400 kind, ErrNotFound matches 404, and each
// kind sentinel matches its own kind.
func (e *RequestError) Is(target error) bool {
	switch target {
	case ErrBadRequest:
		return e.Status == http.StatusBadRequest
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	s := e.Kind.sentinel()
	return s != nil && target == s
}
