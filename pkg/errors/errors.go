package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure produced while fetching a remote resource.
type Kind int

const (
	// KindUnknown is reported for errors that carry no classification.
	KindUnknown Kind = iota
	// KindTransientNetwork is a transport failure (dial, timeout, reset).
	KindTransientNetwork
	// KindClient is a 4xx response.
	KindClient
	// KindServer is a 5xx response.
	KindServer
	// KindUnexpectedStatus is any other non-2xx response.
	KindUnexpectedStatus
	// KindRetryExhausted is returned once every retry attempt has failed.
	KindRetryExhausted
	// KindMapped is an application error rewritten from a status code.
	KindMapped
	// KindValidation is an invalid argument.
	KindValidation
	// KindDecode is a 2xx response whose body could not be parsed.
	KindDecode
	// KindInternal wraps any other failure with context.
	KindInternal
)

var kindNames = map[Kind]string{
	KindUnknown:          "unknown",
	KindTransientNetwork: "transient_network",
	KindClient:           "client_error",
	KindServer:           "server_error",
	KindUnexpectedStatus: "unexpected_status",
	KindRetryExhausted:   "retry_exhausted",
	KindMapped:           "mapped",
	KindValidation:       "validation",
	KindDecode:           "decode",
	KindInternal:         "internal",
}

// String returns the snake_case name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Kinder is implemented by every error type in this package.
type Kinder interface {
	Kind() Kind
}

// Application errors produced by status mapping.
var (
	ErrAPINotFound         = NewMappedError(http.StatusNotFound, "API not found")
	ErrServerNotResponding = NewMappedError(http.StatusServiceUnavailable, "Server is not responding")
)

// NetworkError represents a request that never produced a response.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

// NewNetworkError creates a new network error
func NewNetworkError(op, url string, err error) *NetworkError {
	return &NetworkError{Op: op, URL: url, Err: err}
}

// Error implements the error interface
func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
	}
	return fmt.Sprintf("%s %s: network error", e.Op, e.URL)
}

// Unwrap returns the wrapped error
func (e *NetworkError) Unwrap() error { return e.Err }

// Kind implements Kinder
func (e *NetworkError) Kind() Kind { return KindTransientNetwork }

// HTTPError represents a non-2xx response.
type HTTPError struct {
	StatusCode int
	Status     string
	Method     string
	URL        string
	Body       []byte
}

// NewHTTPError creates a new HTTP error. An empty status falls back to the
// canonical text for the code.
func NewHTTPError(statusCode int, status, method, url string, body []byte) *HTTPError {
	if status == "" {
		status = fmt.Sprintf("%d %s", statusCode, http.StatusText(statusCode))
	}
	return &HTTPError{
		StatusCode: statusCode,
		Status:     status,
		Method:     method,
		URL:        url,
		Body:       body,
	}
}

// Error implements the error interface
func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s from %s %s", e.Status, e.Method, e.URL)
}

// Kind implements Kinder
func (e *HTTPError) Kind() Kind {
	switch {
	case e.StatusCode >= 400 && e.StatusCode < 500:
		return KindClient
	case e.StatusCode >= 500 && e.StatusCode < 600:
		return KindServer
	default:
		return KindUnexpectedStatus
	}
}

// RetryExhaustedError is returned when all retries failed. Err holds the
// failure of the last attempt.
type RetryExhaustedError struct {
	Retries    int
	MaxRetries int
	Err        error
}

// NewRetryExhaustedError creates a new retry exhausted error
func NewRetryExhaustedError(retries, maxRetries int, err error) *RetryExhaustedError {
	return &RetryExhaustedError{Retries: retries, MaxRetries: maxRetries, Err: err}
}

// Error implements the error interface
func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("Retries exhausted: %d/%d", e.Retries, e.MaxRetries)
}

// Unwrap returns the wrapped error
func (e *RetryExhaustedError) Unwrap() error { return e.Err }

// Kind implements Kinder
func (e *RetryExhaustedError) Kind() Kind { return KindRetryExhausted }

// MappedError is an application error chosen for a specific response status.
type MappedError struct {
	StatusCode int
	Message    string
}

// NewMappedError creates a new mapped error
func NewMappedError(statusCode int, message string) *MappedError {
	return &MappedError{StatusCode: statusCode, Message: message}
}

// Error implements the error interface
func (e *MappedError) Error() string { return e.Message }

// Kind implements Kinder
func (e *MappedError) Kind() Kind { return KindMapped }

// ValidationError represents a validation failure with field-level details
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed: %s - %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Kind implements Kinder
func (e *ValidationError) Kind() Kind { return KindValidation }

// DecodeError is returned when a successful response body is not a valid payload.
type DecodeError struct {
	URL string
	Err error
}

// NewDecodeError creates a new decode error
func NewDecodeError(url string, err error) *DecodeError {
	return &DecodeError{URL: url, Err: err}
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode response from %s: %v", e.URL, e.Err)
}

// Unwrap returns the wrapped error
func (e *DecodeError) Unwrap() error { return e.Err }

// Kind implements Kinder
func (e *DecodeError) Kind() Kind { return KindDecode }

// InternalError represents an internal error with context
type InternalError struct {
	Message string
	Err     error
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *InternalError {
	return &InternalError{
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface
func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *InternalError) Unwrap() error {
	return e.Err
}

// Kind implements Kinder
func (e *InternalError) Kind() Kind { return KindInternal }

// KindOf returns the kind of the outermost classified error in the chain.
// InternalError wrappers are skipped so the underlying cause decides.
func KindOf(err error) Kind {
	kind := KindUnknown
	for err != nil {
		if k, ok := err.(Kinder); ok {
			if k.Kind() != KindInternal {
				return k.Kind()
			}
			kind = KindInternal
		}
		err = stderrors.Unwrap(err)
	}
	return kind
}

// IsRetryable reports whether err is worth another attempt: transport
// failures, 5xx responses and 429.
func IsRetryable(err error) bool {
	var httpErr *HTTPError
	if stderrors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.Kind() == KindServer
	}
	var netErr *NetworkError
	return stderrors.As(err, &netErr)
}
