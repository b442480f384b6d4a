package xerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common reusable application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized access")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrRateLimited  = errors.New("too many requests")
	ErrNetwork      = errors.New("network error: no response from server")
	ErrMalformed    = errors.New("malformed response from server")
)

// NetworkMessage is shown when a request never produced a server response.
const NetworkMessage = "Unable to reach the server. Please check your connection and try again."

// APIError is the structured condition extracted from an error envelope.
// Status is zero when no response was received.
type APIError struct {
	Status  int         `json:"-"`
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
	cause   error
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" && e.cause != nil {
		msg = e.cause.Error()
	}
	if e.Status == 0 {
		return fmt.Sprintf("api: %s", msg)
	}
	if e.Code != "" {
		return fmt.Sprintf("api %d %s: %s", e.Status, e.Code, msg)
	}
	return fmt.Sprintf("api %d: %s", e.Status, msg)
}

// Unwrap maps the HTTP status onto the package sentinels so callers can use errors.Is.
func (e *APIError) Unwrap() error {
	if e.cause != nil {
		return e.cause
	}
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrInvalidInput
	}
	return nil
}

// NewNetworkError wraps a transport failure.
func NewNetworkError(err error) *APIError {
	return &APIError{
		Message: NetworkMessage,
		Code:    "NETWORK_ERROR",
		cause:   fmt.Errorf("%w: %v", ErrNetwork, err),
	}
}

// NewMalformedError reports a response that could not be decoded. It carries
// no user-facing message, so pages show their own fallback.
func NewMalformedError(status int, err error) *APIError {
	return &APIError{
		Status: status,
		Code:   "MALFORMED_RESPONSE",
		cause:  fmt.Errorf("%w: %v", ErrMalformed, err),
	}
}

// AsAPIError extracts an *APIError from the chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// UserMessage returns the server's message when there is one, the generic
// network message for transport failures, and fallback otherwise.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	apiErr, ok := AsAPIError(err)
	if !ok {
		return fallback
	}
	if errors.Is(apiErr, ErrNetwork) {
		return NetworkMessage
	}
	if apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
