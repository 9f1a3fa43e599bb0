package ztapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"syscall"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeNetwork indicates a transport-level failure
	ErrTypeNetwork ErrorType = iota
	// ErrTypeTimeout indicates the request did not complete in time
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates nothing is listening (node service stopped)
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates the backend host could not be resolved
	ErrTypeDNS
	// ErrTypeAuth indicates a rejected or missing credential (HTTP 401/403)
	ErrTypeAuth
	// ErrTypeNotFound indicates the network or member does not exist
	ErrTypeNotFound
	// ErrTypeRateLimited indicates the backend throttled the request (HTTP 429)
	ErrTypeRateLimited
	// ErrTypeHTTP indicates any other non-2xx response
	ErrTypeHTTP
	// ErrTypeParse indicates a malformed response body
	ErrTypeParse
	// ErrTypeConfig indicates the client is missing something it needs (token, URL)
	ErrTypeConfig
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	case ErrTypeAuth:
		return "Authentication Error"
	case ErrTypeNotFound:
		return "Not Found"
	case ErrTypeRateLimited:
		return "Rate Limited"
	case ErrTypeHTTP:
		return "HTTP Error"
	case ErrTypeParse:
		return "Parse Error"
	case ErrTypeConfig:
		return "Configuration Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// APIError is returned by every backend call that fails.
type APIError struct {
	Backend    string    // "node" or "central"
	Type       ErrorType // Category of error
	Message    string    // Human-readable error message
	StatusCode int       // HTTP status code (if applicable)
	Err        error     // Underlying error (if any)
	Retryable  bool      // Whether a later poll may succeed
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %s (caused by: %v)", e.Backend, e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Backend, e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *APIError) Unwrap() error {
	return e.Err
}

// classifyTransportError turns an http.Client error into an APIError.
func classifyTransportError(backend string, err error) *APIError {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return &APIError{Backend: backend, Type: ErrTypeTimeout, Message: "request timed out", Err: err, Retryable: true}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &APIError{
			Backend: backend,
			Type:    ErrTypeDNS,
			Message: fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Err:     err,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return &APIError{Backend: backend, Type: ErrTypeConnectionRefused, Message: "connection refused", Err: err, Retryable: true}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != err {
		return classifyTransportError(backend, urlErr.Err)
	}

	return &APIError{Backend: backend, Type: ErrTypeNetwork, Message: "request failed", Err: err, Retryable: true}
}

// statusError maps a non-2xx response to an APIError.
func statusError(backend string, status int, body string) *APIError {
	msg := http.StatusText(status)
	if body != "" {
		msg = fmt.Sprintf("%s: %s", msg, body)
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &APIError{Backend: backend, Type: ErrTypeAuth, Message: msg, StatusCode: status}
	case status == http.StatusNotFound:
		return &APIError{Backend: backend, Type: ErrTypeNotFound, Message: msg, StatusCode: status}
	case status == http.StatusTooManyRequests:
		return &APIError{Backend: backend, Type: ErrTypeRateLimited, Message: msg, StatusCode: status, Retryable: true}
	default:
		return &APIError{Backend: backend, Type: ErrTypeHTTP, Message: msg, StatusCode: status, Retryable: status >= 500}
	}
}

func parseError(backend string, err error) *APIError {
	return &APIError{Backend: backend, Type: ErrTypeParse, Message: "malformed response", Err: err}
}

func configError(backend, message string) *APIError {
	return &APIError{Backend: backend, Type: ErrTypeConfig, Message: message}
}

func asAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsAuthError reports whether err is a credential failure.
func IsAuthError(err error) bool {
	apiErr, ok := asAPIError(err)
	return ok && (apiErr.Type == ErrTypeAuth || apiErr.Type == ErrTypeConfig)
}

// IsNotFound reports whether err is a 404 from either backend.
func IsNotFound(err error) bool {
	apiErr, ok := asAPIError(err)
	return ok && apiErr.Type == ErrTypeNotFound
}

// IsRetryable reports whether a later attempt may succeed.
func IsRetryable(err error) bool {
	apiErr, ok := asAPIError(err)
	return ok && apiErr.Retryable
}

// ShortMessage returns a concise, user-facing message for err.
func ShortMessage(err error) string {
	apiErr, ok := asAPIError(err)
	if !ok {
		return err.Error()
	}

	who := "ZeroTier node"
	if apiErr.Backend == BackendCentral {
		who = "ZeroTier Central"
	}

	switch apiErr.Type {
	case ErrTypeTimeout:
		return who + " not responding (timeout)"
	case ErrTypeConnectionRefused:
		return who + " refused connection - is zerotier-one running?"
	case ErrTypeDNS:
		return "Cannot resolve " + who + " host"
	case ErrTypeAuth:
		return who + " rejected credentials"
	case ErrTypeNotFound:
		return who + ": not found"
	case ErrTypeRateLimited:
		return who + " rate limit hit - slowing down"
	case ErrTypeHTTP:
		return fmt.Sprintf("%s error (HTTP %d)", who, apiErr.StatusCode)
	case ErrTypeParse:
		return "Failed to parse " + who + " response"
	case ErrTypeConfig:
		return apiErr.Message
	default:
		return who + ": network error"
	}
}
