// Package apierror defines the error types returned when talking to the
// finance backend, and helpers to turn them into user-facing messages.
package apierror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors matched with errors.Is.
var (
	// ErrUnauthorized means the session is missing or expired.
	ErrUnauthorized = errors.New("session expired, please log in")
	// ErrNotFound means the backend does not know the resource.
	ErrNotFound = errors.New("not found")
	// ErrUnsupported means the active backend cannot perform the operation.
	ErrUnsupported = errors.New("operation not supported by this backend")
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.StatusCode, e.Detail)
}

// Unwrap maps well-known statuses to the sentinel errors.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// TransportError is a request that got no response at all.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: request failed: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ValidationError is input rejected on the client before any request is sent.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid input: %s", e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Kind classifies an error for presentation.
type Kind string

// Error kinds
const (
	KindNone         Kind = ""
	KindTransport    Kind = "transport"
	KindValidation   Kind = "validation"
	KindUnauthorized Kind = "unauthorized"
	KindNotFound     Kind = "not_found"
	KindServer       Kind = "server"
	KindCanceled     Kind = "canceled"
	KindUnknown      Kind = "unknown"
)

// Classify returns the kind of err.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCanceled
	}
	if errors.Is(err, ErrUnauthorized) {
		return KindUnauthorized
	}

	var validation *ValidationError
	if errors.As(err, &validation) {
		return KindValidation
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusNotFound:
			return KindNotFound
		case apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
			return KindValidation
		default:
			return KindServer
		}
	}

	var transport *TransportError
	if errors.As(err, &transport) {
		return KindTransport
	}
	return KindUnknown
}

// UserMessage renders err the way it is shown to a user: backend validation
// details verbatim, transport failures as a generic message.
func UserMessage(err error) string {
	switch Classify(err) {
	case KindNone:
		return ""
	case KindTransport:
		return "Could not reach the server. Please check your connection and try again."
	case KindUnauthorized:
		return ErrUnauthorized.Error()
	case KindCanceled:
		return "The request was cancelled."
	case KindValidation, KindNotFound:
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Detail != "" {
			return apiErr.Detail
		}
		var validation *ValidationError
		if errors.As(err, &validation) {
			return validation.Error()
		}
		return err.Error()
	case KindServer:
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Detail != "" {
			return fmt.Sprintf("The server failed to process the request: %s", apiErr.Detail)
		}
		return "The server failed to process the request. Please try again."
	default:
		return err.Error()
	}
}
