package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common error types for the finance API client
var (
	// Session errors
	ErrNoRefreshToken   = errors.New("no refresh token")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSessionExpired   = errors.New("session expired")

	// Response classes, matched against *APIError with errors.Is
	ErrAuthRejected = errors.New("authentication rejected")
	ErrValidation   = errors.New("request rejected")
	ErrServer       = errors.New("server error")

	// Storage errors
	ErrNotFound = errors.New("not found")

	// General errors
	ErrInvalidArgument = errors.New("invalid argument")
)

// Kind classifies an HTTP error response.
type Kind int

const (
	KindUnknown      Kind = iota
	KindAuthRejected      // 401
	KindValidation        // any other 4xx
	KindServer            // 5xx
)

func (k Kind) String() string {
	switch k {
	case KindAuthRejected:
		return "auth_rejected"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// APIError is returned when the server answered with a non-2xx status.
// Detail carries the "detail" member of the error body when present.
type APIError struct {
	StatusCode int
	Detail     string
	Method     string
	Path       string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Detail)
}

// Kind reports which class of failure the status code belongs to.
func (e *APIError) Kind() Kind {
	switch {
	case e.StatusCode == http.StatusUnauthorized:
		return KindAuthRejected
	case e.StatusCode >= 400 && e.StatusCode < 500:
		return KindValidation
	case e.StatusCode >= 500:
		return KindServer
	default:
		return KindUnknown
	}
}

// Is lets errors.Is(err, ErrAuthRejected) and friends match on the status class.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrAuthRejected:
		return e.Kind() == KindAuthRejected
	case ErrValidation:
		return e.Kind() == KindValidation
	case ErrServer:
		return e.Kind() == KindServer
	}
	return false
}

// ConnectivityError means no response reached the client: the server is
// down, unreachable, or the transport failed. It is never an auth failure.
type ConnectivityError struct {
	Method string
	Path   string
	Err    error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("%s %s: no response: %v", e.Method, e.Path, e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// MalformedResponseError means the server answered with a success status
// but the body could not be used.
type MalformedResponseError struct {
	StatusCode int
	Method     string
	Path       string
	Err        error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s %s: %d response unusable: %v", e.Method, e.Path, e.StatusCode, e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// HasResponse reports whether err carries a server response.
func HasResponse(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return true
	}
	var badErr *MalformedResponseError
	return errors.As(err, &badErr)
}

// IsConnectivity reports whether err is a ConnectivityError.
func IsConnectivity(err error) bool {
	var connErr *ConnectivityError
	return errors.As(err, &connErr)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
