// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Query errors
	ErrInvalidTicker = &Error{Code: "INVALID_TICKER", Message: "ticker must not be empty"}
	ErrStaleQuery    = &Error{Code: "STALE_QUERY", Message: "query superseded by a newer one"}

	// Relay errors
	ErrRelayRejected     = &Error{Code: "RELAY_REJECTED", Message: "target rejected by relay policy"}
	ErrUpstreamBlocked   = &Error{Code: "UPSTREAM_BLOCKED", Message: "upstream returned a challenge page"}
	ErrUpstreamMalformed = &Error{Code: "UPSTREAM_MALFORMED", Message: "upstream returned invalid JSON"}
	ErrUpstreamHTTP      = &Error{Code: "UPSTREAM_HTTP_ERROR", Message: "upstream returned an error status"}
	ErrNetworkFailure    = &Error{Code: "NETWORK_FAILURE", Message: "upstream request failed"}

	// Pipeline errors
	ErrAggregationFailed = &Error{Code: "AGGREGATION_FAILED", Message: "no upstream endpoint returned data"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
)
