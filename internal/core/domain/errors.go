package domain

import "fmt"

// ClientProtocolError signals malformed HTTP from the local client: oversized
// headers, an unparsable request line, or an unsupported encoding. The
// Acceptor replies with Status and closes the connection (§7).
type ClientProtocolError struct {
	Err    error
	Reason string
	Status int
	// ObservedBytes is the buffered byte count that triggered the error.
	// Only oversized_headers sets it; every other reason leaves it zero.
	ObservedBytes int
}

func (e *ClientProtocolError) Error() string {
	return fmt.Sprintf("client protocol error (%s, status %d): %v", e.Reason, e.Status, e.Err)
}

func (e *ClientProtocolError) Unwrap() error { return e.Err }

func NewClientProtocolError(reason string, status int, err error) *ClientProtocolError {
	return &ClientProtocolError{Reason: reason, Status: status, Err: err}
}

// NewOversizedHeadersError records the observed buffer size alongside the
// error so the acceptor's log line reports what was actually seen instead of
// just restating the configured limit.
func NewOversizedHeadersError(status int, err error, observedBytes int) *ClientProtocolError {
	return &ClientProtocolError{Reason: "oversized_headers", Status: status, Err: err, ObservedBytes: observedBytes}
}

// PoolEmptyError means the snapshot handed to the Dispatcher had zero
// eligible upstreams (§7 PoolEmpty).
type PoolEmptyError struct{}

func (e *PoolEmptyError) Error() string { return "no providers configured in proxy pool" }

// AttemptSummary records the outcome of one candidate for logging/debugging
// without leaking upstream response bytes into the aggregate error.
type AttemptSummary struct {
	UpstreamName string
	Reason       SoftFailureReason
	StatusCode   int
}

// PoolExhaustedError means every candidate in the snapshot produced a
// SoftFailure (§7 PoolExhausted).
type PoolExhaustedError struct {
	Attempts []AttemptSummary
}

func (e *PoolExhaustedError) Error() string {
	return fmt.Sprintf("all %d providers failed", len(e.Attempts))
}

func NewPoolExhaustedError(attempts []AttemptSummary) *PoolExhaustedError {
	return &PoolExhaustedError{Attempts: attempts}
}

// ConfigValidationError reports one invalid configuration field.
type ConfigValidationError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *ConfigValidationError) Error() string {
	return fmt.Sprintf("invalid configuration for %s=%v: %s", e.Field, e.Value, e.Reason)
}

func NewConfigValidationError(field string, value interface{}, reason string) *ConfigValidationError {
	return &ConfigValidationError{Field: field, Value: value, Reason: reason}
}

// DispatchError wraps the terminal error of a full dispatch pass (pool empty
// or pool exhausted) together with the request metadata, following the
// teacher's *Error{Err, ...} + Unwrap convention used for ProxyError.
type DispatchError struct {
	Err       error
	RequestID string
	Method    string
	Path      string
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch failed [%s] %s %s: %v", e.RequestID, e.Method, e.Path, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }

func NewDispatchError(requestID, method, path string, err error) *DispatchError {
	return &DispatchError{RequestID: requestID, Method: method, Path: path, Err: err}
}
