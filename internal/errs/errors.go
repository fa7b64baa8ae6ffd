package errs

import (
	"fmt"
	"time"
)

// ConfigurationError means required settings are absent. The caller gets a
// clear message instead of a crash or an opaque transport failure.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("incomplete Odoo configuration, missing: %v", e.Missing)
}

// AuthenticationError means the ERP rejected the credentials (or returned a
// falsy user id, which Odoo does instead of an error).
type AuthenticationError struct {
	Msg string
}

func (e *AuthenticationError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "Odoo authentication failed, check credentials"
}

// TimeoutError means a bounded wait on a remote call was exceeded.
type TimeoutError struct {
	Op      string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout on %s (%s)", e.Op, e.Timeout)
}

// RemoteCallError wraps a transport or application error from an ERP method
// invocation, keeping the resource/method that failed.
type RemoteCallError struct {
	Model  string
	Method string
	Err    error
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("Odoo execute error (%s.%s): %v", e.Model, e.Method, e.Err)
}

func (e *RemoteCallError) Unwrap() error { return e.Err }

// ValidationError means the caller's input was malformed or empty.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// StoreError wraps a failed persistence call.
type StoreError struct {
	Msg string
	Err error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *StoreError) Unwrap() error { return e.Err }
