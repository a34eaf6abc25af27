package responder

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Failure kind names recorded in the status column of the output CSV.
const (
	KindTimeout    = "APITimeoutError"
	KindRateLimit  = "RateLimitError"
	KindStatus     = "APIStatusError"
	KindConnection = "APIConnectionError"
	KindEmpty      = "EmptyResponseError"
	KindRequest    = "RequestError"
	KindConfig     = "ConfigError"
)

// TransientError wraps a failed generation attempt with its failure
// class. Every TransientError is retryable under the bounded-backoff
// policy.
type TransientError struct {
	Kind string
	Err  error
}

func (e *TransientError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err == nil {
		return e.Kind
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *TransientError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ConfigError is an unresolvable responder configuration. It aborts the
// enclosing pass before any record is processed and is never retried.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Msg
}

func (e *ConfigError) Permanent() bool { return true }

func transient(kind string, err error) error {
	return &TransientError{Kind: kind, Err: err}
}

// Kind names the failure class of a generation error. Unclassified
// errors fall back to RequestError.
func Kind(err error) string {
	if err == nil {
		return ""
	}

	var te *TransientError
	if errors.As(err, &te) && te.Kind != "" {
		return te.Kind
	}

	var ce *ConfigError
	if errors.As(err, &ce) {
		return KindConfig
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	var ne net.Error
	if errors.As(err, &ne) {
		if ne.Timeout() {
			return KindTimeout
		}
		return KindConnection
	}

	return KindRequest
}

// classifyCallError maps transport-level failures shared by all HTTP
// backends.
func classifyCallError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return transient(KindTimeout, err)
	}

	var ne net.Error
	if errors.As(err, &ne) {
		if ne.Timeout() {
			return transient(KindTimeout, err)
		}
		return transient(KindConnection, err)
	}

	return transient(KindRequest, err)
}
