// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrMissingAPIKey is wrapped in the FatalError returned when a hosted backend
// is constructed without credentials.
var ErrMissingAPIKey = errors.New("no API key configured")

// TransientError is a backend failure that may succeed if retried: rate
// limiting, server overload, or a timed-out call.
type TransientError struct {
	Backend    string
	StatusCode int
	Err        error
}

func (e *TransientError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: transient error (status %d): %v", e.Backend, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: transient error: %v", e.Backend, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// FatalError is a backend failure retrying cannot fix: bad credentials, an
// invalid request, or a misconfigured backend.
type FatalError struct {
	Backend    string
	StatusCode int
	Err        error
}

func (e *FatalError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: fatal error (status %d): %v", e.Backend, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: fatal error: %v", e.Backend, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// IsTransient reports whether err, or any error it wraps, is a
// *TransientError. Everything else is treated as fatal by callers.
func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}

// transientStatus reports whether an HTTP status is worth retrying.
// 529 is Anthropic's "overloaded".
func transientStatus(code int) bool {
	switch {
	case code == http.StatusTooManyRequests, code == http.StatusRequestTimeout:
		return true
	case code >= 500:
		return true
	default:
		return false
	}
}

// classifyStatus wraps err according to the HTTP status the backend returned.
func classifyStatus(backend string, code int, err error) error {
	if transientStatus(code) {
		return &TransientError{Backend: backend, StatusCode: code, Err: err}
	}
	return &FatalError{Backend: backend, StatusCode: code, Err: err}
}

// classifyTransport wraps an error that occurred before any HTTP status was
// received. Per-call timeouts are transient; cancellation of the caller's
// context and connection failures are fatal.
func classifyTransport(ctx context.Context, backend string, err error) error {
	if ctx.Err() != nil {
		return &FatalError{Backend: backend, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TransientError{Backend: backend, Err: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &TransientError{Backend: backend, Err: err}
	}
	return &FatalError{Backend: backend, Err: err}
}

// missingKey returns the error reported when a hosted backend has no key.
func missingKey(backend, envVar string) error {
	return &FatalError{Backend: backend, Err: fmt.Errorf("%w (set %s)", ErrMissingAPIKey, envVar)}
}
