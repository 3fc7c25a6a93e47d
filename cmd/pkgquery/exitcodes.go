// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

package main

import "fmt"

// Exit codes for the pkgquery CLI.
const (
	ExitOK             = 0 // Every package answered.
	ExitInvalidArgs    = 1 // Invalid arguments, config or input.
	ExitPartialFailure = 2 // Run finished with degraded rows (--strict).
	ExitTotalFailure   = 3 // A run aborted on a fatal backend or I/O error.
)

// exitCodeError carries a non-zero exit code through cobra's error handling.
type exitCodeError struct {
	code int
	msg  string
}

func (e *exitCodeError) Error() string { return e.msg }

// ExitCode returns the exit code for this error.
func (e *exitCodeError) ExitCode() int { return e.code }

// exitError creates an exitCodeError. If msg is empty, the error message is
// set to a generic description of the exit code.
func exitError(code int, format string, args ...any) *exitCodeError {
	msg := fmt.Sprintf(format, args...)
	if msg == "" {
		switch code {
		case ExitPartialFailure:
			msg = "pkgquery: some packages were written as degraded rows"
		case ExitTotalFailure:
			msg = "pkgquery: run aborted"
		default:
			msg = "pkgquery: error"
		}
	}
	return &exitCodeError{code: code, msg: msg}
}
