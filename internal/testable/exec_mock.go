// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

package testable

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// MockCommandExecutor is a test double for CommandExecutor.
// It can simulate a missing binary, process failures, and predetermined
// outputs.
type MockCommandExecutor struct {
	// LookPathErr, when non-nil, is returned by LookPath for any file.
	LookPathErr error

	// LookPathResult is returned as the path when LookPathErr is nil. When
	// empty, LookPath returns /usr/bin/<file>.
	LookPathResult string

	// CommandOutputs maps a command key (e.g., "llama-cli --version") to the
	// stdout that the resulting exec.Cmd should produce. The key is built from
	// the command name and all arguments joined by spaces.
	CommandOutputs map[string]string

	// CommandErrors maps a command key to an error message. When set, the
	// resulting exec.Cmd will fail with that message written to stderr.
	CommandErrors map[string]string

	// DefaultOutput is returned when no key matches in CommandOutputs.
	DefaultOutput string

	// DefaultError, when non-empty, makes every unmatched command fail.
	DefaultError string

	// Calls records the command keys that were invoked, for assertion purposes.
	Calls []string

	mu sync.Mutex
}

// LookPath returns the configured result or error.
func (m *MockCommandExecutor) LookPath(file string) (string, error) {
	if m.LookPathErr != nil {
		return "", m.LookPathErr
	}
	if m.LookPathResult != "" {
		return m.LookPathResult, nil
	}
	return "/usr/bin/" + file, nil
}

// CommandContext returns an *exec.Cmd that, when executed, produces the
// pre-configured output or error. It uses printf / exit shell commands to
// simulate the behaviour without running the real binary.
func (m *MockCommandExecutor) CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	key := name + " " + strings.Join(args, " ")
	m.mu.Lock()
	m.Calls = append(m.Calls, key)
	m.mu.Unlock()

	if errMsg, ok := m.CommandErrors[key]; ok {
		return failing(ctx, errMsg)
	}
	if out, ok := m.CommandOutputs[key]; ok {
		return printing(ctx, out)
	}

	if m.DefaultError != "" {
		return failing(ctx, m.DefaultError)
	}
	return printing(ctx, m.DefaultOutput)
}

func failing(ctx context.Context, msg string) *exec.Cmd {
	return exec.CommandContext(ctx, "sh", "-c", fmt.Sprintf("echo %q >&2; exit 1", msg)) //nolint:gosec // test helper
}

func printing(ctx context.Context, out string) *exec.Cmd {
	return exec.CommandContext(ctx, "sh", "-c", fmt.Sprintf("printf '%%s' %q", out)) //nolint:gosec // test helper
}
