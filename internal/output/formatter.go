// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

// Package output writes run results: the quoted results CSV that a run
// streams row by row, and end-of-run reports in several formats.
package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// Report summarizes one run of one model over a package list.
type Report struct {
	RunID   string `json:"run_id"`
	Model   string `json:"model"`
	Backend string `json:"backend"`
	Input   string `json:"input"`
	Output  string `json:"output"`

	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Degraded  int `json:"degraded"`
	// Skipped counts rows the CSV writer could not parse.
	Skipped int `json:"skipped"`

	Elapsed time.Duration `json:"-"`

	// DegradedPackages lists packages whose row was written degraded.
	DegradedPackages []string `json:"degraded_packages"`

	// Error is set when the run aborted.
	Error string `json:"error,omitempty"`
}

// Formatter writes run reports to the given writer in a specific format.
type Formatter interface {
	// Name returns the format name (e.g., "json", "markdown").
	Name() string

	// Format writes the reports to w.
	Format(reports []Report, w io.Writer) error
}

var (
	fmtMu       sync.RWMutex
	fmtRegistry = make(map[string]Formatter)
)

// RegisterFormatter adds a formatter to the global registry.
func RegisterFormatter(f Formatter) {
	fmtMu.Lock()
	defer fmtMu.Unlock()
	fmtRegistry[f.Name()] = f
}

// GetFormatter returns the formatter with the given name, or an error if not found.
func GetFormatter(name string) (Formatter, error) {
	fmtMu.RLock()
	defer fmtMu.RUnlock()
	f, ok := fmtRegistry[name]
	if !ok {
		return nil, fmt.Errorf("unknown format: %q (available: %s)", name, formatNames())
	}
	return f, nil
}

// FormatNames returns the registered format names, sorted.
func FormatNames() []string {
	fmtMu.RLock()
	defer fmtMu.RUnlock()
	return sortedNames()
}

// resetFmtForTesting clears the formatter registry. Only for use in tests.
func resetFmtForTesting() {
	fmtMu.Lock()
	defer fmtMu.Unlock()
	fmtRegistry = make(map[string]Formatter)
}

func sortedNames() []string {
	names := make([]string, 0, len(fmtRegistry))
	for name := range fmtRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// formatNames returns a comma-separated sorted list of registered format
// names. Callers hold fmtMu.
func formatNames() string {
	return strings.Join(sortedNames(), ", ")
}
