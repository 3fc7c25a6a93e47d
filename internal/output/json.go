// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

func init() {
	RegisterFormatter(NewJSONFormatter())
}

// JSONEnvelope wraps reports with metadata for the JSON output format.
type JSONEnvelope struct {
	Runs     []jsonRun    `json:"runs"`
	Metadata JSONMetadata `json:"metadata"`
}

// jsonRun adds the elapsed time in seconds, which Report keeps as a Duration.
type jsonRun struct {
	Report
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// JSONMetadata contains totals across all runs.
type JSONMetadata struct {
	TotalRuns      int    `json:"total_runs"`
	TotalProcessed int    `json:"total_processed"`
	TotalDegraded  int    `json:"total_degraded"`
	GeneratedAt    string `json:"generated_at"`
}

// JSONFormatter writes reports as a JSON object with metadata envelope.
type JSONFormatter struct {
	// Compact controls whether output is compact (single line) or pretty-printed.
	// When false (default), output is indented with two spaces on terminals.
	Compact bool

	// nowFunc is used for testing to override the current time.
	nowFunc func() time.Time
}

// Compile-time interface check.
var _ Formatter = (*JSONFormatter)(nil)

// NewJSONFormatter returns a new JSONFormatter with default settings.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Name returns the format name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// Format writes all reports as a JSON document to w.
func (f *JSONFormatter) Format(reports []Report, w io.Writer) error {
	now := time.Now()
	if f.nowFunc != nil {
		now = f.nowFunc()
	}

	env := JSONEnvelope{
		Runs: make([]jsonRun, 0, len(reports)),
		Metadata: JSONMetadata{
			TotalRuns:   len(reports),
			GeneratedAt: now.UTC().Format("2006-01-02T15:04:05Z"),
		},
	}
	for _, r := range reports {
		if r.DegradedPackages == nil {
			r.DegradedPackages = []string{}
		}
		env.Runs = append(env.Runs, jsonRun{Report: r, ElapsedSeconds: r.Elapsed.Seconds()})
		env.Metadata.TotalProcessed += r.Processed
		env.Metadata.TotalDegraded += r.Degraded
	}

	var data []byte
	var err error
	if f.shouldCompact(w) {
		data, err = json.Marshal(env)
	} else {
		data, err = json.MarshalIndent(env, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		return fmt.Errorf("write json trailing newline: %w", err)
	}
	return nil
}

// shouldCompact determines whether to use compact mode.
// If Compact is explicitly set, use that value.
// Otherwise, auto-detect: pretty-print for TTYs, compact for pipes and files.
func (f *JSONFormatter) shouldCompact(w io.Writer) bool {
	if f.Compact {
		return true
	}

	if file, ok := w.(*os.File); ok {
		fi, err := file.Stat()
		if err != nil {
			return false
		}
		return fi.Mode()&os.ModeCharDevice == 0
	}

	// For non-file writers (e.g., bytes.Buffer in tests), default to pretty.
	return false
}
