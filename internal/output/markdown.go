// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

package output

import (
	"fmt"
	"io"
	"strings"
	"time"
)

func init() {
	RegisterFormatter(NewMarkdownFormatter())
}

// MarkdownFormatter writes reports as a human-readable Markdown summary.
type MarkdownFormatter struct{}

// Compile-time interface check.
var _ Formatter = (*MarkdownFormatter)(nil)

// NewMarkdownFormatter returns a new MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Name returns the format name.
func (m *MarkdownFormatter) Name() string {
	return "markdown"
}

// Format writes a summary table with one line per run, followed by the
// degraded packages of each run that had any.
func (m *MarkdownFormatter) Format(reports []Report, w io.Writer) error {
	if len(reports) == 0 {
		return nil
	}

	if _, err := fmt.Fprintf(w, "# pkgquery results\n\n"); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	if _, err := fmt.Fprintf(w, "| Model | Backend | Processed | Succeeded | Degraded | Skipped | Elapsed | Output |\n"+
		"|-------|---------|-----------|-----------|----------|---------|---------|--------|\n"); err != nil {
		return fmt.Errorf("write summary table: %w", err)
	}
	for _, r := range reports {
		if _, err := fmt.Fprintf(w, "| %s | %s | %d | %d | %d | %d | %s | `%s` |\n",
			r.Model, r.Backend, r.Processed, r.Succeeded, r.Degraded, r.Skipped,
			r.Elapsed.Round(time.Millisecond), r.Output); err != nil {
			return fmt.Errorf("write summary row: %w", err)
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return fmt.Errorf("write summary table: %w", err)
	}

	for _, r := range reports {
		if err := writeRunDetails(w, r); err != nil {
			return err
		}
	}
	return nil
}

// writeRunDetails writes the error and degraded packages of one run, if any.
func writeRunDetails(w io.Writer, r Report) error {
	if r.Error == "" && len(r.DegradedPackages) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "## %s\n\n", r.Model); err != nil {
		return fmt.Errorf("write run heading: %w", err)
	}
	if r.Error != "" {
		if _, err := fmt.Fprintf(w, "**Aborted:** %s\n\n", r.Error); err != nil {
			return fmt.Errorf("write run error: %w", err)
		}
	}
	if len(r.DegradedPackages) > 0 {
		lines := make([]string, len(r.DegradedPackages))
		for i, p := range r.DegradedPackages {
			lines[i] = "- `" + p + "`"
		}
		if _, err := fmt.Fprintf(w, "Degraded packages (%d):\n\n%s\n\n", len(lines), strings.Join(lines, "\n")); err != nil {
			return fmt.Errorf("write degraded packages: %w", err)
		}
	}
	return nil
}
