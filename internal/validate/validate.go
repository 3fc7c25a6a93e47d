// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

// Package validate checks pkgquery CSV files: result files against an
// attribute schema and package lists against the input layout. It reports
// every problem with its line number and a suggested fix.
package validate

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/davetashner/pkgquery/internal/packages"
	"github.com/davetashner/pkgquery/internal/schema"
)

// ValidationError represents a single validation issue on a specific line.
type ValidationError struct {
	Line       int    // 1-based line number
	Field      string // column name (empty if line-level error)
	Message    string // what's wrong
	Suggestion string // how to fix it
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("line %d: %s: %s", e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Result contains the outcome of validating a CSV file.
type Result struct {
	// TotalLines counts data rows; the header is not included.
	TotalLines int
	// Degraded counts result rows whose non-identity columns are all empty.
	Degraded int
	Errors   []ValidationError
}

// Valid returns true if no errors were found.
func (r *Result) Valid() bool {
	return len(r.Errors) == 0
}

func (r *Result) add(line int, field, msg, suggestion string) {
	r.Errors = append(r.Errors, ValidationError{Line: line, Field: field, Message: msg, Suggestion: suggestion})
}

// Validate reads a result CSV from r and checks it against s: the header
// must list the schema attributes in order, every row must have one value
// per attribute, and the identity column must be filled and unique.
func Validate(r io.Reader, s *schema.Schema) *Result {
	result := &Result{}
	want := s.Attributes()

	rows := newReader(r)
	header, err := rows.Read()
	if errors.Is(err, io.EOF) {
		result.add(1, "", "file is empty", "write the header row "+strings.Join(want, ","))
		return result
	}
	if err != nil {
		result.add(lineOf(err, 1), "", fmt.Sprintf("invalid CSV: %v", err), "ensure fields are quoted consistently")
		return result
	}
	checkHeader(result, header, want)

	seen := make(map[string]int)
	for {
		rec, err := rows.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line := result.TotalLines + 2
		if err != nil {
			result.add(lineOf(err, line), "", fmt.Sprintf("invalid CSV: %v", err), "ensure fields are quoted consistently")
			return result
		}
		line, _ = rows.FieldPos(0)
		result.TotalLines++

		if len(rec) != len(want) {
			result.add(line, "", fmt.Sprintf("expected %d columns, got %d", len(want), len(rec)),
				"rerun the package or regenerate the file with the same --attributes")
			continue
		}

		id := strings.TrimSpace(rec[0])
		if id == "" {
			result.add(line, want[0], "identity column is empty", fmt.Sprintf("provide the package name in %q", want[0]))
			continue
		}
		if first, dup := seen[id]; dup {
			result.add(line, want[0], fmt.Sprintf("duplicate package %q (first on line %d)", id, first), "remove the duplicate row")
		} else {
			seen[id] = line
		}

		if degraded(rec) {
			result.Degraded++
		}
	}
	return result
}

// Packages checks a package list: a header row followed by rows with at
// least a name, version, description and dependency column.
func Packages(r io.Reader) *Result {
	result := &Result{}
	rows := newReader(r)

	if _, err := rows.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			result.add(1, "", "file is empty", "write the header row "+strings.Join(packages.Header, ","))
		} else {
			result.add(lineOf(err, 1), "", fmt.Sprintf("invalid CSV: %v", err), "ensure fields are quoted consistently")
		}
		return result
	}

	for {
		rec, err := rows.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			result.add(lineOf(err, result.TotalLines+2), "", fmt.Sprintf("invalid CSV: %v", err), "ensure fields are quoted consistently")
			return result
		}
		line, _ := rows.FieldPos(0)
		result.TotalLines++

		if len(rec) < len(packages.Header) {
			result.add(line, "", fmt.Sprintf("expected at least %d columns, got %d", len(packages.Header), len(rec)),
				"add empty fields for the missing columns")
		}
		if strings.TrimSpace(rec[0]) == "" {
			result.add(line, packages.Header[0], "package name is empty", "provide a package name")
		}
	}
	return result
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr
}

func checkHeader(result *Result, got, want []string) {
	if len(got) != len(want) {
		result.add(1, "", fmt.Sprintf("header has %d columns, expected %d", len(got), len(want)),
			"expected header "+strings.Join(want, ","))
		return
	}
	for i := range want {
		if !strings.EqualFold(strings.TrimSpace(got[i]), want[i]) {
			result.add(1, want[i], fmt.Sprintf("header column %d is %q", i+1, got[i]),
				"expected header "+strings.Join(want, ","))
		}
	}
}

func degraded(rec []string) bool {
	for _, v := range rec[1:] {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func lineOf(err error, fallback int) int {
	var pe *csv.ParseError
	if errors.As(err, &pe) && pe.Line > 0 {
		return pe.Line
	}
	return fallback
}
