// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

// Package packages reads and writes the package list CSV that drives a run.
//
// The list has a header row followed by one package per row:
// package_name, package_version, package_description, dependency_tree_string.
// Extra columns are carried along but not interpreted.
package packages

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Header is the column list written by Write.
var Header = []string{"package_name", "package_version", "package_description", "dependency_tree_string"}

// minColumns is the number of columns a row must have; shorter rows are padded.
const minColumns = 4

// Package is one row of the package list.
type Package struct {
	Name         string
	Version      string
	Description  string
	Dependencies string
	// Extra holds any columns beyond the fourth.
	Extra []string
}

// Record returns the package as CSV fields in Header order.
func (p Package) Record() []string {
	rec := []string{p.Name, p.Version, p.Description, p.Dependencies}
	return append(rec, p.Extra...)
}

// Reader streams packages from a package list. The header row is skipped.
type Reader struct {
	csv    *csv.Reader
	header bool
	line   int
}

// NewReader returns a Reader for r.
func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return &Reader{csv: cr}
}

// Next returns the next package, or io.EOF when the list is exhausted.
// Rows with fewer than four columns are padded with empty fields. Stray
// quotes inside unquoted fields are kept as literal characters.
func (r *Reader) Next() (Package, error) {
	if !r.header {
		r.header = true
		if _, err := r.read(); err != nil {
			if errors.Is(err, io.EOF) {
				return Package{}, io.EOF
			}
			return Package{}, fmt.Errorf("read package list header: %w", err)
		}
	}

	rec, err := r.read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Package{}, io.EOF
		}
		return Package{}, fmt.Errorf("read package list: %w", err)
	}

	if len(rec) < minColumns {
		slog.Warn("short package row padded", "line", r.line, "columns", len(rec))
		rec = append(rec, make([]string, minColumns-len(rec))...)
	}

	p := Package{
		Name:         strings.TrimSpace(rec[0]),
		Version:      rec[1],
		Description:  rec[2],
		Dependencies: rec[3],
	}
	if len(rec) > minColumns {
		p.Extra = rec[minColumns:]
	}
	return p, nil
}

func (r *Reader) read() ([]string, error) {
	rec, err := r.csv.Read()
	if err == nil {
		r.line, _ = r.csv.FieldPos(0)
	}
	return rec, err
}

// ReadAll reads every package from r.
func ReadAll(r io.Reader) ([]Package, error) {
	pr := NewReader(r)
	var out []Package
	for {
		p, err := pr.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, p)
	}
}

// Write writes pkgs as a package list with a header row.
func Write(w io.Writer, pkgs []Package) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write package list header: %w", err)
	}
	for _, p := range pkgs {
		if err := cw.Write(p.Record()); err != nil {
			return fmt.Errorf("write package %s: %w", p.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
