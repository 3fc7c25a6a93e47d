// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

package output

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/davetashner/pkgquery/internal/testable"
)

// FS is the file system used by Create. Tests can replace it.
var FS testable.FileSystem = testable.DefaultFS

// ErrMalformedRow is returned by CSVWriter.Write for a line that cannot be
// parsed as a CSV record. The row is skipped.
var ErrMalformedRow = errors.New("malformed result row")

// syncEvery is how many rows are written between durability points.
const syncEvery = 10

// File is the destination of a CSVWriter. *os.File satisfies it.
type File interface {
	io.Writer
	Sync() error
	Close() error
}

// CSVStats counts rows handled by a CSVWriter.
type CSVStats struct {
	Written int
	Skipped int
}

// CSVWriter appends result rows to a CSV file with every field
// double-quoted. Every tenth row the buffer is flushed and the file synced,
// so at most the last nine rows are lost if the process dies.
//
// A CSVWriter is owned by a single run and is not safe for concurrent use.
type CSVWriter struct {
	// Logger receives skipped-row and column-count messages. Nil means
	// slog.Default().
	Logger *slog.Logger

	dst     File
	buf     *bufio.Writer
	columns int
	eol     string
	stats   CSVStats
	closed  bool
}

// NewCSVWriter writes header to dst and returns a writer for the rows that
// follow. If the header cannot be written, dst is closed.
func NewCSVWriter(dst File, header []string) (*CSVWriter, error) {
	w := &CSVWriter{
		dst:     dst,
		buf:     bufio.NewWriter(dst),
		columns: len(header),
		eol:     "\n",
	}
	if runtime.GOOS == "windows" {
		w.eol = "\r\n"
	}

	err := w.writeRecord(header)
	if err == nil {
		err = w.buf.Flush()
	}
	if err != nil {
		_ = dst.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	return w, nil
}

// Create opens path for writing, creating parent directories, and writes
// header to it.
func Create(path string, header []string) (*CSVWriter, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := FS.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}
	f, err := FS.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	return NewCSVWriter(f, header)
}

// Write parses line as one CSV record, trims every field and appends it.
// A line that does not parse is logged, counted and skipped; the returned
// error wraps ErrMalformedRow and the writer stays usable.
func (w *CSVWriter) Write(line string) error {
	if w.closed {
		return errors.New("write to closed CSVWriter")
	}

	r := csv.NewReader(strings.NewReader(line))
	r.TrimLeadingSpace = true
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	rec, err := r.Read()
	if err != nil {
		w.stats.Skipped++
		w.logger().Error("cannot parse result row, skipping", "row", fmt.Sprintf("%.200s", line), "error", err)
		return fmt.Errorf("%w: %v", ErrMalformedRow, err)
	}

	for i := range rec {
		rec[i] = strings.TrimSpace(rec[i])
	}
	if len(rec) != w.columns {
		w.logger().Warn("result row column count differs from header", "package", rec[0], "want", w.columns, "got", len(rec))
	}

	if err := w.writeRecord(rec); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	w.stats.Written++

	if w.stats.Written%syncEvery == 0 {
		if err := w.sync(); err != nil {
			return err
		}
	}
	return nil
}

func (w *CSVWriter) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}

// Stats returns the row counters.
func (w *CSVWriter) Stats() CSVStats { return w.stats }

// Close flushes and syncs pending rows and closes the file. The file is
// closed even when flushing fails.
func (w *CSVWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	syncErr := w.sync()
	closeErr := w.dst.Close()
	return errors.Join(syncErr, closeErr)
}

func (w *CSVWriter) sync() error {
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("flush results: %w", err)
	}
	if err := w.dst.Sync(); err != nil {
		return fmt.Errorf("sync results: %w", err)
	}
	return nil
}

// writeRecord writes fields with every value quoted. encoding/csv only
// quotes when needed, so records are encoded here.
func (w *CSVWriter) writeRecord(fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.buf.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.buf.WriteString(`"` + strings.ReplaceAll(f, `"`, `""`) + `"`); err != nil {
			return err
		}
	}
	_, err := w.buf.WriteString(w.eol)
	return err
}
