// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

// Package request drives one query per package through a backend, retrying
// transient backend failures and unparsable replies within a fixed budget,
// and streams the resulting rows to a writer.
package request

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/davetashner/pkgquery/internal/llm"
	"github.com/davetashner/pkgquery/internal/normalize"
	"github.com/davetashner/pkgquery/internal/output"
	"github.com/davetashner/pkgquery/internal/packages"
	"github.com/davetashner/pkgquery/internal/prompt"
)

// Defaults for Options.
const (
	DefaultRetryCount    = 3
	DefaultLogIterations = 10
	DefaultBackoffBase   = 2 * time.Second
)

// ErrNoResponse is wrapped in the Outcome error of a package for which the
// backend never returned a reply.
var ErrNoResponse = errors.New("no response received")

// RowWriter receives one rendered CSV line per package.
type RowWriter interface {
	Write(line string) error
}

// Options tunes a Manager. Zero fields take the package defaults.
type Options struct {
	// RetryCount is the number of attempts per package, covering both
	// backend errors and unparsable replies.
	RetryCount int

	// LogIterations controls how often progress is logged.
	LogIterations int

	// QueryRestriction stops a run after that many packages. Zero means no
	// limit.
	QueryRestriction int

	// BackoffBase is the wait after the first transient failure. It doubles
	// on every further attempt.
	BackoffBase time.Duration

	// Sleep waits for d or until ctx is done. Tests replace it.
	Sleep func(ctx context.Context, d time.Duration) error

	// Request is the template for every backend call; Prompt is filled in.
	Request llm.Request

	// Logger receives progress and retry messages. Defaults to slog.Default().
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.RetryCount <= 0 {
		o.RetryCount = DefaultRetryCount
	}
	if o.LogIterations <= 0 {
		o.LogIterations = DefaultLogIterations
	}
	if o.BackoffBase <= 0 {
		o.BackoffBase = DefaultBackoffBase
	}
	if o.Sleep == nil {
		o.Sleep = sleep
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Stats summarizes a run.
type Stats struct {
	Processed int
	Succeeded int
	Degraded  int
	Elapsed   time.Duration

	// DegradedPackages names the packages written degraded, in input order.
	DegradedPackages []string
}

// Manager runs packages through one backend. A Manager processes one
// package at a time and holds no state between packages.
type Manager struct {
	provider llm.Provider
	template *prompt.Template
	parser   *normalize.Parser
	opts     Options
	log      *slog.Logger
}

// New creates a Manager.
func New(p llm.Provider, t *prompt.Template, parser *normalize.Parser, opts Options) *Manager {
	opts = opts.withDefaults()
	return &Manager{
		provider: p,
		template: t,
		parser:   parser,
		opts:     opts,
		log:      opts.Logger,
	}
}

// Options returns the effective options.
func (m *Manager) Options() Options { return m.opts }

// Do queries the backend about pkg and returns its row.
//
// Every reply is normalized; an unparsable reply uses up an attempt and a
// fresh reply is requested. A transient backend error waits
// BackoffBase*2^(attempt-1) before the next attempt. When the attempts run
// out the outcome is degraded and the error is nil. A non-nil error means
// the run cannot continue: the prompt could not be built, the backend
// failed fatally, or ctx was cancelled.
func (m *Manager) Do(ctx context.Context, pkg packages.Package) (normalize.Outcome, error) {
	question, err := m.template.Generate(pkg.Name, pkg.Description, pkg.Dependencies)
	if err != nil {
		return normalize.Outcome{}, fmt.Errorf("build prompt for %s: %w", pkg.Name, err)
	}

	req := m.opts.Request
	req.Prompt = question

	var last *normalize.Outcome
	var lastErr error
	for attempt := 1; attempt <= m.opts.RetryCount; attempt++ {
		resp, err := m.provider.Complete(ctx, req)
		if err != nil {
			if !llm.IsTransient(err) {
				return normalize.Outcome{}, fmt.Errorf("query %s: %w", pkg.Name, err)
			}
			lastErr = err
			if attempt == m.opts.RetryCount {
				m.log.Warn("backend error on final attempt", "package", pkg.Name, "attempt", attempt, "error", err)
				break
			}
			pause := m.backoff(attempt)
			m.log.Warn("backend error, retrying", "package", pkg.Name, "attempt", attempt, "pause", pause, "error", err)
			if err := m.opts.Sleep(ctx, pause); err != nil {
				return normalize.Outcome{}, err
			}
			continue
		}

		out := m.parser.Parse(resp.Content, pkg.Name)
		if out.OK() {
			return out, nil
		}
		last = &out
		m.log.Warn("parse attempt failed", "package", pkg.Name, "attempt", attempt, "error", out.Err)
	}

	if last != nil {
		m.log.Error("could not parse response", "package", pkg.Name, "error", last.Err)
		return *last, nil
	}

	m.log.Error("no response from backend", "package", pkg.Name, "error", lastErr)
	return normalize.Outcome{
		Status: normalize.StatusDegraded,
		Row:    m.parser.Empty(pkg.Name),
		Err:    fmt.Errorf("package %s: %w: %w", pkg.Name, ErrNoResponse, lastErr),
	}, nil
}

// backoff returns the wait after a transient failure on attempt (1-based).
func (m *Manager) backoff(attempt int) time.Duration {
	return m.opts.BackoffBase << (attempt - 1)
}

// Run reads the package list from in, queries every package and writes each
// row to w. Degraded rows are written and counted, not returned as errors.
// Rows the writer rejects as malformed are dropped; any other write error
// ends the run.
func (m *Manager) Run(ctx context.Context, in io.Reader, w RowWriter) (Stats, error) {
	var stats Stats
	reader := packages.NewReader(in)

	start := time.Now()
	batchStart := start

	for idx := 0; ; idx++ {
		if err := ctx.Err(); err != nil {
			stats.Elapsed = time.Since(start)
			return stats, err
		}

		pkg, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			stats.Elapsed = time.Since(start)
			return stats, err
		}

		out, err := m.Do(ctx, pkg)
		if err != nil {
			stats.Elapsed = time.Since(start)
			return stats, err
		}

		stats.Processed++
		if out.OK() {
			stats.Succeeded++
		} else {
			stats.Degraded++
			stats.DegradedPackages = append(stats.DegradedPackages, pkg.Name)
		}

		if err := w.Write(out.Row); err != nil {
			if !errors.Is(err, output.ErrMalformedRow) {
				stats.Elapsed = time.Since(start)
				return stats, fmt.Errorf("write row for %s: %w", pkg.Name, err)
			}
			m.log.Error("result row dropped", "package", pkg.Name, "error", err)
		}

		if m.opts.QueryRestriction > 0 && idx+1 >= m.opts.QueryRestriction {
			m.log.Info("query restriction reached, stopping", "index", idx, "restriction", m.opts.QueryRestriction)
			m.logProgress(idx, start, batchStart)
			break
		}
		if idx%m.opts.LogIterations == 0 {
			m.logProgress(idx, start, batchStart)
			batchStart = time.Now()
		}
	}

	stats.Elapsed = time.Since(start)
	return stats, nil
}

func (m *Manager) logProgress(idx int, start, batchStart time.Time) {
	now := time.Now()
	m.log.Info("progress",
		"index", idx,
		"batch", now.Sub(batchStart).Round(time.Millisecond),
		"overall", now.Sub(start).Round(time.Millisecond),
	)
}

// sleep waits for d, returning early with ctx's error if ctx is done first.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
