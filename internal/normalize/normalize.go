// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

// Package normalize turns free-form model replies into quoted CSV rows.
//
// A reply goes through a fixed pipeline: the first object-looking span is
// extracted, common malformations are repaired, the text is decoded as a
// loosely typed literal object, keys are normalized and checked against the
// attribute schema (with an alias fallback), values are coerced to strings,
// and the row is rendered in schema order. Any failure yields a degraded row
// that still has the right number of columns.
package normalize

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/davetashner/pkgquery/internal/schema"
)

// Sentinel errors reported in Outcome.Err. They are wrapped with the package
// name and a truncated copy of the offending text.
var (
	ErrNoObject    = errors.New("no object found")
	ErrDecode      = errors.New("could not parse")
	ErrMissingKeys = errors.New("missing keys")
)

// maxErrText bounds how much of a reply is copied into error messages.
const maxErrText = 200

// Status tells whether a reply produced a real row.
type Status int

const (
	// StatusSuccess means the row carries values decoded from the reply.
	StatusSuccess Status = iota
	// StatusDegraded means only the identity column is filled.
	StatusDegraded
)

func (s Status) String() string {
	if s == StatusSuccess {
		return "success"
	}
	return "degraded"
}

// Outcome is the result of parsing one reply.
type Outcome struct {
	Status Status
	// Row is a single CSV line with every value double-quoted.
	Row string
	// Err is the reason the row is degraded. Nil on success.
	Err error
}

// OK reports whether the outcome is a success.
func (o Outcome) OK() bool { return o.Status == StatusSuccess }

// Parser normalizes replies for one schema and extraction strategy. A Parser
// holds no per-call state and is safe for concurrent use.
type Parser struct {
	schema   *schema.Schema
	aliases  schema.Aliases
	strategy Strategy
}

// Option configures a Parser.
type Option func(*Parser)

// WithAliases replaces the alias table. The default is schema.DefaultAliases.
func WithAliases(a schema.Aliases) Option {
	return func(p *Parser) {
		p.aliases = a
	}
}

// WithStrategy sets where in the reply the parser looks for the object first.
func WithStrategy(s Strategy) Option {
	return func(p *Parser) {
		p.strategy = s
	}
}

// NewParser creates a Parser for s.
func NewParser(s *schema.Schema, opts ...Option) *Parser {
	p := &Parser{
		schema:   s,
		aliases:  schema.DefaultAliases,
		strategy: StrategyBraces,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Schema returns the schema rows are projected through.
func (p *Parser) Schema() *schema.Schema { return p.schema }

// Strategy returns the configured extraction strategy.
func (p *Parser) Strategy() Strategy { return p.strategy }

// Empty returns the degraded row for packageName: the identity column filled
// and every other column empty.
func (p *Parser) Empty(packageName string) string {
	return Render(p.schema, map[string]string{p.schema.Identity(): packageName})
}

// Parse normalizes raw into a row for packageName. It never panics and
// reports every failure through a degraded Outcome.
func (p *Parser) Parse(raw, packageName string) Outcome {
	text := raw
	if p.strategy == StrategyFencedFirst {
		if block, ok := fencedBlock(raw); ok {
			text = block
		}
	}

	rec, err := p.decode(text, packageName)
	if err != nil {
		slog.Debug("reply degraded", "package", packageName, "error", err)
		return Outcome{Status: StatusDegraded, Row: p.Empty(packageName), Err: err}
	}

	values := make(map[string]string, p.schema.Len())
	for _, attr := range p.schema.Required() {
		values[attr] = coerce(rec[attr])
	}
	values[p.schema.Identity()] = packageName

	return Outcome{Status: StatusSuccess, Row: Render(p.schema, values)}
}

// decode runs extraction, repair, decoding and schema completion.
func (p *Parser) decode(text, packageName string) (map[string]any, error) {
	obj, ok := firstObject(text)
	if !ok {
		// Replies cut off before the closing brace are common.
		obj, ok = firstObject(text + "\n}")
		if !ok {
			return nil, fmt.Errorf("package %s: %w in reply: %.*s", packageName, ErrNoObject, maxErrText, text)
		}
	}

	cleaned := repair(obj)

	rec, err := decodeLiteral(cleaned)
	if err != nil {
		return nil, fmt.Errorf("package %s: %w: %v: %.*s", packageName, ErrDecode, err, maxErrText, cleaned)
	}
	rec = normalizeKeys(rec)

	if missing := p.schema.Missing(rec); len(missing) > 0 {
		p.aliases.Apply(rec)
		if missing = p.schema.Missing(rec); len(missing) > 0 {
			return nil, fmt.Errorf("package %s: %w %v: %.*s", packageName, ErrMissingKeys, missing, maxErrText, cleaned)
		}
	}
	return rec, nil
}
