// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

// Package schema defines the ordered attribute list that every result row is
// projected through, and the alias table used to rescue replies that name an
// attribute differently.
package schema

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// IdentityDefault is the identity column name used by DefaultAttributes.
const IdentityDefault = "package_name"

// DefaultAttributes is the column list used when none is configured.
var DefaultAttributes = []string{IdentityDefault, "is_security_relevant", "explanation"}

// DefaultAliases maps attribute names models sometimes emit to the names the
// default prompts ask for.
var DefaultAliases = Aliases{
	"cryptography_relevance": "cryptographic_relevance",
	"explanation":            "justification",
}

// Schema is an ordered, duplicate-free list of attribute names. The first
// attribute is the identity column and always carries the package name.
// A Schema is immutable once built.
//
// Each attribute has two spellings: the name as configured, used for the
// CSV header, and its key, used to match the normalized keys of a decoded
// reply.
type Schema struct {
	names []string
	keys  []string
	set   map[string]struct{}
}

// New builds a Schema from attrs. Names are trimmed; two names whose keys
// are equal count as duplicates.
func New(attrs []string) (*Schema, error) {
	if len(attrs) == 0 {
		return nil, errors.New("schema: attribute list is empty")
	}

	s := &Schema{
		names: make([]string, 0, len(attrs)),
		keys:  make([]string, 0, len(attrs)),
		set:   make(map[string]struct{}, len(attrs)),
	}
	for i, a := range attrs {
		name := strings.TrimSpace(a)
		if name == "" {
			return nil, fmt.Errorf("schema: attribute %d is blank", i)
		}
		key := Key(name)
		if _, dup := s.set[key]; dup {
			return nil, fmt.Errorf("schema: duplicate attribute %q", name)
		}
		s.names = append(s.names, name)
		s.keys = append(s.keys, key)
		s.set[key] = struct{}{}
	}
	return s, nil
}

// Key returns the normalized form of an attribute name: lower-cased with
// all whitespace removed.
func Key(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, name)
}

// MustNew is like New but panics on error. Intended for package-level
// defaults and tests.
func MustNew(attrs ...string) *Schema {
	s, err := New(attrs)
	if err != nil {
		panic(err)
	}
	return s
}

// Default returns a Schema built from DefaultAttributes.
func Default() *Schema {
	return MustNew(DefaultAttributes...)
}

// Attributes returns a copy of the attribute names as configured, in column
// order. This is the CSV header.
func (s *Schema) Attributes() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Keys returns a copy of the attribute keys in column order.
func (s *Schema) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Len returns the number of columns.
func (s *Schema) Len() int { return len(s.keys) }

// Identity returns the key of the identity column.
func (s *Schema) Identity() string { return s.keys[0] }

// Has reports whether name is one of the schema's attributes.
func (s *Schema) Has(name string) bool {
	_, ok := s.set[Key(name)]
	return ok
}

// Required returns the keys a reply must provide: every column except the
// identity column, which is always taken from the input.
func (s *Schema) Required() []string {
	out := make([]string, len(s.keys)-1)
	copy(out, s.keys[1:])
	return out
}

// Missing returns the required keys absent from keys, in column order.
func (s *Schema) Missing(keys map[string]any) []string {
	var missing []string
	for _, k := range s.keys[1:] {
		if _, ok := keys[k]; !ok {
			missing = append(missing, k)
		}
	}
	return missing
}

// Aliases maps alternate attribute names to canonical schema names.
type Aliases map[string]string

// Merge returns a new Aliases with the entries of other layered over a.
func (a Aliases) Merge(other Aliases) Aliases {
	out := make(Aliases, len(a)+len(other))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range other {
		out[Key(k)] = Key(v)
	}
	return out
}

// Apply copies the value of every alias key present in rec to its canonical
// name. The alias key itself is left in place. Apply mutates rec.
func (a Aliases) Apply(rec map[string]any) {
	// Collect first so newly written canonical names are not themselves
	// treated as aliases in the same pass.
	type move struct {
		to  string
		val any
	}
	var moves []move
	for k, v := range rec {
		if to, ok := a[k]; ok {
			moves = append(moves, move{to: to, val: v})
		}
	}
	for _, m := range moves {
		rec[m.to] = m.val
	}
}
