// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

// Package prompt renders per-package questions from a template file.
//
// Templates use {name}, {description} and {dependencies} placeholders. A
// literal brace is written doubled: {{ or }}.
package prompt

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Placeholder names recognized in templates.
const (
	FieldName         = "name"
	FieldDescription  = "description"
	FieldDependencies = "dependencies"
)

var fields = []string{FieldName, FieldDescription, FieldDependencies}

// ErrMalformed is wrapped by every template syntax error.
var ErrMalformed = errors.New("malformed prompt template")

// Template is an immutable prompt template.
type Template struct {
	path string
	text string
}

// New returns a Template for text. Syntax is checked on first use.
func New(text string) *Template {
	return &Template{text: text}
}

// Load reads the template at path.
func Load(path string) (*Template, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is operator-supplied
	if err != nil {
		return nil, fmt.Errorf("read prompt template: %w", err)
	}
	return &Template{path: path, text: string(data)}, nil
}

// Path returns the file the template was loaded from, or "" for New.
func (t *Template) Path() string { return t.path }

// Text returns the raw template text.
func (t *Template) Text() string { return t.text }

// Generate substitutes the three package fields into the template.
func (t *Template) Generate(name, description, dependencies string) (string, error) {
	return t.render(map[string]string{
		FieldName:         name,
		FieldDescription:  description,
		FieldDependencies: dependencies,
	})
}

// Check reports the first syntax error in the template, if any.
func (t *Template) Check() error {
	_, err := t.render(map[string]string{})
	return err
}

func (t *Template) render(values map[string]string) (string, error) {
	var b strings.Builder
	b.Grow(len(t.text))
	seen := make(map[string]bool, len(fields))

	s := t.text
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '{':
			if i+1 < len(s) && s[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(s[i+1:], '}')
			if end < 0 {
				return "", t.errorf("unclosed '{' at offset %d", i)
			}
			field := s[i+1 : i+1+end]
			if !known(field) {
				return "", t.errorf("unknown placeholder {%s}", field)
			}
			seen[field] = true
			b.WriteString(values[field])
			i += end + 1
		case '}':
			if i+1 < len(s) && s[i+1] == '}' {
				b.WriteByte('}')
				i++
				continue
			}
			return "", t.errorf("single '}' at offset %d", i)
		default:
			b.WriteByte(c)
		}
	}

	var missing []string
	for _, f := range fields {
		if !seen[f] {
			missing = append(missing, "{"+f+"}")
		}
	}
	if len(missing) > 0 {
		return "", t.errorf("missing placeholder %s", strings.Join(missing, ", "))
	}
	return b.String(), nil
}

func (t *Template) errorf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if t.path != "" {
		return fmt.Errorf("%s: %w: %s", t.path, ErrMalformed, msg)
	}
	return fmt.Errorf("%w: %s", ErrMalformed, msg)
}

func known(field string) bool {
	for _, f := range fields {
		if f == field {
			return true
		}
	}
	return false
}
