// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

package normalize

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// objectSpan matches from the first '{' to the first '}' after it. Nested
	// objects are cut at the inner closing brace.
	objectSpan = regexp.MustCompile(`\{[^}]*\}`)

	// fencedJSON matches a markdown code block labeled json.
	fencedJSON = regexp.MustCompile("(?s)```json(.*?)```")
)

// Strategy selects where in a reply the parser looks for the object first.
type Strategy int

const (
	// StrategyBraces scans the whole reply for the first brace-delimited span.
	StrategyBraces Strategy = iota
	// StrategyFencedFirst prefers the body of a ```json fenced block and
	// falls back to the whole reply when there is none.
	StrategyFencedFirst
)

var strategyNames = map[Strategy]string{
	StrategyBraces:      "braces",
	StrategyFencedFirst: "fenced",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy converts a strategy name ("braces" or "fenced") to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for s, sn := range strategyNames {
		if sn == n {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown extraction strategy %q (must be braces or fenced)", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(b []byte) error {
	v, err := ParseStrategy(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// fencedBlock returns the body of the first ```json block in text.
func fencedBlock(text string) (string, bool) {
	m := fencedJSON.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// firstObject returns the first brace-delimited span in text.
func firstObject(text string) (string, bool) {
	obj := objectSpan.FindString(text)
	return obj, obj != ""
}
