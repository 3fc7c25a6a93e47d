// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

package normalize

import (
	"strings"

	"github.com/davetashner/pkgquery/internal/schema"
)

// Render emits values as a single CSV line in schema order with every field
// double-quoted. Attributes absent from values render as empty fields.
func Render(s *schema.Schema, values map[string]string) string {
	var b strings.Builder
	for i, attr := range s.Keys() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(values[attr], `"`, `""`))
		b.WriteByte('"')
	}
	return b.String()
}
