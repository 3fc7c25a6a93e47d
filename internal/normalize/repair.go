// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

package normalize

import (
	"regexp"
	"strings"
)

var (
	// bareTrue and bareFalse match unquoted booleans followed by a comma. The
	// preceding character is kept so "key":true, stays well formed.
	bareTrue  = regexp.MustCompile(`([^"\w])[Tt]rue,`)
	bareFalse = regexp.MustCompile(`([^"\w])[Ff]alse,`)

	// lineComment matches a // comment up to the end of the line. This also
	// eats URLs inside string values.
	lineComment = regexp.MustCompile(`//[^\r\n]*`)
)

// ellipsisMarkers are placeholders models leave where they elided entries.
var ellipsisMarkers = []string{", ...", ",..."}

// repair applies best-effort fixups to an extracted object. Unescaping is
// lossy: legitimately escaped quotes inside values are dropped.
func repair(obj string) string {
	s := strings.TrimSpace(obj)

	s = bareTrue.ReplaceAllString(s, `${1}"True",`)
	s = bareFalse.ReplaceAllString(s, `${1}"False",`)

	s = lineComment.ReplaceAllString(s, "")
	for _, m := range ellipsisMarkers {
		s = strings.ReplaceAll(s, m, "")
	}

	s = strings.ReplaceAll(s, `\"`, "")
	s = strings.ReplaceAll(s, `\`, "")
	return s
}
