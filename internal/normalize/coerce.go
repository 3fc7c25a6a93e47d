// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

package normalize

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

var (
	truthy = map[string]bool{"true": true, "1": true, "yes": true, "y": true, "on": true}
	falsy  = map[string]bool{"false": true, "0": true, "no": true, "n": true, "off": true}
)

// sequenceStripper removes quote characters and brackets from list elements.
var sequenceStripper = strings.NewReplacer(`'`, "", `"`, "", "[", "", "]", "")

// coerce turns a decoded value into its column string.
func coerce(v any) string {
	var s string
	switch x := v.(type) {
	case bool:
		return boolString(x)
	case string:
		s = strings.ReplaceAll(x, `"`, "'")
	case []any:
		s = flatten(x)
	default:
		s = strings.ReplaceAll(stringify(x), `"`, "'")
	}
	return boolIntent(s)
}

// boolIntent maps recognized truthy and falsy tokens to "True" and "False"
// and returns anything else unchanged.
func boolIntent(s string) string {
	t := strings.ToLower(strings.TrimSpace(s))
	switch {
	case truthy[t]:
		return "True"
	case falsy[t]:
		return "False"
	default:
		return s
	}
}

// flatten renders a sequence as a lower-case, comma-joined string without
// brackets or quotes.
func flatten(items []any) string {
	parts := make([]string, len(items))
	for i, item := range items {
		var s string
		switch x := item.(type) {
		case []any:
			s = flatten(x)
		default:
			s = stringify(x)
		}
		parts[i] = strings.ToLower(sequenceStripper.Replace(s))
	}
	return strings.Join(parts, ", ")
}

// stringify renders a scalar or nested value.
func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return boolString(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return formatFloat(x)
	case map[string]any:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	default:
		return fmt.Sprint(x)
	}
}

func boolString(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// formatFloat keeps a decimal point on integral values so 1.0 is not read
// as a boolean.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
