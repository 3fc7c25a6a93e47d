// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// TimestampLayout formats the {timestamp_string} placeholder.
const TimestampLayout = "20060102-150405"

var placeholder = regexp.MustCompile(`\{([a-z_]+)\}`)

// unsafeName matches characters that are replaced in the {llm_model}
// placeholder so model tags like "llama3:8b" make valid file names.
var unsafeName = regexp.MustCompile(`[^0-9A-Za-z._-]+`)

// Paths are the per-model files of one run.
type Paths struct {
	CSV      string
	Template string
	ErrorLog string
}

// Expand replaces {name} placeholders in tmpl with values from vars. An
// unknown placeholder is an error.
func Expand(tmpl string, vars map[string]string) (string, error) {
	var missing []string
	out := placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		key := m[1 : len(m)-1]
		v, ok := vars[key]
		if !ok {
			missing = append(missing, m)
			return m
		}
		return v
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("unknown placeholder %s in %q", strings.Join(missing, ", "), tmpl)
	}
	return out, nil
}

// ModelFileName turns a model name into something safe to embed in a path.
func ModelFileName(model string) string {
	return strings.Trim(unsafeName.ReplaceAllString(model, "-"), "-")
}

// Vars returns the placeholder values for model at time now. A zero now
// leaves {timestamp_string} empty.
func (c *Config) Vars(model string, now time.Time) map[string]string {
	ts := ""
	if !now.IsZero() {
		ts = "_" + now.Format(TimestampLayout)
	}
	return map[string]string{
		"os":                   c.OS,
		"llm_model":            ModelFileName(model),
		"timestamp_string":     ts,
		"template_alternative": c.TemplateAlternative,
		"query_template_path":  strings.TrimRight(c.QueryTemplatePath, "/"),
		"csv_base_path":        strings.TrimRight(c.CSVBasePath, "/"),
		"logs_base_path":       strings.TrimRight(c.LogsBasePath, "/"),
	}
}

// Paths expands the file name templates for model.
func (c *Config) Paths(model string, now time.Time) (Paths, error) {
	vars := c.Vars(model, now)

	var p Paths
	var err error
	if p.CSV, err = Expand(c.CSVFile, vars); err != nil {
		return Paths{}, fmt.Errorf("csv_file: %w", err)
	}
	if p.Template, err = Expand(c.QueryTemplateFile, vars); err != nil {
		return Paths{}, fmt.Errorf("query_template_file: %w", err)
	}
	if p.ErrorLog, err = Expand(c.ErrorFilePath, vars); err != nil {
		return Paths{}, fmt.Errorf("error_file_path: %w", err)
	}
	return p, nil
}
