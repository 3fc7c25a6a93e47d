// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/davetashner/pkgquery/internal/llm"
	"github.com/davetashner/pkgquery/internal/normalize"
	"github.com/davetashner/pkgquery/internal/schema"
)

// Validate checks all fields in the config and returns all errors at once.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Backend != "" {
		if _, err := llm.ParseBackend(cfg.Backend); err != nil {
			errs = append(errs, fmt.Sprintf("backend: %v", err))
		}
	}

	for i, m := range cfg.Models {
		if strings.TrimSpace(m) == "" {
			errs = append(errs, fmt.Sprintf("models[%d]: must not be empty", i))
		}
	}

	for name, v := range map[string]int{
		"query_restriction": cfg.QueryRestriction,
		"retry_count":       cfg.RetryCount,
		"log_iterations":    cfg.LogIterations,
		"max_tokens":        cfg.MaxTokens,
	} {
		if v < 0 {
			errs = append(errs, fmt.Sprintf("%s: must be non-negative, got %d", name, v))
		}
	}

	if d, err := cfg.BackoffDuration(); err != nil {
		errs = append(errs, fmt.Sprintf("backoff: %v", err))
	} else if d < 0 {
		errs = append(errs, fmt.Sprintf("backoff: must be non-negative, got %s", d))
	}
	if d, err := cfg.TimeoutDuration(); err != nil {
		errs = append(errs, fmt.Sprintf("timeout: %v", err))
	} else if d < 0 {
		errs = append(errs, fmt.Sprintf("timeout: must be non-negative, got %s", d))
	}

	if len(cfg.Attributes) > 0 {
		if _, err := schema.New(cfg.Attributes); err != nil {
			errs = append(errs, fmt.Sprintf("attributes: %v", err))
		}
	}

	for from, to := range cfg.Aliases {
		if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
			errs = append(errs, fmt.Sprintf("aliases: %q -> %q: names must not be empty", from, to))
		}
	}

	for model, name := range cfg.Strategies {
		if _, err := normalize.ParseStrategy(name); err != nil {
			errs = append(errs, fmt.Sprintf("strategies.%s: %v", model, err))
		}
	}

	vars := cfg.Vars("model", time.Time{})
	for name, tmpl := range map[string]string{
		"csv_file":            cfg.CSVFile,
		"query_template_file": cfg.QueryTemplateFile,
		"error_file_path":     cfg.ErrorFilePath,
	} {
		if tmpl == "" {
			continue
		}
		if _, err := Expand(tmpl, vars); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", name, err))
		}
	}

	if len(errs) > 0 {
		sort.Strings(errs)
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// Schema returns the configured attribute schema, or the default one.
func (c *Config) Schema() (*schema.Schema, error) {
	if len(c.Attributes) == 0 {
		return schema.Default(), nil
	}
	return schema.New(c.Attributes)
}

// AliasSet returns the built-in aliases extended with the configured ones.
func (c *Config) AliasSet() schema.Aliases {
	return schema.DefaultAliases.Merge(schema.Aliases(c.Aliases))
}

// StrategyOverrides converts Strategies into parser strategies.
func (c *Config) StrategyOverrides() (map[string]normalize.Strategy, error) {
	out := make(map[string]normalize.Strategy, len(c.Strategies))
	for model, name := range c.Strategies {
		s, err := normalize.ParseStrategy(name)
		if err != nil {
			return nil, fmt.Errorf("strategies.%s: %w", model, err)
		}
		out[model] = s
	}
	return out, nil
}
