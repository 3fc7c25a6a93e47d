// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand(t *testing.T) {
	got, err := Expand("{a}/{b}-{a}.csv", map[string]string{"a": "x", "b": "y"})
	require.NoError(t, err)
	assert.Equal(t, "x/y-x.csv", got)

	_, err = Expand("{a}/{nope}", map[string]string{"a": "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "{nope}")
}

func TestModelFileName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"llama3:8b", "llama3-8b"},
		{"deepseek-r1:latest", "deepseek-r1-latest"},
		{"models/gemini-2.0-flash", "models-gemini-2.0-flash"},
		{"gpt-4o", "gpt-4o"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ModelFileName(tt.in))
		})
	}
}

func TestPaths(t *testing.T) {
	cfg := Defaults()
	cfg.OS = "ubuntu"
	cfg.CSVBasePath = "/out/"
	cfg.TemplateAlternative = "_v2"
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	p, err := cfg.Paths("llama3:8b", now)
	require.NoError(t, err)
	assert.Equal(t, "/out/ubuntu_llama3-8b_20260304-050607_v2.csv", p.CSV)
	assert.Equal(t, "./query_templates/ubuntu_llama3-8b_v2.tpl", p.Template)
	assert.Equal(t, "./logs/error-ubuntu_llama3-8b_20260304-050607_v2.log", p.ErrorLog)
}

func TestPaths_NoTimestamp(t *testing.T) {
	cfg := Defaults()
	cfg.OS = "debian"
	p, err := cfg.Paths("gpt-4o", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "./csv/debian_gpt-4o.csv", p.CSV)
}

func TestPaths_UnknownPlaceholder(t *testing.T) {
	cfg := Defaults()
	cfg.ErrorFilePath = "{logs_base_path}/{date}.log"
	_, err := cfg.Paths("m", time.Time{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error_file_path")
}
