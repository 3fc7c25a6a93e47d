// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetValue(t *testing.T) {
	cfg := &Config{
		Backend:          "ollama",
		QueryRestriction: 5,
		Strategies:       map[string]string{"qwq": "fenced"},
	}

	v, err := GetValue(cfg, "backend")
	require.NoError(t, err)
	assert.Equal(t, "ollama", v)

	v, err = GetValue(cfg, "query_restriction")
	require.NoError(t, err)
	assert.Equal(t, 5, v)

	v, err = GetValue(cfg, "strategies.qwq")
	require.NoError(t, err)
	assert.Equal(t, "fenced", v)

	_, err = GetValue(cfg, "csv_base_path")
	assert.Error(t, err, "unset fields are omitted")

	_, err = GetValue(cfg, "backend.sub")
	assert.Error(t, err)
}

func TestSetValue(t *testing.T) {
	data := map[string]any{}
	require.NoError(t, SetValue(data, "query_restriction", "20"))
	require.NoError(t, SetValue(data, "strategies.qwq", "fenced"))
	require.NoError(t, SetValue(data, "models", "llama3:8b, gemma2"))
	require.NoError(t, SetValue(data, "backoff", "1.5s"))

	assert.Equal(t, 20, data["query_restriction"])
	assert.Equal(t, map[string]any{"qwq": "fenced"}, data["strategies"])
	assert.Equal(t, []any{"llama3:8b", "gemma2"}, data["models"])
	assert.Equal(t, "1.5s", data["backoff"])

	data["backend"] = "ollama"
	assert.Error(t, SetValue(data, "backend.x", "y"))
}

func TestValidateKeyPath(t *testing.T) {
	tests := []struct {
		path    string
		wantErr string
	}{
		{"backend", ""},
		{"ollama_host", ""},
		{"aliases.licence", ""},
		{"strategies.deepseek-r1:latest", ""},
		{"", "empty key path"},
		{"color", "unknown key"},
		{"backend.x", "is a scalar"},
		{"aliases", "requires an entry name"},
		{"aliases.a.b", "too deep"},
		{"api_keys", "unknown key"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			err := ValidateKeyPath(tt.path)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFlattenMap(t *testing.T) {
	got := FlattenMap(map[string]any{
		"backend":    "ollama",
		"strategies": map[string]any{"qwq": "fenced"},
	}, "")
	assert.Equal(t, map[string]any{"backend": "ollama", "strategies.qwq": "fenced"}, got)
}

func TestCoerceValue(t *testing.T) {
	assert.Equal(t, true, coerceValue("true"))
	assert.Equal(t, 3, coerceValue("3"))
	assert.Equal(t, 0.5, coerceValue("0.5"))
	assert.Equal(t, "fenced", coerceValue("fenced"))
}
