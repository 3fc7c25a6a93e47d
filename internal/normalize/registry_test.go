// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParserKey(t *testing.T) {
	tests := []struct {
		model string
		want  string
	}{
		{"deepseek-r1:latest", "DEEPSEEK_R1_LATESTRESPONSEPARSER"},
		{"gpt-4.1", "GPT_4_1RESPONSEPARSER"},
		{"Phi-3-mini-4k-instruct.Q4_0", "PHI_3_MINI_4K_INSTRUCT_Q4_0RESPONSEPARSER"},
		{"--odd--", "ODD_RESPONSEPARSER"},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.Equal(t, tt.want, ParserKey(tt.model))
		})
	}
}

func TestRegistry_StrategyFor(t *testing.T) {
	r := NewRegistry(nil)

	s, err := r.StrategyFor("deepseek-r1:latest")
	require.NoError(t, err)
	assert.Equal(t, StrategyFencedFirst, s)

	s, err = r.StrategyFor("GPT-4.1")
	require.NoError(t, err, "lookup is case-insensitive")
	assert.Equal(t, StrategyBraces, s)

	_, err = r.StrategyFor("unknown-model")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNKNOWN_MODELRESPONSEPARSER")
}

func TestRegistry_ExtraOverridesBuiltin(t *testing.T) {
	r := NewRegistry(map[string]Strategy{
		"gpt-5":       StrategyFencedFirst,
		"llama3.2:3b":  StrategyBraces,
	})

	s, err := r.StrategyFor("gpt-5")
	require.NoError(t, err)
	assert.Equal(t, StrategyFencedFirst, s)

	_, err = r.StrategyFor("llama3.2:3b")
	require.NoError(t, err)
	assert.Contains(t, r.Models(), "llama3.2:3b")
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy(" Fenced ")
	require.NoError(t, err)
	assert.Equal(t, StrategyFencedFirst, s)

	_, err = ParseStrategy("regex")
	require.Error(t, err)
}

func TestStrategy_YAML(t *testing.T) {
	var m map[string]Strategy
	require.NoError(t, yaml.Unmarshal([]byte("a: fenced\nb: braces\n"), &m))
	assert.Equal(t, StrategyFencedFirst, m["a"])
	assert.Equal(t, StrategyBraces, m["b"])

	out, err := yaml.Marshal(map[string]Strategy{"a": StrategyFencedFirst})
	require.NoError(t, err)
	assert.Equal(t, "a: fenced\n", string(out))
}
