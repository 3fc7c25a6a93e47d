// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

package normalize

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// parserSuffix is appended to a model identifier before it is normalized into
// a registry key.
const parserSuffix = "ResponseParser"

var nonAlnum = regexp.MustCompile(`[^0-9a-zA-Z]+`)

// knownModels lists the models whose reply format has been checked, with the
// extraction strategy each one needs. Keys are model identifiers as passed on
// the command line; they are normalized when the registry is built.
var knownModels = map[string]Strategy{
	"deepseek-r1:latest":                StrategyFencedFirst,
	"meta-llama-3-8b-instruct.Q4_0":     StrategyBraces,
	"nous-hermes-2-mistral-7b-dpo.Q4_0": StrategyBraces,
	"Phi-3-mini-4k-instruct.Q4_0":       StrategyBraces,
	"orca-mini-3b-gguf2-q4_0":           StrategyBraces,
	"gpt4all-13b-snoozy-q4_0":           StrategyBraces,
	"gpt-5":                             StrategyBraces,
	"gpt-4.1":                           StrategyBraces,
	"gemini-2.5-flash":                  StrategyBraces,
	"gemini-2.5-pro":                    StrategyBraces,
	"codestral-2508":                    StrategyBraces,
	"claude-sonnet-4-5":                 StrategyBraces,
}

// Registry resolves a model identifier to its extraction strategy. It is
// built once at startup and read-only afterwards.
type Registry struct {
	strategies map[string]Strategy
	models     map[string]string
}

// ParserKey normalizes a model identifier into its registry key: the
// identifier plus "ResponseParser", upper-cased, with every run of
// non-alphanumeric characters collapsed to '_' and outer '_' trimmed.
func ParserKey(model string) string {
	return strings.ToUpper(strings.Trim(nonAlnum.ReplaceAllString(model+parserSuffix, "_"), "_"))
}

// NewRegistry returns a registry of the built-in models with extra layered
// on top. Entries in extra replace built-in ones with the same key.
func NewRegistry(extra map[string]Strategy) *Registry {
	r := &Registry{
		strategies: make(map[string]Strategy, len(knownModels)+len(extra)),
		models:     make(map[string]string, len(knownModels)+len(extra)),
	}
	for m, s := range knownModels {
		r.add(m, s)
	}
	for m, s := range extra {
		r.add(m, s)
	}
	return r
}

func (r *Registry) add(model string, s Strategy) {
	key := ParserKey(model)
	r.strategies[key] = s
	r.models[key] = model
}

// StrategyFor returns the extraction strategy registered for model.
func (r *Registry) StrategyFor(model string) (Strategy, error) {
	s, ok := r.strategies[ParserKey(model)]
	if !ok {
		return 0, fmt.Errorf("no response parser registered for model %q (key %s)", model, ParserKey(model))
	}
	return s, nil
}

// Models returns the registered model identifiers, sorted.
func (r *Registry) Models() []string {
	out := make([]string, 0, len(r.models))
	for _, m := range r.models {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
