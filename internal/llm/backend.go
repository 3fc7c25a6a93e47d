// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/davetashner/pkgquery/internal/testable"
)

// Backend identifies a family of model backends.
type Backend string

// Supported backends.
const (
	BackendOllama    Backend = "ollama"
	BackendGPT4All   Backend = "gpt4all"
	BackendOpenAI    Backend = "openai"
	BackendGemini    Backend = "gemini"
	BackendMistral   Backend = "mistral"
	BackendAnthropic Backend = "anthropic"
)

// Options carries everything a backend constructor may need. Each backend
// reads only the fields that apply to it.
type Options struct {
	Model string

	// APIKey authenticates hosted backends.
	APIKey string

	// BaseURL is the server root: the Ollama host, or an override of a hosted
	// API endpoint.
	BaseURL string

	// Timeout bounds one HTTP call. Zero means the package default.
	Timeout time.Duration

	// LocalBinary and ModelDir configure the gpt4all backend.
	LocalBinary string
	ModelDir    string
	Executor    testable.CommandExecutor
}

type constructor func(ctx context.Context, o Options) (Provider, error)

// constructors is the explicit backend table.
var constructors = map[Backend]constructor{
	BackendOllama: func(_ context.Context, o Options) (Provider, error) {
		return NewOllamaProvider(o.BaseURL, o.Model, o.Timeout), nil
	},
	BackendGPT4All: func(_ context.Context, o Options) (Provider, error) {
		return NewLocalProvider(LocalConfig{
			Binary:   o.LocalBinary,
			ModelDir: o.ModelDir,
			Model:    o.Model,
			Executor: o.Executor,
		})
	},
	BackendOpenAI: func(_ context.Context, o Options) (Provider, error) {
		return NewOpenAIProvider(ChatConfig{APIKey: o.APIKey, BaseURL: o.BaseURL, Model: o.Model, Timeout: o.Timeout})
	},
	BackendMistral: func(_ context.Context, o Options) (Provider, error) {
		return NewMistralProvider(ChatConfig{APIKey: o.APIKey, BaseURL: o.BaseURL, Model: o.Model, Timeout: o.Timeout})
	},
	BackendGemini: func(ctx context.Context, o Options) (Provider, error) {
		return NewGeminiProvider(ctx, GeminiConfig{APIKey: o.APIKey, BaseURL: o.BaseURL, Model: o.Model, Timeout: o.Timeout})
	},
	BackendAnthropic: func(_ context.Context, o Options) (Provider, error) {
		if o.APIKey == "" {
			return nil, missingKey("anthropic", "ANTHROPIC_API_KEY")
		}
		return NewAnthropicProvider(
			WithAPIKey(o.APIKey),
			WithModel(o.Model),
			WithBaseURL(o.BaseURL),
			WithMaxRetries(0),
		)
	},
}

// Backends returns the supported backend names, sorted.
func Backends() []string {
	out := make([]string, 0, len(constructors))
	for b := range constructors {
		out = append(out, string(b))
	}
	sort.Strings(out)
	return out
}

// ParseBackend validates a backend name.
func ParseBackend(name string) (Backend, error) {
	b := Backend(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := constructors[b]; !ok {
		return "", fmt.Errorf("unknown backend %q (valid: %s)", name, strings.Join(Backends(), ", "))
	}
	return b, nil
}

// NewProvider builds the provider for backend b. Missing credentials for a
// hosted backend yield a *FatalError.
func NewProvider(ctx context.Context, b Backend, o Options) (Provider, error) {
	ctor, ok := constructors[b]
	if !ok {
		return nil, fmt.Errorf("unknown backend %q", b)
	}
	if o.Model == "" {
		return nil, &FatalError{Backend: string(b), Err: fmt.Errorf("no model configured")}
	}
	return ctor(ctx, o)
}

// GuessBackend picks a backend from a model identifier's naming convention.
// Ollama tags contain a colon; unrecognized names are assumed to be local
// model files.
func GuessBackend(model string) Backend {
	m := strings.ToLower(model)
	switch {
	case strings.HasPrefix(m, "gpt-"), strings.HasPrefix(m, "o1"), strings.HasPrefix(m, "o3"), strings.HasPrefix(m, "o4"):
		return BackendOpenAI
	case strings.HasPrefix(m, "gemini-"):
		return BackendGemini
	case strings.HasPrefix(m, "codestral"), strings.HasPrefix(m, "mistral-"), strings.HasPrefix(m, "magistral"):
		return BackendMistral
	case strings.HasPrefix(m, "claude-"):
		return BackendAnthropic
	case strings.Contains(m, ":"):
		return BackendOllama
	default:
		return BackendGPT4All
	}
}

// APIKeyEnv returns the environment variable holding b's API key, or "" for
// backends that need none.
func APIKeyEnv(b Backend) string {
	switch b {
	case BackendOpenAI:
		return "OPENAI_API_KEY"
	case BackendGemini:
		return "GEMINI_API_KEY"
	case BackendMistral:
		return "MISTRAL_API_KEY"
	case BackendAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}
