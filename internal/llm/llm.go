// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

// Package llm provides a backend-agnostic completion interface and the
// concrete backends pkgquery can query: a local server (ollama), a local
// model file run through an inference binary (gpt4all), and the hosted
// OpenAI, Gemini, Mistral and Anthropic APIs.
package llm

import "context"

// SecurityExpertPrompt is the system instruction sent by the hosted backends.
const SecurityExpertPrompt = "Act as a security expert."

// Provider abstracts a model backend behind a single synchronous completion
// method.
type Provider interface {
	// Complete sends a prompt to the model and returns the raw reply.
	// Implementations must respect context cancellation and deadlines, and
	// classify failures as *TransientError or *FatalError.
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Request describes a single completion request.
type Request struct {
	// Prompt is the user message to send.
	Prompt string

	// Model overrides the provider's default model. If empty, the provider
	// uses its configured default.
	Model string

	// MaxTokens limits the response length. If zero, the provider uses its
	// own default.
	MaxTokens int

	// Temperature controls randomness. If nil, the provider uses its default.
	Temperature *float64

	// SystemPrompt sets the system instruction for the completion. Backends
	// without a system role ignore it.
	SystemPrompt string
}

// Response holds the result of a completion call.
type Response struct {
	// Content is the text returned by the model, unmodified.
	Content string

	// Model is the model that actually served the request (may differ from
	// the requested model if the backend remapped it).
	Model string

	// Usage reports token consumption. Zero when the backend does not say.
	Usage Usage
}

// Usage tracks input and output token counts for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Float returns a pointer to f, for Request.Temperature.
func Float(f float64) *float64 { return &f }
