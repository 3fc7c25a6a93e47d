// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

package llm

import (
	"context"
	"errors"
	"time"
)

// DefaultOllamaHost is used when no host is configured.
const DefaultOllamaHost = "http://localhost:11434"

// OllamaProvider queries a local Ollama server through its /api/chat endpoint.
type OllamaProvider struct {
	client *jsonClient
	host   string
	model  string
}

var _ Provider = (*OllamaProvider)(nil)

// NewOllamaProvider creates a provider for the server at host serving model.
func NewOllamaProvider(host, model string, timeout time.Duration) *OllamaProvider {
	return &OllamaProvider{
		client: newJSONClient("ollama", timeout, nil),
		host:   trimBaseURL(host, DefaultOllamaHost),
		model:  model,
	}
}

type ollamaChatRequest struct {
	Model    string         `json:"model"`
	Messages []chatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Model   string      `json:"model"`
	Message chatMessage `json:"message"`
	Error   string      `json:"error"`

	PromptEvalCount int `json:"prompt_eval_count"`
	EvalCount       int `json:"eval_count"`
}

// Complete sends the prompt as a single user message.
func (p *OllamaProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	model := p.model
	if req.Model != "" {
		model = req.Model
	}

	body := ollamaChatRequest{
		Model:  model,
		Stream: false,
	}
	if req.SystemPrompt != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	body.Messages = append(body.Messages, chatMessage{Role: "user", Content: req.Prompt})

	opts := map[string]any{}
	if req.Temperature != nil {
		opts["temperature"] = *req.Temperature
	}
	if req.MaxTokens > 0 {
		opts["num_predict"] = req.MaxTokens
	}
	if len(opts) > 0 {
		body.Options = opts
	}

	var out ollamaChatResponse
	if err := p.client.post(ctx, p.host+"/api/chat", body, &out); err != nil {
		return nil, err
	}
	if out.Error != "" {
		return nil, &FatalError{Backend: "ollama", Err: errors.New(out.Error)}
	}

	return &Response{
		Content: out.Message.Content,
		Model:   out.Model,
		Usage: Usage{
			InputTokens:  out.PromptEvalCount,
			OutputTokens: out.EvalCount,
		},
	}, nil
}

// Model returns the configured model.
func (p *OllamaProvider) Model() string { return p.model }

// Host returns the server base URL.
func (p *OllamaProvider) Host() string { return p.host }
