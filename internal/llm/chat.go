// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

package llm

import (
	"context"
	"errors"
	"strings"
	"time"
)

const (
	// DefaultOpenAIBaseURL is the OpenAI API root.
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"

	// DefaultMistralBaseURL is the Mistral API root.
	DefaultMistralBaseURL = "https://api.mistral.ai/v1"
)

// ChatConfig configures a provider for an OpenAI-compatible Chat Completions
// API.
type ChatConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// ChatProvider implements Provider against an OpenAI-compatible
// /chat/completions endpoint. OpenAI and Mistral both speak this protocol.
type ChatProvider struct {
	name     string
	client   *jsonClient
	endpoint string
	model    string
	system   bool
}

var _ Provider = (*ChatProvider)(nil)

// NewOpenAIProvider creates a provider for the OpenAI Chat Completions API.
// Requests carry the security-expert system message unless the request
// supplies its own.
func NewOpenAIProvider(cfg ChatConfig) (*ChatProvider, error) {
	return newChatProvider("openai", "OPENAI_API_KEY", DefaultOpenAIBaseURL, true, cfg)
}

// NewMistralProvider creates a provider for the Mistral chat API. Requests
// are sent as a single user message.
func NewMistralProvider(cfg ChatConfig) (*ChatProvider, error) {
	return newChatProvider("mistral", "MISTRAL_API_KEY", DefaultMistralBaseURL, false, cfg)
}

func newChatProvider(name, envVar, defaultBase string, system bool, cfg ChatConfig) (*ChatProvider, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, missingKey(name, envVar)
	}
	return &ChatProvider{
		name:     name,
		client:   newJSONClient(name, cfg.Timeout, map[string]string{"Authorization": "Bearer " + key}),
		endpoint: trimBaseURL(cfg.BaseURL, defaultBase) + "/chat/completions",
		model:    cfg.Model,
		system:   system,
	}, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Complete sends a chat completion request.
func (p *ChatProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	model := p.model
	if req.Model != "" {
		model = req.Model
	}

	body := chatRequest{
		Model:       model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	system := req.SystemPrompt
	if system == "" && p.system {
		system = SecurityExpertPrompt
	}
	if system != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: system})
	}
	body.Messages = append(body.Messages, chatMessage{Role: "user", Content: req.Prompt})

	var out chatResponse
	if err := p.client.post(ctx, p.endpoint, body, &out); err != nil {
		return nil, err
	}
	if len(out.Choices) == 0 {
		return nil, &TransientError{Backend: p.name, Err: errors.New("response has no choices")}
	}

	return &Response{
		Content: out.Choices[0].Message.Content,
		Model:   out.Model,
		Usage: Usage{
			InputTokens:  out.Usage.PromptTokens,
			OutputTokens: out.Usage.CompletionTokens,
		},
	}, nil
}

// Name returns the backend name ("openai" or "mistral").
func (p *ChatProvider) Name() string { return p.name }

// Model returns the configured model.
func (p *ChatProvider) Model() string { return p.model }
