// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GeminiConfig configures a GeminiProvider.
type GeminiConfig struct {
	APIKey string
	// BaseURL overrides the Gemini API endpoint. Used by tests.
	BaseURL string
	Model   string
	Timeout time.Duration
}

// GeminiProvider implements Provider with the official genai SDK against the
// Gemini Developer API.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

var _ Provider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a Gemini provider.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, missingKey("gemini", "GEMINI_API_KEY")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	cc := &genai.ClientConfig{
		APIKey:     key,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, &FatalError{Backend: "gemini", Err: err}
	}
	return &GeminiProvider{client: client, model: cfg.Model}, nil
}

// Complete generates content for the prompt. The system instruction defaults
// to the security-expert prompt and the temperature to 0.
func (p *GeminiProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	model := p.model
	if req.Model != "" {
		model = req.Model
	}

	system := req.SystemPrompt
	if system == "" {
		system = SecurityExpertPrompt
	}
	var temp float32
	if req.Temperature != nil {
		temp = float32(*req.Temperature)
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr(temp),
	})
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return nil, classifyStatus("gemini", apiErr.Code, err)
		}
		return nil, classifyTransport(ctx, "gemini", err)
	}

	return &Response{
		Content: resp.Text(),
		Model:   model,
	}, nil
}

// Model returns the configured model.
func (p *GeminiProvider) Model() string { return p.model }
