// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/davetashner/pkgquery/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatCapture struct {
	path   string
	auth   string
	body   map[string]any
	status int
	reply  string
}

func (c *chatCapture) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.path = r.URL.Path
		c.auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&c.body)
		w.Header().Set("Content-Type", "application/json")
		if c.status != 0 {
			w.WriteHeader(c.status)
		}
		_, _ = w.Write([]byte(c.reply))
	}))
	t.Cleanup(srv.Close)
	return srv
}

const chatOK = `{"model":"gpt-4.1-2025-04-14","choices":[{"index":0,"message":{"role":"assistant","content":"{'is_security_relevant': 'no'}"}}],"usage":{"prompt_tokens":20,"completion_tokens":9}}`

func TestOpenAI_Complete(t *testing.T) {
	c := &chatCapture{reply: chatOK}
	srv := c.server(t)

	p, err := llm.NewOpenAIProvider(llm.ChatConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1/", Model: "gpt-4.1"})
	require.NoError(t, err)

	resp, err := p.Complete(context.Background(), llm.Request{Prompt: "Is bash relevant?"})
	require.NoError(t, err)

	assert.Equal(t, "/v1/chat/completions", c.path)
	assert.Equal(t, "Bearer sk-test", c.auth)
	assert.Equal(t, "{'is_security_relevant': 'no'}", resp.Content)
	assert.Equal(t, "gpt-4.1-2025-04-14", resp.Model)
	assert.Equal(t, 20, resp.Usage.InputTokens)
	assert.Equal(t, 9, resp.Usage.OutputTokens)

	assert.Equal(t, "gpt-4.1", c.body["model"])
	assert.NotContains(t, c.body, "temperature", "temperature is left to the API default")
	msgs := c.body["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, map[string]any{"role": "system", "content": llm.SecurityExpertPrompt}, msgs[0])
	assert.Equal(t, map[string]any{"role": "user", "content": "Is bash relevant?"}, msgs[1])
}

func TestMistral_Complete(t *testing.T) {
	c := &chatCapture{reply: chatOK}
	srv := c.server(t)

	p, err := llm.NewMistralProvider(llm.ChatConfig{APIKey: "m-key", BaseURL: srv.URL, Model: "codestral-2508"})
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), llm.Request{Prompt: "q", Temperature: llm.Float(0)})
	require.NoError(t, err)

	assert.Equal(t, "/chat/completions", c.path)
	assert.Equal(t, "Bearer m-key", c.auth)
	assert.Equal(t, false, c.body["stream"])
	assert.Equal(t, 0.0, c.body["temperature"])
	msgs := c.body["messages"].([]any)
	require.Len(t, msgs, 1, "mistral gets the prompt alone")
	assert.Equal(t, "user", msgs[0].(map[string]any)["role"])
}

func TestChat_NoChoicesIsTransient(t *testing.T) {
	c := &chatCapture{reply: `{"choices":[]}`}
	srv := c.server(t)

	p, err := llm.NewOpenAIProvider(llm.ChatConfig{APIKey: "k", BaseURL: srv.URL, Model: "gpt-5"})
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), llm.Request{Prompt: "q"})
	require.Error(t, err)
	assert.True(t, llm.IsTransient(err))
}

func TestChat_TruncatedBodyIsTransient(t *testing.T) {
	c := &chatCapture{reply: `{"choices":[{"message":`}
	srv := c.server(t)

	p, err := llm.NewOpenAIProvider(llm.ChatConfig{APIKey: "k", BaseURL: srv.URL, Model: "gpt-5"})
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), llm.Request{Prompt: "q"})
	require.Error(t, err)
	assert.True(t, llm.IsTransient(err), err.Error())
}

func TestChat_StatusClassification(t *testing.T) {
	tests := []struct {
		status    int
		transient bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusBadGateway, true},
		{529, true},
		{http.StatusUnauthorized, false},
		{http.StatusForbidden, false},
		{http.StatusUnprocessableEntity, false},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := &chatCapture{status: tt.status, reply: `{"error":{"message":"nope"}}`}
			srv := c.server(t)

			p, err := llm.NewMistralProvider(llm.ChatConfig{APIKey: "k", BaseURL: srv.URL, Model: "m"})
			require.NoError(t, err)

			_, err = p.Complete(context.Background(), llm.Request{Prompt: "q"})
			require.Error(t, err)
			assert.Equal(t, tt.transient, llm.IsTransient(err))
			assert.Contains(t, err.Error(), "nope", "error body is kept")
		})
	}
}

func TestChat_MissingKey(t *testing.T) {
	_, err := llm.NewOpenAIProvider(llm.ChatConfig{APIKey: "  ", Model: "gpt-5"})
	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrMissingAPIKey)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}
