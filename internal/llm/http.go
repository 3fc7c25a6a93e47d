// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// defaultHTTPTimeout bounds a single HTTP completion call.
	defaultHTTPTimeout = 120 * time.Second

	// maxErrorBody caps how much of an error response is kept.
	maxErrorBody = 2048
)

// chatMessage is the role/content pair shared by the chat-style HTTP APIs.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// jsonClient posts JSON requests and decodes JSON replies, classifying
// failures for the orchestrator.
type jsonClient struct {
	backend string
	http    *http.Client
	headers map[string]string
}

func newJSONClient(backend string, timeout time.Duration, headers map[string]string) *jsonClient {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &jsonClient{
		backend: backend,
		http:    &http.Client{Timeout: timeout},
		headers: headers,
	}
}

// post sends body to url and decodes the reply into out.
func (c *jsonClient) post(ctx context.Context, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &FatalError{Backend: c.backend, Err: fmt.Errorf("encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return &FatalError{Backend: c.backend, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return classifyTransport(ctx, c.backend, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return classifyStatus(c.backend, resp.StatusCode,
			fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(msg))))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		var se *json.SyntaxError
		if errors.As(err, &se) || errors.Is(err, io.ErrUnexpectedEOF) {
			// A truncated body usually means the connection dropped mid-reply.
			return &TransientError{Backend: c.backend, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
		}
		return &FatalError{Backend: c.backend, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// trimBaseURL returns base without trailing slashes, or def when base is blank.
func trimBaseURL(base, def string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = def
	}
	return strings.TrimRight(base, "/")
}
