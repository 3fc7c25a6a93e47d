// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

package llm

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/davetashner/pkgquery/internal/testable"
)

const (
	// DefaultLocalBinary is the inference binary run for local model files.
	DefaultLocalBinary = "llama-cli"

	// localMaxTokens and localTemperature match the settings local models
	// were evaluated with.
	localMaxTokens   = 1024
	localTemperature = 0.0
)

// LocalConfig configures a LocalProvider.
type LocalConfig struct {
	// Binary is the llama-cli compatible executable. Defaults to llama-cli.
	Binary string
	// ModelDir holds <model>.gguf files.
	ModelDir string
	Model    string
	// Executor runs the binary. Defaults to testable.DefaultExecutor().
	Executor testable.CommandExecutor
}

// LocalProvider runs a local model file through an inference binary, one
// process per completion.
type LocalProvider struct {
	exec     testable.CommandExecutor
	binary   string
	modelDir string
	model    string
}

var _ Provider = (*LocalProvider)(nil)

// NewLocalProvider resolves the inference binary on PATH.
func NewLocalProvider(cfg LocalConfig) (*LocalProvider, error) {
	ex := cfg.Executor
	if ex == nil {
		ex = testable.DefaultExecutor()
	}
	binary := cfg.Binary
	if binary == "" {
		binary = DefaultLocalBinary
	}

	path, err := ex.LookPath(binary)
	if err != nil {
		return nil, &FatalError{Backend: "gpt4all", Err: fmt.Errorf("inference binary %q not found: %w", binary, err)}
	}

	return &LocalProvider{
		exec:     ex,
		binary:   path,
		modelDir: cfg.ModelDir,
		model:    cfg.Model,
	}, nil
}

// ModelPath returns the model file used for model.
func (p *LocalProvider) ModelPath(model string) string {
	return filepath.Join(p.modelDir, model+".gguf")
}

// Complete runs the binary with the prompt and returns its stdout.
func (p *LocalProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	model := p.model
	if req.Model != "" {
		model = req.Model
	}

	maxTokens := localMaxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	temp := localTemperature
	if req.Temperature != nil {
		temp = *req.Temperature
	}

	args := []string{
		"-m", p.ModelPath(model),
		"-p", req.Prompt,
		"-n", strconv.Itoa(maxTokens),
		"--temp", strconv.FormatFloat(temp, 'f', -1, 64),
		"--no-display-prompt",
		"-no-cnv",
	}

	out, err := p.exec.CommandContext(ctx, p.binary, args...).Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, classifyTransport(ctx, "gpt4all", ctx.Err())
		}
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			return nil, &FatalError{Backend: "gpt4all", Err: fmt.Errorf("%s exited: %w: %s", filepath.Base(p.binary), err, strings.TrimSpace(string(ee.Stderr)))}
		}
		return nil, &FatalError{Backend: "gpt4all", Err: err}
	}

	return &Response{
		Content: string(out),
		Model:   model,
	}, nil
}

// Model returns the configured model.
func (p *LocalProvider) Model() string { return p.model }
