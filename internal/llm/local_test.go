// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

package llm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/davetashner/pkgquery/internal/llm"
	"github.com/davetashner/pkgquery/internal/testable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_Complete(t *testing.T) {
	ex := &testable.MockCommandExecutor{
		LookPathResult: "/opt/llama/llama-cli",
		DefaultOutput:  "{'is_security_relevant': 'yes', 'explanation': 'crypto'}",
	}
	p, err := llm.NewLocalProvider(llm.LocalConfig{
		ModelDir: "/models",
		Model:    "orca-mini-3b-gguf2-q4_0",
		Executor: ex,
	})
	require.NoError(t, err)

	resp, err := p.Complete(context.Background(), llm.Request{Prompt: "Is gnupg relevant?"})
	require.NoError(t, err)
	assert.Equal(t, "{'is_security_relevant': 'yes', 'explanation': 'crypto'}", resp.Content)
	assert.Equal(t, "orca-mini-3b-gguf2-q4_0", resp.Model)

	require.Len(t, ex.Calls, 1)
	call := ex.Calls[0]
	assert.Contains(t, call, "/opt/llama/llama-cli -m /models/orca-mini-3b-gguf2-q4_0.gguf")
	assert.Contains(t, call, "-p Is gnupg relevant?")
	assert.Contains(t, call, "-n 1024")
	assert.Contains(t, call, "--temp 0")
}

func TestLocal_BinaryNotFound(t *testing.T) {
	ex := &testable.MockCommandExecutor{LookPathErr: errors.New("executable file not found in $PATH")}
	_, err := llm.NewLocalProvider(llm.LocalConfig{Model: "m", Executor: ex})
	require.Error(t, err)

	var fatal *llm.FatalError
	assert.ErrorAs(t, err, &fatal)
	assert.Contains(t, err.Error(), "llama-cli")
}

func TestLocal_ProcessFailureIsFatal(t *testing.T) {
	ex := &testable.MockCommandExecutor{
		LookPathResult: "/usr/bin/llama-cli",
		DefaultError:   "failed to load model",
	}
	p, err := llm.NewLocalProvider(llm.LocalConfig{Model: "m", Executor: ex})
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), llm.Request{Prompt: "q"})
	require.Error(t, err)
	assert.False(t, llm.IsTransient(err))
	assert.Contains(t, err.Error(), "failed to load model")
}

func TestLocal_ModelPath(t *testing.T) {
	p, err := llm.NewLocalProvider(llm.LocalConfig{
		ModelDir: "/srv/models",
		Model:    "m",
		Executor: &testable.MockCommandExecutor{},
	})
	require.NoError(t, err)
	assert.Equal(t, "/srv/models/Phi-3-mini-4k-instruct.Q4_0.gguf", p.ModelPath("Phi-3-mini-4k-instruct.Q4_0"))
}
