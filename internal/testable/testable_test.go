// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

package testable

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockFileSystem_FallsThrough(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")

	m := &MockFileSystem{}
	require.NoError(t, m.WriteFile(path, []byte("hi"), 0o600))
	data, err := m.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))
}

func TestMockFileSystem_Override(t *testing.T) {
	boom := errors.New("boom")
	m := &MockFileSystem{
		ReadFileFn: func(string) ([]byte, error) { return nil, boom },
	}
	_, err := m.ReadFile("anything")
	assert.ErrorIs(t, err, boom)

	_, err = m.Stat(filepath.Join(t.TempDir(), "missing"))
	assert.True(t, os.IsNotExist(err))
}

func TestMockCommandExecutor(t *testing.T) {
	m := &MockCommandExecutor{
		CommandOutputs: map[string]string{"llama-cli --version": "b4000"},
		CommandErrors:  map[string]string{"llama-cli --bad": "unknown flag"},
	}
	ctx := context.Background()

	path, err := m.LookPath("llama-cli")
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/llama-cli", path)

	out, err := m.CommandContext(ctx, "llama-cli", "--version").Output()
	require.NoError(t, err)
	assert.Equal(t, "b4000", string(out))

	_, err = m.CommandContext(ctx, "llama-cli", "--bad").Output()
	require.Error(t, err)

	out, err = m.CommandContext(ctx, "llama-cli", "-p", "x").Output()
	require.NoError(t, err)
	assert.Empty(t, out)

	assert.Equal(t, []string{"llama-cli --version", "llama-cli --bad", "llama-cli -p x"}, m.Calls)
}
