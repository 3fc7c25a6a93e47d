// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspaces_None(t *testing.T) {
	ws, err := Workspaces(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, ws)
}

func TestWorkspaces_GoWork(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "go.work"), "go 1.22\n\nuse (\n\t./api\n\t./cli\n\t./gone\n)\n")
	writeFile(t, filepath.Join(root, "api", "go.mod"), "module example.com/api\n")
	writeFile(t, filepath.Join(root, "cli", "go.mod"), "module example.com/cli\n")

	ws, err := Workspaces(root)
	require.NoError(t, err)
	require.Len(t, ws, 2)
	assert.Equal(t, Workspace{Kind: KindGoWork, Name: "api", Path: filepath.Join(root, "api"), Rel: "api"}, ws[0])
	assert.Equal(t, "cli", ws[1].Name)
}

func TestWorkspaces_Cargo(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Cargo.toml"), `[workspace]
members = ["crates/*"]
exclude = ["crates/experimental"]
`)
	for _, c := range []string{"core", "cli", "experimental"} {
		writeFile(t, filepath.Join(root, "crates", c, "Cargo.toml"), "[package]\nname = \""+c+"\"\n")
	}
	writeFile(t, filepath.Join(root, "crates", "README.md"), "not a crate\n")

	ws, err := Workspaces(root)
	require.NoError(t, err)
	require.Len(t, ws, 2)
	assert.Equal(t, "cli", ws[0].Name)
	assert.Equal(t, filepath.Join("crates", "core"), ws[1].Rel)
	assert.Equal(t, KindCargo, ws[1].Kind)
}

func TestWorkspaces_CargoWithoutWorkspaceSection(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Cargo.toml"), "[package]\nname = \"solo\"\n")

	ws, err := Workspaces(root)
	require.NoError(t, err)
	assert.Empty(t, ws)
}

func TestWorkspaces_InvalidGoWork(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.work"), []byte("use (\n"), 0o600))

	_, err := Workspaces(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "go.work")
}

func TestFindWorkspace(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "go.work"), "go 1.22\n\nuse ./services/api\n")
	writeFile(t, filepath.Join(root, "services", "api", "go.mod"), "module example.com/api\n")

	ws, err := FindWorkspace(root, "api")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "services", "api"), ws.Path)

	ws, err = FindWorkspace(root, "services/api/")
	require.NoError(t, err)
	assert.Equal(t, "api", ws.Name)

	_, err = FindWorkspace(root, "web")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownWorkspace))
}
