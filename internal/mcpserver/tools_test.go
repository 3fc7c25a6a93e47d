// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

package mcpserver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davetashner/pkgquery/internal/config"
	"github.com/davetashner/pkgquery/internal/normalize"
)

func testToolset(t *testing.T, cfg *config.Config) *toolset {
	t.Helper()
	ts, err := newToolset(cfg)
	require.NoError(t, err)
	return ts
}

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	return res.Content[0].(*mcp.TextContent).Text
}

func TestHandleNormalize_Success(t *testing.T) {
	ts := testToolset(t, nil)
	res, out, err := ts.handleNormalize(context.Background(), nil, NormalizeInput{
		Response:    `{"package_name": "x", "is_security_relevant": false, "explanation": "fonts"}`,
		PackageName: "dejavu",
	})
	require.NoError(t, err)
	assert.Equal(t, `"dejavu","False","fonts"`, out.Row)
	assert.Equal(t, "success", out.Status)
	assert.Empty(t, out.Error)
	assert.Equal(t, out.Row, text(t, res))
}

func TestHandleNormalize_Degraded(t *testing.T) {
	ts := testToolset(t, nil)
	res, out, err := ts.handleNormalize(context.Background(), nil, NormalizeInput{
		Response:    "I don't know.",
		PackageName: "zlib",
	})
	require.NoError(t, err)
	assert.Equal(t, `"zlib","",""`, out.Row)
	assert.Equal(t, "degraded", out.Status)
	assert.Contains(t, out.Error, "no object found")
	assert.Contains(t, text(t, res), "# degraded:")
}

func TestHandleNormalize_ModelStrategy(t *testing.T) {
	ts := testToolset(t, nil)
	reply := "Thinking {not this}\n```json\n{\"is_security_relevant\": true, \"explanation\": \"fenced\"}\n```"

	_, out, err := ts.handleNormalize(context.Background(), nil, NormalizeInput{
		Response: reply, PackageName: "curl", Model: "deepseek-r1:latest",
	})
	require.NoError(t, err)
	assert.Equal(t, `"curl","True","fenced"`, out.Row)

	_, _, err = ts.handleNormalize(context.Background(), nil, NormalizeInput{
		Response: reply, PackageName: "curl", Model: "unknown-model",
	})
	assert.ErrorContains(t, err, "no response parser registered")

	_, out, err = ts.handleNormalize(context.Background(), nil, NormalizeInput{
		Response: reply, PackageName: "curl", Model: "unknown-model", Strategy: "fenced",
	})
	require.NoError(t, err)
	assert.Equal(t, "success", out.Status)
}

func TestHandleNormalize_ConfiguredOverrides(t *testing.T) {
	ts := testToolset(t, &config.Config{
		Attributes: []string{"package_name", "license"},
		Aliases:    map[string]string{"licence": "license"},
		Strategies: map[string]string{"qwq:32b": "fenced"},
	})
	_, out, err := ts.handleNormalize(context.Background(), nil, NormalizeInput{
		Response:    "```json\n{\"licence\": \"MIT\"}\n```",
		PackageName: "curl",
		Model:       "qwq:32b",
	})
	require.NoError(t, err)
	assert.Equal(t, `"curl","MIT"`, out.Row)
}

func TestHandleNormalize_Validation(t *testing.T) {
	ts := testToolset(t, nil)
	_, _, err := ts.handleNormalize(context.Background(), nil, NormalizeInput{Response: "{}"})
	assert.ErrorContains(t, err, "package_name is required")

	_, _, err = ts.handleNormalize(context.Background(), nil, NormalizeInput{Response: "{}", PackageName: "a", Attributes: " , "})
	assert.Error(t, err)

	_, _, err = ts.handleNormalize(context.Background(), nil, NormalizeInput{Response: "{}", PackageName: "a", Strategy: "xml"})
	assert.Error(t, err)
}

func TestHandleRender(t *testing.T) {
	ts := testToolset(t, nil)
	res, _, err := ts.handleRender(context.Background(), nil, RenderInput{
		Template:     "Is {name} ({description}) security relevant? Deps: {dependencies}",
		Name:         "openssl",
		Description:  "TLS toolkit",
		Dependencies: "zlib",
	})
	require.NoError(t, err)
	assert.Equal(t, "Is openssl (TLS toolkit) security relevant? Deps: zlib", text(t, res))
}

func TestHandleRender_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "ubuntu_gpt-4o.tpl", "{name}: {description} / {dependencies} {{json}}")

	ts := testToolset(t, nil)
	res, _, err := ts.handleRender(context.Background(), nil, RenderInput{TemplatePath: path, Name: "curl"})
	require.NoError(t, err)
	assert.Equal(t, "curl:  /  {json}", text(t, res))
}

func TestHandleRender_Errors(t *testing.T) {
	ts := testToolset(t, nil)
	_, _, err := ts.handleRender(context.Background(), nil, RenderInput{Name: "x"})
	assert.ErrorContains(t, err, "one of template or template_path")

	_, _, err = ts.handleRender(context.Background(), nil, RenderInput{TemplatePath: "/nonexistent.tpl", Name: "x"})
	assert.Error(t, err)

	_, _, err = ts.handleRender(context.Background(), nil, RenderInput{Template: "{version} {dependencies}", Name: "x"})
	assert.ErrorContains(t, err, "unknown placeholder")
}

func TestHandleListModels(t *testing.T) {
	ts := testToolset(t, &config.Config{Strategies: map[string]string{"llama3:8b": "braces"}})
	res, out, err := ts.handleListModels(context.Background(), nil, ListModelsInput{})
	require.NoError(t, err)

	byModel := map[string]ModelInfo{}
	for _, m := range out.Models {
		byModel[m.Model] = m
	}
	assert.Equal(t, normalize.StrategyFencedFirst.String(), byModel["deepseek-r1:latest"].Strategy)
	assert.Equal(t, "ollama", byModel["deepseek-r1:latest"].Backend)
	assert.Equal(t, "openai", byModel["gpt-5"].Backend)
	assert.Contains(t, byModel, "llama3:8b")
	assert.Contains(t, out.Backends, "gpt4all")
	assert.Contains(t, text(t, res), "deepseek-r1:latest\tfenced\tollama")
}

func TestHandleInventory(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "go.mod", "module example.com/app\n\ngo 1.22\n\nrequire github.com/google/uuid v1.6.0\n")
	writeTestFile(t, dir, "requirements.txt", "requests==2.31.0\n")

	ts := testToolset(t, nil)
	res, _, err := ts.handleInventory(context.Background(), nil, InventoryInput{Path: dir})
	require.NoError(t, err)

	out := text(t, res)
	assert.Contains(t, out, "package_name,package_version,package_description,dependency_tree_string\n")
	assert.Contains(t, out, "github.com/google/uuid,v1.6.0,go package required by")
	assert.Contains(t, out, "requests,2.31.0,PyPI package required by")
}

func TestHandleInventory_Errors(t *testing.T) {
	ts := testToolset(t, nil)
	_, _, err := ts.handleInventory(context.Background(), nil, InventoryInput{Path: "/nonexistent/path"})
	assert.ErrorContains(t, err, "cannot resolve path")

	_, _, err = ts.handleInventory(context.Background(), nil, InventoryInput{Path: t.TempDir()})
	assert.ErrorContains(t, err, "no dependencies found")
}

func TestSplitAndTrim(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a , ,b,"))
	assert.Empty(t, splitAndTrim(""))
}
