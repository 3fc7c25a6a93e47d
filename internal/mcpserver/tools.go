// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

package mcpserver

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/davetashner/pkgquery/internal/config"
	"github.com/davetashner/pkgquery/internal/llm"
	"github.com/davetashner/pkgquery/internal/manifest"
	"github.com/davetashner/pkgquery/internal/normalize"
	"github.com/davetashner/pkgquery/internal/packages"
	"github.com/davetashner/pkgquery/internal/prompt"
	"github.com/davetashner/pkgquery/internal/schema"
)

// NormalizeInput is the input schema for the normalize_response MCP tool.
type NormalizeInput struct {
	Response    string `json:"response" jsonschema:"Raw model reply to normalize"`
	PackageName string `json:"package_name" jsonschema:"Package the reply is about; written to the identity column"`
	Model       string `json:"model,omitempty" jsonschema:"Model that produced the reply; selects the extraction strategy"`
	Strategy    string `json:"strategy,omitempty" jsonschema:"Extraction strategy override: braces or fenced"`
	Attributes  string `json:"attributes,omitempty" jsonschema:"Comma-separated attribute list (default: configured schema)"`
}

// NormalizeOutput is the structured result of normalize_response.
type NormalizeOutput struct {
	Row    string `json:"row"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// RenderInput is the input schema for the render_prompt MCP tool.
type RenderInput struct {
	Template     string `json:"template,omitempty" jsonschema:"Template text with {name}, {description} and {dependencies}"`
	TemplatePath string `json:"template_path,omitempty" jsonschema:"Template file to load when template is empty"`
	Name         string `json:"name" jsonschema:"Package name"`
	Description  string `json:"description,omitempty" jsonschema:"Package description"`
	Dependencies string `json:"dependencies,omitempty" jsonschema:"Dependency tree string"`
}

// ListModelsInput is the input schema for the list_models MCP tool.
type ListModelsInput struct{}

// ModelInfo describes one registered model.
type ModelInfo struct {
	Model    string `json:"model"`
	Strategy string `json:"strategy"`
	Backend  string `json:"backend"`
}

// ListModelsOutput is the structured result of list_models.
type ListModelsOutput struct {
	Models   []ModelInfo `json:"models"`
	Backends []string    `json:"backends"`
}

// InventoryInput is the input schema for the inventory MCP tool.
type InventoryInput struct {
	Path            string `json:"path" jsonschema:"Source tree to scan for manifests (defaults to current directory)"`
	IncludeIndirect bool   `json:"include_indirect,omitempty" jsonschema:"Keep indirect Go requirements"`
}

// toolset holds the settings the handlers share.
type toolset struct {
	schema   *schema.Schema
	aliases  schema.Aliases
	registry *normalize.Registry
}

func newToolset(cfg *config.Config) (*toolset, error) {
	if cfg == nil {
		cfg = &config.Config{}
	}
	s, err := cfg.Schema()
	if err != nil {
		return nil, fmt.Errorf("attributes: %w", err)
	}
	overrides, err := cfg.StrategyOverrides()
	if err != nil {
		return nil, err
	}
	return &toolset{
		schema:   s,
		aliases:  cfg.AliasSet(),
		registry: normalize.NewRegistry(overrides),
	}, nil
}

// boolPtr returns a pointer to a bool.
func boolPtr(b bool) *bool { return &b }

var readOnly = &mcp.ToolAnnotations{
	ReadOnlyHint:    true,
	DestructiveHint: boolPtr(false),
	OpenWorldHint:   boolPtr(false),
}

// registerTools adds all pkgquery tools to the MCP server.
func registerTools(server *mcp.Server, ts *toolset) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "normalize_response",
		Description: "Normalize a free-form model reply into a quoted CSV row for the attribute schema. Returns the row, its status (success or degraded) and the reason when degraded.",
		Annotations: readOnly,
	}, ts.handleNormalize)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "render_prompt",
		Description: "Render a query template for one package, substituting {name}, {description} and {dependencies}.",
		Annotations: readOnly,
	}, ts.handleRender)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_models",
		Description: "List the models with a registered response parser, their extraction strategy and likely backend.",
		Annotations: readOnly,
	}, ts.handleListModels)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "inventory",
		Description: "Build a package list CSV from the go.mod, Cargo.toml, pyproject.toml and requirements.txt files under a directory.",
		Annotations: readOnly,
	}, ts.handleInventory)
}

func (ts *toolset) handleNormalize(_ context.Context, _ *mcp.CallToolRequest, input NormalizeInput) (*mcp.CallToolResult, NormalizeOutput, error) {
	if strings.TrimSpace(input.PackageName) == "" {
		return nil, NormalizeOutput{}, fmt.Errorf("package_name is required")
	}

	s := ts.schema
	if input.Attributes != "" {
		var err error
		if s, err = schema.New(splitAndTrim(input.Attributes)); err != nil {
			return nil, NormalizeOutput{}, err
		}
	}

	strategy := normalize.StrategyBraces
	switch {
	case input.Strategy != "":
		var err error
		if strategy, err = normalize.ParseStrategy(input.Strategy); err != nil {
			return nil, NormalizeOutput{}, err
		}
	case input.Model != "":
		var err error
		if strategy, err = ts.registry.StrategyFor(input.Model); err != nil {
			return nil, NormalizeOutput{}, err
		}
	}

	parser := normalize.NewParser(s, normalize.WithAliases(ts.aliases), normalize.WithStrategy(strategy))
	out := parser.Parse(input.Response, input.PackageName)

	result := NormalizeOutput{Row: out.Row, Status: out.Status.String()}
	if out.Err != nil {
		result.Error = out.Err.Error()
	}

	text := result.Row
	if result.Error != "" {
		text += "\n# " + result.Status + ": " + result.Error
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, result, nil
}

func (ts *toolset) handleRender(_ context.Context, _ *mcp.CallToolRequest, input RenderInput) (*mcp.CallToolResult, any, error) {
	var tmpl *prompt.Template
	switch {
	case input.Template != "":
		tmpl = prompt.New(input.Template)
	case input.TemplatePath != "":
		path, err := ResolveFile(input.TemplatePath)
		if err != nil {
			return nil, nil, err
		}
		if tmpl, err = prompt.Load(path); err != nil {
			return nil, nil, err
		}
	default:
		return nil, nil, fmt.Errorf("one of template or template_path is required")
	}

	text, err := tmpl.Generate(input.Name, input.Description, input.Dependencies)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func (ts *toolset) handleListModels(_ context.Context, _ *mcp.CallToolRequest, _ ListModelsInput) (*mcp.CallToolResult, ListModelsOutput, error) {
	out := ListModelsOutput{Models: []ModelInfo{}, Backends: llm.Backends()}

	var buf bytes.Buffer
	for _, m := range ts.registry.Models() {
		s, _ := ts.registry.StrategyFor(m)
		info := ModelInfo{Model: m, Strategy: s.String(), Backend: string(llm.GuessBackend(m))}
		out.Models = append(out.Models, info)
		fmt.Fprintf(&buf, "%s\t%s\t%s\n", info.Model, info.Strategy, info.Backend)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: buf.String()},
		},
	}, out, nil
}

func (ts *toolset) handleInventory(_ context.Context, _ *mcp.CallToolRequest, input InventoryInput) (*mcp.CallToolResult, any, error) {
	dir, err := ResolveDir(input.Path)
	if err != nil {
		return nil, nil, err
	}

	deps, err := manifest.Scan(dir, manifest.Options{IncludeIndirect: input.IncludeIndirect})
	if err != nil {
		return nil, nil, err
	}

	var buf bytes.Buffer
	if err := packages.Write(&buf, manifest.Packages(deps)); err != nil {
		return nil, nil, fmt.Errorf("write package list: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: buf.String()},
		},
	}, nil, nil
}

// splitAndTrim splits a comma-separated string and trims whitespace from each element.
func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
