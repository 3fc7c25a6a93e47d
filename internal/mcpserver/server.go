// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/davetashner/pkgquery/internal/config"
)

// New creates a new MCP server with pkgquery's tools registered. cfg
// supplies attribute, alias and strategy settings; nil means defaults.
func New(version string, cfg *config.Config) (*mcp.Server, error) {
	ts, err := newToolset(cfg)
	if err != nil {
		return nil, err
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "pkgquery",
		Title:   "pkgquery: LLM package classification",
		Version: version,
	}, nil)

	registerTools(server, ts)
	return server, nil
}

// Run creates an MCP server and runs it on the given transport.
// It blocks until the client disconnects or the context is cancelled.
func Run(ctx context.Context, version string, cfg *config.Config, transport mcp.Transport) error {
	server, err := New(version, cfg)
	if err != nil {
		return err
	}
	return server.Run(ctx, transport)
}
