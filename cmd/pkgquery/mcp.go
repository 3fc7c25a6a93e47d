// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/davetashner/pkgquery/internal/config"
	"github.com/davetashner/pkgquery/internal/mcpserver"
)

// mcpCmd is the parent command for MCP-related subcommands.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol server commands",
	Long:  "Commands for running pkgquery as an MCP server, exposing reply normalization, prompt rendering, model listing and inventory tools to AI agents.",
}

// mcpServeCmd runs the MCP server over stdio.
var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server over stdio",
	Long: `Start an MCP server on stdin/stdout, exposing pkgquery's tools:
  - normalize_response: Turn a model reply into a CSV row
  - render_prompt:      Fill a query template for one package
  - list_models:        List models with a registered response parser
  - inventory:          Build a package list from project manifests

Attributes, aliases and strategy overrides come from the effective
configuration of the current directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Resolve(".")
		if err != nil {
			return exitError(ExitInvalidArgs, "pkgquery: %v", err)
		}
		return mcpserver.Run(cmd.Context(), Version, cfg, &mcp.StdioTransport{})
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
}
