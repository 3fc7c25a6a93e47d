// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/davetashner/pkgquery/internal/config"
	"github.com/davetashner/pkgquery/internal/llm"
	"github.com/davetashner/pkgquery/internal/normalize"
)

// modelsCmd lists the models pkgquery can parse replies from.
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models with a registered response parser",
	Long: `List every model with a registered response parser, the extraction
strategy used for its replies and the backend its name points to.
Entries under strategies in .pkgquery.yaml are included.`,
	Args: cobra.NoArgs,
	RunE: runModelsList,
}

func runModelsList(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()

	cfg, err := config.Resolve(".")
	if err != nil {
		return exitError(ExitInvalidArgs, "pkgquery: %v", err)
	}
	overrides, err := cfg.StrategyOverrides()
	if err != nil {
		return exitError(ExitInvalidArgs, "pkgquery: %v", err)
	}
	registry := normalize.NewRegistry(overrides)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)

	_, _ = fmt.Fprintln(tw, bold.Sprint("MODEL")+"\t"+bold.Sprint("STRATEGY")+"\t"+bold.Sprint("BACKEND"))
	for _, m := range registry.Models() {
		s, _ := registry.StrategyFor(m)
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", m, cyan.Sprint(s), llm.GuessBackend(m))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "\nbackends: %s\n", strings.Join(llm.Backends(), ", "))
	return nil
}

