// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/davetashner/pkgquery/internal/config"
	"github.com/davetashner/pkgquery/internal/normalize"
	"github.com/davetashner/pkgquery/internal/schema"
)

// Normalize-specific flag values.
var (
	normalizePackage    string
	normalizeModel      string
	normalizeStrategy   string
	normalizeAttributes string
	normalizeStrict     bool
)

// normalizeCmd turns a saved model reply into a result row.
var normalizeCmd = &cobra.Command{
	Use:   "normalize [file]",
	Short: "Normalize one model reply into a CSV row",
	Long: `Parse a free-form model reply the way a run does and print the quoted
CSV row it becomes. Useful to check how a reply from a new model would be
read before starting a full run.

The extraction strategy comes from --strategy, or from the registered
parser of --model. Pass a file path, or pipe the reply via stdin:
  pkgquery normalize --package openssl reply.txt
  pkgquery normalize --package openssl --model deepseek-r1:latest < reply.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNormalize,
}

func init() {
	normalizeCmd.Flags().StringVar(&normalizePackage, "package", "", "package name written to the identity column (required)")
	normalizeCmd.Flags().StringVarP(&normalizeModel, "model", "m", "", "model whose registered strategy to use")
	normalizeCmd.Flags().StringVar(&normalizeStrategy, "strategy", "", "extraction strategy: braces or fenced")
	normalizeCmd.Flags().StringVar(&normalizeAttributes, "attributes", "", "comma-separated attribute list (default: configured attributes)")
	normalizeCmd.Flags().BoolVar(&normalizeStrict, "strict", false, "exit non-zero when the row is degraded")
	_ = normalizeCmd.MarkFlagRequired("package")
}

func runNormalize(cmd *cobra.Command, args []string) error {
	cfg, err := config.Resolve(".")
	if err != nil {
		return exitError(ExitInvalidArgs, "pkgquery: %v", err)
	}
	s, err := schemaFor(cfg, normalizeAttributes)
	if err != nil {
		return err
	}
	strategy, err := strategyFor(cfg, normalizeModel, normalizeStrategy)
	if err != nil {
		return err
	}

	reply, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	parser := normalize.NewParser(s, normalize.WithAliases(cfg.AliasSet()), normalize.WithStrategy(strategy))
	out := parser.Parse(reply, normalizePackage)

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.Row)
	if !out.OK() {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "degraded: %v\n", out.Err)
		if normalizeStrict {
			return exitError(ExitPartialFailure, "")
		}
	}
	return nil
}

// schemaFor returns the schema named by a comma-separated attributes flag,
// or the configured one when the flag is empty.
func schemaFor(cfg *config.Config, attributes string) (*schema.Schema, error) {
	if attributes != "" {
		var names []string
		for _, a := range strings.Split(attributes, ",") {
			if a = strings.TrimSpace(a); a != "" {
				names = append(names, a)
			}
		}
		s, err := schema.New(names)
		if err != nil {
			return nil, exitError(ExitInvalidArgs, "pkgquery: --attributes: %v", err)
		}
		return s, nil
	}
	s, err := cfg.Schema()
	if err != nil {
		return nil, exitError(ExitInvalidArgs, "pkgquery: %v", err)
	}
	return s, nil
}

// strategyFor resolves an explicit strategy name, then the model registry.
// With neither, the braces strategy applies.
func strategyFor(cfg *config.Config, model, name string) (normalize.Strategy, error) {
	if name != "" {
		s, err := normalize.ParseStrategy(name)
		if err != nil {
			return 0, exitError(ExitInvalidArgs, "pkgquery: --strategy: %v", err)
		}
		return s, nil
	}
	if model == "" {
		return normalize.StrategyBraces, nil
	}
	overrides, err := cfg.StrategyOverrides()
	if err != nil {
		return 0, exitError(ExitInvalidArgs, "pkgquery: %v", err)
	}
	s, err := normalize.NewRegistry(overrides).StrategyFor(model)
	if err != nil {
		return 0, exitError(ExitInvalidArgs, "pkgquery: %v", err)
	}
	return s, nil
}

// readInput reads the file named by args[0], or stdin when no file is given.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	var r io.Reader = cmd.InOrStdin()
	if len(args) > 0 {
		f, err := cmdFS.Open(args[0])
		if err != nil {
			return "", exitError(ExitInvalidArgs, "pkgquery: cannot open %q (%v)", args[0], err)
		}
		defer f.Close() //nolint:errcheck // best-effort close on input file
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", exitError(ExitInvalidArgs, "pkgquery: read input (%v)", err)
	}
	return string(data), nil
}
