// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/davetashner/pkgquery/internal/config"
	"github.com/davetashner/pkgquery/internal/validate"
)

// Validate-specific flag values.
var (
	validateAttributes string
	validatePackages   bool
)

// validateCmd checks a result CSV, or a package list with --packages.
var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a result CSV or a package list",
	Long: `Validate a result CSV against the attribute schema: the header must
list the attributes in order, every row needs one value per attribute, and
the package name column must be filled and unique. Degraded rows are
counted but are not errors.

With --packages, check a package list used as run input instead.

Pass a file path as an argument, or pipe the CSV via stdin:
  pkgquery validate csv/linux_llama3-8b.csv
  pkgquery validate --attributes package_name,license results.csv
  pkgquery validate --packages < packages.csv`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateAttributes, "attributes", "", "comma-separated attribute list (default: configured attributes)")
	validateCmd.Flags().BoolVar(&validatePackages, "packages", false, "validate a package list instead of a result CSV")
}

func runValidate(cmd *cobra.Command, args []string) error {
	var r io.Reader = cmd.InOrStdin()
	if len(args) > 0 {
		f, err := cmdFS.Open(args[0])
		if err != nil {
			return exitError(ExitInvalidArgs, "pkgquery: cannot open %q (%v)", args[0], err)
		}
		defer f.Close() //nolint:errcheck // best-effort close on input file
		r = f
	}

	var result *validate.Result
	noun := "packages"
	if validatePackages {
		result = validate.Packages(r)
	} else {
		cfg, err := config.Resolve(".")
		if err != nil {
			return exitError(ExitInvalidArgs, "pkgquery: %v", err)
		}
		s, err := schemaFor(cfg, validateAttributes)
		if err != nil {
			return err
		}
		result = validate.Validate(r, s)
		noun = "rows"
	}

	if result.Valid() {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "valid: %d %s", result.TotalLines, noun)
		if result.Degraded > 0 {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), " (%d degraded)", result.Degraded)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout())
		return nil
	}

	for _, e := range result.Errors {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), e.Error())
		if e.Suggestion != "" {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "  fix: %s\n", e.Suggestion)
		}
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "\n%d error(s) found in %d lines\n",
		len(result.Errors), result.TotalLines)
	return exitError(ExitInvalidArgs, "")
}
