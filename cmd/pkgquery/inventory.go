// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/davetashner/pkgquery/internal/manifest"
	"github.com/davetashner/pkgquery/internal/packages"
)

// Inventory-specific flag values.
var (
	inventoryOutput         string
	inventoryIndirect       bool
	inventoryWorkspace      string
	inventoryListWorkspaces bool
)

// inventoryCmd builds a package list from the manifests in a directory tree.
var inventoryCmd = &cobra.Command{
	Use:   "inventory [dir]",
	Short: "Build a package list from project manifests",
	Long: `Walk a directory tree and collect the dependencies declared in its
manifests into a package list CSV, ready to use as run input.

Recognized manifests: ` + strings.Join(manifest.Manifests(), ", ") + `.

In a go.work or Cargo workspace, --workspace limits the list to one member
and --list-workspaces prints the members instead.

Examples:
  pkgquery inventory .
  pkgquery inventory ./service --indirect -o packages.csv
  pkgquery inventory --workspace api`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInventory,
}

func init() {
	inventoryCmd.Flags().StringVarP(&inventoryOutput, "output", "o", "", "write the package list to this file (default: stdout)")
	inventoryCmd.Flags().BoolVar(&inventoryIndirect, "indirect", false, "include indirect Go module requirements")
	inventoryCmd.Flags().StringVarP(&inventoryWorkspace, "workspace", "w", "", "only scan this workspace member (name or relative path)")
	inventoryCmd.Flags().BoolVar(&inventoryListWorkspaces, "list-workspaces", false, "list workspace members and exit")
}

func runInventory(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	info, err := cmdFS.Stat(root)
	if err != nil {
		return exitError(ExitInvalidArgs, "pkgquery: path %q does not exist (check the path and try again)", root)
	}
	if !info.IsDir() {
		return exitError(ExitInvalidArgs, "pkgquery: %q is not a directory", root)
	}

	if inventoryListWorkspaces {
		return listWorkspaces(cmd, root)
	}
	if inventoryWorkspace != "" {
		ws, err := manifest.FindWorkspace(root, inventoryWorkspace)
		if err != nil {
			return exitError(ExitInvalidArgs, "pkgquery: %v", err)
		}
		root = ws.Path
	}

	deps, err := manifest.Scan(root, manifest.Options{IncludeIndirect: inventoryIndirect})
	if err != nil {
		if errors.Is(err, manifest.ErrNoDependencies) {
			return exitError(ExitTotalFailure, "pkgquery: no dependencies found under %q", root)
		}
		return exitError(ExitTotalFailure, "pkgquery: inventory failed (%v)", err)
	}
	slog.Info("inventory complete", "dependencies", len(deps))

	var w io.Writer = cmd.OutOrStdout()
	var closeOut func() error
	if inventoryOutput != "" {
		if err := cmdFS.MkdirAll(filepath.Dir(inventoryOutput), 0o750); err != nil {
			return exitError(ExitTotalFailure, "pkgquery: cannot create directory for %q (%v)", inventoryOutput, err)
		}
		f, err := cmdFS.Create(inventoryOutput)
		if err != nil {
			return exitError(ExitTotalFailure, "pkgquery: cannot create %q (%v)", inventoryOutput, err)
		}
		defer f.Close() //nolint:errcheck // second close after closeOut is harmless
		w = f
		closeOut = f.Close
	}

	if err := packages.Write(w, manifest.Packages(deps)); err != nil {
		return exitError(ExitTotalFailure, "pkgquery: write package list (%v)", err)
	}
	if closeOut != nil {
		if err := closeOut(); err != nil {
			return exitError(ExitTotalFailure, "pkgquery: close %q (%v)", inventoryOutput, err)
		}
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d packages to %s\n", len(deps), inventoryOutput)
	}
	return nil
}

func listWorkspaces(cmd *cobra.Command, root string) error {
	all, err := manifest.Workspaces(root)
	if err != nil {
		return exitError(ExitInvalidArgs, "pkgquery: %v", err)
	}
	w := cmd.OutOrStdout()
	if len(all) == 0 {
		_, _ = fmt.Fprintf(w, "no workspaces under %s\n", root)
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, ws := range all {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", ws.Name, ws.Kind, ws.Rel)
	}
	return tw.Flush()
}
