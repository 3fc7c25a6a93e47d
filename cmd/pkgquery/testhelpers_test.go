// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/davetashner/pkgquery/internal/config"
	"github.com/davetashner/pkgquery/internal/testable"
)

// newTestCmd returns rootCmd with its output captured.
func newTestCmd() (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetIn(new(bytes.Buffer))
	return rootCmd, stdout, stderr
}

// resetFlags restores every command's flags to their defaults so tests do
// not leak state into each other through the shared command tree.
func resetFlags() {
	for _, c := range []*cobra.Command{
		runCmd, normalizeCmd, inventoryCmd, validateCmd,
		configGetCmd, configSetCmd,
	} {
		c.Flags().VisitAll(func(f *pflag.Flag) {
			f.Changed = false
			_ = f.Value.Set(f.DefValue)
		})
	}
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		f.Changed = false
		_ = f.Value.Set(f.DefValue)
	})

	// Reset slices AFTER VisitAll: setting a string array to its "[]"
	// default appends rather than clears.
	runModels = nil
}

// withMockFS swaps the command file system for mock during the test.
func withMockFS(t *testing.T, mock *testable.MockFileSystem) {
	t.Helper()
	orig := cmdFS
	cmdFS = mock
	t.Cleanup(func() { cmdFS = orig })
}

// isolate runs the test in a fresh working directory with an empty global
// config and no backend credentials, and returns that directory.
func isolate(t *testing.T) string {
	t.Helper()
	resetFlags()

	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	for _, name := range config.APIKeyVars {
		t.Setenv(name, "")
	}
	t.Setenv("QUERY_RESTRICTION", "")
	t.Setenv("BASE_PACKAGE_LIST", "")
	t.Setenv("CSV_FILE", "")
	return dir
}

// writeTestFile writes content to dir/name, creating parent directories.
func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}
