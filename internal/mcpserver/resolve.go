// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes pkgquery's offline operations as tools over stdio transport.
package mcpserver

import (
	"fmt"
	"os"
	"path/filepath"
)

// resolve returns the absolute, symlink-resolved form of path and its
// FileInfo. An empty path means the current directory.
func resolve(path string) (string, os.FileInfo, error) {
	if path == "" {
		path = "."
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", nil, fmt.Errorf("cannot resolve path %q: %w", path, err)
	}

	absPath, err = filepath.EvalSymlinks(absPath)
	if err != nil {
		return "", nil, fmt.Errorf("cannot resolve path %q: %w", path, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", nil, fmt.Errorf("path %q does not exist", path)
	}
	return absPath, info, nil
}

// ResolveDir resolves a directory path. It returns an error if the path
// does not exist or is not a directory.
func ResolveDir(path string) (string, error) {
	abs, info, err := resolve(path)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%q is not a directory", path)
	}
	return abs, nil
}

// ResolveFile resolves a regular file path. It returns an error if the
// path does not exist or is a directory.
func ResolveFile(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("file path is required")
	}
	abs, info, err := resolve(path)
	if err != nil {
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%q is not a regular file", path)
	}
	return abs, nil
}
