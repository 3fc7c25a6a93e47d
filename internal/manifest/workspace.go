// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
	"golang.org/x/mod/modfile"
)

// WorkspaceKind names the file that declared a workspace.
type WorkspaceKind string

// Workspace layouts understood by Workspaces.
const (
	KindGoWork WorkspaceKind = "go.work"
	KindCargo  WorkspaceKind = "cargo"
)

// Workspace is one member module or crate of a multi-module tree.
type Workspace struct {
	Kind WorkspaceKind
	Name string // directory basename
	Path string // root joined with Rel
	Rel  string // relative to the tree root
}

// ErrUnknownWorkspace is returned by FindWorkspace when no member matches.
var ErrUnknownWorkspace = errors.New("unknown workspace")

// Workspaces lists the members declared by a go.work file and by the
// [workspace] section of a root Cargo.toml. Members whose directory does not
// exist are dropped. A tree without either file has no workspaces.
func Workspaces(root string) ([]Workspace, error) {
	var out []Workspace

	goWork, err := goWorkMembers(root)
	if err != nil {
		return nil, err
	}
	out = append(out, goWork...)

	cargo, err := cargoMembers(root)
	if err != nil {
		return nil, err
	}
	out = append(out, cargo...)

	return out, nil
}

// FindWorkspace returns the member of root called name, matched against
// the member's name or its relative path.
func FindWorkspace(root, name string) (Workspace, error) {
	all, err := Workspaces(root)
	if err != nil {
		return Workspace{}, err
	}
	for _, ws := range all {
		if ws.Name == name || ws.Rel == filepath.Clean(name) {
			return ws, nil
		}
	}
	return Workspace{}, fmt.Errorf("%w %q under %s", ErrUnknownWorkspace, name, root)
}

func goWorkMembers(root string) ([]Workspace, error) {
	path := filepath.Join(root, "go.work")
	data, err := readOptional(path)
	if err != nil || data == nil {
		return nil, err
	}

	wf, err := modfile.ParseWork(path, data, nil)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	var out []Workspace
	for _, use := range wf.Use {
		rel := filepath.Clean(use.Path)
		if filepath.IsAbs(rel) || !isDir(filepath.Join(root, rel)) {
			continue
		}
		out = append(out, Workspace{
			Kind: KindGoWork,
			Name: filepath.Base(rel),
			Path: filepath.Join(root, rel),
			Rel:  rel,
		})
	}
	return out, nil
}

type cargoWorkspaceFile struct {
	Workspace *struct {
		Members []string `toml:"members"`
		Exclude []string `toml:"exclude"`
	} `toml:"workspace"`
}

func cargoMembers(root string) ([]Workspace, error) {
	path := filepath.Join(root, "Cargo.toml")
	data, err := readOptional(path)
	if err != nil || data == nil {
		return nil, err
	}

	var cf cargoWorkspaceFile
	if err := toml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cf.Workspace == nil {
		return nil, nil
	}

	dirs, err := globDirs(root, cf.Workspace.Members)
	if err != nil {
		return nil, err
	}
	excluded, err := globDirs(root, cf.Workspace.Exclude)
	if err != nil {
		return nil, err
	}
	skip := make(map[string]bool, len(excluded))
	for _, d := range excluded {
		skip[d] = true
	}

	var out []Workspace
	for _, rel := range dirs {
		if skip[rel] {
			continue
		}
		out = append(out, Workspace{
			Kind: KindCargo,
			Name: filepath.Base(rel),
			Path: filepath.Join(root, rel),
			Rel:  rel,
		})
	}
	return out, nil
}

// globDirs expands patterns relative to root and returns the matching
// directories as sorted, deduplicated relative paths.
func globDirs(root string, patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, pat := range patterns {
		matches, err := filepath.Glob(filepath.Join(root, pat))
		if err != nil {
			return nil, fmt.Errorf("workspace pattern %q: %w", pat, err)
		}
		for _, m := range matches {
			rel, err := filepath.Rel(root, m)
			if err != nil || seen[rel] || !isDir(m) {
				continue
			}
			seen[rel] = true
			out = append(out, rel)
		}
	}
	sort.Strings(out)
	return out, nil
}

// readOptional returns nil data when path does not exist.
func readOptional(path string) ([]byte, error) {
	data, err := FS.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

func isDir(path string) bool {
	info, err := FS.Stat(path)
	return err == nil && info.IsDir()
}
