// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

// Package manifest builds a package list from the dependency manifests found
// in a source tree. The list feeds a query run as its input CSV.
package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/davetashner/pkgquery/internal/packages"
	"github.com/davetashner/pkgquery/internal/testable"
)

// FS is the file system used by Scan. Tests replace it.
var FS testable.FileSystem = testable.DefaultFS

// Ecosystem names.
const (
	EcosystemGo     = "go"
	EcosystemCrates = "crates.io"
	EcosystemPyPI   = "PyPI"
)

// Dependency is one entry of a manifest.
type Dependency struct {
	Ecosystem string
	Name      string
	Version   string
	// Indirect is set for go.mod requirements marked "// indirect".
	Indirect bool
	// Source is the manifest path the dependency was read from.
	Source string
}

// Options controls Scan.
type Options struct {
	// IncludeIndirect keeps indirect Go requirements.
	IncludeIndirect bool
}

type parser func(data []byte) ([]Dependency, error)

// parsers maps a manifest file name to its parser.
var parsers = map[string]parser{
	"go.mod":           parseGoMod,
	"Cargo.toml":       parseCargo,
	"pyproject.toml":   parsePyproject,
	"requirements.txt": parseRequirements,
}

// skipDirs are never descended into.
var skipDirs = map[string]bool{
	".git":         true,
	"vendor":       true,
	"node_modules": true,
	"target":       true,
	".venv":        true,
	"venv":         true,
	"__pycache__":  true,
}

// Manifests returns the recognized manifest file names, sorted.
func Manifests() []string {
	names := make([]string, 0, len(parsers))
	for n := range parsers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ParseFile parses a single manifest. The parser is chosen by base name.
func ParseFile(path string) ([]Dependency, error) {
	parse, ok := parsers[filepath.Base(path)]
	if !ok {
		return nil, fmt.Errorf("unsupported manifest %q (want one of %s)", path, strings.Join(Manifests(), ", "))
	}
	data, err := FS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	deps, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for i := range deps {
		deps[i].Source = path
	}
	return deps, nil
}

// Scan walks root and returns the dependencies of every manifest under it.
// A manifest that fails to parse is logged and skipped. Dependencies that
// appear in several manifests of the same ecosystem are reported once, from
// the first manifest in walk order.
func Scan(root string, opts Options) ([]Dependency, error) {
	var all []Dependency
	seen := make(map[string]bool)

	err := FS.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := parsers[d.Name()]; !ok {
			return nil
		}

		deps, perr := ParseFile(path)
		if perr != nil {
			slog.Warn("skipping manifest", "path", path, "error", perr)
			return nil
		}
		slog.Debug("parsed manifest", "path", path, "dependencies", len(deps))

		for _, dep := range deps {
			if dep.Indirect && !opts.IncludeIndirect {
				continue
			}
			key := dep.Ecosystem + "\x00" + dep.Name
			if seen[key] {
				continue
			}
			seen[key] = true
			all = append(all, dep)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	if len(all) == 0 {
		return nil, ErrNoDependencies
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Ecosystem != all[j].Ecosystem {
			return all[i].Ecosystem < all[j].Ecosystem
		}
		return all[i].Name < all[j].Name
	})
	return all, nil
}

// ErrNoDependencies is returned by Scan when no manifest yields a dependency.
var ErrNoDependencies = errors.New("no dependencies found")

// Packages converts dependencies into input rows. The description names the
// ecosystem and the manifest; the dependency tree column is left empty
// because manifests do not carry transitive information.
func Packages(deps []Dependency) []packages.Package {
	out := make([]packages.Package, 0, len(deps))
	for _, d := range deps {
		out = append(out, packages.Package{
			Name:        d.Name,
			Version:     d.Version,
			Description: fmt.Sprintf("%s package required by %s", d.Ecosystem, d.Source),
		})
	}
	return out
}
