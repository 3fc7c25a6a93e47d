// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

package manifest

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/mod/modfile"
)

func parseGoMod(data []byte) ([]Dependency, error) {
	f, err := modfile.Parse("go.mod", data, nil)
	if err != nil {
		return nil, err
	}

	deps := make([]Dependency, 0, len(f.Require))
	for _, req := range f.Require {
		deps = append(deps, Dependency{
			Ecosystem: EcosystemGo,
			Name:      req.Mod.Path,
			Version:   req.Mod.Version,
			Indirect:  req.Indirect,
		})
	}
	return deps, nil
}

type cargoManifest struct {
	Dependencies map[string]any `toml:"dependencies"`
}

// parseCargo reads [dependencies] in both string (serde = "1.0") and table
// (serde = { version = "1.0" }) form. Path and git dependencies are skipped.
func parseCargo(data []byte) ([]Dependency, error) {
	var m cargoManifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	var deps []Dependency
	for name, val := range m.Dependencies {
		var version string
		switch v := val.(type) {
		case string:
			version = v
		case map[string]any:
			if _, ok := v["path"]; ok {
				continue
			}
			if _, ok := v["git"]; ok {
				continue
			}
			version, _ = v["version"].(string)
		}
		deps = append(deps, Dependency{Ecosystem: EcosystemCrates, Name: name, Version: version})
	}
	return deps, nil
}

type pyprojectFile struct {
	Project struct {
		Dependencies []string `toml:"dependencies"`
	} `toml:"project"`
}

func parsePyproject(data []byte) ([]Dependency, error) {
	var p pyprojectFile
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, err
	}

	var deps []Dependency
	for _, spec := range p.Project.Dependencies {
		if d, ok := parseRequirement(spec); ok {
			deps = append(deps, d)
		}
	}
	return deps, nil
}

// parseRequirements reads a pip requirements file. Options, editable
// installs, URL references and comments are skipped.
func parseRequirements(data []byte) ([]Dependency, error) {
	var deps []Dependency

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if idx := strings.Index(line, " #"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		if strings.Contains(line, "://") {
			continue
		}
		if d, ok := parseRequirement(line); ok {
			deps = append(deps, d)
		}
	}
	return deps, scanner.Err()
}

// parseRequirement splits a PEP 508 requirement into name and the first
// version it mentions. Unversioned requirements are kept with an empty
// version.
func parseRequirement(spec string) (Dependency, bool) {
	if idx := strings.Index(spec, ";"); idx >= 0 {
		spec = spec[:idx]
	}
	spec = strings.TrimSpace(spec)

	name, version := spec, ""
	if idx := strings.IndexAny(spec, "~=!<>"); idx >= 0 {
		name = spec[:idx]
		rest := strings.TrimLeft(spec[idx:], "~=!<>")
		if comma := strings.Index(rest, ","); comma >= 0 {
			rest = rest[:comma]
		}
		version = strings.TrimSpace(strings.TrimRight(rest, ") "))
	}

	if idx := strings.IndexAny(name, "[@("); idx >= 0 {
		name = name[:idx]
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Dependency{}, false
	}
	return Dependency{Ecosystem: EcosystemPyPI, Name: name, Version: version}, true
}
