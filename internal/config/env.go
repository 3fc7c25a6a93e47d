// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// DotEnvFile is the name of the optional environment file read by Resolve.
const DotEnvFile = ".env"

// APIKeyVars lists the environment variables read as backend credentials.
var APIKeyVars = []string{
	"OPENAI_API_KEY",
	"GEMINI_API_KEY",
	"MISTRAL_API_KEY",
	"ANTHROPIC_API_KEY",
}

// envStrings maps environment variables to the string fields they set.
func envStrings(c *Config) map[string]*string {
	return map[string]*string{
		"OLLAMA_HOST":         &c.OllamaHost,
		"QUERY_TEMPLATE_PATH": &c.QueryTemplatePath,
		"CSV_BASE_PATH":       &c.CSVBasePath,
		"LOGS_BASE_PATH":      &c.LogsBasePath,
		"BASE_PACKAGE_LIST":   &c.BasePackageList,
		"CSV_FILE":            &c.CSVFile,
		"QUERY_TEMPLATE_FILE": &c.QueryTemplateFile,
		"ERROR_FILE_PATH":     &c.ErrorFilePath,
		"LOCAL_MODEL_BINARY":  &c.LocalModelBinary,
		"LOCAL_MODEL_DIR":     &c.LocalModelDir,
	}
}

// LoadDotEnv loads dir/.env into the process environment. Variables that
// are already set keep their value. A missing file is not an error.
func LoadDotEnv(dir string) error {
	path := filepath.Join(dir, DotEnvFile)
	if _, err := FS.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides cfg with values from the environment. lookup is
// usually os.LookupEnv. Empty values are ignored.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	for name, field := range envStrings(cfg) {
		if v, ok := lookup(name); ok && v != "" {
			*field = v
		}
	}

	if v, ok := lookup("QUERY_RESTRICTION"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("QUERY_RESTRICTION: %q is not an integer", v)
		}
		cfg.QueryRestriction = n
	}

	for _, name := range APIKeyVars {
		if v, ok := lookup(name); ok && v != "" {
			if cfg.APIKeys == nil {
				cfg.APIKeys = make(map[string]string)
			}
			cfg.APIKeys[name] = v
		}
	}
	return nil
}

// Resolve builds the effective configuration for dir: built-in defaults,
// then the global file, then dir/.pkgquery.yaml, then the environment
// (after loading dir/.env).
func Resolve(dir string) (*Config, error) {
	if err := LoadDotEnv(dir); err != nil {
		return nil, err
	}

	global, err := LoadGlobal()
	if err != nil {
		return nil, fmt.Errorf("global config: %w", err)
	}
	repo, err := Load(dir)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg := Merge(Merge(Defaults(), global), repo)
	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}
