// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

// Package config handles pkgquery settings: the .pkgquery.yaml file, the
// global config file, a .env file and environment overrides.
package config

import (
	"runtime"
	"time"
)

// FileName is the expected config file name in the working directory.
const FileName = ".pkgquery.yaml"

// Default locations and file name templates.
const (
	DefaultQueryTemplatePath = "./query_templates"
	DefaultCSVBasePath       = "./csv"
	DefaultLogsBasePath      = "./logs"
	DefaultCSVFile           = "{csv_base_path}/{os}_{llm_model}{timestamp_string}{template_alternative}.csv"
	DefaultQueryTemplateFile = "{query_template_path}/{os}_{llm_model}{template_alternative}.tpl"
	DefaultErrorFilePath     = "{logs_base_path}/error-{os}_{llm_model}{timestamp_string}{template_alternative}.log"
)

// Config represents the merged pkgquery settings.
type Config struct {
	Backend string   `yaml:"backend,omitempty"`
	Models  []string `yaml:"models,omitempty"`

	// OS labels the system the package list was taken from. It is only used
	// in file names.
	OS                  string `yaml:"os,omitempty"`
	TemplateAlternative string `yaml:"template_alternative,omitempty"`

	OllamaHost string `yaml:"ollama_host,omitempty"`
	BaseURL    string `yaml:"base_url,omitempty"`

	QueryTemplatePath string `yaml:"query_template_path,omitempty"`
	CSVBasePath       string `yaml:"csv_base_path,omitempty"`
	LogsBasePath      string `yaml:"logs_base_path,omitempty"`
	BasePackageList   string `yaml:"base_package_list,omitempty"`
	CSVFile           string `yaml:"csv_file,omitempty"`
	QueryTemplateFile string `yaml:"query_template_file,omitempty"`
	ErrorFilePath     string `yaml:"error_file_path,omitempty"`

	QueryRestriction int    `yaml:"query_restriction,omitempty"`
	RetryCount       int    `yaml:"retry_count,omitempty"`
	LogIterations    int    `yaml:"log_iterations,omitempty"`
	Backoff          string `yaml:"backoff,omitempty"`
	Timeout          string `yaml:"timeout,omitempty"`
	MaxTokens        int    `yaml:"max_tokens,omitempty"`

	Attributes []string          `yaml:"attributes,omitempty"`
	Aliases    map[string]string `yaml:"aliases,omitempty"`
	// Strategies maps a model name to an extraction strategy name
	// ("braces" or "fenced").
	Strategies map[string]string `yaml:"strategies,omitempty"`

	LocalModelBinary string `yaml:"local_model_binary,omitempty"`
	LocalModelDir    string `yaml:"local_model_dir,omitempty"`

	// API keys come from the environment only and are never written out.
	APIKeys map[string]string `yaml:"-"`
}

// Defaults returns a Config holding the built-in settings.
func Defaults() *Config {
	return &Config{
		OS:                runtime.GOOS,
		QueryTemplatePath: DefaultQueryTemplatePath,
		CSVBasePath:       DefaultCSVBasePath,
		LogsBasePath:      DefaultLogsBasePath,
		CSVFile:           DefaultCSVFile,
		QueryTemplateFile: DefaultQueryTemplateFile,
		ErrorFilePath:     DefaultErrorFilePath,
	}
}

// BackoffDuration parses Backoff. It returns zero when unset.
func (c *Config) BackoffDuration() (time.Duration, error) {
	return parseDuration(c.Backoff)
}

// TimeoutDuration parses Timeout. It returns zero when unset.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	return parseDuration(c.Timeout)
}

// APIKey returns the key stored under the given environment variable name.
func (c *Config) APIKey(envVar string) string {
	return c.APIKeys[envVar]
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
