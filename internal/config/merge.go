// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

package config

import "maps"

// Merge overlays over onto base and returns the result. Non-zero fields of
// over win; maps are merged key by key. Neither input is modified.
func Merge(base, over *Config) *Config {
	result := *base
	result.Models = append([]string(nil), base.Models...)
	result.Attributes = append([]string(nil), base.Attributes...)
	result.Aliases = maps.Clone(base.Aliases)
	result.Strategies = maps.Clone(base.Strategies)
	result.APIKeys = maps.Clone(base.APIKeys)

	setString(&result.Backend, over.Backend)
	setString(&result.OS, over.OS)
	setString(&result.TemplateAlternative, over.TemplateAlternative)
	setString(&result.OllamaHost, over.OllamaHost)
	setString(&result.BaseURL, over.BaseURL)
	setString(&result.QueryTemplatePath, over.QueryTemplatePath)
	setString(&result.CSVBasePath, over.CSVBasePath)
	setString(&result.LogsBasePath, over.LogsBasePath)
	setString(&result.BasePackageList, over.BasePackageList)
	setString(&result.CSVFile, over.CSVFile)
	setString(&result.QueryTemplateFile, over.QueryTemplateFile)
	setString(&result.ErrorFilePath, over.ErrorFilePath)
	setString(&result.Backoff, over.Backoff)
	setString(&result.Timeout, over.Timeout)
	setString(&result.LocalModelBinary, over.LocalModelBinary)
	setString(&result.LocalModelDir, over.LocalModelDir)

	setInt(&result.QueryRestriction, over.QueryRestriction)
	setInt(&result.RetryCount, over.RetryCount)
	setInt(&result.LogIterations, over.LogIterations)
	setInt(&result.MaxTokens, over.MaxTokens)

	if len(over.Models) > 0 {
		result.Models = append([]string(nil), over.Models...)
	}
	if len(over.Attributes) > 0 {
		result.Attributes = append([]string(nil), over.Attributes...)
	}
	result.Aliases = mergeMap(result.Aliases, over.Aliases)
	result.Strategies = mergeMap(result.Strategies, over.Strategies)
	result.APIKeys = mergeMap(result.APIKeys, over.APIKeys)

	return &result
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func mergeMap(dst, src map[string]string) map[string]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	maps.Copy(dst, src)
	return dst
}
