// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

package normalize

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/davetashner/pkgquery/internal/schema"
)

// decodeLiteral decodes a loosely typed object literal. The text is read as a
// YAML flow mapping, which accepts strict JSON as well as single-quoted keys
// and strings and unquoted True/False. A repeated key keeps its last value.
func decodeLiteral(s string) (map[string]any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(s), &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, errors.New("reply is not an object")
	}
	return mappingValue(doc.Content[0])
}

func mappingValue(n *yaml.Node) (map[string]any, error) {
	rec := make(map[string]any, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		key := k.Value
		if k.Kind != yaml.ScalarNode {
			var raw any
			if err := k.Decode(&raw); err != nil {
				return nil, err
			}
			key = fmt.Sprint(raw)
		}
		val, err := nodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		rec[key] = val
	}
	return rec, nil
}

func nodeValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.MappingNode:
		return mappingValue(n)
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := nodeValue(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.AliasNode:
		return nodeValue(n.Alias)
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// normalizeKeys lower-cases every key and removes whitespace inside it. When
// two keys collapse to the same name the later one in iteration order wins.
func normalizeKeys(rec map[string]any) map[string]any {
	out := make(map[string]any, len(rec))
	for k, v := range rec {
		out[schema.Key(k)] = v
	}
	return out
}
