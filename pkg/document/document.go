// Copyright 2026 The confkit Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package document parses hierarchical configuration text into an in-memory
// tree and provides path-based access to it. The tree preserves mapping key
// order and sequence order exactly as written. Scalars are string, int64,
// float64, bool, or nil.
package document

import (
	"fmt"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/confkit/confkit/pkg/fieldpath"
)

// Document is the root of a parsed configuration tree. The root node is
// always a mapping.
type Document struct {
	root *Mapping
}

// New wraps an existing mapping as a document root. A nil mapping yields an
// empty document.
func New(root *Mapping) *Document {
	if root == nil {
		root = NewMapping()
	}
	return &Document{root: root}
}

// Root returns the root mapping. Mutating it mutates the document.
func (d *Document) Root() *Mapping {
	return d.root
}

// DeepCopy returns a structurally independent copy of the document.
func (d *Document) DeepCopy() *Document {
	return &Document{root: d.root.DeepCopy()}
}

// Native returns the document as plain Go values (map[string]any, []any,
// scalars). Mapping key order is lost.
func (d *Document) Native() map[string]any {
	return d.root.Native()
}

var yamlLineRE = regexp.MustCompile(`(?:^|\s)line (\d+):\s*(.*)`)

// Parse decodes configuration text into a Document. Malformed structure,
// non-mapping roots, and duplicate mapping keys yield a *SyntaxError.
func Parse(data []byte) (*Document, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		if m := yamlLineRE.FindStringSubmatch(err.Error()); m != nil {
			line, _ := strconv.Atoi(m[1])
			return nil, &SyntaxError{Line: line, Msg: m[2]}
		}
		return nil, &SyntaxError{Msg: err.Error()}
	}

	if node.Kind == 0 || len(node.Content) == 0 {
		// Empty input parses to an empty document.
		return New(nil), nil
	}

	root, err := decodeNode(node.Content[0])
	if err != nil {
		return nil, err
	}
	mapping, ok := root.(*Mapping)
	if !ok {
		return nil, &SyntaxError{
			Line:   node.Content[0].Line,
			Column: node.Content[0].Column,
			Msg:    "document root must be a mapping",
		}
	}
	return New(mapping), nil
}

func decodeNode(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.MappingNode:
		m := NewMapping()
		for i := 0; i < len(node.Content); i += 2 {
			keyNode, valNode := node.Content[i], node.Content[i+1]
			var key string
			if err := keyNode.Decode(&key); err != nil {
				return nil, &SyntaxError{
					Line:   keyNode.Line,
					Column: keyNode.Column,
					Msg:    "mapping key must be a string scalar",
				}
			}
			if _, exists := m.Get(key); exists {
				return nil, &SyntaxError{
					Line:   keyNode.Line,
					Column: keyNode.Column,
					Msg:    fmt.Sprintf("duplicate mapping key %q", key),
				}
			}
			val, err := decodeNode(valNode)
			if err != nil {
				return nil, err
			}
			m.Set(key, val)
		}
		return m, nil

	case yaml.SequenceNode:
		seq := make([]any, 0, len(node.Content))
		for _, item := range node.Content {
			val, err := decodeNode(item)
			if err != nil {
				return nil, err
			}
			seq = append(seq, val)
		}
		return seq, nil

	case yaml.ScalarNode:
		return decodeScalar(node)

	case yaml.AliasNode:
		// Anchors and aliases are expanded structurally at parse time.
		return decodeNode(node.Alias)

	default:
		return nil, &SyntaxError{
			Line:   node.Line,
			Column: node.Column,
			Msg:    fmt.Sprintf("unsupported node kind %d", node.Kind),
		}
	}
}

func decodeScalar(node *yaml.Node) (any, error) {
	switch node.Tag {
	case "!!null":
		return nil, nil
	case "!!bool":
		var v bool
		if err := node.Decode(&v); err != nil {
			return nil, scalarError(node, err)
		}
		return v, nil
	case "!!int":
		var v int64
		if err := node.Decode(&v); err != nil {
			return nil, scalarError(node, err)
		}
		return v, nil
	case "!!float":
		var v float64
		if err := node.Decode(&v); err != nil {
			return nil, scalarError(node, err)
		}
		return v, nil
	default:
		var v string
		if err := node.Decode(&v); err != nil {
			return nil, scalarError(node, err)
		}
		return v, nil
	}
}

func scalarError(node *yaml.Node, err error) error {
	return &SyntaxError{Line: node.Line, Column: node.Column, Msg: err.Error()}
}

// ValueAt retrieves the value at a dotted field path. Missing keys and
// out-of-range indexes wrap ErrNotFound; traversal through a scalar is a
// plain error.
func (d *Document) ValueAt(path string) (any, error) {
	segments, err := fieldpath.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path %q: %w", path, err)
	}
	return d.ValueAtSegments(segments)
}

// ValueAtSegments is ValueAt for a pre-parsed path.
func (d *Document) ValueAtSegments(segments []fieldpath.Segment) (any, error) {
	current := any(d.root)
	for i, segment := range segments {
		at := fieldpath.Build(segments[:i+1])
		if segment.Index >= 0 {
			seq, ok := current.([]any)
			if !ok {
				return nil, fmt.Errorf("%s: expected a sequence, got %T", at, current)
			}
			if segment.Index >= len(seq) {
				return nil, fmt.Errorf("%s: index out of range: %w", at, ErrNotFound)
			}
			current = seq[segment.Index]
			continue
		}
		m, ok := current.(*Mapping)
		if !ok {
			return nil, fmt.Errorf("%s: expected a mapping, got %T", at, current)
		}
		value, ok := m.Get(segment.Name)
		if !ok {
			return nil, fmt.Errorf("%s: %w", at, ErrNotFound)
		}
		current = value
	}
	return current, nil
}

// SetValueAt stores a value at a dotted field path, creating intermediate
// mappings as needed. Sequences are extended with nils when the index is
// past the current end.
func (d *Document) SetValueAt(path string, value any) error {
	segments, err := fieldpath.Parse(path)
	if err != nil {
		return fmt.Errorf("invalid path %q: %w", path, err)
	}

	var parentSeq []any
	var parentMap *Mapping
	var parentKey string
	current := any(d.root)

	for i, segment := range segments {
		last := i == len(segments)-1

		if segment.Index >= 0 {
			seq, ok := current.([]any)
			if !ok {
				return fmt.Errorf("%s: expected a sequence, got %T", fieldpath.Build(segments[:i+1]), current)
			}
			if segment.Index >= len(seq) {
				grown := make([]any, segment.Index+1)
				copy(grown, seq)
				seq = grown
				if parentMap != nil {
					parentMap.Set(parentKey, seq)
				} else if parentSeq != nil {
					// parent index was recorded one level up
					parentSeq[segments[i-1].Index] = seq
				}
			}
			if last {
				seq[segment.Index] = value
				return nil
			}
			if seq[segment.Index] == nil {
				seq[segment.Index] = containerFor(segments[i+1])
			}
			parentSeq, parentMap = seq, nil
			current = seq[segment.Index]
			continue
		}

		m, ok := current.(*Mapping)
		if !ok {
			return fmt.Errorf("%s: expected a mapping, got %T", fieldpath.Build(segments[:i+1]), current)
		}
		if last {
			m.Set(segment.Name, value)
			return nil
		}
		next, ok := m.Get(segment.Name)
		if !ok || next == nil {
			next = containerFor(segments[i+1])
			m.Set(segment.Name, next)
		}
		parentMap, parentKey, parentSeq = m, segment.Name, nil
		current = next
	}
	return nil
}

func containerFor(next fieldpath.Segment) any {
	if next.Index >= 0 {
		return make([]any, 0)
	}
	return NewMapping()
}
