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

package document

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ToYAML renders the document back to YAML text, mapping keys in source
// order.
func (d *Document) ToYAML() ([]byte, error) {
	node, err := encodeNode(d.root)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(node)
}

// ToJSON renders the document as indented JSON. Mapping key order follows
// encoding/json conventions (sorted), not source order.
func (d *Document) ToJSON() ([]byte, error) {
	return json.MarshalIndent(d.Native(), "", "  ")
}

func encodeNode(v any) (*yaml.Node, error) {
	switch val := v.(type) {
	case *Mapping:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, key := range val.Keys() {
			keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
			child, _ := val.Get(key)
			valNode, err := encodeNode(child)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, keyNode, valNode)
		}
		return node, nil

	case []any:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range val {
			itemNode, err := encodeNode(item)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, itemNode)
		}
		return node, nil

	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil

	default:
		node := &yaml.Node{}
		if err := node.Encode(val); err != nil {
			return nil, fmt.Errorf("encoding scalar %v: %w", val, err)
		}
		return node, nil
	}
}
