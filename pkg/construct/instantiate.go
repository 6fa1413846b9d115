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

// Package construct builds object graphs from resolved documents. A
// mapping containing the reserved _target_ key names a constructor from an
// injected registry; its sibling keys become named arguments. Nested
// targets are constructed bottom-up, children before parents, siblings in
// written order.
package construct

import (
	"fmt"
	"slices"

	"github.com/confkit/confkit/pkg/document"
	"github.com/confkit/confkit/pkg/fieldpath"
	"github.com/confkit/confkit/pkg/resolve"
)

// TargetKey is the reserved mapping key naming the constructor.
const TargetKey = "_target_"

// Instantiator walks resolved subtrees and constructs target mappings.
// Like a Resolver, it holds state for one pass and is not safe for
// concurrent use.
type Instantiator struct {
	registry *Registry
	resolver *resolve.Resolver

	// constructed memoizes by resolved mapping identity: when
	// interpolation aliases two paths to the very same subtree, the
	// target is constructed once and the object is shared. Two
	// structurally identical but distinct mappings still construct two
	// distinct objects.
	constructed map[*document.Mapping]any
}

// NewInstantiator pairs a constructor registry with a resolution pass.
func NewInstantiator(registry *Registry, resolver *resolve.Resolver) *Instantiator {
	return &Instantiator{
		registry:    registry,
		resolver:    resolver,
		constructed: make(map[*document.Mapping]any),
	}
}

// Instantiate resolves the subtree at path and constructs every target
// mapping inside it, depth-first. Plain mappings come back as
// map[string]any, sequences as []any, scalars as themselves.
func (in *Instantiator) Instantiate(path string) (any, error) {
	resolved, err := in.resolver.Resolve(path)
	if err != nil {
		return nil, err
	}
	return in.instantiateValue(path, resolved)
}

// InstantiateAll resolves and instantiates the whole document, returning
// top-level keys mapped to their constructed or literal values.
func (in *Instantiator) InstantiateAll() (map[string]any, error) {
	doc, err := in.resolver.ResolveAll()
	if err != nil {
		return nil, err
	}

	out := make(map[string]any, doc.Root().Len())
	for _, key := range doc.Root().Keys() {
		value, _ := doc.Root().Get(key)
		built, err := in.instantiateValue(fieldpath.Join("", key), value)
		if err != nil {
			return nil, err
		}
		out[key] = built
	}
	return out, nil
}

func (in *Instantiator) instantiateValue(path string, value any) (any, error) {
	switch v := value.(type) {
	case *document.Mapping:
		if _, ok := v.Get(TargetKey); ok {
			return in.instantiateTarget(path, v)
		}
		out := make(map[string]any, v.Len())
		for _, key := range v.Keys() {
			child, _ := v.Get(key)
			built, err := in.instantiateValue(fieldpath.Join(path, key), child)
			if err != nil {
				return nil, err
			}
			out[key] = built
		}
		return out, nil

	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			built, err := in.instantiateValue(fmt.Sprintf("%s[%d]", path, i), item)
			if err != nil {
				return nil, err
			}
			out[i] = built
		}
		return out, nil

	default:
		return value, nil
	}
}

// instantiateTarget constructs one target mapping: siblings first, in
// written order, then the constructor.
func (in *Instantiator) instantiateTarget(path string, m *document.Mapping) (any, error) {
	if obj, ok := in.constructed[m]; ok {
		return obj, nil
	}

	rawName, _ := m.Get(TargetKey)
	name, ok := rawName.(string)
	if !ok {
		return nil, fmt.Errorf("%s: %s must be a string, got %T", path, TargetKey, rawName)
	}

	factory, ok := in.registry.Lookup(name)
	if !ok {
		return nil, &UnknownTargetError{Name: name, Path: path}
	}

	args := make(map[string]any, m.Len()-1)
	for _, key := range m.Keys() {
		if key == TargetKey {
			continue
		}
		child, _ := m.Get(key)
		built, err := in.instantiateValue(fieldpath.Join(path, key), child)
		if err != nil {
			return nil, err
		}
		args[key] = built
	}

	for _, required := range factory.Required {
		if _, ok := args[required]; !ok {
			return nil, &MissingArgumentError{Target: name, Argument: required, Path: path}
		}
	}

	obj, err := in.construct(name, path, factory, args)
	if err != nil {
		return nil, err
	}

	in.constructed[m] = obj
	return obj, nil
}

// construct invokes the factory, converting panics into ConstructionError.
func (in *Instantiator) construct(name, path string, factory Factory, args map[string]any) (obj any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &ConstructionError{Target: name, Path: path, Err: fmt.Errorf("panic: %v", rec)}
		}
	}()

	obj, err = factory.New(args)
	if err != nil {
		return nil, &ConstructionError{Target: name, Path: path, Err: err}
	}
	return obj, nil
}

// IsTargetMapping reports whether a document value is a target mapping.
func IsTargetMapping(v any) bool {
	m, ok := v.(*document.Mapping)
	if !ok {
		return false
	}
	_, ok = m.Get(TargetKey)
	return ok
}

// ArgKeys returns a target mapping's argument keys in written order,
// excluding the reserved key.
func ArgKeys(m *document.Mapping) []string {
	keys := slices.DeleteFunc(m.Keys(), func(k string) bool { return k == TargetKey })
	return keys
}
