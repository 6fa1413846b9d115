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

package construct

import (
	"fmt"
	"sort"
)

// Factory builds one object kind from named arguments.
type Factory struct {
	// New constructs the object. Argument values are plain Go values:
	// map[string]any, []any, scalars, or objects constructed from nested
	// target mappings.
	New func(args map[string]any) (any, error)

	// Required lists argument names that must be present. The factory may
	// apply defaults for anything not listed here.
	Required []string
}

// Registry maps constructor names to factories. The set of constructible
// types is injected by the embedding application; nothing is looked up
// ambiently.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under name. Duplicate names and nil constructors
// are rejected.
func (r *Registry) Register(name string, factory Factory) error {
	if name == "" {
		return fmt.Errorf("factory name must not be empty")
	}
	if factory.New == nil {
		return fmt.Errorf("factory %q has no constructor", name)
	}
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("factory %q is already registered", name)
	}
	r.factories[name] = factory
	return nil
}

// MustRegister is Register that panics on error, for init-time wiring.
func (r *Registry) MustRegister(name string, factory Factory) {
	if err := r.Register(name, factory); err != nil {
		panic(err)
	}
}

// Lookup returns the factory registered under name.
func (r *Registry) Lookup(name string) (Factory, bool) {
	f, ok := r.factories[name]
	return f, ok
}

// Names returns all registered names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
