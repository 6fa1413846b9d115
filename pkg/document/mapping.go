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

// Mapping is an ordered string-keyed mapping node. Key order is the order
// the keys appeared in the source text; it is preserved through copies and
// re-rendering. Values are *Mapping, []any, or scalars.
type Mapping struct {
	keys   []string
	values map[string]any
}

// NewMapping returns an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{values: make(map[string]any)}
}

// Set stores a value under key. New keys are appended after existing ones;
// setting an existing key keeps its position.
func (m *Mapping) Set(key string, value any) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value for key and whether it is present.
func (m *Mapping) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Delete removes key from the mapping, preserving the order of the rest.
func (m *Mapping) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in source order. The returned slice is a copy.
func (m *Mapping) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of entries.
func (m *Mapping) Len() int {
	return len(m.keys)
}

// DeepCopy returns a structurally independent copy of the mapping.
func (m *Mapping) DeepCopy() *Mapping {
	out := NewMapping()
	for _, k := range m.keys {
		out.Set(k, deepCopyValue(m.values[k]))
	}
	return out
}

// Native converts the mapping and everything under it into plain Go values:
// map[string]any, []any and scalars. Key order is not representable in the
// result; callers that need order keep the *Mapping.
func (m *Mapping) Native() map[string]any {
	out := make(map[string]any, len(m.keys))
	for _, k := range m.keys {
		out[k] = nativeValue(m.values[k])
	}
	return out
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case *Mapping:
		return val.DeepCopy()
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return val
	}
}

func nativeValue(v any) any {
	switch val := v.(type) {
	case *Mapping:
		return val.Native()
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = nativeValue(item)
		}
		return out
	default:
		return val
	}
}

// DeepEqual reports structural equality of two document values. Mappings
// compare by key set and per-key value; key order does not affect equality.
func DeepEqual(a, b any) bool {
	switch av := a.(type) {
	case *Mapping:
		bv, ok := b.(*Mapping)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		for _, k := range av.keys {
			bval, ok := bv.Get(k)
			if !ok || !DeepEqual(av.values[k], bval) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !DeepEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
