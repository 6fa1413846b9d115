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

// Package fieldpath parses and builds dotted field paths such as
// data.loaders[0].batch_size. Bracket-quoted segments (["a.b"]) address
// mapping keys that contain dots.
package fieldpath

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment is a single step in a field path: either a mapping key (Name,
// Index == -1) or a sequence index (Index >= 0).
type Segment struct {
	Name  string
	Index int
}

// Named returns a segment addressing a mapping key.
func Named(name string) Segment {
	return Segment{Name: name, Index: -1}
}

// Indexed returns a segment addressing a sequence element.
func Indexed(i int) Segment {
	return Segment{Index: i}
}

// Build constructs a field path string from a slice of segments.
//
// Examples:
//   - [{Name: "data"}, {Name: "loaders", Index: 0}] -> data.loaders[0]
//   - [{Name: "data"}, {Name: "my.field"}] -> data["my.field"]
func Build(segments []Segment) string {
	var b strings.Builder

	for i, segment := range segments {
		if segment.Index != -1 {
			b.WriteString(fmt.Sprintf("[%d]", segment.Index))
			continue
		}

		// Use bracket notation for field names with dots or empty names
		if strings.Contains(segment.Name, ".") || segment.Name == "" {
			b.WriteString(fmt.Sprintf(`[%q]`, segment.Name))
		} else {
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(segment.Name)
		}
	}

	return b.String()
}

// Join appends a field name to an existing path string.
func Join(path, name string) string {
	if strings.Contains(name, ".") || name == "" {
		return path + fmt.Sprintf(`[%q]`, name)
	}
	if path == "" {
		return name
	}
	return path + "." + name
}

// Parse splits a field path string into segments.
//
// The grammar accepts identifier segments separated by dots, numeric index
// segments in brackets, and double-quoted key segments in brackets:
//
//	run_types
//	data.train_dataloader_kwargs.batch_size
//	trainer.callbacks[2]._target_
//	stats["per.atom.energy"].mean
func Parse(path string) ([]Segment, error) {
	if path == "" {
		return nil, fmt.Errorf("empty field path")
	}

	var segments []Segment
	i := 0
	expectField := true

	for i < len(path) {
		switch {
		case path[i] == '.':
			if expectField {
				return nil, fmt.Errorf("unexpected '.' at position %d in %q", i, path)
			}
			expectField = true
			i++

		case path[i] == '[':
			end := strings.IndexByte(path[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("unterminated '[' at position %d in %q", i, path)
			}
			inner := path[i+1 : i+end]
			if strings.HasPrefix(inner, `"`) {
				key, err := strconv.Unquote(inner)
				if err != nil {
					return nil, fmt.Errorf("invalid quoted key %s in %q: %w", inner, path, err)
				}
				segments = append(segments, Named(key))
			} else {
				idx, err := strconv.Atoi(inner)
				if err != nil || idx < 0 {
					return nil, fmt.Errorf("invalid index %q in %q", inner, path)
				}
				segments = append(segments, Indexed(idx))
			}
			expectField = false
			i += end + 1

		default:
			if !expectField {
				return nil, fmt.Errorf("expected '.' or '[' at position %d in %q", i, path)
			}
			j := i
			for j < len(path) && path[j] != '.' && path[j] != '[' {
				j++
			}
			name := path[i:j]
			if !validIdentifier(name) {
				return nil, fmt.Errorf("invalid field name %q in %q", name, path)
			}
			segments = append(segments, Named(name))
			expectField = false
			i = j
		}
	}

	if expectField {
		return nil, fmt.Errorf("trailing '.' in %q", path)
	}
	return segments, nil
}

func validIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '-':
		default:
			return false
		}
	}
	return true
}
