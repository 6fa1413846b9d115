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

package graph

import (
	"fmt"

	"github.com/confkit/confkit/pkg/construct"
	"github.com/confkit/confkit/pkg/document"
	"github.com/confkit/confkit/pkg/fieldpath"
	"github.com/confkit/confkit/pkg/interp"
)

// walk recursively extracts expression fields, plain field paths, and
// target-mapping paths from a document value. Depth first, mapping keys
// and sequence elements in source order.
func walk(value any, path string) (refs []interp.FieldRef, plain []string, targets []string, err error) {
	switch v := value.(type) {
	case *document.Mapping:
		if construct.IsTargetMapping(v) {
			targets = append(targets, path)
		}
		for _, key := range v.Keys() {
			child, _ := v.Get(key)
			childRefs, childPlain, childTargets, err := walk(child, fieldpath.Join(path, key))
			if err != nil {
				return nil, nil, nil, err
			}
			refs = append(refs, childRefs...)
			plain = append(plain, childPlain...)
			targets = append(targets, childTargets...)
		}

	case []any:
		for i, item := range v {
			itemPath := fmt.Sprintf("%s[%d]", path, i)
			itemRefs, itemPlain, itemTargets, err := walk(item, itemPath)
			if err != nil {
				return nil, nil, nil, err
			}
			refs = append(refs, itemRefs...)
			plain = append(plain, itemPlain...)
			targets = append(targets, itemTargets...)
		}

	case string:
		exprs, err := interp.Extract(v)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("at %s: %w", path, err)
		}
		if len(exprs) == 0 {
			plain = append(plain, path)
			break
		}
		refs = append(refs, interp.FieldRef{
			Path:       path,
			Exprs:      exprs,
			Standalone: interp.IsStandalone(v),
		})

	default:
		plain = append(plain, path)
	}

	return refs, plain, targets, nil
}
