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

// Package interp defines the interpolation expression grammar: ${a.b.c}
// references another field of the same document, ${name:arg1,arg2} calls a
// named resolver registered in the resolution context.
package interp

import (
	"fmt"
	"strings"

	"github.com/confkit/confkit/pkg/fieldpath"
)

// Kind distinguishes path references from resolver calls.
type Kind int

const (
	// KindPath is a reference to another field, e.g. ${data.seed}.
	KindPath Kind = iota
	// KindResolver is a call to a registered resolver, e.g. ${stats:mean}.
	KindResolver
)

// Expr is one parsed ${...} expression.
type Expr struct {
	// Original is the expression body without the ${} marker, preserved
	// verbatim for error messages.
	Original string

	Kind Kind

	// Path is the referenced field path (KindPath only).
	Path string

	// Resolver and Args describe the call (KindResolver only). Args are
	// literal strings, split on commas with surrounding whitespace trimmed.
	Resolver string
	Args     []string
}

// FieldRef describes a document field whose scalar value contains one or
// more expressions.
//
// For standalone expressions ("${foo}") Exprs holds one entry and the
// field's resolved value takes the expression's type. For string templates
// ("run-${seed}") each expression is resolved and spliced back as text.
type FieldRef struct {
	// Path is the field's location in the document.
	Path string

	Exprs []Expr

	// Standalone is true when the whole scalar is a single expression.
	Standalone bool
}

// IsStandalone reports whether s is exactly one ${...} expression spanning
// the entire string.
func IsStandalone(s string) bool {
	if !strings.HasPrefix(s, "${") || !strings.HasSuffix(s, "}") {
		return false
	}
	exprs, err := Extract(s)
	if err != nil {
		return false
	}
	return len(exprs) == 1 && len(s) == len(exprs[0].Original)+3
}

// Extract scans a scalar string for ${...} markers and parses each body.
// It returns nil for strings without markers. An expression ends at the
// brace matching its opening marker, so resolver arguments may contain
// balanced braces (CEL map literals, has(...) over map keys). Unterminated
// markers and empty or malformed bodies are errors.
func Extract(s string) ([]Expr, error) {
	var exprs []Expr
	for i := 0; i < len(s); {
		start := strings.Index(s[i:], "${")
		if start < 0 {
			break
		}
		start += i
		end := -1
		depth := 1
		for j := start + 2; j < len(s); j++ {
			switch s[j] {
			case '{':
				depth++
			case '}':
				depth--
			}
			if depth == 0 {
				end = j
				break
			}
		}
		if end < 0 {
			return nil, fmt.Errorf("unterminated ${ marker in %q", s)
		}
		body := s[start+2 : end]
		expr, err := parseBody(body)
		if err != nil {
			return nil, fmt.Errorf("invalid expression %q in %q: %w", body, s, err)
		}
		exprs = append(exprs, expr)
		i = end + 1
	}
	return exprs, nil
}

// parseBody classifies an expression body. Bodies containing a colon are
// resolver calls; everything else must parse as a field path.
func parseBody(body string) (Expr, error) {
	if body == "" {
		return Expr{}, fmt.Errorf("empty expression")
	}

	if name, rawArgs, found := strings.Cut(body, ":"); found {
		name = strings.TrimSpace(name)
		if !validResolverName(name) {
			return Expr{}, fmt.Errorf("invalid resolver name %q", name)
		}
		var args []string
		if strings.TrimSpace(rawArgs) != "" {
			for _, a := range strings.Split(rawArgs, ",") {
				args = append(args, strings.TrimSpace(a))
			}
		}
		return Expr{Original: body, Kind: KindResolver, Resolver: name, Args: args}, nil
	}

	path := strings.TrimSpace(body)
	if _, err := fieldpath.Parse(path); err != nil {
		return Expr{}, err
	}
	return Expr{Original: body, Kind: KindPath, Path: path}, nil
}

func validResolverName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return true
}
