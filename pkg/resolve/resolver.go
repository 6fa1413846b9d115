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

// Package resolve evaluates interpolation expressions in a parsed document.
//
// Resolution is lazy and memoized: a path is resolved on first access
// within a pass and the result is reused for every later access, so
// resolver functions with side effects run at most once per distinct
// reference. Cycles are detected through the resolution stack and reported
// as CyclicReferenceError. A Resolver is single-use state for one pass; it
// is not safe for concurrent use.
package resolve

import (
	"fmt"
	"strings"

	"github.com/confkit/confkit/pkg/document"
	"github.com/confkit/confkit/pkg/fieldpath"
	"github.com/confkit/confkit/pkg/interp"
)

// maxFixedPointRounds bounds re-interpolation of resolver outputs that
// themselves contain ${...} markers.
const maxFixedPointRounds = 32

// Resolver performs one resolution pass over a document.
type Resolver struct {
	doc *document.Document
	ctx *Context

	// cache memoizes resolved values per canonical path.
	cache map[string]any
	// stack is the in-progress resolution stack, for cycle reporting.
	stack []string
	// inProgress marks paths currently on the stack.
	inProgress map[string]bool
	// calls memoizes resolver invocations per distinct (name, args).
	calls map[string]any
}

// New creates a Resolver for one pass over doc. A nil ctx gets a fresh
// default context. The context's root binding is populated here, before
// any resolver can run.
func New(doc *document.Document, ctx *Context) *Resolver {
	if ctx == nil {
		ctx = NewContext()
	}
	ctx.root = doc.Native()
	return &Resolver{
		doc:        doc,
		ctx:        ctx,
		cache:      make(map[string]any),
		inProgress: make(map[string]bool),
		calls:      make(map[string]any),
	}
}

// Context returns the resolution context for this pass.
func (r *Resolver) Context() *Context {
	return r.ctx
}

// Resolve returns the fully resolved value at a dotted path: every
// interpolation expression in the subtree is replaced by its value.
// Mappings come back as *document.Mapping with key order preserved.
func (r *Resolver) Resolve(path string) (any, error) {
	segments, err := fieldpath.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path %q: %w", path, err)
	}
	return r.resolvePath(fieldpath.Build(segments), segments)
}

// ResolveAll resolves the whole document and returns a fully literal copy,
// top-level keys in source order.
func (r *Resolver) ResolveAll() (*document.Document, error) {
	out := document.NewMapping()
	for _, key := range r.doc.Root().Keys() {
		segments := []fieldpath.Segment{fieldpath.Named(key)}
		value, err := r.resolvePath(fieldpath.Build(segments), segments)
		if err != nil {
			return nil, err
		}
		out.Set(key, value)
	}
	return document.New(out), nil
}

func (r *Resolver) resolvePath(canonical string, segments []fieldpath.Segment) (any, error) {
	if value, ok := r.cache[canonical]; ok {
		return value, nil
	}
	if r.inProgress[canonical] {
		return nil, r.cycleError(canonical)
	}

	raw, done, err := r.lookup(canonical, segments)
	if err != nil {
		return nil, err
	}
	if done {
		r.cache[canonical] = raw
		r.ctx.logger.Debug("resolved path", "path", canonical)
		return raw, nil
	}

	r.inProgress[canonical] = true
	r.stack = append(r.stack, canonical)
	defer func() {
		r.stack = r.stack[:len(r.stack)-1]
		delete(r.inProgress, canonical)
	}()

	value, err := r.resolveValue(canonical, segments, raw)
	if err != nil {
		return nil, err
	}

	r.cache[canonical] = value
	r.ctx.logger.Debug("resolved path", "path", canonical)
	return value, nil
}

// lookup walks the raw document along segments. When the walk reaches an
// interpolated scalar before the path is exhausted, the prefix holding
// that scalar is resolved first and the walk continues on the resolved
// value; the second return is true in that case and the result needs no
// further resolution. A path that cannot be reached either way is an
// UnresolvedReferenceError.
func (r *Resolver) lookup(canonical string, segments []fieldpath.Segment) (any, bool, error) {
	current := any(r.doc.Root())
	for i, segment := range segments {
		if s, ok := current.(string); ok {
			exprs, err := interp.Extract(s)
			if err != nil {
				return nil, false, fmt.Errorf("at %s: %w", fieldpath.Build(segments[:i]), err)
			}
			if len(exprs) == 0 {
				return nil, false, &UnresolvedReferenceError{Path: canonical}
			}
			prefix := segments[:i]
			value, err := r.resolvePath(fieldpath.Build(prefix), prefix)
			if err != nil {
				return nil, false, err
			}
			value, err = walkResolved(canonical, value, segments[i:])
			if err != nil {
				return nil, false, err
			}
			return value, true, nil
		}

		if segment.Index >= 0 {
			seq, ok := current.([]any)
			if !ok || segment.Index >= len(seq) {
				return nil, false, &UnresolvedReferenceError{Path: canonical}
			}
			current = seq[segment.Index]
			continue
		}
		m, ok := current.(*document.Mapping)
		if !ok {
			return nil, false, &UnresolvedReferenceError{Path: canonical}
		}
		value, ok := m.Get(segment.Name)
		if !ok {
			return nil, false, &UnresolvedReferenceError{Path: canonical}
		}
		current = value
	}
	return current, false, nil
}

// walkResolved steps through an already-resolved value, which holds no
// interpolation markers.
func walkResolved(canonical string, value any, segments []fieldpath.Segment) (any, error) {
	current := value
	for _, segment := range segments {
		if segment.Index >= 0 {
			seq, ok := current.([]any)
			if !ok || segment.Index >= len(seq) {
				return nil, &UnresolvedReferenceError{Path: canonical}
			}
			current = seq[segment.Index]
			continue
		}
		m, ok := current.(*document.Mapping)
		if !ok {
			return nil, &UnresolvedReferenceError{Path: canonical}
		}
		v, ok := m.Get(segment.Name)
		if !ok {
			return nil, &UnresolvedReferenceError{Path: canonical}
		}
		current = v
	}
	return current, nil
}

// cycleError slices the resolution stack from the first occurrence of the
// repeated path.
func (r *Resolver) cycleError(path string) error {
	start := 0
	for i, p := range r.stack {
		if p == path {
			start = i
			break
		}
	}
	cycle := append(append([]string{}, r.stack[start:]...), path)
	return &CyclicReferenceError{Cycle: cycle}
}

func (r *Resolver) resolveValue(path string, segments []fieldpath.Segment, raw any) (any, error) {
	switch value := raw.(type) {
	case *document.Mapping:
		out := document.NewMapping()
		for _, key := range value.Keys() {
			childSegments := appendSegment(segments, fieldpath.Named(key))
			child, err := r.resolvePath(fieldpath.Build(childSegments), childSegments)
			if err != nil {
				return nil, err
			}
			out.Set(key, child)
		}
		return out, nil

	case []any:
		out := make([]any, len(value))
		for i := range value {
			childSegments := appendSegment(segments, fieldpath.Indexed(i))
			child, err := r.resolvePath(fieldpath.Build(childSegments), childSegments)
			if err != nil {
				return nil, err
			}
			out[i] = child
		}
		return out, nil

	case string:
		return r.resolveString(path, value, 0)

	default:
		return value, nil
	}
}

// resolveString interpolates a scalar string. Values produced by resolver
// calls may themselves contain markers; those are interpolated again until
// a fixed point.
func (r *Resolver) resolveString(path, s string, round int) (any, error) {
	if round >= maxFixedPointRounds {
		return nil, fmt.Errorf("interpolation at %s did not reach a fixed point", path)
	}

	exprs, err := interp.Extract(s)
	if err != nil {
		return nil, fmt.Errorf("at %s: %w", path, err)
	}
	if len(exprs) == 0 {
		return s, nil
	}

	// Standalone expression: the field takes the referenced value's type.
	if len(exprs) == 1 && len(s) == len(exprs[0].Original)+3 {
		value, err := r.evalExpr(path, exprs[0])
		if err != nil {
			return nil, err
		}
		if nested, ok := value.(string); ok && nested != s {
			return r.resolveString(path, nested, round+1)
		}
		return value, nil
	}

	// String template: each expression is spliced back as text. Only
	// scalar values splice; anything else has no textual form.
	replaced := s
	for _, expr := range exprs {
		value, err := r.evalExpr(path, expr)
		if err != nil {
			return nil, err
		}
		switch value.(type) {
		case nil, string, bool, int, int64, uint64, float64:
		default:
			return nil, fmt.Errorf("at %s: reference %q resolves to a non-scalar value and cannot be spliced into a string template", path, "${"+expr.Original+"}")
		}
		replaced = strings.ReplaceAll(replaced, "${"+expr.Original+"}", fmt.Sprintf("%v", value))
	}
	if replaced != s {
		return r.resolveString(path, replaced, round+1)
	}
	return replaced, nil
}

func (r *Resolver) evalExpr(at string, expr interp.Expr) (any, error) {
	switch expr.Kind {
	case interp.KindPath:
		segments, err := fieldpath.Parse(expr.Path)
		if err != nil {
			return nil, fmt.Errorf("at %s: invalid reference %q: %w", at, expr.Path, err)
		}
		value, err := r.resolvePath(fieldpath.Build(segments), segments)
		if err != nil {
			if ue := AsUnresolvedReferenceError(err); ue != nil && ue.At == "" {
				ue.At = at
			}
			return nil, err
		}
		return value, nil

	case interp.KindResolver:
		return r.call(at, expr)

	default:
		return nil, fmt.Errorf("at %s: unknown expression kind %d", at, expr.Kind)
	}
}

// call invokes a registered resolver, memoizing per distinct (name, args)
// so repeated references share one invocation per pass.
func (r *Resolver) call(at string, expr interp.Expr) (any, error) {
	key := expr.Resolver + ":" + strings.Join(expr.Args, ",")
	if value, ok := r.calls[key]; ok {
		return value, nil
	}

	fn, ok := r.ctx.Resolver(expr.Resolver)
	if !ok {
		return nil, &UnknownResolverError{Name: expr.Resolver, At: at}
	}

	value, err := fn(r.ctx, expr.Args)
	if err != nil {
		return nil, fmt.Errorf("at %s: %w", at, err)
	}

	r.calls[key] = value
	r.ctx.logger.Debug("resolver call", "resolver", expr.Resolver, "args", expr.Args, "at", at)
	return value, nil
}

func appendSegment(segments []fieldpath.Segment, s fieldpath.Segment) []fieldpath.Segment {
	out := make([]fieldpath.Segment, len(segments), len(segments)+1)
	copy(out, segments)
	return append(out, s)
}
