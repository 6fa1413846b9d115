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

// Package graph statically analyzes a parsed document before any
// resolution pass runs: it extracts every interpolation field, links path
// references into a dependency graph, rejects reference cycles, and
// reports references that cannot resolve against the document. Resolver
// calls are runtime-context dependent and are only checked for grammar
// here.
package graph

import (
	"github.com/confkit/confkit/pkg/dag"
	"github.com/confkit/confkit/pkg/document"
	"github.com/confkit/confkit/pkg/fieldpath"
	"github.com/confkit/confkit/pkg/interp"
	"github.com/confkit/confkit/pkg/resolve"
)

// Analysis is the result of statically analyzing one document.
type Analysis struct {
	// Refs are all fields containing interpolation expressions, in source
	// order.
	Refs []interp.FieldRef

	// Targets are the paths of all target mappings, in source order.
	Targets []string

	// MissingRefs are path references that do not exist in the document.
	// Resolution of any of them would fail; lint surfaces them verbatim.
	MissingRefs []string

	graph *dag.DirectedAcyclicGraph[string]
	order []string
}

// TopologicalOrder returns the interpolation fields and their referenced
// paths in an order where every referenced path precedes its referents.
func (a *Analysis) TopologicalOrder() []string {
	out := make([]string, len(a.order))
	copy(out, a.order)
	return out
}

// Dependencies returns the referenced paths a field depends on.
func (a *Analysis) Dependencies(path string) []string {
	return a.graph.Dependencies(path)
}

// Analyze walks the document, builds the reference graph, and fails with a
// *resolve.CyclicReferenceError when references form a cycle as written.
//
// The static graph links a referencing field to the exact path its
// expression names. References that land inside a subtree whose own fields
// carry further expressions are followed transitively at resolution time;
// only cycles between the named paths are detected here, the resolver's
// stack check remains authoritative.
func Analyze(doc *document.Document) (*Analysis, error) {
	refs, _, targets, err := walk(doc.Root(), "")
	if err != nil {
		return nil, err
	}

	g := dag.NewDirectedAcyclicGraph[string]()
	order := 0
	addVertex := func(path string) {
		if _, ok := g.Vertices[path]; !ok {
			_ = g.AddVertex(path, order)
			order++
		}
	}

	analysis := &Analysis{Refs: refs, Targets: targets, graph: g}

	for _, ref := range refs {
		addVertex(ref.Path)
		var deps []string
		for _, expr := range ref.Exprs {
			if expr.Kind != interp.KindPath {
				continue
			}
			canonical, segments, ok := canonicalize(expr.Path)
			if !ok {
				continue
			}
			switch classify(doc, segments) {
			case refMissing:
				analysis.MissingRefs = append(analysis.MissingRefs, expr.Path)
				continue
			case refDynamic:
				// The walk crosses an interpolated scalar; whether the
				// full path exists is only known at resolution time, and
				// the static graph cannot link through it.
				continue
			}
			if canonical == ref.Path {
				return nil, &resolve.CyclicReferenceError{Cycle: []string{ref.Path, ref.Path}}
			}
			addVertex(canonical)
			deps = append(deps, canonical)
		}
		if len(deps) == 0 {
			continue
		}
		if err := g.AddDependencies(ref.Path, deps); err != nil {
			if ce := dag.AsCycleError[string](err); ce != nil {
				return nil, &resolve.CyclicReferenceError{Cycle: ce.Cycle}
			}
			return nil, err
		}
	}

	sorted, err := g.TopologicalSort()
	if err != nil {
		if ce := dag.AsCycleError[string](err); ce != nil {
			return nil, &resolve.CyclicReferenceError{Cycle: ce.Cycle}
		}
		return nil, err
	}
	analysis.order = sorted

	return analysis, nil
}

func canonicalize(path string) (string, []fieldpath.Segment, bool) {
	segments, err := fieldpath.Parse(path)
	if err != nil {
		return "", nil, false
	}
	return fieldpath.Build(segments), segments, true
}

type refState int

const (
	refPresent refState = iota
	refMissing
	refDynamic
)

// classify walks the raw document along a referenced path. A walk that
// lands on an interpolated scalar before the path is exhausted is dynamic:
// the reference resolves through an alias and can only be checked at
// resolution time.
func classify(doc *document.Document, segments []fieldpath.Segment) refState {
	current := any(doc.Root())
	for _, segment := range segments {
		if s, ok := current.(string); ok {
			if exprs, err := interp.Extract(s); err == nil && len(exprs) > 0 {
				return refDynamic
			}
			return refMissing
		}
		if segment.Index >= 0 {
			seq, ok := current.([]any)
			if !ok || segment.Index >= len(seq) {
				return refMissing
			}
			current = seq[segment.Index]
			continue
		}
		m, ok := current.(*document.Mapping)
		if !ok {
			return refMissing
		}
		value, ok := m.Get(segment.Name)
		if !ok {
			return refMissing
		}
		current = value
	}
	return refPresent
}
