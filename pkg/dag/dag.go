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

// Package dag provides a directed acyclic graph with deterministic
// topological ordering. Vertices carry an insertion order; the sort keeps
// that order wherever dependencies permit.
package dag

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// Vertex is a node in the graph.
type Vertex[T cmp.Ordered] struct {
	// ID uniquely identifies the vertex.
	ID T
	// Order is the insertion order, used to keep the topological sort
	// stable with respect to the source.
	Order int
	// DependsOn is the set of vertex IDs this vertex depends on.
	DependsOn map[T]struct{}
}

// DirectedAcyclicGraph rejects edges that would introduce a cycle at
// insertion time.
type DirectedAcyclicGraph[T cmp.Ordered] struct {
	Vertices map[T]*Vertex[T]
}

// NewDirectedAcyclicGraph creates an empty graph.
func NewDirectedAcyclicGraph[T cmp.Ordered]() *DirectedAcyclicGraph[T] {
	return &DirectedAcyclicGraph[T]{
		Vertices: make(map[T]*Vertex[T]),
	}
}

// CycleError is returned when an operation would create or encounters a
// cycle.
type CycleError[T cmp.Ordered] struct {
	// Cycle lists the vertex IDs forming the cycle, first repeated last.
	Cycle []T
}

func (e *CycleError[T]) Error() string {
	return fmt.Sprintf("graph contains a cycle: %v", e.Cycle)
}

// AsCycleError returns the *CycleError in err's chain, or nil.
func AsCycleError[T cmp.Ordered](err error) *CycleError[T] {
	var ce *CycleError[T]
	if errors.As(err, &ce) {
		return ce
	}
	return nil
}

// AddVertex adds a vertex to the graph. Duplicate IDs are rejected.
func (d *DirectedAcyclicGraph[T]) AddVertex(id T, order int) error {
	if _, exists := d.Vertices[id]; exists {
		return fmt.Errorf("vertex %v already exists", id)
	}
	d.Vertices[id] = &Vertex[T]{
		ID:        id,
		Order:     order,
		DependsOn: make(map[T]struct{}),
	}
	return nil
}

// AddDependencies records that `from` depends on each vertex in `deps`.
// Unknown vertices, self references, and edges that would close a cycle
// are rejected; on rejection the graph is left unchanged.
func (d *DirectedAcyclicGraph[T]) AddDependencies(from T, deps []T) error {
	fromVertex, ok := d.Vertices[from]
	if !ok {
		return fmt.Errorf("vertex %v does not exist", from)
	}

	added := make([]T, 0, len(deps))
	rollback := func() {
		for _, dep := range added {
			delete(fromVertex.DependsOn, dep)
		}
	}

	for _, dep := range deps {
		if dep == from {
			rollback()
			return fmt.Errorf("vertex %v cannot depend on itself", from)
		}
		if _, ok := d.Vertices[dep]; !ok {
			rollback()
			return fmt.Errorf("dependency %v of vertex %v does not exist", dep, from)
		}
		if _, ok := fromVertex.DependsOn[dep]; ok {
			continue
		}
		fromVertex.DependsOn[dep] = struct{}{}
		added = append(added, dep)
	}

	if cyclic, cycle := d.hasCycle(); cyclic {
		rollback()
		return &CycleError[T]{Cycle: cycle}
	}
	return nil
}

// Dependencies returns the dependency IDs of a vertex, sorted.
func (d *DirectedAcyclicGraph[T]) Dependencies(id T) []T {
	vertex, ok := d.Vertices[id]
	if !ok {
		return nil
	}
	deps := make([]T, 0, len(vertex.DependsOn))
	for dep := range vertex.DependsOn {
		deps = append(deps, dep)
	}
	slices.Sort(deps)
	return deps
}

// orderedIDs returns all vertex IDs sorted by insertion order.
func (d *DirectedAcyclicGraph[T]) orderedIDs() []T {
	ids := make([]T, 0, len(d.Vertices))
	for id := range d.Vertices {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b T) int {
		return d.Vertices[a].Order - d.Vertices[b].Order
	})
	return ids
}

// TopologicalSort returns the vertices ordered so that every vertex appears
// after all its dependencies. Among vertices whose dependencies are already
// emitted, insertion order is kept. Returns a CycleError if the graph
// contains a cycle.
func (d *DirectedAcyclicGraph[T]) TopologicalSort() ([]T, error) {
	ids := d.orderedIDs()
	emitted := make(map[T]bool, len(ids))
	order := make([]T, 0, len(ids))

	// Repeated in-order sweeps: each sweep emits every vertex whose
	// dependencies are satisfied, including by earlier emissions within
	// the same sweep. A sweep without progress means a cycle remains.
	for len(order) < len(ids) {
		progress := false
		for _, id := range ids {
			if emitted[id] {
				continue
			}
			ready := true
			for dep := range d.Vertices[id].DependsOn {
				if !emitted[dep] {
					ready = false
					break
				}
			}
			if ready {
				emitted[id] = true
				order = append(order, id)
				progress = true
			}
		}
		if !progress {
			_, cycle := d.hasCycle()
			return nil, &CycleError[T]{Cycle: cycle}
		}
	}
	return order, nil
}

// TopologicalSortLevels groups vertices into levels: every vertex's
// dependencies live in strictly earlier levels, and vertices within a level
// keep insertion order.
func (d *DirectedAcyclicGraph[T]) TopologicalSortLevels() ([][]T, error) {
	if cyclic, cycle := d.hasCycle(); cyclic {
		return nil, &CycleError[T]{Cycle: cycle}
	}

	depth := make(map[T]int, len(d.Vertices))
	var levelOf func(id T) int
	levelOf = func(id T) int {
		if l, ok := depth[id]; ok {
			return l
		}
		level := 0
		for dep := range d.Vertices[id].DependsOn {
			if l := levelOf(dep) + 1; l > level {
				level = l
			}
		}
		depth[id] = level
		return level
	}

	maxLevel := 0
	for _, id := range d.orderedIDs() {
		if l := levelOf(id); l > maxLevel {
			maxLevel = l
		}
	}

	levels := make([][]T, maxLevel+1)
	for _, id := range d.orderedIDs() {
		l := depth[id]
		levels[l] = append(levels[l], id)
	}
	return levels, nil
}

// hasCycle reports whether the graph contains a cycle, returning one such
// cycle when it does.
func (d *DirectedAcyclicGraph[T]) hasCycle() (bool, []T) {
	const (
		white = iota // unvisited
		gray         // on the current DFS stack
		black        // fully explored
	)
	colors := make(map[T]int, len(d.Vertices))
	var stack []T
	var cycle []T

	var visit func(id T) bool
	visit = func(id T) bool {
		colors[id] = gray
		stack = append(stack, id)
		for dep := range d.Vertices[id].DependsOn {
			switch colors[dep] {
			case gray:
				// Found it: slice the stack from the first occurrence.
				start := 0
				for i, v := range stack {
					if v == dep {
						start = i
						break
					}
				}
				cycle = append(append([]T{}, stack[start:]...), dep)
				return true
			case white:
				if visit(dep) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		colors[id] = black
		return false
	}

	for _, id := range d.orderedIDs() {
		if colors[id] == white {
			if visit(id) {
				return true, cycle
			}
		}
	}
	return false, nil
}
