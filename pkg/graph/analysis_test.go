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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confkit/confkit/pkg/document"
	"github.com/confkit/confkit/pkg/resolve"
)

func analyzeSource(t *testing.T, src string) (*Analysis, error) {
	t.Helper()
	doc, err := document.Parse([]byte(src))
	require.NoError(t, err)
	return Analyze(doc)
}

func TestAnalyzeCollectsRefs(t *testing.T) {
	analysis, err := analyzeSource(t, `
seed: 42
name: aspirin
run_name: ${name}-${seed}
trainer:
  seed: ${seed}
`)
	require.NoError(t, err)

	var paths []string
	for _, ref := range analysis.Refs {
		paths = append(paths, ref.Path)
	}
	assert.Equal(t, []string{"run_name", "trainer.seed"}, paths)

	assert.False(t, analysis.Refs[0].Standalone)
	assert.True(t, analysis.Refs[1].Standalone)
	assert.Equal(t, []string{"name", "seed"}, analysis.Dependencies("run_name"))
}

func TestAnalyzeCollectsTargets(t *testing.T) {
	analysis, err := analyzeSource(t, `
model:
  _target_: models.MACE
  readout:
    _target_: models.Readout
trainer:
  callbacks:
    - _target_: callbacks.Checkpoint
`)
	require.NoError(t, err)
	assert.Equal(t, []string{"model", "model.readout", "trainer.callbacks[0]"}, analysis.Targets)
}

func TestAnalyzeMissingRefs(t *testing.T) {
	analysis, err := analyzeSource(t, `
a: ${missing.path}
b: ${a}
`)
	require.NoError(t, err, "missing references are reported, not fatal")
	assert.Equal(t, []string{"missing.path"}, analysis.MissingRefs)
}

func TestAnalyzeSubpathThroughAlias(t *testing.T) {
	analysis, err := analyzeSource(t, `
data:
  val_dataloader_kwargs:
    batch_size: 32
  test_dataloader_kwargs: ${data.val_dataloader_kwargs}
x: ${data.test_dataloader_kwargs.batch_size}
`)
	require.NoError(t, err, "a reference through an alias is resolvable, not a defect")
	assert.Empty(t, analysis.MissingRefs)

	// The walk crosses an interpolated scalar, so the reference cannot be
	// linked statically.
	assert.Empty(t, analysis.Dependencies("x"))
}

func TestAnalyzeRefThroughPlainScalarIsMissing(t *testing.T) {
	analysis, err := analyzeSource(t, `
a: 1
b: ${a.deeper}
`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.deeper"}, analysis.MissingRefs)
}

func TestAnalyzeCycle(t *testing.T) {
	_, err := analyzeSource(t, `
p: ${q}
q: ${p}
`)
	require.Error(t, err)
	ce := resolve.AsCyclicReferenceError(err)
	require.NotNil(t, ce, "expected CyclicReferenceError, got %T %v", err, err)
	assert.Contains(t, ce.Cycle, "p")
	assert.Contains(t, ce.Cycle, "q")
}

func TestAnalyzeSelfReference(t *testing.T) {
	_, err := analyzeSource(t, `
x: ${x}
`)
	require.Error(t, err)
	ce := resolve.AsCyclicReferenceError(err)
	require.NotNil(t, ce)
	assert.Equal(t, []string{"x", "x"}, ce.Cycle)
}

func TestAnalyzeTopologicalOrder(t *testing.T) {
	analysis, err := analyzeSource(t, `
a: ${b}
b: ${c}
c: 1
`)
	require.NoError(t, err)

	order := analysis.TopologicalOrder()
	pos := make(map[string]int, len(order))
	for i, p := range order {
		pos[p] = i
	}
	assert.Less(t, pos["c"], pos["b"])
	assert.Less(t, pos["b"], pos["a"])
}

func TestAnalyzeResolverCallsAreNotEdges(t *testing.T) {
	analysis, err := analyzeSource(t, `
shift: ${stats:mean}
mode: ${env:RUN_MODE,offline}
`)
	require.NoError(t, err)
	require.Len(t, analysis.Refs, 2)
	assert.Empty(t, analysis.Dependencies("shift"))
	assert.Empty(t, analysis.MissingRefs)
}

func TestAnalyzeMalformedExpression(t *testing.T) {
	_, err := analyzeSource(t, `
bad: ${unclosed
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
}

func TestAnalyzeLiteralDocument(t *testing.T) {
	analysis, err := analyzeSource(t, `
run: [train]
seed: 42
`)
	require.NoError(t, err)
	assert.Empty(t, analysis.Refs)
	assert.Empty(t, analysis.Targets)
	assert.Empty(t, analysis.MissingRefs)
}
