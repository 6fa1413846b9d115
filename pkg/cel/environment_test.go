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

package cel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultEnvironment(t *testing.T) {
	env, err := DefaultEnvironment()
	require.NoError(t, err)
	require.NotNil(t, env)

	v, err := Eval(env, `"a" + "b"`, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "ab", v)
}

func TestEvalWithVariables(t *testing.T) {
	env, err := DefaultEnvironment(WithVariables("root", "stats"))
	require.NoError(t, err)

	grid := []struct {
		Expression string
		Bindings   map[string]any
		Want       any
	}{
		{
			Expression: "root.batch_size * 2",
			Bindings:   map[string]any{"root": map[string]any{"batch_size": int64(16)}, "stats": map[string]any{}},
			Want:       int64(32),
		},
		{
			Expression: "stats.mean + 1.0",
			Bindings:   map[string]any{"root": map[string]any{}, "stats": map[string]any{"mean": -1.5}},
			Want:       -0.5,
		},
		{
			Expression: `root.name.upperAscii()`,
			Bindings:   map[string]any{"root": map[string]any{"name": "aspirin"}, "stats": map[string]any{}},
			Want:       "ASPIRIN",
		},
		{
			Expression: `"size" in root ? root.size : 64`,
			Bindings:   map[string]any{"root": map[string]any{}, "stats": map[string]any{}},
			Want:       int64(64),
		},
	}

	for _, g := range grid {
		t.Run(g.Expression, func(t *testing.T) {
			v, err := Eval(env, g.Expression, g.Bindings)
			require.NoError(t, err)
			assert.Equal(t, g.Want, v)
		})
	}
}

func TestEvalListResult(t *testing.T) {
	env, err := DefaultEnvironment()
	require.NoError(t, err)

	v, err := Eval(env, "[1, 2, 3].map(x, x * 2)", map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, []any{int64(2), int64(4), int64(6)}, v)
}

func TestEvalCompileError(t *testing.T) {
	env, err := DefaultEnvironment()
	require.NoError(t, err)

	_, err = Eval(env, "nonexistent + 1", map[string]any{})
	require.Error(t, err)
}

func TestEvalUndeclaredVariable(t *testing.T) {
	env, err := DefaultEnvironment(WithVariables("root"))
	require.NoError(t, err)

	_, err = Eval(env, "stats.mean", map[string]any{"root": map[string]any{}})
	require.Error(t, err)
}
