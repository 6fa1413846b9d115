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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confkit/confkit/pkg/document"
	"github.com/confkit/confkit/pkg/resolve"
)

func newInstantiator(t *testing.T, src string, registry *Registry) *Instantiator {
	t.Helper()
	doc, err := document.Parse([]byte(src))
	require.NoError(t, err)
	return NewInstantiator(registry, resolve.New(doc, nil))
}

func TestInstantiateTarget(t *testing.T) {
	registry := NewRegistry()
	registry.MustRegister("double", Factory{
		Required: []string{"n"},
		New: func(args map[string]any) (any, error) {
			return args["n"].(int64) * 2, nil
		},
	})

	in := newInstantiator(t, `
value:
  _target_: double
  n: 5
`, registry)

	obj, err := in.Instantiate("value")
	require.NoError(t, err)
	assert.Equal(t, int64(10), obj)
}

func TestInstantiateNestedBottomUp(t *testing.T) {
	var built []string
	registry := NewRegistry()
	record := func(name string) Factory {
		return Factory{New: func(args map[string]any) (any, error) {
			built = append(built, name)
			return name, nil
		}}
	}
	registry.MustRegister("inner", record("inner"))
	registry.MustRegister("outer", record("outer"))

	in := newInstantiator(t, `
model:
  _target_: outer
  child:
    _target_: inner
`, registry)

	obj, err := in.Instantiate("model")
	require.NoError(t, err)
	assert.Equal(t, "outer", obj)
	assert.Equal(t, []string{"inner", "outer"}, built)
}

func TestInstantiateSequenceInWrittenOrder(t *testing.T) {
	var built []string
	registry := NewRegistry()
	for _, name := range []string{"checkpoint", "lr_monitor", "early_stop"} {
		registry.MustRegister(name, Factory{New: func(map[string]any) (any, error) {
			built = append(built, name)
			return name, nil
		}})
	}

	in := newInstantiator(t, `
callbacks:
  - _target_: checkpoint
  - _target_: lr_monitor
  - _target_: early_stop
`, registry)

	obj, err := in.Instantiate("callbacks")
	require.NoError(t, err)
	assert.Equal(t, []any{"checkpoint", "lr_monitor", "early_stop"}, obj)
	assert.Equal(t, []string{"checkpoint", "lr_monitor", "early_stop"}, built)
}

func TestInstantiatePassesConstructedChildren(t *testing.T) {
	type optimizer struct{ lr float64 }
	type trainer struct{ opt *optimizer }

	registry := NewRegistry()
	registry.MustRegister("optim.Adam", Factory{
		Required: []string{"lr"},
		New: func(args map[string]any) (any, error) {
			return &optimizer{lr: args["lr"].(float64)}, nil
		},
	})
	registry.MustRegister("train.Trainer", Factory{
		Required: []string{"optimizer"},
		New: func(args map[string]any) (any, error) {
			return &trainer{opt: args["optimizer"].(*optimizer)}, nil
		},
	})

	in := newInstantiator(t, `
trainer:
  _target_: train.Trainer
  optimizer:
    _target_: optim.Adam
    lr: 0.001
`, registry)

	obj, err := in.Instantiate("trainer")
	require.NoError(t, err)
	tr, ok := obj.(*trainer)
	require.True(t, ok, "expected *trainer, got %T", obj)
	require.NotNil(t, tr.opt)
	assert.Equal(t, 0.001, tr.opt.lr)
}

func TestInstantiateUnknownTarget(t *testing.T) {
	in := newInstantiator(t, `
value:
  _target_: nope.Missing
`, NewRegistry())

	_, err := in.Instantiate("value")
	require.Error(t, err)
	ue := AsUnknownTargetError(err)
	require.NotNil(t, ue, "expected UnknownTargetError, got %T %v", err, err)
	assert.Equal(t, "nope.Missing", ue.Name)
	assert.Equal(t, "value", ue.Path)
}

func TestInstantiateMissingArgument(t *testing.T) {
	registry := NewRegistry()
	registry.MustRegister("double", Factory{
		Required: []string{"n"},
		New:      func(args map[string]any) (any, error) { return nil, nil },
	})

	in := newInstantiator(t, `
value:
  _target_: double
`, registry)

	_, err := in.Instantiate("value")
	require.Error(t, err)
	me := AsMissingArgumentError(err)
	require.NotNil(t, me, "expected MissingArgumentError, got %T %v", err, err)
	assert.Equal(t, "double", me.Target)
	assert.Equal(t, "n", me.Argument)
}

func TestInstantiateConstructionError(t *testing.T) {
	boom := errors.New("boom")
	registry := NewRegistry()
	registry.MustRegister("failing", Factory{
		New: func(map[string]any) (any, error) { return nil, boom },
	})
	registry.MustRegister("panicking", Factory{
		New: func(map[string]any) (any, error) { panic("kaboom") },
	})

	t.Run("error", func(t *testing.T) {
		in := newInstantiator(t, `
value:
  _target_: failing
`, registry)
		_, err := in.Instantiate("value")
		require.Error(t, err)
		ce := AsConstructionError(err)
		require.NotNil(t, ce, "expected ConstructionError, got %T %v", err, err)
		assert.Equal(t, "failing", ce.Target)
		assert.True(t, errors.Is(err, boom), "wrapped cause must survive")
	})

	t.Run("panic", func(t *testing.T) {
		in := newInstantiator(t, `
value:
  _target_: panicking
`, registry)
		_, err := in.Instantiate("value")
		require.Error(t, err)
		ce := AsConstructionError(err)
		require.NotNil(t, ce, "expected ConstructionError, got %T %v", err, err)
		assert.Contains(t, ce.Err.Error(), "kaboom")
	})
}

func TestInstantiateTargetMustBeString(t *testing.T) {
	in := newInstantiator(t, `
value:
  _target_: 42
`, NewRegistry())

	_, err := in.Instantiate("value")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "_target_ must be a string")
}

func TestInstantiateAliasedTargetSharesObject(t *testing.T) {
	calls := 0
	registry := NewRegistry()
	registry.MustRegister("dataset", Factory{New: func(map[string]any) (any, error) {
		calls++
		return &struct{ id int }{id: calls}, nil
	}})

	in := newInstantiator(t, `
data:
  train:
    _target_: dataset
    path: /scratch/train.xyz
  val: ${data.train}
`, registry)

	obj, err := in.Instantiate("data")
	require.NoError(t, err)
	m := obj.(map[string]any)

	assert.Equal(t, 1, calls, "aliased subtree constructs once")
	assert.Same(t, m["train"], m["val"])
}

func TestInstantiateIdenticalSiblingsConstructTwice(t *testing.T) {
	calls := 0
	registry := NewRegistry()
	registry.MustRegister("dataset", Factory{New: func(map[string]any) (any, error) {
		calls++
		return calls, nil
	}})

	// Structurally identical, but written out twice: two objects.
	in := newInstantiator(t, `
data:
  train:
    _target_: dataset
  val:
    _target_: dataset
`, registry)

	obj, err := in.Instantiate("data")
	require.NoError(t, err)
	m := obj.(map[string]any)
	assert.Equal(t, 2, calls)
	assert.NotEqual(t, m["train"], m["val"])
}

func TestInstantiateAllLeavesLiteralsAlone(t *testing.T) {
	registry := NewRegistry()
	registry.MustRegister("double", Factory{New: func(args map[string]any) (any, error) {
		return args["n"].(int64) * 2, nil
	}})

	doc, err := document.Parse([]byte(`
run: [train, test]
seed: 42
value:
  _target_: double
  n: ${seed}
`))
	require.NoError(t, err)

	in := NewInstantiator(registry, resolve.New(doc, nil))
	out, err := in.InstantiateAll()
	require.NoError(t, err)

	assert.Equal(t, []any{"train", "test"}, out["run"])
	assert.Equal(t, int64(42), out["seed"])
	assert.Equal(t, int64(84), out["value"])
}

func TestInstantiateErrorPathIsNested(t *testing.T) {
	in := newInstantiator(t, `
trainer:
  callbacks:
    - _target_: known
`, NewRegistry())

	_, err := in.Instantiate("trainer")
	require.Error(t, err)
	ue := AsUnknownTargetError(err)
	require.NotNil(t, ue)
	assert.Equal(t, "trainer.callbacks[0]", ue.Path)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("a", Factory{New: func(map[string]any) (any, error) { return nil, nil }}))

	err := r.Register("a", Factory{New: func(map[string]any) (any, error) { return nil, nil }})
	require.Error(t, err, "duplicate registration must fail")

	require.Error(t, r.Register("", Factory{New: func(map[string]any) (any, error) { return nil, nil }}))
	require.Error(t, r.Register("b", Factory{}), "nil constructor must fail")

	_, ok := r.Lookup("a")
	assert.True(t, ok)
	_, ok = r.Lookup("b")
	assert.False(t, ok)

	require.NoError(t, r.Register("z", Factory{New: func(map[string]any) (any, error) { return nil, nil }}))
	assert.Equal(t, []string{"a", "z"}, r.Names())
}

func TestIsTargetMappingAndArgKeys(t *testing.T) {
	m := document.NewMapping()
	m.Set("lr", 0.001)
	m.Set(TargetKey, "optim.Adam")
	m.Set("weight_decay", 0.0)

	assert.True(t, IsTargetMapping(m))
	assert.False(t, IsTargetMapping(document.NewMapping()))
	assert.False(t, IsTargetMapping("scalar"))
	assert.Equal(t, []string{"lr", "weight_decay"}, ArgKeys(m))
}
