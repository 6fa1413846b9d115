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

package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func runCommand(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestResolveCommand(t *testing.T) {
	path := writeConfig(t, `
seed: 42
run_name: exp-${seed}
`)

	stdout, _, err := runCommand(t, "", "resolve", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "seed: 42")
	assert.Contains(t, stdout, "run_name: exp-42")
	// Top-level key order survives resolution.
	assert.Less(t, strings.Index(stdout, "seed:"), strings.Index(stdout, "run_name:"))
}

func TestResolveCommandJSON(t *testing.T) {
	path := writeConfig(t, `
seed: 42
`)

	stdout, _, err := runCommand(t, "", "resolve", "-f", path, "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"seed": 42`)
}

func TestResolveCommandStdin(t *testing.T) {
	stdout, _, err := runCommand(t, "a: 1\nb: ${a}\n", "resolve", "-f", "-")
	require.NoError(t, err)
	assert.Contains(t, stdout, "b: 1")
}

func TestResolveCommandSet(t *testing.T) {
	path := writeConfig(t, `
data:
  batch_size: 16
effective: ${data.batch_size}
`)

	stdout, _, err := runCommand(t, "", "resolve", "-f", path, "--set", "data.batch_size=8")
	require.NoError(t, err)
	assert.Contains(t, stdout, "effective: 8")
}

func TestResolveCommandStat(t *testing.T) {
	path := writeConfig(t, `
shift: ${stats:energy_mean}
`)

	stdout, _, err := runCommand(t, "", "resolve", "-f", path, "--stat", "energy_mean=-123.4")
	require.NoError(t, err)
	assert.Contains(t, stdout, "shift: -123.4")
}

func TestResolveCommandOutDir(t *testing.T) {
	path := writeConfig(t, `
ckpt: ${paths:output_dir}/checkpoints
`)

	stdout, _, err := runCommand(t, "", "resolve", "-f", path, "--out-dir", "/results/run-7")
	require.NoError(t, err)
	assert.Contains(t, stdout, "ckpt: /results/run-7/checkpoints")
}

func TestResolveCommandErrors(t *testing.T) {
	grid := []struct {
		Name   string
		Source string
		Args   []string
	}{
		{
			Name:   "missing reference",
			Source: "a: ${nope}\n",
		},
		{
			Name:   "cycle",
			Source: "p: ${q}\nq: ${p}\n",
		},
		{
			Name:   "stat not ready",
			Source: "shift: ${stats:mean}\n",
		},
		{
			Name:   "bad format",
			Source: "a: 1\n",
			Args:   []string{"-o", "toml"},
		},
		{
			Name:   "bad override",
			Source: "a: 1\n",
			Args:   []string{"--set", "novalue"},
		},
	}

	for _, g := range grid {
		t.Run(g.Name, func(t *testing.T) {
			path := writeConfig(t, g.Source)
			args := append([]string{"resolve", "-f", path}, g.Args...)
			_, _, err := runCommand(t, "", args...)
			require.Error(t, err)
		})
	}
}

func TestResolveCommandMissingFile(t *testing.T) {
	_, _, err := runCommand(t, "", "resolve", "-f", "/does/not/exist.yaml")
	require.Error(t, err)
}

func TestLintCommandClean(t *testing.T) {
	path := writeConfig(t, `
run: [train, test]
seed: 42
name: ${env:NAME,exp}-${seed}
model:
  _target_: models.MACE
`)

	stdout, _, err := runCommand(t, "", "lint", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "no problems")
}

func TestLintCommandMissingReference(t *testing.T) {
	path := writeConfig(t, `
a: ${does.not.exist}
`)

	stdout, _, err := runCommand(t, "", "lint", "-f", path)
	require.Error(t, err)
	assert.Contains(t, stdout, "does.not.exist")
}

func TestLintCommandCycle(t *testing.T) {
	path := writeConfig(t, `
p: ${q}
q: ${p}
`)

	stdout, _, err := runCommand(t, "", "lint", "-f", path)
	require.Error(t, err)
	assert.Contains(t, stdout, "cyclic reference")
}

func TestLintCommandBadRunType(t *testing.T) {
	path := writeConfig(t, `
run: [train, deploy]
`)

	stdout, _, err := runCommand(t, "", "lint", "-f", path)
	require.Error(t, err)
	assert.Contains(t, stdout, "deploy")
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := runCommand(t, "", "version")
	require.NoError(t, err)
	assert.NotEmpty(t, stdout)
}

func TestSplitAssignment(t *testing.T) {
	grid := []struct {
		In    string
		Key   string
		Value any
		Err   bool
	}{
		{In: "a=1", Key: "a", Value: int64(1)},
		{In: "a.b=0.5", Key: "a.b", Value: 0.5},
		{In: "flag=true", Key: "flag", Value: true},
		{In: "name=aspirin", Key: "name", Value: "aspirin"},
		{In: "empty=", Key: "empty", Value: nil},
		{In: "deep.path=a=b", Key: "deep.path", Value: "a=b"},
		{In: "novalue", Err: true},
		{In: "=5", Err: true},
	}

	for _, g := range grid {
		t.Run(g.In, func(t *testing.T) {
			key, value, err := splitAssignment(g.In)
			if g.Err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, g.Key, key)
			assert.Equal(t, g.Value, value)
		})
	}
}
