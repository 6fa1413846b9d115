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

package resolve

import (
	"fmt"
	"strings"

	ckcel "github.com/confkit/confkit/pkg/cel"
)

// Built-in resolver names.
const (
	ResolverStats = "stats"
	ResolverEnv   = "env"
	ResolverPaths = "paths"
	ResolverCEL   = "cel"
)

func registerBuiltins(c *Context) {
	c.resolvers[ResolverStats] = resolveStat
	c.resolvers[ResolverEnv] = resolveEnv
	c.resolvers[ResolverPaths] = resolvePath
	c.resolvers[ResolverCEL] = resolveCEL
}

// resolveStat looks up a named statistic from the context's statistics
// namespace: ${stats:per_atom_energy_mean}. A missing statistic is a
// timing failure, not a document bug.
func resolveStat(c *Context, args []string) (any, error) {
	if len(args) != 1 || args[0] == "" {
		return nil, fmt.Errorf("stats resolver takes exactly one argument, got %d", len(args))
	}
	v, ok := c.Stat(args[0])
	if !ok {
		return nil, fmt.Errorf("%w: statistic %q has not been computed", ErrInputNotReady, args[0])
	}
	return v, nil
}

// resolveEnv reads an environment variable: ${env:SLURM_JOB_ID} or
// ${env:WANDB_MODE,offline} with a fallback.
func resolveEnv(c *Context, args []string) (any, error) {
	if len(args) == 0 || len(args) > 2 {
		return nil, fmt.Errorf("env resolver takes one or two arguments, got %d", len(args))
	}
	v, ok := c.env(args[0])
	if !ok {
		if len(args) == 2 {
			return args[1], nil
		}
		return nil, fmt.Errorf("%w: environment variable %q is not set", ErrInputNotReady, args[0])
	}
	return v, nil
}

// resolvePath returns run directories: ${paths:output_dir}.
func resolvePath(c *Context, args []string) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("paths resolver takes exactly one argument, got %d", len(args))
	}
	switch args[0] {
	case "output_dir":
		if c.outputDir == "" {
			return nil, fmt.Errorf("%w: output directory is not set", ErrInputNotReady)
		}
		return c.outputDir, nil
	default:
		return nil, fmt.Errorf("paths resolver: unknown path name %q", args[0])
	}
}

// resolveCEL evaluates a CEL expression against the literal document and
// the context state: ${cel:root.data.batch_size * 2}. The bindings are
// root (the document as written), stats, and out (the output directory).
// Commas split resolver arguments, so a comma inside the expression is
// rejoined here; the expression text therefore loses surrounding
// whitespace around commas.
func resolveCEL(c *Context, args []string) (any, error) {
	expression := strings.Join(args, ",")
	if expression == "" {
		return nil, fmt.Errorf("cel resolver requires an expression")
	}

	env, err := ckcel.DefaultEnvironment(ckcel.WithVariables("root", "stats", "out"))
	if err != nil {
		return nil, fmt.Errorf("cel environment: %w", err)
	}

	root := c.root
	if root == nil {
		root = map[string]any{}
	}
	bindings := map[string]any{
		"root":  root,
		"stats": c.stats,
		"out":   c.outputDir,
	}

	out, err := ckcel.Eval(env, expression, bindings)
	if err != nil {
		return nil, fmt.Errorf("cel expression %q: %w", expression, err)
	}
	return out, nil
}
