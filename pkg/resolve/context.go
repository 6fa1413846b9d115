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
	"log/slog"
	"os"
)

// ResolverFunc computes a value from run-time context when invoked through
// a ${name:args} expression. Args are the literal comma-separated argument
// strings from the expression.
type ResolverFunc func(ctx *Context, args []string) (any, error)

// Context carries the run-time state resolvers draw from: the run's output
// directory, the statistics namespace populated by earlier pipeline stages,
// environment lookup, and the resolver registry itself.
//
// A Context must be fully populated before a resolution pass starts, and
// the pass assumes exclusive access for its duration.
type Context struct {
	outputDir string
	stats     map[string]any
	env       func(string) (string, bool)
	resolvers map[string]ResolverFunc
	logger    *slog.Logger

	// root is the literal document view, bound by the Resolver at the
	// start of a pass for resolvers that evaluate expressions against it.
	root map[string]any
}

// ContextOption configures a Context.
type ContextOption func(*Context)

// WithOutputDir sets the run's output directory, exposed through the
// paths resolver.
func WithOutputDir(dir string) ContextOption {
	return func(c *Context) { c.outputDir = dir }
}

// WithStat stores one named statistic in the context's statistics
// namespace.
func WithStat(name string, value any) ContextOption {
	return func(c *Context) { c.stats[name] = value }
}

// WithStats merges a statistics map into the context's namespace.
func WithStats(stats map[string]any) ContextOption {
	return func(c *Context) {
		for k, v := range stats {
			c.stats[k] = v
		}
	}
}

// WithEnvLookup replaces the environment variable lookup, mainly for tests.
func WithEnvLookup(lookup func(string) (string, bool)) ContextOption {
	return func(c *Context) { c.env = lookup }
}

// WithResolver registers a named resolver. Registering a built-in name
// overrides the built-in.
func WithResolver(name string, fn ResolverFunc) ContextOption {
	return func(c *Context) { c.resolvers[name] = fn }
}

// WithLogger sets the logger used for resolution tracing. The default
// discards everything.
func WithLogger(logger *slog.Logger) ContextOption {
	return func(c *Context) { c.logger = logger }
}

// NewContext builds a Context with the built-in resolvers (stats, env,
// paths, cel) registered, then applies options.
func NewContext(opts ...ContextOption) *Context {
	c := &Context{
		stats:     make(map[string]any),
		env:       os.LookupEnv,
		resolvers: make(map[string]ResolverFunc),
		logger:    slog.New(slog.DiscardHandler),
	}
	registerBuiltins(c)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetStat stores a statistic after construction. Populating statistics
// mid-pass is not supported; do this before handing the context to a
// resolver.
func (c *Context) SetStat(name string, value any) {
	c.stats[name] = value
}

// Stat returns a named statistic and whether it is present.
func (c *Context) Stat(name string) (any, bool) {
	v, ok := c.stats[name]
	return v, ok
}

// OutputDir returns the run's output directory.
func (c *Context) OutputDir() string {
	return c.outputDir
}

// Resolver returns the registered resolver for name.
func (c *Context) Resolver(name string) (ResolverFunc, bool) {
	fn, ok := c.resolvers[name]
	return fn, ok
}

// Logger returns the context's logger; never nil.
func (c *Context) Logger() *slog.Logger {
	return c.logger
}
