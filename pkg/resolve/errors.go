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
	"errors"
	"fmt"
	"strings"
)

// ErrInputNotReady indicates that a resolver's required upstream value has
// not been produced yet (e.g. a statistic that an earlier pipeline stage
// computes). This is a timing failure, not a document bug: re-running the
// pass after the input is populated can succeed.
var ErrInputNotReady = errors.New("resolver input not ready")

// IsInputNotReady returns true if err indicates a resolver input that has
// not been produced yet.
func IsInputNotReady(err error) bool {
	return errors.Is(err, ErrInputNotReady)
}

// CyclicReferenceError reports an interpolation cycle: resolving a path
// required resolving that same path again before completing.
type CyclicReferenceError struct {
	// Cycle lists the paths on the resolution stack from the first visit
	// of the repeated path to its second, inclusive.
	Cycle []string
}

func (e *CyclicReferenceError) Error() string {
	return fmt.Sprintf("cyclic reference: %s", strings.Join(e.Cycle, " -> "))
}

// AsCyclicReferenceError returns the *CyclicReferenceError in err's chain,
// or nil.
func AsCyclicReferenceError(err error) *CyclicReferenceError {
	var ce *CyclicReferenceError
	if errors.As(err, &ce) {
		return ce
	}
	return nil
}

// UnresolvedReferenceError reports a path reference that does not exist in
// the document.
type UnresolvedReferenceError struct {
	// Path is the referenced path, verbatim from the expression.
	Path string
	// At is the path of the field containing the reference; empty when the
	// lookup was requested directly.
	At string
}

func (e *UnresolvedReferenceError) Error() string {
	if e.At != "" {
		return fmt.Sprintf("unresolved reference %q at %s", e.Path, e.At)
	}
	return fmt.Sprintf("unresolved reference %q", e.Path)
}

// AsUnresolvedReferenceError returns the *UnresolvedReferenceError in err's
// chain, or nil.
func AsUnresolvedReferenceError(err error) *UnresolvedReferenceError {
	var ue *UnresolvedReferenceError
	if errors.As(err, &ue) {
		return ue
	}
	return nil
}

// UnknownResolverError reports a resolver call whose name is not registered
// in the resolution context.
type UnknownResolverError struct {
	Name string
	// At is the path of the field containing the call.
	At string
}

func (e *UnknownResolverError) Error() string {
	return fmt.Sprintf("unknown resolver %q at %s", e.Name, e.At)
}

// AsUnknownResolverError returns the *UnknownResolverError in err's chain,
// or nil.
func AsUnknownResolverError(err error) *UnknownResolverError {
	var ue *UnknownResolverError
	if errors.As(err, &ue) {
		return ue
	}
	return nil
}
