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
	"fmt"
)

// UnknownTargetError reports a target mapping whose constructor name is not
// registered.
type UnknownTargetError struct {
	// Name is the constructor name, verbatim from the document.
	Name string
	// Path is the target mapping's location in the document.
	Path string
}

func (e *UnknownTargetError) Error() string {
	return fmt.Sprintf("unknown target %q at %s", e.Name, e.Path)
}

// AsUnknownTargetError returns the *UnknownTargetError in err's chain, or
// nil.
func AsUnknownTargetError(err error) *UnknownTargetError {
	var ue *UnknownTargetError
	if errors.As(err, &ue) {
		return ue
	}
	return nil
}

// MissingArgumentError reports a required constructor argument with no
// corresponding sibling key.
type MissingArgumentError struct {
	Target   string
	Argument string
	Path     string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("target %q at %s: missing required argument %q", e.Target, e.Path, e.Argument)
}

// AsMissingArgumentError returns the *MissingArgumentError in err's chain,
// or nil.
func AsMissingArgumentError(err error) *MissingArgumentError {
	var me *MissingArgumentError
	if errors.As(err, &me) {
		return me
	}
	return nil
}

// ConstructionError wraps a failure raised by the constructor itself,
// including panics.
type ConstructionError struct {
	Target string
	Path   string
	Err    error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("constructing %q at %s: %v", e.Target, e.Path, e.Err)
}

func (e *ConstructionError) Unwrap() error {
	return e.Err
}

// AsConstructionError returns the *ConstructionError in err's chain, or
// nil.
func AsConstructionError(err error) *ConstructionError {
	var ce *ConstructionError
	if errors.As(err, &ce) {
		return ce
	}
	return nil
}
