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

package document

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a field path does not exist in the document.
var ErrNotFound = errors.New("path not found")

// IsNotFound returns true if err indicates a missing field path.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// SyntaxError reports malformed document text. Line and Column are 1-based
// and refer to the offending construct when the parser can locate it; both
// are zero when it cannot.
type SyntaxError struct {
	Line   int
	Column int
	Msg    string
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("syntax error at line %d, column %d: %s", e.Line, e.Column, e.Msg)
	}
	return fmt.Sprintf("syntax error: %s", e.Msg)
}

// AsSyntaxError returns the *SyntaxError in err's chain, or nil.
func AsSyntaxError(err error) *SyntaxError {
	var se *SyntaxError
	if errors.As(err, &se) {
		return se
	}
	return nil
}
