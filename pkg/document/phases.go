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
	"fmt"
)

// Phase is a run-type token from the document's top-level run list. The
// embedding application sequences its pipeline phases in the order the
// tokens appear; this package only validates tokens and preserves order.
type Phase string

const (
	PhaseTrain   Phase = "train"
	PhaseVal     Phase = "val"
	PhaseTest    Phase = "test"
	PhasePredict Phase = "predict"
)

// RunKey is the top-level key holding the ordered run-type list.
const RunKey = "run"

func validPhase(p Phase) bool {
	switch p {
	case PhaseTrain, PhaseVal, PhaseTest, PhasePredict:
		return true
	}
	return false
}

// RunPhases returns the document's run-type list in source order. A missing
// run key yields an empty list. Non-string entries and unknown tokens are
// errors.
func (d *Document) RunPhases() ([]Phase, error) {
	raw, ok := d.root.Get(RunKey)
	if !ok {
		return nil, nil
	}
	seq, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%s: expected a sequence of run types, got %T", RunKey, raw)
	}

	phases := make([]Phase, 0, len(seq))
	for i, item := range seq {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%s[%d]: expected a string run type, got %T", RunKey, i, item)
		}
		p := Phase(s)
		if !validPhase(p) {
			return nil, fmt.Errorf("%s[%d]: unknown run type %q", RunKey, i, s)
		}
		phases = append(phases, p)
	}
	return phases, nil
}
