// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package sim

import (
	"math"
	"slices"

	"github.com/consensys/go-renamer/pkg/rename"
)

// Entry is a renamed instruction awaiting retirement.
type Entry struct {
	// Position of the instruction in the program.
	Index uint
	// Architectural destination (0 if none).
	Dst uint
	// Physical register superseded by this instruction's destination.
	Prior uint
	// Tick on which the instruction completes.
	Done uint
}

// Tracker is an in-order retirement tracker.  Instructions enter in program
// order once renamed, and leave in program order once complete.  Retiring an
// instruction frees the physical register its destination superseded, since
// no later instruction can still refer to it.
type Tracker struct {
	entries []Entry
	// Maximum number of entries (0 for unbounded).
	window uint
}

// NewTracker constructs an empty tracker holding at most window entries, or
// any number of entries when window is 0.
func NewTracker(window uint) *Tracker {
	return &Tracker{nil, window}
}

// Len returns the number of instructions awaiting retirement.
func (p *Tracker) Len() uint {
	return uint(len(p.entries))
}

// IsEmpty checks whether any instructions await retirement.
func (p *Tracker) IsEmpty() bool {
	return len(p.entries) == 0
}

// Space returns the number of entries which can be inserted.
func (p *Tracker) Space() uint {
	if p.window == 0 {
		return math.MaxUint
	}
	//
	return p.window - p.Len()
}

// Insert an instruction which has just been renamed.
func (p *Tracker) Insert(entry Entry) {
	if p.Space() == 0 {
		panic("tracker window overflow")
	}
	//
	p.entries = append(p.entries, entry)
}

// Retire up to width completed instructions from the head of this tracker,
// returning them along with the commit bundle freeing their superseded
// registers.
func (p *Tracker) Retire(now uint, width uint) ([]Entry, []rename.Commit) {
	var (
		n       uint
		commits []rename.Commit
	)
	//
	for n < width && n < p.Len() && p.entries[n].Done <= now {
		if p.entries[n].Dst != 0 {
			commits = append(commits, rename.Commit{Valid: true, Phys: p.entries[n].Prior})
		}
		//
		n++
	}
	//
	retired := slices.Clone(p.entries[:n])
	p.entries = slices.Delete(p.entries, 0, int(n))
	//
	return retired, commits
}
