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
package rename

import (
	"github.com/bits-and-blooms/bitset"
	log "github.com/sirupsen/logrus"
)

// Commit is a single lane of a commit bundle, naming a physical register
// which the retirement tracker asserts is now safe to free.
type Commit struct {
	Valid bool
	Phys  uint
}

// retirement is the outcome of the read phase for a commit bundle.
type retirement struct {
	// Registers to be returned to the pool.
	released []uint
	// Valid lanes naming register 0, or lanes beyond the issue width.
	ignored uint
	// Lanes rejected by the owner check.
	rejected uint
}

// Determine which registers a commit bundle returns to the pool.  When owned is
// non-nil, only registers it contains are released and each released register
// is removed from it (so a register cannot be released twice).  Otherwise every
// valid, non-zero register is released without question.
func retire(owned *bitset.BitSet, width uint, bundle []Commit) retirement {
	var result retirement
	//
	for i, lane := range bundle {
		switch {
		case !lane.Valid:
			continue
		case uint(i) >= width || lane.Phys == 0:
			result.ignored++
		case owned != nil && !owned.Test(lane.Phys):
			log.Warnf("rejected commit of unowned physical register p%d", lane.Phys)
			//
			result.rejected++
		default:
			if owned != nil {
				owned.Clear(lane.Phys)
			}
			//
			result.released = append(result.released, lane.Phys)
		}
	}
	//
	return result
}
