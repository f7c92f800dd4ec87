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

// Request is a single lane of a rename bundle, naming the architectural
// operands of one instruction.
type Request struct {
	Valid bool
	SrcA  uint
	SrcB  uint
	Dst   uint
}

// NeedsAlloc determines whether this lane requires a fresh physical register.
// Lanes writing register 0 (or not writing at all) never do.
func (p Request) NeedsAlloc() bool {
	return p.Valid && p.Dst != 0
}

// Result is the outcome of renaming a single lane.  When Ready is false the
// remaining fields are meaningless and the lane must be presented again on a
// later tick.
type Result struct {
	Ready    bool
	PhysSrcA uint
	PhysSrcB uint
	PhysDst  uint
	// Physical register mapped to the destination before this tick.  This is
	// what must eventually be committed once the instruction retires.
	PriorPhysDst uint
}

// allocation is the outcome of the read phase of a tick.  Nothing in it has
// been applied to the mapping store or pool yet.
type allocation struct {
	results []Result
	// Mapping store writes, in lane order.
	updates []Update
	// Registers drawn from the pool, in lane order.
	drawn []uint
	// Lanes rejected for lack of free registers.
	stalled uint
}

// Evaluate every lane of a bundle against the same (unmodified) mapping store
// and pool.  Lanes beyond the issue width are reported as not ready.
func allocate(table *Table, pool *Pool, width uint, bundle []Request) allocation {
	var (
		n        = min(uint(len(bundle)), width)
		free     = pool.Count()
		priority = make([]uint, n)
		demand   uint
		result   = allocation{results: make([]Result, len(bundle))}
	)
	// Determine each lane's allocation priority within the bundle.
	for i := range n {
		priority[i] = demand
		//
		if bundle[i].NeedsAlloc() {
			demand++
		}
	}
	// Draw at most one register for each lane which can be served.
	fresh := pool.Peek(min(demand, free))
	//
	for i := range n {
		var lane = bundle[i]
		//
		if !lane.NeedsAlloc() {
			result.results[i] = Result{
				Ready:    true,
				PhysSrcA: resolve(table, lane.Valid, lane.SrcA),
				PhysSrcB: resolve(table, lane.Valid, lane.SrcB),
			}
		} else if priority[i] < uint(len(fresh)) {
			var phys = fresh[priority[i]]
			//
			result.results[i] = Result{
				Ready:        true,
				PhysSrcA:     table.Lookup(lane.SrcA),
				PhysSrcB:     table.Lookup(lane.SrcB),
				PhysDst:      phys,
				PriorPhysDst: table.Lookup(lane.Dst),
			}
			result.updates = append(result.updates, Update{lane.Dst, phys})
			result.drawn = append(result.drawn, phys)
		} else {
			result.stalled++
		}
	}
	// Any lanes beyond the issue width are dropped.
	for i := n; i < uint(len(bundle)); i++ {
		if bundle[i].Valid {
			result.stalled++
		}
	}
	//
	return result
}

func resolve(table *Table, valid bool, arch uint) uint {
	if !valid {
		return 0
	}
	//
	return table.Lookup(arch)
}
