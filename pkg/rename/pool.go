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
	"slices"

	"github.com/bits-and-blooms/bitset"
)

// Pool holds the set of physical registers which are not currently mapped to
// any architectural register.  Membership is held in a bitset, whilst the
// order in which registers are handed out is determined by the pool's
// discipline.  The pool never holds more than its capacity, and never holds
// physical register 0.
type Pool struct {
	discipline Discipline
	// First physical register free after reset.
	first uint
	// Number of physical registers.
	size uint
	// Maximum number of free registers.
	capacity uint
	// Membership
	members *bitset.BitSet
	// Release order, only maintained for the stack discipline.  The top of the
	// stack is the last element.
	order []uint
}

// NewPool constructs a pool holding {ArchRegs, ..., PhysRegs-1}.
func NewPool(cfg Config) *Pool {
	var pool = &Pool{
		discipline: cfg.Discipline,
		first:      cfg.ArchRegs,
		size:       cfg.PhysRegs,
		capacity:   cfg.Headroom(),
		members:    bitset.New(cfg.PhysRegs),
	}
	//
	pool.Reset()
	//
	return pool
}

// Reset this pool so that it holds exactly the registers which are not part
// of the initial identity mapping.
func (p *Pool) Reset() {
	p.members.ClearAll()
	p.order = p.order[:0]
	// Push in reverse so the lowest renamable register is drawn first.
	for id := p.size; id > p.first; id-- {
		p.members.Set(id - 1)
		//
		if p.discipline == STACK {
			p.order = append(p.order, id-1)
		}
	}
}

// Count returns the number of free registers.
func (p *Pool) Count() uint {
	return p.members.Count()
}

// Capacity returns the maximum number of free registers this pool can hold.
func (p *Pool) Capacity() uint {
	return p.capacity
}

// IsEmpty checks whether any free registers remain.
func (p *Pool) IsEmpty() bool {
	return p.members.None()
}

// Contains checks whether a given physical register is free.
func (p *Pool) Contains(id uint) bool {
	return id < p.size && p.members.Test(id)
}

// Members returns the free registers in ascending order.
func (p *Pool) Members() []uint {
	var ids = make([]uint, 0, p.Count())
	//
	for id, ok := p.members.NextSet(0); ok; id, ok = p.members.NextSet(id + 1) {
		ids = append(ids, id)
	}
	//
	return ids
}

// Peek returns the next n registers which would be drawn from this pool,
// without removing them.  The result is pairwise distinct, and holds fewer
// than n registers only when the pool holds fewer than n.
func (p *Pool) Peek(n uint) []uint {
	var ids = make([]uint, 0, min(n, p.Count()))
	//
	switch p.discipline {
	case STACK:
		for i := len(p.order) - 1; i >= 0 && uint(len(ids)) < n; i-- {
			ids = append(ids, p.order[i])
		}
	default:
		for id, ok := p.members.NextSet(0); ok && uint(len(ids)) < n; id, ok = p.members.NextSet(id + 1) {
			ids = append(ids, id)
		}
	}
	//
	return ids
}

// Apply a single atomic transition to this pool: first every drawn register
// is removed, then every released register is inserted.  A released register
// is dropped when it is 0, out of range, already free or when the pool is at
// capacity.  The number of released registers actually inserted is returned.
func (p *Pool) Apply(drawn []uint, released []uint) uint {
	var accepted uint
	//
	for _, id := range drawn {
		p.members.Clear(id)
	}
	//
	if len(drawn) > 0 && p.discipline == STACK {
		p.order = slices.DeleteFunc(p.order, func(id uint) bool { return !p.members.Test(id) })
	}
	//
	for _, id := range released {
		if id == 0 || id >= p.size || p.members.Test(id) || p.Count() >= p.capacity {
			continue
		}
		//
		p.members.Set(id)
		//
		if p.discipline == STACK {
			p.order = append(p.order, id)
		}
		//
		accepted++
	}
	//
	return accepted
}

func (p *Pool) String() string {
	return p.members.String()
}
