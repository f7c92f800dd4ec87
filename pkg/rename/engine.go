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
	"errors"
	"fmt"
	"sync"

	"github.com/bits-and-blooms/bitset"
	log "github.com/sirupsen/logrus"
)

// Engine is a multi-issue register renaming engine.  It owns the mapping store
// and the free pool, and mutates both only at the end of each tick.  All
// methods are safe for concurrent use, with each tick being a single critical
// section.
type Engine struct {
	mu     sync.Mutex
	config Config
	table  *Table
	pool   *Pool
	// Superseded registers awaiting commit (checked mode only).
	owned *bitset.BitSet
	stats Stats
}

// Stats accumulates counts over the lifetime of an engine (or since it was
// last reset).
type Stats struct {
	// Number of ticks evaluated.
	Ticks uint
	// Valid rename lanes reported ready.
	Renamed uint
	// Valid rename lanes reported not ready.
	Stalled uint
	// Physical registers returned to the pool.
	Committed uint
	// Valid commit lanes which had no effect, e.g. naming register 0.
	IgnoredCommits uint
	// Commit lanes rejected in checked mode.
	RejectedCommits uint
}

// New constructs an engine in its reset state.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	//
	engine := &Engine{
		config: cfg,
		table:  NewTable(cfg.ArchRegs),
		pool:   NewPool(cfg),
	}
	//
	if cfg.Checked {
		engine.owned = bitset.New(cfg.PhysRegs)
	}
	//
	return engine, nil
}

// Reset restores the identity mapping and a full pool, and clears all
// statistics.
func (p *Engine) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	//
	p.table.Reset()
	p.pool.Reset()
	//
	if p.owned != nil {
		p.owned.ClearAll()
	}
	//
	p.stats = Stats{}
}

// Rename evaluates a rename bundle in a tick of its own.
func (p *Engine) Rename(bundle []Request) []Result {
	return p.Step(bundle, nil)
}

// Commit evaluates a commit bundle in a tick of its own.
func (p *Engine) Commit(bundle []Commit) {
	p.Step(nil, bundle)
}

// Step evaluates a single tick, consisting of a rename bundle and a commit
// bundle (either of which may be empty).  Both bundles are evaluated against
// the state as it was at the start of the tick, and their effects are applied
// together at the end.  Hence, registers committed in this tick cannot be
// allocated until the next, and no lane ever observes a write made by another
// lane of the same bundle.  One result is returned per rename lane.
func (p *Engine) Step(renames []Request, commits []Commit) []Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	// Read phase
	var owned *bitset.BitSet
	//
	if p.owned != nil {
		owned = p.owned.Clone()
	}
	//
	alloc := allocate(p.table, p.pool, p.config.IssueWidth, renames)
	retired := retire(owned, p.config.IssueWidth, commits)
	// Commit phase
	p.table.Apply(alloc.updates)
	accepted := p.pool.Apply(alloc.drawn, retired.released)
	//
	if owned != nil {
		p.owned = supersede(owned, renames, alloc.results)
	}
	//
	p.record(renames, alloc, retired, accepted)
	//
	return alloc.results
}

// Record the registers superseded by a tick as awaiting commit.  Every
// allocating lane supersedes the destination's mapping before the tick.  When a
// later lane of the same bundle writes the same destination, it also supersedes
// the register allocated by the earlier lane.
func supersede(owned *bitset.BitSet, renames []Request, results []Result) *bitset.BitSet {
	var last = make(map[uint]int)
	//
	for i, lane := range renames {
		if results[i].Ready && lane.NeedsAlloc() {
			last[lane.Dst] = i
		}
	}
	//
	for i, lane := range renames {
		if !results[i].Ready || !lane.NeedsAlloc() {
			continue
		}
		//
		owned.Set(results[i].PriorPhysDst)
		//
		if last[lane.Dst] != i {
			owned.Set(results[i].PhysDst)
		}
	}
	//
	return owned
}

func (p *Engine) record(renames []Request, alloc allocation, retired retirement, accepted uint) {
	var renamed uint
	//
	for i, lane := range renames {
		if lane.Valid && alloc.results[i].Ready {
			renamed++
		}
	}
	//
	p.stats.Ticks++
	p.stats.Renamed += renamed
	p.stats.Stalled += alloc.stalled
	p.stats.Committed += accepted
	p.stats.IgnoredCommits += retired.ignored + uint(len(retired.released)) - accepted
	p.stats.RejectedCommits += retired.rejected
	//
	if alloc.stalled > 0 {
		log.Debugf("tick %d: %d lane(s) stalled with %d free register(s)", p.stats.Ticks, alloc.stalled,
			p.pool.Count())
	}
}

// Config returns the configuration this engine was constructed with.
func (p *Engine) Config() Config {
	return p.config
}

// FreeCount returns the number of free physical registers.
func (p *Engine) FreeCount() uint {
	p.mu.Lock()
	defer p.mu.Unlock()
	//
	return p.pool.Count()
}

// Empty checks whether the free pool is exhausted.
func (p *Engine) Empty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	//
	return p.pool.IsEmpty()
}

// Lookup returns the physical register currently mapped to a given
// architectural register.
func (p *Engine) Lookup(arch uint) uint {
	p.mu.Lock()
	defer p.mu.Unlock()
	//
	return p.table.Lookup(arch)
}

// Mapping returns a copy of the mapping store, indexed by architectural
// register.
func (p *Engine) Mapping() []uint {
	p.mu.Lock()
	defer p.mu.Unlock()
	//
	return p.table.Entries()
}

// Free returns the free registers in ascending order.
func (p *Engine) Free() []uint {
	p.mu.Lock()
	defer p.mu.Unlock()
	//
	return p.pool.Members()
}

// Stats returns a copy of the statistics accumulated so far.
func (p *Engine) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	//
	return p.stats
}

// Check the structural invariants of this engine, returning an error
// describing the first violation found (or nil).
func (p *Engine) Check() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	//
	var mapped = bitset.New(p.config.PhysRegs)
	//
	if phys := p.table.entries[0]; phys != 0 {
		return fmt.Errorf("register r0 mapped to p%d", phys)
	}
	//
	for arch, phys := range p.table.entries {
		switch {
		case phys >= p.config.PhysRegs:
			return fmt.Errorf("register r%d mapped to out-of-range p%d", arch, phys)
		case mapped.Test(phys):
			return fmt.Errorf("register r%d mapped to p%d, which is already mapped", arch, phys)
		case p.pool.Contains(phys):
			return fmt.Errorf("register r%d mapped to p%d, which is also free", arch, phys)
		}
		//
		mapped.Set(phys)
	}
	//
	if n := p.pool.Count(); n > p.pool.Capacity() {
		return fmt.Errorf("free pool holds %d registers (capacity %d)", n, p.pool.Capacity())
	} else if p.pool.Contains(0) {
		return errors.New("register p0 is free")
	}
	//
	return nil
}

func (p *Engine) String() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	//
	return fmt.Sprintf("%s free=%s", p.table.String(), p.pool.String())
}
