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
	"errors"
	"fmt"
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/go-renamer/pkg/rename"
	"github.com/consensys/go-renamer/pkg/util"
	log "github.com/sirupsen/logrus"
)

// Options control how a simulator drives its engine.
type Options struct {
	// Close a bundle before any instruction reading a register written by an
	// earlier lane of the same bundle.
	SplitOnDependency bool
	// Maximum number of instructions awaiting retirement (0 for unbounded).
	Window uint
	// Check engine invariants after every tick.
	Check bool
	// Record every tick for later inspection.
	Record bool
}

// DefaultOptions splits on dependencies, with an unbounded window.
func DefaultOptions() Options {
	return Options{SplitOnDependency: true}
}

// Lane records what happened to one lane of a rename bundle.
type Lane struct {
	// Position of the instruction in the program.
	Index       uint
	Instruction Instruction
	Result      rename.Result
	// Whether this lane was consumed, or must be presented again.
	Consumed bool
}

// TickRecord records what happened on a single tick.
type TickRecord struct {
	Tick    uint
	Lanes   []Lane
	Retired []Entry
	// Free registers at the end of the tick.
	Free uint
}

// Summary reports the outcome of a complete run.
type Summary struct {
	Ticks        uint
	Instructions uint
	// Number of lanes presented but not consumed.
	Replays uint
	Engine  rename.Stats
	Elapsed time.Duration
}

// IPC returns the number of instructions renamed per tick.
func (p Summary) IPC() float64 {
	if p.Ticks == 0 {
		return 0
	}
	//
	return float64(p.Instructions) / float64(p.Ticks)
}

// Simulator plays the part of the issue stage and the retirement tracker for
// a given engine and program.  On each tick, completed instructions retire
// (committing the registers they superseded), whilst the next instructions in
// program order are presented for renaming.  Lanes which are not consumed are
// presented again on the following tick.
type Simulator struct {
	engine  *rename.Engine
	program []Instruction
	options Options
	tracker *Tracker
	// Next instruction to present.
	pc      uint
	tick    uint
	replays uint
	records []TickRecord
}

// New constructs a simulator for a given engine and program.
func New(engine *rename.Engine, program []Instruction, options Options) (*Simulator, error) {
	if err := Validate(engine.Config(), program); err != nil {
		return nil, err
	}
	//
	return &Simulator{
		engine:  engine,
		program: program,
		options: options,
		tracker: NewTracker(options.Window),
	}, nil
}

// Done checks whether every instruction has been renamed and retired.
func (p *Simulator) Done() bool {
	return p.pc == uint(len(p.program)) && p.tracker.IsEmpty()
}

// Records returns the ticks recorded so far.
func (p *Simulator) Records() []TickRecord {
	return p.records
}

// Step evaluates a single tick.
func (p *Simulator) Step() error {
	var width = p.engine.Config().IssueWidth
	// Retirement
	retired, commits := p.tracker.Retire(p.tick, width)
	// Issue
	indices := p.bundle(width)
	requests := make([]rename.Request, len(indices))
	//
	for i, index := range indices {
		insn := p.program[index]
		requests[i] = rename.Request{Valid: true, SrcA: insn.SrcA, SrcB: insn.SrcB, Dst: insn.Dst}
	}
	//
	results := p.engine.Step(requests, commits)
	lanes := p.consume(indices, results)
	//
	if p.options.Check {
		if err := p.engine.Check(); err != nil {
			return fmt.Errorf("tick %d: %w", p.tick, err)
		}
	}
	//
	if p.options.Record {
		p.records = append(p.records, TickRecord{p.tick, lanes, retired, p.engine.FreeCount()})
	}
	//
	log.Debugf("tick %d: presented %d, retired %d, free %d", p.tick, len(indices), len(retired),
		p.engine.FreeCount())
	//
	p.tick++
	//
	return nil
}

// Run the simulation to completion, giving up after maxTicks ticks.  Once every
// instruction has retired, every superseded register has been committed and
// so the pool must be full again.
func (p *Simulator) Run(maxTicks uint) (Summary, error) {
	var (
		stats = util.NewPerfStats()
		start = p.tick
	)
	//
	for !p.Done() {
		if p.tick-start >= maxTicks {
			return p.summary(stats), fmt.Errorf("gave up after %d ticks (%d of %d renamed)", maxTicks, p.pc,
				len(p.program))
		} else if err := p.Step(); err != nil {
			return p.summary(stats), err
		}
	}
	//
	stats.Log("simulation", p.tick-start)
	//
	summary := p.summary(stats)
	cfg := p.engine.Config()
	//
	if free := p.engine.FreeCount(); free != cfg.Headroom() {
		return summary, fmt.Errorf("%d registers free after draining (expected %d): %v", free, cfg.Headroom(),
			p.engine.Free())
	} else if summary.Engine.RejectedCommits != 0 {
		return summary, errors.New("engine rejected commits")
	}
	//
	return summary, nil
}

func (p *Simulator) summary(stats *util.PerfStats) Summary {
	return Summary{
		Ticks:        p.tick,
		Instructions: p.pc,
		Replays:      p.replays,
		Engine:       p.engine.Stats(),
		Elapsed:      stats.Elapsed(),
	}
}

// Determine which instructions to present this tick.  A bundle never holds
// two writes to the same register, since the engine reports both as
// superseding the same register and the first write could then never be
// committed.  Likewise, when splitting on dependencies, a bundle never holds a
// read of a register written by an earlier lane.
func (p *Simulator) bundle(width uint) []uint {
	var (
		n       = min(width, p.tracker.Space(), uint(len(p.program))-p.pc)
		indices []uint
		written bitset.BitSet
	)
	//
	for i := p.pc; i < p.pc+n; i++ {
		insn := p.program[i]
		//
		if written.Test(insn.Dst) {
			break
		} else if p.options.SplitOnDependency && (written.Test(insn.SrcA) || written.Test(insn.SrcB)) {
			break
		}
		//
		if insn.Dst != 0 {
			written.Set(insn.Dst)
		}
		//
		indices = append(indices, i)
	}
	//
	return indices
}

// Consume the longest ready prefix of a bundle.  Once one lane is not ready
// all later lanes are presented again, even if ready, so that renaming
// happens in program order.
func (p *Simulator) consume(indices []uint, results []rename.Result) []Lane {
	var (
		lanes    = make([]Lane, len(indices))
		consumed = true
	)
	//
	for i, index := range indices {
		insn := p.program[index]
		consumed = consumed && results[i].Ready
		lanes[i] = Lane{index, insn, results[i], consumed}
		//
		if consumed {
			p.tracker.Insert(Entry{index, insn.Dst, results[i].PriorPhysDst, p.tick + insn.Latency})
			p.pc++
		} else {
			p.replays++
		}
	}
	//
	return lanes
}
