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
)

// Discipline determines the order in which free physical registers are handed
// out by the pool.  No external behaviour depends on which id is chosen, only
// that it is free and unique within a bundle.
type Discipline string

const (
	// STACK hands out the most recently released register first.
	STACK Discipline = "stack"
	// SCAN hands out the lowest numbered free register first.
	SCAN Discipline = "scan"
)

// Config captures the construction-time constants of an engine.
type Config struct {
	// Number of architectural registers.  Register 0 is hardwired to physical
	// register 0.
	ArchRegs uint `yaml:"arch_regs"`
	// Number of physical registers, which must exceed the number of
	// architectural registers.
	PhysRegs uint `yaml:"phys_regs"`
	// Maximum number of lanes in a rename (or commit) bundle.
	IssueWidth uint `yaml:"issue_width"`
	// Order in which free registers are drawn from the pool.
	Discipline Discipline `yaml:"discipline"`
	// Checked enables validation of commit requests against the set of
	// superseded registers which have not yet been committed.
	Checked bool `yaml:"checked"`
}

// DefaultConfig returns a 32/64 register, 4-wide configuration.
func DefaultConfig() Config {
	return Config{
		ArchRegs:   32,
		PhysRegs:   64,
		IssueWidth: 4,
		Discipline: STACK,
		Checked:    false,
	}
}

// Headroom returns the number of physical registers available for renaming,
// which is also the capacity of the free pool.
func (p Config) Headroom() uint {
	return p.PhysRegs - p.ArchRegs
}

// Validate checks that this configuration describes a realisable engine.
func (p Config) Validate() error {
	switch {
	case p.ArchRegs == 0:
		return errors.New("at least one architectural register required")
	case p.PhysRegs <= p.ArchRegs:
		return fmt.Errorf("physical registers (%d) must exceed architectural registers (%d)", p.PhysRegs, p.ArchRegs)
	case p.IssueWidth == 0:
		return errors.New("issue width must be at least one")
	}
	//
	switch p.Discipline {
	case STACK, SCAN:
		return nil
	case "":
		return errors.New("missing pool discipline")
	default:
		return fmt.Errorf("unknown pool discipline \"%s\"", p.Discipline)
	}
}

func (p Config) String() string {
	return fmt.Sprintf("arch=%d phys=%d width=%d pool=%s checked=%t", p.ArchRegs, p.PhysRegs, p.IssueWidth,
		p.Discipline, p.Checked)
}
