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
	"fmt"
	"slices"
	"strings"
)

// Table is the mapping store, recording the physical register currently
// assigned to each architectural register.  Entry 0 is always 0.
type Table struct {
	entries []uint
}

// NewTable constructs an identity mapping over n architectural registers.
func NewTable(n uint) *Table {
	var table = &Table{make([]uint, n)}
	//
	table.Reset()
	//
	return table
}

// Reset this table back to the identity mapping.
func (p *Table) Reset() {
	for i := range p.entries {
		p.entries[i] = uint(i)
	}
}

// Lookup the physical register currently mapped to a given architectural
// register.
func (p *Table) Lookup(arch uint) uint {
	if arch == 0 {
		return 0
	}
	//
	return p.entries[arch]
}

// Entries returns a copy of the underlying mapping, indexed by architectural
// register.
func (p *Table) Entries() []uint {
	return slices.Clone(p.entries)
}

// Apply a set of updates to this table.  Writes to register 0 are discarded.
func (p *Table) Apply(updates []Update) {
	for _, u := range updates {
		if u.Arch != 0 {
			p.entries[u.Arch] = u.Phys
		}
	}
}

func (p *Table) String() string {
	var builder strings.Builder
	//
	builder.WriteString("{")
	//
	for i, phys := range p.entries {
		if i != 0 {
			builder.WriteString(", ")
		}
		//
		builder.WriteString(fmt.Sprintf("r%d:p%d", i, phys))
	}
	//
	builder.WriteString("}")
	//
	return builder.String()
}

// Update records a single write to the mapping store, produced by a successful
// allocation of a physical register to an architectural destination.
type Update struct {
	Arch uint
	Phys uint
}
