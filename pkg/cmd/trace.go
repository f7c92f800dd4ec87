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
package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/consensys/go-renamer/pkg/sim"
	"github.com/consensys/go-renamer/pkg/util/termio"
)

// Width of a single lane column.
const laneWidth = 30

// Width of the tick and free count prefix, including the separator.
const prefixWidth = 17

// Print one line per tick, with one column per lane.  As many lanes are shown
// per line as fit the terminal, with any remainder wrapped onto following
// lines.
func printTrace(out io.Writer, terminal termio.Terminal, records []sim.TickRecord) {
	var perLine = lanesPerLine(terminal.Width(120))
	//
	for _, record := range records {
		var builder strings.Builder
		//
		builder.WriteString(fmt.Sprintf("%6d ", record.Tick))
		//
		if free := fmt.Sprintf("%3d free", record.Free); record.Free == 0 {
			builder.WriteString(terminal.Colour(free, termio.TERM_YELLOW))
		} else {
			builder.WriteString(free)
		}
		//
		builder.WriteString(" |")
		//
		for i, lane := range record.Lanes {
			if i != 0 && uint(i)%perLine == 0 {
				builder.WriteString("\n")
				builder.WriteString(strings.Repeat(" ", prefixWidth-1))
				builder.WriteString("|")
			}
			//
			builder.WriteString(" ")
			builder.WriteString(formatLane(terminal, lane))
		}
		//
		if n := len(record.Retired); n > 0 {
			builder.WriteString(terminal.Colour(fmt.Sprintf(" retired %d", n), termio.TERM_GREEN))
		}
		//
		fmt.Fprintln(out, builder.String())
	}
}

// Determine how many lane columns (each preceded by a space) fit on a line of
// the given width.  At least one lane is always shown.
func lanesPerLine(width uint) uint {
	if width >= prefixWidth+laneWidth+1 {
		return (width - prefixWidth) / (laneWidth + 1)
	}
	//
	return 1
}

func formatLane(terminal termio.Terminal, lane sim.Lane) string {
	var (
		insn = lane.Instruction
		r    = lane.Result
		text string
	)
	//
	switch {
	case !lane.Consumed:
		text = fmt.Sprintf("#%d %s: replay", lane.Index, insn.String())
		text = terminal.Colour(pad(text), termio.TERM_RED)
	case insn.Dst == 0:
		text = pad(fmt.Sprintf("#%d _ = p%d, p%d", lane.Index, r.PhysSrcA, r.PhysSrcB))
	default:
		text = pad(fmt.Sprintf("#%d p%d = p%d, p%d (p%d)", lane.Index, r.PhysDst, r.PhysSrcA, r.PhysSrcB,
			r.PriorPhysDst))
	}
	//
	return text
}

func pad(text string) string {
	if len(text) >= laneWidth {
		return text
	}
	//
	return text + strings.Repeat(" ", laneWidth-len(text))
}
