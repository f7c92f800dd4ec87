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
	"bytes"
	"strings"
	"testing"

	"github.com/consensys/go-renamer/pkg/rename"
	"github.com/consensys/go-renamer/pkg/sim"
	"github.com/consensys/go-renamer/pkg/util/termio"
)

func Test_Trace_Lane_00(t *testing.T) {
	lane := traceLane(3, 5, true)
	check_Lane(t, lane, "#3 p33 = p1, p40 (p5)")
}

func Test_Trace_Lane_01(t *testing.T) {
	lane := traceLane(4, 0, true)
	check_Lane(t, lane, "#4 _ = p1, p40")
}

func Test_Trace_Lane_02(t *testing.T) {
	lane := traceLane(5, 5, false)
	check_Lane(t, lane, "#5 r5 = r1, r2: replay")
}

func Test_Trace_Width(t *testing.T) {
	// width, lanes per line
	widths := [][2]uint{{0, 1}, {47, 1}, {48, 1}, {78, 1}, {79, 2}, {120, 3}, {140, 3}, {141, 4}}
	//
	for _, w := range widths {
		if n := lanesPerLine(w[0]); n != w[1] {
			t.Errorf("width %d: expected %d lanes per line, got %d", w[0], w[1], n)
		}
	}
}

func Test_Trace_Print(t *testing.T) {
	var (
		out    bytes.Buffer
		record = sim.TickRecord{
			Tick:    1,
			Lanes:   []sim.Lane{traceLane(0, 1, true), traceLane(1, 2, true), traceLane(2, 0, true), traceLane(3, 4, false)},
			Retired: []sim.Entry{{Index: 0, Dst: 1, Prior: 1, Done: 1}},
		}
	)
	// Not a terminal, so no colours and the fallback width
	printTrace(&out, termio.Terminal{}, []sim.TickRecord{record})
	//
	lines := strings.Split(out.String(), "\n")
	//
	if len(lines) != 3 || lines[2] != "" {
		t.Fatalf("expected two lines, got %q", out.String())
	} else if !strings.HasPrefix(lines[0], "     1   0 free | #0 p33") || len(lines[0]) != prefixWidth+3*(laneWidth+1) {
		t.Errorf("unexpected first line %q", lines[0])
	} else if lines[1] != strings.Repeat(" ", prefixWidth-1)+"| "+pad("#3 r4 = r1, r2: replay")+" retired 1" {
		t.Errorf("unexpected second line %q", lines[1])
	}
}

func traceLane(index, dst uint, consumed bool) sim.Lane {
	return sim.Lane{
		Index:       index,
		Instruction: sim.Instruction{SrcA: 1, SrcB: 2, Dst: dst, Latency: 1},
		Result:      rename.Result{Ready: consumed, PhysSrcA: 1, PhysSrcB: 40, PhysDst: 33, PriorPhysDst: dst},
		Consumed:    consumed,
	}
}

func check_Lane(t *testing.T, lane sim.Lane, expected string) {
	actual := formatLane(termio.Terminal{}, lane)
	//
	if len(actual) != laneWidth {
		t.Errorf("lane %q not padded to %d", actual, laneWidth)
	} else if strings.TrimRight(actual, " ") != expected {
		t.Errorf("expected %q, got %q", expected, actual)
	}
}
