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
	"fmt"
	"path"
	"testing"

	"github.com/consensys/go-renamer/pkg/rename"
)

// Determines the (relative) location of the test directory.
const TestDir = "../../testdata/sim"

func Test_Sim_Independent(t *testing.T) {
	summary := check_Workload(t, "independent", DefaultOptions())
	check_Summary(t, summary, 2, 4, 0)
}

func Test_Sim_Chain_00(t *testing.T) {
	summary := check_Workload(t, "chain", DefaultOptions())
	check_Summary(t, summary, 6, 5, 0)
}

func Test_Sim_Chain_01(t *testing.T) {
	var options = DefaultOptions()
	//
	options.SplitOnDependency = false
	summary := check_Workload(t, "chain", options)
	check_Summary(t, summary, 3, 5, 0)
}

func Test_Sim_Pressure(t *testing.T) {
	summary := check_Workload(t, "pressure", DefaultOptions())
	check_Summary(t, summary, 13, 8, 15)
	//
	if summary.Engine.RejectedCommits != 0 || summary.Engine.Committed != 7 {
		t.Fatalf("unexpected engine stats %v", summary.Engine)
	}
}

func Test_Sim_Record(t *testing.T) {
	var options = DefaultOptions()
	//
	options.Record = true
	workload := read_Workload(t, "independent")
	simulator := new_Simulator(t, workload, options)
	//
	if _, err := simulator.Run(100); err != nil {
		t.Fatal(err)
	}
	//
	records := simulator.Records()
	//
	if len(records) != 2 || len(records[0].Lanes) != 4 || len(records[1].Retired) != 4 {
		t.Fatalf("unexpected records %v", records)
	} else if records[0].Free != 28 || records[1].Free != 32 {
		t.Fatalf("unexpected free counts %d, %d", records[0].Free, records[1].Free)
	}
	//
	for i, lane := range records[0].Lanes {
		if !lane.Consumed || lane.Index != uint(i) || lane.Result.PriorPhysDst != uint(10+i) {
			t.Fatalf("unexpected lane %v", lane)
		}
	}
}

func Test_Sim_Window(t *testing.T) {
	var options = DefaultOptions()
	// One instruction in flight at a time
	options.Window = 1
	summary := check_Workload(t, "independent", options)
	check_Summary(t, summary, 5, 4, 0)
}

func Test_Sim_GiveUp(t *testing.T) {
	workload := read_Workload(t, "pressure")
	simulator := new_Simulator(t, workload, DefaultOptions())
	//
	if _, err := simulator.Run(3); err == nil {
		t.Fatalf("expected simulation to give up")
	}
}

func Test_Sim_Invalid(t *testing.T) {
	engine, _ := rename.New(rename.DefaultConfig())
	//
	if _, err := New(engine, []Instruction{{SrcA: 32, Latency: 1}}, DefaultOptions()); err == nil {
		t.Fatalf("accepted out-of-range register")
	} else if _, err := New(engine, []Instruction{{Dst: 3}}, DefaultOptions()); err == nil {
		t.Fatalf("accepted zero latency")
	}
}

func Test_Sim_Random_00(t *testing.T) {
	check_Random(t, rename.Config{ArchRegs: 8, PhysRegs: 9, IssueWidth: 2}, 200, 10)
}

func Test_Sim_Random_01(t *testing.T) {
	check_Random(t, rename.Config{ArchRegs: 32, PhysRegs: 64, IssueWidth: 4}, 500, 10)
}

func Test_Sim_Random_02(t *testing.T) {
	check_Random(t, rename.Config{ArchRegs: 16, PhysRegs: 20, IssueWidth: 8}, 500, 10)
}

func TestSlow_Sim_Random_03(t *testing.T) {
	check_Random(t, rename.Config{ArchRegs: 64, PhysRegs: 96, IssueWidth: 6}, 10000, 100)
}

// ===================================================================
// Test Helpers
// ===================================================================

func read_Workload(t *testing.T, name string) Workload {
	workload, err := ReadWorkload(path.Join(TestDir, fmt.Sprintf("%s.yaml", name)))
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	return workload
}

func new_Simulator(t *testing.T, workload Workload, options Options) *Simulator {
	engine, err := rename.New(workload.Config)
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	simulator, err := New(engine, workload.Program, options)
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	return simulator
}

func check_Workload(t *testing.T, name string, options Options) Summary {
	options.Check = true
	simulator := new_Simulator(t, read_Workload(t, name), options)
	summary, err := simulator.Run(1000)
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	return summary
}

func check_Summary(t *testing.T, summary Summary, ticks, instructions, replays uint) {
	if summary.Ticks != ticks || summary.Instructions != instructions || summary.Replays != replays {
		t.Fatalf("expected %d ticks, %d instructions and %d replays, got %d, %d and %d", ticks, instructions,
			replays, summary.Ticks, summary.Instructions, summary.Replays)
	}
}

// Run random workloads under every combination of discipline and splitting,
// in checked mode with invariant checking after every tick.
func check_Random(t *testing.T, cfg rename.Config, length uint, count uint64) {
	for seed := range count {
		for _, d := range []rename.Discipline{rename.STACK, rename.SCAN} {
			for _, split := range []bool{true, false} {
				name := fmt.Sprintf("seed=%d/%s/split=%t", seed, d, split)
				//
				t.Run(name, func(t *testing.T) {
					cfg.Discipline = d
					cfg.Checked = true
					workload := RandomWorkload(cfg, length, seed)
					options := Options{SplitOnDependency: split, Check: true}
					simulator := new_Simulator(t, workload, options)
					//
					summary, err := simulator.Run(100 * length)
					//
					if err != nil {
						t.Fatal(err)
					} else if summary.Instructions != length {
						t.Fatalf("renamed %d of %d instructions", summary.Instructions, length)
					}
				})
			}
		}
	}
}
