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
	"os"

	"github.com/consensys/go-renamer/pkg/rename"
	"github.com/consensys/go-renamer/pkg/sim"
	"github.com/consensys/go-renamer/pkg/util/termio"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] workload_file",
	Short: "Simulate renaming a given workload.",
	Long: `Simulate renaming a given workload, retiring instructions in order.
	Workloads are given as YAML files holding an (optional) engine
	configuration and a program.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		workload, err := sim.ReadWorkload(args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		options := sim.Options{
			SplitOnDependency: !GetFlag(cmd, "no-split"),
			Window:            GetUint(cmd, "window"),
			Check:             GetFlag(cmd, "check"),
			Record:            GetFlag(cmd, "trace"),
		}
		//
		cfg := resolveConfig(cmd, workload.Config)
		simulator := newSimulator(cfg, workload.Program, options)
		summary, err := simulator.Run(GetUint(cmd, "max-ticks"))
		//
		if options.Record {
			printTrace(os.Stdout, termio.NewTerminal(os.Stdout), simulator.Records())
		}
		//
		printSummary(summary)
		//
		if err != nil {
			log.Error(err)
			os.Exit(1)
		}
	},
}

// Construct an engine and simulator, or exit if either cannot be constructed.
func newSimulator(cfg rename.Config, program []sim.Instruction, options sim.Options) *sim.Simulator {
	simulator, err := buildSimulator(cfg, program, options)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return simulator
}

func buildSimulator(cfg rename.Config, program []sim.Instruction, options sim.Options) (*sim.Simulator, error) {
	engine, err := rename.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	//
	return sim.New(engine, program, options)
}

func printSummary(summary sim.Summary) {
	stats := summary.Engine
	//
	fmt.Printf("ticks: %d, instructions: %d, ipc: %0.2f, replays: %d\n", summary.Ticks, summary.Instructions,
		summary.IPC(), summary.Replays)
	fmt.Printf("renamed: %d, stalled: %d, committed: %d, ignored: %d, rejected: %d\n", stats.Renamed,
		stats.Stalled, stats.Committed, stats.IgnoredCommits, stats.RejectedCommits)
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("trace", false, "print every tick")
	runCmd.Flags().Bool("check", true, "check engine invariants after every tick")
	runCmd.Flags().Bool("no-split", false, "allow reads of registers written earlier in the same bundle")
	runCmd.Flags().Uint("window", 0, "maximum instructions awaiting retirement (0 for unbounded)")
	runCmd.Flags().Uint("max-ticks", 1000000, "give up after this many ticks")
}
