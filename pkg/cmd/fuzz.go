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
	"github.com/consensys/go-renamer/pkg/util"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var fuzzCmd = &cobra.Command{
	Use:   "fuzz [flags]",
	Short: "Simulate randomly generated workloads.",
	Long: `Simulate randomly generated workloads in checked mode, checking engine
	invariants after every tick.  Stops at the first failure.`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			count = GetUint(cmd, "count")
			seed  = GetUint64(cmd, "seed")
			cfg   = resolveConfig(cmd, rename.DefaultConfig())
			stats = util.NewPerfStats()
		)
		//
		ticks, err := fuzzWorkloads(cfg, count, GetUint(cmd, "length"), seed, GetUint(cmd, "max-ticks"))
		if err != nil {
			log.Error(err)
			os.Exit(1)
		}
		//
		stats.Log("fuzzing", ticks)
		fmt.Printf("%d workloads passed (%d ticks)\n", count, ticks)
	},
}

// Simulate count random workloads of a given length in checked mode, with
// dependency splitting alternately on and off.  Returns the total number of
// ticks simulated, or an error for the first workload which failed.
func fuzzWorkloads(cfg rename.Config, count, length uint, seed uint64, maxTicks uint) (uint, error) {
	var ticks uint
	// Fuzzing always validates commits
	cfg.Checked = true
	//
	for i := range count {
		workload := sim.RandomWorkload(cfg, length, seed+uint64(i))
		options := sim.Options{SplitOnDependency: i%2 == 0, Check: true}
		//
		simulator, err := buildSimulator(cfg, workload.Program, options)
		if err != nil {
			return ticks, err
		}
		//
		summary, err := simulator.Run(maxTicks)
		if err != nil {
			return ticks, fmt.Errorf("workload %d (seed %d): %w", i, seed+uint64(i), err)
		}
		//
		log.Debugf("workload %d: %d ticks, ipc %0.2f", i, summary.Ticks, summary.IPC())
		//
		ticks += summary.Ticks
	}
	//
	return ticks, nil
}

func init() {
	rootCmd.AddCommand(fuzzCmd)
	fuzzCmd.Flags().Uint("count", 100, "number of workloads")
	fuzzCmd.Flags().Uint("length", 1000, "instructions per workload")
	fuzzCmd.Flags().Uint64("seed", 0, "seed of first workload")
	fuzzCmd.Flags().Uint("max-ticks", 1000000, "give up on a workload after this many ticks")
}
