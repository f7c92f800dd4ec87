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
	"runtime/debug"

	"github.com/consensys/go-renamer/pkg/util/termio"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is filled when building with make, but *not* when installing via "go
// install".
var Version string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "renamer",
	Short: "A multi-issue register renaming engine.",
	Long:  "A multi-issue register renaming engine, along with tools for simulating and fuzzing it.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		configureLogging(GetFlag(cmd, "verbose"))
	},
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "version") {
			fmt.Print("renamer ")
			if Version != "" {
				// Built via "make"
				fmt.Printf("%s", Version)
			} else if info, ok := debug.ReadBuildInfo(); ok {
				// Built via "go install"
				fmt.Printf("%s", info.Main.Version)
			} else {
				// Unknown, perhaps "go run"
				fmt.Printf("(unknown version)")
			}
			fmt.Println()
		} else {
			fmt.Println(cmd.UsageString())
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// Configure log level and formatting.  Colours are only used when writing to a
// terminal.
func configureLogging(verbose bool) {
	var tty = termio.NewTerminal(os.Stderr).IsTerminal()
	//
	log.SetFormatter(&log.TextFormatter{DisableColors: !tty, ForceColors: tty, DisableTimestamp: true})
	//
	if verbose {
		log.SetLevel(log.DebugLevel)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "Report version of this executable")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	rootCmd.PersistentFlags().Uint("arch-regs", 0, "number of architectural registers")
	rootCmd.PersistentFlags().Uint("phys-regs", 0, "number of physical registers")
	rootCmd.PersistentFlags().UintP("issue-width", "w", 0, "number of lanes per bundle")
	rootCmd.PersistentFlags().String("discipline", "", "free pool discipline (stack or scan)")
	rootCmd.PersistentFlags().Bool("checked", false, "reject commits of registers not awaiting commit")
}
