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
	"testing"

	"github.com/consensys/go-renamer/pkg/rename"
	"github.com/spf13/cobra"
)

func Test_Config_Environment(t *testing.T) {
	t.Setenv(ENV_PHYS_REGS, "96")
	t.Setenv(ENV_DISCIPLINE, "scan")
	t.Setenv(ENV_CHECKED, "true")
	//
	cfg := applyEnvironment(rename.DefaultConfig())
	//
	if cfg.ArchRegs != 32 || cfg.PhysRegs != 96 || cfg.Discipline != rename.SCAN || !cfg.Checked {
		t.Fatalf("unexpected configuration %s", cfg.String())
	}
}

func Test_Config_Flags(t *testing.T) {
	t.Setenv(ENV_PHYS_REGS, "96")
	t.Setenv(ENV_ISSUE_WIDTH, "2")
	//
	cmd := newConfigCommand()
	//
	if err := cmd.ParseFlags([]string{"--phys-regs", "128", "--arch-regs=16"}); err != nil {
		t.Fatal(err)
	}
	// Flags override environment, which overrides the base.
	cfg := resolveConfig(cmd, rename.DefaultConfig())
	//
	if cfg.ArchRegs != 16 || cfg.PhysRegs != 128 || cfg.IssueWidth != 2 || cfg.Discipline != rename.STACK {
		t.Fatalf("unexpected configuration %s", cfg.String())
	}
}

func Test_Config_Unset(t *testing.T) {
	cmd := newConfigCommand()
	//
	if err := cmd.ParseFlags(nil); err != nil {
		t.Fatal(err)
	}
	// Flag defaults do not override the base.
	if cfg := resolveConfig(cmd, rename.DefaultConfig()); cfg != rename.DefaultConfig() {
		t.Fatalf("unexpected configuration %s", cfg.String())
	}
}

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().Uint("arch-regs", 0, "")
	cmd.Flags().Uint("phys-regs", 0, "")
	cmd.Flags().Uint("issue-width", 0, "")
	cmd.Flags().String("discipline", "", "")
	cmd.Flags().Bool("checked", false, "")
	//
	return cmd
}
