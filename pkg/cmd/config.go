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
	"github.com/consensys/go-renamer/pkg/rename"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/xyproto/env/v2"
)

// Environment variables which override the configuration given in a workload
// file, and can themselves be overridden on the command line.
const (
	ENV_ARCH_REGS   = "RENAMER_ARCH_REGS"
	ENV_PHYS_REGS   = "RENAMER_PHYS_REGS"
	ENV_ISSUE_WIDTH = "RENAMER_ISSUE_WIDTH"
	ENV_DISCIPLINE  = "RENAMER_DISCIPLINE"
	ENV_CHECKED     = "RENAMER_CHECKED"
)

// Apply environment and then command-line overrides to a base configuration.
// Only flags explicitly given on the command line take effect.
func resolveConfig(cmd *cobra.Command, base rename.Config) rename.Config {
	var cfg = applyEnvironment(base)
	//
	cmd.Flags().Visit(func(flag *pflag.Flag) {
		switch flag.Name {
		case "arch-regs":
			cfg.ArchRegs = GetUint(cmd, flag.Name)
		case "phys-regs":
			cfg.PhysRegs = GetUint(cmd, flag.Name)
		case "issue-width":
			cfg.IssueWidth = GetUint(cmd, flag.Name)
		case "discipline":
			cfg.Discipline = rename.Discipline(GetString(cmd, flag.Name))
		case "checked":
			cfg.Checked = GetFlag(cmd, flag.Name)
		}
	})
	//
	log.Debugf("using configuration %s", cfg.String())
	//
	return cfg
}

func applyEnvironment(cfg rename.Config) rename.Config {
	// Refresh cached environment
	env.Load()
	//
	if env.Has(ENV_ARCH_REGS) {
		cfg.ArchRegs = envUint(ENV_ARCH_REGS, cfg.ArchRegs)
	}
	//
	if env.Has(ENV_PHYS_REGS) {
		cfg.PhysRegs = envUint(ENV_PHYS_REGS, cfg.PhysRegs)
	}
	//
	if env.Has(ENV_ISSUE_WIDTH) {
		cfg.IssueWidth = envUint(ENV_ISSUE_WIDTH, cfg.IssueWidth)
	}
	//
	if env.Has(ENV_DISCIPLINE) {
		cfg.Discipline = rename.Discipline(env.Str(ENV_DISCIPLINE))
	}
	//
	if env.Has(ENV_CHECKED) {
		cfg.Checked = env.Bool(ENV_CHECKED)
	}
	//
	return cfg
}

func envUint(name string, dflt uint) uint {
	if n := env.Int(name, int(dflt)); n >= 0 {
		return uint(n)
	}
	//
	log.Warnf("ignoring negative %s", name)
	//
	return dflt
}
