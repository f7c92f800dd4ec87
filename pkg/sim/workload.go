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
	"math/rand/v2"
	"os"

	"github.com/consensys/go-renamer/pkg/rename"
	"gopkg.in/yaml.v3"
)

// Instruction is the architectural view of a single instruction, as produced
// by a decoder.  Register 0 as a destination means the instruction writes
// nothing.
type Instruction struct {
	SrcA uint `yaml:"src_a"`
	SrcB uint `yaml:"src_b"`
	Dst  uint `yaml:"dst"`
	// Number of ticks between rename and completion.
	Latency uint `yaml:"latency,omitempty"`
}

func (p Instruction) String() string {
	return fmt.Sprintf("r%d = r%d, r%d", p.Dst, p.SrcA, p.SrcB)
}

// Workload is a program together with the engine configuration it is
// intended to run on.
type Workload struct {
	Config  rename.Config `yaml:"config"`
	Program []Instruction `yaml:"program"`
}

// ReadWorkload reads a workload from a YAML file.
func ReadWorkload(filename string) (Workload, error) {
	bytes, err := os.ReadFile(filename)
	//
	if err != nil {
		return Workload{}, err
	}
	//
	workload, err := ParseWorkload(bytes)
	//
	if err != nil {
		return Workload{}, fmt.Errorf("%s: %w", filename, err)
	}
	//
	return workload, nil
}

// ParseWorkload parses a workload from YAML.  Any configuration fields not
// given take their default values, and any latency not given is one tick.
func ParseWorkload(bytes []byte) (Workload, error) {
	var workload = Workload{Config: rename.DefaultConfig()}
	//
	if err := yaml.Unmarshal(bytes, &workload); err != nil {
		return Workload{}, err
	}
	//
	for i := range workload.Program {
		if workload.Program[i].Latency == 0 {
			workload.Program[i].Latency = 1
		}
	}
	//
	return workload, nil
}

// RandomWorkload generates a program of n instructions whose operands are drawn
// uniformly from the given configuration's architectural registers.  Roughly
// one in eight instructions writes no register.
func RandomWorkload(cfg rename.Config, n uint, seed uint64) Workload {
	var (
		rng     = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		program = make([]Instruction, n)
	)
	//
	for i := range program {
		program[i] = Instruction{
			SrcA:    rng.UintN(cfg.ArchRegs),
			SrcB:    rng.UintN(cfg.ArchRegs),
			Latency: 1 + rng.UintN(4),
		}
		//
		if rng.UintN(8) != 0 {
			program[i].Dst = rng.UintN(cfg.ArchRegs)
		}
	}
	//
	return Workload{cfg, program}
}

// Validate checks every instruction of a program names only registers of the
// given configuration.
func Validate(cfg rename.Config, program []Instruction) error {
	for i, insn := range program {
		if insn.SrcA >= cfg.ArchRegs || insn.SrcB >= cfg.ArchRegs || insn.Dst >= cfg.ArchRegs {
			return fmt.Errorf("instruction %d (%s) uses register beyond r%d", i, insn.String(), cfg.ArchRegs-1)
		} else if insn.Latency == 0 {
			return fmt.Errorf("instruction %d (%s) has zero latency", i, insn.String())
		}
	}
	//
	return nil
}
