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
package termio

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// TERM_RED represents red
const TERM_RED = uint(1)

// TERM_GREEN represents green
const TERM_GREEN = uint(2)

// TERM_YELLOW represents yellow
const TERM_YELLOW = uint(3)

// Terminal describes an output stream, which may or may not be attached to a
// terminal.
type Terminal struct {
	// file descriptor for output.
	fd int
	// Whether output is a terminal (and, hence, accepts escape codes).
	tty bool
}

// NewTerminal determines whether a given file is attached to a terminal.
func NewTerminal(file *os.File) Terminal {
	fd := int(file.Fd())
	//
	return Terminal{fd, term.IsTerminal(fd)}
}

// IsTerminal checks whether output is attached to a terminal.
func (t Terminal) IsTerminal() bool {
	return t.tty
}

// Width returns the width of the terminal, or the given fallback if output is
// not a terminal (or its size cannot be determined).
func (t Terminal) Width(fallback uint) uint {
	if !t.tty {
		return fallback
	}
	//
	w, _, err := term.GetSize(t.fd)
	//
	if err != nil || w <= 0 {
		return fallback
	}
	//
	return uint(w)
}

// Colour wraps some text in an escape setting its foreground colour, provided
// output is a terminal.
func (t Terminal) Colour(text string, col uint) string {
	if !t.tty {
		return text
	}
	//
	return fmt.Sprintf("\033[%dm%s\033[0m", 30+col, text)
}
