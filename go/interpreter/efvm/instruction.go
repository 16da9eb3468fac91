// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package efvm

import (
	"fmt"
	"strings"
)

// Instruction is a single instruction of the interpreter's internal code
// format. Each instruction comprises a 16-bit op code and a 16-bit argument.
// Instructions with more than 2 bytes of immediate data spill the rest into
// subsequent DATA pseudo instructions.
type Instruction struct {
	opcode OpCode // the operation to be executed
	arg    uint16 // an operation argument, if required
}

// Code is the internal representation of a converted code section.
type Code []Instruction

func (i Instruction) String() string {
	if i.opcode.HasArgument() {
		return fmt.Sprintf("%v 0x%04x", i.opcode, i.arg)
	}
	return i.opcode.String()
}

func (c Code) String() string {
	var builder strings.Builder
	for i, instruction := range c {
		builder.WriteString(fmt.Sprintf("0x%04x: %v\n", i, instruction))
	}
	return builder.String()
}
