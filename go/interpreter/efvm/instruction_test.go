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

import "testing"

func TestInstruction_String(t *testing.T) {
	instruction := Instruction{opcode: STOP, arg: 0x0000}
	if got, want := instruction.String(), "STOP"; got != want {
		t.Errorf("Instruction.String() = %q, want %q", got, want)
	}

	instruction = Instruction{opcode: PUSH1, arg: 0x0001}
	if got, want := instruction.String(), "PUSH1 0x0001"; got != want {
		t.Errorf("Instruction.String() = %q, want %q", got, want)
	}

	instruction = Instruction{opcode: RJUMP, arg: 0xfffe}
	if got, want := instruction.String(), "RJUMP 0xfffe"; got != want {
		t.Errorf("Instruction.String() = %q, want %q", got, want)
	}

	// The argument of instructions without immediate data is not printed.
	instruction = Instruction{opcode: EXTCALL, arg: 0x1234}
	if got, want := instruction.String(), "EXTCALL"; got != want {
		t.Errorf("Instruction.String() = %q, want %q", got, want)
	}
}

func TestCode_String(t *testing.T) {
	code := Code{
		Instruction{opcode: STOP, arg: 0x0000},
		Instruction{opcode: PUSH1, arg: 0x0001},
		Instruction{opcode: DATA, arg: 0xbeef},
	}
	want := "0x0000: STOP\n0x0001: PUSH1 0x0001\n0x0002: DATA 0xbeef\n"
	if got := code.String(); got != want {
		t.Errorf("Code.String() = %q, want %q", got, want)
	}
}
