// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package processor

import (
	"github.com/Fantom-foundation/Turandot/go/turandot"
	"github.com/Fantom-foundation/Turandot/go/turandot/vm"
)

const sufficientGas = turandot.Gas(1_000_000)

// buildContainer wraps the given code into a minimal structured container
// with a single code section, the given data section, and a type section
// declaring a non-returning entry point with the given maximum stack height.
func buildContainer(maxStackHeight int, code, data []byte) turandot.Code {
	u16 := func(value int) []byte {
		return []byte{byte(value >> 8), byte(value)}
	}

	container := []byte{0xEF, 0x00, 0x01}
	container = append(container, 0x01)
	container = append(container, u16(4)...)
	container = append(container, 0x02)
	container = append(container, u16(1)...)
	container = append(container, u16(len(code))...)
	container = append(container, 0x04)
	container = append(container, u16(len(data))...)
	container = append(container, 0x00)
	container = append(container, 0x00, 0x80)
	container = append(container, u16(maxStackHeight)...)
	container = append(container, code...)
	container = append(container, data...)
	return container
}

// addressWord pads the given address to a 32-byte word, as stored in data
// sections and loaded by DATALOADN.
func addressWord(address turandot.Address) []byte {
	word := make([]byte, 32)
	copy(word[12:], address[:])
	return word
}

// extCallVariant describes one member of the external call instruction
// family and the frame rules it applies to the callee.
type extCallVariant struct {
	op             vm.OpCode
	hasValue       bool // < the instruction has a value operand
	transfersValue bool // < a successful call moves the value to the target
}

func extCallVariants() map[string]extCallVariant {
	return map[string]extCallVariant{
		"extCall":         {op: vm.EXTCALL, hasValue: true, transfersValue: true},
		"extDelegateCall": {op: vm.EXTDELEGATECALL},
		"extStaticCall":   {op: vm.EXTSTATICCALL},
	}
}

// callAndForwardOutput produces the code of a contract issuing the given
// call to the address in the first data section word, forwarding the value
// if the instruction has a value operand. The callee's output is passed on
// as the caller's own output.
func callAndForwardOutput(variant extCallVariant, value byte) []byte {
	var code []byte
	if variant.hasValue {
		code = append(code, byte(vm.PUSH1), value)
	}
	code = append(code,
		byte(vm.PUSH0), // < input size
		byte(vm.PUSH0), // < input offset
		byte(vm.DATALOADN), 0x00, 0x00,
		byte(variant.op),
		byte(vm.RETURNDATASIZE),
		byte(vm.PUSH0),
		byte(vm.PUSH0),
		byte(vm.RETURNDATACOPY),
		byte(vm.RETURNDATASIZE),
		byte(vm.PUSH0),
		byte(vm.RETURN),
	)
	return code
}

// returnConstant produces the code of a contract returning the given byte as
// a 32-byte word.
func returnConstant(value byte) []byte {
	return []byte{
		byte(vm.PUSH1), value,
		byte(vm.PUSH0),
		byte(vm.MSTORE),
		byte(vm.PUSH1), byte(32),
		byte(vm.PUSH0),
		byte(vm.RETURN),
	}
}

// word returns the given byte as a 32-byte big-endian word.
func word(value byte) []byte {
	res := make([]byte, 32)
	res[31] = value
	return res
}
