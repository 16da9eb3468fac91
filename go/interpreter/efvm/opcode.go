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

	"github.com/Fantom-foundation/Turandot/go/turandot/vm"
)

// OpCode is an alias type for op codes owning 2 bytes. It is used to
// represent both the single-byte container instructions and the internal
// instructions of the converted code format.
type OpCode uint16

// opCodeMask defines the (minimal) set of bits required to cover all
// op codes. It is used to improve the performance of opcode-indexed lookup
// tables by facilitating efficient range checks.
// NOTE: this constant needs to be updated when adding new opcodes beyond the
// current limit.
const opCodeMask = 0x1ff

const numOpCodes = opCodeMask + 1

const (
	// Stack operations
	POP   = OpCode(vm.POP)
	PUSH0 = OpCode(vm.PUSH0)

	PUSH1  = OpCode(vm.PUSH1)
	PUSH2  = OpCode(vm.PUSH2)
	PUSH3  = OpCode(vm.PUSH3)
	PUSH4  = OpCode(vm.PUSH4)
	PUSH5  = OpCode(vm.PUSH5)
	PUSH6  = OpCode(vm.PUSH6)
	PUSH7  = OpCode(vm.PUSH7)
	PUSH8  = OpCode(vm.PUSH8)
	PUSH9  = OpCode(vm.PUSH9)
	PUSH10 = OpCode(vm.PUSH10)
	PUSH11 = OpCode(vm.PUSH11)
	PUSH12 = OpCode(vm.PUSH12)
	PUSH13 = OpCode(vm.PUSH13)
	PUSH14 = OpCode(vm.PUSH14)
	PUSH15 = OpCode(vm.PUSH15)
	PUSH16 = OpCode(vm.PUSH16)
	PUSH17 = OpCode(vm.PUSH17)
	PUSH18 = OpCode(vm.PUSH18)
	PUSH19 = OpCode(vm.PUSH19)
	PUSH20 = OpCode(vm.PUSH20)
	PUSH21 = OpCode(vm.PUSH21)
	PUSH22 = OpCode(vm.PUSH22)
	PUSH23 = OpCode(vm.PUSH23)
	PUSH24 = OpCode(vm.PUSH24)
	PUSH25 = OpCode(vm.PUSH25)
	PUSH26 = OpCode(vm.PUSH26)
	PUSH27 = OpCode(vm.PUSH27)
	PUSH28 = OpCode(vm.PUSH28)
	PUSH29 = OpCode(vm.PUSH29)
	PUSH30 = OpCode(vm.PUSH30)
	PUSH31 = OpCode(vm.PUSH31)
	PUSH32 = OpCode(vm.PUSH32)

	DUP1  = OpCode(vm.DUP1)
	DUP2  = OpCode(vm.DUP2)
	DUP3  = OpCode(vm.DUP3)
	DUP4  = OpCode(vm.DUP4)
	DUP5  = OpCode(vm.DUP5)
	DUP6  = OpCode(vm.DUP6)
	DUP7  = OpCode(vm.DUP7)
	DUP8  = OpCode(vm.DUP8)
	DUP9  = OpCode(vm.DUP9)
	DUP10 = OpCode(vm.DUP10)
	DUP11 = OpCode(vm.DUP11)
	DUP12 = OpCode(vm.DUP12)
	DUP13 = OpCode(vm.DUP13)
	DUP14 = OpCode(vm.DUP14)
	DUP15 = OpCode(vm.DUP15)
	DUP16 = OpCode(vm.DUP16)

	SWAP1  = OpCode(vm.SWAP1)
	SWAP2  = OpCode(vm.SWAP2)
	SWAP3  = OpCode(vm.SWAP3)
	SWAP4  = OpCode(vm.SWAP4)
	SWAP5  = OpCode(vm.SWAP5)
	SWAP6  = OpCode(vm.SWAP6)
	SWAP7  = OpCode(vm.SWAP7)
	SWAP8  = OpCode(vm.SWAP8)
	SWAP9  = OpCode(vm.SWAP9)
	SWAP10 = OpCode(vm.SWAP10)
	SWAP11 = OpCode(vm.SWAP11)
	SWAP12 = OpCode(vm.SWAP12)
	SWAP13 = OpCode(vm.SWAP13)
	SWAP14 = OpCode(vm.SWAP14)
	SWAP15 = OpCode(vm.SWAP15)
	SWAP16 = OpCode(vm.SWAP16)

	// Memory operations
	MLOAD   = OpCode(vm.MLOAD)
	MSTORE  = OpCode(vm.MSTORE)
	MSTORE8 = OpCode(vm.MSTORE8)
	MSIZE   = OpCode(vm.MSIZE)
	MCOPY   = OpCode(vm.MCOPY)

	// Data section operations
	DATALOAD  = OpCode(vm.DATALOAD)
	DATALOADN = OpCode(vm.DATALOADN)
	DATASIZE  = OpCode(vm.DATASIZE)
	DATACOPY  = OpCode(vm.DATACOPY)

	// Control flow
	STOP     = OpCode(vm.STOP)
	RJUMP    = OpCode(vm.RJUMP)
	RJUMPI   = OpCode(vm.RJUMPI)
	JUMPDEST = OpCode(vm.JUMPDEST)
	RETURN   = OpCode(vm.RETURN)
	REVERT   = OpCode(vm.REVERT)
	INVALID  = OpCode(vm.INVALID)

	// Arithmetic operations
	ADD        = OpCode(vm.ADD)
	MUL        = OpCode(vm.MUL)
	SUB        = OpCode(vm.SUB)
	DIV        = OpCode(vm.DIV)
	SDIV       = OpCode(vm.SDIV)
	MOD        = OpCode(vm.MOD)
	SMOD       = OpCode(vm.SMOD)
	ADDMOD     = OpCode(vm.ADDMOD)
	MULMOD     = OpCode(vm.MULMOD)
	EXP        = OpCode(vm.EXP)
	SIGNEXTEND = OpCode(vm.SIGNEXTEND)

	// Complex function
	KECCAK256 = OpCode(vm.KECCAK256)

	// Comparison operations
	LT     = OpCode(vm.LT)
	GT     = OpCode(vm.GT)
	SLT    = OpCode(vm.SLT)
	SGT    = OpCode(vm.SGT)
	EQ     = OpCode(vm.EQ)
	ISZERO = OpCode(vm.ISZERO)

	// Bit-pattern operations
	AND  = OpCode(vm.AND)
	OR   = OpCode(vm.OR)
	XOR  = OpCode(vm.XOR)
	NOT  = OpCode(vm.NOT)
	BYTE = OpCode(vm.BYTE)
	SHL  = OpCode(vm.SHL)
	SHR  = OpCode(vm.SHR)
	SAR  = OpCode(vm.SAR)

	// Log instructions
	LOG0 = OpCode(vm.LOG0)
	LOG1 = OpCode(vm.LOG1)
	LOG2 = OpCode(vm.LOG2)
	LOG3 = OpCode(vm.LOG3)
	LOG4 = OpCode(vm.LOG4)

	// System instructions
	ADDRESS         = OpCode(vm.ADDRESS)
	BALANCE         = OpCode(vm.BALANCE)
	ORIGIN          = OpCode(vm.ORIGIN)
	CALLER          = OpCode(vm.CALLER)
	CALLVALUE       = OpCode(vm.CALLVALUE)
	CALLDATALOAD    = OpCode(vm.CALLDATALOAD)
	CALLDATASIZE    = OpCode(vm.CALLDATASIZE)
	CALLDATACOPY    = OpCode(vm.CALLDATACOPY)
	GASPRICE        = OpCode(vm.GASPRICE)
	RETURNDATASIZE  = OpCode(vm.RETURNDATASIZE)
	RETURNDATACOPY  = OpCode(vm.RETURNDATACOPY)
	RETURNDATALOAD  = OpCode(vm.RETURNDATALOAD)
	EXTCALL         = OpCode(vm.EXTCALL)
	EXTDELEGATECALL = OpCode(vm.EXTDELEGATECALL)
	EXTSTATICCALL   = OpCode(vm.EXTSTATICCALL)

	// Blockchain instructions
	BLOCKHASH   = OpCode(vm.BLOCKHASH)
	COINBASE    = OpCode(vm.COINBASE)
	TIMESTAMP   = OpCode(vm.TIMESTAMP)
	NUMBER      = OpCode(vm.NUMBER)
	PREVRANDAO  = OpCode(vm.PREVRANDAO)
	GASLIMIT    = OpCode(vm.GASLIMIT)
	CHAINID     = OpCode(vm.CHAINID)
	SELFBALANCE = OpCode(vm.SELFBALANCE)
	BASEFEE     = OpCode(vm.BASEFEE)
	BLOBHASH    = OpCode(vm.BLOBHASH)
	BLOBBASEFEE = OpCode(vm.BLOBBASEFEE)
)

// Interpreter-internal op codes, outside the single-byte range of the
// container instruction set.
const (
	// DATA is a pseudo instruction carrying immediate argument data of a
	// preceding instruction that requires more than the 2 bytes available
	// in a single instruction slot. It is never executed.
	DATA OpCode = iota + 0x100

	highestOpCode = DATA
)

var toString = map[OpCode]string{
	DATA: "DATA",
}

func (o OpCode) String() string {
	if o <= 0xFF {
		return vm.OpCode(o).String()
	}
	if str, found := toString[o]; found {
		return str
	}
	return fmt.Sprintf("op(0x%04x)", uint16(o))
}

// HasArgument returns true for instructions that use the 16-bit argument
// slot of the instruction they are encoded in.
func (o OpCode) HasArgument() bool {
	if PUSH1 <= o && o <= PUSH32 {
		return true
	}
	switch o {
	case DATA, DATALOADN, RJUMP, RJUMPI:
		return true
	}
	return false
}

// opCodePropertyMap is a generic utility for handling per-opcode properties
// using precomputed lookup tables.
type opCodePropertyMap[T any] struct {
	data [numOpCodes]T
}

// newOpCodePropertyMap creates a property map assigning each op code the
// property produced by the given function.
func newOpCodePropertyMap[T any](compute func(op OpCode) T) opCodePropertyMap[T] {
	res := opCodePropertyMap[T]{}
	for i := 0; i < numOpCodes; i++ {
		res.data[i] = compute(OpCode(i))
	}
	return res
}

// get retrieves the property associated to the given op code.
func (m *opCodePropertyMap[T]) get(op OpCode) T {
	return m.data[op&opCodeMask]
}
