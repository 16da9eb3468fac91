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

import "fmt"

// stackUsage defines the combined effect of an instruction on the stack. Each
// instruction is accessing a range of elements on the stack relative to the
// stack pointer. The range is given by the interval [from, to) where from is
// the lower end and to is the upper end of the accessed interval. The delta
// field represents the change in the stack size caused by the instruction.
type stackUsage struct {
	from, to, delta int
}

// computeStackUsage computes the stack usage of the given opcode. The result
// is a stackUsage struct that defines the combined effect of the instruction
// on the stack. If the opcode is not executable (i.e. DATA, INVALID), an
// error is returned.
func computeStackUsage(op OpCode) (stackUsage, error) {

	// For single instructions it is easiest to define the stack usage based on
	// the opcode's pops and pushes.
	makeUsage := func(pops, pushes int) stackUsage {
		delta := pushes - pops
		to := 0
		if delta > 0 {
			to = delta
		}
		return stackUsage{from: -pops, to: to, delta: delta}
	}

	if PUSH1 <= op && op <= PUSH32 {
		return makeUsage(0, 1), nil
	}
	if DUP1 <= op && op <= DUP16 {
		return makeUsage(int(op-DUP1+1), int(op-DUP1+2)), nil
	}
	if SWAP1 <= op && op <= SWAP16 {
		return makeUsage(int(op-SWAP1+2), int(op-SWAP1+2)), nil
	}
	if LOG0 <= op && op <= LOG4 {
		return makeUsage(int(op-LOG0+2), 0), nil
	}

	switch op {
	case JUMPDEST, RJUMP, STOP:
		return makeUsage(0, 0), nil
	case PUSH0, MSIZE, ADDRESS, ORIGIN, CALLER, CALLVALUE, CALLDATASIZE,
		GASPRICE, COINBASE, TIMESTAMP, NUMBER, PREVRANDAO, GASLIMIT,
		RETURNDATASIZE, SELFBALANCE, CHAINID, BASEFEE, BLOBBASEFEE,
		DATASIZE, DATALOADN:
		return makeUsage(0, 1), nil
	case POP, RJUMPI:
		return makeUsage(1, 0), nil
	case ISZERO, NOT, BALANCE, CALLDATALOAD, BLOCKHASH, MLOAD, BLOBHASH,
		DATALOAD, RETURNDATALOAD:
		return makeUsage(1, 1), nil
	case MSTORE, MSTORE8, RETURN, REVERT:
		return makeUsage(2, 0), nil
	case ADD, SUB, MUL, DIV, SDIV, MOD, SMOD, EXP, SIGNEXTEND,
		KECCAK256, LT, GT, SLT, SGT, EQ, AND, XOR, OR, BYTE,
		SHL, SHR, SAR:
		return makeUsage(2, 1), nil
	case CALLDATACOPY, RETURNDATACOPY, MCOPY, DATACOPY:
		return makeUsage(3, 0), nil
	case ADDMOD, MULMOD:
		return makeUsage(3, 1), nil
	case EXTDELEGATECALL, EXTSTATICCALL:
		return makeUsage(3, 1), nil
	case EXTCALL:
		return makeUsage(4, 1), nil
	}

	return stackUsage{}, fmt.Errorf("unsupported opcode: %v", op)
}
