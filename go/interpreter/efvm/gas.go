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
	"github.com/Fantom-foundation/Turandot/go/turandot"
)

const (
	CallValueTransferGas  turandot.Gas = 9000  // Paid for a call when the value transfer is non-zero.
	CallNewAccountGas     turandot.Gas = 25000 // Paid for a value-transferring call when the destination did not exist prior.
	ColdAccountAccessCost turandot.Gas = 2600  // Cost of accessing an address for the first time in a transaction, EIP-2929.
	WarmStorageReadCost   turandot.Gas = 100   // Cost of accessing an address or storage slot that is already warm, EIP-2929.

	// MinCalleeGas is the minimum amount of gas a callee frame must receive
	// to be started at all. Calls that cannot forward at least this amount
	// fail without being dispatched (see EIP-7069).
	MinCalleeGas turandot.Gas = 5000

	// MaxCallDepth is the maximum nesting level of call frames.
	MaxCallDepth = 1024
)

// forwardedGas computes the amount of gas passed on to a callee frame. The
// caller retains a 64th of its remaining gas (see EIP-150); there is no way
// to forward less, since the call instructions have no gas operand.
func forwardedGas(gas turandot.Gas) turandot.Gas {
	return gas - gas/64
}

// getAccessCost returns the gas costs for accessing an address with the
// given warm/cold state, as defined in EIP-2929.
func getAccessCost(accessStatus turandot.AccessStatus) turandot.Gas {
	if accessStatus == turandot.ColdAccess {
		return ColdAccountAccessCost
	}
	return WarmStorageReadCost
}

// getStaticGasPrices returns the static gas price table for the given
// revision. The table only contains the revision-independent base costs of
// each instruction; dynamic costs like memory expansion or address access
// are charged by the individual instruction implementations.
func getStaticGasPrices(revision turandot.Revision) *opCodePropertyMap[turandot.Gas] {
	// All revisions supporting the structured container format share one
	// price table so far.
	return &_staticGasPrices
}

var _staticGasPrices = newOpCodePropertyMap(getStaticGasPriceInternal)

func getStaticGasPriceInternal(op OpCode) turandot.Gas {
	if PUSH1 <= op && op <= PUSH32 {
		return 3
	}
	if DUP1 <= op && op <= DUP16 {
		return 3
	}
	if SWAP1 <= op && op <= SWAP16 {
		return 3
	}
	if LT <= op && op <= SAR {
		return 3
	}
	if COINBASE <= op && op <= CHAINID {
		return 2
	}

	switch op {
	case POP, PUSH0, ADDRESS, ORIGIN, CALLER, CALLVALUE, CALLDATASIZE,
		GASPRICE, RETURNDATASIZE, MSIZE, BASEFEE, BLOBBASEFEE, DATASIZE,
		RJUMP:
		return 2
	case ADD, SUB, CALLDATALOAD, CALLDATACOPY, RETURNDATACOPY,
		RETURNDATALOAD, MLOAD, MSTORE, MSTORE8, MCOPY, BLOBHASH,
		DATALOADN, DATACOPY:
		return 3
	case RJUMPI, DATALOAD:
		return 4
	case MUL, DIV, SDIV, MOD, SMOD, SIGNEXTEND, SELFBALANCE:
		return 5
	case ADDMOD, MULMOD:
		return 8
	case EXP:
		return 10
	case BLOCKHASH:
		return 20
	case KECCAK256:
		return 30
	case JUMPDEST:
		return 1
	case LOG0:
		return 375
	case LOG1:
		return 375 * 2
	case LOG2:
		return 375 * 3
	case LOG3:
		return 375 * 4
	case LOG4:
		return 375 * 5
	case STOP, RETURN, REVERT:
		return 0
	case BALANCE, EXTCALL, EXTDELEGATECALL, EXTSTATICCALL:
		// These are fully charged at execution time, based on the access
		// state of the touched address.
		return 0
	}
	return 0
}
