// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package calaf

import (
	"github.com/Fantom-foundation/Turandot/go/turandot"

	"github.com/ethereum/go-ethereum/crypto"
)

var emptyCodeHash = turandot.Hash(crypto.Keccak256(nil))

// runContext is the execution environment handed to the interpreter. It wraps
// the transaction context and serves the nested calls issued by the executed
// code. The context is passed by value; each call frame operates on its own
// copy of the depth and static flags.
type runContext struct {
	turandot.TransactionContext
	interpreter           turandot.Interpreter
	blockParameters       turandot.BlockParameters
	transactionParameters turandot.TransactionParameters
	depth                 int
	static                bool
}

func (r runContext) Call(kind turandot.CallKind, parameters turandot.CallParameters) (turandot.CallResult, error) {
	errResult := turandot.CallResult{
		Success: false,
		GasLeft: parameters.Gas,
	}
	if r.depth > MaxRecursiveDepth {
		return errResult, nil
	}
	r.depth++

	// The interpreter checks the balance before issuing a value-bearing
	// call, but external callers of this context may not.
	if kind == turandot.Call {
		if !canTransferValue(r, parameters.Value, parameters.Sender, parameters.Recipient) {
			return errResult, nil
		}
	}

	if kind == turandot.StaticCall {
		r.static = true
	}

	snapshot := r.CreateSnapshot()
	recipient := parameters.Recipient

	// Calls without value targeting an account that does not exist and has no
	// special function succeed without executing anything.
	if kind != turandot.DelegateCall &&
		r.blockParameters.Revision >= turandot.R09_Berlin &&
		!isPrecompiled(recipient, r.blockParameters.Revision) &&
		!isStateContract(recipient) &&
		!r.AccountExists(recipient) &&
		parameters.Value.Cmp(turandot.Value{}) == 0 {
		return turandot.CallResult{Success: true, GasLeft: parameters.Gas}, nil
	}

	if kind == turandot.Call {
		transferValue(r, parameters.Value, parameters.Sender, recipient)

		result, isStateContract := handleStateContract(
			r, parameters.Sender, recipient, parameters.Input, parameters.Gas)
		if isStateContract {
			if !result.Success {
				r.RestoreSnapshot(snapshot)
				result.GasLeft = 0
			}
			return result, nil
		}
	}

	result, isPrecompiled := handlePrecompiledContract(
		r.blockParameters.Revision, parameters.Input, recipient, parameters.Gas)
	if isPrecompiled {
		if !result.Success {
			r.RestoreSnapshot(snapshot)
			result.GasLeft = 0
		}
		return result, nil
	}

	codeAddress := recipient
	if kind == turandot.DelegateCall {
		codeAddress = parameters.CodeAddress
	}
	code := r.GetCode(codeAddress)
	codeHash := r.GetCodeHash(codeAddress)

	interpreterParameters := turandot.Parameters{
		BlockParameters:       r.blockParameters,
		TransactionParameters: r.transactionParameters,
		Context:               r,
		Kind:                  kind,
		Static:                r.static,
		Depth:                 r.depth - 1, // depth has already been incremented
		Gas:                   parameters.Gas,
		Recipient:             recipient,
		Sender:                parameters.Sender,
		Input:                 parameters.Input,
		Value:                 parameters.Value,
		CodeHash:              &codeHash,
		Code:                  code,
	}

	callResult, err := r.interpreter.Run(interpreterParameters)
	if err != nil || !callResult.Success {
		r.RestoreSnapshot(snapshot)

		if !isRevert(callResult, err) {
			// if the unsuccessful call was due to a revert, the gas is not consumed
			callResult.GasLeft = 0
		}
	}

	return turandot.CallResult{
		Output:    callResult.Output,
		GasLeft:   callResult.GasLeft,
		GasRefund: callResult.GasRefund,
		Success:   callResult.Success,
	}, err
}

// isRevert distinguishes an explicit revert from other failed executions. A
// revert leaves the remaining gas with the caller.
func isRevert(result turandot.Result, err error) bool {
	return err == nil && !result.Success && (result.GasLeft > 0 || len(result.Output) > 0)
}

func canTransferValue(
	context turandot.TransactionContext,
	value turandot.Value,
	sender turandot.Address,
	recipient turandot.Address,
) bool {
	if value == (turandot.Value{}) {
		return true
	}

	senderBalance := context.GetBalance(sender)
	if senderBalance.Cmp(value) < 0 {
		return false
	}

	if sender == recipient {
		return true
	}

	receiverBalance := context.GetBalance(recipient)
	updatedBalance := turandot.Add(receiverBalance, value)
	if updatedBalance.Cmp(receiverBalance) < 0 || updatedBalance.Cmp(value) < 0 {
		return false
	}

	return true
}

// Only to be called after canTransferValue
func transferValue(
	context turandot.TransactionContext,
	value turandot.Value,
	sender turandot.Address,
	recipient turandot.Address,
) {
	if value == (turandot.Value{}) {
		return
	}
	if sender == recipient {
		return
	}

	senderBalance := context.GetBalance(sender)
	receiverBalance := context.GetBalance(recipient)
	updatedBalance := turandot.Add(receiverBalance, value)

	senderBalance = turandot.Sub(senderBalance, value)
	context.SetBalance(sender, senderBalance)
	context.SetBalance(recipient, updatedBalance)
}
