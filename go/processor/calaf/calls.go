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
)

// call runs the top-level call of a transaction. The call is dispatched
// through a fresh runContext so that nested calls issued by the interpreter
// share the same depth accounting and state access as the initial frame.
func call(
	interpreter turandot.Interpreter,
	blockParameters turandot.BlockParameters,
	transaction turandot.Transaction,
	context turandot.TransactionContext,
	gas turandot.Gas,
) (turandot.Result, error) {

	transactionParameters := turandot.TransactionParameters{
		Origin:     transaction.Sender,
		GasPrice:   transaction.GasPrice,
		BlobHashes: []turandot.Hash{},
	}

	runContext := runContext{
		TransactionContext:    context,
		interpreter:           interpreter,
		blockParameters:       blockParameters,
		transactionParameters: transactionParameters,
		depth:                 0,
		static:                false,
	}

	result, err := runContext.Call(turandot.Call, turandot.CallParameters{
		Sender:    transaction.Sender,
		Recipient: *transaction.Recipient,
		Value:     transaction.Value,
		Input:     transaction.Input,
		Gas:       gas,
	})

	return turandot.Result{
		Success:   result.Success,
		Output:    result.Output,
		GasLeft:   result.GasLeft,
		GasRefund: result.GasRefund,
	}, err
}
