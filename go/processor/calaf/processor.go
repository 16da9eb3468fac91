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
	"fmt"

	"github.com/Fantom-foundation/Turandot/go/turandot"
)

const (
	TxGas                     = 21_000
	TxDataNonZeroGas          = 16
	TxDataZeroGas             = 4
	TxAccessListAddressGas    = 2400
	TxAccessListStorageKeyGas = 1900

	// MaxRecursiveDepth is the maximum number of nested calls within a
	// transaction.
	MaxRecursiveDepth = 1024

	// maxRefundQuotient caps the gas refund to a fraction of the gas used,
	// as defined in EIP-3529.
	maxRefundQuotient = 5
)

func init() {
	turandot.RegisterProcessorFactory("calaf", newProcessor)
}

func newProcessor(interpreter turandot.Interpreter) turandot.Processor {
	return &processor{
		interpreter: interpreter,
	}
}

type processor struct {
	interpreter turandot.Interpreter
}

func (p *processor) Run(
	blockParams turandot.BlockParameters,
	transaction turandot.Transaction,
	context turandot.TransactionContext,
) (turandot.Receipt, error) {
	errorReceipt := turandot.Receipt{
		Success: false,
		GasUsed: transaction.GasLimit,
	}
	gas := transaction.GasLimit

	if transaction.Recipient == nil {
		// Contract deployment uses its own transaction flow and is not
		// handled by this processor.
		return errorReceipt, fmt.Errorf("contract creation transactions are not supported")
	}

	if err := senderIsEoa(transaction, context); err != nil {
		return errorReceipt, nil
	}

	if err := buyGas(transaction, context); err != nil {
		return errorReceipt, nil
	}

	intrinsicGas := calculateIntrinsicGas(transaction)
	if gas < intrinsicGas {
		return errorReceipt, nil
	}
	gas -= intrinsicGas

	if err := handleNonce(transaction, context); err != nil {
		return errorReceipt, nil
	}

	setUpAccessList(transaction, context, blockParams.Revision)

	result, err := call(p.interpreter, blockParams, transaction, context, gas)
	if err != nil {
		return errorReceipt, err
	}

	gasLeft := result.GasLeft

	// 10% of the remaining gas is charged for non-internal transactions.
	if !isInternal(transaction) {
		gasLeft -= gasLeft / 10
	}

	if result.Success {
		gasUsed := transaction.GasLimit - gasLeft
		refund := result.GasRefund
		if maxRefund := gasUsed / maxRefundQuotient; refund > maxRefund {
			refund = maxRefund
		}
		gasLeft += refund
	}

	refundGas(transaction, context, gasLeft)

	return turandot.Receipt{
		Success: result.Success,
		GasUsed: transaction.GasLimit - gasLeft,
		Output:  result.Output,
		Logs:    context.GetLogs(),
	}, nil
}

// senderIsEoa checks that the transaction was issued by an externally owned
// account. Transactions originating from accounts with code are rejected.
func senderIsEoa(transaction turandot.Transaction, context turandot.TransactionContext) error {
	codeHash := context.GetCodeHash(transaction.Sender)
	if codeHash != (turandot.Hash{}) && codeHash != emptyCodeHash {
		return fmt.Errorf("sender is not an externally owned account: %v", transaction.Sender)
	}
	return nil
}

func calculateIntrinsicGas(transaction turandot.Transaction) turandot.Gas {
	gas := turandot.Gas(TxGas)

	if len(transaction.Input) > 0 {
		nonZeroBytes := turandot.Gas(0)
		for _, inputByte := range transaction.Input {
			if inputByte != 0 {
				nonZeroBytes++
			}
		}
		zeroBytes := turandot.Gas(len(transaction.Input)) - nonZeroBytes
		gas += zeroBytes * TxDataZeroGas
		gas += nonZeroBytes * TxDataNonZeroGas
	}

	// No overflow check is required for this sum. Overflowing the 64-bit gas
	// counter would take an input of more than 2^64 / 16 bytes, which cannot
	// be provided by real world hardware.
	for _, accessTuple := range transaction.AccessList {
		gas += TxAccessListAddressGas
		gas += turandot.Gas(len(accessTuple.Keys)) * TxAccessListStorageKeyGas
	}

	return gas
}

func handleNonce(transaction turandot.Transaction, context turandot.TransactionContext) error {
	stateNonce := context.GetNonce(transaction.Sender)
	messageNonce := transaction.Nonce
	if messageNonce != stateNonce {
		return fmt.Errorf("nonce mismatch: %v != %v", messageNonce, stateNonce)
	}
	context.SetNonce(transaction.Sender, stateNonce+1)
	return nil
}

// setUpAccessList marks the addresses known to be touched by the transaction
// as warm. Storage keys of the access list are paid for in the intrinsic gas
// but have no warm/cold distinction in this state interface.
func setUpAccessList(
	transaction turandot.Transaction,
	context turandot.TransactionContext,
	revision turandot.Revision,
) {
	if revision < turandot.R09_Berlin {
		return
	}

	context.AccessAccount(transaction.Sender)
	if transaction.Recipient != nil {
		context.AccessAccount(*transaction.Recipient)
	}
	for _, address := range precompiledAddresses(revision) {
		context.AccessAccount(address)
	}
	for _, accessTuple := range transaction.AccessList {
		context.AccessAccount(accessTuple.Address)
	}
}

func buyGas(transaction turandot.Transaction, context turandot.TransactionContext) error {
	gas := transaction.GasPrice.Scale(uint64(transaction.GasLimit))

	senderBalance := context.GetBalance(transaction.Sender)
	if senderBalance.Cmp(gas) < 0 {
		return fmt.Errorf("insufficient balance: %v < %v", senderBalance, gas)
	}

	senderBalance = turandot.Sub(senderBalance, gas)
	context.SetBalance(transaction.Sender, senderBalance)

	return nil
}

// refundGas returns the value of the remaining gas to the sender, exchanged
// at the transaction's gas price.
func refundGas(transaction turandot.Transaction, context turandot.TransactionContext, gasLeft turandot.Gas) {
	refund := transaction.GasPrice.Scale(uint64(gasLeft))
	senderBalance := context.GetBalance(transaction.Sender)
	context.SetBalance(transaction.Sender, turandot.Add(senderBalance, refund))
}

// isInternal identifies transactions issued by the node itself. Internal
// transactions are exempted from the surcharge on remaining gas.
func isInternal(transaction turandot.Transaction) bool {
	return transaction.Sender == (turandot.Address{})
}
