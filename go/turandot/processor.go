// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package turandot

//go:generate mockgen -source processor.go -destination processor_mock.go -package turandot

// Processor is a component capable of executing transactions on a chain
// state, performing gas billing against the sender's balance, and producing
// a receipt. Implementations are required to be thread-safe.
type Processor interface {
	// Run executes the given transaction in the given block and transaction
	// context. The resulting error is only non-nil if the transaction could
	// not be processed at all; a failed execution is reported in the
	// receipt.
	Run(BlockParameters, Transaction, TransactionContext) (Receipt, error)
}

// Transaction summarizes the inputs of a single transaction.
type Transaction struct {
	// Sender is the account initiating the transaction and paying for it.
	Sender Address
	// Recipient is the account called by the transaction. Transactions
	// without a recipient request the creation of a contract.
	Recipient *Address
	// Nonce is the sender's account nonce this transaction is based on.
	Nonce uint64
	// Input is the payload forwarded to the called code.
	Input Data
	// Value is the amount of currency transferred to the recipient.
	Value Value
	// GasLimit is the maximum amount of gas the transaction may consume.
	GasLimit Gas
	// GasPrice is the price per gas unit paid by the transaction.
	GasPrice Value
	// AccessList is the list of addresses and storage keys to be marked as
	// warm before execution starts.
	AccessList []AccessTuple
}

// AccessTuple is an entry of a transaction's access list.
type AccessTuple struct {
	Address Address
	Keys    []Hash
}

// Receipt summarizes the outcome of a transaction.
type Receipt struct {
	// Success indicates whether the transaction was executed without an
	// abort of the top-level call.
	Success bool
	// Output is the data returned by the top-level call.
	Output Data
	// GasUsed is the amount of gas charged for the transaction.
	GasUsed Gas
	// Logs are the log records emitted by the execution.
	Logs []Log
}
