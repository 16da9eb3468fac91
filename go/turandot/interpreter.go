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

import "fmt"

//go:generate mockgen -source interpreter.go -destination interpreter_mock.go -package turandot

// Interpreter is a component capable of executing structured-container
// byte-code. Implementations are required to be thread-safe, such that a
// single instance may process multiple frames concurrently.
type Interpreter interface {
	// Run executes the code provided by the parameters in the specified
	// context and returns the processing result. The resulting error is
	// nil whenever the code was correctly executed, even if the execution
	// itself failed with an exceptional halt. The error is non-nil only if
	// the execution could not be handled at all, for instance because the
	// requested chain revision is not supported. In this case the result is
	// undefined and the enclosing transaction should be aborted.
	Run(Parameters) (Result, error)
}

// ProfilingInterpreter is an optional extension to the Interpreter interface
// implemented by interpreters collecting execution statistics.
type ProfilingInterpreter interface {
	Interpreter

	// ResetProfile resets the profile collected so far. Use it before a
	// sequence of measured executions to exclude warm-up runs.
	ResetProfile()

	// DumpProfile prints a snapshot of the profile collected since the last
	// call to ResetProfile to stdout.
	DumpProfile()
}

// Parameters summarizes the input parameters for the execution of a single
// frame of code.
type Parameters struct {
	BlockParameters
	TransactionParameters
	Context   RunContext
	Kind      CallKind
	Static    bool
	Depth     int
	Gas       Gas
	Recipient Address
	Sender    Address
	Input     Data
	Value     Value
	CodeHash  *Hash
	Code      Code
}

// BlockParameters summarizes the chain context of a block required during
// the execution of its transactions.
type BlockParameters struct {
	// ChainID is the unique identifier of the chain being operated on.
	ChainID Word
	// BlockNumber is the height of the chain at the time of execution.
	BlockNumber int64
	// Timestamp is the time stamp of the block being processed.
	Timestamp int64
	// Coinbase is the address receiving fees for the block.
	Coinbase Address
	// GasLimit is the gas limit of the current block.
	GasLimit Gas
	// PrevRandao is the randomness seed of the current block.
	PrevRandao Hash
	// BaseFee is the base fee of the current block.
	BaseFee Value
	// BlobBaseFee is the blob base fee of the current block.
	BlobBaseFee Value
	// Revision is the revision the block is processed with.
	Revision Revision
}

// TransactionParameters summarizes the transaction context required during
// the execution of its calls.
type TransactionParameters struct {
	// Origin is the initiator of the transaction.
	Origin Address
	// GasPrice is the price per gas unit paid by the transaction.
	GasPrice Value
	// BlobHashes are the hashes of the blobs shipped with the transaction.
	BlobHashes []Hash
}

// RunContext is the interface through which an interpreter interacts with
// the enclosing execution environment. It extends the transaction context
// by the ability to issue recursive calls. The call boundary is blocking:
// control only returns to the caller once the callee frame is fully
// resolved.
type RunContext interface {
	TransactionContext

	// Call executes a nested call of the given kind with the given
	// parameters in the current transaction context. The resulting error
	// is only non-nil if the call could not be handled by the environment;
	// a failed execution of the callee is reported through the result.
	Call(kind CallKind, parameters CallParameters) (CallResult, error)
}

// TransactionContext provides access to the chain state that may be accessed
// and modified during the scope of a single transaction.
type TransactionContext interface {
	WorldState

	// CreateSnapshot creates a snapshot of the current state, which can be
	// restored at any later point in the transaction.
	CreateSnapshot() Snapshot

	// RestoreSnapshot reverts all state changes made since the given
	// snapshot was created.
	RestoreSnapshot(Snapshot)

	// AccessAccount marks the given address as accessed within the current
	// transaction and returns whether it was accessed before. The first
	// access of an address is cold, every subsequent access is warm.
	AccessAccount(Address) AccessStatus

	// EmitLog adds the given log record to the transaction's log output.
	EmitLog(Log)

	// GetLogs returns the log records emitted so far in the transaction.
	GetLogs() []Log

	// GetBlockHash returns the hash of the block with the given number.
	GetBlockHash(number int64) Hash
}

// AccessStatus is the result of marking an address as accessed. Within a
// transaction, the set of accessed addresses grows monotonically; marking is
// idempotent.
type AccessStatus bool

const (
	ColdAccess AccessStatus = false
	WarmAccess AccessStatus = true
)

func (s AccessStatus) String() string {
	if s == ColdAccess {
		return "cold"
	}
	return "warm"
}

// Log is a single log record emitted by contract code.
type Log struct {
	Address Address
	Topics  []Hash
	Data    Data
}

// Result summarizes the outcome of a single frame of execution.
type Result struct {
	// Success is false if the execution ended in an exceptional halt or an
	// explicit revert, and true otherwise. A reverted execution retains its
	// remaining gas and output, an exceptional halt forfeits both.
	Success bool
	// Output is the data returned by the executed code.
	Output Data
	// GasLeft is the amount of unconsumed gas. It is zero after an
	// exceptional halt.
	GasLeft Gas
	// GasRefund is the gas refund accumulated by the execution. It is only
	// valid for non-reverted executions.
	GasRefund Gas
}

// CallKind is the set of call variants supported by the structured-container
// call family. It is a closed enumeration: every kind a host may be asked to
// dispatch is listed here.
type CallKind int

const (
	// Call executes the target's code in the target's own context, with an
	// optional value transfer.
	Call CallKind = iota
	// DelegateCall executes the target's code in the caller's context,
	// preserving sender, recipient, and value of the current frame.
	DelegateCall
	// StaticCall executes the target's code in the target's own context,
	// while forbidding any modification of the chain state.
	StaticCall
)

// CallParameters summarizes the parameters of a nested call. The gas offered
// to the callee is always computed by the caller's metering and never taken
// from operands.
type CallParameters struct {
	Sender      Address
	Recipient   Address
	Value       Value
	Input       Data
	Gas         Gas
	CodeAddress Address // < only relevant for DelegateCall
}

// CallResult summarizes the outcome of a nested call.
type CallResult struct {
	Output    Data
	GasLeft   Gas
	GasRefund Gas
	Success   bool
}

// Revision is an identifier for a chain configuration to be used during
// code execution.
type Revision int

const (
	R07_Istanbul Revision = iota
	R08_MuirGlacier
	R09_Berlin
	R10_London
	R11_Paris
	R12_Shanghai
	R13_Cancun
	R14_Prague

	// numRevisions is the number of revisions listed above.
	numRevisions int = iota
)

// ErrUnsupportedRevision is an error produced by an interpreter when asked
// to execute code for a revision it does not support.
type ErrUnsupportedRevision struct {
	Revision Revision
}

func (e *ErrUnsupportedRevision) Error() string {
	return fmt.Sprintf("unsupported revision %d", e.Revision)
}
