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

//go:generate mockgen -source world_state.go -destination world_state_mock.go -package turandot

// WorldState is an interface for accessing and manipulating the account
// state of a chain. It is a subset of the facilities a full execution
// environment provides, focusing on the information required for running
// structured-container code: account existence, balances, nonces, and code.
type WorldState interface {
	// AccountExists checks if the account with the given address exists on
	// the chain.
	AccountExists(Address) bool

	// GetBalance returns the balance of the account with the given address.
	// Accounts that do not exist report a zero balance.
	GetBalance(Address) Value

	// SetBalance updates the balance of the account with the given address.
	SetBalance(Address, Value)

	// GetNonce returns the nonce of the account with the given address.
	GetNonce(Address) uint64

	// SetNonce updates the nonce of the account with the given address.
	SetNonce(Address, uint64)

	// GetCode returns the code of the account with the given address.
	GetCode(Address) Code

	// GetCodeHash returns the hash of the code of the account with the
	// given address.
	GetCodeHash(Address) Hash

	// GetCodeSize returns the length of the code of the account with the
	// given address.
	GetCodeSize(Address) int

	// SetCode updates the code of the account with the given address.
	SetCode(Address, Code)
}

// Address represents the 160-bit (20 bytes) address of an account.
type Address [20]byte

// Word represents an arbitrary 256-bit (32 byte) word in the EVM.
type Word [32]byte

// Hash represents the 256-bit (32 bytes) hash of a code, a block, a topic,
// or similar sequences of cryptographic summaries.
type Hash [32]byte

// Code represents the byte-code of a contract.
type Code []byte

// Data represents the input or output of a contract invocation.
type Data []byte

// Gas represents the type used to represent the Gas values.
type Gas int64

// Snapshot is a type used to identify a snapshot of a transaction context's
// state, to which modifications may be rolled back.
type Snapshot int

func (a Address) String() string {
	return bytesToHexString(a[:])
}

func (a Address) MarshalText() ([]byte, error) {
	return bytesToText(a[:])
}

func (a *Address) UnmarshalText(data []byte) error {
	return textToBytes(a[:], data)
}

func (w Word) String() string {
	return bytesToHexString(w[:])
}

func (w Word) MarshalText() ([]byte, error) {
	return bytesToText(w[:])
}

func (w *Word) UnmarshalText(data []byte) error {
	return textToBytes(w[:], data)
}

func (h Hash) String() string {
	return bytesToHexString(h[:])
}

func (h Hash) MarshalText() ([]byte, error) {
	return bytesToText(h[:])
}

func (h *Hash) UnmarshalText(data []byte) error {
	return textToBytes(h[:], data)
}
