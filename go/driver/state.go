// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"golang.org/x/crypto/sha3"

	"github.com/Fantom-foundation/Turandot/go/turandot"
)

// account is the in-memory representation of a single account.
type account struct {
	exists  bool
	balance turandot.Value
	nonce   uint64
	code    turandot.Code
}

// inMemoryState is a turandot.TransactionContext backed by plain maps, with
// an undo log providing snapshot support. It is sufficient for driving code
// snippets through a processor; it is not a production state implementation.
type inMemoryState struct {
	accounts map[turandot.Address]*account
	warm     map[turandot.Address]struct{}
	logs     []turandot.Log
	undo     []func()
}

func newInMemoryState() *inMemoryState {
	return &inMemoryState{
		accounts: map[turandot.Address]*account{},
		warm:     map[turandot.Address]struct{}{},
	}
}

// journal obtains the account with the given address for modification,
// recording an undo operation restoring its current state.
func (s *inMemoryState) journal(address turandot.Address) *account {
	current, found := s.accounts[address]
	if !found {
		current = &account{}
		s.accounts[address] = current
	}
	old := *current
	s.undo = append(s.undo, func() {
		if found {
			*current = old
		} else {
			delete(s.accounts, address)
		}
	})
	return current
}

func (s *inMemoryState) AccountExists(address turandot.Address) bool {
	account, found := s.accounts[address]
	return found && account.exists
}

func (s *inMemoryState) GetBalance(address turandot.Address) turandot.Value {
	if account, found := s.accounts[address]; found {
		return account.balance
	}
	return turandot.Value{}
}

func (s *inMemoryState) SetBalance(address turandot.Address, balance turandot.Value) {
	account := s.journal(address)
	account.exists = true
	account.balance = balance
}

func (s *inMemoryState) GetNonce(address turandot.Address) uint64 {
	if account, found := s.accounts[address]; found {
		return account.nonce
	}
	return 0
}

func (s *inMemoryState) SetNonce(address turandot.Address, nonce uint64) {
	account := s.journal(address)
	account.exists = true
	account.nonce = nonce
}

func (s *inMemoryState) GetCode(address turandot.Address) turandot.Code {
	if account, found := s.accounts[address]; found {
		return account.code
	}
	return nil
}

func (s *inMemoryState) GetCodeHash(address turandot.Address) turandot.Hash {
	code := s.GetCode(address)
	if len(code) == 0 {
		return turandot.Hash{}
	}
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(code)
	var hash turandot.Hash
	hasher.Sum(hash[0:0])
	return hash
}

func (s *inMemoryState) GetCodeSize(address turandot.Address) int {
	return len(s.GetCode(address))
}

func (s *inMemoryState) SetCode(address turandot.Address, code turandot.Code) {
	account := s.journal(address)
	account.exists = true
	account.code = code
}

func (s *inMemoryState) CreateSnapshot() turandot.Snapshot {
	return turandot.Snapshot(len(s.undo))
}

func (s *inMemoryState) RestoreSnapshot(snapshot turandot.Snapshot) {
	for len(s.undo) > int(snapshot) {
		s.undo[len(s.undo)-1]()
		s.undo = s.undo[:len(s.undo)-1]
	}
}

func (s *inMemoryState) AccessAccount(address turandot.Address) turandot.AccessStatus {
	if _, found := s.warm[address]; found {
		return turandot.WarmAccess
	}
	s.undo = append(s.undo, func() { delete(s.warm, address) })
	s.warm[address] = struct{}{}
	return turandot.ColdAccess
}

func (s *inMemoryState) EmitLog(log turandot.Log) {
	s.undo = append(s.undo, func() { s.logs = s.logs[:len(s.logs)-1] })
	s.logs = append(s.logs, log)
}

func (s *inMemoryState) GetLogs() []turandot.Log {
	return s.logs
}

func (s *inMemoryState) GetBlockHash(int64) turandot.Hash {
	return turandot.Hash{}
}
