// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package processor

import (
	"bytes"
	"slices"
	"strings"
	"testing"

	"github.com/Fantom-foundation/Turandot/go/integration_test"
	"github.com/Fantom-foundation/Turandot/go/turandot"
)

// Scenario represents a test scenario for a transaction processor. A scenario
// consists of a world state before and after the operation, a transaction to
// be executed, block chain parameters, and the expected receipt.
type Scenario struct {
	Before      WorldState
	After       WorldState
	Parameters  turandot.BlockParameters
	Transaction turandot.Transaction
	Receipt     turandot.Receipt
}

func (s *Scenario) Run(t *testing.T, processor turandot.Processor) {

	context := newScenarioContext(s.Before)
	receipt, err := processor.Run(s.Parameters, s.Transaction, context)
	if err != nil {
		t.Fatalf("failed to run transaction: %v", err)
	}

	// check the world state after the operation
	if want, got := s.After, context.current; !want.Equal(got) {
		diff := strings.Join(got.Diff(want), "\n\t")
		t.Fatalf("unexpected world state after the operation: \n\t%v", diff)
	}

	// check the receipt
	if want, got := s.Receipt.Success, receipt.Success; want != got {
		t.Errorf("unexpected success, want %v, got %v", want, got)
	}
	if want, got := s.Receipt.GasUsed, receipt.GasUsed; want != got {
		t.Errorf("unexpected gas used, want %v, got %v", want, got)
	}
	if want, got := s.Receipt.Output, receipt.Output; !bytes.Equal(want, got) {
		t.Errorf("unexpected output, want %x, got %x", want, got)
	}

	if len(receipt.Logs) != len(s.Receipt.Logs) {
		t.Fatalf("unexpected receipt logs: %v", receipt.Logs)
	} else {
		for i, want := range s.Receipt.Logs {
			got := receipt.Logs[i]
			if want, got := want.Address, got.Address; want != got {
				t.Errorf("unexpected receipt log address, want %v, got %v", want, got)
			}
			if want, got := want.Topics, got.Topics; !slices.Equal(want, got) {
				t.Errorf("unexpected receipt log topics, want %v, got %v", want, got)
			}
			if want, got := want.Data, got.Data; !bytes.Equal(want, got) {
				t.Errorf("unexpected receipt data, want %x, got %x", want, got)
			}
		}
	}
}

func (s *Scenario) Clone() Scenario {
	return Scenario{
		Before:      s.Before.Clone(),
		After:       s.After.Clone(),
		Parameters:  s.Parameters,
		Transaction: s.Transaction,
		Receipt:     s.Receipt,
	}
}

// ----------------------------------------------------------------------------

// scenarioContext implements the turandot.TransactionContext interface
// facilitating the interaction with a test-case specific context.
type scenarioContext struct {
	original WorldState
	current  WorldState
	logs     []turandot.Log
	undo     []func()
	accessed []turandot.Address
}

func newScenarioContext(initial WorldState) *scenarioContext {
	return &scenarioContext{
		original: initial,
		current:  initial.Clone(),
	}
}

func (c *scenarioContext) AccountExists(addr turandot.Address) bool {
	return c.GetBalance(addr) != turandot.Value{} || c.GetNonce(addr) != 0 || c.GetCodeSize(addr) != 0
}

func (c *scenarioContext) GetBalance(addr turandot.Address) turandot.Value {
	return c.current[addr].Balance
}

func (c *scenarioContext) SetBalance(addr turandot.Address, value turandot.Value) {
	original := c.current[addr]
	modified := original
	modified.Balance = value
	c.current[addr] = modified
	c.undo = append(c.undo, func() { c.current[addr] = original })
}

func (c *scenarioContext) GetNonce(addr turandot.Address) uint64 {
	return c.current[addr].Nonce
}

func (c *scenarioContext) SetNonce(addr turandot.Address, value uint64) {
	original := c.current[addr]
	modified := original
	modified.Nonce = value
	c.current[addr] = modified
	c.undo = append(c.undo, func() { c.current[addr] = original })
}

func (c *scenarioContext) GetCode(addr turandot.Address) turandot.Code {
	return turandot.Code(bytes.Clone(c.current[addr].Code))
}

func (c *scenarioContext) GetCodeHash(addr turandot.Address) turandot.Hash {
	return integration_test.Keccak256Hash(c.GetCode(addr))
}

func (c *scenarioContext) GetCodeSize(addr turandot.Address) int {
	return len(c.GetCode(addr))
}

func (c *scenarioContext) SetCode(addr turandot.Address, code turandot.Code) {
	original := c.current[addr]
	modified := original
	modified.Code = turandot.Code(bytes.Clone(code))
	c.current[addr] = modified
	c.undo = append(c.undo, func() { c.current[addr] = original })
}

func (c *scenarioContext) CreateSnapshot() turandot.Snapshot {
	return turandot.Snapshot(len(c.undo))
}

func (c *scenarioContext) RestoreSnapshot(snapshot turandot.Snapshot) {
	for len(c.undo) > int(snapshot) {
		c.undo[len(c.undo)-1]()
		c.undo = c.undo[:len(c.undo)-1]
	}
}

func (c *scenarioContext) AccessAccount(address turandot.Address) turandot.AccessStatus {
	if slices.Contains(c.accessed, address) {
		return turandot.WarmAccess
	}
	c.accessed = append(c.accessed, address)
	return turandot.ColdAccess
}

func (c *scenarioContext) EmitLog(log turandot.Log) {
	len := len(c.logs)
	c.logs = append(c.logs, log)
	c.undo = append(c.undo, func() { c.logs = c.logs[:len] })
}

func (c *scenarioContext) GetLogs() []turandot.Log {
	return slices.Clone(c.logs)
}

func (c *scenarioContext) GetBlockHash(number int64) turandot.Hash {
	panic("implement me")
}
