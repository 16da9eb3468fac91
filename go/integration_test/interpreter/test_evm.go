// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package interpreter_test

import (
	"github.com/Fantom-foundation/Turandot/go/turandot"
)

//go:generate mockgen -source test_evm.go -destination test_evm_mock.go -package interpreter_test

const InitialTestGas turandot.Gas = 1 << 44

// TestEVM is a minimal EVM implementation wrapping an Interpreter into an EVM
// instance capable of processing recursive calls. It is only intended to be
// utilized for integration tests in this package, and thus misses almost all
// features of a fully functional EVM.
type TestEVM struct {
	interpreter turandot.Interpreter
	revision    turandot.Revision
	state       StateDB
	depth       int
	readOnly    bool
}

func GetCleanEVM(variant string, stateDB StateDB) TestEVM {
	instance, err := turandot.NewInterpreter(variant)
	if err != nil {
		panic(err)
	}

	return TestEVM{
		interpreter: instance,
		revision:    turandot.R14_Prague,
		state:       stateDB,
	}
}

// StateDB is a TestEVM interface that is mocked by tests to formulate
// expectations on chain-state side-effects of interpreter operations.
type StateDB interface {
	AccountExists(turandot.Address) bool
	GetBalance(turandot.Address) turandot.Value
	SetBalance(turandot.Address, turandot.Value)
	GetNonce(turandot.Address) uint64
	SetNonce(turandot.Address, uint64)
	GetCodeSize(turandot.Address) int
	GetCodeHash(turandot.Address) turandot.Hash
	GetCode(turandot.Address) turandot.Code
	SetCode(turandot.Address, turandot.Code)
	GetBlockHash(int64) turandot.Hash
	EmitLog(turandot.Log)
	AccessAccount(turandot.Address) turandot.AccessStatus
}

type RunResult struct {
	Output  []byte
	GasUsed turandot.Gas
	Success bool
}

func (e *TestEVM) Run(code []byte, input []byte) (RunResult, error) {
	return e.RunWithGas(code, input, InitialTestGas)
}

func (e *TestEVM) RunWithGas(code []byte, input []byte, initialGas turandot.Gas) (RunResult, error) {
	result, err := e.runInternal(code, input, initialGas, e.readOnly)
	if err != nil {
		return RunResult{}, err
	}

	return RunResult{
		Output:  result.Output,
		GasUsed: initialGas - result.GasLeft,
		Success: result.Success,
	}, nil
}

func (e *TestEVM) runInternal(code []byte, input []byte, gas turandot.Gas, readOnly bool) (turandot.Result, error) {
	params := turandot.Parameters{
		BlockParameters: turandot.BlockParameters{
			Revision: e.revision,
		},
		Context: &runContextAdapter{
			StateDB: e.state,
			evm:     e,
		},
		Code:   code,
		Input:  input,
		Gas:    gas,
		Depth:  e.depth,
		Static: readOnly,
	}

	return e.interpreter.Run(params)
}

// --- adapter ---

// runContextAdapter is an internal implementation of the turandot.RunContext
// interface connecting a running interpreter to the TestEVM and the StateDB
// interface to be implemented by tests.
type runContextAdapter struct {
	StateDB
	evm *TestEVM
}

func (a *runContextAdapter) Call(kind turandot.CallKind, parameter turandot.CallParameters) (turandot.CallResult, error) {
	// This is a simple implementation of an EVM handling recursive calls for
	// tests. A full implementation would also have to cover the side effects
	// of calls, like the transfer of values and state snapshots.

	// Check the maximum nesting depth of calls, tracked by the EVM.
	if a.evm.depth >= 1024 {
		return turandot.CallResult{
			Success: false,
		}, nil
	}
	a.evm.depth++
	defer func() {
		a.evm.depth--
	}()

	// Get the code to be executed.
	var code []byte
	switch kind {
	case turandot.Call, turandot.StaticCall:
		code = a.GetCode(parameter.Recipient)
	case turandot.DelegateCall:
		code = a.GetCode(parameter.CodeAddress)
	default:
		panic("not implemented")
	}

	// Switch to read-only mode if this call is a static call. This, too, is
	// tracked by the EVM, not by the interpreter.
	if kind == turandot.StaticCall && !a.evm.readOnly {
		a.evm.readOnly = true
		defer func() {
			a.evm.readOnly = false
		}()
	}

	result, err := a.evm.runInternal(code, parameter.Input, parameter.Gas, a.evm.readOnly)
	if err != nil {
		return turandot.CallResult{}, err
	}

	return turandot.CallResult{
		Output:    result.Output,
		GasLeft:   result.GasLeft,
		GasRefund: result.GasRefund,
		Success:   result.Success,
	}, nil
}

func (a *runContextAdapter) CreateSnapshot() turandot.Snapshot {
	// ignored in interpreter tests
	return 0
}

func (a *runContextAdapter) RestoreSnapshot(turandot.Snapshot) {
	// ignored in interpreter tests
}

func (a *runContextAdapter) GetLogs() []turandot.Log {
	panic("should not be needed for interpreter tests")
}

// --- code construction ---

// buildContainer wraps the given code into a minimal structured container
// with a single code section, the given data section, and a type section
// declaring a non-returning entry point with the given maximum stack height.
func buildContainer(maxStackHeight int, code, data []byte) []byte {
	u16 := func(value int) []byte {
		return []byte{byte(value >> 8), byte(value)}
	}

	container := []byte{0xEF, 0x00, 0x01}
	container = append(container, 0x01)
	container = append(container, u16(4)...)
	container = append(container, 0x02)
	container = append(container, u16(1)...)
	container = append(container, u16(len(code))...)
	container = append(container, 0x04)
	container = append(container, u16(len(data))...)
	container = append(container, 0x00)
	container = append(container, 0x00, 0x80)
	container = append(container, u16(maxStackHeight)...)
	container = append(container, code...)
	container = append(container, data...)
	return container
}

// addressWord returns the given address as a 32-byte big-endian word, the
// format in which call targets are kept in data sections of test contracts.
func addressWord(address turandot.Address) []byte {
	word := make([]byte, 32)
	copy(word[12:], address[:])
	return word
}
