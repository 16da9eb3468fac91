// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package examples

import (
	"fmt"
	"math"

	"github.com/Fantom-foundation/Turandot/go/turandot"
	"golang.org/x/crypto/sha3"
)

// Example is an executable description of a contract and an entry point with
// a (int)->int signature. The contract code is a structured container ready
// to be executed by any container interpreter or installed on a chain state.
type Example struct {
	exampleSpec
	codeHash turandot.Hash // the hash of the code
}

// exampleSpec specifies a contract and an entry point with a (int)->int signature.
type exampleSpec struct {
	Name      string
	Code      turandot.Code // the container code of the contract
	function  uint32        // identifier of the function in the contract to be called
	reference func(int) int // a reference function computing the same function
}

func (s exampleSpec) build() Example {
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(s.Code)
	var hash turandot.Hash
	hasher.Sum(hash[0:0])
	return Example{
		exampleSpec: s,
		codeHash:    hash,
	}
}

type Result struct {
	Result  int
	UsedGas turandot.Gas
}

// RunOn runs this example on the given interpreter, using the given argument.
func (e *Example) RunOn(interpreter turandot.Interpreter, argument int) (Result, error) {

	const initialGas = math.MaxInt64
	params := turandot.Parameters{
		BlockParameters: turandot.BlockParameters{
			Revision: turandot.R14_Prague,
		},
		Context:  &noOpRunContext{},
		Code:     e.Code,
		CodeHash: &e.codeHash,
		Input:    encodeArgument(e.function, argument),
		Gas:      initialGas,
	}

	res, err := interpreter.Run(params)
	if err != nil {
		return Result{}, err
	}

	result, err := decodeOutput(res.Output)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Result:  result,
		UsedGas: initialGas - res.GasLeft,
	}, nil
}

// RunOnProcessor runs this example through the given processor by completing
// the given transaction with the encoded function call and processing it in
// the given transaction context. The transaction's recipient is expected to
// hold the example's code.
func (e *Example) RunOnProcessor(
	processor turandot.Processor,
	argument int,
	transaction turandot.Transaction,
	context turandot.TransactionContext,
) (Result, error) {
	transaction.Input = encodeArgument(e.function, argument)

	blockParams := turandot.BlockParameters{
		Revision: turandot.R14_Prague,
	}
	receipt, err := processor.Run(blockParams, transaction, context)
	if err != nil {
		return Result{}, err
	}
	if !receipt.Success {
		return Result{}, fmt.Errorf("failed to process transaction calling %s", e.Name)
	}

	result, err := decodeOutput(receipt.Output)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Result:  result,
		UsedGas: receipt.GasUsed,
	}, nil
}

// RunReference runs the reference function of this example to produce the expected result.
func (e *Example) RunReference(argument int) int {
	return e.reference(argument)
}

func encodeArgument(function uint32, arg int) []byte {
	// see details of argument encoding: t.ly/kBl6
	data := make([]byte, 4+32) // parameter is padded up to 32 bytes

	// encode function selector in big-endian format
	data[0] = byte(function >> 24)
	data[1] = byte(function >> 16)
	data[2] = byte(function >> 8)
	data[3] = byte(function)

	// encode argument as a big-endian value
	data[4+28] = byte(arg >> 24)
	data[5+28] = byte(arg >> 16)
	data[6+28] = byte(arg >> 8)
	data[7+28] = byte(arg)

	return data
}

func decodeOutput(output []byte) (int, error) {
	if len(output) != 32 {
		return 0, fmt.Errorf("unexpected length of output; wanted 32, got %d", len(output))
	}
	return (int(output[28]) << 24) | (int(output[29]) << 16) | (int(output[30]) << 8) | (int(output[31]) << 0), nil
}

// buildContainer wraps the given code into a minimal structured container
// with a single code section, the given data section, and a type section
// declaring a non-returning entry point with the given maximum stack height.
func buildContainer(maxStackHeight int, code, data []byte) turandot.Code {
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

// noOpRunContext is a simple turandot.RunContext implementation for example
// codes not depending on any chain state. No operation has any effect.
type noOpRunContext struct{}

func (c *noOpRunContext) AccountExists(turandot.Address) bool {
	return false
}

func (c *noOpRunContext) GetBalance(turandot.Address) turandot.Value {
	return turandot.Value{}
}

func (c *noOpRunContext) SetBalance(turandot.Address, turandot.Value) {
}

func (c *noOpRunContext) GetNonce(turandot.Address) uint64 {
	return 0
}

func (c *noOpRunContext) SetNonce(turandot.Address, uint64) {
}

func (c *noOpRunContext) GetCode(turandot.Address) turandot.Code {
	return nil
}

func (c *noOpRunContext) GetCodeHash(turandot.Address) turandot.Hash {
	return turandot.Hash{}
}

func (c *noOpRunContext) GetCodeSize(turandot.Address) int {
	return 0
}

func (c *noOpRunContext) SetCode(turandot.Address, turandot.Code) {
}

func (c *noOpRunContext) CreateSnapshot() turandot.Snapshot {
	return 0
}

func (c *noOpRunContext) RestoreSnapshot(turandot.Snapshot) {
}

func (c *noOpRunContext) AccessAccount(turandot.Address) turandot.AccessStatus {
	return turandot.ColdAccess
}

func (c *noOpRunContext) EmitLog(turandot.Log) {
}

func (c *noOpRunContext) GetLogs() []turandot.Log {
	return nil
}

func (c *noOpRunContext) GetBlockHash(int64) turandot.Hash {
	return turandot.Hash{}
}

func (c *noOpRunContext) Call(turandot.CallKind, turandot.CallParameters) (turandot.CallResult, error) {
	return turandot.CallResult{}, nil
}
