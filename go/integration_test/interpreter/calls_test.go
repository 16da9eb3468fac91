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
	"bytes"
	"fmt"
	"testing"

	"github.com/Fantom-foundation/Turandot/go/interpreter/efvm"
	"github.com/Fantom-foundation/Turandot/go/turandot"
	"github.com/Fantom-foundation/Turandot/go/turandot/vm"
	"go.uber.org/mock/gomock"
)

var extCallOpCodes = map[string]vm.OpCode{
	"extCall":         vm.EXTCALL,
	"extDelegateCall": vm.EXTDELEGATECALL,
	"extStaticCall":   vm.EXTSTATICCALL,
}

func TestExtCalls_ExecuteCalleeCodeAndForwardItsOutput(t *testing.T) {
	target := turandot.Address{0xC1}
	callee := buildContainer(2, []byte{
		byte(vm.PUSH1), 42,
		byte(vm.PUSH0),
		byte(vm.MSTORE),
		byte(vm.PUSH1), 32,
		byte(vm.PUSH0),
		byte(vm.RETURN),
	}, nil)

	for _, variant := range getAllInterpreterVariantsForTests() {
		for name, op := range extCallOpCodes {
			t.Run(fmt.Sprintf("%s/%s", variant, name), func(t *testing.T) {
				ctrl := gomock.NewController(t)
				stateDB := NewMockStateDB(ctrl)
				stateDB.EXPECT().AccessAccount(target).Return(turandot.WarmAccess)
				// delegate calls fetch the code once to vet the target and
				// once to run it
				times := 1
				if op == vm.EXTDELEGATECALL {
					times = 2
				}
				stateDB.EXPECT().GetCode(target).Times(times).Return(turandot.Code(callee))

				evm := GetCleanEVM(variant, stateDB)
				code := buildContainer(4, callAndForwardOutput(op), addressWord(target))
				result, err := evm.Run(code, []byte{})
				if err != nil {
					t.Fatalf("unexpected error during execution: %v", err)
				}
				if !result.Success {
					t.Fatalf("execution failed, got %v", result)
				}
				want := make([]byte, 32)
				want[31] = 42
				if !bytes.Equal(result.Output, want) {
					t.Errorf("unexpected output, wanted %x, got %x", want, result.Output)
				}
			})
		}
	}
}

func TestExtCalls_ReportTheCalleeOutcomeInTheStatusWord(t *testing.T) {
	target := turandot.Address{0xC2}
	tests := map[string]struct {
		callee []byte
		status byte
	}{
		"stopping callee": {
			callee: buildContainer(0, []byte{byte(vm.STOP)}, nil),
			status: 0,
		},
		"reverting callee": {
			callee: buildContainer(2, []byte{
				byte(vm.PUSH0),
				byte(vm.PUSH0),
				byte(vm.REVERT),
			}, nil),
			status: 1,
		},
		"failing callee": {
			callee: buildContainer(0, []byte{byte(vm.POP)}, nil),
			status: 1,
		},
	}

	for _, variant := range getAllInterpreterVariantsForTests() {
		for kindName, op := range extCallOpCodes {
			for name, test := range tests {
				t.Run(fmt.Sprintf("%s/%s/%s", variant, kindName, name), func(t *testing.T) {
					ctrl := gomock.NewController(t)
					stateDB := NewMockStateDB(ctrl)
					stateDB.EXPECT().AccessAccount(target).Return(turandot.WarmAccess)
					times := 1
					if op == vm.EXTDELEGATECALL {
						times = 2
					}
					stateDB.EXPECT().GetCode(target).Times(times).Return(turandot.Code(test.callee))

					evm := GetCleanEVM(variant, stateDB)
					code := buildContainer(4, callAndReturnStatus(op, 0), addressWord(target))
					result, err := evm.Run(code, []byte{})
					if err != nil {
						t.Fatalf("unexpected error during execution: %v", err)
					}
					if !result.Success {
						t.Fatalf("a failing callee must not fail the caller, got %v", result)
					}
					if want := statusWord(test.status); !bytes.Equal(result.Output, want) {
						t.Errorf("unexpected status word, wanted %x, got %x", want, result.Output)
					}
				})
			}
		}
	}
}

func TestExtCalls_ChargeForTheAccountAccess(t *testing.T) {
	target := turandot.Address{0xC3}
	tests := map[string]struct {
		access turandot.AccessStatus
		cost   turandot.Gas
	}{
		"cold": {access: turandot.ColdAccess, cost: efvm.ColdAccountAccessCost},
		"warm": {access: turandot.WarmAccess, cost: efvm.WarmStorageReadCost},
	}

	for _, variant := range getAllInterpreterVariantsForTests() {
		for kindName, op := range extCallOpCodes {
			for name, test := range tests {
				t.Run(fmt.Sprintf("%s/%s/%s", variant, kindName, name), func(t *testing.T) {
					ctrl := gomock.NewController(t)
					stateDB := NewMockStateDB(ctrl)
					stateDB.EXPECT().AccessAccount(target).Return(test.access)
					// delegate call targets must carry container code to be
					// accepted, the other kinds run an empty account here
					if op == vm.EXTDELEGATECALL {
						callee := buildContainer(0, []byte{byte(vm.STOP)}, nil)
						stateDB.EXPECT().GetCode(target).Times(2).Return(turandot.Code(callee))
					} else {
						stateDB.EXPECT().GetCode(target).Return(turandot.Code{})
					}

					// the surrounding code costs 20 gas, 23 with the value
					// operand of EXTCALL
					want := turandot.Gas(20) + test.cost
					if op == vm.EXTCALL {
						want = 23 + test.cost
					}

					evm := GetCleanEVM(variant, stateDB)
					code := buildContainer(4, callAndReturnStatus(op, 0), addressWord(target))
					result, err := evm.Run(code, []byte{})
					if err != nil {
						t.Fatalf("unexpected error during execution: %v", err)
					}
					if !result.Success {
						t.Fatalf("execution failed, got %v", result)
					}
					if result.GasUsed != want {
						t.Errorf("unexpected gas consumption, wanted %d, got %d", want, result.GasUsed)
					}
					if want := statusWord(0); !bytes.Equal(result.Output, want) {
						t.Errorf("unexpected status word, wanted %x, got %x", want, result.Output)
					}
				})
			}
		}
	}
}

func TestExtCall_ChargesForValueTransfers(t *testing.T) {
	target := turandot.Address{0xC4}
	one := turandot.Value{31: 1}
	tests := map[string]struct {
		targetExists bool
		balance      turandot.Value
		dispatched   bool
		want         turandot.Gas
		status       byte
	}{
		"transfer to an existing account": {
			targetExists: true,
			balance:      one,
			dispatched:   true,
			want:         23 + efvm.ColdAccountAccessCost + efvm.CallValueTransferGas,
			status:       0,
		},
		"transfer creating the recipient": {
			targetExists: false,
			balance:      one,
			dispatched:   true,
			want:         23 + efvm.ColdAccountAccessCost + efvm.CallValueTransferGas + efvm.CallNewAccountGas,
			status:       0,
		},
		"transfer exceeding the balance": {
			targetExists: true,
			balance:      turandot.Value{},
			dispatched:   false,
			want:         23 + efvm.ColdAccountAccessCost + efvm.CallValueTransferGas,
			status:       1,
		},
	}

	for _, variant := range getAllInterpreterVariantsForTests() {
		for name, test := range tests {
			t.Run(fmt.Sprintf("%s/%s", variant, name), func(t *testing.T) {
				ctrl := gomock.NewController(t)
				stateDB := NewMockStateDB(ctrl)
				stateDB.EXPECT().AccessAccount(target).Return(turandot.ColdAccess)
				stateDB.EXPECT().AccountExists(target).Return(test.targetExists)
				// the balance check applies to the caller, running as the
				// zero address in this setup
				stateDB.EXPECT().GetBalance(turandot.Address{}).Return(test.balance)
				if test.dispatched {
					stateDB.EXPECT().GetCode(target).Return(turandot.Code{})
				}

				evm := GetCleanEVM(variant, stateDB)
				code := buildContainer(4, callAndReturnStatus(vm.EXTCALL, 1), addressWord(target))
				result, err := evm.Run(code, []byte{})
				if err != nil {
					t.Fatalf("unexpected error during execution: %v", err)
				}
				if !result.Success {
					t.Fatalf("execution failed, got %v", result)
				}
				if result.GasUsed != test.want {
					t.Errorf("unexpected gas consumption, wanted %d, got %d", test.want, result.GasUsed)
				}
				if want := statusWord(test.status); !bytes.Equal(result.Output, want) {
					t.Errorf("unexpected status word, wanted %x, got %x", want, result.Output)
				}
			})
		}
	}
}

func TestExtCalls_EnforceAMinimumCalleeGasBudget(t *testing.T) {
	// The caller code spends 7 gas before the call and 100 for the warm
	// account access. The smallest remaining budget g satisfying
	// g - g/64 >= 5000 is 5079; one unit less must skip the call.
	const upfrontGas = 7 + 100
	tests := map[string]struct {
		initialGas turandot.Gas
		dispatched bool
	}{
		"minimum budget reached": {initialGas: upfrontGas + 5079, dispatched: true},
		"minimum budget missed":  {initialGas: upfrontGas + 5078, dispatched: false},
	}

	target := turandot.Address{0xC5}
	for _, variant := range getAllInterpreterVariantsForTests() {
		for name, test := range tests {
			t.Run(fmt.Sprintf("%s/%s", variant, name), func(t *testing.T) {
				ctrl := gomock.NewController(t)
				stateDB := NewMockStateDB(ctrl)
				stateDB.EXPECT().AccessAccount(target).Return(turandot.WarmAccess)
				if test.dispatched {
					stateDB.EXPECT().GetCode(target).Return(turandot.Code{})
				}

				evm := GetCleanEVM(variant, stateDB)
				code := buildContainer(3, callAndReturnStatus(vm.EXTSTATICCALL, 0), addressWord(target))
				result, err := evm.RunWithGas(code, []byte{}, test.initialGas)
				if err != nil {
					t.Fatalf("unexpected error during execution: %v", err)
				}
				if !result.Success {
					t.Fatalf("execution failed, got %v", result)
				}
				status := byte(0)
				if !test.dispatched {
					status = 1
				}
				if want := statusWord(status); !bytes.Equal(result.Output, want) {
					t.Errorf("unexpected status word, wanted %x, got %x", want, result.Output)
				}
				// the skipped call is as expensive as a call to an empty
				// account returning its entire budget
				if want := turandot.Gas(20 + 100); result.GasUsed != want {
					t.Errorf("unexpected gas consumption, wanted %d, got %d", want, result.GasUsed)
				}
			})
		}
	}
}

func TestExtCalls_AreLimitedToAMaximumNestingDepth(t *testing.T) {
	tests := map[string]struct {
		depth      int
		dispatched bool
	}{
		"below the limit": {depth: efvm.MaxCallDepth - 1, dispatched: true},
		"at the limit":    {depth: efvm.MaxCallDepth, dispatched: false},
	}

	target := turandot.Address{0xC6}
	for _, variant := range getAllInterpreterVariantsForTests() {
		for name, test := range tests {
			t.Run(fmt.Sprintf("%s/%s", variant, name), func(t *testing.T) {
				ctrl := gomock.NewController(t)
				stateDB := NewMockStateDB(ctrl)
				stateDB.EXPECT().AccessAccount(target).Return(turandot.WarmAccess)
				if test.dispatched {
					stateDB.EXPECT().GetCode(target).Return(turandot.Code{})
				}

				evm := GetCleanEVM(variant, stateDB)
				evm.depth = test.depth
				code := buildContainer(3, callAndReturnStatus(vm.EXTSTATICCALL, 0), addressWord(target))
				result, err := evm.Run(code, []byte{})
				if err != nil {
					t.Fatalf("unexpected error during execution: %v", err)
				}
				if !result.Success {
					t.Fatalf("execution failed, got %v", result)
				}
				status := byte(0)
				if !test.dispatched {
					status = 1
				}
				if want := statusWord(status); !bytes.Equal(result.Output, want) {
					t.Errorf("unexpected status word, wanted %x, got %x", want, result.Output)
				}
			})
		}
	}
}

func TestExtDelegateCall_IsLimitedToContainerTargets(t *testing.T) {
	target := turandot.Address{0xC7}
	tests := map[string]struct {
		code       turandot.Code
		dispatched bool
	}{
		"container target": {
			code:       buildContainer(0, []byte{byte(vm.STOP)}, nil),
			dispatched: true,
		},
		"legacy code target": {
			code:       turandot.Code{byte(vm.STOP)},
			dispatched: false,
		},
		"empty target": {
			code:       turandot.Code{},
			dispatched: false,
		},
	}

	for _, variant := range getAllInterpreterVariantsForTests() {
		for name, test := range tests {
			t.Run(fmt.Sprintf("%s/%s", variant, name), func(t *testing.T) {
				ctrl := gomock.NewController(t)
				stateDB := NewMockStateDB(ctrl)
				stateDB.EXPECT().AccessAccount(target).Return(turandot.WarmAccess)
				times := 1
				if test.dispatched {
					times = 2
				}
				stateDB.EXPECT().GetCode(target).Times(times).Return(test.code)

				evm := GetCleanEVM(variant, stateDB)
				code := buildContainer(3, callAndReturnStatus(vm.EXTDELEGATECALL, 0), addressWord(target))
				result, err := evm.Run(code, []byte{})
				if err != nil {
					t.Fatalf("unexpected error during execution: %v", err)
				}
				if !result.Success {
					t.Fatalf("execution failed, got %v", result)
				}
				status := byte(0)
				if !test.dispatched {
					status = 1
				}
				if want := statusWord(status); !bytes.Equal(result.Output, want) {
					t.Errorf("unexpected status word, wanted %x, got %x", want, result.Output)
				}
			})
		}
	}
}

func TestExtCalls_RetainOneSixtyFourthOfTheRemainingGas(t *testing.T) {
	target := turandot.Address{0xC8}
	// a loop of 6 gas per round, eventually consuming its entire budget
	burnAll := buildContainer(1, []byte{
		byte(vm.PUSH0),
		byte(vm.POP),
		byte(vm.RJUMP), 0xFF, 0xFB,
	}, nil)

	for _, variant := range getAllInterpreterVariantsForTests() {
		t.Run(variant, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			stateDB := NewMockStateDB(ctrl)
			stateDB.EXPECT().AccessAccount(target).Return(turandot.WarmAccess)
			stateDB.EXPECT().GetCode(target).Return(turandot.Code(burnAll))

			evm := GetCleanEVM(variant, stateDB)
			code := buildContainer(3, callAndReturnStatus(vm.EXTSTATICCALL, 0), addressWord(target))

			// 6400 gas remain at the call site, of which 6300 are forwarded
			// and consumed; the retained 100 fund the 13 gas continuation
			const initialGas = 7 + 100 + 6400
			result, err := evm.RunWithGas(code, []byte{}, initialGas)
			if err != nil {
				t.Fatalf("unexpected error during execution: %v", err)
			}
			if !result.Success {
				t.Fatalf("execution failed, got %v", result)
			}
			if want := turandot.Gas(7 + 100 + 6300 + 13); result.GasUsed != want {
				t.Errorf("unexpected gas consumption, wanted %d, got %d", want, result.GasUsed)
			}
			if want := statusWord(1); !bytes.Equal(result.Output, want) {
				t.Errorf("unexpected status word, wanted %x, got %x", want, result.Output)
			}
		})
	}
}

func TestExtCall_ValueTransfersAreRejectedInStaticContexts(t *testing.T) {
	for _, variant := range getAllInterpreterVariantsForTests() {
		t.Run(fmt.Sprintf("%s/in a static entry frame", variant), func(t *testing.T) {
			target := turandot.Address{0xAA}
			ctrl := gomock.NewController(t)
			stateDB := NewMockStateDB(ctrl)
			stateDB.EXPECT().AccessAccount(target).Return(turandot.WarmAccess)

			evm := GetCleanEVM(variant, stateDB)
			evm.readOnly = true
			code := buildContainer(4, callAndReturnStatus(vm.EXTCALL, 1), addressWord(target))

			const initialGas = 1000
			result, err := evm.RunWithGas(code, []byte{}, initialGas)
			if err != nil {
				t.Fatalf("unexpected error during execution: %v", err)
			}
			if result.Success {
				t.Fatalf("a value transfer must fail in a static context, got %v", result)
			}
			if result.GasUsed != initialGas {
				t.Errorf("the write protection fault should consume all gas, got %d", result.GasUsed)
			}
		})

		t.Run(fmt.Sprintf("%s/behind an ext static call", variant), func(t *testing.T) {
			intermediate := turandot.Address{0xAB}
			target := turandot.Address{0xAC}
			callee := buildContainer(4, callAndReturnStatus(vm.EXTCALL, 1), addressWord(target))

			ctrl := gomock.NewController(t)
			stateDB := NewMockStateDB(ctrl)
			stateDB.EXPECT().AccessAccount(intermediate).Return(turandot.WarmAccess)
			stateDB.EXPECT().GetCode(intermediate).Return(turandot.Code(callee))
			stateDB.EXPECT().AccessAccount(target).Return(turandot.WarmAccess)

			evm := GetCleanEVM(variant, stateDB)
			code := buildContainer(3, callAndReturnStatus(vm.EXTSTATICCALL, 0), addressWord(intermediate))
			result, err := evm.Run(code, []byte{})
			if err != nil {
				t.Fatalf("unexpected error during execution: %v", err)
			}
			if !result.Success {
				t.Fatalf("the static caller itself should succeed, got %v", result)
			}
			if want := statusWord(1); !bytes.Equal(result.Output, want) {
				t.Errorf("unexpected status word, wanted %x, got %x", want, result.Output)
			}
		})
	}
}

// callAndReturnStatus builds a code section calling the address stored in the
// first data word and returning the 32-byte status word pushed by the call
// instruction. EXTCALL transfers the given value; the other call kinds have
// no value operand.
func callAndReturnStatus(op vm.OpCode, value byte) []byte {
	code := []byte{}
	if op == vm.EXTCALL {
		code = append(code, byte(vm.PUSH1), value)
	}
	code = append(code,
		byte(vm.PUSH0), // < input size
		byte(vm.PUSH0), // < input offset
		byte(vm.DATALOADN), 0x00, 0x00,
		byte(op),
		byte(vm.PUSH0),
		byte(vm.MSTORE),
		byte(vm.PUSH1), 32,
		byte(vm.PUSH0),
		byte(vm.RETURN),
	)
	return code
}

// callAndForwardOutput builds a code section calling the address stored in
// the first data word and returning the full output of the callee.
func callAndForwardOutput(op vm.OpCode) []byte {
	code := []byte{}
	if op == vm.EXTCALL {
		code = append(code, byte(vm.PUSH0)) // < no value transferred
	}
	code = append(code,
		byte(vm.PUSH0), // < input size
		byte(vm.PUSH0), // < input offset
		byte(vm.DATALOADN), 0x00, 0x00,
		byte(op),
		byte(vm.POP),
		byte(vm.RETURNDATASIZE),
		byte(vm.PUSH0),
		byte(vm.PUSH0),
		byte(vm.RETURNDATACOPY),
		byte(vm.RETURNDATASIZE),
		byte(vm.PUSH0),
		byte(vm.RETURN),
	)
	return code
}

// statusWord returns a 32-byte big-endian word holding the given value.
func statusWord(status byte) []byte {
	word := make([]byte, 32)
	word[31] = status
	return word
}
