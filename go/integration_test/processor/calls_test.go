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
	"fmt"
	"math/big"
	"slices"
	"testing"

	"github.com/Fantom-foundation/Turandot/go/turandot"
	"github.com/Fantom-foundation/Turandot/go/turandot/vm"
)

func TestProcessor_MaximalCallDepthIsEnforced(t *testing.T) {
	gasLimit := turandot.Gas(1000000000000)
	for processorName, processor := range getProcessors() {
		t.Run(fmt.Sprintf("%s-MaxCallDepth", processorName), func(t *testing.T) {
			sender := turandot.Address{1}
			receiver := &turandot.Address{2}

			// Each frame increments the counter received as input and calls
			// itself with the new counter. Once the call depth limit stops the
			// recursion, the deepest frame returns its counter, and each frame
			// on the way up passes it along. The counter reported at the top
			// is the number of frames that were executed.
			code := buildContainer(4, []byte{
				byte(vm.PUSH0),
				byte(vm.CALLDATALOAD),
				byte(vm.PUSH1), byte(1),
				byte(vm.ADD),
				byte(vm.PUSH0),
				byte(vm.MSTORE),
				byte(vm.PUSH0), // < value
				byte(vm.PUSH1), byte(32),
				byte(vm.PUSH0),
				byte(vm.ADDRESS),
				byte(vm.EXTCALL),
				byte(vm.RJUMPI), byte(0), byte(5), // < keep own counter if the call failed
				byte(vm.PUSH1), byte(32),
				byte(vm.PUSH0),
				byte(vm.PUSH0),
				byte(vm.RETURNDATACOPY),
				byte(vm.PUSH1), byte(32),
				byte(vm.PUSH0),
				byte(vm.RETURN),
			}, nil)

			blockParams := turandot.BlockParameters{Revision: turandot.R14_Prague}
			transaction := turandot.Transaction{
				Sender:    sender,
				Recipient: receiver,
				GasLimit:  gasLimit,
				Nonce:     0,
				Input:     turandot.Data{},
			}

			state := WorldState{
				sender:    Account{},
				*receiver: Account{Code: code},
			}
			transactionContext := newScenarioContext(state)

			result, err := processor.Run(blockParams, transaction, transactionContext)

			if err != nil || !result.Success {
				t.Errorf("execution failed with error: %v and result %v", err, result)
			} else {
				expectedDepth := uint64(1025)
				depth := big.NewInt(0).SetBytes(result.Output).Uint64()
				if depth != expectedDepth {
					t.Errorf("expected call depth is %v, got %v", expectedDepth, depth)
				}
			}
		})
	}
}

func TestProcessor_CallTypesExecuteInExpectedContext(t *testing.T) {
	for processorName, processor := range getProcessors() {
		for variantName, variant := range extCallVariants() {
			t.Run(fmt.Sprintf("%s-%s", processorName, variantName), func(t *testing.T) {
				sender0 := turandot.Address{1}
				receiver0 := turandot.Address{2}
				receiver1 := turandot.Address{3}

				code0 := buildContainer(4,
					callAndForwardOutput(variant, 0),
					addressWord(receiver1))

				// The callee reports the address of the account it runs for.
				code1 := buildContainer(2, []byte{
					byte(vm.ADDRESS),
					byte(vm.PUSH0),
					byte(vm.MSTORE),
					byte(vm.PUSH1), byte(32),
					byte(vm.PUSH0),
					byte(vm.RETURN),
				}, nil)

				state := WorldState{
					sender0:   Account{},
					receiver0: Account{Code: code0},
					receiver1: Account{Code: code1},
				}
				transaction := turandot.Transaction{
					Sender:    sender0,
					Recipient: &receiver0,
					GasLimit:  sufficientGas,
				}

				transactionContext := newScenarioContext(state)

				blockParams := turandot.BlockParameters{Revision: turandot.R14_Prague}
				result, err := processor.Run(blockParams, transaction, transactionContext)
				if err != nil || !result.Success {
					t.Fatalf("execution was not successful or failed with error %v", err)
				}

				// A delegate call runs the callee's code in the caller's frame,
				// the other call types start a frame for the callee itself.
				expected := receiver1
				if variant.op == vm.EXTDELEGATECALL {
					expected = receiver0
				}

				if want, got := addressWord(expected), result.Output; !slices.Equal(want, got) {
					t.Errorf("code did not run in the expected context, want %x, got %x", want, got)
				}
			})
		}
	}
}
