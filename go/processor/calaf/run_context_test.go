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
	"math"
	"testing"

	"github.com/Fantom-foundation/Turandot/go/turandot"
	"go.uber.org/mock/gomock"
)

func TestCalls_InterpreterResultIsHandledCorrectly(t *testing.T) {
	tests := map[string]struct {
		setup   func(interpreter *turandot.MockInterpreter)
		success bool
		output  []byte
	}{
		"successful": {
			setup: func(interpreter *turandot.MockInterpreter) {
				interpreter.EXPECT().Run(gomock.Any()).Return(turandot.Result{Success: true}, nil)
			},
			success: true,
		},
		"failed": {
			setup: func(interpreter *turandot.MockInterpreter) {
				interpreter.EXPECT().Run(gomock.Any()).Return(turandot.Result{Success: false}, nil)
			},
			success: false,
		},
		"output": {
			setup: func(interpreter *turandot.MockInterpreter) {
				interpreter.EXPECT().Run(gomock.Any()).Return(turandot.Result{Success: true, Output: []byte("some output")}, nil)
			},
			success: true,
			output:  []byte("some output"),
		},
	}

	ctrl := gomock.NewController(t)
	context := turandot.NewMockTransactionContext(ctrl)
	interpreter := turandot.NewMockInterpreter(ctrl)

	runContext := runContext{
		context,
		interpreter,
		turandot.BlockParameters{},
		turandot.TransactionParameters{},
		0,
		false,
	}

	params := turandot.CallParameters{
		Sender:    turandot.Address{1},
		Recipient: turandot.Address{2},
		Value:     turandot.NewValue(0),
		Gas:       1000,
		Input:     []byte{},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			context.EXPECT().CreateSnapshot()
			context.EXPECT().GetCode(params.Recipient).Return(turandot.Code{})
			context.EXPECT().GetCodeHash(params.Recipient).Return(turandot.Hash{})
			context.EXPECT().RestoreSnapshot(gomock.Any()).AnyTimes()

			test.setup(interpreter)

			result, err := runContext.Call(turandot.Call, params)
			if err != nil {
				t.Errorf("Call returned an unexpected error: %v", err)
			}
			if result.Success != test.success {
				t.Errorf("Unexpected success value from interpreter call")
			}
			if string(result.Output) != string(test.output) {
				t.Errorf("Unexpected output value from interpreter call")
			}
		})
	}
}

func TestCall_TransferValueInCall(t *testing.T) {
	ctrl := gomock.NewController(t)
	context := turandot.NewMockTransactionContext(ctrl)
	interpreter := turandot.NewMockInterpreter(ctrl)
	runContext := runContext{
		context,
		interpreter,
		turandot.BlockParameters{},
		turandot.TransactionParameters{},
		0,
		false,
	}

	params := turandot.CallParameters{
		Sender:    turandot.Address{1},
		Recipient: turandot.Address{2},
		Value:     turandot.NewValue(10),
		Gas:       1000,
		Input:     []byte{},
	}

	context.EXPECT().CreateSnapshot()
	context.EXPECT().GetCode(params.Recipient).Return(turandot.Code{})
	context.EXPECT().GetCodeHash(params.Recipient).Return(turandot.Hash{})

	context.EXPECT().GetBalance(params.Sender).Return(turandot.NewValue(100)).Times(2)
	context.EXPECT().GetBalance(params.Recipient).Return(turandot.NewValue(0)).Times(2)
	context.EXPECT().SetBalance(params.Sender, turandot.NewValue(90))
	context.EXPECT().SetBalance(params.Recipient, turandot.NewValue(10))

	interpreter.EXPECT().Run(gomock.Any()).Return(turandot.Result{Success: true}, nil)

	_, err := runContext.Call(turandot.Call, params)
	if err != nil {
		t.Errorf("transferValue returned an error: %v", err)
	}
}

func TestCall_FailedValueTransferAbortsCall(t *testing.T) {
	ctrl := gomock.NewController(t)
	context := turandot.NewMockTransactionContext(ctrl)
	interpreter := turandot.NewMockInterpreter(ctrl)
	runContext := runContext{
		context,
		interpreter,
		turandot.BlockParameters{},
		turandot.TransactionParameters{},
		0,
		false,
	}

	params := turandot.CallParameters{
		Sender:    turandot.Address{1},
		Recipient: turandot.Address{2},
		Value:     turandot.NewValue(10),
		Gas:       1000,
		Input:     []byte{},
	}
	context.EXPECT().GetBalance(params.Sender).Return(turandot.NewValue(0))

	result, err := runContext.Call(turandot.Call, params)
	if err != nil {
		t.Errorf("Correct execution of the transaction should not return an error")
	}
	if result.Success {
		t.Errorf("The transaction should have failed")
	}
	if want, got := params.Gas, result.GasLeft; want != got {
		t.Errorf("unexpected remaining gas, want %d, got %d", want, got)
	}
}

func TestCall_DepthLimitIsEnforced(t *testing.T) {
	ctrl := gomock.NewController(t)
	context := turandot.NewMockTransactionContext(ctrl)
	interpreter := turandot.NewMockInterpreter(ctrl)

	runContext := runContext{
		context,
		interpreter,
		turandot.BlockParameters{},
		turandot.TransactionParameters{},
		MaxRecursiveDepth + 1,
		false,
	}

	result, err := runContext.Call(turandot.Call, turandot.CallParameters{Gas: 1000})
	if err != nil {
		t.Fatalf("Call returned an unexpected error: %v", err)
	}
	if result.Success {
		t.Errorf("call above the depth limit did not fail")
	}
	if want, got := turandot.Gas(1000), result.GasLeft; want != got {
		t.Errorf("unexpected remaining gas, want %d, got %d", want, got)
	}
}

func TestCall_StaticCallsExecuteInStaticMode(t *testing.T) {
	ctrl := gomock.NewController(t)
	context := turandot.NewMockTransactionContext(ctrl)
	interpreter := turandot.NewMockInterpreter(ctrl)

	runContext := runContext{
		context,
		interpreter,
		turandot.BlockParameters{},
		turandot.TransactionParameters{},
		0,
		false,
	}

	params := turandot.CallParameters{
		Sender:    turandot.Address{1},
		Recipient: turandot.Address{2},
		Gas:       1000,
	}

	context.EXPECT().CreateSnapshot()
	context.EXPECT().GetCode(params.Recipient).Return(turandot.Code{})
	context.EXPECT().GetCodeHash(params.Recipient).Return(turandot.Hash{})

	interpreter.EXPECT().Run(gomock.Any()).DoAndReturn(
		func(parameters turandot.Parameters) (turandot.Result, error) {
			if !parameters.Static {
				t.Errorf("static call was not executed in static mode")
			}
			if want, got := 0, parameters.Depth; want != got {
				t.Errorf("unexpected call depth, want %d, got %d", want, got)
			}
			return turandot.Result{Success: true}, nil
		})

	if _, err := runContext.Call(turandot.StaticCall, params); err != nil {
		t.Errorf("Call returned an unexpected error: %v", err)
	}
}

func TestCall_DelegateCallRunsCodeOfCodeAddress(t *testing.T) {
	ctrl := gomock.NewController(t)
	context := turandot.NewMockTransactionContext(ctrl)
	interpreter := turandot.NewMockInterpreter(ctrl)

	runContext := runContext{
		context,
		interpreter,
		turandot.BlockParameters{},
		turandot.TransactionParameters{},
		0,
		false,
	}

	code := turandot.Code{0x00}
	params := turandot.CallParameters{
		Sender:      turandot.Address{1},
		Recipient:   turandot.Address{2},
		CodeAddress: turandot.Address{3},
		Gas:         1000,
	}

	context.EXPECT().CreateSnapshot()
	context.EXPECT().GetCode(params.CodeAddress).Return(code)
	context.EXPECT().GetCodeHash(params.CodeAddress).Return(turandot.Hash{1})

	interpreter.EXPECT().Run(gomock.Any()).DoAndReturn(
		func(parameters turandot.Parameters) (turandot.Result, error) {
			if want, got := params.Recipient, parameters.Recipient; want != got {
				t.Errorf("unexpected recipient, want %v, got %v", want, got)
			}
			if string(parameters.Code) != string(code) {
				t.Errorf("delegate call does not run the code of the code address")
			}
			return turandot.Result{Success: true}, nil
		})

	if _, err := runContext.Call(turandot.DelegateCall, params); err != nil {
		t.Errorf("Call returned an unexpected error: %v", err)
	}
}

func TestCall_RevertedExecutionsKeepTheirRemainingGas(t *testing.T) {
	tests := map[string]struct {
		result  turandot.Result
		gasLeft turandot.Gas
	}{
		"revert": {
			result:  turandot.Result{Success: false, GasLeft: 500, Output: []byte("reason")},
			gasLeft: 500,
		},
		"failure": {
			result:  turandot.Result{Success: false},
			gasLeft: 0,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			context := turandot.NewMockTransactionContext(ctrl)
			interpreter := turandot.NewMockInterpreter(ctrl)

			runContext := runContext{
				context,
				interpreter,
				turandot.BlockParameters{},
				turandot.TransactionParameters{},
				0,
				false,
			}

			params := turandot.CallParameters{
				Sender:    turandot.Address{1},
				Recipient: turandot.Address{2},
				Gas:       1000,
			}

			context.EXPECT().CreateSnapshot()
			context.EXPECT().GetCode(params.Recipient).Return(turandot.Code{})
			context.EXPECT().GetCodeHash(params.Recipient).Return(turandot.Hash{})
			context.EXPECT().RestoreSnapshot(gomock.Any())

			interpreter.EXPECT().Run(gomock.Any()).Return(test.result, nil)

			result, err := runContext.Call(turandot.Call, params)
			if err != nil {
				t.Fatalf("Call returned an unexpected error: %v", err)
			}
			if result.Success {
				t.Errorf("unsuccessful execution was reported as successful")
			}
			if want, got := test.gasLeft, result.GasLeft; want != got {
				t.Errorf("unexpected remaining gas, want %d, got %d", want, got)
			}
		})
	}
}

func TestCall_CallsToEmptyAccountsSucceedWithoutExecution(t *testing.T) {
	ctrl := gomock.NewController(t)
	context := turandot.NewMockTransactionContext(ctrl)
	interpreter := turandot.NewMockInterpreter(ctrl)

	runContext := runContext{
		context,
		interpreter,
		turandot.BlockParameters{Revision: turandot.R09_Berlin},
		turandot.TransactionParameters{},
		0,
		false,
	}

	params := turandot.CallParameters{
		Sender:    turandot.Address{1},
		Recipient: turandot.Address{2},
		Gas:       1000,
	}

	context.EXPECT().CreateSnapshot()
	context.EXPECT().AccountExists(params.Recipient).Return(false)

	result, err := runContext.Call(turandot.Call, params)
	if err != nil {
		t.Fatalf("Call returned an unexpected error: %v", err)
	}
	if !result.Success {
		t.Errorf("call to an empty account failed")
	}
	if want, got := params.Gas, result.GasLeft; want != got {
		t.Errorf("unexpected remaining gas, want %d, got %d", want, got)
	}
}

func TestTransferValue_SuccessfulValueTransfer(t *testing.T) {
	values := map[string]turandot.Value{
		"zeroValue":     turandot.NewValue(0),
		"smallValue":    turandot.NewValue(10),
		"senderBalance": turandot.NewValue(100),
	}

	senderBalance := turandot.NewValue(100)
	recipientBalance := turandot.NewValue(0)

	ctrl := gomock.NewController(t)
	context := turandot.NewMockTransactionContext(ctrl)

	for name, value := range values {
		t.Run(name, func(t *testing.T) {
			sender := turandot.Address{1}
			recipient := turandot.Address{2}

			if name != "zeroValue" {
				context.EXPECT().GetBalance(sender).Return(senderBalance)
				context.EXPECT().GetBalance(recipient).Return(recipientBalance)
			}

			if !canTransferValue(context, value, sender, recipient) {
				t.Errorf("Value should be possible but was not")
			}
		})
	}
}

func TestTransferValue_FailedValueTransfer(t *testing.T) {
	transfers := map[string]struct {
		value           turandot.Value
		senderBalance   turandot.Value
		receiverBalance turandot.Value
	}{
		"insufficientBalance": {
			turandot.NewValue(100),
			turandot.NewValue(50),
			turandot.NewValue(0),
		},
		"overflow": {
			turandot.NewValue(100),
			turandot.NewValue(1000),
			turandot.NewValue(math.MaxUint64, math.MaxUint64, math.MaxUint64, math.MaxUint64-10),
		},
	}

	for name, transfer := range transfers {
		t.Run(name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			context := turandot.NewMockTransactionContext(ctrl)

			context.EXPECT().GetBalance(turandot.Address{1}).Return(transfer.senderBalance).AnyTimes()
			context.EXPECT().GetBalance(turandot.Address{2}).Return(transfer.receiverBalance).AnyTimes()

			if canTransferValue(context, transfer.value, turandot.Address{1}, turandot.Address{2}) {
				t.Errorf("value transfer should have returned an error")
			}
		})
	}
}

func TestCanTransferValue_SameSenderAndReceiver(t *testing.T) {
	tests := map[string]struct {
		value         turandot.Value
		expectedError bool
	}{
		"sufficientBalance":   {turandot.NewValue(10), false},
		"insufficientBalance": {turandot.NewValue(1000), true},
	}

	for _, test := range tests {
		ctrl := gomock.NewController(t)
		context := turandot.NewMockTransactionContext(ctrl)
		context.EXPECT().GetBalance(gomock.Any()).Return(turandot.NewValue(100))

		canTransfer := canTransferValue(context, test.value, turandot.Address{1}, turandot.Address{1})
		if test.expectedError {
			if canTransfer {
				t.Errorf("transfer value should have not been possible")
			}
		} else {
			if !canTransfer {
				t.Errorf("transfer value should have been possible")
			}
		}
	}
}

func TestTransferValue_BalanceIsNotChangedWhenValueIsTransferredToTheSameAccount(t *testing.T) {
	ctrl := gomock.NewController(t)
	context := turandot.NewMockTransactionContext(ctrl)

	address := turandot.Address{1}
	value := turandot.NewValue(10)

	transferValue(context, value, address, address)
}

func TestIsRevert_DistinguishesRevertsFromOtherFailures(t *testing.T) {
	tests := map[string]struct {
		result turandot.Result
		err    error
		want   bool
	}{
		"revert with gas": {
			result: turandot.Result{Success: false, GasLeft: 10},
			want:   true,
		},
		"revert with output": {
			result: turandot.Result{Success: false, Output: []byte{1}},
			want:   true,
		},
		"exhausted": {
			result: turandot.Result{Success: false},
			want:   false,
		},
		"success": {
			result: turandot.Result{Success: true, GasLeft: 10},
			want:   false,
		},
		"error": {
			result: turandot.Result{Success: false, GasLeft: 10},
			err:    fmt.Errorf("interpreter failure"),
			want:   false,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			if want, got := test.want, isRevert(test.result, test.err); want != got {
				t.Errorf("unexpected revert classification, want %t, got %t", want, got)
			}
		})
	}
}
