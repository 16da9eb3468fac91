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
	"bytes"
	"fmt"
	"math/big"
	"strings"

	"github.com/Fantom-foundation/Turandot/go/turandot"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const (
	callValueTransferGas = turandot.Gas(9000)
	createGas            = turandot.Gas(32000)
	createDataGas        = turandot.Gas(200)
	memoryGas            = turandot.Gas(3)
)

// DriverAddress is the NodeDriver contract address
// It is wrapped in a function to be immutable
func DriverAddress() turandot.Address {
	return turandot.Address(common.HexToAddress("0xd100a01e00000000000000000000000000000000"))
}

// StateContractAddress is the EvmWriter pre-compiled contract address
// It is wrapped in a function to be immutable
func StateContractAddress() turandot.Address {
	return turandot.Address(common.HexToAddress("0xd100ec0000000000000000000000000000000000"))
}

// stateContractABI is the input ABI used to generate the binding from
var stateContractABI string = "[{\"anonymous\":false,\"inputs\":[{\"indexed\":false,\"internalType\":\"uint256\",\"name\":\"num\",\"type\":\"uint256\"}],\"name\":\"AdvanceEpochs\",\"type\":\"event\"},{\"anonymous\":false,\"inputs\":[{\"indexed\":false,\"internalType\":\"bytes\",\"name\":\"diff\",\"type\":\"bytes\"}],\"name\":\"UpdateNetworkRules\",\"type\":\"event\"},{\"anonymous\":false,\"inputs\":[{\"indexed\":false,\"internalType\":\"uint256\",\"name\":\"version\",\"type\":\"uint256\"}],\"name\":\"UpdateNetworkVersion\",\"type\":\"event\"},{\"anonymous\":false,\"inputs\":[{\"indexed\":true,\"internalType\":\"uint256\",\"name\":\"validatorID\",\"type\":\"uint256\"},{\"indexed\":false,\"internalType\":\"bytes\",\"name\":\"pubkey\",\"type\":\"bytes\"}],\"name\":\"UpdateValidatorPubkey\",\"type\":\"event\"},{\"anonymous\":false,\"inputs\":[{\"indexed\":true,\"internalType\":\"uint256\",\"name\":\"validatorID\",\"type\":\"uint256\"},{\"indexed\":false,\"internalType\":\"uint256\",\"name\":\"weight\",\"type\":\"uint256\"}],\"name\":\"UpdateValidatorWeight\",\"type\":\"event\"},{\"anonymous\":false,\"inputs\":[{\"indexed\":true,\"internalType\":\"address\",\"name\":\"backend\",\"type\":\"address\"}],\"name\":\"UpdatedBackend\",\"type\":\"event\"},{\"constant\":false,\"inputs\":[{\"internalType\":\"address\",\"name\":\"_backend\",\"type\":\"address\"}],\"name\":\"setBackend\",\"outputs\":[],\"payable\":false,\"stateMutability\":\"nonpayable\",\"type\":\"function\"},{\"constant\":false,\"inputs\":[{\"internalType\":\"address\",\"name\":\"_backend\",\"type\":\"address\"},{\"internalType\":\"address\",\"name\":\"_evmWriterAddress\",\"type\":\"address\"}],\"name\":\"initialize\",\"outputs\":[],\"payable\":false,\"stateMutability\":\"nonpayable\",\"type\":\"function\"},{\"constant\":false,\"inputs\":[{\"internalType\":\"address\",\"name\":\"acc\",\"type\":\"address\"},{\"internalType\":\"uint256\",\"name\":\"value\",\"type\":\"uint256\"}],\"name\":\"setBalance\",\"outputs\":[],\"payable\":false,\"stateMutability\":\"nonpayable\",\"type\":\"function\"},{\"constant\":false,\"inputs\":[{\"internalType\":\"address\",\"name\":\"acc\",\"type\":\"address\"},{\"internalType\":\"address\",\"name\":\"from\",\"type\":\"address\"}],\"name\":\"copyCode\",\"outputs\":[],\"payable\":false,\"stateMutability\":\"nonpayable\",\"type\":\"function\"},{\"constant\":false,\"inputs\":[{\"internalType\":\"address\",\"name\":\"acc\",\"type\":\"address\"},{\"internalType\":\"address\",\"name\":\"with\",\"type\":\"address\"}],\"name\":\"swapCode\",\"outputs\":[],\"payable\":false,\"stateMutability\":\"nonpayable\",\"type\":\"function\"},{\"constant\":false,\"inputs\":[{\"internalType\":\"address\",\"name\":\"acc\",\"type\":\"address\"},{\"internalType\":\"bytes32\",\"name\":\"key\",\"type\":\"bytes32\"},{\"internalType\":\"bytes32\",\"name\":\"value\",\"type\":\"bytes32\"}],\"name\":\"setStorage\",\"outputs\":[],\"payable\":false,\"stateMutability\":\"nonpayable\",\"type\":\"function\"},{\"constant\":false,\"inputs\":[{\"internalType\":\"address\",\"name\":\"acc\",\"type\":\"address\"},{\"internalType\":\"uint256\",\"name\":\"diff\",\"type\":\"uint256\"}],\"name\":\"incNonce\",\"outputs\":[],\"payable\":false,\"stateMutability\":\"nonpayable\",\"type\":\"function\"},{\"constant\":false,\"inputs\":[{\"internalType\":\"bytes\",\"name\":\"diff\",\"type\":\"bytes\"}],\"name\":\"updateNetworkRules\",\"outputs\":[],\"payable\":false,\"stateMutability\":\"nonpayable\",\"type\":\"function\"},{\"constant\":false,\"inputs\":[{\"internalType\":\"uint256\",\"name\":\"version\",\"type\":\"uint256\"}],\"name\":\"updateNetworkVersion\",\"outputs\":[],\"payable\":false,\"stateMutability\":\"nonpayable\",\"type\":\"function\"},{\"constant\":false,\"inputs\":[{\"internalType\":\"uint256\",\"name\":\"num\",\"type\":\"uint256\"}],\"name\":\"advanceEpochs\",\"outputs\":[],\"payable\":false,\"stateMutability\":\"nonpayable\",\"type\":\"function\"},{\"constant\":false,\"inputs\":[{\"internalType\":\"uint256\",\"name\":\"validatorID\",\"type\":\"uint256\"},{\"internalType\":\"uint256\",\"name\":\"value\",\"type\":\"uint256\"}],\"name\":\"updateValidatorWeight\",\"outputs\":[],\"payable\":false,\"stateMutability\":\"nonpayable\",\"type\":\"function\"},{\"constant\":false,\"inputs\":[{\"internalType\":\"uint256\",\"name\":\"validatorID\",\"type\":\"uint256\"},{\"internalType\":\"bytes\",\"name\":\"pubkey\",\"type\":\"bytes\"}],\"name\":\"updateValidatorPubkey\",\"outputs\":[],\"payable\":false,\"stateMutability\":\"nonpayable\",\"type\":\"function\"},{\"constant\":false,\"inputs\":[{\"internalType\":\"address\",\"name\":\"_auth\",\"type\":\"address\"},{\"internalType\":\"uint256\",\"name\":\"validatorID\",\"type\":\"uint256\"},{\"internalType\":\"bytes\",\"name\":\"pubkey\",\"type\":\"bytes\"},{\"internalType\":\"uint256\",\"name\":\"status\",\"type\":\"uint256\"},{\"internalType\":\"uint256\",\"name\":\"createdEpoch\",\"type\":\"uint256\"},{\"internalType\":\"uint256\",\"name\":\"createdTime\",\"type\":\"uint256\"},{\"internalType\":\"uint256\",\"name\":\"deactivatedEpoch\",\"type\":\"uint256\"},{\"internalType\":\"uint256\",\"name\":\"deactivatedTime\",\"type\":\"uint256\"}],\"name\":\"setGenesisValidator\",\"outputs\":[],\"payable\":false,\"stateMutability\":\"nonpayable\",\"type\":\"function\"},{\"constant\":false,\"inputs\":[{\"internalType\":\"address\",\"name\":\"delegator\",\"type\":\"address\"},{\"internalType\":\"uint256\",\"name\":\"toValidatorID\",\"type\":\"uint256\"},{\"internalType\":\"uint256\",\"name\":\"stake\",\"type\":\"uint256\"},{\"internalType\":\"uint256\",\"name\":\"lockedStake\",\"type\":\"uint256\"},{\"internalType\":\"uint256\",\"name\":\"lockupFromEpoch\",\"type\":\"uint256\"},{\"internalType\":\"uint256\",\"name\":\"lockupEndTime\",\"type\":\"uint256\"},{\"internalType\":\"uint256\",\"name\":\"lockupDuration\",\"type\":\"uint256\"},{\"internalType\":\"uint256\",\"name\":\"earlyUnlockPenalty\",\"type\":\"uint256\"},{\"internalType\":\"uint256\",\"name\":\"rewards\",\"type\":\"uint256\"}],\"name\":\"setGenesisDelegation\",\"outputs\":[],\"payable\":false,\"stateMutability\":\"nonpayable\",\"type\":\"function\"},{\"constant\":false,\"inputs\":[{\"internalType\":\"uint256\",\"name\":\"validatorID\",\"type\":\"uint256\"},{\"internalType\":\"uint256\",\"name\":\"status\",\"type\":\"uint256\"}],\"name\":\"deactivateValidator\",\"outputs\":[],\"payable\":false,\"stateMutability\":\"nonpayable\",\"type\":\"function\"},{\"constant\":false,\"inputs\":[{\"internalType\":\"uint256[]\",\"name\":\"nextValidatorIDs\",\"type\":\"uint256[]\"}],\"name\":\"sealEpochValidators\",\"outputs\":[],\"payable\":false,\"stateMutability\":\"nonpayable\",\"type\":\"function\"},{\"constant\":false,\"inputs\":[{\"internalType\":\"uint256[]\",\"name\":\"offlineTimes\",\"type\":\"uint256[]\"},{\"internalType\":\"uint256[]\",\"name\":\"offlineBlocks\",\"type\":\"uint256[]\"},{\"internalType\":\"uint256[]\",\"name\":\"uptimes\",\"type\":\"uint256[]\"},{\"internalType\":\"uint256[]\",\"name\":\"originatedTxsFee\",\"type\":\"uint256[]\"}],\"name\":\"sealEpoch\",\"outputs\":[],\"payable\":false,\"stateMutability\":\"nonpayable\",\"type\":\"function\"},{\"constant\":false,\"inputs\":[{\"internalType\":\"uint256[]\",\"name\":\"offlineTimes\",\"type\":\"uint256[]\"},{\"internalType\":\"uint256[]\",\"name\":\"offlineBlocks\",\"type\":\"uint256[]\"},{\"internalType\":\"uint256[]\",\"name\":\"uptimes\",\"type\":\"uint256[]\"},{\"internalType\":\"uint256[]\",\"name\":\"originatedTxsFee\",\"type\":\"uint256[]\"},{\"internalType\":\"uint256\",\"name\":\"usedGas\",\"type\":\"uint256\"}],\"name\":\"sealEpochV1\",\"outputs\":[],\"payable\":false,\"stateMutability\":\"nonpayable\",\"type\":\"function\"}]"

var (
	setBalanceMethodID []byte
	copyCodeMethodID   []byte
	swapCodeMethodID   []byte
	incNonceMethodID   []byte
)

func init() {
	abi, err := abi.JSON(strings.NewReader(stateContractABI))
	if err != nil {
		panic(fmt.Errorf("failed to parse stateContractABI: %w", err))
	}

	for name, constID := range map[string]*[]byte{
		"setBalance": &setBalanceMethodID,
		"copyCode":   &copyCodeMethodID,
		"swapCode":   &swapCodeMethodID,
		"incNonce":   &incNonceMethodID,
	} {
		method, exist := abi.Methods[name]
		if !exist {
			panic("unknown EvmWriter method")
		}

		*constID = make([]byte, len(method.ID))
		copy(*constID, method.ID)
	}
}

var ErrExecutionReverted = fmt.Errorf("execution reverted")
var ErrOutOfGas = fmt.Errorf("out of gas")

func isStateContract(address turandot.Address) bool {
	return address == StateContractAddress()
}

// handleStateContract serves the EvmWriter contract, which enables the node
// driver to manipulate balances, code, and nonces directly. The storage
// manipulation of the original contract has no counterpart in this state
// interface and reverts like any other unknown method.
func handleStateContract(
	state turandot.WorldState,
	sender turandot.Address,
	receiver turandot.Address,
	input []byte,
	gas turandot.Gas,
) (turandot.CallResult, bool) {
	if receiver != StateContractAddress() {
		return turandot.CallResult{}, false
	}
	if sender != DriverAddress() {
		return turandot.CallResult{}, true
	}
	if len(input) < 4 {
		return turandot.CallResult{}, true
	}

	err := fmt.Errorf("invalid method ID")
	gasLeft := turandot.Gas(0)

	selector := input[:4]
	input = input[4:]
	if bytes.Equal(selector, setBalanceMethodID) {
		gasLeft, err = executeStateSetBalance(state, sender, input, gas)
	} else if bytes.Equal(selector, copyCodeMethodID) {
		gasLeft, err = executeStateContractCopyCode(state, input, gas)
	} else if bytes.Equal(selector, swapCodeMethodID) {
		gasLeft, err = executeStateContractSwapCode(state, input, gas)
	} else if bytes.Equal(selector, incNonceMethodID) {
		gasLeft, err = executeStateContractIncNonce(state, sender, input, gas)
	}

	return turandot.CallResult{
		Success: err == nil,
		Output:  nil,
		GasLeft: gasLeft,
	}, true
}

func executeStateSetBalance(state turandot.WorldState, sender turandot.Address, input []byte, gas turandot.Gas) (turandot.Gas, error) {
	if gas < callValueTransferGas {
		return 0, ErrOutOfGas
	}
	gas -= callValueTransferGas
	if len(input) != 64 {
		return 0, ErrExecutionReverted
	}

	account := turandot.Address(input[12:32])
	value := turandot.Value(input[32:64])

	if account == sender {
		// Origin balance shouldn't decrease during his transaction
		return 0, ErrExecutionReverted
	}

	state.SetBalance(account, value)
	return gas, nil
}

func executeStateContractCopyCode(state turandot.WorldState, input []byte, gas turandot.Gas) (turandot.Gas, error) {
	if gas < createGas {
		return 0, ErrOutOfGas
	}
	gas -= createGas
	if len(input) != 64 {
		return 0, ErrExecutionReverted
	}

	accountTo := turandot.Address(input[12:32])
	accountFrom := turandot.Address(input[32+12 : 32+32])

	code := state.GetCode(accountFrom)
	cost := turandot.Gas(len(code)) * (createDataGas + memoryGas)
	if gas < cost {
		return 0, ErrOutOfGas
	}
	gas -= cost
	if accountFrom != accountTo {
		state.SetCode(accountTo, code)
	}

	return gas, nil
}

func executeStateContractSwapCode(state turandot.WorldState, input []byte, gas turandot.Gas) (turandot.Gas, error) {
	cost := 2 * createGas
	if gas < cost {
		return 0, ErrOutOfGas
	}
	gas -= cost
	if len(input) != 64 {
		return 0, ErrExecutionReverted
	}

	account0 := turandot.Address(input[12:32])
	account1 := turandot.Address(input[32+12 : 32+32])
	code0 := state.GetCode(account0)
	code1 := state.GetCode(account1)

	cost0 := turandot.Gas(len(code0)) * (createDataGas + memoryGas)
	cost1 := turandot.Gas(len(code1)) * (createDataGas + memoryGas)
	cost = (cost0 + cost1) / 2 // 50% discount because trie size won't increase after pruning
	if gas < cost {
		return 0, ErrOutOfGas
	}
	gas -= cost
	if account0 != account1 {
		state.SetCode(account0, code1)
		state.SetCode(account1, code0)
	}

	return gas, nil
}

func executeStateContractIncNonce(state turandot.WorldState, sender turandot.Address, input []byte, gas turandot.Gas) (turandot.Gas, error) {
	if gas < callValueTransferGas {
		return 0, ErrOutOfGas
	}
	gas -= callValueTransferGas
	if len(input) != 64 {
		return 0, ErrExecutionReverted
	}

	account := turandot.Address(input[12:32])
	value := new(big.Int).SetBytes(input[32:64])

	if account == sender {
		// Origin nonce shouldn't change during his transaction
		return 0, ErrExecutionReverted
	}

	if value.Sign() <= 0 || value.Cmp(big.NewInt(256)) >= 0 {
		// Don't allow large nonce increasing to prevent a nonce overflow
		return 0, ErrExecutionReverted
	}

	state.SetNonce(account, state.GetNonce(account)+value.Uint64())

	return gas, nil
}
