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
	"github.com/Fantom-foundation/Turandot/go/turandot"

	"github.com/ethereum/go-ethereum/common"
	geth "github.com/ethereum/go-ethereum/core/vm"
)

func handlePrecompiledContract(
	revision turandot.Revision,
	input turandot.Data,
	address turandot.Address,
	gas turandot.Gas,
) (turandot.CallResult, bool) {
	contract, ok := precompiledContract(address, revision)
	if !ok {
		return turandot.CallResult{}, false
	}
	gasCost := contract.RequiredGas(input)
	if gas < turandot.Gas(gasCost) {
		return turandot.CallResult{}, true
	}
	gas -= turandot.Gas(gasCost)
	output, err := contract.Run(input)

	return turandot.CallResult{
		Success: err == nil, // precompiled contracts only return errors on invalid input
		Output:  output,
		GasLeft: gas,
	}, true
}

func isPrecompiled(address turandot.Address, revision turandot.Revision) bool {
	_, ok := precompiledContract(address, revision)
	return ok
}

func precompiledContract(address turandot.Address, revision turandot.Revision) (geth.PrecompiledContract, bool) {
	var precompiles map[common.Address]geth.PrecompiledContract
	switch revision {
	case turandot.R14_Prague, turandot.R13_Cancun:
		precompiles = geth.PrecompiledContractsCancun
	case turandot.R12_Shanghai, turandot.R11_Paris, turandot.R10_London, turandot.R09_Berlin:
		precompiles = geth.PrecompiledContractsBerlin
	default: // Istanbul is the oldest supported revision
		precompiles = geth.PrecompiledContractsIstanbul
	}
	contract, ok := precompiles[common.Address(address)]
	return contract, ok
}

func precompiledAddresses(revision turandot.Revision) []turandot.Address {
	var addresses []common.Address
	switch revision {
	case turandot.R14_Prague, turandot.R13_Cancun:
		addresses = geth.PrecompiledAddressesCancun
	case turandot.R12_Shanghai, turandot.R11_Paris, turandot.R10_London, turandot.R09_Berlin:
		addresses = geth.PrecompiledAddressesBerlin
	default:
		addresses = geth.PrecompiledAddressesIstanbul
	}

	result := make([]turandot.Address, len(addresses))
	for i, address := range addresses {
		result[i] = turandot.Address(address)
	}
	return result
}
