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
	"github.com/Fantom-foundation/Turandot/go/turandot"
	"github.com/Fantom-foundation/Turandot/go/turandot/vm"
)

// GetProxyExample wraps the given example into a contract forwarding its full
// call data to the given target address using an external call, and passing
// the call's output on to its own caller. The target account is expected to
// hold the wrapped example's code. The target address is stored in the data
// section of the proxy container.
//
// Since the proxy issues a real call, it produces results only on a host
// resolving calls to the target; on the no-op host used by RunOn the
// forwarded call fails and the proxy reverts.
func GetProxyExample(target turandot.Address, wrapped Example) Example {
	code := []byte{
		// -- copy the call data to memory --
		byte(vm.CALLDATASIZE),
		byte(vm.PUSH0),
		byte(vm.PUSH0),
		byte(vm.CALLDATACOPY),
		// -- call the target with the full call data --
		byte(vm.PUSH0),
		byte(vm.CALLDATASIZE),
		byte(vm.PUSH0),
		byte(vm.DATALOADN), 0x00, 0x00,
		byte(vm.EXTCALL),
		// -- copy the returned data to memory --
		byte(vm.RETURNDATASIZE),
		byte(vm.PUSH0),
		byte(vm.PUSH0),
		byte(vm.RETURNDATACOPY),
		// -- forward the call's outcome --
		byte(vm.RJUMPI), 0x00, 0x03,
		byte(vm.RETURNDATASIZE),
		byte(vm.PUSH0),
		byte(vm.RETURN),
		byte(vm.RETURNDATASIZE),
		byte(vm.PUSH0),
		byte(vm.REVERT),
	}

	data := make([]byte, 32)
	copy(data[12:], target[:])

	return exampleSpec{
		Name:      "proxy_" + wrapped.Name,
		Code:      buildContainer(4, code, data),
		function:  wrapped.function,
		reference: wrapped.reference,
	}.build()
}
