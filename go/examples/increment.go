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
	"github.com/Fantom-foundation/Turandot/go/turandot/vm"
)

// GetIncrementExample provides an example code incrementing its argument by
// one. The code is a hand-assembled structured container equivalent to the
// following pseudo code:
//
//	function increment(int x) public pure returns (int) {
//		return x + 1;
//	}
func GetIncrementExample() Example {
	code := []byte{
		// -- function selector dispatch --
		byte(vm.PUSH1), 0x00,
		byte(vm.CALLDATALOAD),
		byte(vm.PUSH1), 0xE0,
		byte(vm.SHR),
		byte(vm.PUSH4), 0x49, 0x4E, 0x43, 0x31,
		byte(vm.EQ),
		byte(vm.RJUMPI), 0x00, 0x03,
		byte(vm.PUSH0),
		byte(vm.PUSH0),
		byte(vm.REVERT),
		// -- increment the argument --
		byte(vm.PUSH1), 0x04,
		byte(vm.CALLDATALOAD),
		byte(vm.PUSH1), 0x01,
		byte(vm.ADD),
		byte(vm.PUSH0),
		byte(vm.MSTORE),
		byte(vm.PUSH1), 0x20,
		byte(vm.PUSH0),
		byte(vm.RETURN),
	}

	return exampleSpec{
		Name:      "increment",
		Code:      buildContainer(2, code, nil),
		function:  0x494E4331, // "INC1", an arbitrary identifier
		reference: increment,
	}.build()
}

func increment(x int) int {
	return x + 1
}
