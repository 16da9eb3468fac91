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

// GetFibExample provides an example code computing Fibonacci numbers using
// an iterative loop. The code is a hand-assembled structured container
// equivalent to the following pseudo code:
//
//	function fib(int n) public pure returns (int) {
//		int a = 1;
//		int b = 0;
//		for (; n != 0; n--) {
//			(a, b) = (a + b, a);
//		}
//		return a;
//	}
func GetFibExample() Example {
	code := []byte{
		// -- function selector dispatch --
		byte(vm.PUSH1), 0x00,
		byte(vm.CALLDATALOAD),
		byte(vm.PUSH1), 0xE0,
		byte(vm.SHR),
		byte(vm.PUSH4), 0x46, 0x49, 0x42, 0x31,
		byte(vm.EQ),
		byte(vm.RJUMPI), 0x00, 0x03,
		byte(vm.PUSH0),
		byte(vm.PUSH0),
		byte(vm.REVERT),
		// -- initialize n, b, and a --
		byte(vm.PUSH1), 0x04,
		byte(vm.CALLDATALOAD),
		byte(vm.PUSH0),
		byte(vm.PUSH1), 0x01,
		// -- loop while n != 0 --
		byte(vm.DUP3),
		byte(vm.ISZERO),
		byte(vm.RJUMPI), 0x00, 0x0C,
		// -- a, b = a+b, a --
		byte(vm.DUP1),
		byte(vm.SWAP2),
		byte(vm.ADD),
		// -- n = n - 1 --
		byte(vm.SWAP2),
		byte(vm.PUSH1), 0x01,
		byte(vm.SWAP1),
		byte(vm.SUB),
		byte(vm.SWAP2),
		byte(vm.RJUMP), 0xFF, 0xEF,
		// -- return a --
		byte(vm.PUSH0),
		byte(vm.MSTORE),
		byte(vm.PUSH1), 0x20,
		byte(vm.PUSH0),
		byte(vm.RETURN),
	}

	return exampleSpec{
		Name:      "fib",
		Code:      buildContainer(4, code, nil),
		function:  0x46494231, // "FIB1", an arbitrary identifier
		reference: fib,
	}.build()
}

func fib(n int) int {
	a, b := 1, 0
	for ; n > 0; n-- {
		a, b = a+b, a
	}
	return a
}
