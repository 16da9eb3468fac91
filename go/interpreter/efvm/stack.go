// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package efvm

import (
	"fmt"
	"sync"

	"github.com/holiman/uint256"
)

// maxStackSize is the maximum number of elements the operand stack of an
// execution frame can hold.
const maxStackSize = 1024

type stack struct {
	data         [maxStackSize]uint256.Int
	stackPointer int
}

func (s *stack) push(value *uint256.Int) {
	s.data[s.stackPointer] = *value
	s.stackPointer++
}

// pushUndefined grows the stack by one element and returns a pointer to the
// new top. The caller is expected to overwrite the returned slot.
func (s *stack) pushUndefined() *uint256.Int {
	s.stackPointer++
	return &s.data[s.stackPointer-1]
}

func (s *stack) pop() *uint256.Int {
	s.stackPointer--
	return &s.data[s.stackPointer]
}

func (s *stack) len() int {
	return s.stackPointer
}

// swap exchanges the top element with the n-th element from the top. The top
// element is at index 0. Thus, swap(0) is a no-op.
func (s *stack) swap(n int) {
	s.data[s.len()-n-1], s.data[s.len()-1] = s.data[s.len()-1], s.data[s.len()-n-1]
}

// dup duplicates the n-th element from the top and pushes it to the top of the
// stack. The top element is at index 0. Thus, dup(0) duplicates the top element.
func (s *stack) dup(n int) {
	s.data[s.stackPointer] = s.data[s.stackPointer-n-1]
	s.stackPointer++
}

func (s *stack) peek() *uint256.Int {
	return &s.data[s.len()-1]
}

func (s *stack) peekN(n int) *uint256.Int {
	return &s.data[s.len()-1-n]
}

func (s *stack) get(index int) *uint256.Int {
	return &s.data[index]
}

func (s *stack) String() string {
	toHex := func(value *uint256.Int) string {
		bytes := value.Bytes32()
		res := "0x"
		for i, b := range bytes {
			if i%8 == 0 && i != 0 {
				res += " "
			}
			res += fmt.Sprintf("%02x", b)
		}
		return res
	}
	res := ""
	for i := s.len() - 1; i >= 0; i-- {
		res += fmt.Sprintf("    [%2d] %v\n", s.len()-i-1, toHex(s.get(i)))
	}
	return res
}

var stackPool = sync.Pool{
	New: func() any {
		return &stack{}
	},
}

func NewStack() *stack {
	return stackPool.Get().(*stack)
}

func ReturnStack(s *stack) {
	s.stackPointer = 0
	stackPool.Put(s)
}
