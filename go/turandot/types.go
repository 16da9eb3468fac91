// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package turandot

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"math/bits"
	"strings"

	"github.com/holiman/uint256"
)

// Value represents an amount of chain currency, typically wei. The value is
// stored as a fixed-size big-endian byte array to guarantee a canonical
// in-memory representation that can be compared and hashed directly.
type Value [32]byte

// NewValue creates a new Value instance from up to 4 uint64 arguments.
// Arguments are given in big-endian order, the last argument providing the
// least-significant 64 bits. Providing no arguments results in the value
// zero; providing more than 4 arguments results in a panic.
func NewValue(args ...uint64) (result Value) {
	if len(args) > 4 {
		panic("too many arguments")
	}
	offset := 4 - len(args)
	for i := 0; i < len(args); i++ {
		binary.BigEndian.PutUint64(result[(offset+i)*8:(offset+i+1)*8], args[i])
	}
	return result
}

// ValueFromUint256 converts an uint256.Int into a Value. A nil input is
// interpreted as the value zero.
func ValueFromUint256(value *uint256.Int) Value {
	if value == nil {
		return Value{}
	}
	return Value(value.Bytes32())
}

// ToBig returns a bigint version of this value.
func (v Value) ToBig() *big.Int {
	return new(big.Int).SetBytes(v[:])
}

// ToUint256 returns an uint256 version of this value.
func (v Value) ToUint256() *uint256.Int {
	return new(uint256.Int).SetBytes32(v[:])
}

func (v Value) String() string {
	return v.ToBig().String()
}

// Cmp compares this value with the given one and returns -1 if this value is
// smaller, 0 if they are equal, and 1 if this value is larger.
func (v Value) Cmp(other Value) int {
	return v.ToUint256().Cmp(other.ToUint256())
}

// Scale multiplies this value with the given scalar, wrapping around in case
// of an overflow.
func (v Value) Scale(scalar uint64) Value {
	product := v.ToUint256()
	product.Mul(product, uint256.NewInt(scalar))
	return ValueFromUint256(product)
}

// Add computes the sum of two values. In case of an overflow, the result
// wraps around.
func Add(a, b Value) (z Value) {
	var carry uint64
	for i := 3; i >= 0; i-- {
		var sum uint64
		sum, carry = bits.Add64(a.getInternalUint64(i), b.getInternalUint64(i), carry)
		binary.BigEndian.PutUint64(z[i*8:(i+1)*8], sum)
	}
	return z
}

// Sub computes the difference of two values. In case of an underflow, the
// result wraps around.
func Sub(a, b Value) (z Value) {
	var borrow uint64
	for i := 3; i >= 0; i-- {
		var diff uint64
		diff, borrow = bits.Sub64(a.getInternalUint64(i), b.getInternalUint64(i), borrow)
		binary.BigEndian.PutUint64(z[i*8:(i+1)*8], diff)
	}
	return z
}

func (v Value) getInternalUint64(i int) uint64 {
	return binary.BigEndian.Uint64(v[i*8 : (i+1)*8])
}

func (v Value) MarshalText() ([]byte, error) {
	return bytesToText(v[:])
}

func (v *Value) UnmarshalText(data []byte) error {
	return textToBytes(v[:], data)
}

func (k CallKind) String() string {
	switch k {
	case Call:
		return "call"
	case DelegateCall:
		return "delegate_call"
	case StaticCall:
		return "static_call"
	default:
		return "unknown"
	}
}

func (k CallKind) MarshalJSON() ([]byte, error) {
	res := k.String()
	if res == "unknown" {
		return nil, fmt.Errorf("invalid call kind: %d", k)
	}
	return json.Marshal(res)
}

func (k *CallKind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "call":
		*k = Call
	case "delegate_call":
		*k = DelegateCall
	case "static_call":
		*k = StaticCall
	default:
		return fmt.Errorf("unknown call kind: %s", name)
	}
	return nil
}

func bytesToHexString(data []byte) string {
	return fmt.Sprintf("0x%x", data)
}

func bytesToText(data []byte) ([]byte, error) {
	return []byte(bytesToHexString(data)), nil
}

func textToBytes(trg []byte, data []byte) error {
	str := string(data)
	if !strings.HasPrefix(str, "0x") {
		return fmt.Errorf("invalid format, does not start with 0x: %v", str)
	}
	decoded, err := hex.DecodeString(str[2:])
	if err != nil {
		return err
	}
	if want, got := len(trg), len(decoded); want != got {
		return fmt.Errorf("invalid format, wanted %d bytes, got %d", want, got)
	}
	copy(trg, decoded)
	return nil
}
