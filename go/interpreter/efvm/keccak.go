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
	"sync"

	"github.com/Fantom-foundation/Turandot/go/turandot"
	"golang.org/x/crypto/sha3"
)

// Keccak256 computes the keccak256 hash of the given data.
func Keccak256(data []byte) turandot.Hash {
	if len(data) == 0 {
		return emptyKeccak256Hash
	}
	return keccak256(data)
}

var emptyKeccak256Hash = keccak256([]byte{})

var keccakHasherPool = sync.Pool{New: func() any { return sha3.NewLegacyKeccak256() }}

func keccak256(data []byte) turandot.Hash {
	hasher := keccakHasherPool.Get().(keccakHasher)
	hasher.Reset()
	hasher.Write(data)
	var res turandot.Hash
	hasher.Read(res[:])
	keccakHasherPool.Put(hasher)
	return res
}

// keccakHasher is the subset of the sha3 state implementation required for
// computing hashes. Reading the hash from the state avoids the final copy
// a call to Sum would perform.
type keccakHasher interface {
	Reset()
	Write(data []byte) (int, error)
	Read(out []byte) (int, error)
}
