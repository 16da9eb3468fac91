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
	"encoding/hex"
	"fmt"
	"sync"
	"testing"

	"github.com/Fantom-foundation/Turandot/go/turandot"
	"github.com/holiman/uint256"
)

func hashFromHex(t *testing.T, s string) turandot.Hash {
	t.Helper()
	data, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("invalid hash literal %q: %v", s, err)
	}
	var res turandot.Hash
	copy(res[:], data)
	return res
}

func TestKeccak256_MatchesReferenceVectors(t *testing.T) {
	tests := map[string]struct {
		input []byte
		want  string
	}{
		"empty": {
			input: nil,
			want:  "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		},
		"abc": {
			input: []byte("abc"),
			want:  "4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45",
		},
		"zero word": {
			input: make([]byte, 32),
			want:  "290decd9548b62a8d60345a988386fc84ba6bc95484008f6362f93160ef3e563",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			if want, got := hashFromHex(t, test.want), Keccak256(test.input); want != got {
				t.Errorf("unexpected hash, wanted %x, got %x", want, got)
			}
		})
	}
}

func TestKeccak256_EmptyInputVariantsShareTheSameHash(t *testing.T) {
	if want, got := Keccak256(nil), Keccak256([]byte{}); want != got {
		t.Errorf("expected identical hashes, got %x and %x", want, got)
	}
}

func TestKeccak256_IsThreadSafe(t *testing.T) {
	// this test assumes to be executed using the --race flag.
	const parallelism = 10
	const iterations = 1000

	var wg sync.WaitGroup
	wg.Add(parallelism)
	for i := 0; i < parallelism; i++ {
		i := i
		go func() {
			defer wg.Done()
			data := []byte{byte(i)}
			want := Keccak256(data)
			for j := 0; j < iterations; j++ {
				if got := Keccak256(data); want != got {
					t.Errorf("unexpected hash, wanted %x, got %x", want, got)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestOpKeccak256_CachedAndDirectHashingAgree(t *testing.T) {
	for _, withShaCache := range []bool{true, false} {
		t.Run(fmt.Sprintf("cache=%t", withShaCache), func(t *testing.T) {
			ctxt := context{
				stack:        NewStack(),
				memory:       NewMemory(),
				gas:          100,
				withShaCache: withShaCache,
			}
			if err := ctxt.memory.set(0, make([]byte, 32), &ctxt); err != nil {
				t.Fatalf("failed to initialize memory: %v", err)
			}

			ctxt.stack.push(uint256.NewInt(32)) // < size
			ctxt.stack.push(uint256.NewInt(0))  // < offset

			if err := opKeccak256(&ctxt); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			want := hashFromHex(t,
				"290decd9548b62a8d60345a988386fc84ba6bc95484008f6362f93160ef3e563")
			got := ctxt.stack.peek().Bytes32()
			if want != turandot.Hash(got) {
				t.Errorf("unexpected hash, wanted %x, got %x", want, got)
			}
		})
	}
}

func benchmarkKeccak256(b *testing.B, hasher func([]byte)) {
	lengths := []int{1, 8, 32}
	for i := 64; i < 1<<19; i <<= 2 {
		lengths = append(lengths, i)
	}
	for _, i := range lengths {
		b.Run(fmt.Sprintf("size=%d", i), func(b *testing.B) {
			data := make([]byte, i)
			for i := 0; i < b.N; i++ {
				hasher(data)
			}
		})
	}
}

func BenchmarkKeccak256(b *testing.B) {
	benchmarkKeccak256(b, func(data []byte) {
		Keccak256(data)
	})
}
