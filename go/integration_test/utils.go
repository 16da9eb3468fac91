// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package integration_test provides utilities shared by the integration test
// suites of interpreters and processors.
package integration_test

import (
	"github.com/Fantom-foundation/Turandot/go/turandot"
	"golang.org/x/crypto/sha3"
)

// Keccak256Hash computes the Keccak256 hash of the given data.
func Keccak256Hash(data []byte) turandot.Hash {
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(data)
	var hash turandot.Hash
	hasher.Sum(hash[0:0])
	return hash
}
