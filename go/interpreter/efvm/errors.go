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

import "github.com/Fantom-foundation/Turandot/go/turandot"

const (
	errGasUintOverflow       = turandot.ConstError("gas uint64 overflow")
	errInvalidCode           = turandot.ConstError("invalid code")
	errInvalidMemoryAccess   = turandot.ConstError("invalid memory access")
	errInvalidOpCode         = turandot.ConstError("invalid op code")
	errOutOfGas              = turandot.ConstError("out of gas")
	errOverflow              = turandot.ConstError("overflow")
	errReturnDataOutOfBounds = turandot.ConstError("return data out of bounds")
	errStackOverflow         = turandot.ConstError("stack overflow")
	errStackUnderflow        = turandot.ConstError("stack underflow")
	errWriteProtection       = turandot.ConstError("write protection")
)
