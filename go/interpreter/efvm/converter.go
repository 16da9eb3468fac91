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
	"math"
	"unsafe"

	"github.com/Fantom-foundation/Turandot/go/turandot"
	"github.com/Fantom-foundation/Turandot/go/turandot/vm"
	lru "github.com/hashicorp/golang-lru/v2"
)

// ConversionConfig contains a set of configuration options for the code conversion.
type ConversionConfig struct {
	// CacheSize is the maximum size of the maintained code cache in bytes.
	// If set to 0, a default size is used. If negative, no cache is used.
	// Cache sizes are grown in increments of maxCachedCodeLength.
	// Positive values larger than 0 but less than maxCachedCodeLength are
	// reported as invalid cache sizes during initialization.
	CacheSize int
}

// Converter converts the code section of a structured container into the
// interpreter's internal code format.
type Converter struct {
	config ConversionConfig
	cache  *lru.Cache[turandot.Hash, Code]
}

// NewConverter creates a new code converter with the provided configuration.
func NewConverter(config ConversionConfig) (*Converter, error) {
	if config.CacheSize == 0 {
		config.CacheSize = (1 << 30) // = 1GiB
	}

	var cache *lru.Cache[turandot.Hash, Code]
	if config.CacheSize > 0 {
		var err error
		const instructionSize = int(unsafe.Sizeof(Instruction{}))
		capacity := config.CacheSize / maxCachedCodeLength / instructionSize
		cache, err = lru.New[turandot.Hash, Code](capacity)
		if err != nil {
			return nil, err
		}
	}
	return &Converter{
		config: config,
		cache:  cache,
	}, nil
}

// Convert converts a code section to internal code. If the provided code hash
// is not nil, it is assumed to be a valid hash of the enclosing container and
// is used to cache the conversion result. If the hash is nil, the conversion
// result is not cached.
func (c *Converter) Convert(code []byte, codeHash *turandot.Hash) Code {
	if c.cache == nil || codeHash == nil {
		return convert(code)
	}

	res, exists := c.cache.Get(*codeHash)
	if exists {
		return res
	}

	res = convert(code)
	if len(res) > maxCachedCodeLength {
		return res
	}

	c.cache.Add(*codeHash, res)
	return res
}

// maxCachedCodeLength is the maximum length of a code in bytes that is
// retained in the cache. To avoid excessive memory usage, longer codes are
// not cached. The defined limit is the current limit for codes stored on the
// chain; only initialization containers can be longer, and those are
// deliberately not cached due to the expected limited re-use and the missing
// code hash.
const maxCachedCodeLength = 1<<14 + 1<<13 // = 24_576 bytes

// --- code builder ---

type codeBuilder struct {
	code    []Instruction
	nextPos int
}

func newCodeBuilder(codelength int) codeBuilder {
	return codeBuilder{make([]Instruction, codelength), 0}
}

func (b *codeBuilder) length() int {
	return b.nextPos
}

func (b *codeBuilder) appendOp(opcode OpCode, arg uint16) *codeBuilder {
	b.code[b.nextPos].opcode = opcode
	b.code[b.nextPos].arg = arg
	b.nextPos++
	return b
}

func (b *codeBuilder) appendCode(opcode OpCode) *codeBuilder {
	b.code[b.nextPos].opcode = opcode
	b.nextPos++
	return b
}

func (b *codeBuilder) appendData(data uint16) *codeBuilder {
	return b.appendOp(DATA, data)
}

func (b *codeBuilder) toCode() Code {
	return b.code[0:b.nextPos]
}

func convert(code []byte) Code {
	return convertWithObserver(code, func(int, int) {})
}

// convertWithObserver converts a code section to internal code and calls the
// observer with the position of every pair of instructions converted.
func convertWithObserver(
	code []byte,
	observer func(codePc int, convertedPc int),
) Code {
	res := newCodeBuilder(len(code))

	// starts tracks the position each instruction got converted to; bytes
	// that are not the start of an instruction remain -1. The positions are
	// needed to resolve the targets of relative jumps.
	starts := make([]int, len(code))
	for i := range starts {
		starts[i] = -1
	}

	// Relative jumps are patched once the position of every instruction is
	// known.
	type jumpPatch struct {
		position int // < the converted instruction to be patched
		target   int // < the targeted position in the original code
	}
	var patches []jumpPatch

	// Convert each individual instruction.
	for i := 0; i < len(code); {
		starts[i] = res.length()
		observer(i, res.length())

		// Handle relative jumps; their relative byte offset is replaced by
		// the absolute position of the target in the converted code.
		op := vm.OpCode(code[i])
		if op == vm.RJUMP || op == vm.RJUMPI {
			if len(code) < i+3 {
				res.appendCode(INVALID)
				break
			}
			offset := int(int16(uint16(code[i+1])<<8 | uint16(code[i+2])))
			patches = append(patches, jumpPatch{res.length(), i + 3 + offset})
			res.appendOp(OpCode(op), 0)
			i += 3
			continue
		}

		// Convert instructions
		inc := appendInstruction(&res, i, code)
		i += inc + 1
	}

	for _, patch := range patches {
		instruction := &res.code[patch.position]
		if patch.target < 0 || patch.target >= len(code) ||
			starts[patch.target] < 0 || starts[patch.target] > math.MaxUint16 {
			*instruction = Instruction{INVALID, 0}
			continue
		}
		instruction.arg = uint16(starts[patch.target])
	}

	return res.toCode()
}

func appendInstruction(res *codeBuilder, pos int, code []byte) int {
	opCode := vm.OpCode(code[pos])

	if opCode == vm.DATALOADN {
		if len(code) < pos+3 {
			res.appendCode(INVALID)
			return 2
		}
		res.appendOp(DATALOADN, uint16(code[pos+1])<<8|uint16(code[pos+2]))
		return 2
	}

	if vm.PUSH1 <= opCode && opCode <= vm.PUSH32 {
		// Determine the number of bytes to be pushed.
		numBytes := int(opCode) - int(vm.PUSH1) + 1

		var data []byte
		// If there are not enough bytes left in the code, rest is filled with 0
		// zeros are padded right
		if len(code) < pos+numBytes+2 {
			extension := (pos + numBytes + 2 - len(code)) / 2
			if (pos+numBytes+2-len(code))%2 > 0 {
				extension++
			}
			if extension > 0 {
				res.code = rightPadSlice(res.code[:], len(res.code)+extension)
			}
			data = rightPadSlice(code[pos+1:], numBytes+1)
		} else {
			data = code[pos+1 : pos+1+numBytes]
		}

		// Fix the op-codes of the resulting instructions
		if numBytes == 1 {
			res.appendOp(PUSH1, uint16(data[0])<<8)
		} else {
			res.appendOp(PUSH1+OpCode(numBytes-1), uint16(data[0])<<8|uint16(data[1]))
		}

		// Fix the arguments by packing them in pairs into the instructions.
		for i := 2; i < numBytes-1; i += 2 {
			res.appendData(uint16(data[i])<<8 | uint16(data[i+1]))
		}
		if numBytes > 1 && numBytes%2 == 1 {
			res.appendData(uint16(data[numBytes-1]) << 8)
		}

		return numBytes
	}

	// All the rest converts to a single instruction. Byte codes that are not
	// part of the instruction set convert to an explicit INVALID instruction.
	if !vm.IsValid(opCode) {
		res.appendCode(INVALID)
		return 0
	}
	res.appendCode(OpCode(opCode))
	return 0
}

func rightPadSlice[T any](source []T, size int) []T {
	res := make([]T, size)
	copy(res, source)
	return res
}
