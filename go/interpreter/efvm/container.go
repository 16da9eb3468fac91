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

// The section kinds of a structured container header, in the order they are
// required to appear.
const (
	kindTypes     = 0x01
	kindCode      = 0x02
	kindContainer = 0x03
	kindData      = 0x04
)

// isStructuredContainer reports whether the given code carries the leading
// magic of the structured container format.
func isStructuredContainer(code []byte) bool {
	return len(code) >= 2 && code[0] == 0xEF && code[1] == 0x00
}

// splitContainer decomposes a structured container into its first code
// section and its data section. Containers reaching execution have passed
// the full deploy-time validation, so only the structural well-formedness
// of the header is checked here; anything violating it yields errInvalidCode.
//
// The data section of a container may be shorter than its declared size
// while the container has not been fully deployed yet. Such truncated data
// sections are returned as they are; reads beyond their end are zero-padded
// by the data instructions.
func splitContainer(container []byte) (code, data []byte, err error) {
	if !isStructuredContainer(container) || len(container) < 3 || container[2] != 0x01 {
		return nil, nil, errInvalidCode
	}

	readU16 := func(offset int) (int, bool) {
		if offset < 0 || offset+2 > len(container) {
			return 0, false
		}
		return int(container[offset])<<8 | int(container[offset+1]), true
	}

	pos := 3

	// -- the types section header --
	if pos >= len(container) || container[pos] != kindTypes {
		return nil, nil, errInvalidCode
	}
	typesSize, ok := readU16(pos + 1)
	if !ok {
		return nil, nil, errInvalidCode
	}
	pos += 3

	// -- the code section header --
	if pos >= len(container) || container[pos] != kindCode {
		return nil, nil, errInvalidCode
	}
	numCodeSections, ok := readU16(pos + 1)
	if !ok || numCodeSections == 0 {
		return nil, nil, errInvalidCode
	}
	pos += 3
	codeSizes := make([]int, numCodeSections)
	for i := range codeSizes {
		size, ok := readU16(pos)
		if !ok || size == 0 {
			return nil, nil, errInvalidCode
		}
		codeSizes[i] = size
		pos += 2
	}

	// -- the optional sub-container section header --
	var containerSizes []int
	if pos < len(container) && container[pos] == kindContainer {
		numContainers, ok := readU16(pos + 1)
		if !ok || numContainers == 0 {
			return nil, nil, errInvalidCode
		}
		pos += 3
		containerSizes = make([]int, numContainers)
		for i := range containerSizes {
			size, ok := readU16(pos)
			if !ok || size == 0 {
				return nil, nil, errInvalidCode
			}
			containerSizes[i] = size
			pos += 2
		}
	}

	// -- the data section header --
	if pos >= len(container) || container[pos] != kindData {
		return nil, nil, errInvalidCode
	}
	dataSize, ok := readU16(pos + 1)
	if !ok {
		return nil, nil, errInvalidCode
	}
	pos += 3

	// -- the header terminator --
	if pos >= len(container) || container[pos] != 0x00 {
		return nil, nil, errInvalidCode
	}
	pos++

	// -- the body --
	// All sections but the data section must be present in full length.
	codeStart := pos + typesSize
	dataStart := codeStart
	for _, size := range codeSizes {
		dataStart += size
	}
	for _, size := range containerSizes {
		dataStart += size
	}
	if dataStart > len(container) {
		return nil, nil, errInvalidCode
	}

	code = container[codeStart : codeStart+codeSizes[0]]
	data = container[dataStart:]
	if len(data) > dataSize {
		data = data[:dataSize]
	}
	return code, data, nil
}
