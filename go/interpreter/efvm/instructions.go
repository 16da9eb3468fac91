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
	"bytes"
	"math"

	"github.com/Fantom-foundation/Turandot/go/turandot"
	"github.com/holiman/uint256"
)

func opStop() status {
	return statusStopped
}

func opEndWithResult(c *context) error {
	offset := *c.stack.pop()
	size := *c.stack.pop()
	if err := checkSizeOffsetUint64Overflow(&offset, &size); err != nil {
		return err
	}
	var err error
	c.returnData, err = c.memory.getSlice(offset.Uint64(), size.Uint64(), c)
	return err
}

func opRjump(c *context) {
	// The conversion replaced the relative offset by the absolute position
	// of the target in the converted code. Update the PC to the target -1
	// since the interpreter will increase the PC by 1 afterward.
	c.pc = int32(c.code[c.pc].arg) - 1
}

func opRjumpi(c *context) {
	condition := c.stack.pop()
	if !condition.IsZero() {
		c.pc = int32(c.code[c.pc].arg) - 1
	}
}

func opPop(c *context) {
	c.stack.pop()
}

func opPush(c *context, n int) {
	z := c.stack.pushUndefined()
	numInstructions := int32(n/2 + n%2)
	data := c.code[c.pc : c.pc+numInstructions]

	_ = data[numInstructions-1]
	var value [32]byte
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			value[i] = byte(data[i/2].arg >> 8)
		} else {
			value[i] = byte(data[i/2].arg)
		}
	}
	z.SetBytes(value[0:n])
	c.pc += numInstructions - 1
}

func opPush0(c *context) {
	z := c.stack.pushUndefined()
	z[3], z[2], z[1], z[0] = 0, 0, 0, 0
}

func opPush1(c *context) {
	z := c.stack.pushUndefined()
	z[3], z[2], z[1] = 0, 0, 0
	z[0] = uint64(c.code[c.pc].arg >> 8)
}

func opPush2(c *context) {
	z := c.stack.pushUndefined()
	z[3], z[2], z[1] = 0, 0, 0
	z[0] = uint64(c.code[c.pc].arg)
}

func opPush3(c *context) {
	z := c.stack.pushUndefined()
	z[3], z[2], z[1] = 0, 0, 0
	data := c.code[c.pc : c.pc+2]
	_ = data[1]
	z[0] = uint64(data[0].arg)<<8 | uint64(data[1].arg>>8)
	c.pc += 1
}

func opPush4(c *context) {
	z := c.stack.pushUndefined()
	z[3], z[2], z[1] = 0, 0, 0

	data := c.code[c.pc : c.pc+2]
	_ = data[1] // causes bound check to be performed only once (may become unneeded in the future)
	z[0] = (uint64(data[0].arg) << 16) | uint64(data[1].arg)
	c.pc += 1
}

func opPush32(c *context) {
	z := c.stack.pushUndefined()

	data := c.code[c.pc : c.pc+16]
	_ = data[15] // causes bound check to be performed only once (may become unneeded in the future)
	z[3] = (uint64(data[0].arg) << 48) | (uint64(data[1].arg) << 32) | (uint64(data[2].arg) << 16) | uint64(data[3].arg)
	z[2] = (uint64(data[4].arg) << 48) | (uint64(data[5].arg) << 32) | (uint64(data[6].arg) << 16) | uint64(data[7].arg)
	z[1] = (uint64(data[8].arg) << 48) | (uint64(data[9].arg) << 32) | (uint64(data[10].arg) << 16) | uint64(data[11].arg)
	z[0] = (uint64(data[12].arg) << 48) | (uint64(data[13].arg) << 32) | (uint64(data[14].arg) << 16) | uint64(data[15].arg)
	c.pc += 15
}

func opDup(c *context, pos int) {
	c.stack.dup(pos - 1)
}

func opSwap(c *context, pos int) {
	c.stack.swap(pos)
}

func opMstore(c *context) error {
	var addr = c.stack.pop()
	var value = c.stack.pop()

	offset, overflow := addr.Uint64WithOverflow()
	if overflow {
		return errOverflow
	}
	data := value.Bytes32()
	return c.memory.set(offset, data[:], c)
}

func opMstore8(c *context) error {
	var addr = c.stack.pop()
	var value = c.stack.pop()

	offset, overflow := addr.Uint64WithOverflow()
	if overflow {
		return errOverflow
	}
	return c.memory.set(offset, []byte{byte(value.Uint64())}, c)
}

func opMcopy(c *context) error {
	var destAddr = c.stack.pop()
	var srcAddr = c.stack.pop()
	var sizeU256 = c.stack.pop()

	if sizeU256.IsZero() {
		// zero size skips expansions although offset may be off-bounds
		return nil
	}

	destOffset, destOverflow := destAddr.Uint64WithOverflow()
	srcOffset, srcOverflow := srcAddr.Uint64WithOverflow()
	if destOverflow || srcOverflow || !sizeU256.IsUint64() {
		return errOverflow
	}

	size := sizeU256.Uint64()
	price := turandot.Gas(3 * turandot.SizeInWords(size))
	if err := c.useGas(price); err != nil {
		return err
	}

	data, err := c.memory.getSlice(srcOffset, size, c)
	if err != nil {
		return err
	}
	if err := c.memory.set(destOffset, data, c); err != nil {
		return err
	}
	return nil
}

func opMload(c *context) error {
	var trg = c.stack.peek()
	var addr = *trg

	if !addr.IsUint64() {
		return errOverflow
	}
	offset := addr.Uint64()
	return c.memory.readWord(offset, trg, c)
}

func opMsize(c *context) {
	c.stack.pushUndefined().SetUint64(uint64(c.memory.length()))
}

func opCaller(c *context) {
	c.stack.pushUndefined().SetBytes20(c.params.Sender[:])
}

func opCallvalue(c *context) {
	c.stack.pushUndefined().SetBytes32(c.params.Value[:])
}

func opCallDatasize(c *context) {
	size := len(c.params.Input)
	c.stack.pushUndefined().SetUint64(uint64(size))
}

func opCallDataload(c *context) {
	top := c.stack.peek()
	if !top.IsUint64() {
		top.Clear()
		return
	}

	offset := top.Uint64()
	input := c.params.Input
	var value [32]byte
	for i := 0; i < 32; i++ {
		pos := i + int(offset)
		if pos < 0 {
			top.Clear()
			return
		}
		if pos < len(input) {
			value[i] = input[pos]
		} else {
			value[i] = 0
		}
	}
	top.SetBytes(value[:])
}

// genericDataCopy copies a section of the given data source into memory,
// charging for the per-word copy costs and the memory expansion. Reads past
// the end of the source are zero-padded.
func genericDataCopy(c *context, source []byte) error {
	var (
		memOffset  = c.stack.pop()
		dataOffset = c.stack.pop()
		length     = c.stack.pop()
	)
	dataOffset64, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		dataOffset64 = 0xffffffffffffffff
	}

	memOffset64, overflow := memOffset.Uint64WithOverflow()
	if overflow {
		memOffset64 = 0xffffffffffffffff
	}

	length64, overflow := length.Uint64WithOverflow()
	if overflow || length64+31 < length64 {
		return errOverflow
	}

	// Charge for the copy costs
	words := turandot.SizeInWords(length64)
	price := turandot.Gas(3 * words)
	if err := c.useGas(price); err != nil {
		return err
	}

	data, err := c.memory.getSlice(memOffset64, length64, c)
	if err != nil {
		return err
	}
	dataCopy := getData(source, dataOffset64, length64)
	copy(data, dataCopy)
	return nil
}

func opDataLoad(c *context) {
	top := c.stack.peek()
	offset, overflow := top.Uint64WithOverflow()
	if overflow {
		offset = math.MaxUint64
	}
	// Reads beyond the end of the data section are zero-padded.
	top.SetBytes32(getData(c.data, offset, 32))
}

func opDataLoadN(c *context) {
	offset := uint64(c.code[c.pc].arg)
	c.stack.pushUndefined().SetBytes32(getData(c.data, offset, 32))
}

func opDataSize(c *context) {
	c.stack.pushUndefined().SetUint64(uint64(len(c.data)))
}

func opAnd(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.And(a, b)
}

func opOr(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.Or(a, b)
}

func opNot(c *context) {
	a := c.stack.peek()
	a.Not(a)
}
func opXor(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.Xor(a, b)
}

func opIszero(c *context) {
	top := c.stack.peek()
	if top.IsZero() {
		top.SetOne()
	} else {
		top.Clear()
	}
}

func opEq(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	res := a.Cmp(b)
	for i := range b {
		b[i] = 0
	}
	if res == 0 {
		b[0] = 1
	} else {
		b[0] = 0
	}
}

func opLt(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	if a.Lt(b) {
		b.SetOne()
	} else {
		b.Clear()
	}
}

func opGt(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	if a.Gt(b) {
		b.SetOne()
	} else {
		b.Clear()
	}
}

func opSlt(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	if a.Slt(b) {
		b.SetOne()
	} else {
		b.Clear()
	}
}

func opSgt(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	if a.Sgt(b) {
		b.SetOne()
	} else {
		b.Clear()
	}
}

func opShr(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	if a.LtUint64(256) {
		b.Rsh(b, uint(a.Uint64()))
	} else {
		b.Clear()
	}
}

func opShl(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	if a.LtUint64(256) {
		b.Lsh(b, uint(a.Uint64()))
	} else {
		b.Clear()
	}
}

func opSar(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	if a.GtUint64(256) {
		if b.Sign() >= 0 {
			b.Clear()
		} else {
			b.SetAllOne()
		}
		return
	}
	b.SRsh(b, uint(a.Uint64()))
}

func opSignExtend(c *context) {
	back, num := c.stack.pop(), c.stack.peek()
	num.ExtendSign(num, back)
}

func opByte(c *context) {
	th, val := c.stack.pop(), c.stack.peek()
	val.Byte(th)
}

func opAdd(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.Add(a, b)
}

func opSub(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.Sub(a, b)
}

func opMul(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.Mul(a, b)
}

func opMulMod(c *context) {
	a := c.stack.pop()
	b := c.stack.pop()
	n := c.stack.peek()
	n.MulMod(a, b, n)
}

func opDiv(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.Div(a, b)
}

func opSDiv(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.SDiv(a, b)
}

func opMod(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.Mod(a, b)
}

func opAddMod(c *context) {
	a := c.stack.pop()
	b := c.stack.pop()
	n := c.stack.peek()
	n.AddMod(a, b, n)
}

func opSMod(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.SMod(a, b)
}

func opExp(c *context) error {
	base, exponent := c.stack.pop(), c.stack.peek()
	if err := c.useGas(turandot.Gas(50 * exponent.ByteLen())); err != nil {
		return err
	}
	exponent.Exp(base, exponent)
	return nil
}

// Evaluations show a 96% hit rate of this configuration.
var keccakCache = newKeccakHashCache(1<<16, 1<<18)

func opKeccak256(c *context) error {
	offset, size := c.stack.pop(), c.stack.peek()

	if checkSizeOffsetUint64Overflow(offset, size) != nil {
		return errOverflow
	}

	data, err := c.memory.getSlice(offset.Uint64(), size.Uint64(), c)
	if err != nil {
		return err
	}

	// charge dynamic gas price
	words := turandot.SizeInWords(size.Uint64())
	price := turandot.Gas(6 * words)
	if err := c.useGas(price); err != nil {
		return err
	}
	var hash turandot.Hash
	if c.withShaCache {
		// Cache hashes since identical values are frequently re-hashed.
		hash = keccakCache.hash(data)
	} else {
		hash = Keccak256(data)
	}

	size.SetBytes32(hash[:])
	return nil
}

func opPrevRandao(c *context) {
	prevRandao := c.params.PrevRandao
	c.stack.pushUndefined().SetBytes32(prevRandao[:])
}

func opTimestamp(c *context) {
	time := c.params.Timestamp
	c.stack.pushUndefined().SetUint64(uint64(time))
}

func opNumber(c *context) {
	number := c.params.BlockNumber
	c.stack.pushUndefined().SetUint64(uint64(number))
}

func opCoinbase(c *context) {
	coinbase := c.params.Coinbase
	c.stack.pushUndefined().SetBytes20(coinbase[:])
}

func opGasLimit(c *context) {
	limit := c.params.GasLimit
	c.stack.pushUndefined().SetUint64(uint64(limit))
}

func opGasPrice(c *context) {
	price := c.params.GasPrice
	c.stack.pushUndefined().SetBytes32(price[:])
}

func opBalance(c *context) error {
	slot := c.stack.peek()
	address := turandot.Address(slot.Bytes20())
	if err := c.useGas(getAccessCost(c.context.AccessAccount(address))); err != nil {
		return err
	}
	balance := c.context.GetBalance(address)
	slot.SetBytes32(balance[:])
	return nil
}

func opSelfbalance(c *context) {
	balance := c.context.GetBalance(c.params.Recipient)
	c.stack.pushUndefined().SetBytes32(balance[:])
}

func opBaseFee(c *context) {
	fee := c.params.BaseFee
	c.stack.pushUndefined().SetBytes32(fee[:])
}

func opBlobHash(c *context) {
	index := c.stack.pop()
	blobHashesLength := uint64(len(c.params.BlobHashes))
	if index.IsUint64() && index.Uint64() < blobHashesLength {
		c.stack.pushUndefined().SetBytes32(c.params.BlobHashes[index.Uint64()][:])
	} else {
		c.stack.push(uint256.NewInt(0))
	}
}

func opBlobBaseFee(c *context) {
	fee := c.params.BlobBaseFee
	c.stack.pushUndefined().SetBytes32(fee[:])
}

func opChainId(c *context) {
	id := c.params.ChainID
	c.stack.pushUndefined().SetBytes32(id[:])
}

func opBlockhash(c *context) {
	num := c.stack.peek()
	num64, overflow := num.Uint64WithOverflow()

	if overflow {
		num.Clear()
		return
	}
	var upper, lower uint64
	upper = uint64(c.params.BlockNumber)
	if upper < 257 {
		lower = 0
	} else {
		lower = upper - 256
	}
	if num64 >= lower && num64 < upper {
		hash := c.context.GetBlockHash(int64(num64))
		num.SetBytes(hash[:])
	} else {
		num.Clear()
	}
}

func opAddress(c *context) {
	c.stack.pushUndefined().SetBytes20(c.params.Recipient[:])
}

func opOrigin(c *context) {
	origin := c.params.Origin
	c.stack.pushUndefined().SetBytes20(origin[:])
}

func getData(data []byte, start uint64, size uint64) []byte {
	length := uint64(len(data))
	if start > length {
		start = length
	}
	end := start + size
	if end > length {
		end = length
	}
	// Apply some right-padding to the result.
	res := make([]byte, int(size))
	copy(res, data[start:end])
	return res
}

func checkSizeOffsetUint64Overflow(offset, size *uint256.Int) error {
	if size.IsZero() {
		return nil
	}
	if !offset.IsUint64() || !size.IsUint64() || offset.Uint64()+size.Uint64() < offset.Uint64() {
		return errOverflow
	}
	return nil
}

func opReturnDataSize(c *context) {
	c.stack.pushUndefined().SetUint64(uint64(len(c.returnData)))
}

func opReturnDataCopy(c *context) error {
	var (
		memOffset  = c.stack.pop()
		dataOffset = c.stack.pop()
		length     = c.stack.pop()
	)

	offset64, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		return errOverflow
	}
	// we can reuse dataOffset now (aliasing it for clarity)
	var end = dataOffset
	end.Add(dataOffset, length)
	end64, overflow := end.Uint64WithOverflow()
	if overflow {
		return errOverflow
	}

	if uint64(len(c.returnData)) < end64 {
		return errReturnDataOutOfBounds
	}

	if err := checkSizeOffsetUint64Overflow(memOffset, length); err != nil {
		return err
	}

	words := turandot.SizeInWords(length.Uint64())
	if err := c.useGas(turandot.Gas(3 * words)); err != nil {
		return errOutOfGas
	}

	return c.memory.set(memOffset.Uint64(), c.returnData[offset64:end64], c)
}

func opReturnDataLoad(c *context) error {
	top := c.stack.peek()
	offset, overflow := top.Uint64WithOverflow()

	// Unlike the zero-padded reads of the data section, reads beyond the
	// end of the return data are an error that stops the execution.
	size := uint64(len(c.returnData))
	if overflow || size < 32 || offset > size-32 {
		return errInvalidMemoryAccess
	}
	top.SetBytes32(c.returnData[offset : offset+32])
	return nil
}

func opExtCall(c *context) error {
	return extCall(c, turandot.Call)
}

func opExtDelegateCall(c *context) error {
	return extCall(c, turandot.DelegateCall)
}

func opExtStaticCall(c *context) error {
	return extCall(c, turandot.StaticCall)
}

// extCall implements the shared behavior of the external call instruction
// family. The memory expansion and account access costs are charged up front
// and failing to cover them stops the execution; all remaining pre-call
// checks are "light" failures that push the failure status and let the
// execution continue with the upfront costs consumed.
func extCall(c *context, kind turandot.CallKind) error {
	stack := c.stack
	value := uint256.NewInt(0)

	// Pop call parameters.
	addr := stack.pop()
	inOffset, inSize := stack.pop(), stack.pop()
	if kind == turandot.Call {
		value = stack.pop()
	}
	target := turandot.Address(addr.Bytes20())

	if err := checkSizeOffsetUint64Overflow(inOffset, inSize); err != nil {
		return err
	}

	// Get the input from the memory, charging for its expansion.
	input, err := c.memory.getSlice(inOffset.Uint64(), inSize.Uint64(), c)
	if err != nil {
		return err
	}

	// The target address is touched before any further validation to keep
	// the order of accesses observable by the world state fixed.
	if err := c.useGas(getAccessCost(c.context.AccessAccount(target))); err != nil {
		return err
	}

	if !value.IsZero() {
		// A value transfer is a state modification; in a read-only frame it
		// stops the execution instead of failing the call.
		if c.params.Static {
			return errWriteProtection
		}
		if err := c.useGas(CallValueTransferGas); err != nil {
			return err
		}
		if !c.context.AccountExists(target) {
			if err := c.useGas(CallNewAccountGas); err != nil {
				return err
			}
		}
	}

	lightFailure := c.params.Depth >= MaxCallDepth

	// Check that the caller has enough balance to transfer the requested
	// value; the balance is only read if all preceding checks passed.
	if !lightFailure && !value.IsZero() {
		balance := c.context.GetBalance(c.params.Recipient)
		balanceU256 := new(uint256.Int).SetBytes32(balance[:])
		lightFailure = balanceU256.Lt(value)
	}

	// The code targeted by a delegate call must itself be in the container
	// format; running legacy code in a container frame is not allowed.
	if !lightFailure && kind == turandot.DelegateCall {
		lightFailure = !isStructuredContainer(c.context.GetCode(target))
	}

	// All but a 64th of the remaining gas is forwarded to the callee; if
	// that is less than the minimum a callee must receive, the call fails
	// without being dispatched.
	gas := forwardedGas(c.gas)
	if !lightFailure && gas < MinCalleeGas {
		lightFailure = true
	}

	if lightFailure {
		stack.pushUndefined().SetUint64(1)
		c.returnData = nil
		return nil
	}

	if err := c.useGas(gas); err != nil {
		// this usage can never fail because the forwarded gas is at most
		// 63/64 of the current gas level.
		return err
	}

	// If we are in a read-only frame, recursive calls are to be treated
	// like static calls.
	if c.params.Static && kind == turandot.Call {
		kind = turandot.StaticCall
	}

	// Prepare arguments, depending on call kind
	callParams := turandot.CallParameters{
		Input: input,
		Gas:   gas,
		Value: turandot.Value(value.Bytes32()),
	}

	switch kind {
	case turandot.Call, turandot.StaticCall:
		callParams.Sender = c.params.Recipient
		callParams.Recipient = target

	case turandot.DelegateCall:
		callParams.Sender = c.params.Sender
		callParams.Recipient = c.params.Recipient
		callParams.CodeAddress = target
		callParams.Value = c.params.Value
	}

	// Perform the call.
	ret, err := c.context.Call(kind, callParams)

	// The result status is pushed inverted: 0 for success, 1 for failure.
	success := stack.pushUndefined()
	if err != nil || !ret.Success {
		success.SetUint64(1)
	} else {
		success.Clear()
	}
	c.gas += ret.GasLeft
	c.refund += ret.GasRefund
	c.returnData = ret.Output
	return nil
}

func opLog(c *context, size int) error {

	// LogN op codes are write instructions, they shall not be executed in static mode.
	if c.params.Static {
		return errWriteProtection
	}

	topics := make([]turandot.Hash, size)
	stack := c.stack
	mStart, mSize := stack.pop(), stack.pop()

	if err := checkSizeOffsetUint64Overflow(mStart, mSize); err != nil {
		return err
	}

	for i := 0; i < size; i++ {
		addr := stack.pop()
		topics[i] = addr.Bytes32()
	}

	// Expand memory if needed
	start := mStart.Uint64()
	logSize := mSize.Uint64()

	// charge for log size
	if err := c.useGas(turandot.Gas(8 * logSize)); err != nil {
		return err
	}

	data, err := c.memory.getSlice(start, logSize, c)
	if err != nil {
		return err
	}

	// make a copy of the data to disconnect from memory
	logData := bytes.Clone(data)
	c.context.EmitLog(turandot.Log{
		Address: c.params.Recipient,
		Topics:  topics,
		Data:    logData,
	})
	return nil
}
