package ebpf

import (
	"fmt"

	"github.com/dylandreimerink/bpfelf/cursor"
)

// DecodeInstruction decodes one instruction from the cursor's current
// position and advances past it. A lddw consumes both of its slots, so a
// sequential caller never sees the second slot as a separate instruction.
func DecodeInstruction(c *cursor.Cursor) (Instruction, error) {
	opByte, err := c.U8()
	if err != nil {
		return Instruction{}, err
	}

	op, err := LookupOpcode(opByte)
	if err != nil {
		return Instruction{}, err
	}

	reg, err := c.U8()
	if err != nil {
		return Instruction{}, err
	}

	off, err := c.I16()
	if err != nil {
		return Instruction{}, err
	}

	var imm int64
	if op == OpLddw {
		imm, err = decodeLddwImm(c)
	} else {
		var imm32 int32
		imm32, err = c.I32()
		imm = int64(imm32)
	}
	if err != nil {
		return Instruction{}, err
	}

	return Instruction{
		Op:  op,
		Dst: reg & 0x0F,
		Src: reg >> 4,
		Off: off,
		Imm: imm,
	}, nil
}

// decodeLddwImm reads the 64-bit immediate spread over the two lddw slots:
// the low half from the first slot, then the second slot's opcode/register/
// offset bytes which must all be zero, then the high half.
func decodeLddwImm(c *cursor.Cursor) (int64, error) {
	lo, err := c.U32()
	if err != nil {
		return 0, err
	}

	pad, err := c.U32()
	if err != nil {
		return 0, err
	}
	if pad != 0 {
		return 0, fmt.Errorf("lddw second slot must start with 4 zero bytes: %w", ErrInvalidImmediate)
	}

	hi, err := c.U32()
	if err != nil {
		return 0, err
	}

	return int64(uint64(hi)<<32 | uint64(lo)), nil
}

// DecodeBytes decodes a single instruction from the start of b.
func DecodeBytes(b []byte) (Instruction, error) {
	return DecodeInstruction(cursor.New(b))
}

// DecodeStream decodes b as a sequential instruction stream, as found in an
// executable ELF section. The length must be a multiple of the instruction
// size; an empty stream is valid and yields no instructions.
//
// A decode failure mid-stream does not fail the stream: decoding stops at the
// first bad instruction and whatever was decoded before it is returned. This
// mirrors the permissive behavior of the toolchains that emit this dialect,
// where trailing non-code bytes in an executable section are common.
func DecodeStream(b []byte) ([]Instruction, error) {
	if len(b)%InstSize != 0 {
		return nil, fmt.Errorf("instruction stream of %d bytes is not a multiple of %d: %w",
			len(b), InstSize, ErrInvalidDataLength)
	}

	ixs := []Instruction{}
	c := cursor.New(b)
	for c.Remaining() > 0 {
		ix, err := DecodeInstruction(c)
		if err != nil {
			break
		}

		ixs = append(ixs, ix)
	}

	return ixs, nil
}
