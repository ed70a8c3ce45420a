// Package ebpf decodes, encodes and disassembles sBPF instructions: the
// bytecode dialect found in the executable sections of the ELF objects this
// module parses.
package ebpf

import (
	"encoding/binary"
	"errors"
)

var (
	// ErrInvalidOpcode is returned when a byte does not resolve against the
	// defined opcode table.
	ErrInvalidOpcode = errors.New("invalid opcode")
	// ErrInvalidImmediate is returned when the must-be-zero padding of a lddw
	// first slot is not zero, or when an endian-conversion immediate is not
	// one of 16, 32 or 64.
	ErrInvalidImmediate = errors.New("invalid immediate")
	// ErrInvalidDataLength is returned when an instruction stream's byte
	// length is not a multiple of the instruction size.
	ErrInvalidDataLength = errors.New("invalid data length")
)

const (
	// InstSize is the wire size of an ordinary instruction.
	InstSize = 8
	// LddwInstSize is the wire size of the wide-immediate load, which
	// consumes two consecutive instruction slots.
	LddwInstSize = 2 * InstSize
)

// Instruction is one decoded sBPF instruction. Register indices are 4 bits
// each on the wire, so Dst and Src are always in 0-15. Imm holds the
// sign-extended 32-bit immediate for ordinary instructions and the full
// 64-bit immediate for lddw.
type Instruction struct {
	Op  Opcode
	Dst uint8
	Src uint8
	Off int16
	Imm int64
}

// NewReg packs the source and destination register indices into the operand
// byte, source in the high nibble.
func NewReg(src, dst uint8) uint8 {
	return (src << 4 & 0xF0) | (dst & 0x0F)
}

// Size returns the wire size of the instruction in bytes.
func (ix Instruction) Size() int {
	if ix.Op == OpLddw {
		return LddwInstSize
	}

	return InstSize
}

// Encode returns the wire form of the instruction: 8 bytes, or 16 for lddw
// where the second slot carries the high half of the immediate and the first
// slot's high 4 bytes are zero padding. Encode is the exact inverse of
// DecodeInstruction.
func (ix Instruction) Encode() []byte {
	b := make([]byte, ix.Size())
	b[0] = uint8(ix.Op)
	b[1] = NewReg(ix.Src, ix.Dst)
	binary.LittleEndian.PutUint16(b[2:4], uint16(ix.Off))
	binary.LittleEndian.PutUint32(b[4:8], uint32(uint64(ix.Imm)))
	if ix.Op == OpLddw {
		binary.LittleEndian.PutUint32(b[12:16], uint32(uint64(ix.Imm)>>32))
	}

	return b
}

// EncodeStream concatenates the wire form of a sequence of instructions.
func EncodeStream(ixs []Instruction) []byte {
	b := make([]byte, 0, len(ixs)*InstSize)
	for _, ix := range ixs {
		b = append(b, ix.Encode()...)
	}

	return b
}
