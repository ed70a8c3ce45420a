package bpfelf

import (
	"encoding/binary"
	"fmt"

	"github.com/dylandreimerink/bpfelf/cursor"
)

// ElfHeaderSize is the fixed wire size of the ELF file header.
const ElfHeaderSize = 64

// The single accepted ELF profile. This deliberately rejects generic ELF:
// only the 64-bit little-endian System V dialect used for sBPF program
// objects decodes.
var elfMagic = [4]byte{0x7f, 'E', 'L', 'F'}

const (
	elfClass64      = 0x02 // 64-bit
	elfDataLSB      = 0x01 // little-endian
	elfIdentVersion = 0x01
	elfOSABISysV    = 0x00
	elfABIVersion   = 0x00
	elfTypeDyn      = 0x03 // shared object
	elfVersion      = 0x01
)

// Machine codes, the only field with two admissible values.
const (
	elfMachineBPF  = 0xf7  // Berkeley Packet Filter
	elfMachineSBPF = 0x107 // Solana BPF variant
)

var elfPad [7]byte

// ElfHeader is the fixed 64-byte identification and header block at the
// start of every ELF file. Decoded once per input buffer and immutable
// afterwards.
type ElfHeader struct {
	Magic        [4]byte
	Class        uint8
	Data         uint8
	IdentVersion uint8
	OSABI        uint8
	ABIVersion   uint8
	Pad          [7]byte
	Type         uint16
	Machine      uint16
	Version      uint32
	Entry        uint64
	PhOff        uint64
	ShOff        uint64
	Flags        uint32
	EhSize       uint16
	PhEntSize    uint16
	PhNum        uint16
	ShEntSize    uint16
	ShNum        uint16
	ShStrNdx     uint16
}

// DecodeElfHeader decodes and validates the header at the cursor's current
// position. Validation is strict: any identification, type, machine or
// version value outside the supported profile fails with
// ErrNonStandardElfHeader.
func DecodeElfHeader(c *cursor.Cursor) (ElfHeader, error) {
	var h ElfHeader

	magic, err := c.Bytes(4)
	if err != nil {
		return h, err
	}
	copy(h.Magic[:], magic)

	if h.Class, err = c.U8(); err != nil {
		return h, err
	}
	if h.Data, err = c.U8(); err != nil {
		return h, err
	}
	if h.IdentVersion, err = c.U8(); err != nil {
		return h, err
	}
	if h.OSABI, err = c.U8(); err != nil {
		return h, err
	}
	if h.ABIVersion, err = c.U8(); err != nil {
		return h, err
	}

	pad, err := c.Bytes(7)
	if err != nil {
		return h, err
	}
	copy(h.Pad[:], pad)

	if h.Type, err = c.U16(); err != nil {
		return h, err
	}
	if h.Machine, err = c.U16(); err != nil {
		return h, err
	}
	if h.Version, err = c.U32(); err != nil {
		return h, err
	}

	if h.Magic != elfMagic ||
		h.Class != elfClass64 ||
		h.Data != elfDataLSB ||
		h.IdentVersion != elfIdentVersion ||
		h.OSABI != elfOSABISysV ||
		h.ABIVersion != elfABIVersion ||
		h.Pad != elfPad ||
		h.Type != elfTypeDyn ||
		(h.Machine != elfMachineBPF && h.Machine != elfMachineSBPF) ||
		h.Version != elfVersion {
		return h, fmt.Errorf("machine 0x%x, type 0x%x: %w", h.Machine, h.Type, ErrNonStandardElfHeader)
	}

	if h.Entry, err = c.U64(); err != nil {
		return h, err
	}
	if h.PhOff, err = c.U64(); err != nil {
		return h, err
	}
	if h.ShOff, err = c.U64(); err != nil {
		return h, err
	}
	if h.Flags, err = c.U32(); err != nil {
		return h, err
	}
	if h.EhSize, err = c.U16(); err != nil {
		return h, err
	}
	if h.PhEntSize, err = c.U16(); err != nil {
		return h, err
	}
	if h.PhNum, err = c.U16(); err != nil {
		return h, err
	}
	if h.ShEntSize, err = c.U16(); err != nil {
		return h, err
	}
	if h.ShNum, err = c.U16(); err != nil {
		return h, err
	}
	if h.ShStrNdx, err = c.U16(); err != nil {
		return h, err
	}

	return h, nil
}

// DecodeElfHeaderBytes decodes a header from the start of b.
func DecodeElfHeaderBytes(b []byte) (ElfHeader, error) {
	return DecodeElfHeader(cursor.New(b))
}

// Encode returns the 64-byte wire form of the header, the exact field-order
// inverse of DecodeElfHeader.
func (h ElfHeader) Encode() []byte {
	b := make([]byte, ElfHeaderSize)
	le := binary.LittleEndian

	copy(b[0:4], h.Magic[:])
	b[4] = h.Class
	b[5] = h.Data
	b[6] = h.IdentVersion
	b[7] = h.OSABI
	b[8] = h.ABIVersion
	copy(b[9:16], h.Pad[:])
	le.PutUint16(b[16:18], h.Type)
	le.PutUint16(b[18:20], h.Machine)
	le.PutUint32(b[20:24], h.Version)
	le.PutUint64(b[24:32], h.Entry)
	le.PutUint64(b[32:40], h.PhOff)
	le.PutUint64(b[40:48], h.ShOff)
	le.PutUint32(b[48:52], h.Flags)
	le.PutUint16(b[52:54], h.EhSize)
	le.PutUint16(b[54:56], h.PhEntSize)
	le.PutUint16(b[56:58], h.PhNum)
	le.PutUint16(b[58:60], h.ShEntSize)
	le.PutUint16(b[60:62], h.ShNum)
	le.PutUint16(b[62:64], h.ShStrNdx)

	return b
}
