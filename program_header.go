package bpfelf

import (
	"encoding/binary"
	"fmt"

	"github.com/dylandreimerink/bpfelf/cursor"
)

// ProgramHeaderSize is the fixed wire size of one program header entry.
const ProgramHeaderSize = 56

// SegmentType is the p_type field of a program header, describing what the
// segment it points at contains.
type SegmentType uint32

const (
	PT_NULL    SegmentType = 0x00 // entry unused
	PT_LOAD    SegmentType = 0x01 // loadable segment
	PT_DYNAMIC SegmentType = 0x02 // dynamic linking information
	PT_INTERP  SegmentType = 0x03 // interpreter path
	PT_NOTE    SegmentType = 0x04 // auxiliary information
	PT_SHLIB   SegmentType = 0x05 // reserved
	PT_PHDR    SegmentType = 0x06 // the program header table itself
	PT_TLS     SegmentType = 0x07 // thread-local storage template
)

var segmentTypeNames = map[SegmentType]string{
	PT_NULL:    "PT_NULL",
	PT_LOAD:    "PT_LOAD",
	PT_DYNAMIC: "PT_DYNAMIC",
	PT_INTERP:  "PT_INTERP",
	PT_NOTE:    "PT_NOTE",
	PT_SHLIB:   "PT_SHLIB",
	PT_PHDR:    "PT_PHDR",
	PT_TLS:     "PT_TLS",
}

func (st SegmentType) String() string {
	name, found := segmentTypeNames[st]
	if !found {
		return fmt.Sprintf("SegmentType(0x%x)", uint32(st))
	}
	return name
}

// LookupSegmentType converts a raw p_type value into a SegmentType, returning
// ErrInvalidSegmentType for values outside the base ELF range. OS and
// processor specific segment types are not recognized.
func LookupSegmentType(v uint32) (SegmentType, error) {
	st := SegmentType(v)
	if _, found := segmentTypeNames[st]; !found {
		return 0, fmt.Errorf("p_type 0x%x: %w", v, ErrInvalidSegmentType)
	}
	return st, nil
}

// Segment permission bits of the p_flags field.
const (
	PF_X uint32 = 0x01 // executable
	PF_W uint32 = 0x02 // writable
	PF_R uint32 = 0x04 // readable
)

// SegmentFlags holds the permission bits of a segment. Decoding masks the
// raw field down to the three permission bits, any OS or processor specific
// bits are discarded.
type SegmentFlags uint32

// String renders the flags as "R/W/X" with "*" standing in for each
// permission the segment lacks, e.g. "R/*/X" for a read-execute segment.
func (f SegmentFlags) String() string {
	r, w, x := "*", "*", "*"
	if uint32(f)&PF_R != 0 {
		r = "R"
	}
	if uint32(f)&PF_W != 0 {
		w = "W"
	}
	if uint32(f)&PF_X != 0 {
		x = "X"
	}
	return r + "/" + w + "/" + x
}

// ProgramHeader is one entry of the program header table, describing a
// segment of the file image and where it lives in memory.
type ProgramHeader struct {
	Type   SegmentType
	Flags  SegmentFlags
	Off    uint64 // offset of the segment in the file image
	Vaddr  uint64 // virtual address of the segment in memory
	Paddr  uint64 // physical address, where that is relevant
	Filesz uint64 // segment size in the file image, may be 0
	Memsz  uint64 // segment size in memory, may be 0
	Align  uint64 // 0 and 1 mean no alignment constraint
}

// DecodeProgramHeader decodes one 56-byte program header entry at the
// cursor's current position.
func DecodeProgramHeader(c *cursor.Cursor) (ProgramHeader, error) {
	var ph ProgramHeader

	rawType, err := c.U32()
	if err != nil {
		return ph, err
	}
	if ph.Type, err = LookupSegmentType(rawType); err != nil {
		return ph, err
	}

	rawFlags, err := c.U32()
	if err != nil {
		return ph, err
	}
	ph.Flags = SegmentFlags(rawFlags & (PF_R | PF_W | PF_X))

	if ph.Off, err = c.U64(); err != nil {
		return ph, err
	}
	if ph.Vaddr, err = c.U64(); err != nil {
		return ph, err
	}
	if ph.Paddr, err = c.U64(); err != nil {
		return ph, err
	}
	if ph.Filesz, err = c.U64(); err != nil {
		return ph, err
	}
	if ph.Memsz, err = c.U64(); err != nil {
		return ph, err
	}
	if ph.Align, err = c.U64(); err != nil {
		return ph, err
	}

	return ph, nil
}

// DecodeProgramHeaderBytes decodes a program header from the start of b.
func DecodeProgramHeaderBytes(b []byte) (ProgramHeader, error) {
	return DecodeProgramHeader(cursor.New(b))
}

// Encode returns the 56-byte wire form of the entry, the inverse of
// DecodeProgramHeader.
func (ph ProgramHeader) Encode() []byte {
	b := make([]byte, ProgramHeaderSize)
	le := binary.LittleEndian

	le.PutUint32(b[0:4], uint32(ph.Type))
	le.PutUint32(b[4:8], uint32(ph.Flags))
	le.PutUint64(b[8:16], ph.Off)
	le.PutUint64(b[16:24], ph.Vaddr)
	le.PutUint64(b[24:32], ph.Paddr)
	le.PutUint64(b[32:40], ph.Filesz)
	le.PutUint64(b[40:48], ph.Memsz)
	le.PutUint64(b[48:56], ph.Align)

	return b
}
