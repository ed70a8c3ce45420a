package bpfelf

import (
	"encoding/binary"
	"fmt"

	"github.com/dylandreimerink/bpfelf/cursor"
)

// SectionHeaderSize is the fixed wire size of one section header entry.
const SectionHeaderSize = 64

// SectionType is the sh_type field of a section header, describing the
// contents and semantics of the section it points at.
type SectionType uint32

const (
	SHT_NULL          SectionType = 0x00 // entry unused
	SHT_PROGBITS      SectionType = 0x01 // program data
	SHT_SYMTAB        SectionType = 0x02 // symbol table
	SHT_STRTAB        SectionType = 0x03 // string table
	SHT_RELA          SectionType = 0x04 // relocation entries with addends
	SHT_HASH          SectionType = 0x05 // symbol hash table
	SHT_DYNAMIC       SectionType = 0x06 // dynamic linking information
	SHT_NOTE          SectionType = 0x07 // notes
	SHT_NOBITS        SectionType = 0x08 // program space with no data (bss)
	SHT_REL           SectionType = 0x09 // relocation entries, no addends
	SHT_SHLIB         SectionType = 0x0A // reserved
	SHT_DYNSYM        SectionType = 0x0B // dynamic linker symbol table
	SHT_INIT_ARRAY    SectionType = 0x0E // array of constructors
	SHT_FINI_ARRAY    SectionType = 0x0F // array of destructors
	SHT_PREINIT_ARRAY SectionType = 0x10 // array of pre-constructors
	SHT_GROUP         SectionType = 0x11 // section group
	SHT_SYMTAB_SHNDX  SectionType = 0x12 // extended section indices
	SHT_NUM           SectionType = 0x13 // number of defined types
)

var sectionTypeNames = map[SectionType]string{
	SHT_NULL:          "SHT_NULL",
	SHT_PROGBITS:      "SHT_PROGBITS",
	SHT_SYMTAB:        "SHT_SYMTAB",
	SHT_STRTAB:        "SHT_STRTAB",
	SHT_RELA:          "SHT_RELA",
	SHT_HASH:          "SHT_HASH",
	SHT_DYNAMIC:       "SHT_DYNAMIC",
	SHT_NOTE:          "SHT_NOTE",
	SHT_NOBITS:        "SHT_NOBITS",
	SHT_REL:           "SHT_REL",
	SHT_SHLIB:         "SHT_SHLIB",
	SHT_DYNSYM:        "SHT_DYNSYM",
	SHT_INIT_ARRAY:    "SHT_INIT_ARRAY",
	SHT_FINI_ARRAY:    "SHT_FINI_ARRAY",
	SHT_PREINIT_ARRAY: "SHT_PREINIT_ARRAY",
	SHT_GROUP:         "SHT_GROUP",
	SHT_SYMTAB_SHNDX:  "SHT_SYMTAB_SHNDX",
	SHT_NUM:           "SHT_NUM",
}

func (st SectionType) String() string {
	name, found := sectionTypeNames[st]
	if !found {
		return fmt.Sprintf("SectionType(0x%x)", uint32(st))
	}
	return name
}

// LookupSectionType converts a raw sh_type value into a SectionType,
// returning ErrInvalidSectionType for values outside the base ELF range.
// Note that 0x0C and 0x0D fall in a gap of the base range and are invalid.
func LookupSectionType(v uint32) (SectionType, error) {
	st := SectionType(v)
	if _, found := sectionTypeNames[st]; !found {
		return 0, fmt.Errorf("sh_type 0x%x: %w", v, ErrInvalidSectionType)
	}
	return st, nil
}

// SectionHeader is one entry of the section header table.
type SectionHeader struct {
	Name      uint32 // offset of this section's name in the section name string table
	Type      SectionType
	Flags     uint64 // attribute bits
	Addr      uint64 // virtual address of the section in memory, for loaded sections
	Off       uint64 // offset of the section in the file image
	Size      uint64 // section size in the file image, may be 0
	Link      uint32 // index of an associated section, meaning depends on Type
	Info      uint32 // extra information, meaning depends on Type
	Addralign uint64 // required alignment, must be a power of two
	Entsize   uint64 // entry size for sections holding fixed-size entries, else 0
}

// DecodeSectionHeader decodes one 64-byte section header entry at the
// cursor's current position.
func DecodeSectionHeader(c *cursor.Cursor) (SectionHeader, error) {
	var sh SectionHeader

	var err error
	if sh.Name, err = c.U32(); err != nil {
		return sh, err
	}

	rawType, err := c.U32()
	if err != nil {
		return sh, err
	}
	if sh.Type, err = LookupSectionType(rawType); err != nil {
		return sh, err
	}

	if sh.Flags, err = c.U64(); err != nil {
		return sh, err
	}
	if sh.Addr, err = c.U64(); err != nil {
		return sh, err
	}
	if sh.Off, err = c.U64(); err != nil {
		return sh, err
	}
	if sh.Size, err = c.U64(); err != nil {
		return sh, err
	}
	if sh.Link, err = c.U32(); err != nil {
		return sh, err
	}
	if sh.Info, err = c.U32(); err != nil {
		return sh, err
	}
	if sh.Addralign, err = c.U64(); err != nil {
		return sh, err
	}
	if sh.Entsize, err = c.U64(); err != nil {
		return sh, err
	}

	return sh, nil
}

// DecodeSectionHeaderBytes decodes a section header from the start of b.
func DecodeSectionHeaderBytes(b []byte) (SectionHeader, error) {
	return DecodeSectionHeader(cursor.New(b))
}

// Encode returns the 64-byte wire form of the entry, the inverse of
// DecodeSectionHeader.
func (sh SectionHeader) Encode() []byte {
	b := make([]byte, SectionHeaderSize)
	le := binary.LittleEndian

	le.PutUint32(b[0:4], sh.Name)
	le.PutUint32(b[4:8], uint32(sh.Type))
	le.PutUint64(b[8:16], sh.Flags)
	le.PutUint64(b[16:24], sh.Addr)
	le.PutUint64(b[24:32], sh.Off)
	le.PutUint64(b[32:40], sh.Size)
	le.PutUint32(b[40:44], sh.Link)
	le.PutUint32(b[44:48], sh.Info)
	le.PutUint64(b[48:56], sh.Addralign)
	le.PutUint64(b[56:64], sh.Entsize)

	return b
}
