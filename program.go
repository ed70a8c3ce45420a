package bpfelf

import (
	"github.com/dylandreimerink/bpfelf/cursor"
)

// Program is the fully decoded form of an sBPF program object: the ELF
// header, both header tables, and one resolved entry per section.
type Program struct {
	ElfHeader            ElfHeader
	ProgramHeaders       []ProgramHeader
	SectionHeaders       []SectionHeader
	SectionHeaderEntries []SectionHeaderEntry
}

// DecodeProgram decodes a whole program object from b. The ELF header is
// validated against the sBPF profile, both header tables are decoded at the
// offsets the header names, and each section's name and contents are
// resolved from the section name string table.
func DecodeProgram(b []byte) (*Program, error) {
	c := cursor.New(b)

	hdr, err := DecodeElfHeader(c)
	if err != nil {
		return nil, err
	}

	// Table offsets only matter when the table has entries, a header with
	// a zero count may carry any offset.
	phs := make([]ProgramHeader, 0, hdr.PhNum)
	if hdr.PhNum > 0 {
		if err := c.Seek(hdr.PhOff); err != nil {
			return nil, err
		}
		for i := 0; i < int(hdr.PhNum); i++ {
			ph, err := DecodeProgramHeader(c)
			if err != nil {
				return nil, err
			}
			phs = append(phs, ph)
		}
	}

	shs := make([]SectionHeader, 0, hdr.ShNum)
	if hdr.ShNum > 0 {
		if err := c.Seek(hdr.ShOff); err != nil {
			return nil, err
		}
		for i := 0; i < int(hdr.ShNum); i++ {
			sh, err := DecodeSectionHeader(c)
			if err != nil {
				return nil, err
			}
			shs = append(shs, sh)
		}
	}

	entries, err := resolveSections(shs, b, hdr.ShStrNdx)
	if err != nil {
		return nil, err
	}

	return &Program{
		ElfHeader:            hdr,
		ProgramHeaders:       phs,
		SectionHeaders:       shs,
		SectionHeaderEntries: entries,
	}, nil
}
