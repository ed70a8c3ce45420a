package bpfelf

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/dylandreimerink/bpfelf/cursor"
	"github.com/dylandreimerink/bpfelf/ebpf"
)

// codeSectionLabel is the resolved label of the section holding program
// bytecode. Labels keep their NUL terminator from the string table, so the
// code section label is ".text" plus the terminator.
const codeSectionLabel = ".text\x00"

// fallbackLabel stands in for section names which are not valid UTF-8.
const fallbackLabel = "default"

// SectionHeaderEntry pairs a section's resolved name with a copy of its
// contents. The entry for the code section additionally carries the decoded
// instruction stream.
type SectionHeaderEntry struct {
	Label  string
	Offset uint64
	Data   []byte

	// Instructions is only populated for the code section, and only
	// as far as the bytecode decodes.
	Instructions []ebpf.Instruction

	// UTF8 is the section contents reinterpreted as text, empty when the
	// contents are not valid UTF-8.
	UTF8 string
}

// NewSectionHeaderEntry builds an entry from a resolved label and the raw
// section contents. Code section contents must be a whole number of 8-byte
// slots, and decode permissively: decoding stops at the first slot that
// doesn't form a valid instruction.
func NewSectionHeaderEntry(label string, offset uint64, data []byte) (SectionHeaderEntry, error) {
	entry := SectionHeaderEntry{
		Label:  label,
		Offset: offset,
		Data:   data,
	}

	if label == codeSectionLabel {
		ixs, err := ebpf.DecodeStream(data)
		if err != nil {
			return entry, err
		}
		entry.Instructions = ixs
	}

	if utf8.Valid(data) {
		entry.UTF8 = string(data)
	}

	return entry, nil
}

// ToInstructions re-decodes the entry's contents as a bytecode stream,
// regardless of the entry's label.
func (e SectionHeaderEntry) ToInstructions() ([]ebpf.Instruction, error) {
	return ebpf.DecodeStream(e.Data)
}

// resolveSections builds an entry per section header, resolving each
// header's name against the section name string table indexed by shstrndx.
//
// Names in the string table may share storage: a name may be the suffix of
// another, so a name's length can't be read off the table alone. Each label
// runs from its own offset to the nearest offset some other section (or the
// table end) starts at, which keeps the NUL terminator inside the label.
func resolveSections(headers []SectionHeader, b []byte, shstrndx uint16) ([]SectionHeaderEntry, error) {
	if int(shstrndx) >= len(headers) {
		return nil, fmt.Errorf("e_shstrndx %d, %d sections: %w", shstrndx, len(headers), ErrInvalidString)
	}

	// Offset and size are attacker-controlled uint64s, their sum can wrap.
	strtab := headers[shstrndx]
	if strtab.Off > uint64(len(b)) || strtab.Size > uint64(len(b))-strtab.Off {
		return nil, fmt.Errorf("string table: %w", cursor.ErrShortRead)
	}
	names := b[strtab.Off : strtab.Off+strtab.Size]

	// Every name offset plus the table end, sorted, gives each label its
	// upper bound.
	bounds := make([]uint32, 0, len(headers)+1)
	for _, sh := range headers {
		bounds = append(bounds, sh.Name)
	}
	bounds = append(bounds, uint32(strtab.Size))
	sort.Slice(bounds, func(i, j int) bool { return bounds[i] < bounds[j] })

	entries := make([]SectionHeaderEntry, 0, len(headers))
	for _, sh := range headers {
		next := sort.Search(len(bounds), func(i int) bool { return bounds[i] > sh.Name })
		if next == len(bounds) {
			return nil, fmt.Errorf("sh_name %d: %w", sh.Name, ErrInvalidString)
		}
		end := bounds[next]
		if uint64(sh.Name) > uint64(len(names)) || uint64(end) > uint64(len(names)) {
			return nil, fmt.Errorf("sh_name %d: %w", sh.Name, ErrInvalidString)
		}

		label := string(names[sh.Name:end])
		if !utf8.ValidString(label) {
			label = fallbackLabel
		}

		if sh.Off > uint64(len(b)) || sh.Size > uint64(len(b))-sh.Off {
			return nil, fmt.Errorf("section %q contents: %w", label, cursor.ErrShortRead)
		}
		data := make([]byte, sh.Size)
		copy(data, b[sh.Off:sh.Off+sh.Size])

		entry, err := NewSectionHeaderEntry(label, sh.Off, data)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
