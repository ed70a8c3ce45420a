package bpfelf

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dylandreimerink/bpfelf/cursor"
	"github.com/dylandreimerink/bpfelf/ebpf"
)

// resolveFixture builds a buffer holding 16 bytes of bytecode followed by a
// string table, and headers naming the code section out of that table.
func resolveFixture(t *testing.T, names string) ([]SectionHeader, []byte) {
	t.Helper()

	// mov64 r0, 0 / exit
	code := mustHex(t, "b7000000000000009500000000000000")
	b := append(code, []byte(names)...)

	headers := []SectionHeader{
		{Name: 5, Type: SHT_PROGBITS, Off: 0, Size: uint64(len(code))},
		{Name: 0, Type: SHT_PROGBITS, Off: 0, Size: 0},
		{Name: 0, Type: SHT_STRTAB, Off: uint64(len(code)), Size: uint64(len(names))},
	}
	return headers, b
}

func TestResolveSectionsSuffixSharingLabels(t *testing.T) {
	// The table holds "text\0" at offset 0 and ".text\0" at offset 5.
	// The label at offset 0 must stop where the offset-5 name begins
	// instead of running to the end of the table.
	headers, b := resolveFixture(t, "text\x00.text\x00")

	entries, err := resolveSections(headers, b, 2)
	assert.NoError(t, err)
	assert.Len(t, entries, 3)

	assert.Equal(t, ".text\x00", entries[0].Label)
	assert.Equal(t, "text\x00", entries[1].Label)
	assert.Equal(t, "text\x00", entries[2].Label)

	assert.Equal(t, []ebpf.Instruction{
		{Op: ebpf.OpMov64Imm, Dst: 0, Src: 0, Off: 0, Imm: 0},
		{Op: ebpf.OpExit, Dst: 0, Src: 0, Off: 0, Imm: 0},
	}, entries[0].Instructions)
	assert.Nil(t, entries[1].Instructions)
}

func TestResolveSectionsInvalidUTF8Label(t *testing.T) {
	headers, b := resolveFixture(t, "\xff\xfe\xfd\x00\x00.text\x00")

	entries, err := resolveSections(headers, b, 2)
	assert.NoError(t, err)
	assert.Equal(t, "default", entries[1].Label)
}

func TestResolveSectionsCodeSectionBadLength(t *testing.T) {
	headers, b := resolveFixture(t, "text\x00.text\x00")
	headers[0].Size = 7

	_, err := resolveSections(headers, b, 2)
	assert.ErrorIs(t, err, ebpf.ErrInvalidDataLength)
}

func TestResolveSectionsEmptyCodeSection(t *testing.T) {
	headers, b := resolveFixture(t, "text\x00.text\x00")
	headers[0].Size = 0

	entries, err := resolveSections(headers, b, 2)
	assert.NoError(t, err)
	assert.Empty(t, entries[0].Instructions)
}

func TestResolveSectionsStrtabIndexOutOfRange(t *testing.T) {
	headers, b := resolveFixture(t, "text\x00.text\x00")

	_, err := resolveSections(headers, b, 3)
	assert.ErrorIs(t, err, ErrInvalidString)
}

func TestResolveSectionsNameOutOfRange(t *testing.T) {
	headers, b := resolveFixture(t, "text\x00.text\x00")
	headers[1].Name = 64

	_, err := resolveSections(headers, b, 2)
	assert.ErrorIs(t, err, ErrInvalidString)
}

func TestResolveSectionsDataOutOfRange(t *testing.T) {
	headers, b := resolveFixture(t, "text\x00.text\x00")
	headers[1].Off = uint64(len(b))
	headers[1].Size = 8

	_, err := resolveSections(headers, b, 2)
	assert.ErrorIs(t, err, cursor.ErrShortRead)
}

func TestResolveSectionsOffsetOverflow(t *testing.T) {
	// An offset near the top of the uint64 range plus a size wrapping the
	// sum back into bounds must fail like any other out-of-range section,
	// not slice past the buffer.
	headers, b := resolveFixture(t, "text\x00.text\x00")
	headers[1].Off = 0xffffffffffffff00
	headers[1].Size = 0x200

	_, err := resolveSections(headers, b, 2)
	assert.ErrorIs(t, err, cursor.ErrShortRead)
}

func TestResolveSectionsStrtabOffsetOverflow(t *testing.T) {
	headers, b := resolveFixture(t, "text\x00.text\x00")
	headers[2].Off = 0xffffffffffffff00
	headers[2].Size = 0x200

	_, err := resolveSections(headers, b, 2)
	assert.ErrorIs(t, err, cursor.ErrShortRead)
}

func TestSectionHeaderEntryUTF8(t *testing.T) {
	entry, err := NewSectionHeaderEntry("note\x00", 0, []byte("hello"))
	assert.NoError(t, err)
	assert.Equal(t, "hello", entry.UTF8)
	assert.Nil(t, entry.Instructions)

	entry, err = NewSectionHeaderEntry("note\x00", 0, []byte{0xff, 0xfe})
	assert.NoError(t, err)
	assert.Empty(t, entry.UTF8)
}

func TestSectionHeaderEntryOwnsData(t *testing.T) {
	headers, b := resolveFixture(t, "text\x00.text\x00")

	entries, err := resolveSections(headers, b, 2)
	assert.NoError(t, err)

	// Clobbering the input buffer must not reach through to the entry.
	want := append([]byte(nil), entries[0].Data...)
	for i := range b {
		b[i] = 0
	}
	assert.Equal(t, want, entries[0].Data)
}
