package bpfelf

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dylandreimerink/bpfelf/cursor"
)

// String table section of 10 bytes at file offset 0x80.
const sectionHeaderFixture = "07000000030000000000000000000000000000000000000080000000000000000a00000000000000000000000000000001000000000000000000000000000000"

func TestSectionHeaderRoundTrip(t *testing.T) {
	b := mustHex(t, sectionHeaderFixture)

	sh, err := DecodeSectionHeaderBytes(b)
	assert.NoError(t, err)

	assert.Equal(t, uint32(7), sh.Name)
	assert.Equal(t, SHT_STRTAB, sh.Type)
	assert.Equal(t, uint64(0x80), sh.Off)
	assert.Equal(t, uint64(0x0a), sh.Size)
	assert.Equal(t, uint64(1), sh.Addralign)

	assert.Equal(t, b, sh.Encode())
}

func TestSectionHeaderInvalidType(t *testing.T) {
	// 0x0C and 0x0D sit in a gap of the defined sh_type range.
	for _, v := range []byte{0x0c, 0x0d, 0x14} {
		b := mustHex(t, sectionHeaderFixture)
		b[4] = v

		_, err := DecodeSectionHeaderBytes(b)
		assert.ErrorIs(t, err, ErrInvalidSectionType, "sh_type 0x%x", v)
	}
}

func TestSectionHeaderShortBuffer(t *testing.T) {
	b := mustHex(t, sectionHeaderFixture)

	_, err := DecodeSectionHeaderBytes(b[:SectionHeaderSize-1])
	assert.ErrorIs(t, err, cursor.ErrShortRead)
}
