package bpfelf

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dylandreimerink/bpfelf/cursor"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()

	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex fixture: %v", err)
	}
	return b
}

// Header of a shared object built for the BPF machine, one program header
// and three section headers.
const elfHeaderFixture = "7f454c460201010000000000000000000300f7000100000078000000000000004000000000000000900000000000000000000000400038000100400003000200"

func TestElfHeaderRoundTrip(t *testing.T) {
	b := mustHex(t, elfHeaderFixture)

	h, err := DecodeElfHeaderBytes(b)
	assert.NoError(t, err)

	assert.Equal(t, [4]byte{0x7f, 'E', 'L', 'F'}, h.Magic)
	assert.Equal(t, uint16(0x03), h.Type)
	assert.Equal(t, uint16(0xf7), h.Machine)
	assert.Equal(t, uint64(0x78), h.PhOff)
	assert.Equal(t, uint64(0x40), h.ShOff)
	assert.Equal(t, uint16(1), h.PhNum)
	assert.Equal(t, uint16(3), h.ShNum)
	assert.Equal(t, uint16(2), h.ShStrNdx)

	assert.Equal(t, b, h.Encode())
}

func TestElfHeaderAcceptsSBPFMachine(t *testing.T) {
	b := mustHex(t, elfHeaderFixture)
	// e_machine at bytes 18-19, little-endian 0x107.
	b[18], b[19] = 0x07, 0x01

	h, err := DecodeElfHeaderBytes(b)
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x107), h.Machine)
}

func TestElfHeaderRejectsProfileViolations(t *testing.T) {
	cases := []struct {
		name string
		off  int
		val  byte
	}{
		{"bad magic", 0, 0x00},
		{"32-bit class", 4, 0x01},
		{"big-endian data", 5, 0x02},
		{"bad ident version", 6, 0x00},
		{"non sysv osabi", 7, 0x03},
		{"bad abi version", 8, 0x01},
		{"nonzero padding", 12, 0xff},
		{"executable type", 16, 0x02},
		{"x86-64 machine", 18, 0x3e},
		{"bad version", 20, 0x00},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := mustHex(t, elfHeaderFixture)
			b[tc.off] = tc.val

			_, err := DecodeElfHeaderBytes(b)
			assert.ErrorIs(t, err, ErrNonStandardElfHeader)
		})
	}
}

func TestElfHeaderShortBuffer(t *testing.T) {
	b := mustHex(t, elfHeaderFixture)

	for _, n := range []int{0, 3, 15, 23, 63} {
		_, err := DecodeElfHeaderBytes(b[:n])
		assert.ErrorIs(t, err, cursor.ErrShortRead, "length %d", n)
	}
}
