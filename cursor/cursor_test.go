package cursor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadsAdvanceInOrder(t *testing.T) {
	c := New([]byte{
		0x01,
		0x02, 0x03,
		0x04, 0x05, 0x06, 0x07,
		0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f,
	})

	u8, err := c.U8()
	assert.NoError(t, err)
	assert.Equal(t, uint8(0x01), u8)

	u16, err := c.U16()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x0302), u16)

	u32, err := c.U32()
	assert.NoError(t, err)
	assert.Equal(t, uint32(0x07060504), u32)

	u64, err := c.U64()
	assert.NoError(t, err)
	assert.Equal(t, uint64(0x0f0e0d0c0b0a0908), u64)

	assert.Equal(t, 0, c.Remaining())
}

func TestSignedReads(t *testing.T) {
	c := New([]byte{0xff, 0xfe, 0xff, 0xfc, 0xff, 0xff, 0xff})

	i8, err := c.I8()
	assert.NoError(t, err)
	assert.Equal(t, int8(-1), i8)

	i16, err := c.I16()
	assert.NoError(t, err)
	assert.Equal(t, int16(-2), i16)

	i32, err := c.I32()
	assert.NoError(t, err)
	assert.Equal(t, int32(-4), i32)
}

func TestShortReads(t *testing.T) {
	c := New([]byte{0x01, 0x02, 0x03})

	_, err := c.U32()
	if !errors.Is(err, ErrShortRead) {
		t.Fatalf("expected ErrShortRead, got %v", err)
	}

	_, err = New(nil).U8()
	if !errors.Is(err, ErrShortRead) {
		t.Fatalf("expected ErrShortRead on empty buffer, got %v", err)
	}

	_, err = New([]byte{1, 2}).Bytes(-1)
	if !errors.Is(err, ErrShortRead) {
		t.Fatalf("expected ErrShortRead on negative length, got %v", err)
	}
}

func TestSeek(t *testing.T) {
	c := New([]byte{0x01, 0x02, 0x03, 0x04})

	assert.NoError(t, c.Seek(2))
	assert.Equal(t, uint64(2), c.Pos())

	v, err := c.U16()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x0403), v)

	// Seeking to the end is fine, past it is not.
	assert.NoError(t, c.Seek(4))
	err = c.Seek(5)
	if !errors.Is(err, ErrShortRead) {
		t.Fatalf("expected ErrShortRead, got %v", err)
	}
}

func TestBytesAlias(t *testing.T) {
	buf := []byte{0xaa, 0xbb, 0xcc}
	c := New(buf)

	b, err := c.Bytes(3)
	assert.NoError(t, err)
	assert.Equal(t, buf, b)
	assert.Equal(t, 0, c.Remaining())
}
