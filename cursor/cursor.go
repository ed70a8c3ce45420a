// Package cursor implements a positional, bounds-checked little-endian reader
// over an in-memory byte slice. It is the scanner underneath all of the ELF
// and instruction decoders in this module.
package cursor

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrShortRead is returned when a read or seek would pass the end of the
// buffer. After a failed read the cursor position is unspecified, callers
// must not keep reading.
var ErrShortRead = errors.New("read beyond end of buffer")

// Cursor is a movable read position over an immutable byte slice.
// The buffer is borrowed, never modified.
type Cursor struct {
	buf []byte
	pos int
}

func New(b []byte) *Cursor {
	return &Cursor{buf: b}
}

// Pos returns the current read position.
func (c *Cursor) Pos() uint64 {
	return uint64(c.pos)
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.buf) - c.pos
}

// Seek repositions the cursor to an absolute offset. Seeking to the exact end
// of the buffer is allowed, anything past it is not.
func (c *Cursor) Seek(off uint64) error {
	if off > uint64(len(c.buf)) {
		return fmt.Errorf("seek to offset %d in %d byte buffer: %w", off, len(c.buf), ErrShortRead)
	}
	c.pos = int(off)
	return nil
}

// Bytes reads the next n bytes and advances the cursor past them.
// The returned slice aliases the underlying buffer.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	if n < 0 || n > c.Remaining() {
		return nil, fmt.Errorf("read of %d bytes with %d remaining: %w", n, c.Remaining(), ErrShortRead)
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *Cursor) U8() (uint8, error) {
	b, err := c.Bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *Cursor) I8() (int8, error) {
	v, err := c.U8()
	return int8(v), err
}

func (c *Cursor) U16() (uint16, error) {
	b, err := c.Bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *Cursor) I16() (int16, error) {
	v, err := c.U16()
	return int16(v), err
}

func (c *Cursor) U32() (uint32, error) {
	b, err := c.Bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *Cursor) I32() (int32, error) {
	v, err := c.U32()
	return int32(v), err
}

func (c *Cursor) U64() (uint64, error) {
	b, err := c.Bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (c *Cursor) I64() (int64, error) {
	v, err := c.U64()
	return int64(v), err
}
