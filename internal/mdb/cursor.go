package mdb

import (
	"bytes"
	"encoding/binary"
)

// Cursor is a sequential reader over a database image. All integer reads are
// big-endian. Every read that would run past the end of the image fails with
// a *TruncatedError carrying the current offset; the cursor never panics on
// short input.
type Cursor struct {
	data []byte
	pos  int
}

// NewCursor creates a cursor positioned at the start of data.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Offset returns the number of bytes consumed so far.
func (c *Cursor) Offset() int { return c.pos }

// Remaining returns the number of bytes left to read.
func (c *Cursor) Remaining() int { return len(c.data) - c.pos }

// need fails if fewer than n bytes remain.
func (c *Cursor) need(n int) error {
	if c.Remaining() < n {
		return &TruncatedError{Offset: c.pos}
	}
	return nil
}

// U8 reads one byte.
func (c *Cursor) U8() (byte, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	b := c.data[c.pos]
	c.pos++
	return b, nil
}

// U32 reads a big-endian unsigned 32-bit integer.
func (c *Cursor) U32() (uint32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(c.data[c.pos:])
	c.pos += 4
	return v, nil
}

// U64 reads a big-endian unsigned 64-bit integer.
func (c *Cursor) U64() (uint64, error) {
	if err := c.need(8); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(c.data[c.pos:])
	c.pos += 8
	return v, nil
}

// I64 reads a big-endian signed 64-bit integer.
func (c *Cursor) I64() (int64, error) {
	v, err := c.U64()
	return int64(v), err
}

// Bytes reads exactly n bytes. The returned slice aliases the image.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// Skip advances past n bytes.
func (c *Cursor) Skip(n int) error {
	if err := c.need(n); err != nil {
		return err
	}
	c.pos += n
	return nil
}

// CString reads bytes up to the next null byte and advances past the null.
// A string that runs off the end of the image is a truncation.
func (c *Cursor) CString() (string, error) {
	i := bytes.IndexByte(c.data[c.pos:], 0)
	if i < 0 {
		return "", &TruncatedError{Offset: c.pos}
	}
	s := string(c.data[c.pos : c.pos+i])
	c.pos += i + 1
	return s, nil
}
