// Package binio holds the little-endian byte cursor shared by every asset
// decoder and the decode error taxonomy.
package binio

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Cursor reads little-endian primitives sequentially from a byte buffer.
// Reads past the end fail with a TruncatedDataError naming the asset.
type Cursor struct {
	name string
	data []byte
	pos  int
}

func NewCursor(name string, data []byte) *Cursor {
	return &Cursor{name: name, data: data}
}

func (c *Cursor) Name() string   { return c.name }
func (c *Cursor) Pos() int       { return c.pos }
func (c *Cursor) Len() int       { return len(c.data) }
func (c *Cursor) Remaining() int { return len(c.data) - c.pos }
func (c *Cursor) Data() []byte   { return c.data }

func (c *Cursor) need(n int) error {
	if n < 0 || c.pos+n > len(c.data) {
		return Truncated(c.name, int64(c.pos), int64(n), int64(len(c.data)-c.pos))
	}
	return nil
}

// Seek moves to an absolute offset. Seeking to the end is allowed.
func (c *Cursor) Seek(off int) error {
	if off < 0 || off > len(c.data) {
		return Truncated(c.name, int64(off), 0, int64(len(c.data)))
	}
	c.pos = off
	return nil
}

func (c *Cursor) Skip(n int) error {
	if err := c.need(n); err != nil {
		return err
	}
	c.pos += n
	return nil
}

// Bytes returns the next n bytes without copying.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// Peek returns the next n bytes without advancing.
func (c *Cursor) Peek(n int) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}
	return c.data[c.pos : c.pos+n], nil
}

func (c *Cursor) U8() (uint8, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	v := c.data[c.pos]
	c.pos++
	return v, nil
}

func (c *Cursor) U16() (uint16, error) {
	if err := c.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(c.data[c.pos:])
	c.pos += 2
	return v, nil
}

func (c *Cursor) I16() (int16, error) {
	v, err := c.U16()
	return int16(v), err
}

func (c *Cursor) U32() (uint32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(c.data[c.pos:])
	c.pos += 4
	return v, nil
}

func (c *Cursor) I32() (int32, error) {
	v, err := c.U32()
	return int32(v), err
}

func (c *Cursor) F32() (float32, error) {
	v, err := c.U32()
	return math.Float32frombits(v), err
}

// Read decodes a fixed-size value such as a header struct.
func (c *Cursor) Read(v interface{}) error {
	n := binary.Size(v)
	if n < 0 {
		return Formatf(c.name, int64(c.pos), "cannot decode %T", v)
	}
	if err := c.need(n); err != nil {
		return err
	}
	if err := binary.Read(bytes.NewReader(c.data[c.pos:c.pos+n]), binary.LittleEndian, v); err != nil {
		return err
	}
	c.pos += n
	return nil
}

// CString reads a fixed-width field and trims it at the first NUL.
func (c *Cursor) CString(width int) (string, error) {
	b, err := c.Bytes(width)
	if err != nil {
		return "", err
	}
	return TrimNul(b), nil
}

// TrimNul returns b up to its first NUL as a string.
func TrimNul(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
