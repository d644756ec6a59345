// Package page implements the fixed-size in-memory byte buffer that the
// file manager reads and writes one block at a time. All multi-byte
// integers are big-endian on the wire; strings are length-prefixed UTF-8.
package page

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrBufferSizeExceeded is returned when a typed accessor would read or
// write outside the page's fixed-size buffer.
var ErrBufferSizeExceeded = errors.New("buffer size exceeded")

// Int32Size is the on-disk width of an i32 field.
const Int32Size = 4

// Page is a fixed-size byte array with typed, offset-addressed accessors.
// It is directly shared with the buffer manager for block I/O and is not
// safe for concurrent use without external synchronization (the buffer
// manager's pool mutex serializes access).
type Page struct {
	buf []byte
}

// New allocates a zeroed page of blocksize bytes.
func New(blocksize int) *Page {
	return &Page{buf: make([]byte, blocksize)}
}

// NewFromBytes wraps an existing buffer (e.g. one just read from disk) as
// a page without copying.
func NewFromBytes(b []byte) *Page {
	return &Page{buf: b}
}

// Bytes exposes the underlying buffer for file I/O.
func (p *Page) Bytes() []byte { return p.buf }

// Len returns the page's fixed size.
func (p *Page) Len() int { return len(p.buf) }

func (p *Page) bounds(off, n int) error {
	if off < 0 || n < 0 || off+n > len(p.buf) {
		return fmt.Errorf("%w: offset %d len %d page size %d", ErrBufferSizeExceeded, off, n, len(p.buf))
	}
	return nil
}

// GetInt32 reads a big-endian i32 at byte offset off.
func (p *Page) GetInt32(off int) (int32, error) {
	if err := p.bounds(off, Int32Size); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(p.buf[off : off+Int32Size])), nil
}

// SetInt32 writes a big-endian i32 at byte offset off.
func (p *Page) SetInt32(off int, v int32) error {
	if err := p.bounds(off, Int32Size); err != nil {
		return err
	}
	binary.BigEndian.PutUint32(p.buf[off:off+Int32Size], uint32(v))
	return nil
}

// GetBytes reads a length-prefixed byte slice at byte offset off.
func (p *Page) GetBytes(off int) ([]byte, error) {
	n, err := p.GetInt32(off)
	if err != nil {
		return nil, err
	}
	start := off + Int32Size
	if err := p.bounds(start, int(n)); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, p.buf[start:start+int(n)])
	return out, nil
}

// SetBytes writes a length-prefixed byte slice at byte offset off.
func (p *Page) SetBytes(off int, b []byte) error {
	if err := p.bounds(off, Int32Size+len(b)); err != nil {
		return err
	}
	if err := p.SetInt32(off, int32(len(b))); err != nil {
		return err
	}
	copy(p.buf[off+Int32Size:], b)
	return nil
}

// GetString reads a length-prefixed UTF-8 string at byte offset off.
func (p *Page) GetString(off int) (string, error) {
	b, err := p.GetBytes(off)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// SetString writes a length-prefixed UTF-8 string at byte offset off.
func (p *Page) SetString(off int, s string) error {
	return p.SetBytes(off, []byte(s))
}

// GetInt8 reads a single signed byte at offset off.
func (p *Page) GetInt8(off int) (int8, error) {
	if err := p.bounds(off, 1); err != nil {
		return 0, err
	}
	return int8(p.buf[off]), nil
}

// SetInt8 writes a single signed byte at offset off.
func (p *Page) SetInt8(off int, v int8) error {
	if err := p.bounds(off, 1); err != nil {
		return err
	}
	p.buf[off] = byte(v)
	return nil
}

// GetInt16 reads a big-endian i16 at offset off.
func (p *Page) GetInt16(off int) (int16, error) {
	if err := p.bounds(off, 2); err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(p.buf[off : off+2])), nil
}

// SetInt16 writes a big-endian i16 at offset off.
func (p *Page) SetInt16(off int, v int16) error {
	if err := p.bounds(off, 2); err != nil {
		return err
	}
	binary.BigEndian.PutUint16(p.buf[off:off+2], uint16(v))
	return nil
}

// GetBool reads a single byte at offset off as a boolean (0=false).
func (p *Page) GetBool(off int) (bool, error) {
	if err := p.bounds(off, 1); err != nil {
		return false, err
	}
	return p.buf[off] != 0, nil
}

// SetBool writes a boolean as a single byte at offset off.
func (p *Page) SetBool(off int, v bool) error {
	if err := p.bounds(off, 1); err != nil {
		return err
	}
	b := byte(0)
	if v {
		b = 1
	}
	p.buf[off] = b
	return nil
}

// MaxLength returns the worst-case number of bytes a length-prefixed
// string of at most strlen characters can occupy on a page.
func MaxLength(strlen int) int {
	return Int32Size + strlen
}
