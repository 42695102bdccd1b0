// Package sbuf implements a growable byte buffer with a read cursor.
//
// A Buffer holds a contiguous byte region with a logical length and a
// cursor. Writes always append at the end and are the only operations that
// grow the storage. Reads happen at the cursor and are bounds checked
// against the logical length.
package sbuf

import (
	"errors"
	"fmt"
	"io"
)

const defaultCapacity = 50

var (
	ErrEOS            = errors.New("sbuf: end of stream")
	ErrBadSeekOrigin  = errors.New("sbuf: bad seek origin")
	ErrBadSeekOffset  = errors.New("sbuf: bad seek offset")
	ErrReleased       = errors.New("sbuf: buffer released")
	ErrNegativeLength = errors.New("sbuf: negative length")
)

// Buffer is not safe for concurrent use.
type Buffer struct {
	buf      []byte
	off      int
	released bool
}

// New returns an empty buffer with a small default capacity.
func New() *Buffer {
	return NewWithCapacity(defaultCapacity)
}

func NewWithCapacity(n int) *Buffer {
	if n <= 0 {
		n = 1
	}
	return &Buffer{buf: make([]byte, 0, n)}
}

// FromBytes wraps b without copying. The cursor starts at 0 and the
// logical length is len(b). Windows returned by Next alias b.
func FromBytes(b []byte) *Buffer {
	return &Buffer{buf: b[:len(b):len(b)]}
}

func (b *Buffer) Len() int { return len(b.buf) }

func (b *Buffer) Cap() int { return cap(b.buf) }

func (b *Buffer) Offset() int { return b.off }

// Remaining is the number of unread bytes after the cursor.
func (b *Buffer) Remaining() int { return len(b.buf) - b.off }

// Bytes returns the logical contents. The slice aliases the buffer storage
// until the next write.
func (b *Buffer) Bytes() []byte { return b.buf }

// Released reports whether Release has been called.
func (b *Buffer) Released() bool { return b.released }

// Release drops the storage. Subsequent reads and writes fail with
// ErrReleased. Slices previously obtained from the buffer stay valid for
// the Go runtime, but callers that still hold them are violating the
// ownership contract of whatever decoded them.
func (b *Buffer) Release() {
	b.buf = nil
	b.off = 0
	b.released = true
}

// Reset empties the buffer and rewinds the cursor, keeping the storage.
func (b *Buffer) Reset() {
	b.buf = b.buf[:0]
	b.off = 0
}

func (b *Buffer) grow(n int) {
	need := len(b.buf) + n
	if need <= cap(b.buf) {
		return
	}
	c := cap(b.buf) * 2
	if c < need {
		c = need
	}
	nb := make([]byte, len(b.buf), c)
	copy(nb, b.buf)
	b.buf = nb
}

// Put appends p at the write end.
func (b *Buffer) Put(p []byte) error {
	if b.released {
		return ErrReleased
	}
	b.grow(len(p))
	b.buf = append(b.buf, p...)
	return nil
}

func (b *Buffer) PutByte(c byte) error {
	if b.released {
		return ErrReleased
	}
	b.grow(1)
	b.buf = append(b.buf, c)
	return nil
}

// PutString appends s without a terminator.
func (b *Buffer) PutString(s string) error {
	if b.released {
		return ErrReleased
	}
	b.grow(len(s))
	b.buf = append(b.buf, s...)
	return nil
}

// Write implements io.Writer on top of Put.
func (b *Buffer) Write(p []byte) (int, error) {
	if err := b.Put(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// PeekByte returns the byte at the cursor without advancing.
func (b *Buffer) PeekByte() (byte, error) {
	if b.released {
		return 0, ErrReleased
	}
	if b.off >= len(b.buf) {
		return 0, ErrEOS
	}
	return b.buf[b.off], nil
}

// NextByte returns the byte at the cursor and advances past it.
func (b *Buffer) NextByte() (byte, error) {
	c, err := b.PeekByte()
	if err != nil {
		return 0, err
	}
	b.off++
	return c, nil
}

// Next returns a window of the next n bytes and advances the cursor. The
// window aliases the buffer storage.
func (b *Buffer) Next(n int) ([]byte, error) {
	if b.released {
		return nil, ErrReleased
	}
	if n < 0 {
		return nil, ErrNegativeLength
	}
	if n > len(b.buf)-b.off {
		return nil, fmt.Errorf("want %d bytes at pos:%d, have %d: %w", n, b.off, len(b.buf)-b.off, ErrEOS)
	}
	w := b.buf[b.off : b.off+n : b.off+n]
	b.off += n
	return w, nil
}

// Seek moves the cursor. Valid targets are 0 through Len() inclusive.
func (b *Buffer) Seek(offset int64, whence int) (int64, error) {
	if b.released {
		return 0, ErrReleased
	}
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = int64(b.off) + offset
	case io.SeekEnd:
		pos = int64(len(b.buf)) + offset
	default:
		return 0, ErrBadSeekOrigin
	}
	if pos < 0 || pos > int64(len(b.buf)) {
		return 0, fmt.Errorf("seek to %d, len %d: %w", pos, len(b.buf), ErrBadSeekOffset)
	}
	b.off = int(pos)
	return pos, nil
}

// FindNext returns the distance from the cursor to the next occurrence of
// c, or -1 if c does not occur before the end of data.
func (b *Buffer) FindNext(c byte) int {
	if b.released {
		return -1
	}
	for i := b.off; i < len(b.buf); i++ {
		if b.buf[i] == c {
			return i - b.off
		}
	}
	return -1
}

// Truncate drops n bytes from the write end. It fails if that would cut
// into data before the cursor.
func (b *Buffer) Truncate(n int) error {
	if b.released {
		return ErrReleased
	}
	if n < 0 {
		return ErrNegativeLength
	}
	if len(b.buf)-n < b.off {
		return ErrBadSeekOffset
	}
	b.buf = b.buf[:len(b.buf)-n]
	return nil
}
