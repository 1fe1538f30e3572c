package pio

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfBounds = errors.New("out of bounds")
	ErrReleased    = errors.New("pio: reader already released")
	ErrUnreleased  = errors.New("pio: sub reader not released")
)

type BoundsError struct {
	Offset int64
	Want   int
	Have   int
}

func (self *BoundsError) Error() string {
	return fmt.Sprintf("pio: %s at offset %d: want %d bytes, have %d", ErrOutOfBounds, self.Offset, self.Want, self.Have)
}

func (self *BoundsError) Unwrap() error {
	return ErrOutOfBounds
}

// Reader is a position tracking view over a byte slice. Reads are big
// endian and never move past the end of the view. A failed read leaves
// the position unchanged.
//
// A Reader is owned by one goroutine. Sub readers from Slice have their
// own position and must be released before the parent is closed.
type Reader struct {
	b        []byte
	pos      int
	base     int64
	parent   *Reader
	open     int
	released bool
}

// NewReader returns a reader over b. base is the absolute offset of b[0]
// and is only used for error reporting and Pos.
func NewReader(b []byte, base int64) *Reader {
	return &Reader{b: b, base: base}
}

// Len returns the number of unread bytes.
func (self *Reader) Len() int {
	return len(self.b) - self.pos
}

// Size returns the total length of the view.
func (self *Reader) Size() int {
	return len(self.b)
}

// Offset returns the position relative to the start of the view.
func (self *Reader) Offset() int {
	return self.pos
}

// Pos returns the absolute position.
func (self *Reader) Pos() int64 {
	return self.base + int64(self.pos)
}

// Open returns the number of sub readers not yet released.
func (self *Reader) Open() int {
	return self.open
}

func (self *Reader) take(n int) (b []byte, err error) {
	if self.released {
		err = ErrReleased
		return
	}
	if n < 0 || self.Len() < n {
		err = &BoundsError{Offset: self.Pos(), Want: n, Have: self.Len()}
		return
	}
	b = self.b[self.pos : self.pos+n : self.pos+n]
	self.pos += n
	return
}

func (self *Reader) ReadU8() (v uint8, err error) {
	var b []byte
	if b, err = self.take(1); err != nil {
		return
	}
	v = U8(b)
	return
}

func (self *Reader) ReadI8() (v int8, err error) {
	var b []byte
	if b, err = self.take(1); err != nil {
		return
	}
	v = I8(b)
	return
}

func (self *Reader) ReadU16BE() (v uint16, err error) {
	var b []byte
	if b, err = self.take(2); err != nil {
		return
	}
	v = U16BE(b)
	return
}

func (self *Reader) ReadI16BE() (v int16, err error) {
	var b []byte
	if b, err = self.take(2); err != nil {
		return
	}
	v = I16BE(b)
	return
}

func (self *Reader) ReadU24BE() (v uint32, err error) {
	var b []byte
	if b, err = self.take(3); err != nil {
		return
	}
	v = U24BE(b)
	return
}

func (self *Reader) ReadU32BE() (v uint32, err error) {
	var b []byte
	if b, err = self.take(4); err != nil {
		return
	}
	v = U32BE(b)
	return
}

func (self *Reader) ReadI32BE() (v int32, err error) {
	var b []byte
	if b, err = self.take(4); err != nil {
		return
	}
	v = I32BE(b)
	return
}

func (self *Reader) ReadU64BE() (v uint64, err error) {
	var b []byte
	if b, err = self.take(8); err != nil {
		return
	}
	v = U64BE(b)
	return
}

func (self *Reader) ReadFixed16_16() (v float64, err error) {
	var u uint32
	if u, err = self.ReadU32BE(); err != nil {
		return
	}
	v = Fixed16_16(u)
	return
}

func (self *Reader) ReadFixed2_30() (v float64, err error) {
	var u uint32
	if u, err = self.ReadU32BE(); err != nil {
		return
	}
	v = Fixed2_30(u)
	return
}

// ReadBytes returns a copy of the next n bytes.
func (self *Reader) ReadBytes(n int) (res []byte, err error) {
	var b []byte
	if b, err = self.take(n); err != nil {
		return
	}
	res = make([]byte, n)
	copy(res, b)
	return
}

// Peek returns the next n bytes without advancing. The slice aliases
// the underlying buffer and must not be modified.
func (self *Reader) Peek(n int) (b []byte, err error) {
	if b, err = self.take(n); err != nil {
		return
	}
	self.pos -= n
	return
}

func (self *Reader) Discard(n int) (err error) {
	_, err = self.take(n)
	return
}

// Slice returns a sub reader over the next n bytes and advances past
// them. The caller owns the sub reader and must Release it.
func (self *Reader) Slice(n int) (sub *Reader, err error) {
	start := self.Pos()
	var b []byte
	if b, err = self.take(n); err != nil {
		return
	}
	self.open++
	sub = &Reader{b: b, base: start, parent: self}
	return
}

// WithSlice runs fn over a sub reader of the next n bytes. The sub
// reader is released when fn returns, whatever the outcome.
func (self *Reader) WithSlice(n int, fn func(*Reader) error) (err error) {
	var sub *Reader
	if sub, err = self.Slice(n); err != nil {
		return
	}
	defer sub.Release()
	return fn(sub)
}

// Release ends the reader's lifetime. Further reads fail with
// ErrReleased. Releasing twice is a no-op.
func (self *Reader) Release() {
	if self.released {
		return
	}
	self.released = true
	if self.parent != nil {
		self.parent.open--
	}
}

// Close releases the reader, failing if any of its sub readers are
// still open.
func (self *Reader) Close() error {
	if self.open > 0 {
		return fmt.Errorf("%w: %d open", ErrUnreleased, self.open)
	}
	self.Release()
	return nil
}
