package bits

import (
	"github.com/tyrese/isobox/utils/bits/pio"
)

// Reader reads MSB first bit fields from a byte slice.
type Reader struct {
	b   []byte
	off int
}

func NewReader(b []byte) *Reader {
	return &Reader{b: b}
}

// Left returns the number of unread bits.
func (self *Reader) Left() int {
	return len(self.b)*8 - self.off
}

func (self *Reader) ReadBits64(n int) (bits uint64, err error) {
	if n < 0 || n > 64 || self.Left() < n {
		err = &pio.BoundsError{Offset: int64(self.off / 8), Want: (n + 7) / 8, Have: self.Left() / 8}
		return
	}
	for i := 0; i < n; i++ {
		c := self.b[self.off/8]
		bit := (c >> uint(7-self.off%8)) & 1
		bits = bits<<1 | uint64(bit)
		self.off++
	}
	return
}

func (self *Reader) ReadBits(n int) (bits uint, err error) {
	var bits64 uint64
	if bits64, err = self.ReadBits64(n); err != nil {
		return
	}
	bits = uint(bits64)
	return
}

func (self *Reader) Skip(n int) (err error) {
	_, err = self.ReadBits64(n)
	return
}
