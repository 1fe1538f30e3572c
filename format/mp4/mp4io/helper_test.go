package mp4io

import (
	"github.com/tyrese/isobox/utils/bits/pio"
)

func mkbox(tag string, payload ...[]byte) []byte {
	n := 8
	for _, p := range payload {
		n += len(p)
	}
	b := make([]byte, 8, n)
	pio.PutU32BE(b[0:], uint32(n))
	copy(b[4:8], tag)
	for _, p := range payload {
		b = append(b, p...)
	}
	return b
}

type mvhdFields struct {
	version     uint8
	ctime       uint32
	mtime       uint32
	timescale   uint32
	duration    uint32
	rate        [4]byte
	volume      [2]byte
	matrix      [9]uint32
	nextTrackID uint32
}

var identity = [9]uint32{0x00010000, 0, 0, 0, 0x00010000, 0, 0, 0, 0x40000000}

func defaultMvhd() mvhdFields {
	return mvhdFields{
		timescale:   1000,
		duration:    5000,
		rate:        [4]byte{0, 1, 0, 0},
		volume:      [2]byte{1, 0},
		matrix:      identity,
		nextTrackID: 2,
	}
}

// payload is the 100 bytes following the mvhd header.
func (self mvhdFields) payload() []byte {
	b := make([]byte, 100)
	n := 0
	b[n] = self.version
	n += 4
	pio.PutU32BE(b[n:], self.ctime)
	n += 4
	pio.PutU32BE(b[n:], self.mtime)
	n += 4
	pio.PutU32BE(b[n:], self.timescale)
	n += 4
	pio.PutU32BE(b[n:], self.duration)
	n += 4
	copy(b[n:], self.rate[:])
	n += 4
	copy(b[n:], self.volume[:])
	n += 2
	n += 10
	for _, m := range self.matrix {
		pio.PutU32BE(b[n:], m)
		n += 4
	}
	n += 24
	pio.PutU32BE(b[n:], self.nextTrackID)
	return b
}

func (self mvhdFields) box() []byte {
	return mkbox("mvhd", self.payload())
}

func tkhdPayload(version uint8, trackID uint32, duration uint64, width, height uint32) []byte {
	var b []byte
	if version == 1 {
		b = make([]byte, 96)
	} else {
		b = make([]byte, 84)
	}
	n := 0
	b[n] = version
	pio.PutU24BE(b[n+1:], TKHD_ENABLED|TKHD_IN_MOVIE)
	n += 4
	if version == 1 {
		pio.PutU64BE(b[n:], epochDelta+10)
		n += 16
	} else {
		pio.PutU32BE(b[n:], epochDelta+10)
		n += 8
	}
	pio.PutU32BE(b[n:], trackID)
	n += 8
	if version == 1 {
		pio.PutU64BE(b[n:], duration)
		n += 8
	} else {
		pio.PutU32BE(b[n:], uint32(duration))
		n += 4
	}
	n += 8
	pio.PutI16BE(b[n:], 0)
	n += 2
	pio.PutI16BE(b[n:], 1)
	n += 2
	pio.PutU16BE(b[n:], 0x0100)
	n += 4
	for _, m := range identity {
		pio.PutU32BE(b[n:], m)
		n += 4
	}
	pio.PutU32BE(b[n:], width<<16)
	n += 4
	pio.PutU32BE(b[n:], height<<16)
	return b
}

func mdhdPayload(timescale uint32, duration uint32, lang string) []byte {
	b := make([]byte, 24)
	n := 4
	pio.PutU32BE(b[n:], 0)
	n += 8
	pio.PutU32BE(b[n:], timescale)
	n += 4
	pio.PutU32BE(b[n:], duration)
	n += 4
	code := uint16(lang[0]-0x60)<<10 | uint16(lang[1]-0x60)<<5 | uint16(lang[2]-0x60)
	pio.PutU16BE(b[n:], code)
	return b
}

func hdlrPayload(handler string, name string) []byte {
	b := make([]byte, 24)
	copy(b[8:12], handler)
	b = append(b, name...)
	return append(b, 0)
}
