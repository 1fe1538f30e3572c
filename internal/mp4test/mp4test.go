// Package mp4test builds small ISO base media files for tests.
package mp4test

import (
	"bytes"

	"github.com/tyrese/isobox/utils/bits/pio"
)

// Seconds between 1904-01-01 and 1970-01-01.
const EpochDelta = 2082844800

var Identity = [9]uint32{0x00010000, 0, 0, 0, 0x00010000, 0, 0, 0, 0x40000000}

// Box wraps the concatenated payloads in a compact box header.
func Box(tag string, payload ...[]byte) []byte {
	body := bytes.Join(payload, nil)
	b := make([]byte, 8, 8+len(body))
	pio.PutU32BE(b[0:], uint32(8+len(body)))
	copy(b[4:8], tag)
	return append(b, body...)
}

func Ftyp(major string, minor uint32, compat ...string) []byte {
	b := make([]byte, 8)
	copy(b[0:4], major)
	pio.PutU32BE(b[4:], minor)
	for _, c := range compat {
		b = append(b, c[:4]...)
	}
	return Box("ftyp", b)
}

// Mvhd is a version 0 movie header with unit rate and volume.
func Mvhd(ctime, timescale, duration, nextTrackID uint32) []byte {
	b := make([]byte, 100)
	pio.PutU32BE(b[4:], ctime)
	pio.PutU32BE(b[8:], ctime)
	pio.PutU32BE(b[12:], timescale)
	pio.PutU32BE(b[16:], duration)
	pio.PutU32BE(b[20:], 0x00010000)
	pio.PutU16BE(b[24:], 0x0100)
	n := 36
	for _, m := range Identity {
		pio.PutU32BE(b[n:], m)
		n += 4
	}
	pio.PutU32BE(b[96:], nextTrackID)
	return Box("mvhd", b)
}

// Tkhd is a version 0 track header flagged enabled and in movie.
func Tkhd(trackID, duration, width, height uint32) []byte {
	b := make([]byte, 84)
	pio.PutU24BE(b[1:], 0x03)
	pio.PutU32BE(b[12:], trackID)
	pio.PutU32BE(b[20:], duration)
	pio.PutU16BE(b[36:], 0x0100)
	n := 40
	for _, m := range Identity {
		pio.PutU32BE(b[n:], m)
		n += 4
	}
	pio.PutU32BE(b[76:], width<<16)
	pio.PutU32BE(b[80:], height<<16)
	return Box("tkhd", b)
}

func Mdhd(timescale, duration uint32, lang string) []byte {
	b := make([]byte, 24)
	pio.PutU32BE(b[12:], timescale)
	pio.PutU32BE(b[16:], duration)
	code := uint16(lang[0]-0x60)<<10 | uint16(lang[1]-0x60)<<5 | uint16(lang[2]-0x60)
	pio.PutU16BE(b[20:], code)
	return Box("mdhd", b)
}

func Hdlr(handler, name string) []byte {
	b := make([]byte, 24)
	copy(b[8:12], handler)
	b = append(b, name...)
	return Box("hdlr", append(b, 0))
}

// Track is a trak holding tkhd and mdia{mdhd, hdlr}.
func Track(trackID uint32, handler, lang string, timescale, duration, width, height uint32) []byte {
	return Box("trak",
		Tkhd(trackID, duration, width, height),
		Box("mdia",
			Mdhd(timescale, duration, lang),
			Hdlr(handler, handler+" handler"),
		),
	)
}

// Sample is a two track movie, 10 seconds long, created at Unix time
// 1000000000.
func Sample() []byte {
	return bytes.Join([][]byte{
		Ftyp("isom", 512, "isom", "iso2", "mp41"),
		Box("moov",
			Mvhd(EpochDelta+1000000000, 1000, 10000, 3),
			Track(1, "vide", "und", 90000, 900000, 1280, 720),
			Track(2, "soun", "eng", 48000, 480000, 0, 0),
			Box("udta", Box("free")),
		),
		Box("free"),
		Box("mdat", make([]byte, 32)),
	}, nil)
}
