package mp4io

import (
	"fmt"

	"github.com/tyrese/isobox/utils/bits"
	"github.com/tyrese/isobox/utils/bits/pio"
)

const (
	mdhdSizeV0 = 32
	mdhdSizeV1 = 44
)

type MediaHeader struct {
	Header
	Version           uint8   `json:"version"`
	CreationTime      *int64  `json:"creationTime"`
	ModificationTime  *int64  `json:"modificationTime"`
	TimeScale         uint32  `json:"timeScale"`
	Duration          uint64  `json:"duration"`
	DurationInSeconds float64 `json:"durationInSeconds"`
	Language          string  `json:"language"`
}

func (self MediaHeader) String() string {
	return fmt.Sprintf("dur=%d timescale=%d lang=%s", self.Duration, self.TimeScale, self.Language)
}

func decodeMediaHeader(r *pio.Reader, h Header) (box Box, err error) {
	self := &MediaHeader{Header: h}
	if self.Version, err = r.ReadU8(); err != nil {
		return
	}
	var want uint32
	switch self.Version {
	case 0:
		want = mdhdSizeV0
	case 1:
		want = mdhdSizeV1
	default:
		err = fmt.Errorf("%w: mdhd version %d", ErrUnsupportedVersion, self.Version)
		return
	}
	if h.Size != want {
		err = fmt.Errorf("%w: mdhd version %d is %d bytes, box declares %d", ErrSizeMismatch, self.Version, want, h.Size)
		return
	}
	// flags
	if err = r.Discard(3); err != nil {
		return
	}

	if self.Version == 1 {
		var ctime, mtime uint64
		if ctime, err = r.ReadU64BE(); err != nil {
			return
		}
		if mtime, err = r.ReadU64BE(); err != nil {
			return
		}
		self.CreationTime, self.ModificationTime = ToUnixTime64(ctime), ToUnixTime64(mtime)
		if self.TimeScale, err = r.ReadU32BE(); err != nil {
			return
		}
		if self.Duration, err = r.ReadU64BE(); err != nil {
			return
		}
	} else {
		var ctime, mtime, dur uint32
		if ctime, err = r.ReadU32BE(); err != nil {
			return
		}
		if mtime, err = r.ReadU32BE(); err != nil {
			return
		}
		self.CreationTime, self.ModificationTime = ToUnixTime(ctime), ToUnixTime(mtime)
		if self.TimeScale, err = r.ReadU32BE(); err != nil {
			return
		}
		if dur, err = r.ReadU32BE(); err != nil {
			return
		}
		self.Duration = uint64(dur)
	}
	self.DurationInSeconds = float64(self.Duration) / float64(self.TimeScale)

	var lang []byte
	if lang, err = r.ReadBytes(2); err != nil {
		return
	}
	if self.Language, err = decodeLanguage(lang); err != nil {
		return
	}
	// pre_defined
	if err = r.Discard(2); err != nil {
		return
	}
	box = self
	return
}

// decodeLanguage unpacks an ISO-639-2/T code: one pad bit, then three
// 5-bit letters offset from 0x60.
func decodeLanguage(b []byte) (lang string, err error) {
	br := bits.NewReader(b)
	if err = br.Skip(1); err != nil {
		return
	}
	var code [3]byte
	for i := range code {
		var c uint
		if c, err = br.ReadBits(5); err != nil {
			return
		}
		code[i] = byte(c) + 0x60
	}
	lang = string(code[:])
	return
}
