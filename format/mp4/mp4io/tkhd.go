package mp4io

import (
	"fmt"

	"github.com/tyrese/isobox/utils/bits/pio"
)

const (
	tkhdSizeV0 = 92
	tkhdSizeV1 = 104
)

const (
	TKHD_ENABLED    = 0x01
	TKHD_IN_MOVIE   = 0x02
	TKHD_IN_PREVIEW = 0x04
)

type TrackHeader struct {
	Header
	Version          uint8      `json:"version"`
	Flags            uint32     `json:"flags"`
	CreationTime     *int64     `json:"creationTime"`
	ModificationTime *int64     `json:"modificationTime"`
	TrackID          uint32     `json:"trackId"`
	Duration         uint64     `json:"duration"`
	Layer            int16      `json:"layer"`
	AlternateGroup   int16      `json:"alternateGroup"`
	Volume           float64    `json:"volume"`
	Matrix           [9]float64 `json:"matrix"`
	Width            float64    `json:"width"`
	Height           float64    `json:"height"`
}

func (self TrackHeader) Enabled() bool {
	return self.Flags&TKHD_ENABLED != 0
}

func (self TrackHeader) String() string {
	return fmt.Sprintf("track=%d dur=%d %gx%g", self.TrackID, self.Duration, self.Width, self.Height)
}

func decodeTrackHeader(r *pio.Reader, h Header) (box Box, err error) {
	self := &TrackHeader{Header: h}
	if self.Version, err = r.ReadU8(); err != nil {
		return
	}
	var want uint32
	switch self.Version {
	case 0:
		want = tkhdSizeV0
	case 1:
		want = tkhdSizeV1
	default:
		err = fmt.Errorf("%w: tkhd version %d", ErrUnsupportedVersion, self.Version)
		return
	}
	if h.Size != want {
		err = fmt.Errorf("%w: tkhd version %d is %d bytes, box declares %d", ErrSizeMismatch, self.Version, want, h.Size)
		return
	}
	if self.Flags, err = r.ReadU24BE(); err != nil {
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
	} else {
		var ctime, mtime uint32
		if ctime, err = r.ReadU32BE(); err != nil {
			return
		}
		if mtime, err = r.ReadU32BE(); err != nil {
			return
		}
		self.CreationTime, self.ModificationTime = ToUnixTime(ctime), ToUnixTime(mtime)
	}

	if self.TrackID, err = r.ReadU32BE(); err != nil {
		return
	}
	// reserved
	if err = r.Discard(4); err != nil {
		return
	}
	if self.Version == 1 {
		if self.Duration, err = r.ReadU64BE(); err != nil {
			return
		}
	} else {
		var dur uint32
		if dur, err = r.ReadU32BE(); err != nil {
			return
		}
		self.Duration = uint64(dur)
	}
	// reserved
	if err = r.Discard(8); err != nil {
		return
	}
	if self.Layer, err = r.ReadI16BE(); err != nil {
		return
	}
	if self.AlternateGroup, err = r.ReadI16BE(); err != nil {
		return
	}
	if self.Volume, err = readFixed8_8(r); err != nil {
		return
	}
	// reserved
	if err = r.Discard(2); err != nil {
		return
	}
	if self.Matrix, err = readMatrix(r); err != nil {
		return
	}
	if self.Width, err = r.ReadFixed16_16(); err != nil {
		return
	}
	if self.Height, err = r.ReadFixed16_16(); err != nil {
		return
	}
	box = self
	return
}
