package mp4io

import (
	"fmt"

	"github.com/tyrese/isobox/utils/bits/pio"
)

const mvhdSizeV0 = 108

// MovieHeader is a version 0 mvhd box.
type MovieHeader struct {
	Header
	DurationInUnits   uint32     `json:"durationInUnits"`
	DurationInSeconds float64    `json:"durationInSeconds"`
	CreationTime      *int64     `json:"creationTime"`
	ModificationTime  *int64     `json:"modificationTime"`
	TimeScale         uint32     `json:"timeScale"`
	Rate              float64    `json:"rate"`
	Volume            float64    `json:"volume"`
	Matrix            [9]float64 `json:"matrix"`
	NextTrackID       uint32     `json:"nextTrackId"`
}

func (self MovieHeader) String() string {
	return fmt.Sprintf("dur=%d timescale=%d next_track=%d", self.DurationInUnits, self.TimeScale, self.NextTrackID)
}

// decodeMovieHeader reads the payload of a version 0 mvhd. Versions
// other than 0 carry 64-bit times and are rejected.
func decodeMovieHeader(r *pio.Reader, h Header) (box Box, err error) {
	var version uint8
	if version, err = r.ReadU8(); err != nil {
		return
	}
	if version != 0 {
		err = fmt.Errorf("%w: mvhd version %d", ErrUnsupportedVersion, version)
		return
	}
	if h.Size != mvhdSizeV0 {
		err = fmt.Errorf("%w: mvhd version 0 is %d bytes, box declares %d", ErrSizeMismatch, mvhdSizeV0, h.Size)
		return
	}

	// flags
	if err = r.Discard(3); err != nil {
		return
	}

	self := &MovieHeader{Header: Header{Tag: MVHD, Size: h.Size, Offset: h.Offset}}

	var ctime, mtime uint32
	if ctime, err = r.ReadU32BE(); err != nil {
		return
	}
	if mtime, err = r.ReadU32BE(); err != nil {
		return
	}
	self.CreationTime = ToUnixTime(ctime)
	self.ModificationTime = ToUnixTime(mtime)

	if self.TimeScale, err = r.ReadU32BE(); err != nil {
		return
	}
	if self.DurationInUnits, err = r.ReadU32BE(); err != nil {
		return
	}
	self.DurationInSeconds = float64(self.DurationInUnits) / float64(self.TimeScale)

	if self.Rate, err = readWeighted(r, 10, 1, 0.1, 0.01); err != nil {
		return
	}
	if self.Volume, err = readWeighted(r, 1, 0.1); err != nil {
		return
	}

	// reserved 16 bit, then 2 x reserved 32 bit
	if err = r.Discard(2); err != nil {
		return
	}
	if err = r.Discard(4); err != nil {
		return
	}
	if err = r.Discard(4); err != nil {
		return
	}

	if self.Matrix, err = readMatrix(r); err != nil {
		return
	}

	// pre_defined
	if err = r.Discard(4 * 6); err != nil {
		return
	}

	if self.NextTrackID, err = r.ReadU32BE(); err != nil {
		return
	}

	box = self
	return
}
