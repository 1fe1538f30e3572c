package mp4

import (
	"bytes"
	"testing"

	mp4ff "github.com/Eyevinn/mp4ff/mp4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tyrese/isobox/internal/mp4test"
)

// Info must agree with what mp4ff reads from the same bytes.
func TestInfoAgreesWithMp4ff(t *testing.T) {
	b := mp4test.Sample()

	ref, err := mp4ff.DecodeFile(bytes.NewReader(b))
	require.NoError(t, err)
	require.NotNil(t, ref.Moov)

	info, err := NewDemuxer(bytes.NewReader(b)).Info()
	require.NoError(t, err)

	assert.Equal(t, ref.Moov.Mvhd.Timescale, info.TimeScale)
	assert.Equal(t, ref.Moov.Mvhd.NextTrackID, info.NextTrackID)
	require.Len(t, info.Streams, len(ref.Moov.Traks))
	for i, trak := range ref.Moov.Traks {
		stream := info.Streams[i]
		assert.Equal(t, trak.Tkhd.TrackID, stream.TrackID)
		assert.Equal(t, trak.Mdia.Mdhd.Timescale, stream.TimeScale)
		assert.Equal(t, trak.Mdia.Hdlr.HandlerType, stream.Handler)
	}
}
