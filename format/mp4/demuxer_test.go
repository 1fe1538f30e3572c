package mp4

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tyrese/isobox/format/mp4/mp4io"
	"github.com/tyrese/isobox/internal/mp4test"
)

func TestProbe(t *testing.T) {
	assert.True(t, Probe(mp4test.Sample()))
	assert.True(t, Probe(mp4test.Box("moof")))
	assert.False(t, Probe([]byte("RIFF\x00\x00\x00\x00WAVE")))
	assert.False(t, Probe([]byte{0, 0, 0}))
	assert.Equal(t, ".mp4", Ext)
}

func TestDemuxerInfo(t *testing.T) {
	demuxer := NewDemuxer(bytes.NewReader(mp4test.Sample()))
	info, err := demuxer.Info()
	require.NoError(t, err)

	assert.Equal(t, "isom", info.Brand)
	assert.Equal(t, []string{"isom", "iso2", "mp41"}, info.CompatibleBrands)
	assert.Equal(t, uint32(1000), info.TimeScale)
	assert.Equal(t, 10*time.Second, info.Duration)
	require.NotNil(t, info.Created)
	assert.Equal(t, time.Unix(1000000000, 0).UTC(), *info.Created)
	assert.Equal(t, 1.0, info.Rate)
	assert.Equal(t, 1.0, info.Volume)
	assert.Equal(t, uint32(3), info.NextTrackID)
	assert.False(t, info.Fragmented)

	require.Len(t, info.Streams, 2)
	video, audio := info.Streams[0], info.Streams[1]

	assert.Equal(t, 0, video.Idx)
	assert.Equal(t, uint32(1), video.TrackID)
	assert.True(t, video.Enabled)
	assert.True(t, video.IsVideo())
	assert.Equal(t, "vide handler", video.HandlerName)
	assert.Equal(t, uint32(90000), video.TimeScale)
	assert.Equal(t, 10*time.Second, video.Duration)
	assert.Equal(t, 1280.0, video.Width)
	assert.Equal(t, 720.0, video.Height)
	assert.Equal(t, "und", video.Language)

	assert.True(t, audio.IsAudio())
	assert.Equal(t, "eng", audio.Language)
	assert.Equal(t, 0.0, audio.Width)

	forest, err := demuxer.Forest()
	require.NoError(t, err)
	assert.Equal(t, "moov/trak", forest.PathString(audio.Node()))

	// cached
	again, err := demuxer.Info()
	require.NoError(t, err)
	assert.Same(t, info, again)

	streams, err := demuxer.Streams()
	require.NoError(t, err)
	assert.Equal(t, info.Streams, streams)
}

func TestDemuxerNoMovie(t *testing.T) {
	b := append(mp4test.Ftyp("isom", 0), mp4test.Box("mdat", make([]byte, 4))...)
	_, err := NewDemuxer(bytes.NewReader(b)).Info()
	assert.ErrorIs(t, err, ErrNoMovie)

	b = mp4test.Box("moov", mp4test.Box("free"))
	_, err = NewDemuxer(bytes.NewReader(b)).Info()
	assert.ErrorIs(t, err, ErrNoMovie)
}

// A registry that only knows the containers leaves every leaf opaque.
func TestDemuxerContainersOnlyRegistry(t *testing.T) {
	reg := mp4io.NewRegistry()
	for _, tag := range []mp4io.Tag{mp4io.MOOV, mp4io.TRAK, mp4io.MDIA} {
		require.NoError(t, reg.RegisterContainer(tag, 0))
	}

	demuxer := NewDemuxer(bytes.NewReader(mp4test.Sample()), mp4io.WithRegistry(reg))
	var err error
	assert.NotPanics(t, func() { _, err = demuxer.Info() })
	assert.ErrorIs(t, err, ErrNoMovie)
	assert.Contains(t, err.Error(), "not decoded")

	forest, err := demuxer.Forest()
	require.NoError(t, err)
	traks := forest.Find(mp4io.TRAK)
	require.Len(t, traks, 2)

	var stream Stream
	assert.NotPanics(t, func() { stream = newStream(forest, traks[0], 0) })
	assert.Equal(t, uint32(0), stream.TrackID)
	assert.Equal(t, "", stream.Handler)
	assert.Equal(t, time.Duration(0), stream.Duration)
	assert.Equal(t, traks[0], stream.Node())
}

func TestDemuxerFragmented(t *testing.T) {
	b := append(mp4test.Sample(), mp4test.Box("moof", mp4test.Box("traf"))...)
	info, err := NewDemuxer(bytes.NewReader(b)).Info()
	require.NoError(t, err)
	assert.True(t, info.Fragmented)
}

func TestDemuxerMalformed(t *testing.T) {
	b := mp4test.Box("moov", mp4test.Box("mvhd", []byte{1, 0, 0, 0}))
	_, err := NewDemuxer(bytes.NewReader(b)).Info()
	assert.ErrorIs(t, err, mp4io.ErrUnsupportedVersion)

	demuxer := NewDemuxer(bytes.NewReader(mp4test.Sample()), mp4io.WithMaxDepth(2))
	_, err = demuxer.Forest()
	assert.ErrorIs(t, err, mp4io.ErrTooDeep)
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.mp4")
	require.NoError(t, os.WriteFile(path, mp4test.Sample(), 0o644))

	demuxer, err := Open(path)
	require.NoError(t, err)
	info, err := demuxer.Info()
	require.NoError(t, err)
	assert.Len(t, info.Streams, 2)

	_, err = Open(filepath.Join(t.TempDir(), "missing.mp4"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestTsToTime(t *testing.T) {
	assert.Equal(t, time.Duration(0), tsToTime(100, 0))
	assert.Equal(t, 1500*time.Millisecond, tsToTime(3, 2))
	assert.Equal(t, 5*time.Second, tsToTime(450000, 90000))
}
