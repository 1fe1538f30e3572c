package mp4

import (
	"time"

	"github.com/tyrese/isobox/format/mp4/mp4io"
)

// Stream describes one trak of the movie.
type Stream struct {
	Idx         int           `json:"index" yaml:"index"`
	TrackID     uint32        `json:"trackId" yaml:"trackId"`
	Enabled     bool          `json:"enabled" yaml:"enabled"`
	Handler     string        `json:"handler,omitempty" yaml:"handler,omitempty"`
	HandlerName string        `json:"handlerName,omitempty" yaml:"handlerName,omitempty"`
	TimeScale   uint32        `json:"timeScale" yaml:"timeScale"`
	Duration    time.Duration `json:"duration" yaml:"duration"`
	Width       float64       `json:"width,omitempty" yaml:"width,omitempty"`
	Height      float64       `json:"height,omitempty" yaml:"height,omitempty"`
	Language    string        `json:"language,omitempty" yaml:"language,omitempty"`

	node int
}

func (self Stream) IsVideo() bool {
	return self.Handler == mp4io.HandlerVideo.String()
}

func (self Stream) IsAudio() bool {
	return self.Handler == mp4io.HandlerSound.String()
}

// Node is the index of the trak box in the forest the stream came from.
func (self Stream) Node() int {
	return self.node
}

func tsToTime(ts uint64, timeScale uint32) time.Duration {
	if timeScale == 0 {
		return 0
	}
	sec := ts / uint64(timeScale)
	rem := ts % uint64(timeScale)
	return time.Duration(sec)*time.Second + time.Duration(rem)*time.Second/time.Duration(timeScale)
}

// childBox finds the first tag box under idx that was decoded as T.
// Boxes left opaque by the registry are ignored.
func childBox[T mp4io.Box](forest *mp4io.Forest, idx int, tag mp4io.Tag) (box T, ok bool) {
	i := forest.FindChild(idx, tag)
	if i < 0 {
		return
	}
	box, ok = forest.Nodes[i].Box.(T)
	return
}

func newStream(forest *mp4io.Forest, trak int, idx int) (stream Stream) {
	stream.Idx = idx
	stream.node = trak

	if tkhd, ok := childBox[*mp4io.TrackHeader](forest, trak, mp4io.TKHD); ok {
		stream.TrackID = tkhd.TrackID
		stream.Enabled = tkhd.Enabled()
		stream.Width = tkhd.Width
		stream.Height = tkhd.Height
	}
	if mdhd, ok := childBox[*mp4io.MediaHeader](forest, trak, mp4io.MDHD); ok {
		stream.TimeScale = mdhd.TimeScale
		stream.Duration = tsToTime(mdhd.Duration, mdhd.TimeScale)
		stream.Language = mdhd.Language
	}
	if hdlr, ok := childBox[*mp4io.HandlerRef](forest, trak, mp4io.HDLR); ok {
		stream.Handler = hdlr.HandlerType.String()
		stream.HandlerName = hdlr.Name
	}
	return
}
