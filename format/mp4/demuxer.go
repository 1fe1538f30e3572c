package mp4

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tyrese/isobox/format/mp4/mp4io"
)

var ErrNoMovie = errors.New("mp4: 'moov' atom not found")

// Info summarizes the movie level boxes of a file.
type Info struct {
	Brand            string        `json:"brand,omitempty" yaml:"brand,omitempty"`
	CompatibleBrands []string      `json:"compatibleBrands,omitempty" yaml:"compatibleBrands,omitempty"`
	TimeScale        uint32        `json:"timeScale" yaml:"timeScale"`
	Duration         time.Duration `json:"duration" yaml:"duration"`
	Created          *time.Time    `json:"created,omitempty" yaml:"created,omitempty"`
	Modified         *time.Time    `json:"modified,omitempty" yaml:"modified,omitempty"`
	Rate             float64       `json:"rate" yaml:"rate"`
	Volume           float64       `json:"volume" yaml:"volume"`
	NextTrackID      uint32        `json:"nextTrackId" yaml:"nextTrackId"`
	Fragmented       bool          `json:"fragmented" yaml:"fragmented"`
	Streams          []Stream      `json:"streams" yaml:"streams"`
}

type Demuxer struct {
	r      io.ReadSeeker
	walker *mp4io.Walker
	forest *mp4io.Forest
	info   *Info
}

func NewDemuxer(r io.ReadSeeker, opts ...mp4io.Option) *Demuxer {
	return &Demuxer{
		r:      r,
		walker: mp4io.NewWalker(opts...),
	}
}

// Open reads the whole file at path into memory.
func Open(path string, opts ...mp4io.Option) (demuxer *Demuxer, err error) {
	var f *os.File
	if f, err = os.Open(path); err != nil {
		return
	}
	defer f.Close()

	demuxer = NewDemuxer(f, opts...)
	if err = demuxer.probe(); err != nil {
		demuxer = nil
	}
	return
}

func (self *Demuxer) probe() (err error) {
	if self.forest != nil {
		return
	}

	if _, err = self.r.Seek(0, io.SeekStart); err != nil {
		return
	}
	var b []byte
	if b, err = io.ReadAll(self.r); err != nil {
		return
	}

	var forest *mp4io.Forest
	if forest, err = self.walker.Walk(b); err != nil {
		return
	}
	self.forest = forest
	return
}

// Forest returns every box of the file.
func (self *Demuxer) Forest() (forest *mp4io.Forest, err error) {
	if err = self.probe(); err != nil {
		return
	}
	forest = self.forest
	return
}

func (self *Demuxer) Streams() (streams []Stream, err error) {
	var info *Info
	if info, err = self.Info(); err != nil {
		return
	}
	streams = info.Streams
	return
}

func (self *Demuxer) Info() (info *Info, err error) {
	if self.info != nil {
		info = self.info
		return
	}
	if err = self.probe(); err != nil {
		return
	}
	if info, err = NewInfo(self.forest); err != nil {
		return
	}
	self.info = info
	return
}

// NewInfo collects the movie summary from an already walked forest.
func NewInfo(forest *mp4io.Forest) (info *Info, err error) {
	moov := -1
	info = &Info{}

	for _, root := range forest.Roots {
		switch box := forest.Nodes[root].Box.(type) {
		case *mp4io.FileType:
			if info.Brand == "" {
				info.Brand = box.MajorBrand.String()
				for _, brand := range box.CompatibleBrands {
					info.CompatibleBrands = append(info.CompatibleBrands, brand.String())
				}
			}
		}
		switch forest.Nodes[root].Box.Head().Tag {
		case mp4io.MOOV:
			if moov < 0 {
				moov = root
			}
		case mp4io.MOOF:
			info.Fragmented = true
		}
	}

	if moov < 0 {
		info = nil
		err = ErrNoMovie
		return
	}

	i := forest.FindChild(moov, mp4io.MVHD)
	if i < 0 {
		info = nil
		err = fmt.Errorf("%w: no mvhd in moov", ErrNoMovie)
		return
	}
	mvhd, ok := forest.Nodes[i].Box.(*mp4io.MovieHeader)
	if !ok {
		info = nil
		err = fmt.Errorf("%w: mvhd at offset %d was not decoded", ErrNoMovie, forest.Nodes[i].Box.Head().Offset)
		return
	}
	info.TimeScale = mvhd.TimeScale
	info.Duration = tsToTime(uint64(mvhd.DurationInUnits), mvhd.TimeScale)
	info.Created = toTime(mvhd.CreationTime)
	info.Modified = toTime(mvhd.ModificationTime)
	info.Rate = mvhd.Rate
	info.Volume = mvhd.Volume
	info.NextTrackID = mvhd.NextTrackID

	for _, child := range forest.Nodes[moov].Children {
		if forest.Nodes[child].Box.Head().Tag == mp4io.TRAK {
			info.Streams = append(info.Streams, newStream(forest, child, len(info.Streams)))
		}
	}
	if info.Streams == nil {
		info.Streams = []Stream{}
	}
	return
}

func toTime(sec *int64) *time.Time {
	if t, ok := mp4io.UnixTime(sec); ok {
		return &t
	}
	return nil
}
