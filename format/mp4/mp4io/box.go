package mp4io

import (
	"fmt"
)

type Kind uint8

const (
	KindOpaque Kind = iota
	KindContainer
	KindFileType
	KindMovieHeader
	KindTrackHeader
	KindMediaHeader
	KindHandler
)

var kindNames = [...]string{
	KindOpaque:      "opaque",
	KindContainer:   "container",
	KindFileType:    "file-type",
	KindMovieHeader: "movie-header",
	KindTrackHeader: "track-header",
	KindMediaHeader: "media-header",
	KindHandler:     "handler",
}

func (self Kind) String() string {
	if int(self) < len(kindNames) {
		return kindNames[self]
	}
	return fmt.Sprintf("kind(%d)", uint8(self))
}

func (self Kind) MarshalText() ([]byte, error) {
	return []byte(self.String()), nil
}

// Header is the part every box shares. Size is the declared size
// including the 8 byte header, Offset the absolute position of the size
// field.
type Header struct {
	Tag    Tag    `json:"type"`
	Size   uint32 `json:"size"`
	Offset int64  `json:"offset"`
}

func (self Header) Head() Header {
	return self
}

// Box is one decoded record. The set of implementations is closed: the
// concrete types below, switched on with Kind or a type switch.
type Box interface {
	Head() Header
	Kind() Kind
	box()
}

// Opaque is any box without a registered decoder.
type Opaque struct {
	Header
}

func (Opaque) Kind() Kind { return KindOpaque }
func (Opaque) box()       {}

// Container holds children; they live in the Forest, not in the record.
type Container struct {
	Header
}

func (Container) Kind() Kind { return KindContainer }
func (Container) box()       {}

func (MovieHeader) Kind() Kind { return KindMovieHeader }
func (MovieHeader) box()       {}

func (TrackHeader) Kind() Kind { return KindTrackHeader }
func (TrackHeader) box()       {}

func (MediaHeader) Kind() Kind { return KindMediaHeader }
func (MediaHeader) box()       {}

func (FileType) Kind() Kind { return KindFileType }
func (FileType) box()       {}

func (HandlerRef) Kind() Kind { return KindHandler }
func (HandlerRef) box()       {}
