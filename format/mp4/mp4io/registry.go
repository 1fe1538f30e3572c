package mp4io

import (
	"errors"
	"fmt"
	"sort"

	"github.com/tyrese/isobox/utils/bits/pio"
)

var ErrDuplicateTag = errors.New("mp4io: tag already registered")

// Decoder builds a record from the payload of one box. r starts right
// after the 8 byte header and ends with the box.
type Decoder func(r *pio.Reader, h Header) (Box, error)

// Registry maps box tags to decoders and container layouts. It is not
// safe to register concurrently with Decode; a filled registry may be
// shared freely.
type Registry struct {
	decoders   map[Tag]Decoder
	containers map[Tag]container
}

// PrefixFunc looks at a container payload, without consuming it, and
// returns how many bytes precede the first child.
type PrefixFunc func(payload *pio.Reader) int

type container struct {
	skip   int
	prefix PrefixFunc
}

func NewRegistry() *Registry {
	return &Registry{
		decoders:   map[Tag]Decoder{},
		containers: map[Tag]container{},
	}
}

func (self *Registry) taken(tag Tag) bool {
	_, dec := self.decoders[tag]
	_, cont := self.containers[tag]
	return dec || cont
}

func (self *Registry) Register(tag Tag, dec Decoder) error {
	if dec == nil {
		return fmt.Errorf("mp4io: nil decoder for %s", tag)
	}
	if self.taken(tag) {
		return fmt.Errorf("%w: %s", ErrDuplicateTag, tag)
	}
	self.decoders[tag] = dec
	return nil
}

func (self *Registry) MustRegister(tag Tag, dec Decoder) {
	if err := self.Register(tag, dec); err != nil {
		panic(err)
	}
}

// RegisterContainer marks tag as a box holding child boxes after skip
// bytes of fixed prefix (4 for full-box containers such as meta).
func (self *Registry) RegisterContainer(tag Tag, skip int) error {
	if skip < 0 {
		return fmt.Errorf("mp4io: negative prefix for %s", tag)
	}
	if self.taken(tag) {
		return fmt.Errorf("%w: %s", ErrDuplicateTag, tag)
	}
	self.containers[tag] = container{skip: skip}
	return nil
}

// RegisterContainerFunc is RegisterContainer for boxes whose prefix
// depends on the payload. skip is the usual prefix, reported by
// Container.
func (self *Registry) RegisterContainerFunc(tag Tag, skip int, fn PrefixFunc) error {
	if fn == nil {
		return fmt.Errorf("mp4io: nil prefix func for %s", tag)
	}
	if err := self.RegisterContainer(tag, skip); err != nil {
		return err
	}
	self.containers[tag] = container{skip: skip, prefix: fn}
	return nil
}

// Container reports whether tag is a container and its declared prefix.
func (self *Registry) Container(tag Tag) (skip int, ok bool) {
	var c container
	c, ok = self.containers[tag]
	skip = c.skip
	return
}

// prefix returns the bytes to skip before the first child of payload.
func (self *Registry) prefix(tag Tag, payload *pio.Reader) (skip int, ok bool) {
	var c container
	if c, ok = self.containers[tag]; !ok {
		return
	}
	if c.prefix != nil {
		skip = c.prefix(payload)
		return
	}
	skip = c.skip
	return
}

// metaPrefix tells the ISO meta, a full box with 4 bytes of version and
// flags, from the QuickTime one whose first child hdlr starts right
// away.
func metaPrefix(payload *pio.Reader) int {
	if b, err := payload.Peek(8); err == nil && Tag(pio.U32BE(b[4:8])) == HDLR {
		return 0
	}
	return 4
}

// Decode runs the decoder registered for h.Tag. Unknown tags are not an
// error: they come back as Opaque. Decoder errors are returned as is.
func (self *Registry) Decode(r *pio.Reader, h Header) (Box, error) {
	dec, ok := self.decoders[h.Tag]
	if !ok {
		return &Opaque{Header: h}, nil
	}
	return dec(r, h)
}

// Tags lists leaf and container tags, sorted.
func (self *Registry) Tags() (leaves []Tag, containers []Tag) {
	for tag := range self.decoders {
		leaves = append(leaves, tag)
	}
	for tag := range self.containers {
		containers = append(containers, tag)
	}
	sort.Slice(leaves, func(i, j int) bool { return leaves[i] < leaves[j] })
	sort.Slice(containers, func(i, j int) bool { return containers[i] < containers[j] })
	return
}

// DefaultRegistry returns a new registry with every built-in decoder.
func DefaultRegistry() *Registry {
	self := NewRegistry()
	self.MustRegister(FTYP, decodeFileType)
	self.MustRegister(STYP, decodeFileType)
	self.MustRegister(MVHD, decodeMovieHeader)
	self.MustRegister(TKHD, decodeTrackHeader)
	self.MustRegister(MDHD, decodeMediaHeader)
	self.MustRegister(HDLR, decodeHandlerRef)
	for _, tag := range []Tag{MOOV, TRAK, EDTS, MDIA, MINF, DINF, STBL, MVEX, MOOF, TRAF, UDTA, MFRA} {
		if err := self.RegisterContainer(tag, 0); err != nil {
			panic(err)
		}
	}
	if err := self.RegisterContainerFunc(META, 4, metaPrefix); err != nil {
		panic(err)
	}
	return self
}
