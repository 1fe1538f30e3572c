package mp4io

import (
	"bytes"
	"fmt"

	"github.com/tyrese/isobox/utils/bits/pio"
)

var (
	HandlerVideo = StringToTag("vide")
	HandlerSound = StringToTag("soun")
	HandlerHint  = StringToTag("hint")
	HandlerMeta  = StringToTag("meta")
	HandlerText  = StringToTag("text")
)

type HandlerRef struct {
	Header
	HandlerType Tag    `json:"handlerType"`
	Name        string `json:"name"`
}

func (self HandlerRef) String() string {
	return fmt.Sprintf("handler=%s name=%q", self.HandlerType, self.Name)
}

func decodeHandlerRef(r *pio.Reader, h Header) (box Box, err error) {
	var version uint8
	if version, err = r.ReadU8(); err != nil {
		return
	}
	if version != 0 {
		err = fmt.Errorf("%w: hdlr version %d", ErrUnsupportedVersion, version)
		return
	}
	// flags, pre_defined
	if err = r.Discard(3 + 4); err != nil {
		return
	}
	self := &HandlerRef{Header: h}
	var u uint32
	if u, err = r.ReadU32BE(); err != nil {
		return
	}
	self.HandlerType = Tag(u)
	// reserved
	if err = r.Discard(4 * 3); err != nil {
		return
	}
	var name []byte
	if name, err = r.ReadBytes(r.Len()); err != nil {
		return
	}
	self.Name = handlerName(name)
	box = self
	return
}

// handlerName accepts both the NUL terminated ISO form and the counted
// QuickTime form.
func handlerName(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		if i > 0 && int(b[0]) == i-1 {
			return string(b[1:i])
		}
		return string(b[:i])
	}
	if len(b) > 0 && int(b[0]) == len(b)-1 {
		return string(b[1:])
	}
	return string(b)
}
