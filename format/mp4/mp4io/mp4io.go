package mp4io

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tyrese/isobox/utils/bits/pio"
)

var (
	ErrOutOfBounds        = pio.ErrOutOfBounds
	ErrUnsupportedVersion = errors.New("unsupported version")
	ErrSizeMismatch       = errors.New("size mismatch")
	ErrLargeSize          = errors.New("64-bit box size not supported")
	ErrTooDeep            = errors.New("box nesting too deep")
)

// ParseError reports the box that stopped a walk. Path holds the
// enclosing containers, outermost first.
type ParseError struct {
	Header
	Path []Header
	// Truncated is set when the box header itself could not be read.
	// Only Offset is meaningful then.
	Truncated bool
	Err       error
}

func (self *ParseError) Error() string {
	s := []string{}
	for _, h := range self.Path {
		s = append(s, fmt.Sprintf("%s@%d", h.Tag, h.Offset))
	}
	if self.Truncated {
		s = append(s, fmt.Sprintf("header@%d", self.Offset))
	} else {
		s = append(s, fmt.Sprintf("%s@%d size=%d", self.Tag, self.Offset, self.Size))
	}
	return "mp4io: parse error: " + strings.Join(s, " > ") + ": " + self.Err.Error()
}

func (self *ParseError) Unwrap() error {
	return self.Err
}

type Tag uint32

func (self Tag) String() string {
	var b [4]byte
	pio.PutU32BE(b[:], uint32(self))
	for i := 0; i < 4; i++ {
		if b[i] < 0x20 || b[i] > 0x7e {
			b[i] = ' '
		}
	}
	return string(b[:])
}

func (self Tag) MarshalText() ([]byte, error) {
	return []byte(self.String()), nil
}

func StringToTag(tag string) Tag {
	var b [4]byte
	copy(b[:], []byte(tag))
	return Tag(pio.U32BE(b[:]))
}

// ParseTag is StringToTag for user input: the tag must be exactly four
// bytes.
func ParseTag(tag string) (Tag, error) {
	if len(tag) != 4 {
		return 0, fmt.Errorf("mp4io: tag %q must be 4 bytes", tag)
	}
	return StringToTag(tag), nil
}

const (
	FTYP = Tag(0x66747970)
	STYP = Tag(0x73747970)
	MOOV = Tag(0x6d6f6f76)
	MVHD = Tag(0x6d766864)
	TRAK = Tag(0x7472616b)
	TKHD = Tag(0x746b6864)
	EDTS = Tag(0x65647473)
	MDIA = Tag(0x6d646961)
	MDHD = Tag(0x6d646864)
	HDLR = Tag(0x68646c72)
	MINF = Tag(0x6d696e66)
	DINF = Tag(0x64696e66)
	STBL = Tag(0x7374626c)
	MVEX = Tag(0x6d766578)
	MOOF = Tag(0x6d6f6f66)
	TRAF = Tag(0x74726166)
	UDTA = Tag(0x75647461)
	META = Tag(0x6d657461)
	MFRA = Tag(0x6d667261)
	MDAT = Tag(0x6d646174)
	FREE = Tag(0x66726565)
	SKIP = Tag(0x736b6970)
)
