package mp4io

import (
	"fmt"
	"strings"

	"github.com/tyrese/isobox/utils/bits/pio"
)

// FileType is an ftyp or styp box.
type FileType struct {
	Header
	MajorBrand       Tag    `json:"majorBrand"`
	MinorVersion     uint32 `json:"minorVersion"`
	CompatibleBrands []Tag  `json:"compatibleBrands"`
}

func (self FileType) String() string {
	brands := make([]string, len(self.CompatibleBrands))
	for i, b := range self.CompatibleBrands {
		brands[i] = b.String()
	}
	return fmt.Sprintf("brand=%s minor=%d compat=%s", self.MajorBrand, self.MinorVersion, strings.Join(brands, ","))
}

func decodeFileType(r *pio.Reader, h Header) (box Box, err error) {
	self := &FileType{Header: h}
	var u uint32
	if u, err = r.ReadU32BE(); err != nil {
		return
	}
	self.MajorBrand = Tag(u)
	if self.MinorVersion, err = r.ReadU32BE(); err != nil {
		return
	}
	if r.Len()%4 != 0 {
		err = fmt.Errorf("%w: %s brand list of %d bytes", ErrSizeMismatch, h.Tag, r.Len())
		return
	}
	for r.Len() > 0 {
		if u, err = r.ReadU32BE(); err != nil {
			return
		}
		self.CompatibleBrands = append(self.CompatibleBrands, Tag(u))
	}
	box = self
	return
}
