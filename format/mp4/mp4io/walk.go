package mp4io

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/tyrese/isobox/utils/bits/pio"
)

const DefaultMaxDepth = 32

type Walker struct {
	registry *Registry
	maxDepth int
	logger   *zap.Logger
}

type Option func(*Walker)

func WithRegistry(reg *Registry) Option {
	return func(w *Walker) {
		w.registry = reg
	}
}

// WithMaxDepth bounds nesting: a box at depth >= n fails with
// ErrTooDeep. Top level boxes have depth 0.
func WithMaxDepth(n int) Option {
	return func(w *Walker) {
		w.maxDepth = n
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(w *Walker) {
		w.logger = logger
	}
}

func NewWalker(opts ...Option) *Walker {
	w := &Walker{
		maxDepth: DefaultMaxDepth,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.registry == nil {
		w.registry = DefaultRegistry()
	}
	if w.maxDepth <= 0 {
		w.maxDepth = DefaultMaxDepth
	}
	return w
}

// ReadForest walks b with the default registry.
func ReadForest(b []byte) (*Forest, error) {
	return NewWalker().Walk(b)
}

func (self *Walker) Walk(b []byte) (*Forest, error) {
	return self.WalkAt(b, 0)
}

type scope struct {
	r      *pio.Reader
	parent int
	depth  int
}

// WalkAt walks b, a buffer whose first byte sits at absolute offset base.
// It stops at the first box that cannot be decoded: unknown tags become
// Opaque records, but a known box that fails to decode aborts the walk.
func (self *Walker) WalkAt(b []byte, base int64) (forest *Forest, err error) {
	forest = &Forest{}
	stack := []scope{{r: pio.NewReader(b, base), parent: -1}}

	abort := func(perr *ParseError) (*Forest, error) {
		for _, s := range stack[1:] {
			perr.Path = append(perr.Path, forest.Nodes[s.parent].Box.Head())
		}
		for i := len(stack) - 1; i >= 0; i-- {
			stack[i].r.Release()
		}
		self.logger.Debug("walk aborted", zap.Error(perr))
		return nil, perr
	}
	fail := func(h Header, cause error) (*Forest, error) {
		return abort(&ParseError{Header: h, Err: cause})
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.r.Len() == 0 {
			stack = stack[:len(stack)-1]
			if err = top.r.Close(); err != nil {
				return fail(Header{Offset: top.r.Pos()}, err)
			}
			continue
		}

		var h Header
		if h, err = readHeader(top.r); err != nil {
			if errors.Is(err, ErrOutOfBounds) {
				return abort(&ParseError{Header: Header{Offset: h.Offset}, Truncated: true, Err: err})
			}
			return fail(h, err)
		}
		if top.depth >= self.maxDepth {
			return fail(h, ErrTooDeep)
		}

		var payload *pio.Reader
		if payload, err = top.r.Slice(int(h.Size) - 8); err != nil {
			return fail(h, err)
		}

		if skip, ok := self.registry.prefix(h.Tag, payload); ok {
			if err = payload.Discard(skip); err != nil {
				payload.Release()
				return fail(h, err)
			}
			idx := forest.add(&Container{Header: h}, top.parent, top.depth)
			stack = append(stack, scope{r: payload, parent: idx, depth: top.depth + 1})
			continue
		}

		var box Box
		box, err = self.registry.Decode(payload, h)
		payload.Release()
		if err != nil {
			return fail(h, err)
		}
		if box.Kind() == KindOpaque {
			self.logger.Debug("opaque box",
				zap.Stringer("tag", h.Tag),
				zap.Int64("offset", h.Offset),
				zap.Uint32("size", h.Size))
		}
		forest.add(box, top.parent, top.depth)
	}

	self.logger.Debug("walk done", zap.Int("boxes", len(forest.Nodes)), zap.Int("roots", len(forest.Roots)))
	return forest, nil
}

// readHeader reads size and tag. A size of 0 stretches the box to the
// end of the enclosing scope; a size of 1 announces a 64-bit size,
// which is refused.
func readHeader(r *pio.Reader) (h Header, err error) {
	h.Offset = r.Pos()
	var size, tag uint32
	if size, err = r.ReadU32BE(); err != nil {
		return
	}
	if tag, err = r.ReadU32BE(); err != nil {
		return
	}
	h.Tag = Tag(tag)
	h.Size = size
	switch {
	case size == 0:
		left := uint64(r.Len()) + 8
		if left > math.MaxUint32 {
			err = ErrLargeSize
			return
		}
		h.Size = uint32(left)
	case size == 1:
		err = ErrLargeSize
	case size < 8:
		err = fmt.Errorf("%w: declared size %d is smaller than the header", ErrSizeMismatch, size)
	}
	return
}
