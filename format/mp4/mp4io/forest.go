package mp4io

import (
	"fmt"
	"io"
	"strings"
)

// Node is one box in a Forest. Parent is -1 for top level boxes.
type Node struct {
	Box      Box   `json:"box"`
	Parent   int   `json:"parent"`
	Children []int `json:"children,omitempty"`
	Depth    int   `json:"depth"`
}

// Forest is a flat arena of boxes in file order. Children and Roots
// index into Nodes.
type Forest struct {
	Nodes []Node `json:"nodes"`
	Roots []int  `json:"roots"`
}

func (self *Forest) add(box Box, parent int, depth int) int {
	idx := len(self.Nodes)
	self.Nodes = append(self.Nodes, Node{Box: box, Parent: parent, Depth: depth})
	if parent < 0 {
		self.Roots = append(self.Roots, idx)
	} else {
		self.Nodes[parent].Children = append(self.Nodes[parent].Children, idx)
	}
	return idx
}

// Find returns the indexes of every box with the given tag, in file order.
func (self *Forest) Find(tag Tag) (r []int) {
	for i, n := range self.Nodes {
		if n.Box.Head().Tag == tag {
			r = append(r, i)
		}
	}
	return
}

// First returns the first box with the given tag.
func (self *Forest) First(tag Tag) (Box, bool) {
	for _, n := range self.Nodes {
		if n.Box.Head().Tag == tag {
			return n.Box, true
		}
	}
	return nil, false
}

// FindChild searches the subtree under idx, excluding idx itself, and
// returns the first box with the given tag or -1.
func (self *Forest) FindChild(idx int, tag Tag) int {
	for _, c := range self.Nodes[idx].Children {
		if self.Nodes[c].Box.Head().Tag == tag {
			return c
		}
		if r := self.FindChild(c, tag); r >= 0 {
			return r
		}
	}
	return -1
}

// Path returns the indexes from the root down to idx.
func (self *Forest) Path(idx int) (r []int) {
	for i := idx; i >= 0; i = self.Nodes[i].Parent {
		r = append(r, i)
	}
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return
}

// PathString renders Path as "moov/trak/tkhd".
func (self *Forest) PathString(idx int) string {
	p := self.Path(idx)
	s := make([]string, len(p))
	for i, n := range p {
		s[i] = strings.TrimSpace(self.Nodes[n].Box.Head().Tag.String())
	}
	return strings.Join(s, "/")
}

func (self *Forest) Len() int {
	return len(self.Nodes)
}

func (self *Forest) printnode(out io.Writer, idx int) {
	node := self.Nodes[idx]
	h := node.Box.Head()

	fmt.Fprintf(out,
		"%s%s offset=%d size=%d",
		strings.Repeat(" ", node.Depth*2), h.Tag, h.Offset, h.Size,
	)
	if str, ok := node.Box.(fmt.Stringer); ok {
		fmt.Fprint(out, " ", str.String())
	}
	fmt.Fprintln(out)

	for _, child := range node.Children {
		self.printnode(out, child)
	}
}

// Fprint writes one line per box, indented by depth.
func (self *Forest) Fprint(out io.Writer) {
	for _, root := range self.Roots {
		self.printnode(out, root)
	}
}

// FprintNode writes idx and its subtree.
func (self *Forest) FprintNode(out io.Writer, idx int) {
	self.printnode(out, idx)
}
