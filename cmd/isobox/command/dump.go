package command

import (
	"fmt"
	"io"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/spf13/cobra"

	"github.com/tyrese/isobox/format/mp4/mp4io"
	"github.com/tyrese/isobox/internal/config"
)

// boxEnv is what a --where expression sees for each box.
type boxEnv struct {
	Tag    string
	Kind   string
	Path   string
	Size   int64
	Offset int64
	Depth  int
}

type record struct {
	Path    string `json:"path" yaml:"path"`
	Type    string `json:"type" yaml:"type"`
	Kind    string `json:"kind" yaml:"kind"`
	Offset  int64  `json:"offset" yaml:"offset"`
	Size    uint32 `json:"size" yaml:"size"`
	Depth   int    `json:"depth" yaml:"depth"`
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`
}

func compileWhere(src string) (*vm.Program, error) {
	program, err := expr.Compile(src, expr.Env(boxEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid --where expression: %w", err)
	}
	return program, nil
}

func newBoxEnv(forest *mp4io.Forest, idx int) boxEnv {
	node := forest.Nodes[idx]
	h := node.Box.Head()
	return boxEnv{
		Tag:    h.Tag.String(),
		Kind:   node.Box.Kind().String(),
		Path:   forest.PathString(idx),
		Size:   int64(h.Size),
		Offset: h.Offset,
		Depth:  node.Depth,
	}
}

// selectBoxes returns the indexes of the boxes program accepts, or all
// of them when program is nil.
func selectBoxes(forest *mp4io.Forest, program *vm.Program) (r []int, err error) {
	for i := range forest.Nodes {
		if program == nil {
			r = append(r, i)
			continue
		}
		var out any
		if out, err = expr.Run(program, newBoxEnv(forest, i)); err != nil {
			return
		}
		if out.(bool) {
			r = append(r, i)
		}
	}
	return
}

func newRecord(forest *mp4io.Forest, idx int) record {
	node := forest.Nodes[idx]
	h := node.Box.Head()
	r := record{
		Path:   forest.PathString(idx),
		Type:   h.Tag.String(),
		Kind:   node.Box.Kind().String(),
		Offset: h.Offset,
		Size:   h.Size,
		Depth:  node.Depth,
	}
	if str, ok := node.Box.(fmt.Stringer); ok {
		r.Summary = str.String()
	}
	return r
}

func newDumpCommand(self *app) *cobra.Command {
	var where string

	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "Print the box tree of a file",
		Long: `dump walks every box of the file and prints one line per box,
indented by depth. With --where only the boxes matching the expression
are printed, each with its full path.

The expression sees Tag, Kind, Path, Size, Offset and Depth:
  isobox dump movie.mp4 --where 'Tag == "trak" || Depth > 3'`,
		Args: cobra.ExactArgs(1),
	}
	cmd.Flags().StringVarP(&where, "where", "w", "", "only show boxes matching this expression")

	cmd.RunE = self.run(func(cmd *cobra.Command, args []string) (err error) {
		var program *vm.Program
		if where != "" {
			if program, err = compileWhere(where); err != nil {
				return
			}
		}

		var forest *mp4io.Forest
		if _, forest, err = self.open(cmd.Context(), args[0]); err != nil {
			return
		}

		out := cmd.OutOrStdout()
		if program == nil && self.cfg.Output.Format == config.FormatText {
			forest.Fprint(out)
			return
		}

		var idx []int
		if idx, err = selectBoxes(forest, program); err != nil {
			return
		}
		if self.cfg.Output.Format == config.FormatText {
			return printRecords(out, forest, idx)
		}
		records := make([]record, 0, len(idx))
		for _, i := range idx {
			records = append(records, newRecord(forest, i))
		}
		return self.render(out, records)
	})
	return cmd
}

func printRecords(w io.Writer, forest *mp4io.Forest, idx []int) (err error) {
	for _, i := range idx {
		r := newRecord(forest, i)
		line := fmt.Sprintf("%s offset=%d size=%d", r.Path, r.Offset, r.Size)
		if r.Summary != "" {
			line += " " + r.Summary
		}
		if _, err = fmt.Fprintln(w, strings.TrimSpace(line)); err != nil {
			return
		}
	}
	return
}
