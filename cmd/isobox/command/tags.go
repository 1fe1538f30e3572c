package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tyrese/isobox/format/mp4/mp4io"
)

func newTagsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List the box types isobox decodes or descends into",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := mp4io.DefaultRegistry()
			leaves, containers := reg.Tags()
			out := cmd.OutOrStdout()
			for _, tag := range leaves {
				fmt.Fprintf(out, "%s decoded\n", tag)
			}
			for _, tag := range containers {
				skip, _ := reg.Container(tag)
				if skip > 0 {
					fmt.Fprintf(out, "%s container skip=%d\n", tag, skip)
				} else {
					fmt.Fprintf(out, "%s container\n", tag)
				}
			}
			return nil
		},
	}
}
