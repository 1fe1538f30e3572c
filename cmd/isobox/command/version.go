package command

import (
	"fmt"

	"github.com/spf13/cobra"
)

// set with -ldflags "-X github.com/tyrese/isobox/cmd/isobox/command.version=..."
var (
	version = "dev"
	commit  = "none"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "isobox %s (%s)\n", version, commit)
		},
	}
}
