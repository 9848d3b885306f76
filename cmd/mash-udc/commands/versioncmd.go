package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mash-protocol/mash-udc/pkg/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mash-udc %s\n", version.Get())
		},
	}
}
