// ABOUTME: Version subcommand
// ABOUTME: Prints product, version, commit and build date
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aze-M/cmp3-proj/internal/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print version, git commit, and build date information for cmp3.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s version %s\n", version.Product, version.Version)
			fmt.Fprintf(out, "Git commit: %s\n", version.Commit)
			fmt.Fprintf(out, "Built: %s\n", version.BuildDate)
		},
	}
}
