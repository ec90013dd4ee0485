// ABOUTME: Devices subcommand
// ABOUTME: Lists output backends and the playback devices miniaudio can see
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aze-M/cmp3-proj/pkg/audio/output"
)

func newDevicesCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List output backends and playback devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			setupLogging(cfg, cmd.ErrOrStderr())

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Backends: %s (configured: %s)\n\n", strings.Join(output.BackendNames(), ", "), cfg.Output.Backend)

			devices, err := output.ListDevices()
			if err != nil {
				return err
			}
			if len(devices) == 0 {
				fmt.Fprintln(out, "No playback devices found")
				return nil
			}
			for _, d := range devices {
				marker := " "
				if d.Default {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s\n", marker, d.Name)
				for _, f := range d.Formats {
					fmt.Fprintf(out, "    %s\n", f)
				}
			}
			return nil
		},
	}
}
