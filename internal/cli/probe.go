// ABOUTME: Probe subcommand
// ABOUTME: Reports the container format and tracks of a file without playing it
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aze-M/cmp3-proj/pkg/engine"
)

func newProbeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "probe <file>",
		Short: "Show the format and tracks of an audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			setupLogging(cfg, cmd.ErrOrStderr())

			info, err := engine.New(cfg.EngineConfig()).Probe(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "File:   %s\n", args[0])
			fmt.Fprintf(out, "Format: %s\n", info.Format)
			for _, tr := range info.Tracks {
				fmt.Fprintf(out, "Track %d: %s", tr.ID, tr.Codec)
				if tr.Frames > 0 && tr.Codec.SampleRate > 0 {
					secs := float64(tr.Frames) / float64(tr.Codec.SampleRate)
					fmt.Fprintf(out, " (%d frames, %.2fs)", tr.Frames, secs)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}
