// ABOUTME: Root cobra command for the cmp3 binary
// ABOUTME: Holds persistent flags and the shared config/logging bootstrap
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aze-M/cmp3-proj/internal/config"
	"github.com/Aze-M/cmp3-proj/internal/logger"
)

// options shared by every subcommand
type options struct {
	cfgFile string
	loader  *config.Loader
}

// NewRootCommand builds the command tree
func NewRootCommand() *cobra.Command {
	opts := &options{loader: config.NewLoader()}

	root := &cobra.Command{
		Use:   "cmp3",
		Short: "A streaming audio player",
		Long: `cmp3 decodes an audio file on a background worker and streams it to the
default output device.

Supported containers are WAV, AIFF, FLAC, MP3, Ogg Vorbis and Ogg Opus.
Settings come from cmp3.yaml, a .env file and CMP3_ environment variables.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is ./cmp3.yaml)")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "text", "log format (text, json)")

	// Lookup never fails for flags declared just above
	_ = opts.loader.BindFlag("logging.level", root.PersistentFlags().Lookup("log-level"))
	_ = opts.loader.BindFlag("logging.format", root.PersistentFlags().Lookup("log-format"))

	root.AddCommand(
		newPlayCommand(opts),
		newProbeCommand(opts),
		newDevicesCommand(opts),
		newVersionCommand(),
	)
	return root
}

// Execute runs the command tree and exits non-zero on failure
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// load reads and validates configuration
func (o *options) load() (*config.Config, error) {
	cfg, err := o.loader.Load(o.cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// setupLogging installs the global logger writing to w
func setupLogging(cfg *config.Config, w io.Writer) {
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format, w)
}
