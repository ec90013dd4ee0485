// ABOUTME: Play subcommand
// ABOUTME: Opens the output device, decodes one file and drives the TUI or streaming logs
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aze-M/cmp3-proj/internal/config"
	"github.com/Aze-M/cmp3-proj/internal/ui"
	"github.com/Aze-M/cmp3-proj/internal/version"
	"github.com/Aze-M/cmp3-proj/pkg/engine"
)

// drainPoll is how often headless playback checks whether the ring has emptied
const drainPoll = 100 * time.Millisecond

func newPlayCommand(opts *options) *cobra.Command {
	var noTUI bool

	cmd := &cobra.Command{
		Use:   "play <file>",
		Short: "Play an audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			return runPlay(cmd, cfg, args[0], !noTUI)
		},
	}

	cmd.Flags().BoolVar(&noTUI, "no-tui", false, "disable TUI, stream logs instead")
	cmd.Flags().String("backend", "malgo", "output backend (malgo, oto, beep, portaudio)")
	cmd.Flags().Float64("volume", 1.0, "initial volume, 1.0 is unity gain")
	cmd.Flags().Int("buffer", 0, "sample ring capacity in samples")
	cmd.Flags().String("log-file", "cmp3.log", "log file path")

	_ = opts.loader.BindFlag("output.backend", cmd.Flags().Lookup("backend"))
	_ = opts.loader.BindFlag("engine.volume", cmd.Flags().Lookup("volume"))
	_ = opts.loader.BindFlag("engine.buffer_samples", cmd.Flags().Lookup("buffer"))
	_ = opts.loader.BindFlag("logging.file", cmd.Flags().Lookup("log-file"))

	return cmd
}

func runPlay(cmd *cobra.Command, cfg *config.Config, path string, useTUI bool) error {
	f, err := os.OpenFile(cfg.Logging.File, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		setupLogging(cfg, f)
	} else {
		setupLogging(cfg, io.MultiWriter(cmd.ErrOrStderr(), f))
	}

	slog.Info("Starting player", "product", version.Product, "version", version.Version, "file", path)

	eng := engine.New(cfg.EngineConfig())
	if err := eng.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize audio output: %w", err)
	}
	defer func() {
		if err := eng.Close(); err != nil {
			slog.Error("Error closing engine", "error", err)
		}
	}()

	session, err := eng.Play(path)
	if err != nil {
		return fmt.Errorf("failed to play %s: %w", path, err)
	}

	if useTUI {
		if err := ui.Run(eng, path); err != nil {
			return fmt.Errorf("TUI error: %w", err)
		}
	} else {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		if err := waitPlayback(ctx, eng, session); err != nil {
			slog.Info("Shutdown signal received")
		}
	}

	if err := session.Err(); err != nil {
		return fmt.Errorf("playback failed: %w", err)
	}
	slog.Info("Player stopped", "stats", session.Stats())
	return nil
}

// waitPlayback blocks until the session has ended and the ring is empty, or
// ctx is done
func waitPlayback(ctx context.Context, eng *engine.Engine, session *engine.Session) error {
	select {
	case <-session.Done():
	case <-ctx.Done():
		return ctx.Err()
	}

	ticker := time.NewTicker(drainPoll)
	defer ticker.Stop()
	for eng.Status().Buffered > 0 {
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
