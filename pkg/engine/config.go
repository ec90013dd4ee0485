// ABOUTME: Engine configuration and functional options
// ABOUTME: Defaults mirror the cmp3 configuration file
package engine

import (
	"log/slog"

	"github.com/Aze-M/cmp3-proj/pkg/audio/codec"
	"github.com/Aze-M/cmp3-proj/pkg/audio/format"
	"github.com/Aze-M/cmp3-proj/pkg/audio/output"
	"github.com/Aze-M/cmp3-proj/pkg/audio/ring"
)

// Config holds engine configuration
type Config struct {
	// Backend is the output backend name (default: "malgo")
	Backend string

	// SampleRate, Channels and PeriodFrames request a stream configuration;
	// zero means the device default
	SampleRate   int
	Channels     int
	PeriodFrames int

	// BufferSamples is the ring capacity in mono samples (default: 65536)
	BufferSamples int

	// Volume is the initial linear gain (default: 1.0)
	Volume float32

	// Resample converts decoded audio to the device sample rate (default: true)
	Resample bool

	// PacketFrames is the packet size for readers that choose their own framing (default: 4096)
	PacketFrames int

	// MaxConsecutiveErrors ends a session after this many corrupt packets in a row (default: 32)
	MaxConsecutiveErrors int
}

// DefaultConfig returns the default engine configuration
func DefaultConfig() Config {
	return Config{
		Backend:              "malgo",
		BufferSamples:        ring.DefaultCapacity,
		Volume:               1.0,
		Resample:             true,
		PacketFrames:         format.DefaultPacketFrames,
		MaxConsecutiveErrors: 32,
	}
}

// withDefaults fills zero values that have no meaningful zero
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Backend == "" {
		c.Backend = def.Backend
	}
	if c.BufferSamples <= 0 {
		c.BufferSamples = def.BufferSamples
	}
	if c.PacketFrames <= 0 {
		c.PacketFrames = def.PacketFrames
	}
	if c.MaxConsecutiveErrors <= 0 {
		c.MaxConsecutiveErrors = def.MaxConsecutiveErrors
	}
	return c
}

// Option customizes an Engine
type Option func(*Engine)

// WithFormats replaces the format registry used for probing
func WithFormats(r *format.Registry) Option {
	return func(e *Engine) { e.formats = r }
}

// WithCodecs replaces the codec registry used to build decoders
func WithCodecs(r *codec.Registry) Option {
	return func(e *Engine) { e.codecs = r }
}

// WithBackend uses b instead of the backend named in Config
func WithBackend(b output.Backend) Option {
	return func(e *Engine) { e.backend = b }
}

// WithLogger sets the engine logger
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}
