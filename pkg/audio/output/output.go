// ABOUTME: Audio output backend interface and stream configuration
// ABOUTME: Common interface for callback-driven playback devices
package output

import (
	"fmt"
	"sort"
)

// SampleFormat names the sample representation written to the device
type SampleFormat string

// FormatFloat32 is the only representation the driver produces
const FormatFloat32 SampleFormat = "f32"

// Defaults applied when neither the request nor the device specify a value
const (
	DefaultSampleRate   = 48000
	DefaultChannels     = 2
	DefaultPeriodFrames = 512
)

// StreamConfig describes a device stream. Zero fields in a request mean
// "use the device default".
type StreamConfig struct {
	SampleRate   int
	Channels     int
	PeriodFrames int
	Format       SampleFormat
}

// String returns a compact description like "48000Hz 2ch f32 period=512"
func (c StreamConfig) String() string {
	return fmt.Sprintf("%dHz %dch %s period=%d", c.SampleRate, c.Channels, c.Format, c.PeriodFrames)
}

// withDefaults fills zero fields from def
func (c StreamConfig) withDefaults(def StreamConfig) StreamConfig {
	if c.SampleRate <= 0 {
		c.SampleRate = def.SampleRate
	}
	if c.Channels <= 0 {
		c.Channels = def.Channels
	}
	if c.PeriodFrames <= 0 {
		c.PeriodFrames = def.PeriodFrames
	}
	if c.Format == "" {
		c.Format = def.Format
	}
	return c
}

// RenderFunc fills out with interleaved samples for channels channels.
// It is called from the device's real-time thread and must not block.
type RenderFunc func(out []float32, channels int)

// ErrorFunc receives stream errors reported asynchronously by the device
type ErrorFunc func(err error)

// Backend represents an audio output device API
type Backend interface {
	// Name returns the backend identifier used in configuration
	Name() string

	// Open selects the default output device, starts a stream that pulls
	// samples from render, and returns the negotiated configuration
	Open(req StreamConfig, render RenderFunc, onError ErrorFunc) (StreamConfig, error)

	// Close stops the stream and releases the device
	Close() error
}

var backends = map[string]func() Backend{
	"malgo":     NewMalgo,
	"oto":       NewOto,
	"beep":      NewBeep,
	"portaudio": NewPortAudio,
}

// NewBackend creates the backend registered under name
func NewBackend(name string) (Backend, error) {
	factory, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownBackend, name, BackendNames())
	}
	return factory(), nil
}

// BackendNames returns the registered backend names in sorted order
func BackendNames() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
