//go:build portaudio

// ABOUTME: PortAudio output backend
// ABOUTME: Cross-platform float32 callback stream using PortAudio
package output

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// PortAudio output backend
type PortAudio struct {
	mu     sync.Mutex
	stream *portaudio.Stream
}

// NewPortAudio creates a new PortAudio backend
func NewPortAudio() Backend {
	return &PortAudio{}
}

// Name returns "portaudio"
func (p *PortAudio) Name() string {
	return "portaudio"
}

// Open starts a float32 output stream on the default device
func (p *PortAudio) Open(req StreamConfig, render RenderFunc, _ ErrorFunc) (StreamConfig, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream != nil {
		return StreamConfig{}, ErrAlreadyOpen
	}

	if err := portaudio.Initialize(); err != nil {
		return StreamConfig{}, fmt.Errorf("%w: initialize portaudio: %v", ErrDeviceUnavailable, err)
	}

	dev, err := portaudio.DefaultOutputDevice()
	if err != nil || dev == nil || dev.MaxOutputChannels < 1 {
		portaudio.Terminate()
		return StreamConfig{}, fmt.Errorf("%w: no default output device", ErrDeviceUnavailable)
	}

	cfg := req.withDefaults(StreamConfig{
		SampleRate:   int(dev.DefaultSampleRate),
		Channels:     min(dev.MaxOutputChannels, DefaultChannels),
		PeriodFrames: DefaultPeriodFrames,
		Format:       FormatFloat32,
	})

	params := portaudio.HighLatencyParameters(nil, dev)
	params.Output.Channels = cfg.Channels
	params.SampleRate = float64(cfg.SampleRate)
	params.FramesPerBuffer = cfg.PeriodFrames

	channels := cfg.Channels
	stream, err := portaudio.OpenStream(params, func(out []float32) {
		render(out, channels)
	})
	if err != nil {
		portaudio.Terminate()
		return StreamConfig{}, fmt.Errorf("%w: open stream: %v", ErrDeviceUnavailable, err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return StreamConfig{}, fmt.Errorf("%w: start stream: %v", ErrDeviceUnavailable, err)
	}

	p.stream = stream
	slog.Debug("portaudio stream started", "device", dev.Name, "sample_rate", cfg.SampleRate, "channels", cfg.Channels)
	return cfg, nil
}

// Close releases resources
func (p *PortAudio) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil {
		return nil
	}
	if err := p.stream.Stop(); err != nil {
		return err
	}
	if err := p.stream.Close(); err != nil {
		return err
	}
	p.stream = nil
	return portaudio.Terminate()
}
