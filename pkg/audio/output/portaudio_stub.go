//go:build !portaudio

// ABOUTME: PortAudio stub when library not available
// ABOUTME: Provides compile-time placeholder when PortAudio not installed
package output

import (
	"errors"
	"fmt"
)

var errPortAudioDisabled = errors.New("PortAudio support not enabled (build with -tags portaudio)")

// PortAudio output backend (stub)
type PortAudio struct{}

// NewPortAudio creates a new PortAudio backend
func NewPortAudio() Backend {
	return &PortAudio{}
}

// Name returns "portaudio"
func (p *PortAudio) Name() string {
	return "portaudio"
}

// Open always fails in builds without the portaudio tag
func (p *PortAudio) Open(StreamConfig, RenderFunc, ErrorFunc) (StreamConfig, error) {
	return StreamConfig{}, fmt.Errorf("%w: %w", ErrDeviceUnavailable, errPortAudioDisabled)
}

// Close releases resources
func (p *PortAudio) Close() error {
	return nil
}
