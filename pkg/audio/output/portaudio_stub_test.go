//go:build !portaudio

// ABOUTME: Tests for the PortAudio stub backend
// ABOUTME: Stub builds must report the device as unavailable
package output

import (
	"errors"
	"testing"
)

func TestPortAudioStubUnavailable(t *testing.T) {
	_, err := NewPortAudio().Open(StreamConfig{}, nil, nil)
	if !errors.Is(err, ErrDeviceUnavailable) {
		t.Errorf("expected ErrDeviceUnavailable, got %v", err)
	}
	if err := NewPortAudio().Close(); err != nil {
		t.Errorf("expected stub Close to succeed, got %v", err)
	}
}
