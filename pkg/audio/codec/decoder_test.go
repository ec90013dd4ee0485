// ABOUTME: Tests for the codec registry
// ABOUTME: Verifies registration, lookup and construction failures
package codec

import (
	"errors"
	"testing"

	"github.com/Aze-M/cmp3-proj/pkg/audio"
)

func TestPCMDecoderImplementsDecoder(t *testing.T) {
	var _ Decoder = (*PCMDecoder)(nil)
}

func TestDefaultRegistryCodecs(t *testing.T) {
	codecs := DefaultRegistry().Codecs()
	expected := []audio.Codec{
		audio.CodecPCMF32LE,
		audio.CodecPCMS16LE,
		audio.CodecPCMS24LE,
		audio.CodecPCMS32LE,
		audio.CodecPCMU8,
	}

	if len(codecs) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, codecs)
	}
	for i := range expected {
		if codecs[i] != expected[i] {
			t.Errorf("expected %v, got %v", expected, codecs)
		}
	}
}

func TestNewDecoderUnsupported(t *testing.T) {
	_, err := DefaultRegistry().NewDecoder(audio.CodecParams{Codec: "wav_fmt_0x0055", Channels: 2})
	if !errors.Is(err, ErrUnsupportedCodec) {
		t.Errorf("expected ErrUnsupportedCodec, got %v", err)
	}
}

func TestNewDecoderFactoryError(t *testing.T) {
	errBoom := errors.New("boom")
	r := NewRegistry()
	r.Register("broken", func(audio.CodecParams) (Decoder, error) {
		return nil, errBoom
	})

	_, err := r.NewDecoder(audio.CodecParams{Codec: "broken"})
	if !errors.Is(err, errBoom) {
		t.Errorf("expected factory error to be wrapped, got %v", err)
	}
}

func TestRegisterReplaces(t *testing.T) {
	r := DefaultRegistry()
	called := false
	r.Register(audio.CodecPCMS16LE, func(p audio.CodecParams) (Decoder, error) {
		called = true
		return NewPCM(p)
	})

	if _, err := r.NewDecoder(audio.CodecParams{Codec: audio.CodecPCMS16LE, Channels: 1}); err != nil {
		t.Fatalf("NewDecoder failed: %v", err)
	}
	if !called {
		t.Error("expected replacement factory to be used")
	}
}
