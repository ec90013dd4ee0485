// ABOUTME: FLAC stream reader built on mewkiz/flac
// ABOUTME: Each FLAC frame becomes one pcm_s32le packet
package format

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"

	"github.com/Aze-M/cmp3-proj/pkg/audio"
)

type flacFormat struct{}

// FLAC returns the native FLAC format
func FLAC() Format { return flacFormat{} }

func (flacFormat) Name() string { return "flac" }

func (flacFormat) Sniff(h []byte) bool {
	return bytes.HasPrefix(h, []byte("fLaC"))
}

func (flacFormat) Open(stream *MediaStream, _ int) (Reader, error) {
	s, err := flac.New(stream)
	if err != nil {
		return nil, fmt.Errorf("parse flac stream info: %w", err)
	}

	info := s.Info
	if info.NChannels < 1 {
		return nil, fmt.Errorf("invalid flac channel count: %d", info.NChannels)
	}

	return &flacReader{
		stream: s,
		track: audio.Track{
			ID: 0,
			Codec: audio.CodecParams{
				Codec:      audio.CodecPCMS32LE,
				SampleRate: int(info.SampleRate),
				Channels:   int(info.NChannels),
				BitDepth:   int(info.BitsPerSample),
			},
			Frames: int64(info.NSamples),
		},
	}, nil
}

type flacReader struct {
	stream *flac.Stream
	track  audio.Track
}

func (r *flacReader) Format() string        { return "flac" }
func (r *flacReader) Tracks() []audio.Track { return []audio.Track{r.track} }

func (r *flacReader) Close() error {
	return r.stream.Close()
}

func (r *flacReader) NextPacket() (audio.Packet, error) {
	frame, err := r.stream.ParseNext()
	switch {
	case err == nil:
	case errors.Is(err, io.EOF):
		return audio.Packet{}, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		return audio.Packet{}, fmt.Errorf("read flac frame: %w", err)
	default:
		// CRC mismatches and bad headers only spoil this frame
		return audio.Packet{}, fmt.Errorf("%w: flac frame: %v", ErrCorruptPacket, err)
	}

	channels := r.track.Codec.Channels
	if len(frame.Subframes) < channels {
		return audio.Packet{}, fmt.Errorf("%w: flac frame has %d subframes, expected %d",
			ErrCorruptPacket, len(frame.Subframes), channels)
	}

	blockSize := int(frame.BlockSize)
	samples := make([]int, 0, blockSize*channels)
	for i := 0; i < blockSize; i++ {
		for ch := 0; ch < channels; ch++ {
			samples = append(samples, int(frame.Subframes[ch].Samples[i]))
		}
	}

	data := packInts(make([]byte, 0, len(samples)*4), samples, audio.CodecPCMS32LE)
	return audio.Packet{TrackID: r.track.ID, Data: data}, nil
}
