// ABOUTME: Ogg Opus reader built on hraban/opus (libopusfile)
// ABOUTME: Opus always decodes at 48 kHz; emits pcm_f32le packets
package format

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/hraban/opus.v2"

	"github.com/Aze-M/cmp3-proj/pkg/audio"
)

// opusSampleRate is the fixed output rate of libopusfile
const opusSampleRate = 48000

var opusHeadMagic = []byte("OpusHead")

type opusFormat struct{}

// Opus returns the Ogg Opus format
func Opus() Format { return opusFormat{} }

func (opusFormat) Name() string { return "opus" }

func (opusFormat) Sniff(h []byte) bool {
	return bytes.HasPrefix(h, oggMagic) && bytes.Contains(h, opusHeadMagic)
}

// opusChannels reads the output channel count from the OpusHead packet
func opusChannels(h []byte) int {
	i := bytes.Index(h, opusHeadMagic)
	if i < 0 || i+9 >= len(h) {
		return 0
	}
	return int(h[i+9])
}

func (opusFormat) Open(stream *MediaStream, packetFrames int) (Reader, error) {
	header, _ := stream.Peek(ProbeSize)
	channels := opusChannels(header)
	if channels < 1 {
		return nil, fmt.Errorf("invalid OpusHead channel count: %d", channels)
	}

	s, err := opus.NewStream(stream)
	if err != nil {
		return nil, fmt.Errorf("open opus stream: %w", err)
	}

	return &opusReader{
		stream: s,
		track: audio.Track{
			ID: 0,
			Codec: audio.CodecParams{
				Codec:      audio.CodecPCMF32LE,
				SampleRate: opusSampleRate,
				Channels:   channels,
				BitDepth:   32,
			},
		},
		buf: make([]float32, packetFrames*channels),
	}, nil
}

type opusReader struct {
	stream *opus.Stream
	track  audio.Track
	buf    []float32
}

func (r *opusReader) Format() string        { return "opus" }
func (r *opusReader) Tracks() []audio.Track { return []audio.Track{r.track} }

func (r *opusReader) Close() error {
	return r.stream.Close()
}

func (r *opusReader) NextPacket() (audio.Packet, error) {
	// ReadFloat32 returns samples per channel
	n, err := r.stream.ReadFloat32(r.buf)
	values := n * r.track.Codec.Channels
	if values > 0 {
		return audio.Packet{TrackID: r.track.ID, Data: packFloats(make([]byte, 0, values*4), r.buf[:values])}, nil
	}

	if err == nil || errors.Is(err, io.EOF) {
		return audio.Packet{}, io.EOF
	}
	return audio.Packet{}, fmt.Errorf("%w: opus: %v", ErrCorruptPacket, err)
}
