// ABOUTME: PCM audio decoder
// ABOUTME: Decodes interleaved little-endian PCM packets to planar float32 frames
package codec

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Aze-M/cmp3-proj/pkg/audio"
)

// PCMDecoder decodes interleaved PCM audio
type PCMDecoder struct {
	params audio.CodecParams
	width  int // bytes per sample
	sample func(b []byte) float32
}

// NewPCM creates a new PCM decoder
func NewPCM(params audio.CodecParams) (Decoder, error) {
	if params.Channels < 1 {
		return nil, fmt.Errorf("invalid channel count for PCM decoder: %d", params.Channels)
	}

	d := &PCMDecoder{params: params}

	switch params.Codec {
	case audio.CodecPCMU8:
		d.width = 1
		d.sample = func(b []byte) float32 {
			return audio.SampleFromUint8(b[0])
		}
	case audio.CodecPCMS16LE:
		d.width = 2
		d.sample = func(b []byte) float32 {
			return audio.SampleFromInt16(int16(binary.LittleEndian.Uint16(b)))
		}
	case audio.CodecPCMS24LE:
		d.width = 3
		d.sample = func(b []byte) float32 {
			return audio.SampleFromInt(audio.SampleFrom24Bit([3]byte{b[0], b[1], b[2]}), 24)
		}
	case audio.CodecPCMS32LE:
		// FLAC and WAV readers store narrower samples in 32-bit containers
		bitDepth := params.BitDepth
		if bitDepth <= 0 || bitDepth > 32 {
			bitDepth = 32
		}
		d.width = 4
		d.sample = func(b []byte) float32 {
			return audio.SampleFromInt(int32(binary.LittleEndian.Uint32(b)), bitDepth)
		}
	case audio.CodecPCMF32LE:
		d.width = 4
		d.sample = func(b []byte) float32 {
			return math.Float32frombits(binary.LittleEndian.Uint32(b))
		}
	default:
		return nil, fmt.Errorf("invalid codec for PCM decoder: %s", params.Codec)
	}

	return d, nil
}

// Decode converts PCM bytes to a planar frame
func (d *PCMDecoder) Decode(pkt audio.Packet) (audio.Frame, error) {
	frameSize := d.width * d.params.Channels
	if len(pkt.Data)%frameSize != 0 {
		return audio.Frame{}, fmt.Errorf("%w: %d bytes is not a multiple of the %d-byte frame",
			ErrMalformedPacket, len(pkt.Data), frameSize)
	}

	frames := len(pkt.Data) / frameSize
	planes := make([][]float32, d.params.Channels)
	for ch := range planes {
		planes[ch] = make([]float32, frames)
	}

	off := 0
	for i := 0; i < frames; i++ {
		for ch := 0; ch < d.params.Channels; ch++ {
			planes[ch][i] = d.sample(pkt.Data[off : off+d.width])
			off += d.width
		}
	}

	return audio.Frame{SampleRate: d.params.SampleRate, Planes: planes}, nil
}

// Close releases resources
func (d *PCMDecoder) Close() error {
	return nil
}
