// ABOUTME: AIFF container reader built on go-audio/aiff
// ABOUTME: Converts big-endian AIFF samples to little-endian PCM packets
package format

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"

	"github.com/Aze-M/cmp3-proj/pkg/audio"
)

type aiffFormat struct{}

// AIFF returns the AIFF/AIFC format
func AIFF() Format { return aiffFormat{} }

func (aiffFormat) Name() string { return "aiff" }

func (aiffFormat) Sniff(h []byte) bool {
	if len(h) < 12 || !bytes.Equal(h[0:4], []byte("FORM")) {
		return false
	}
	kind := string(h[8:12])
	return kind == "AIFF" || kind == "AIFC"
}

func (aiffFormat) Open(stream *MediaStream, packetFrames int) (Reader, error) {
	dec := aiff.NewDecoder(stream)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid aiff header")
	}
	dec.ReadInfo()

	f := dec.Format()
	if f == nil || f.NumChannels < 1 {
		return nil, fmt.Errorf("unsupported aiff layout")
	}

	bitDepth := int(dec.BitDepth)
	codec, err := pcmCodecForBits(bitDepth)
	if err != nil {
		return nil, err
	}

	return &aiffReader{
		dec: dec,
		track: audio.Track{
			ID: 0,
			Codec: audio.CodecParams{
				Codec:      codec,
				SampleRate: f.SampleRate,
				Channels:   f.NumChannels,
				BitDepth:   bitDepth,
			},
		},
		buf: &goaudio.IntBuffer{
			Data:   make([]int, packetFrames*f.NumChannels),
			Format: f,
		},
	}, nil
}

type aiffReader struct {
	dec   *aiff.Decoder
	track audio.Track
	buf   *goaudio.IntBuffer
}

func (r *aiffReader) Format() string        { return "aiff" }
func (r *aiffReader) Tracks() []audio.Track { return []audio.Track{r.track} }
func (r *aiffReader) Close() error          { return nil }

func (r *aiffReader) NextPacket() (audio.Packet, error) {
	n, err := r.dec.PCMBuffer(r.buf)
	n -= n % r.track.Codec.Channels
	if n <= 0 {
		if err != nil && err != io.EOF {
			return audio.Packet{}, fmt.Errorf("read aiff samples: %w", err)
		}
		return audio.Packet{}, io.EOF
	}

	samples := r.buf.Data[:n]
	codec := r.track.Codec.Codec
	if codec == audio.CodecPCMU8 {
		// AIFF 8-bit samples are signed
		for i, s := range samples {
			samples[i] = s + 128
		}
	}

	data := packInts(make([]byte, 0, n*sampleWidth(codec)), samples, codec)
	return audio.Packet{TrackID: r.track.ID, Data: data}, nil
}
