// ABOUTME: Ogg Vorbis reader built on jfreymuth/oggvorbis
// ABOUTME: Emits decoded float samples as pcm_f32le packets
package format

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/Aze-M/cmp3-proj/pkg/audio"
)

var (
	oggMagic    = []byte("OggS")
	vorbisMagic = []byte("\x01vorbis")
)

type vorbisFormat struct{}

// Vorbis returns the Ogg Vorbis format
func Vorbis() Format { return vorbisFormat{} }

func (vorbisFormat) Name() string { return "vorbis" }

func (vorbisFormat) Sniff(h []byte) bool {
	return bytes.HasPrefix(h, oggMagic) && bytes.Contains(h, vorbisMagic)
}

func (vorbisFormat) Open(stream *MediaStream, packetFrames int) (Reader, error) {
	dec, err := oggvorbis.NewReader(stream)
	if err != nil {
		return nil, fmt.Errorf("parse vorbis headers: %w", err)
	}
	if dec.Channels() < 1 {
		return nil, fmt.Errorf("invalid vorbis channel count: %d", dec.Channels())
	}

	var frames int64
	if n := dec.Length(); n > 0 {
		frames = n
	}

	return &vorbisReader{
		dec: dec,
		track: audio.Track{
			ID: 0,
			Codec: audio.CodecParams{
				Codec:      audio.CodecPCMF32LE,
				SampleRate: dec.SampleRate(),
				Channels:   dec.Channels(),
				BitDepth:   32,
			},
			Frames: frames,
		},
		buf: make([]float32, packetFrames*dec.Channels()),
	}, nil
}

type vorbisReader struct {
	dec   *oggvorbis.Reader
	track audio.Track
	buf   []float32
}

func (r *vorbisReader) Format() string        { return "vorbis" }
func (r *vorbisReader) Tracks() []audio.Track { return []audio.Track{r.track} }
func (r *vorbisReader) Close() error          { return nil }

func (r *vorbisReader) NextPacket() (audio.Packet, error) {
	// Read returns the number of values, always a multiple of the channel count
	n, err := r.dec.Read(r.buf)
	n -= n % r.track.Codec.Channels
	if n > 0 {
		return audio.Packet{TrackID: r.track.ID, Data: packFloats(make([]byte, 0, n*4), r.buf[:n])}, nil
	}

	switch {
	case err == nil, errors.Is(err, io.EOF):
		return audio.Packet{}, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		return audio.Packet{}, fmt.Errorf("read vorbis packet: %w", err)
	default:
		return audio.Packet{}, fmt.Errorf("%w: vorbis: %v", ErrCorruptPacket, err)
	}
}
