// ABOUTME: MP3 stream reader built on hajimehoshi/go-mp3
// ABOUTME: go-mp3 always decodes to 16-bit stereo, emitted as pcm_s16le packets
package format

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"

	"github.com/Aze-M/cmp3-proj/pkg/audio"
)

// go-mp3 output layout
const (
	mp3Channels   = 2
	mp3FrameBytes = mp3Channels * 2
)

type mp3Format struct{}

// MP3 returns the MPEG-1/2 Layer III format
func MP3() Format { return mp3Format{} }

func (mp3Format) Name() string { return "mp3" }

// Sniff accepts an ID3v2 tag or an MPEG audio frame sync
func (mp3Format) Sniff(h []byte) bool {
	if bytes.HasPrefix(h, []byte("ID3")) {
		return true
	}
	if len(h) < 2 || h[0] != 0xFF || h[1]&0xE0 != 0xE0 {
		return false
	}
	layer := (h[1] >> 1) & 0x03
	return layer != 0
}

func (mp3Format) Open(stream *MediaStream, packetFrames int) (Reader, error) {
	dec, err := mp3.NewDecoder(stream)
	if err != nil {
		return nil, fmt.Errorf("create mp3 decoder: %w", err)
	}

	var frames int64
	if n := dec.Length(); n > 0 {
		frames = n / mp3FrameBytes
	}

	return &mp3Reader{
		dec: dec,
		track: audio.Track{
			ID: 0,
			Codec: audio.CodecParams{
				Codec:      audio.CodecPCMS16LE,
				SampleRate: dec.SampleRate(),
				Channels:   mp3Channels,
				BitDepth:   16,
			},
			Frames: frames,
		},
		buf: make([]byte, packetFrames*mp3FrameBytes),
	}, nil
}

type mp3Reader struct {
	dec   *mp3.Decoder
	track audio.Track
	buf   []byte
}

func (r *mp3Reader) Format() string        { return "mp3" }
func (r *mp3Reader) Tracks() []audio.Track { return []audio.Track{r.track} }
func (r *mp3Reader) Close() error          { return nil }

func (r *mp3Reader) NextPacket() (audio.Packet, error) {
	n, err := io.ReadFull(r.dec, r.buf)
	n -= n % mp3FrameBytes
	if n == 0 {
		if err == nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return audio.Packet{}, io.EOF
		}
		return audio.Packet{}, fmt.Errorf("read mp3 samples: %w", err)
	}

	data := make([]byte, n)
	copy(data, r.buf[:n])
	return audio.Packet{TrackID: r.track.ID, Data: data}, nil
}
