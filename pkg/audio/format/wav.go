// ABOUTME: WAV container reader built on go-audio/wav
// ABOUTME: Emits PCM packets; non-PCM format tags surface as unknown codecs
package format

import (
	"bytes"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/Aze-M/cmp3-proj/pkg/audio"
)

// WAV format tags
const (
	wavFormatPCM        = 0x0001
	wavFormatIEEEFloat  = 0x0003
	wavFormatExtensible = 0xFFFE
)

type wavFormat struct{}

// WAV returns the RIFF/WAVE format
func WAV() Format { return wavFormat{} }

func (wavFormat) Name() string { return "wav" }

func (wavFormat) Sniff(h []byte) bool {
	return len(h) >= 12 && bytes.Equal(h[0:4], []byte("RIFF")) && bytes.Equal(h[8:12], []byte("WAVE"))
}

func (wavFormat) Open(stream *MediaStream, packetFrames int) (Reader, error) {
	dec := wav.NewDecoder(stream)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid wav header")
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("locate wav data chunk: %w", err)
	}

	channels := int(dec.NumChans)
	bitDepth := int(dec.BitDepth)
	if channels < 1 || bitDepth < 1 {
		return nil, fmt.Errorf("invalid wav layout: %d channels, %d bits", channels, bitDepth)
	}

	var codec audio.Codec
	switch dec.WavAudioFormat {
	case wavFormatPCM, wavFormatExtensible:
		c, err := pcmCodecForBits(bitDepth)
		if err != nil {
			return nil, err
		}
		codec = c
	case wavFormatIEEEFloat:
		if bitDepth != 32 {
			return nil, fmt.Errorf("unsupported float wav bit depth: %d", bitDepth)
		}
		codec = audio.CodecPCMF32LE
	default:
		// Compressed payloads (ADPCM, MP3-in-WAV, ...) have no decoder
		codec = audio.Codec(fmt.Sprintf("wav_fmt_0x%04x", dec.WavAudioFormat))
	}

	var frames int64
	if frameBytes := int64(channels * ((bitDepth + 7) / 8)); frameBytes > 0 {
		frames = dec.PCMLen() / frameBytes
	}

	return &wavReader{
		dec: dec,
		track: audio.Track{
			ID: 0,
			Codec: audio.CodecParams{
				Codec:      codec,
				SampleRate: int(dec.SampleRate),
				Channels:   channels,
				BitDepth:   bitDepth,
			},
			Frames: frames,
		},
		buf: &goaudio.IntBuffer{
			Data:   make([]int, packetFrames*channels),
			Format: dec.Format(),
		},
	}, nil
}

type wavReader struct {
	dec   *wav.Decoder
	track audio.Track
	buf   *goaudio.IntBuffer
}

func (r *wavReader) Format() string        { return "wav" }
func (r *wavReader) Tracks() []audio.Track { return []audio.Track{r.track} }
func (r *wavReader) Close() error          { return nil }

func (r *wavReader) NextPacket() (audio.Packet, error) {
	n, err := r.dec.PCMBuffer(r.buf)
	n -= n % r.track.Codec.Channels
	if n <= 0 {
		if err != nil && err != io.EOF {
			return audio.Packet{}, fmt.Errorf("read wav samples: %w", err)
		}
		return audio.Packet{}, io.EOF
	}

	samples := r.buf.Data[:n]
	codec := r.track.Codec.Codec

	// go-audio hands 32-bit float samples back as their raw bits, so they
	// pack like s32
	data := packInts(make([]byte, 0, n*sampleWidth(codec)), samples, codec)
	return audio.Packet{TrackID: r.track.ID, Data: data}, nil
}
