// ABOUTME: Tests for probing and the built-in container readers
// ABOUTME: Uses in-memory WAV and AIFF fixtures
package format

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/Aze-M/cmp3-proj/internal/audiotest"
	"github.com/Aze-M/cmp3-proj/pkg/audio"
	"github.com/Aze-M/cmp3-proj/pkg/audio/codec"
)

func probe(t *testing.T, data []byte) Reader {
	t.Helper()
	r, err := DefaultRegistry().Probe(NewMediaStream(bytes.NewReader(data)))
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	return r
}

// decodeAll reads every packet of the first track and returns its channel 0
func decodeAll(t *testing.T, r Reader) []float32 {
	t.Helper()
	dec, err := codec.DefaultRegistry().NewDecoder(r.Tracks()[0].Codec)
	if err != nil {
		t.Fatalf("NewDecoder failed: %v", err)
	}
	defer dec.Close()

	var out []float32
	for {
		pkt, err := r.NextPacket()
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("NextPacket failed: %v", err)
		}
		frame, err := dec.Decode(pkt)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		out = append(out, frame.Channel(0)...)
	}
}

func TestDefaultRegistryOrder(t *testing.T) {
	names := DefaultRegistry().Names()
	expected := []string{"wav", "aiff", "flac", "vorbis", "opus", "mp3"}
	if len(names) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, names)
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Errorf("expected %v, got %v", expected, names)
		}
	}
}

func TestSniff(t *testing.T) {
	ogg := func(payload string) []byte {
		h := append([]byte("OggS"), make([]byte, 24)...)
		return append(h, payload...)
	}

	tests := []struct {
		name     string
		format   Format
		header   []byte
		expected bool
	}{
		{"wav", WAV(), []byte("RIFF\x00\x00\x00\x00WAVEfmt "), true},
		{"wav rejects avi", WAV(), []byte("RIFF\x00\x00\x00\x00AVI LIST"), false},
		{"aiff", AIFF(), []byte("FORM\x00\x00\x00\x00AIFFCOMM"), true},
		{"aifc", AIFF(), []byte("FORM\x00\x00\x00\x00AIFCFVER"), true},
		{"flac", FLAC(), []byte("fLaC\x00\x00\x00\x22"), true},
		{"vorbis", Vorbis(), ogg("\x01vorbis"), true},
		{"vorbis rejects opus", Vorbis(), ogg("OpusHead"), false},
		{"opus", Opus(), ogg("OpusHead\x01\x02"), true},
		{"mp3 id3", MP3(), []byte("ID3\x04\x00"), true},
		{"mp3 frame sync", MP3(), []byte{0xFF, 0xFB, 0x90, 0x00}, true},
		{"mp3 reserved layer", MP3(), []byte{0xFF, 0xF9, 0x90, 0x00}, false},
		{"mp3 rejects text", MP3(), []byte("hello"), false},
		{"short header", WAV(), []byte("RIFF"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.format.Sniff(tt.header); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestOpusChannels(t *testing.T) {
	h := append([]byte("OggS"), make([]byte, 24)...)
	h = append(h, []byte("OpusHead\x01\x02\x38\x01")...)
	if got := opusChannels(h); got != 2 {
		t.Errorf("expected 2 channels, got %d", got)
	}
	if got := opusChannels([]byte("OggS")); got != 0 {
		t.Errorf("expected 0 for missing head, got %d", got)
	}
}

func TestProbeUnrecognized(t *testing.T) {
	_, err := DefaultRegistry().Probe(NewMediaStream(bytes.NewReader([]byte("this is not audio at all"))))
	if !errors.Is(err, ErrProbeFailed) {
		t.Errorf("expected ErrProbeFailed, got %v", err)
	}
}

func TestProbeEmpty(t *testing.T) {
	_, err := DefaultRegistry().Probe(NewMediaStream(bytes.NewReader(nil)))
	if !errors.Is(err, ErrProbeFailed) {
		t.Errorf("expected ErrProbeFailed, got %v", err)
	}
}

func TestProbeTruncatedWAV(t *testing.T) {
	_, err := DefaultRegistry().Probe(NewMediaStream(bytes.NewReader([]byte("RIFF\x24\x00\x00\x00WAVE"))))
	if !errors.Is(err, ErrProbeFailed) {
		t.Errorf("expected ErrProbeFailed for a header-only wav, got %v", err)
	}
}

// greedyFormat claims every header and always fails to open
type greedyFormat struct{ opened int }

func (g *greedyFormat) Name() string       { return "greedy" }
func (g *greedyFormat) Sniff([]byte) bool { return true }
func (g *greedyFormat) Open(s *MediaStream, _ int) (Reader, error) {
	g.opened++
	io.CopyN(io.Discard, s, 10)
	return nil, errors.New("not really")
}

func TestProbeFallsThroughAndRewinds(t *testing.T) {
	g := &greedyFormat{}
	r := NewRegistry()
	r.Register(g)
	r.Register(WAV())

	data := audiotest.WAV(8000, 1, 16, []int{100, 200, 300})
	reader, err := r.Probe(NewMediaStream(bytes.NewReader(data)))
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if g.opened != 1 {
		t.Errorf("expected greedy format tried once, got %d", g.opened)
	}
	if reader.Format() != "wav" {
		t.Errorf("expected wav reader, got %s", reader.Format())
	}
}

func TestWAV16Bit(t *testing.T) {
	mono := audiotest.ToInt(audiotest.Ramp(1000), 16)
	r := probe(t, audiotest.WAV(44100, 2, 16, audiotest.Interleave(mono, 2)))

	tracks := r.Tracks()
	if len(tracks) != 1 {
		t.Fatalf("expected 1 track, got %d", len(tracks))
	}
	expected := audio.CodecParams{Codec: audio.CodecPCMS16LE, SampleRate: 44100, Channels: 2, BitDepth: 16}
	if tracks[0].Codec != expected {
		t.Errorf("expected %v, got %v", expected, tracks[0].Codec)
	}
	if tracks[0].Frames != 1000 {
		t.Errorf("expected 1000 frames, got %d", tracks[0].Frames)
	}

	got := decodeAll(t, r)
	if len(got) != len(mono) {
		t.Fatalf("expected %d samples, got %d", len(mono), len(got))
	}
	for i := range mono {
		if want := float32(mono[i]) / 32768; got[i] != want {
			t.Fatalf("sample %d: expected %f, got %f", i, want, got[i])
		}
	}
}

func TestWAVBitDepths(t *testing.T) {
	tests := []struct {
		bitDepth int
		codec    audio.Codec
		samples  []int
		expected []float32
	}{
		{8, audio.CodecPCMU8, []int{128, 192, 64}, []float32{0, 0.5, -0.5}},
		{24, audio.CodecPCMS24LE, []int{0, 4194304, -4194304}, []float32{0, 0.5, -0.5}},
		{32, audio.CodecPCMS32LE, []int{0, 1 << 30, -(1 << 30)}, []float32{0, 0.5, -0.5}},
	}

	for _, tt := range tests {
		r := probe(t, audiotest.WAV(8000, 1, tt.bitDepth, tt.samples))
		if c := r.Tracks()[0].Codec.Codec; c != tt.codec {
			t.Errorf("%d-bit: expected codec %s, got %s", tt.bitDepth, tt.codec, c)
			continue
		}
		got := decodeAll(t, r)
		if len(got) != len(tt.expected) {
			t.Fatalf("%d-bit: expected %d samples, got %d", tt.bitDepth, len(tt.expected), len(got))
		}
		for i := range got {
			if math.Abs(float64(got[i]-tt.expected[i])) > 1e-6 {
				t.Errorf("%d-bit sample %d: expected %f, got %f", tt.bitDepth, i, tt.expected[i], got[i])
			}
		}
	}
}

func TestWAVFloat(t *testing.T) {
	r := probe(t, audiotest.WAVFloat(48000, 1, []float32{0.25, -0.75, 1}))
	if c := r.Tracks()[0].Codec.Codec; c != audio.CodecPCMF32LE {
		t.Fatalf("expected pcm_f32le, got %s", c)
	}

	got := decodeAll(t, r)
	expected := []float32{0.25, -0.75, 1}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("sample %d: expected %f, got %f", i, expected[i], got[i])
		}
	}
}

func TestWAVCompressedFormatTag(t *testing.T) {
	r := probe(t, audiotest.WAVWithFormat(audiotest.FormatMP3, 44100, 2, 16, make([]byte, 64)))

	c := r.Tracks()[0].Codec.Codec
	if c != "wav_fmt_0x0055" {
		t.Fatalf("expected wav_fmt_0x0055, got %s", c)
	}
	if _, err := codec.DefaultRegistry().NewDecoder(r.Tracks()[0].Codec); !errors.Is(err, codec.ErrUnsupportedCodec) {
		t.Errorf("expected ErrUnsupportedCodec, got %v", err)
	}
}

func TestWAVPacketFrames(t *testing.T) {
	reg := DefaultRegistry()
	reg.SetPacketFrames(100)

	r, err := reg.Probe(NewMediaStream(bytes.NewReader(audiotest.WAV(8000, 1, 16, make([]int, 250)))))
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}

	var sizes []int
	for {
		pkt, err := r.NextPacket()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("NextPacket failed: %v", err)
		}
		sizes = append(sizes, len(pkt.Data)/2)
	}

	expected := []int{100, 100, 50}
	if len(sizes) != len(expected) {
		t.Fatalf("expected packet sizes %v, got %v", expected, sizes)
	}
	for i := range expected {
		if sizes[i] != expected[i] {
			t.Errorf("expected packet sizes %v, got %v", expected, sizes)
		}
	}
}

func TestAIFF16Bit(t *testing.T) {
	mono := []int{0, 16384, -16384, 32767}
	r := probe(t, audiotest.AIFF(44100, 1, 16, mono))

	if r.Format() != "aiff" {
		t.Fatalf("expected aiff reader, got %s", r.Format())
	}
	tr := r.Tracks()[0]
	if tr.Codec.SampleRate != 44100 || tr.Codec.Channels != 1 || tr.Codec.Codec != audio.CodecPCMS16LE {
		t.Errorf("unexpected track params %v", tr.Codec)
	}

	got := decodeAll(t, r)
	if len(got) != len(mono) {
		t.Fatalf("expected %d samples, got %d", len(mono), len(got))
	}
	for i := range mono {
		if want := float32(mono[i]) / 32768; got[i] != want {
			t.Errorf("sample %d: expected %f, got %f", i, want, got[i])
		}
	}
}

// decodeStereo reads every packet of a two-channel track
func decodeStereo(t *testing.T, r Reader) (left, right []float32) {
	t.Helper()
	dec, err := codec.DefaultRegistry().NewDecoder(r.Tracks()[0].Codec)
	if err != nil {
		t.Fatalf("NewDecoder failed: %v", err)
	}
	defer dec.Close()

	for {
		pkt, err := r.NextPacket()
		if errors.Is(err, io.EOF) {
			return left, right
		}
		if err != nil {
			t.Fatalf("NextPacket failed: %v", err)
		}
		frame, err := dec.Decode(pkt)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		left = append(left, frame.Channel(0)...)
		right = append(right, frame.Channel(1)...)
	}
}

func TestStereoLargerThanStreamBuffer(t *testing.T) {
	const frames = 40000

	tests := []struct {
		name     string
		bitDepth int
		build    func(bitDepth int, samples []int) []byte
	}{
		{"wav 16-bit", 16, func(b int, s []int) []byte { return audiotest.WAV(44100, 2, b, s) }},
		{"wav 24-bit", 24, func(b int, s []int) []byte { return audiotest.WAV(44100, 2, b, s) }},
		{"aiff 16-bit", 16, func(b int, s []int) []byte { return audiotest.AIFF(44100, 2, b, s) }},
		{"aiff 24-bit", 24, func(b int, s []int) []byte { return audiotest.AIFF(44100, 2, b, s) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mono := audiotest.ToInt(audiotest.Ramp(frames), tt.bitDepth)
			data := tt.build(tt.bitDepth, audiotest.Interleave(mono, 2))
			if len(data) <= 2*streamBufferSize {
				t.Fatalf("fixture of %d bytes does not span several stream buffers", len(data))
			}

			left, right := decodeStereo(t, probe(t, data))
			if len(left) != frames || len(right) != frames {
				t.Fatalf("expected %d frames per channel, got %d and %d", frames, len(left), len(right))
			}

			wrong := 0
			for i, v := range mono {
				if left[i] != audio.SampleFromInt(int32(v), tt.bitDepth) ||
					right[i] != audio.SampleFromInt(int32(-v), tt.bitDepth) {
					wrong++
				}
			}
			if wrong > 0 {
				t.Errorf("expected every sample intact, got %d wrong frames", wrong)
			}
		})
	}
}

func TestUnpackedBitDepthHasNoDecoder(t *testing.T) {
	tests := []struct {
		name  string
		data  []byte
		codec audio.Codec
	}{
		{"wav 12-bit", audiotest.WAV(8000, 1, 12, []int{0, 100, -100, 2047}), "pcm_s12le"},
		{"aiff 20-bit", audiotest.AIFF(8000, 2, 20, []int{0, 0, 1000, -1000}), "pcm_s20le"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := probe(t, tt.data).Tracks()[0]
			if tr.Codec.Codec != tt.codec {
				t.Fatalf("expected codec %s, got %s", tt.codec, tr.Codec.Codec)
			}
			if _, err := codec.DefaultRegistry().NewDecoder(tr.Codec); !errors.Is(err, codec.ErrUnsupportedCodec) {
				t.Errorf("expected ErrUnsupportedCodec, got %v", err)
			}
		})
	}
}

func TestPackInts(t *testing.T) {
	tests := []struct {
		codec    audio.Codec
		samples  []int
		expected []byte
	}{
		{audio.CodecPCMU8, []int{0, 255}, []byte{0x00, 0xFF}},
		{audio.CodecPCMS16LE, []int{-2}, []byte{0xFE, 0xFF}},
		{audio.CodecPCMS24LE, []int{-2}, []byte{0xFE, 0xFF, 0xFF}},
		{audio.CodecPCMS32LE, []int{1}, []byte{0x01, 0x00, 0x00, 0x00}},
	}

	for _, tt := range tests {
		got := packInts(nil, tt.samples, tt.codec)
		if !bytes.Equal(got, tt.expected) {
			t.Errorf("%s: expected %x, got %x", tt.codec, tt.expected, got)
		}
	}
}

func TestPCMCodecForBits(t *testing.T) {
	tests := []struct {
		bits     int
		expected audio.Codec
	}{
		{8, audio.CodecPCMU8},
		{12, audio.Codec("pcm_s12le")},
		{16, audio.CodecPCMS16LE},
		{20, audio.Codec("pcm_s20le")},
		{24, audio.CodecPCMS24LE},
		{32, audio.CodecPCMS32LE},
	}
	for _, tt := range tests {
		got, err := pcmCodecForBits(tt.bits)
		if err != nil || got != tt.expected {
			t.Errorf("%d bits: expected %s, got %s (%v)", tt.bits, tt.expected, got, err)
		}
	}
	if _, err := pcmCodecForBits(64); err == nil {
		t.Error("expected error for 64-bit integers")
	}
}
