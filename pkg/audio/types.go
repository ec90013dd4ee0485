// ABOUTME: Audio type definitions shared by readers, decoders and outputs
// ABOUTME: Defines codec parameters, tracks, packets, frames and sample conversion
package audio

import "fmt"

const (
	// 24-bit audio range constants
	Max24Bit = 8388607  // 2^23 - 1
	Min24Bit = -8388608 // -2^23
)

// Codec identifies the encoding of packets within a track
type Codec string

// Codecs produced by the registered format readers
const (
	CodecPCMU8    Codec = "pcm_u8"
	CodecPCMS16LE Codec = "pcm_s16le"
	CodecPCMS24LE Codec = "pcm_s24le"
	CodecPCMS32LE Codec = "pcm_s32le"
	CodecPCMF32LE Codec = "pcm_f32le"
)

// CodecParams describes how to decode the packets of one track
type CodecParams struct {
	Codec      Codec
	SampleRate int
	Channels   int
	BitDepth   int // significant bits per sample, may be less than the container width
}

// String returns a compact description like "pcm_s16le 44100Hz 2ch 16bit"
func (p CodecParams) String() string {
	return fmt.Sprintf("%s %dHz %dch %dbit", p.Codec, p.SampleRate, p.Channels, p.BitDepth)
}

// Track describes one decodable audio stream inside a container
type Track struct {
	ID     int
	Codec  CodecParams
	Frames int64 // total frames if the container knows it, 0 otherwise
}

// Packet is one encoded unit read from a track
type Packet struct {
	TrackID int
	Data    []byte
}

// Frame is a block of decoded, planar samples normalized to [-1, 1]
type Frame struct {
	SampleRate int
	Planes     [][]float32
}

// Channel returns the samples of channel ch, or nil if the frame has no such channel
func (f Frame) Channel(ch int) []float32 {
	if ch < 0 || ch >= len(f.Planes) {
		return nil
	}
	return f.Planes[ch]
}

// Len returns the number of frames (samples per channel)
func (f Frame) Len() int {
	if len(f.Planes) == 0 {
		return 0
	}
	return len(f.Planes[0])
}

// SampleFromInt16 converts a 16-bit sample to float32 in [-1, 1)
func SampleFromInt16(sample int16) float32 {
	return float32(sample) / 32768.0
}

// SampleFromUint8 converts an unsigned 8-bit sample (128 = silence) to float32
func SampleFromUint8(sample uint8) float32 {
	return float32(int(sample)-128) / 128.0
}

// SampleFromInt converts a signed integer sample of the given bit depth to float32
func SampleFromInt(sample int32, bitDepth int) float32 {
	if bitDepth <= 0 || bitDepth > 32 {
		bitDepth = 32
	}
	return float32(float64(sample) / float64(uint64(1)<<(bitDepth-1)))
}

// SampleFrom24Bit converts 24-bit packed bytes (little-endian) to int32
func SampleFrom24Bit(b [3]byte) int32 {
	// Reconstruct 24-bit value and sign-extend to 32-bit
	val := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
	if val&0x800000 != 0 {
		val |= ^0xFFFFFF
	}
	return val
}

// SampleTo24Bit converts int32 to 24-bit packed bytes (little-endian)
func SampleTo24Bit(sample int32) [3]byte {
	return [3]byte{
		byte(sample),
		byte(sample >> 8),
		byte(sample >> 16),
	}
}

// SampleToInt16 converts a float32 sample to int16 with clipping
func SampleToInt16(sample float32) int16 {
	return int16(Clamp(sample) * 32767)
}

// Clamp limits a sample to [-1, 1]; NaN becomes silence
func Clamp(sample float32) float32 {
	switch {
	case sample != sample: // NaN
		return 0
	case sample > 1:
		return 1
	case sample < -1:
		return -1
	}
	return sample
}
