// ABOUTME: Helpers packing integer samples into little-endian PCM packets
// ABOUTME: Shared by readers built on libraries that return decoded ints
package format

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Aze-M/cmp3-proj/pkg/audio"
)

// pcmCodecForBits picks the packed PCM codec for a signed integer bit depth.
// Depths that are not whole bytes map to a pcm_s<N>le codec no decoder is
// registered for: the sample readers cannot unpack them.
func pcmCodecForBits(bitDepth int) (audio.Codec, error) {
	switch bitDepth {
	case 8:
		return audio.CodecPCMU8, nil
	case 16:
		return audio.CodecPCMS16LE, nil
	case 24:
		return audio.CodecPCMS24LE, nil
	case 32:
		return audio.CodecPCMS32LE, nil
	}
	if bitDepth > 0 && bitDepth < 32 {
		return audio.Codec(fmt.Sprintf("pcm_s%dle", bitDepth)), nil
	}
	return "", fmt.Errorf("unsupported bit depth: %d", bitDepth)
}

// sampleWidth returns the container width in bytes of a packed PCM codec
func sampleWidth(c audio.Codec) int {
	switch c {
	case audio.CodecPCMU8:
		return 1
	case audio.CodecPCMS16LE:
		return 2
	case audio.CodecPCMS24LE:
		return 3
	default:
		return 4
	}
}

// packInts appends samples encoded as codec c to dst.
// For pcm_u8 the samples must already be unsigned (0..255).
func packInts(dst []byte, samples []int, c audio.Codec) []byte {
	switch c {
	case audio.CodecPCMU8:
		for _, s := range samples {
			dst = append(dst, byte(s))
		}
	case audio.CodecPCMS16LE:
		for _, s := range samples {
			dst = binary.LittleEndian.AppendUint16(dst, uint16(int16(s)))
		}
	case audio.CodecPCMS24LE:
		for _, s := range samples {
			b := audio.SampleTo24Bit(int32(s))
			dst = append(dst, b[0], b[1], b[2])
		}
	default:
		for _, s := range samples {
			dst = binary.LittleEndian.AppendUint32(dst, uint32(int32(s)))
		}
	}
	return dst
}

// packFloats appends samples as pcm_f32le to dst
func packFloats(dst []byte, samples []float32) []byte {
	for _, s := range samples {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(s))
	}
	return dst
}
