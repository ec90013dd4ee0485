// ABOUTME: In-memory WAV and AIFF file builders for tests
// ABOUTME: Also writes WAV files to disk through the go-audio encoder
package audiotest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAV format tags
const (
	FormatPCM   = 1
	FormatFloat = 3
	FormatMP3   = 0x55
)

// WAV builds a canonical 44-byte-header WAV file. Samples are interleaved
// integers of bitDepth bits (8-bit samples are unsigned).
func WAV(sampleRate, channels, bitDepth int, samples []int) []byte {
	return WAVWithFormat(FormatPCM, sampleRate, channels, bitDepth, encodeLE(samples, bitDepth))
}

// WAVFloat builds an IEEE-float WAV file from interleaved float samples
func WAVFloat(sampleRate, channels int, samples []float32) []byte {
	data := make([]byte, 0, len(samples)*4)
	for _, s := range samples {
		data = binary.LittleEndian.AppendUint32(data, math.Float32bits(s))
	}
	return WAVWithFormat(FormatFloat, sampleRate, channels, 32, data)
}

// WAVWithFormat builds a WAV file with an arbitrary format tag and raw data chunk
func WAVWithFormat(format, sampleRate, channels, bitDepth int, data []byte) []byte {
	buf := new(bytes.Buffer)

	blockAlign := uint16(channels * ((bitDepth + 7) / 8))
	byteRate := uint32(sampleRate) * uint32(blockAlign)

	// RIFF header
	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+len(data)))
	buf.WriteString("WAVE")

	// fmt chunk
	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(format))
	binary.Write(buf, binary.LittleEndian, uint16(channels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, byteRate)
	binary.Write(buf, binary.LittleEndian, blockAlign)
	binary.Write(buf, binary.LittleEndian, uint16(bitDepth))

	// data chunk
	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(len(data)))
	buf.Write(data)

	return buf.Bytes()
}

// AIFF builds an AIFF file with big-endian signed samples
func AIFF(sampleRate, channels, bitDepth int, samples []int) []byte {
	width := (bitDepth + 7) / 8
	data := make([]byte, 0, len(samples)*width)
	for _, s := range samples {
		for b := width - 1; b >= 0; b-- {
			data = append(data, byte(s>>(8*b)))
		}
	}

	buf := new(bytes.Buffer)
	commSize := 18
	ssndSize := 8 + len(data)

	buf.WriteString("FORM")
	binary.Write(buf, binary.BigEndian, uint32(4+8+commSize+8+ssndSize))
	buf.WriteString("AIFF")

	buf.WriteString("COMM")
	binary.Write(buf, binary.BigEndian, uint32(commSize))
	binary.Write(buf, binary.BigEndian, uint16(channels))
	binary.Write(buf, binary.BigEndian, uint32(len(samples)/channels))
	binary.Write(buf, binary.BigEndian, uint16(bitDepth))
	buf.Write(extended80(float64(sampleRate)))

	buf.WriteString("SSND")
	binary.Write(buf, binary.BigEndian, uint32(ssndSize))
	binary.Write(buf, binary.BigEndian, uint32(0)) // offset
	binary.Write(buf, binary.BigEndian, uint32(0)) // block size
	buf.Write(data)

	return buf.Bytes()
}

// WriteWAVFile writes 16-bit PCM samples to path using the go-audio encoder
func WriteWAVFile(path string, sampleRate, channels int, samples []int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, channels, FormatPCM)
	buf := &goaudio.IntBuffer{
		Data:           samples,
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	return enc.Close()
}

func encodeLE(samples []int, bitDepth int) []byte {
	width := (bitDepth + 7) / 8
	data := make([]byte, 0, len(samples)*width)
	for _, s := range samples {
		for b := 0; b < width; b++ {
			data = append(data, byte(s>>(8*b)))
		}
	}
	return data
}

// extended80 encodes v as an IEEE 754 80-bit extended float (AIFF sample rate)
func extended80(v float64) []byte {
	out := make([]byte, 10)
	if v == 0 {
		return out
	}
	exp := int(math.Floor(math.Log2(v)))
	mant := uint64(v / math.Pow(2, float64(exp-63)))
	binary.BigEndian.PutUint16(out[0:], uint16(exp+16383))
	binary.BigEndian.PutUint64(out[2:], mant)
	return out
}
