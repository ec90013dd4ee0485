// ABOUTME: Tests for the fixture builders
// ABOUTME: Checks headers and sample encoding of generated files
package audiotest

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

func TestSineAmplitude(t *testing.T) {
	s := Sine(DefaultFrequency, 48000, 4800, 0.5)
	if len(s) != 4800 {
		t.Fatalf("expected 4800 samples, got %d", len(s))
	}
	if s[0] != 0 {
		t.Errorf("expected first sample 0, got %f", s[0])
	}
	for i, v := range s {
		if math.Abs(float64(v)) > 0.5+1e-6 {
			t.Fatalf("sample %d exceeds amplitude: %f", i, v)
		}
	}
}

func TestToInt(t *testing.T) {
	got := ToInt([]float32{0, 1, -1, 2}, 16)
	expected := []int{0, 32767, -32767, 32767}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("sample %d: expected %d, got %d", i, expected[i], got[i])
		}
	}
}

func TestWAVHeader(t *testing.T) {
	data := WAV(44100, 2, 16, []int{1, -1, 2, -2})

	if !bytes.HasPrefix(data, []byte("RIFF")) || string(data[8:12]) != "WAVE" {
		t.Fatal("expected RIFF/WAVE header")
	}
	if len(data) != 44+8 {
		t.Errorf("expected 52 bytes, got %d", len(data))
	}
	if rate := binary.LittleEndian.Uint32(data[24:28]); rate != 44100 {
		t.Errorf("expected rate 44100, got %d", rate)
	}
	if s := int16(binary.LittleEndian.Uint16(data[46:48])); s != -1 {
		t.Errorf("expected second sample -1, got %d", s)
	}
}

func TestAIFFHeader(t *testing.T) {
	data := AIFF(44100, 1, 16, []int{0x0102})

	if string(data[0:4]) != "FORM" || string(data[8:12]) != "AIFF" {
		t.Fatal("expected FORM/AIFF header")
	}
	// 44100 as 80-bit extended
	expected := []byte{0x40, 0x0E, 0xAC, 0x44, 0, 0, 0, 0, 0, 0}
	if !bytes.Equal(data[28:38], expected) {
		t.Errorf("expected rate bytes %x, got %x", expected, data[28:38])
	}
	if !bytes.HasSuffix(data, []byte{0x01, 0x02}) {
		t.Errorf("expected big-endian sample at the end, got %x", data[len(data)-2:])
	}
}
