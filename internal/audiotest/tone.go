// ABOUTME: Test tone generator for fixtures
// ABOUTME: Generates sine waves as normalized floats or integer PCM
package audiotest

import "math"

// DefaultFrequency is A4
const DefaultFrequency = 440.0

// Sine returns n samples of a sine wave at freq Hz, sampled at rate, with the given amplitude
func Sine(freq float64, rate, n int, amplitude float64) []float32 {
	out := make([]float32, n)
	for i := range out {
		t := float64(i) / float64(rate)
		out[i] = float32(amplitude * math.Sin(2*math.Pi*freq*t))
	}
	return out
}

// Ramp returns n samples rising linearly from 0 towards 1. Each value is
// distinct, which makes ordering visible in tests.
func Ramp(n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(i) / float32(n)
	}
	return out
}

// ToInt converts normalized samples to signed integers of bitDepth bits
func ToInt(samples []float32, bitDepth int) []int {
	scale := float64(int64(1)<<(bitDepth-1)) - 1
	out := make([]int, len(samples))
	for i, s := range samples {
		v := float64(s)
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		out[i] = int(math.Round(v * scale))
	}
	return out
}

// Interleave builds interleaved frames from one mono signal: channel 0 gets
// the signal and every other channel gets its negation.
func Interleave(mono []int, channels int) []int {
	out := make([]int, 0, len(mono)*channels)
	for _, s := range mono {
		out = append(out, s)
		for ch := 1; ch < channels; ch++ {
			out = append(out, -s)
		}
	}
	return out
}
