// ABOUTME: Audio resampling package using linear interpolation
// ABOUTME: Converts streamed float32 audio between sample rates
// Package resample provides audio sample rate conversion.
//
// Uses linear interpolation for converting between sample rates.
// Handles both upsampling and downsampling. A Resampler keeps the last input
// frame and the fractional read position between calls, so a stream can be
// fed in arbitrary chunks without clicks at the chunk boundaries.
//
// Example:
//
//	r := resample.New(44100, 48000, 1)
//	out = r.Resample(out[:0], chunk)
package resample
