// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines tracks, packets, frames and sample conversion functions
// Package audio provides the types passed between the cmp3 audio packages.
//
// This package defines:
//   - CodecParams and Track: what a container reader found in a file
//   - Packet: one encoded unit handed from a format reader to a decoder
//   - Frame: decoded planar float32 samples in [-1, 1]
//
// It also provides conversions from the integer sample encodings the readers
// emit (unsigned 8-bit, 16/24/32-bit signed) to normalized float32.
//
// Example:
//
//	params := audio.CodecParams{
//	    Codec:      audio.CodecPCMS16LE,
//	    SampleRate: 44100,
//	    Channels:   2,
//	    BitDepth:   16,
//	}
//
//	sample := audio.SampleFromInt16(-16384) // -0.5
package audio
