// ABOUTME: Codec package turning packets into decoded frames
// ABOUTME: Provides the Decoder interface, a Registry and PCM decoders
// Package codec decodes packets produced by format readers.
//
// Decoders are created through a Registry keyed by audio.Codec. The default
// registry knows the PCM variants the built-in format readers emit.
//
// Example:
//
//	dec, err := codec.DefaultRegistry().NewDecoder(track.Codec)
//	frame, err := dec.Decode(packet)
//	left := frame.Channel(0)
package codec
