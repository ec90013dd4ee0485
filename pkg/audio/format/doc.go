// ABOUTME: Container format package: probing and packet readers
// ABOUTME: Wraps media sources and demuxes them into codec packets
// Package format detects the container of a media source and reads packets.
//
// A MediaStream buffers a seekable source. Registry.Probe sniffs the first
// bytes against every registered Format and opens the first one that accepts
// the stream. The resulting Reader lists its tracks and yields packets that a
// codec.Decoder turns into frames.
//
// Example:
//
//	stream := format.NewMediaStream(file)
//	reader, err := format.DefaultRegistry().Probe(stream)
//	track := reader.Tracks()[0]
//	pkt, err := reader.NextPacket()
package format
