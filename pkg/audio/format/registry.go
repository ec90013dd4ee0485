// ABOUTME: Format interface and probe registry
// ABOUTME: Sniffs headers in registration order and opens the first match
package format

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/Aze-M/cmp3-proj/pkg/audio"
)

const (
	// ProbeSize is the number of header bytes handed to Sniff
	ProbeSize = 128

	// DefaultPacketFrames is the packet size used by readers that choose their own framing
	DefaultPacketFrames = 4096
)

// Reader yields packets from an opened container
type Reader interface {
	// Format returns the name of the container format
	Format() string

	// Tracks lists the audio tracks, first track first
	Tracks() []audio.Track

	// NextPacket returns the next packet. io.EOF marks the end of the stream;
	// errors wrapping ErrCorruptPacket may be skipped.
	NextPacket() (audio.Packet, error)

	// Close releases reader resources
	Close() error
}

// Format recognizes and opens one container format
type Format interface {
	// Name identifies the format, e.g. "wav"
	Name() string

	// Sniff reports whether header (up to ProbeSize bytes) looks like this format
	Sniff(header []byte) bool

	// Open parses the container starting at the current stream position
	Open(stream *MediaStream, packetFrames int) (Reader, error)
}

// Registry holds formats in probe order. Safe for concurrent use.
type Registry struct {
	mu           sync.RWMutex
	formats      []Format
	packetFrames int
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{packetFrames: DefaultPacketFrames}
}

// DefaultRegistry returns a registry with every built-in format.
// MP3 is last because its frame-sync check is the least specific.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(WAV())
	r.Register(AIFF())
	r.Register(FLAC())
	r.Register(Vorbis())
	r.Register(Opus())
	r.Register(MP3())
	return r
}

// Register appends a format to the probe order
func (r *Registry) Register(f Format) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.formats = append(r.formats, f)
}

// SetPacketFrames sets the packet size passed to readers that choose their own framing
func (r *Registry) SetPacketFrames(frames int) {
	if frames <= 0 {
		frames = DefaultPacketFrames
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.packetFrames = frames
}

// Names returns the registered format names in probe order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.formats))
	for i, f := range r.formats {
		names[i] = f.Name()
	}
	return names
}

// Probe detects the container of stream and opens a reader for it.
// If nothing matches, the error wraps ErrProbeFailed.
func (r *Registry) Probe(stream *MediaStream) (Reader, error) {
	r.mu.RLock()
	formats := append([]Format(nil), r.formats...)
	packetFrames := r.packetFrames
	r.mu.RUnlock()

	header, err := stream.Peek(ProbeSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: read header: %v", ErrProbeFailed, err)
	}
	if len(header) == 0 {
		return nil, fmt.Errorf("%w: empty source", ErrProbeFailed)
	}
	header = append([]byte(nil), header...)

	var openErrs []error
	for _, f := range formats {
		if !f.Sniff(header) {
			continue
		}

		reader, err := f.Open(stream, packetFrames)
		if err == nil {
			return reader, nil
		}
		openErrs = append(openErrs, fmt.Errorf("%s: %w", f.Name(), err))

		if err := stream.Rewind(); err != nil {
			return nil, fmt.Errorf("%w: rewind after %s: %v", ErrProbeFailed, f.Name(), err)
		}
	}

	if len(openErrs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrProbeFailed, errors.Join(openErrs...))
	}
	return nil, ErrProbeFailed
}
