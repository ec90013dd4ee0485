// ABOUTME: Decoder interface and codec registry
// ABOUTME: Maps codec identifiers to decoder constructors
package codec

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Aze-M/cmp3-proj/pkg/audio"
)

var (
	// ErrUnsupportedCodec means no decoder is registered for the codec
	ErrUnsupportedCodec = errors.New("unsupported codec")

	// ErrMalformedPacket means a packet could not be decoded
	ErrMalformedPacket = errors.New("malformed packet")
)

// Decoder decodes packets of one track into planar float32 frames
type Decoder interface {
	// Decode converts one packet to a frame of samples
	Decode(pkt audio.Packet) (audio.Frame, error)

	// Close releases decoder resources
	Close() error
}

// Factory constructs a decoder for the given parameters
type Factory func(params audio.CodecParams) (Decoder, error)

// Registry maps codecs to decoder factories. Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[audio.Codec]Factory
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{factories: make(map[audio.Codec]Factory)}
}

// DefaultRegistry returns a registry with every PCM codec registered
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, c := range []audio.Codec{
		audio.CodecPCMU8,
		audio.CodecPCMS16LE,
		audio.CodecPCMS24LE,
		audio.CodecPCMS32LE,
		audio.CodecPCMF32LE,
	} {
		r.Register(c, NewPCM)
	}
	return r
}

// Register adds or replaces the factory for a codec
func (r *Registry) Register(c audio.Codec, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[c] = factory
}

// NewDecoder creates a decoder for params
func (r *Registry) NewDecoder(params audio.CodecParams) (Decoder, error) {
	r.mu.RLock()
	factory, ok := r.factories[params.Codec]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCodec, params.Codec)
	}

	dec, err := factory(params)
	if err != nil {
		return nil, fmt.Errorf("create %s decoder: %w", params.Codec, err)
	}
	return dec, nil
}

// Codecs returns the registered codecs in sorted order
func (r *Registry) Codecs() []audio.Codec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	codecs := make([]audio.Codec, 0, len(r.factories))
	for c := range r.factories {
		codecs = append(codecs, c)
	}
	sort.Slice(codecs, func(i, j int) bool { return codecs[i] < codecs[j] })
	return codecs
}
