// ABOUTME: Engine facade owning the output stream, sample ring and active session
// ABOUTME: Exposes decode, playback control and lifecycle operations
package engine

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/Aze-M/cmp3-proj/internal/logger"
	"github.com/Aze-M/cmp3-proj/pkg/audio"
	"github.com/Aze-M/cmp3-proj/pkg/audio/codec"
	"github.com/Aze-M/cmp3-proj/pkg/audio/format"
	"github.com/Aze-M/cmp3-proj/pkg/audio/output"
	"github.com/Aze-M/cmp3-proj/pkg/audio/resample"
	"github.com/Aze-M/cmp3-proj/pkg/audio/ring"
)

// Engine plays one decoded stream at a time through one output device
type Engine struct {
	cfg     Config
	formats *format.Registry
	codecs  *codec.Registry
	backend output.Backend
	buffer  *ring.Buffer
	control *output.Control
	log     *slog.Logger

	// mu serializes lifecycle calls; the render callback never takes it
	mu          sync.Mutex
	driver      *output.Driver
	stream      output.StreamConfig
	initialized bool
	session     *Session
}

// Status is a snapshot of the engine for display
type Status struct {
	Initialized bool
	Backend     string
	Stream      output.StreamConfig
	Paused      bool
	Volume      float32
	Buffered    int
	Capacity    int
	Flushed     uint64
	Driver      output.DriverStats
	Session     *SessionStats
}

// TrackInfo describes a probed source
type TrackInfo struct {
	Format string
	Tracks []audio.Track
}

var (
	instanceOnce sync.Once
	instance     *Engine
)

// Instance returns the process-wide engine, building it from DefaultConfig on
// first use. Every caller gets the same pointer.
func Instance() *Engine {
	instanceOnce.Do(func() {
		instance = New(DefaultConfig())
	})
	return instance
}

// New creates an engine. No device is opened until Initialize.
func New(cfg Config, opts ...Option) *Engine {
	cfg = cfg.withDefaults()

	e := &Engine{
		cfg:     cfg,
		formats: format.DefaultRegistry(),
		codecs:  codec.DefaultRegistry(),
		buffer:  ring.New(cfg.BufferSamples),
		control: output.NewControl(cfg.Volume),
		log:     logger.WithComponent("engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.formats.SetPacketFrames(cfg.PacketFrames)

	return e
}

// Initialize opens the output stream on the default device and starts the
// render callback. It fails with ErrAlreadyInitialized if already running.
func (e *Engine) Initialize() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.initialized {
		return ErrAlreadyInitialized
	}

	backend := e.backend
	if backend == nil {
		b, err := output.NewBackend(e.cfg.Backend)
		if err != nil {
			return err
		}
		backend = b
	}

	driver := output.NewDriver(backend, e.buffer, e.control)
	stream, err := driver.Start(output.StreamConfig{
		SampleRate:   e.cfg.SampleRate,
		Channels:     e.cfg.Channels,
		PeriodFrames: e.cfg.PeriodFrames,
	})
	if err != nil {
		return err
	}

	e.driver = driver
	e.stream = stream
	e.initialized = true
	e.log.Info("engine initialized", "backend", backend.Name(), "stream", stream.String())
	return nil
}

// Decode starts decoding src in the background and returns its session.
// The previous session, if any, is cancelled. Errors found before the worker
// starts are returned here and leave the ring untouched.
func (e *Engine) Decode(src format.MediaSource) (*Session, error) {
	return e.decode(src, false)
}

// DecodeFile opens path and decodes it
func (e *Engine) DecodeFile(path string) (*Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return e.decode(f, false)
}

// Play replaces whatever is playing with path: the ring is flushed once the
// previous session has stopped, then playback is unpaused.
func (e *Engine) Play(path string) (*Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	s, err := e.decode(f, true)
	if err != nil {
		return nil, err
	}
	// stale audio must not play while the old worker winds down
	e.buffer.Flush()
	e.Unpause()
	return s, nil
}

func (e *Engine) decode(src format.MediaSource, flush bool) (*Session, error) {
	stream := format.NewMediaStream(src)

	reader, err := e.formats.Probe(stream)
	if err != nil {
		stream.Close()
		return nil, err
	}

	tracks := reader.Tracks()
	if len(tracks) == 0 {
		reader.Close()
		stream.Close()
		return nil, fmt.Errorf("%w in %s source", ErrNoTrackFound, reader.Format())
	}
	track := tracks[0]

	dec, err := e.codecs.NewDecoder(track.Codec)
	if err != nil {
		reader.Close()
		stream.Close()
		return nil, fmt.Errorf("%w: %w", ErrDecoderConstructionFailed, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	outputRate := track.Codec.SampleRate
	var rs *resample.Resampler
	if e.initialized && e.cfg.Resample && e.stream.SampleRate > 0 && outputRate > 0 &&
		e.stream.SampleRate != outputRate {
		rs = resample.New(outputRate, e.stream.SampleRate, 1)
		outputRate = e.stream.SampleRate
	}

	s := newSession(reader.Format(), track, outputRate)
	p := &pipeline{
		stream:    stream,
		reader:    reader,
		decoder:   dec,
		resampler: rs,
		buffer:    e.buffer,
		maxErrors: e.cfg.MaxConsecutiveErrors,
		flush:     flush,
		log:       e.log.With("session", s.ID()),
	}

	prev := e.session
	e.session = s
	if prev != nil {
		prev.Cancel()
	}
	go s.run(p, prev)

	return s, nil
}

// Probe reports the format and tracks of path without decoding it
func (e *Engine) Probe(path string) (TrackInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return TrackInfo{}, fmt.Errorf("open %s: %w", path, err)
	}
	stream := format.NewMediaStream(f)
	defer stream.Close()

	reader, err := e.formats.Probe(stream)
	if err != nil {
		return TrackInfo{}, err
	}
	defer reader.Close()

	return TrackInfo{Format: reader.Format(), Tracks: reader.Tracks()}, nil
}

// Pause makes the output render silence without consuming samples
func (e *Engine) Pause() {
	e.control.Pause()
}

// Unpause resumes consumption
func (e *Engine) Unpause() {
	e.control.Unpause()
}

// TogglePause flips the pause state and returns the new value
func (e *Engine) TogglePause() bool {
	return e.control.TogglePause()
}

// Paused reports whether output is paused
func (e *Engine) Paused() bool {
	return e.control.Paused()
}

// SetVolume sets the linear gain applied at output. It is not clamped.
func (e *Engine) SetVolume(v float32) {
	e.control.SetVolume(v)
}

// Volume returns the current gain
func (e *Engine) Volume() float32 {
	return e.control.Volume()
}

// Flush discards every buffered sample. A running session keeps decoding.
func (e *Engine) Flush() {
	e.buffer.Flush()
}

// Stop cancels the active session, waits for it to exit and flushes the ring
func (e *Engine) Stop() {
	e.mu.Lock()
	s := e.session
	e.mu.Unlock()

	if s != nil {
		s.Cancel()
		<-s.Done()
	}
	e.buffer.Flush()
}

// Session returns the most recent session, or nil
func (e *Engine) Session() *Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

// Status returns a snapshot of the engine state
func (e *Engine) Status() Status {
	e.mu.Lock()
	st := Status{
		Initialized: e.initialized,
		Backend:     e.cfg.Backend,
		Stream:      e.stream,
	}
	if e.backend != nil {
		st.Backend = e.backend.Name()
	}
	driver, session := e.driver, e.session
	e.mu.Unlock()

	st.Paused, st.Volume = e.control.Snapshot()
	st.Buffered = e.buffer.Len()
	st.Capacity = e.buffer.Cap()
	st.Flushed = e.buffer.Flushed()
	if driver != nil {
		st.Driver = driver.Stats()
	}
	if session != nil {
		stats := session.Stats()
		st.Session = &stats
	}
	return st
}

// Close stops the active session and closes the output stream.
// The engine may be initialized again afterwards.
func (e *Engine) Close() error {
	e.Stop()

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return nil
	}
	e.initialized = false
	if err := e.driver.Close(); err != nil {
		return err
	}
	e.log.Info("engine closed")
	return nil
}
