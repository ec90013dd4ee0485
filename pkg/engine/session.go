// ABOUTME: Decode session handle and statistics
// ABOUTME: A session is one cancellable decode worker feeding the sample ring
package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Aze-M/cmp3-proj/pkg/audio"
)

// Session states
const (
	StateRunning   = "running"
	StateFinished  = "finished"
	StateCancelled = "cancelled"
	StateFailed    = "failed"
)

// SessionStats is a snapshot of a session's progress
type SessionStats struct {
	ID              string
	State           string
	Format          string
	Track           audio.Track
	OutputRate      int // rate of the samples appended to the ring
	PacketsRead     uint64
	PacketsDecoded  uint64
	PacketsSkipped  uint64
	SamplesAppended uint64
	StartedAt       time.Time
	Err             error
}

// Session is the handle of one decode worker
type Session struct {
	id         uuid.UUID
	format     string
	track      audio.Track
	outputRate int
	startedAt  time.Time

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	packetsRead     atomic.Uint64
	packetsDecoded  atomic.Uint64
	packetsSkipped  atomic.Uint64
	samplesAppended atomic.Uint64

	mu    sync.Mutex
	state string
	err   error
}

func newSession(formatName string, track audio.Track, outputRate int) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		id:         uuid.New(),
		format:     formatName,
		track:      track,
		outputRate: outputRate,
		startedAt:  time.Now(),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
		state:      StateRunning,
	}
}

// ID returns the unique session identifier
func (s *Session) ID() string {
	return s.id.String()
}

// Track returns the track being decoded
func (s *Session) Track() audio.Track {
	return s.track
}

// Done is closed when the worker has exited and released its resources
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Cancel asks the worker to stop. It does not wait.
func (s *Session) Cancel() {
	s.cancel()
}

// Wait blocks until the worker exits and returns its error, if any.
// Cancellation and a normal end of stream return nil.
func (s *Session) Wait() error {
	<-s.done
	return s.Err()
}

// Err returns the error that ended the session
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// State returns one of the State constants
func (s *Session) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Stats returns a snapshot of the session counters
func (s *Session) Stats() SessionStats {
	s.mu.Lock()
	state, err := s.state, s.err
	s.mu.Unlock()

	return SessionStats{
		ID:              s.id.String(),
		State:           state,
		Format:          s.format,
		Track:           s.track,
		OutputRate:      s.outputRate,
		PacketsRead:     s.packetsRead.Load(),
		PacketsDecoded:  s.packetsDecoded.Load(),
		PacketsSkipped:  s.packetsSkipped.Load(),
		SamplesAppended: s.samplesAppended.Load(),
		StartedAt:       s.startedAt,
		Err:             err,
	}
}

func (s *Session) finish(state string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.err = err
}
