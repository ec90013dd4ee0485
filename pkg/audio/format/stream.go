// ABOUTME: Buffered seekable wrapper around a media source
// ABOUTME: Supports header peeking for probing and tracks the absolute position
package format

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// streamBufferSize is the read-ahead buffer of a MediaStream
const streamBufferSize = 64 * 1024

// MediaSource is a seekable byte source such as an *os.File or *bytes.Reader
type MediaSource = io.ReadSeeker

// MediaStream is a buffered reader over a MediaSource that stays seekable.
// It is owned by one decode session.
type MediaStream struct {
	src    MediaSource
	r      *bufio.Reader
	start  int64 // source offset when the stream was created
	pos    int64 // absolute source offset of the next byte Read returns
	closed bool
}

// NewMediaStream wraps src. The current offset of src becomes the stream start.
func NewMediaStream(src MediaSource) *MediaStream {
	start, err := src.Seek(0, io.SeekCurrent)
	if err != nil {
		start = 0
	}
	return &MediaStream{
		src:   src,
		r:     bufio.NewReaderSize(src, streamBufferSize),
		start: start,
		pos:   start,
	}
}

// Read implements io.Reader. It fills p completely unless the source ends,
// so container readers that decode whole samples from one Read never see a
// sample split across the read-ahead buffer boundary.
func (s *MediaStream) Read(p []byte) (int, error) {
	n, err := io.ReadFull(s.r, p)
	s.pos += int64(n)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		// the tail is returned now and io.EOF on the next call
		return n, nil
	}
	return n, err
}

// Seek implements io.Seeker. Offsets are absolute source offsets.
func (s *MediaStream) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = s.pos + offset
	case io.SeekEnd:
		end, err := s.src.Seek(offset, io.SeekEnd)
		if err != nil {
			return s.pos, err
		}
		s.r.Reset(s.src)
		s.pos = end
		return end, nil
	default:
		return s.pos, fmt.Errorf("invalid whence: %d", whence)
	}

	if target < 0 {
		return s.pos, errors.New("negative position")
	}

	// Forward seeks inside the buffered window avoid touching the source
	if delta := target - s.pos; delta >= 0 && delta <= int64(s.r.Buffered()) {
		if _, err := s.r.Discard(int(delta)); err != nil {
			return s.pos, err
		}
		s.pos = target
		return target, nil
	}

	if _, err := s.src.Seek(target, io.SeekStart); err != nil {
		return s.pos, err
	}
	s.r.Reset(s.src)
	s.pos = target
	return target, nil
}

// Peek returns the next n bytes without consuming them. Fewer bytes are
// returned, together with an error, when the source is shorter.
func (s *MediaStream) Peek(n int) ([]byte, error) {
	return s.r.Peek(n)
}

// Rewind seeks back to the stream start
func (s *MediaStream) Rewind() error {
	_, err := s.Seek(s.start, io.SeekStart)
	return err
}

// Pos returns the absolute offset of the next byte to be read
func (s *MediaStream) Pos() int64 {
	return s.pos
}

// Close closes the source if it implements io.Closer. Calling Close twice is safe.
func (s *MediaStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if c, ok := s.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
