// ABOUTME: Decode worker loop run by each session
// ABOUTME: Reads packets, decodes them and appends channel 0 to the ring
package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/Aze-M/cmp3-proj/pkg/audio/codec"
	"github.com/Aze-M/cmp3-proj/pkg/audio/format"
	"github.com/Aze-M/cmp3-proj/pkg/audio/resample"
	"github.com/Aze-M/cmp3-proj/pkg/audio/ring"
)

// pipeline holds everything one session worker owns
type pipeline struct {
	stream    *format.MediaStream
	reader    format.Reader
	decoder   codec.Decoder
	resampler *resample.Resampler // nil when no rate conversion is needed
	buffer    *ring.Buffer
	maxErrors int
	flush     bool // flush the ring once the previous worker is gone
	log       *slog.Logger
}

// close releases the decoder, reader and source
func (p *pipeline) close() {
	if err := p.decoder.Close(); err != nil {
		p.log.Warn("decoder close error", "error", err)
	}
	if err := p.reader.Close(); err != nil {
		p.log.Warn("reader close error", "error", err)
	}
	if err := p.stream.Close(); err != nil {
		p.log.Warn("source close error", "error", err)
	}
}

// run is the session worker. prev, if any, has been cancelled; it must exit
// before this worker writes so the ring only ever has one producer.
func (s *Session) run(p *pipeline, prev *Session) {
	defer close(s.done)
	defer p.close()

	if prev != nil {
		<-prev.Done()
	}
	if p.flush {
		p.buffer.Flush()
	}

	p.log.Info("decode session started",
		"format", s.format, "codec", s.track.Codec.String(), "output_rate", s.outputRate)

	var scratch []float32
	corrupt := 0
	trackID := s.track.ID

	for {
		if s.ctx.Err() != nil {
			s.finish(StateCancelled, nil)
			p.log.Info("decode session cancelled", "samples", s.samplesAppended.Load())
			return
		}

		pkt, err := p.reader.NextPacket()
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				s.finish(StateFinished, nil)
				p.log.Info("decode session finished",
					"packets", s.packetsDecoded.Load(), "skipped", s.packetsSkipped.Load(),
					"samples", s.samplesAppended.Load())
				return

			case errors.Is(err, format.ErrCorruptPacket):
				s.packetsSkipped.Add(1)
				corrupt++
				p.log.Debug("skipping corrupt packet", "error", err)
				if corrupt >= p.maxErrors {
					s.finish(StateFailed, fmt.Errorf("%w: %d in a row, last: %w", ErrTooManyCorruptPackets, corrupt, err))
					p.log.Error("decode session aborted", "error", err)
					return
				}
				continue

			default:
				s.finish(StateFailed, fmt.Errorf("read packet: %w", err))
				p.log.Error("decode session failed", "error", err)
				return
			}
		}
		corrupt = 0

		if pkt.TrackID != trackID {
			continue
		}
		s.packetsRead.Add(1)

		frame, err := p.decoder.Decode(pkt)
		if err != nil {
			s.packetsSkipped.Add(1)
			p.log.Debug("skipping undecodable packet", "error", err)
			continue
		}
		s.packetsDecoded.Add(1)

		samples := frame.Channel(0)
		if p.resampler != nil {
			scratch = p.resampler.Resample(scratch[:0], samples)
			samples = scratch
		}

		if err := p.buffer.WriteContext(s.ctx, samples); err != nil {
			s.finish(StateCancelled, nil)
			p.log.Info("decode session cancelled", "samples", s.samplesAppended.Load())
			return
		}
		s.samplesAppended.Add(uint64(len(samples)))
	}
}
