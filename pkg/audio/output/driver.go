// ABOUTME: Stream driver connecting the sample ring to a device callback
// ABOUTME: Pops mono samples, applies volume and duplicates them across channels
package output

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"github.com/Aze-M/cmp3-proj/internal/logger"
	"github.com/Aze-M/cmp3-proj/pkg/audio/ring"
)

// renderBlock is the number of samples pulled from the ring per inner loop
const renderBlock = 256

// DriverStats are counters maintained by the render callback
type DriverStats struct {
	Callbacks    uint64
	Underruns    uint64 // callbacks that ran out of samples
	StreamErrors uint64
	Rendered     uint64 // mono samples taken from the ring
}

// Driver owns the output stream and implements the render callback
type Driver struct {
	backend Backend
	buffer  *ring.Buffer
	control *Control
	log     *slog.Logger

	mu     sync.Mutex
	config StreamConfig
	open   bool

	callbacks    atomic.Uint64
	underruns    atomic.Uint64
	streamErrors atomic.Uint64
	rendered     atomic.Uint64
	lastErr      atomic.Pointer[error]
}

// NewDriver creates a driver that reads from buffer under control
func NewDriver(backend Backend, buffer *ring.Buffer, control *Control) *Driver {
	return &Driver{
		backend: backend,
		buffer:  buffer,
		control: control,
		log:     logger.WithComponent("output").With("backend", backend.Name()),
	}
}

// Start opens the device stream. The returned config is what the device accepted.
func (d *Driver) Start(req StreamConfig) (StreamConfig, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.open {
		return d.config, ErrAlreadyOpen
	}

	cfg, err := d.backend.Open(req, d.Render, d.reportError)
	if err != nil {
		return StreamConfig{}, fmt.Errorf("open %s stream: %w", d.backend.Name(), err)
	}

	d.config = cfg
	d.open = true
	d.log.Info("output stream started", "config", cfg.String())
	return cfg, nil
}

// Render fills out with frames of the current mono stream.
//
// Pause and volume are sampled once per call. Every frame gets one sample from
// the ring, scaled by volume and written to all of its channels. When the ring
// runs dry the rest of the buffer is silence. Render never blocks or allocates.
func (d *Driver) Render(out []float32, channels int) {
	d.callbacks.Add(1)
	paused, volume := d.control.Snapshot()

	if channels < 1 {
		channels = 1
	}
	if paused {
		clear(out)
		return
	}

	var block [renderBlock]float32
	frames := len(out) / channels
	pos := 0

	for done := 0; done < frames; {
		want := min(frames-done, renderBlock)
		n := d.buffer.Read(block[:want])

		for k := 0; k < n; k++ {
			s := block[k] * volume
			for c := 0; c < channels; c++ {
				out[pos+c] = s
			}
			pos += channels
		}
		done += n

		if n < want {
			d.underruns.Add(1)
			break
		}
	}

	d.rendered.Add(uint64(pos / channels))
	clear(out[pos:])
}

// reportError is handed to the backend for asynchronous stream errors
func (d *Driver) reportError(err error) {
	d.streamErrors.Add(1)
	d.lastErr.Store(&err)
	d.log.Error("output stream error", "error", err)
}

// Config returns the negotiated stream configuration
func (d *Driver) Config() StreamConfig {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.config
}

// Stats returns a snapshot of the callback counters
func (d *Driver) Stats() DriverStats {
	return DriverStats{
		Callbacks:    d.callbacks.Load(),
		Underruns:    d.underruns.Load(),
		StreamErrors: d.streamErrors.Load(),
		Rendered:     d.rendered.Load(),
	}
}

// LastError returns the most recent asynchronous stream error, if any
func (d *Driver) LastError() error {
	if p := d.lastErr.Load(); p != nil {
		return *p
	}
	return nil
}

// Close stops the device stream
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open {
		return nil
	}
	d.open = false
	if err := d.backend.Close(); err != nil {
		return fmt.Errorf("close %s stream: %w", d.backend.Name(), err)
	}
	d.log.Info("output stream closed")
	return nil
}

// putFloat32LE encodes samples into dst as little-endian IEEE 754 floats
func putFloat32LE(dst []byte, samples []float32) {
	for i, s := range samples {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(s))
	}
}
