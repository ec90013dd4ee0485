// ABOUTME: Beep speaker output backend
// ABOUTME: Feeds the render callback into the beep mixer as a stereo streamer
package output

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// beepChannels is fixed: the beep speaker mixes [2]float64 frames
const beepChannels = 2

// Beep output backend using the gopxl/beep speaker
type Beep struct {
	mu      sync.Mutex
	render  RenderFunc
	scratch []float32
	open    bool
}

// NewBeep creates a new Beep backend
func NewBeep() Backend {
	return &Beep{}
}

// Name returns "beep"
func (b *Beep) Name() string {
	return "beep"
}

// Open initializes the speaker and starts streaming from render.
// The speaker is always stereo; a channel request other than 2 is ignored.
func (b *Beep) Open(req StreamConfig, render RenderFunc, _ ErrorFunc) (StreamConfig, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.open {
		return StreamConfig{}, ErrAlreadyOpen
	}

	rate := req.SampleRate
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	sr := beep.SampleRate(rate)

	period := req.PeriodFrames
	if period <= 0 {
		period = sr.N(50 * time.Millisecond)
	}

	if err := speaker.Init(sr, period); err != nil {
		return StreamConfig{}, fmt.Errorf("%w: init speaker: %v", ErrDeviceUnavailable, err)
	}

	b.render = render
	b.scratch = make([]float32, period*beepChannels)
	b.open = true

	speaker.Play(beep.StreamerFunc(b.stream))

	slog.Debug("beep speaker started", "sample_rate", rate, "buffer_frames", period)
	return StreamConfig{
		SampleRate:   rate,
		Channels:     beepChannels,
		PeriodFrames: period,
		Format:       FormatFloat32,
	}, nil
}

// stream is the beep.Streamer body; it never ends
func (b *Beep) stream(samples [][2]float64) (int, bool) {
	for off := 0; off < len(samples); {
		frames := min(len(samples)-off, len(b.scratch)/beepChannels)
		buf := b.scratch[:frames*beepChannels]
		b.render(buf, beepChannels)
		for i := 0; i < frames; i++ {
			samples[off+i][0] = float64(buf[i*2])
			samples[off+i][1] = float64(buf[i*2+1])
		}
		off += frames
	}
	return len(samples), true
}

// Close clears the mixer and closes the speaker
func (b *Beep) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return nil
	}
	speaker.Clear()
	speaker.Close()
	b.open = false
	return nil
}
