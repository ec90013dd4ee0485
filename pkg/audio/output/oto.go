// ABOUTME: Oto-based output backend
// ABOUTME: Pull-model float32 player reading from the render callback
package output

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// otoErrorPoll is how often the oto context is checked for device errors
const otoErrorPoll = 250 * time.Millisecond

// oto allows one context per process; it is created on first Open and
// suspended, not destroyed, on Close
var (
	otoShared    *oto.Context
	otoSharedCfg StreamConfig
	otoSharedMu  sync.Mutex
)

// sharedOtoContext returns the process oto context, creating it with cfg on
// first use. Later calls get the original configuration back.
func sharedOtoContext(cfg StreamConfig) (*oto.Context, StreamConfig, error) {
	otoSharedMu.Lock()
	defer otoSharedMu.Unlock()

	if otoShared != nil {
		if err := otoShared.Resume(); err != nil {
			return nil, StreamConfig{}, fmt.Errorf("%w: resume oto context: %v", ErrDeviceUnavailable, err)
		}
		return otoShared, otoSharedCfg, nil
	}

	op := &oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: cfg.Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   time.Duration(cfg.PeriodFrames) * time.Second / time.Duration(cfg.SampleRate),
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, StreamConfig{}, fmt.Errorf("%w: create oto context: %v", ErrDeviceUnavailable, err)
	}
	<-readyChan

	otoShared, otoSharedCfg = ctx, cfg
	return ctx, cfg, nil
}

// Oto output backend using the oto library
type Oto struct {
	mu       sync.Mutex
	otoCtx   *oto.Context
	player   *oto.Player
	render   RenderFunc
	channels int
	scratch  []float32
	done     chan struct{}
}

// NewOto creates a new Oto backend
func NewOto() Backend {
	return &Oto{}
}

// Name returns "oto"
func (o *Oto) Name() string {
	return "oto"
}

// Open creates the oto context and starts a player pulling from render
func (o *Oto) Open(req StreamConfig, render RenderFunc, onError ErrorFunc) (StreamConfig, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.otoCtx != nil {
		return StreamConfig{}, ErrAlreadyOpen
	}

	cfg := req.withDefaults(StreamConfig{
		SampleRate:   DefaultSampleRate,
		Channels:     DefaultChannels,
		PeriodFrames: DefaultPeriodFrames,
		Format:       FormatFloat32,
	})

	ctx, cfg, err := sharedOtoContext(cfg)
	if err != nil {
		return StreamConfig{}, err
	}

	o.otoCtx = ctx
	o.render = render
	o.channels = cfg.Channels
	o.scratch = make([]float32, cfg.PeriodFrames*cfg.Channels*4)
	o.done = make(chan struct{})

	o.player = ctx.NewPlayer(o)
	o.player.Play()

	go o.watch(ctx, onError, o.done)

	slog.Debug("oto player started", "sample_rate", cfg.SampleRate, "channels", cfg.Channels)
	return cfg, nil
}

// Read implements io.Reader for the oto player. It always fills p completely.
func (o *Oto) Read(p []byte) (int, error) {
	frameBytes := 4 * o.channels
	frames := len(p) / frameBytes

	for off := 0; off < frames; {
		chunk := min(frames-off, len(o.scratch)/o.channels)
		buf := o.scratch[:chunk*o.channels]
		o.render(buf, o.channels)
		putFloat32LE(p[off*frameBytes:], buf)
		off += chunk
	}
	clear(p[frames*frameBytes:])

	return len(p), nil
}

// watch reports the first context error to onError
func (o *Oto) watch(ctx *oto.Context, onError ErrorFunc, done <-chan struct{}) {
	ticker := time.NewTicker(otoErrorPoll)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := ctx.Err(); err != nil {
				if onError != nil {
					onError(err)
				}
				return
			}
		}
	}
}

// Close stops the player and suspends the context
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.done != nil {
		close(o.done)
		o.done = nil
	}
	if o.player != nil {
		if err := o.player.Close(); err != nil {
			slog.Warn("oto player close error", "error", err)
		}
		o.player = nil
	}
	if o.otoCtx != nil {
		ctx := o.otoCtx
		o.otoCtx = nil
		if err := ctx.Suspend(); err != nil {
			return fmt.Errorf("suspend oto context: %w", err)
		}
	}
	return nil
}
