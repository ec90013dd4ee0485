// ABOUTME: Malgo-based output backend using miniaudio
// ABOUTME: Default device, float32 stream, device enumeration
package output

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
)

// Malgo output backend using the malgo/miniaudio library
type Malgo struct {
	mu       sync.Mutex
	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device
	config   StreamConfig
	render   RenderFunc
	scratch  []float32
	closing  atomic.Bool
}

// NewMalgo creates a new Malgo backend
func NewMalgo() Backend {
	return &Malgo{}
}

// Name returns "malgo"
func (m *Malgo) Name() string {
	return "malgo"
}

// Open starts a float32 playback stream on the default device
func (m *Malgo) Open(req StreamConfig, render RenderFunc, onError ErrorFunc) (StreamConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device != nil {
		return m.config, ErrAlreadyOpen
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return StreamConfig{}, fmt.Errorf("%w: init malgo context: %v", ErrDeviceUnavailable, err)
	}

	native, err := defaultPlaybackFormat(ctx)
	if err != nil {
		releaseContext(ctx)
		return StreamConfig{}, err
	}

	cfg := req.withDefaults(native)
	cfg.Format = FormatFloat32

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = uint32(cfg.Channels)
	deviceConfig.SampleRate = uint32(cfg.SampleRate)
	deviceConfig.PeriodSizeInFrames = uint32(cfg.PeriodFrames)
	deviceConfig.Alsa.NoMMap = 1

	m.render = render
	m.config = cfg
	m.scratch = make([]float32, cfg.PeriodFrames*cfg.Channels*4)
	m.closing.Store(false)

	callbacks := malgo.DeviceCallbacks{
		Data: func(pOutput, _ []byte, frameCount uint32) {
			m.dataCallback(pOutput, frameCount)
		},
		Stop: func() {
			if !m.closing.Load() && onError != nil {
				onError(ErrStreamStopped)
			}
		},
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, callbacks)
	if err != nil {
		releaseContext(ctx)
		return StreamConfig{}, fmt.Errorf("%w: init playback device: %v", ErrDeviceUnavailable, err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		releaseContext(ctx)
		return StreamConfig{}, fmt.Errorf("%w: start device: %v", ErrDeviceUnavailable, err)
	}

	m.malgoCtx = ctx
	m.device = device

	slog.Debug("malgo device started",
		"sample_rate", cfg.SampleRate, "channels", cfg.Channels, "format", formatName(malgo.FormatF32))

	return cfg, nil
}

// dataCallback is called by malgo to fill the device buffer
func (m *Malgo) dataCallback(pOutput []byte, frameCount uint32) {
	n := int(frameCount) * m.config.Channels
	if n > len(m.scratch) {
		// device asked for more than its period; render in pieces
		for off := 0; off < n; {
			chunk := min(len(m.scratch), n-off)
			chunk -= chunk % m.config.Channels
			m.render(m.scratch[:chunk], m.config.Channels)
			putFloat32LE(pOutput[off*4:], m.scratch[:chunk])
			off += chunk
		}
		return
	}

	buf := m.scratch[:n]
	m.render(buf, m.config.Channels)
	putFloat32LE(pOutput, buf)
}

// Close stops the device and releases the malgo context
func (m *Malgo) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closing.Store(true)
	if m.device != nil {
		if err := m.device.Stop(); err != nil {
			slog.Warn("malgo device stop error", "error", err)
		}
		m.device.Uninit()
		m.device = nil
	}
	if m.malgoCtx != nil {
		releaseContext(m.malgoCtx)
		m.malgoCtx = nil
	}
	return nil
}

// defaultPlaybackFormat looks up the default playback device and its preferred
// format. Devices that list native formats must include float32.
func defaultPlaybackFormat(ctx *malgo.AllocatedContext) (StreamConfig, error) {
	def := StreamConfig{
		SampleRate:   DefaultSampleRate,
		Channels:     DefaultChannels,
		PeriodFrames: DefaultPeriodFrames,
		Format:       FormatFloat32,
	}

	infos, err := ctx.Devices(malgo.Playback)
	if err != nil {
		return def, fmt.Errorf("%w: enumerate devices: %v", ErrDeviceUnavailable, err)
	}
	if len(infos) == 0 {
		return def, ErrDeviceUnavailable
	}

	chosen := infos[0]
	for _, info := range infos {
		if info.IsDefault != 0 {
			chosen = info
			break
		}
	}

	full, err := ctx.DeviceInfo(malgo.Playback, chosen.ID, malgo.Shared)
	if err != nil {
		// backend cannot describe the device; let miniaudio negotiate
		return def, nil
	}

	formats := full.Formats[:full.FormatCount]
	if len(formats) == 0 {
		return def, nil
	}

	f32 := false
	for _, f := range formats {
		if f.Format == malgo.FormatF32 {
			f32 = true
			break
		}
	}
	if !f32 {
		return def, fmt.Errorf("%w: %s native format is %s",
			ErrUnsupportedSampleFormat, full.Name(), formatName(formats[0].Format))
	}

	if formats[0].SampleRate > 0 {
		def.SampleRate = int(formats[0].SampleRate)
	}
	if formats[0].Channels > 0 {
		def.Channels = int(formats[0].Channels)
	}
	return def, nil
}

func releaseContext(ctx *malgo.AllocatedContext) {
	if err := ctx.Uninit(); err != nil {
		slog.Warn("malgo context uninit error", "error", err)
	}
	ctx.Free()
}

// formatName returns human-readable format name
func formatName(format malgo.FormatType) string {
	switch format {
	case malgo.FormatU8:
		return "U8"
	case malgo.FormatS16:
		return "S16"
	case malgo.FormatS24:
		return "S24"
	case malgo.FormatS32:
		return "S32"
	case malgo.FormatF32:
		return "F32"
	default:
		return fmt.Sprintf("Unknown(%d)", format)
	}
}
