// ABOUTME: Playback device enumeration through malgo
// ABOUTME: Used by the devices command to show what the default backend sees
package output

import (
	"fmt"

	"github.com/gen2brain/malgo"
)

// DeviceInfo describes a playback device
type DeviceInfo struct {
	Name    string
	Default bool
	Formats []string // native formats, e.g. "F32 48000Hz 2ch"
}

// ListDevices returns the playback devices known to miniaudio
func ListDevices() ([]DeviceInfo, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: init malgo context: %v", ErrDeviceUnavailable, err)
	}
	defer releaseContext(ctx)

	infos, err := ctx.Devices(malgo.Playback)
	if err != nil {
		return nil, fmt.Errorf("enumerate playback devices: %w", err)
	}

	devices := make([]DeviceInfo, 0, len(infos))
	for i := range infos {
		info := &infos[i]
		d := DeviceInfo{
			Name:    info.Name(),
			Default: info.IsDefault != 0,
		}

		if full, err := ctx.DeviceInfo(malgo.Playback, info.ID, malgo.Shared); err == nil {
			for _, f := range full.Formats[:full.FormatCount] {
				d.Formats = append(d.Formats,
					fmt.Sprintf("%s %dHz %dch", formatName(f.Format), f.SampleRate, f.Channels))
			}
		}
		devices = append(devices, d)
	}
	return devices, nil
}
