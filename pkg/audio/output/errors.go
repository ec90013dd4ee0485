// ABOUTME: Errors returned by output backends and the stream driver
// ABOUTME: Sentinels are matched with errors.Is by the engine
package output

import "errors"

var (
	// ErrDeviceUnavailable means no output device could be opened
	ErrDeviceUnavailable = errors.New("no output device available")

	// ErrUnsupportedSampleFormat means the device cannot take float32 samples
	ErrUnsupportedSampleFormat = errors.New("device does not support float32 samples")

	// ErrUnknownBackend means the configured backend name is not registered
	ErrUnknownBackend = errors.New("unknown output backend")

	// ErrAlreadyOpen means Open was called on a backend or driver that is running
	ErrAlreadyOpen = errors.New("output stream already open")

	// ErrStreamStopped is reported when the device stops the stream on its own
	ErrStreamStopped = errors.New("output stream stopped by device")
)
