// ABOUTME: Errors returned by the engine facade
// ABOUTME: Device and probe sentinels are shared with the output and format packages
package engine

import (
	"errors"

	"github.com/Aze-M/cmp3-proj/pkg/audio/format"
	"github.com/Aze-M/cmp3-proj/pkg/audio/output"
)

var (
	// ErrDeviceUnavailable means no output device could be opened
	ErrDeviceUnavailable = output.ErrDeviceUnavailable

	// ErrUnsupportedSampleFormat means the device cannot take float32 samples
	ErrUnsupportedSampleFormat = output.ErrUnsupportedSampleFormat

	// ErrProbeFailed means the source is not in a recognized format
	ErrProbeFailed = format.ErrProbeFailed

	// ErrNoTrackFound means the container holds no decodable track
	ErrNoTrackFound = errors.New("no audio track found")

	// ErrDecoderConstructionFailed means the track's codec has no usable decoder
	ErrDecoderConstructionFailed = errors.New("decoder construction failed")

	// ErrAlreadyInitialized is returned by a second Initialize
	ErrAlreadyInitialized = errors.New("engine already initialized")

	// ErrTooManyCorruptPackets ends a session whose reader keeps failing
	ErrTooManyCorruptPackets = errors.New("too many consecutive corrupt packets")
)
