// ABOUTME: Playback control state shared between callers and the render callback
// ABOUTME: Pause flag and volume gain stored in atomics so the callback never blocks
package output

import (
	"math"
	"sync/atomic"
)

// Control holds the pause flag and the linear volume gain.
// Writers may be any goroutine; the render callback reads a snapshot once per call.
type Control struct {
	paused atomic.Bool
	volume atomic.Uint32 // math.Float32bits of the gain
}

// NewControl creates a control state with the given initial volume, not paused
func NewControl(volume float32) *Control {
	c := &Control{}
	c.SetVolume(volume)
	return c
}

// Pause stops consumption; the render callback writes silence
func (c *Control) Pause() {
	c.paused.Store(true)
}

// Unpause resumes consumption from where it stopped
func (c *Control) Unpause() {
	c.paused.Store(false)
}

// TogglePause flips the pause flag and returns the new value
func (c *Control) TogglePause() bool {
	for {
		old := c.paused.Load()
		if c.paused.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// Paused reports whether playback is paused
func (c *Control) Paused() bool {
	return c.paused.Load()
}

// SetVolume replaces the gain. No bounds are enforced: values above 1 amplify,
// negative values invert.
func (c *Control) SetVolume(volume float32) {
	c.volume.Store(math.Float32bits(volume))
}

// Volume returns the current gain
func (c *Control) Volume() float32 {
	return math.Float32frombits(c.volume.Load())
}

// Snapshot returns both values, each read exactly once
func (c *Control) Snapshot() (paused bool, volume float32) {
	return c.paused.Load(), math.Float32frombits(c.volume.Load())
}
