// ABOUTME: Audio output package for playing audio
// ABOUTME: Provides the Backend interface, the stream Driver and playback Control
// Package output drives an audio device from a sample ring.
//
// A Backend opens the device and calls a RenderFunc from its real-time
// thread. The Driver implements that RenderFunc: it pops mono samples from a
// ring.Buffer, applies the Control's volume and pause state, and duplicates
// each sample across the frame's channels.
//
// Example:
//
//	backend, _ := output.NewBackend("malgo")
//	drv := output.NewDriver(backend, ring.New(0), output.NewControl(1.0))
//	cfg, err := drv.Start(output.StreamConfig{})
//	defer drv.Close()
package output
