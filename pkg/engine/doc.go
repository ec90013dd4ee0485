// ABOUTME: Streaming playback engine package
// ABOUTME: Ties format probing, decoding, the sample ring and the output driver together
// Package engine plays audio files through a real-time output device.
//
// An Engine owns one output stream and one sample ring. Decode starts a
// background session that probes the source, decodes its first track and
// appends channel 0 to the ring; the output driver drains the ring from the
// device callback. Pause, volume and flush take effect at the next callback.
//
// Example:
//
//	eng := engine.New(engine.DefaultConfig())
//	if err := eng.Initialize(); err != nil {
//		return err
//	}
//	defer eng.Close()
//
//	session, err := eng.Play("song.flac")
//	eng.SetVolume(0.5)
//	<-session.Done()
//
// Instance returns a lazily built process-wide engine for callers that
// cannot pass one around.
package engine
