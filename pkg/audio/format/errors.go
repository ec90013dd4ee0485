// ABOUTME: Errors returned while probing and reading containers
// ABOUTME: ErrCorruptPacket marks recoverable read failures
package format

import "errors"

var (
	// ErrProbeFailed means no registered format recognized the source
	ErrProbeFailed = errors.New("probe failed: unrecognized format")

	// ErrCorruptPacket means one packet was unreadable but reading may continue
	ErrCorruptPacket = errors.New("corrupt packet")
)
