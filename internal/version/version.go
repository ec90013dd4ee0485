// ABOUTME: Version and product identification for cmp3
// ABOUTME: Version, Commit and BuildDate are overridden at link time with -ldflags -X
package version

import "fmt"

// Product identification
const (
	Product      = "cmp3"
	Manufacturer = "Aze-M"
)

// Build information, set during build
var (
	Version   = "0.1.0"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// String returns a one-line description like "cmp3 0.1.0 (commit abc, built 2026-01-01)"
func String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", Product, Version, Commit, BuildDate)
}
