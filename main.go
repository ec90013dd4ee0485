// ABOUTME: Entry point for the cmp3 audio player
// ABOUTME: Hands control to the cobra command tree
package main

import "github.com/Aze-M/cmp3-proj/internal/cli"

func main() {
	cli.Execute()
}
