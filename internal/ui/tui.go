// ABOUTME: TUI initialization and control
// ABOUTME: Wraps bubbletea program for the player UI
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// NewModel creates a new TUI model for the file being played
func NewModel(player Player, file string) Model {
	m := Model{
		player: player,
		file:   file,
	}
	if player != nil {
		m.status = player.Status()
	}
	return m
}

// Run starts the TUI and blocks until the user quits or playback ends
func Run(player Player, file string) error {
	p := tea.NewProgram(NewModel(player, file), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
