// ABOUTME: Bubbletea model for the player TUI
// ABOUTME: Polls engine status and maps keys to playback controls
package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Aze-M/cmp3-proj/pkg/engine"
)

// TickInterval is how often the model refreshes engine status
const TickInterval = 200 * time.Millisecond

// VolumeStep is the gain change per +/- key press
const VolumeStep = 0.05

// Player is the part of the engine the TUI drives
type Player interface {
	TogglePause() bool
	SetVolume(v float32)
	Volume() float32
	Flush()
	Stop()
	Status() engine.Status
}

// Model represents the TUI state
type Model struct {
	player Player
	file   string

	status  engine.Status
	stopped bool
	message string

	// Dimensions
	width  int
	height int
}

type tickMsg time.Time

// StatusMsg replaces the displayed status, mostly for tests and external pushes
type StatusMsg engine.Status

// Init starts the status ticker
func (m Model) Init() tea.Cmd {
	return tickEvery()
}

func tickEvery() tea.Cmd {
	return tea.Tick(TickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tickMsg:
		if m.player != nil {
			m.status = m.player.Status()
		}
		if m.finished() {
			return m, tea.Quit
		}
		return m, tickEvery()
	case StatusMsg:
		m.status = engine.Status(msg)
	}

	return m, nil
}

// finished reports whether the session is over and everything was played
func (m Model) finished() bool {
	s := m.status.Session
	if s == nil || s.State == engine.StateRunning {
		return false
	}
	return m.stopped || m.status.Buffered == 0
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ", "p":
		if m.player != nil {
			if m.player.TogglePause() {
				m.message = "paused"
			} else {
				m.message = "playing"
			}
		}
	case "+", "=", "up":
		m.adjustVolume(VolumeStep)
	case "-", "down":
		m.adjustVolume(-VolumeStep)
	case "f":
		if m.player != nil {
			m.player.Flush()
			m.message = "buffer flushed"
		}
	case "s":
		if m.player != nil {
			m.player.Stop()
			m.stopped = true
			m.message = "stopped"
		}
	}

	if m.player != nil {
		m.status = m.player.Status()
	}
	return m, nil
}

// adjustVolume moves the gain by delta, never below zero. There is no upper bound.
func (m *Model) adjustVolume(delta float32) {
	if m.player == nil {
		return
	}
	v := m.player.Volume() + delta
	if v < 0 {
		v = 0
	}
	m.player.SetVolume(v)
	m.message = fmt.Sprintf("volume %d%%", percent(v))
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

// View renders the TUI
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("cmp3"))
	b.WriteString("  ")
	b.WriteString(truncate(filepath.Base(m.file), 48))
	b.WriteString("\n\n")

	b.WriteString(m.renderStreamInfo())
	b.WriteString(m.renderControls())
	b.WriteString(m.renderStats())

	if m.message != "" {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(m.message))
		b.WriteString("\n")
	}

	b.WriteString(m.renderHelp())
	return b.String()
}

// renderStreamInfo renders the source and device formats
func (m Model) renderStreamInfo() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Source: "))
	if s := m.status.Session; s != nil {
		c := s.Track.Codec
		fmt.Fprintf(&b, "%s %s %dHz %s", s.Format, c.Codec, c.SampleRate, channelName(c.Channels))
		if s.OutputRate != c.SampleRate {
			fmt.Fprintf(&b, " -> %dHz", s.OutputRate)
		}
	} else {
		b.WriteString("none")
	}
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("Output: "))
	if m.status.Initialized {
		fmt.Fprintf(&b, "%s %dHz %s", m.status.Backend, m.status.Stream.SampleRate, channelName(m.status.Stream.Channels))
	} else {
		b.WriteString("not initialized")
	}
	b.WriteString("\n\n")

	return b.String()
}

// renderControls renders state, volume and buffer fill
func (m Model) renderControls() string {
	state := "Playing"
	switch {
	case m.stopped:
		state = "Stopped"
	case m.status.Paused:
		state = "Paused"
	case m.status.Session != nil && m.status.Session.State != engine.StateRunning && m.status.Buffered == 0:
		state = "Finished"
	}

	vol := percent(m.status.Volume)
	return fmt.Sprintf("%s %s\n%s [%s] %d%%\n%s [%s] %d/%d\n\n",
		headerStyle.Render("State: "), state,
		headerStyle.Render("Volume:"), renderBar(min(vol, 100), 100, 20), vol,
		headerStyle.Render("Buffer:"), renderBar(m.status.Buffered, m.status.Capacity, 20),
		m.status.Buffered, m.status.Capacity)
}

// renderStats renders session and driver counters
func (m Model) renderStats() string {
	d := m.status.Driver
	s := fmt.Sprintf("Callbacks: %d  Underruns: %d  Stream errors: %d\n",
		d.Callbacks, d.Underruns, d.StreamErrors)

	if sess := m.status.Session; sess != nil {
		s += fmt.Sprintf("Packets: %d decoded, %d skipped  Samples: %d  Session: %s\n",
			sess.PacketsDecoded, sess.PacketsSkipped, sess.SamplesAppended, sess.State)
		if sess.Err != nil {
			s += fmt.Sprintf("Error: %v\n", sess.Err)
		}
	}
	return s
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return dimStyle.Render("\nspace:Pause  +/-:Volume  f:Flush  s:Stop  q:Quit") + "\n"
}

// Utility functions
func renderBar(value, total, width int) string {
	if total <= 0 {
		return strings.Repeat("░", width)
	}
	filled := (value * width) / total
	filled = min(max(filled, 0), width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func percent(v float32) int {
	return int(v*100 + 0.5)
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

func channelName(channels int) string {
	switch channels {
	case 1:
		return "Mono"
	case 2:
		return "Stereo"
	default:
		return fmt.Sprintf("%dch", channels)
	}
}
