package ui

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"
)

// Status types understood by StatusModel.
const (
	StatusInfo    = ""
	StatusError   = "error"
	StatusSuccess = "success"
)

// StatusModel represents the status bar component
type StatusModel struct {
	Message     string
	StatusType  string
	Busy        string // Spinner frame and label while a request is running
	CursorIndex int    // Cursor position on the page (1-based)
	TotalRows   int    // Rows on the page
	NoColor     bool
	Width       int
}

// NewStatusModel creates a new status model
func NewStatusModel() StatusModel {
	return StatusModel{Width: 92}
}

// Set replaces the transient message.
func (m *StatusModel) Set(message, statusType string) {
	m.Message = message
	m.StatusType = statusType
}

// Clear removes the transient message.
func (m *StatusModel) Clear() {
	m.Message = ""
	m.StatusType = StatusInfo
}

// View renders the status bar: the message (or busy indicator) on the left
// and the row position on the right.
func (m StatusModel) View() string {
	th := CurrentTheme()
	baseStyle := lipgloss.NewStyle()
	msgStyle := baseStyle
	if !m.NoColor {
		msgStyle = msgStyle.Foreground(th.StatusColor)
		switch m.StatusType {
		case StatusError:
			msgStyle = msgStyle.Foreground(th.StatusError)
		case StatusSuccess:
			msgStyle = msgStyle.Foreground(th.StatusSuccess)
		}
	}

	target := 92
	if m.Width > 0 {
		target = m.Width
	}

	left := m.Message
	if m.Busy != "" {
		left = m.Busy
		if m.Message != "" {
			left += "  " + m.Message
		}
	}
	right := ""
	if m.TotalRows > 0 && m.CursorIndex > 0 {
		right = fmt.Sprintf("%d/%d", m.CursorIndex, m.TotalRows)
	}

	room := target - runewidth.StringWidth(right) - 1
	if room < 1 {
		room = 1
	}
	left = runewidth.Truncate(left, room, "...")
	gap := target - runewidth.StringWidth(left) - runewidth.StringWidth(right)
	if gap < 1 {
		gap = 1
	}
	return msgStyle.Render(left) + strings.Repeat(" ", gap) + baseStyle.Render(right)
}

// SetWidth sets the width of the status bar
func (m *StatusModel) SetWidth(width int) {
	m.Width = width
}
