package ui

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
)

// HelpModel represents the help overlay component
type HelpModel struct {
	Visible    bool
	NoColor    bool
	Width      int
	AboutTitle string
	AboutLines []string
}

// NewHelpModel creates a new help model
func NewHelpModel() HelpModel {
	return HelpModel{Width: 92}
}

// View renders the help overlay if visible
func (m HelpModel) View() string {
	if !m.Visible {
		return ""
	}

	keyStyle := lipgloss.NewStyle().PaddingLeft(1)
	valStyle := lipgloss.NewStyle()
	headingStyle := lipgloss.NewStyle().Bold(true)
	th := CurrentTheme()
	boxStyle := lipgloss.NewStyle().Border(borderForStyle(th.BorderStyle)).PaddingLeft(1).PaddingRight(1)
	if !m.NoColor {
		keyStyle = keyStyle.Foreground(th.HelpKey).Bold(true)
		valStyle = valStyle.Foreground(th.HelpValue)
		headingStyle = headingStyle.Foreground(th.HeaderFG)
		boxStyle = boxStyle.BorderForeground(th.SeparatorColor)
	} else {
		// In no-color mode still highlight key labels with true black on white
		keyStyle = keyStyle.Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#ffffff")).Bold(true)
	}

	var lines []string
	if title := strings.TrimSpace(m.AboutTitle); title != "" {
		lines = append(lines, headingStyle.Render(title))
	}
	for _, l := range m.AboutLines {
		lines = append(lines, valStyle.Render(l))
	}
	if len(lines) > 0 {
		lines = append(lines, "")
	}

	lines = append(lines, headingStyle.Render("Keys"))
	for _, row := range helpRows() {
		key := keyStyle.Render(fmt.Sprintf("%-8s", row[0]))
		lines = append(lines, key+" "+valStyle.Render(row[1]))
	}

	lines = append(lines, "", headingStyle.Render("Filters"))
	for _, row := range filterSyntaxRows() {
		key := keyStyle.Render(fmt.Sprintf("%-16s", row[0]))
		lines = append(lines, key+" "+valStyle.Render(row[1]))
	}

	content := strings.Join(lines, "\n")
	box := boxStyle.Render(content)
	// Constrain width so we do not overflow narrow terminals
	if m.Width > 0 && lipgloss.Width(box) > m.Width {
		box = boxStyle.Width(m.Width - 2).Render(content)
	}
	return box
}

func filterSyntaxRows() [][]string {
	return [][]string{
		{"text", "contains, case-insensitive"},
		{"=value", "equals"},
		{"<n >n <=n >=n", "compare numbers, money and dates"},
		{"low..high", "inclusive range"},
		{"a|b", "one of"},
		{"_ > 100000", "CEL expression on the column value"},
	}
}

// SetWidth sets the width of the help overlay
func (m *HelpModel) SetWidth(width int) {
	m.Width = width
}
