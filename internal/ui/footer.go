package ui

import (
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/crmx/internal/formatter"
	"github.com/oakwood-commons/crmx/internal/view"
)

// FooterModel represents the footer: key hints on the left and the view
// summary (page, total, sort, filters) on the right.
type FooterModel struct {
	NoColor bool
	Width   int
	Result  view.Result
	Sort    view.SortSpec
	Filter  view.FilterSpec
	Hidden  int
	Source  string
}

// NewFooterModel creates a new footer model
func NewFooterModel() FooterModel {
	return FooterModel{Width: 92}
}

// Summary returns the right-hand view summary.
func (m FooterModel) Summary() string {
	parts := []string{formatter.Footer(m.Result)}
	if m.Sort.Active() {
		parts = append(parts, "sort "+m.Sort.String())
	}
	if len(m.Filter) > 0 {
		parts = append(parts, "filter "+m.Filter.String())
	}
	if m.Hidden > 0 {
		parts = append(parts, "hidden "+strconv.Itoa(m.Hidden))
	}
	if m.Source != "" {
		parts = append(parts, m.Source)
	}
	return strings.Join(parts, " · ")
}

// View renders the footer line.
func (m FooterModel) View() string {
	keyStyle := lipgloss.NewStyle()
	textStyle := lipgloss.NewStyle()
	if !m.NoColor {
		th := CurrentTheme()
		keyStyle = keyStyle.Foreground(lipgloss.Color("15")).Background(lipgloss.Color("240")).Bold(true)
		textStyle = textStyle.Foreground(th.FooterFG)
	} else {
		// In no-color mode still highlight keys with true black on white
		keyStyle = keyStyle.Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#ffffff")).Bold(true)
	}

	var parts []string
	plainHints := 0
	for _, h := range footerHints() {
		parts = append(parts, keyStyle.Render(h[0]), textStyle.Render(h[1]))
		plainHints += runewidth.StringWidth(h[0]) + runewidth.StringWidth(h[1]) + 2
	}
	hints := strings.Join(parts, " ")

	summary := m.Summary()
	width := m.Width
	if width <= 0 {
		width = 92
	}
	room := width - plainHints - 2
	if room <= 0 {
		return hints
	}
	summary = runewidth.Truncate(summary, room, "…")
	gap := width - plainHints - runewidth.StringWidth(summary)
	if gap < 1 {
		gap = 1
	}
	return hints + strings.Repeat(" ", gap) + textStyle.Render(summary)
}

// SetWidth sets the width of the footer
func (m *FooterModel) SetWidth(width int) {
	m.Width = width
}
