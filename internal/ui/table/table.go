// Package table wraps the bubbles table with typed rows, a selected column
// and width fitting, so the record grid never deals with raw string rows.
package table

import (
	"fmt"
	"image/color"

	bubtable "charm.land/bubbles/v2/table"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"
)

// Re-export common table types so callers can construct columns/rows without
// importing bubbles directly.
type Column = bubtable.Column
type Row = bubtable.Row

const (
	minColumnWidth = 3
	columnGap      = 2
	ellipsis       = "…"
)

// Model is a generic table component that displays any row type.
//
// Type parameter V is the row data type (for the record grid, view.Row).
type Model[V any] struct {
	table   bubtable.Model
	styles  bubtable.Styles
	rows    []V
	columns []Column
	// natural holds the column titles before selection markers are added.
	natural []Column

	toRow func(V) Row

	selectedCol int

	width   int
	height  int
	focused bool
	noColor bool

	headerFG   color.Color
	headerBG   color.Color
	selectedFG color.Color
	selectedBG color.Color
}

// NewModel creates a new table model. toRow converts a value to its cells,
// one per column.
func NewModel[V any](columns []Column, toRow func(V) Row) *Model[V] {
	t := bubtable.New(
		bubtable.WithColumns(columns),
		bubtable.WithFocused(true),
		bubtable.WithHeight(5),
	)

	s := bubtable.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Bold(true).
		Align(lipgloss.Left).
		PaddingLeft(0).
		PaddingRight(columnGap)
	s.Selected = s.Selected.
		PaddingLeft(0).
		PaddingRight(0)
	s.Cell = lipgloss.NewStyle().
		Align(lipgloss.Left).
		PaddingLeft(0).
		PaddingRight(columnGap)
	t.SetStyles(s)

	m := &Model[V]{
		table:   t,
		styles:  s,
		rows:    []V{},
		toRow:   toRow,
		width:   80,
		height:  10,
		focused: true,
	}
	m.SetColumns(columns)
	return m
}

// SetRows replaces the displayed rows. The cursor is kept when it is still
// in range and reset to the first row otherwise.
func (m *Model[V]) SetRows(rows []V) {
	m.rows = rows
	m.refreshRows()
	if m.Cursor() >= len(m.rows) {
		m.SetCursor(0)
	}
}

func (m *Model[V]) refreshRows() {
	tableRows := make([]Row, len(m.rows))
	for i, v := range m.rows {
		cells := m.toRow(v)
		out := make(Row, len(m.columns))
		for j := range m.columns {
			if j < len(cells) {
				out[j] = runewidth.Truncate(cells[j], m.columns[j].Width, ellipsis)
			}
		}
		tableRows[i] = out
	}
	m.table.SetRows(tableRows)
}

// SetColumns updates the table columns. The selected column is clamped to
// the new column count.
func (m *Model[V]) SetColumns(columns []Column) {
	m.natural = append([]Column(nil), columns...)
	if m.selectedCol >= len(columns) {
		m.selectedCol = max(len(columns)-1, 0)
	}
	m.applyColumns()
}

func (m *Model[V]) applyColumns() {
	cols := make([]Column, len(m.natural))
	copy(cols, m.natural)
	for i := range cols {
		if i == m.selectedCol && m.focused && len(cols) > 1 {
			cols[i].Title = "›" + cols[i].Title
		}
		cols[i].Title = runewidth.Truncate(cols[i].Title, cols[i].Width, ellipsis)
	}
	m.columns = cols
	// Rows must shrink before columns so bubbles never renders a stale row
	// against the new header.
	cursor := m.table.Cursor()
	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.refreshRows()
	if cursor > 0 && cursor < len(m.rows) {
		m.table.SetCursor(cursor)
	}
	m.applyColorScheme()
}

// Columns returns the displayed columns.
func (m *Model[V]) Columns() []Column {
	return m.columns
}

// Rows returns the current rows.
func (m *Model[V]) Rows() []V {
	return m.rows
}

// SelectedColumn returns the index of the selected column.
func (m *Model[V]) SelectedColumn() int {
	return m.selectedCol
}

// SelectColumn moves the column selection, clamped to the column range.
func (m *Model[V]) SelectColumn(i int) {
	if len(m.natural) == 0 {
		m.selectedCol = 0
		return
	}
	m.selectedCol = min(max(i, 0), len(m.natural)-1)
	m.applyColumns()
}

// MoveColumn shifts the column selection by delta.
func (m *Model[V]) MoveColumn(delta int) {
	m.SelectColumn(m.selectedCol + delta)
}

// Cursor returns the current cursor position.
func (m *Model[V]) Cursor() int {
	return m.table.Cursor()
}

// SetCursor sets the cursor position.
func (m *Model[V]) SetCursor(pos int) {
	m.table.SetCursor(pos)
}

// SelectedRow returns the currently selected row value, or nil if no rows.
func (m *Model[V]) SelectedRow() *V {
	cursor := m.Cursor()
	if cursor < 0 || cursor >= len(m.rows) {
		return nil
	}
	return &m.rows[cursor]
}

// SetSize sets the table dimensions.
func (m *Model[V]) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetWidth(width)
	m.table.SetHeight(height)
}

// Focus sets the table focus state.
func (m *Model[V]) Focus() {
	m.focused = true
	m.table.Focus()
	m.applyColumns()
}

// Blur removes focus from the table.
func (m *Model[V]) Blur() {
	m.focused = false
	m.table.Blur()
	m.applyColumns()
}

// Focused returns true if the table has focus.
func (m *Model[V]) Focused() bool {
	return m.focused
}

// SetNoColor enables/disables color output.
func (m *Model[V]) SetNoColor(noColor bool) {
	m.noColor = noColor
	m.applyColorScheme()
}

// SetColors sets custom theme colors.
func (m *Model[V]) SetColors(headerFG, headerBG, selectedFG, selectedBG color.Color) {
	m.headerFG = headerFG
	m.headerBG = headerBG
	m.selectedFG = selectedFG
	m.selectedBG = selectedBG
	m.applyColorScheme()
}

func (m *Model[V]) applyColorScheme() {
	s := m.styles

	if m.noColor {
		s.Header = s.Header.UnsetForeground().UnsetBackground()
		s.Selected = s.Selected.UnsetForeground().UnsetBackground().Reverse(true)
		s.Cell = s.Cell.UnsetForeground().UnsetBackground()
	} else {
		if m.headerFG != nil {
			s.Header = s.Header.Foreground(m.headerFG)
		}
		if m.headerBG != nil {
			s.Header = s.Header.Background(m.headerBG)
		}
		if m.selectedFG != nil {
			s.Selected = s.Selected.Foreground(m.selectedFG)
		}
		if m.selectedBG != nil {
			s.Selected = s.Selected.Background(m.selectedBG)
		}
	}

	m.table.SetStyles(s)
	m.styles = s
}

// Update handles messages and updates the table state.
func (m *Model[V]) Update(msg tea.Msg) (*Model[V], tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the table to a string.
func (m *Model[V]) View() string {
	return m.table.View()
}

// Height returns the rendered height of the table (including header).
func (m *Model[V]) Height() int {
	return lipgloss.Height(m.View())
}

// Width returns the rendered width of the table.
func (m *Model[V]) Width() int {
	return lipgloss.Width(m.View())
}

// String returns a string representation for debugging.
func (m *Model[V]) String() string {
	return fmt.Sprintf("Table[rows=%d, cols=%d, cursor=%d, col=%d]",
		len(m.rows), len(m.columns), m.Cursor(), m.selectedCol)
}

// FitWidths sizes columns to their natural content widths and shrinks the
// widest ones until the total, gaps included, fits in total. No column goes
// below its minimum width.
func FitWidths(natural []int, total int) []int {
	widths := make([]int, len(natural))
	sum := 0
	for i, w := range natural {
		widths[i] = max(w, minColumnWidth)
		sum += widths[i] + columnGap
	}
	for sum > total {
		widest := -1
		for i, w := range widths {
			if w > minColumnWidth && (widest < 0 || w > widths[widest]) {
				widest = i
			}
		}
		if widest < 0 {
			break
		}
		widths[widest]--
		sum--
	}
	return widths
}

// TextWidth returns the display width of s in terminal cells.
func TextWidth(s string) int {
	return runewidth.StringWidth(s)
}
