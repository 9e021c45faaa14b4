package formatter

import (
	"fmt"
	"sort"
	"strings"

	"charm.land/lipgloss/v2"
)

const (
	sepWidth    = 2
	minColWidth = 3
)

// ColumnarOptions configures columnar table rendering.
type ColumnarOptions struct {
	// NoColor disables color output
	NoColor bool

	// TotalWidth is the total available width. If 0, uses terminal width.
	TotalWidth int

	// RowNumberStyle controls how row numbers are displayed:
	//   "numbered" - 1, 2, 3 (default)
	//   "none"     - no row number column
	RowNumberStyle string

	// FirstRowNumber is the number shown for the first row, so later pages
	// keep counting from where the previous page stopped. 0 means 1.
	FirstRowNumber int

	// Hints holds one entry per column (see HintsFor). Nil disables hints.
	Hints []ColumnHint
}

// RenderColumnarTable renders rows under the given headers, shrinking columns
// to fit the available width.
func RenderColumnarTable(headers []string, rows [][]string, opts ColumnarOptions) string {
	if len(headers) == 0 {
		return ""
	}
	first := opts.FirstRowNumber
	if first <= 0 {
		first = 1
	}

	totalWidth := opts.TotalWidth
	if totalWidth <= 0 {
		totalWidth = getTerminalWidth()
	}

	showRowNum := opts.RowNumberStyle != "none"
	rowNumWidth := 0
	if showRowNum {
		rowNumWidth = len(fmt.Sprintf("%d", first+len(rows)-1)) + 2
	}
	availableWidth := totalWidth - rowNumWidth
	if showRowNum {
		availableWidth -= sepWidth
	}
	widths := calculateColumnWidths(headers, rows, availableWidth, opts.Hints)

	var b strings.Builder
	b.WriteString(renderHeader(headers, widths, rowNumWidth, showRowNum, opts.NoColor) + "\n")

	lineWidth := rowNumWidth
	if showRowNum {
		lineWidth += sepWidth
	}
	for i, w := range widths {
		lineWidth += w
		if i < len(widths)-1 {
			lineWidth += sepWidth
		}
	}
	separator := strings.Repeat("─", lineWidth)
	if !opts.NoColor {
		separator = separatorStyle.Render(separator)
	}
	b.WriteString(separator + "\n")

	for i, row := range rows {
		num := ""
		if showRowNum {
			num = fmt.Sprintf("%d", first+i)
		}
		b.WriteString(renderDataRow(num, row, widths, rowNumWidth, opts.NoColor, opts.Hints) + "\n")
	}
	return b.String()
}

func calculateColumnWidths(headers []string, rows [][]string, availableWidth int, hints []ColumnHint) []int {
	numCols := len(headers)
	widths := make([]int, numCols)
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, val := range row {
			if i < numCols {
				widths[i] = max(widths[i], lipgloss.Width(val))
			}
		}
	}

	// MaxWidth caps apply before any shrinking, but never below the header.
	for i := range widths {
		if i < len(hints) && hints[i].MaxWidth > 0 && widths[i] > hints[i].MaxWidth {
			widths[i] = max(hints[i].MaxWidth, lipgloss.Width(headers[i]))
		}
	}

	usableWidth := availableWidth - (numCols-1)*sepWidth
	total := 0
	for _, w := range widths {
		total += w
	}
	if total > usableWidth && usableWidth > 0 {
		widths = shrinkByPriority(widths, usableWidth, hints)
	}
	return widths
}

// shrinkByPriority reduces column widths to fit within usableWidth by shrinking
// lowest-priority columns first. Columns without a hint have priority 0.
func shrinkByPriority(widths []int, usableWidth int, hints []ColumnHint) []int {
	total := 0
	for _, w := range widths {
		total += w
	}
	excess := total - usableWidth
	if excess <= 0 {
		return widths
	}

	order := make([]int, len(widths))
	for i := range order {
		order[i] = i
	}
	priority := func(i int) int {
		if i < len(hints) {
			return hints[i].Priority
		}
		return 0
	}
	sort.SliceStable(order, func(a, b int) bool {
		return priority(order[a]) < priority(order[b])
	})

	for _, idx := range order {
		if excess <= 0 {
			break
		}
		shrinkable := widths[idx] - minColWidth
		if shrinkable <= 0 {
			continue
		}
		shrink := min(shrinkable, excess)
		widths[idx] -= shrink
		excess -= shrink
	}
	return widths
}

func renderHeader(headers []string, widths []int, rowNumWidth int, showRowNum, noColor bool) string {
	parts := make([]string, 0, len(headers)+1)
	if showRowNum {
		h := padRight("#", rowNumWidth)
		if !noColor {
			h = headerStyle.Render(h)
		}
		parts = append(parts, h)
	}
	for i, col := range headers {
		h := padRight(col, widths[i])
		if !noColor {
			h = headerStyle.Render(h)
		}
		parts = append(parts, h)
	}
	return strings.Join(parts, strings.Repeat(" ", sepWidth))
}

func renderDataRow(num string, values []string, widths []int, rowNumWidth int, noColor bool, hints []ColumnHint) string {
	parts := make([]string, 0, len(widths)+1)
	if num != "" {
		n := padRight(num, rowNumWidth)
		if !noColor {
			n = keyStyle.Render(n)
		}
		parts = append(parts, n)
	}
	for i, w := range widths {
		val := ""
		if i < len(values) {
			val = values[i]
		}
		var cell string
		if i < len(hints) && hints[i].Align == "right" {
			cell = padLeft(truncate(val, w), w)
		} else {
			cell = padRight(truncate(val, w), w)
		}
		if !noColor {
			cell = valueStyle.Render(cell)
		}
		parts = append(parts, cell)
	}
	return strings.Join(parts, strings.Repeat(" ", sepWidth))
}
