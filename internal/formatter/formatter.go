// Package formatter renders a derived record view as a styled table, JSON,
// YAML, CSV or a tree, formatting each cell according to its column hint.
package formatter

import (
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/oakwood-commons/crmx/internal/record"
)

var (
	defaultHeaderFG   = lipgloss.Color("12")
	defaultHeaderBG   = lipgloss.Color("236")
	defaultKeyColor   = lipgloss.Color("14")
	defaultValueColor = lipgloss.Color("248")
	defaultSeparator  = lipgloss.Color("240")

	headerStyle    lipgloss.Style
	keyStyle       lipgloss.Style
	valueStyle     lipgloss.Style
	separatorStyle lipgloss.Style
)

// TableColors controls the rendered colors for the formatter table.
// Nil fields fall back to the defaults (ANSI 256 codes).
type TableColors struct {
	HeaderFG       color.Color
	HeaderBG       color.Color
	KeyColor       color.Color
	ValueColor     color.Color
	SeparatorColor color.Color
}

func orDefault(c, def color.Color) color.Color {
	if c == nil {
		return def
	}
	return c
}

// SetTableTheme overrides the package table styles.
func SetTableTheme(tc TableColors) {
	headerStyle = lipgloss.NewStyle().Bold(true).
		Foreground(orDefault(tc.HeaderFG, defaultHeaderFG)).
		Background(orDefault(tc.HeaderBG, defaultHeaderBG))
	keyStyle = lipgloss.NewStyle().Foreground(orDefault(tc.KeyColor, defaultKeyColor))
	valueStyle = lipgloss.NewStyle().Foreground(orDefault(tc.ValueColor, defaultValueColor))
	separatorStyle = lipgloss.NewStyle().Foreground(orDefault(tc.SeparatorColor, defaultSeparator))
}

//nolint:gochecknoinits // initialize default table theme for package consumers
func init() {
	SetTableTheme(TableColors{})
}

// DateTimeLayout is the display layout of datetime cells.
const DateTimeLayout = "2006-01-02 15:04"

var numberPrinter = message.NewPrinter(language.English)

// FormatCell renders a field value for display according to the column hint.
// Missing values render as an empty string.
func FormatCell(col record.Column, v any) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case float64:
		if col.Hint == record.HintCurrency {
			return formatCurrency(t)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case time.Time:
		return t.Format(DateTimeLayout)
	case string:
		return escapeScalarString(t)
	}
	return escapeScalarString(PlainValue(v))
}

// formatCurrency renders whole US dollars with thousands separators, e.g. "$120,000".
func formatCurrency(f float64) string {
	if f < 0 {
		return "-$" + numberPrinter.Sprintf("%.0f", -f)
	}
	return "$" + numberPrinter.Sprintf("%.0f", f)
}

// PlainValue renders a value without display decoration: numbers in their
// shortest form and timestamps in RFC 3339.
func PlainValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case time.Time:
		return t.Format(time.RFC3339)
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	}
	return fmt.Sprint(v)
}

// escapeScalarString flattens line breaks so table rows stay single-line.
func escapeScalarString(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.ReplaceAll(s, "\n", "\\n")
}

// truncate truncates a string to maxLen display cells and adds an ellipsis if needed.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	target := maxLen - 3
	suffix := "..."
	if maxLen < 3 {
		target = maxLen
		suffix = ""
	}
	var b strings.Builder
	width := 0
	for _, r := range s {
		rw := lipgloss.Width(string(r))
		if width+rw > target {
			break
		}
		b.WriteRune(r)
		width += rw
	}
	return b.String() + suffix
}

// getTerminalWidth returns the terminal width, or a default if detection fails.
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 120
	}
	return width
}

// padRight left-aligns s within width display cells.
func padRight(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return truncate(s, width)
	}
	return s + strings.Repeat(" ", width-w)
}

// padLeft right-aligns s within width display cells.
func padLeft(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return truncate(s, width)
	}
	return strings.Repeat(" ", width-w) + s
}
