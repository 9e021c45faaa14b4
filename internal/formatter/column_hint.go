package formatter

import "github.com/oakwood-commons/crmx/internal/record"

// ColumnHint provides display hints for one column of the columnar table.
type ColumnHint struct {
	// MaxWidth caps the column width (in characters). 0 = no cap.
	MaxWidth int

	// Priority controls column importance when shrinking.
	// Higher values resist shrinking; lower values shrink first.
	Priority int

	// Align controls text alignment: "right" or "left" (default).
	Align string
}

// HintFor derives display hints from a schema column: numeric kinds align
// right, the name-like text column resists shrinking, and datetimes never
// need more than their fixed layout.
func HintFor(col record.Column) ColumnHint {
	switch col.Hint {
	case record.HintNumeric, record.HintScore:
		return ColumnHint{Align: "right", Priority: 2}
	case record.HintCurrency:
		return ColumnHint{Align: "right", Priority: 3}
	case record.HintDatetime:
		return ColumnHint{MaxWidth: len(DateTimeLayout), Priority: 1}
	case record.HintEnum:
		return ColumnHint{MaxWidth: 16, Priority: 2}
	}
	if col.Field == "name" {
		return ColumnHint{Priority: 5}
	}
	return ColumnHint{Priority: 1}
}

// HintsFor returns one hint per column, in order.
func HintsFor(cols []record.Column) []ColumnHint {
	hints := make([]ColumnHint, len(cols))
	for i, c := range cols {
		hints[i] = HintFor(c)
	}
	return hints
}
