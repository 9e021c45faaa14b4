package record

import (
	"fmt"
	"strings"
)

// Hint is the renderer hint of a column. Derivation only depends on the Kind a hint maps to.
type Hint string

const (
	HintText     Hint = "text"
	HintNumeric  Hint = "numeric"
	HintCurrency Hint = "currency"
	HintDatetime Hint = "datetime"
	HintEnum     Hint = "enum"
	HintScore    Hint = "score"
)

// Kind is the comparable value type a field holds.
type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindTime:
		return "time"
	default:
		return "text"
	}
}

// Kind maps a renderer hint to its value kind.
func (h Hint) Kind() Kind {
	switch h {
	case HintNumeric, HintCurrency, HintScore:
		return KindNumber
	case HintDatetime:
		return KindTime
	default:
		return KindText
	}
}

// Valid reports whether h is a known hint.
func (h Hint) Valid() bool {
	switch h {
	case HintText, HintNumeric, HintCurrency, HintDatetime, HintEnum, HintScore:
		return true
	}
	return false
}

// Column describes one field of the record schema.
type Column struct {
	Field    string   `yaml:"field" json:"field"`
	Label    string   `yaml:"label" json:"label"`
	Sortable bool     `yaml:"sortable" json:"sortable"`
	Hint     Hint     `yaml:"hint" json:"hint"`
	Options  []string `yaml:"options,omitempty" json:"options,omitempty"`
}

// Title returns the label, falling back to the field name.
func (c Column) Title() string {
	if strings.TrimSpace(c.Label) != "" {
		return c.Label
	}
	return c.Field
}

// Kind returns the value kind of the column.
func (c Column) Kind() Kind {
	return c.Hint.Kind()
}

// Schema is the ordered set of columns every record is normalized against.
type Schema struct {
	Columns []Column `yaml:"columns" json:"columns"`
}

// Column looks up a column by field name.
func (s Schema) Column(field string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Field == field {
			return c, true
		}
	}
	return Column{}, false
}

// Fields returns field names in schema order.
func (s Schema) Fields() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Field
	}
	return out
}

// Validate rejects empty or duplicate fields and unknown hints.
func (s Schema) Validate() error {
	if len(s.Columns) == 0 {
		return fmt.Errorf("schema has no columns")
	}
	seen := make(map[string]bool, len(s.Columns))
	for i, c := range s.Columns {
		field := strings.TrimSpace(c.Field)
		if field == "" {
			return fmt.Errorf("column %d: field is required", i)
		}
		if field == IDField {
			return fmt.Errorf("column %d: %q is reserved for the record identifier", i, IDField)
		}
		if seen[field] {
			return fmt.Errorf("column %d: duplicate field %q", i, field)
		}
		seen[field] = true
		if !c.Hint.Valid() {
			return fmt.Errorf("column %q: unknown hint %q", field, c.Hint)
		}
	}
	return nil
}

// CustomerSchema is the default CRM customer schema.
func CustomerSchema() Schema {
	return Schema{Columns: []Column{
		{Field: "name", Label: "Name", Sortable: true, Hint: HintText},
		{Field: "age", Label: "Age", Sortable: true, Hint: HintNumeric},
		{Field: "gender", Label: "Gender", Hint: HintEnum, Options: []string{"male", "female", "other"}},
		{Field: "riskProfile", Label: "Risk Profile", Hint: HintEnum, Options: []string{"low", "medium", "high"}},
		{Field: "aum", Label: "AUM", Sortable: true, Hint: HintCurrency},
		{Field: "lastContact", Label: "Last Contact", Hint: HintDatetime},
		{Field: "relevance", Label: "Relevance", Sortable: true, Hint: HintScore},
	}}
}
