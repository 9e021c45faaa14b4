// Package view derives the rendered page of a record grid from the current
// rows and one immutable view configuration.
package view

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultPageSize is used when a page size is zero or negative.
const DefaultPageSize = 10

// Direction is the sort direction of the active sort.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// ParseDirection accepts asc/ascending and desc/descending, case-insensitively.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return Ascending, fmt.Errorf("invalid sort direction %q (expected asc or desc)", s)
}

// SortSpec is at most one active (field, direction) pair. The zero value means
// insertion order.
type SortSpec struct {
	Field     string
	Direction Direction
}

// Active reports whether a sort field is set.
func (s SortSpec) Active() bool {
	return s.Field != ""
}

// Toggle cycles the sort for field: a new field starts ascending, ascending
// becomes descending, and descending clears the sort.
func (s SortSpec) Toggle(field string) SortSpec {
	if field == "" {
		return SortSpec{}
	}
	if s.Field != field {
		return SortSpec{Field: field, Direction: Ascending}
	}
	if s.Direction == Ascending {
		return SortSpec{Field: field, Direction: Descending}
	}
	return SortSpec{}
}

func (s SortSpec) String() string {
	if !s.Active() {
		return ""
	}
	return s.Field + ":" + s.Direction.String()
}

// ParseSort parses "field[:asc|desc]". An empty string yields no sort.
func ParseSort(text string) (SortSpec, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return SortSpec{}, nil
	}
	field, dir, _ := strings.Cut(text, ":")
	field = strings.TrimSpace(field)
	if field == "" {
		return SortSpec{}, fmt.Errorf("invalid sort %q: missing field", text)
	}
	d, err := ParseDirection(dir)
	if err != nil {
		return SortSpec{}, err
	}
	return SortSpec{Field: field, Direction: d}, nil
}

// FilterSpec maps a field to the predicate its values must satisfy. All
// predicates must hold for a row to pass. Methods return new values.
type FilterSpec map[string]Predicate

// With returns a copy with field constrained by p. A nil predicate removes the field.
func (f FilterSpec) With(field string, p Predicate) FilterSpec {
	if p == nil {
		return f.Without(field)
	}
	out := make(FilterSpec, len(f)+1)
	for k, v := range f {
		out[k] = v
	}
	out[field] = p
	return out
}

// Without returns a copy with no predicate on field.
func (f FilterSpec) Without(field string) FilterSpec {
	if _, ok := f[field]; !ok {
		return f
	}
	out := make(FilterSpec, len(f))
	for k, v := range f {
		if k != field {
			out[k] = v
		}
	}
	return out
}

// Clear returns an empty filter spec.
func (f FilterSpec) Clear() FilterSpec {
	return nil
}

// Fields returns the filtered fields in sorted order.
func (f FilterSpec) Fields() []string {
	fields := make([]string, 0, len(f))
	for k := range f {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}

func (f FilterSpec) String() string {
	parts := make([]string, 0, len(f))
	for _, field := range f.Fields() {
		if f[field] == nil {
			continue
		}
		parts = append(parts, field+" "+f[field].String())
	}
	return strings.Join(parts, ", ")
}

// Visibility maps a field to whether it is shown. Fields not in the map are shown.
type Visibility map[string]bool

// Shown reports whether field is visible.
func (v Visibility) Shown(field string) bool {
	shown, ok := v[field]
	return !ok || shown
}

// Hide returns a copy with field hidden.
func (v Visibility) Hide(field string) Visibility {
	return v.set(field, false)
}

// Show returns a copy with field shown.
func (v Visibility) Show(field string) Visibility {
	return v.set(field, true)
}

// Reset returns a visibility that shows every field.
func (v Visibility) Reset() Visibility {
	return nil
}

// Hidden returns the hidden fields in sorted order.
func (v Visibility) Hidden() []string {
	var hidden []string
	for k, shown := range v {
		if !shown {
			hidden = append(hidden, k)
		}
	}
	sort.Strings(hidden)
	return hidden
}

func (v Visibility) set(field string, shown bool) Visibility {
	out := make(Visibility, len(v)+1)
	for k, s := range v {
		out[k] = s
	}
	out[field] = shown
	return out
}

// PageSpec selects one page of the filtered, sorted rows.
type PageSpec struct {
	Index int
	Size  int
}

// Normalized applies the defaults: a non-positive size becomes
// DefaultPageSize and a negative index becomes 0.
func (p PageSpec) Normalized() PageSpec {
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Index < 0 {
		p.Index = 0
	}
	return p
}

// Config is the complete view configuration handed to Derive.
type Config struct {
	Sort       SortSpec
	Filter     FilterSpec
	Visibility Visibility
	Page       PageSpec
}

// WithSort returns a copy using s.
func (c Config) WithSort(s SortSpec) Config {
	c.Sort = s
	return c
}

// ToggleSort returns a copy with the sort on field cycled.
func (c Config) ToggleSort(field string) Config {
	c.Sort = c.Sort.Toggle(field)
	return c
}

// WithFilter returns a copy using f.
func (c Config) WithFilter(f FilterSpec) Config {
	c.Filter = f
	return c
}

// WithVisibility returns a copy using v.
func (c Config) WithVisibility(v Visibility) Config {
	c.Visibility = v
	return c
}

// WithPage returns a copy using p.
func (c Config) WithPage(p PageSpec) Config {
	c.Page = p
	return c
}

// NextPage returns a copy advanced by one page. Derive clamps past the end.
func (c Config) NextPage() Config {
	c.Page = c.Page.Normalized()
	c.Page.Index++
	return c
}

// PrevPage returns a copy moved back one page, stopping at the first page.
func (c Config) PrevPage() Config {
	c.Page = c.Page.Normalized()
	if c.Page.Index > 0 {
		c.Page.Index--
	}
	return c
}

// FirstPage returns a copy on page 0.
func (c Config) FirstPage() Config {
	c.Page.Index = 0
	return c
}
