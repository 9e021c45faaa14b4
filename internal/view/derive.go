package view

import (
	"fmt"
	"sort"
	"time"

	"github.com/oakwood-commons/crmx/internal/record"
)

// Row is one rendered row: the source record plus the cell values aligned
// with Result.Headers. A nil cell means the record has no value.
type Row struct {
	Record record.Record
	Cells  []any
}

// Result is the derived page.
type Result struct {
	Headers     []record.Column
	Rows        []Row
	Total       int
	Page        int
	PageSize    int
	PageCount   int
	HasNext     bool
	HasPrevious bool
	Clamped     bool
}

// Derive filters, sorts, paginates and projects rows according to cfg.
// It never mutates rows and never fails: an index past the last page is
// clamped to the last page and reported through Result.Clamped.
func Derive(schema record.Schema, rows []record.Record, cfg Config) Result {
	filtered := applyFilter(schema, rows, cfg.Filter)
	applySort(schema, filtered, cfg.Sort)

	page := cfg.Page.Normalized()
	res := Result{
		Headers:  visibleColumns(schema, cfg.Visibility),
		Total:    len(filtered),
		PageSize: page.Size,
	}
	res.PageCount = res.Total / page.Size
	if res.Total%page.Size != 0 {
		res.PageCount++
	}
	if res.PageCount == 0 {
		res.Clamped = page.Index > 0
		res.Rows = []Row{}
		return res
	}

	res.Page = page.Index
	if res.Page >= res.PageCount {
		res.Page = res.PageCount - 1
		res.Clamped = true
	}
	res.HasPrevious = res.Page > 0
	res.HasNext = res.Page < res.PageCount-1

	start := res.Page * page.Size
	end := start + min(page.Size, res.Total-start)
	res.Rows = make([]Row, 0, end-start)
	for _, rec := range filtered[start:end] {
		cells := make([]any, len(res.Headers))
		for i, col := range res.Headers {
			if v, ok := rec.Get(col.Field); ok {
				cells[i] = v
			}
		}
		res.Rows = append(res.Rows, Row{Record: rec, Cells: cells})
	}
	return res
}

// Records returns the records of the page in order.
func (r Result) Records() []record.Record {
	out := make([]record.Record, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row.Record
	}
	return out
}

// PageLabel renders the 1-based page position, e.g. "2/5".
func (r Result) PageLabel() string {
	if r.PageCount == 0 {
		return "0/0"
	}
	return fmt.Sprintf("%d/%d", r.Page+1, r.PageCount)
}

func applyFilter(schema record.Schema, rows []record.Record, filter FilterSpec) []record.Record {
	out := make([]record.Record, 0, len(rows))
	for field, p := range filter {
		if p == nil {
			continue
		}
		if _, ok := schema.Column(field); !ok {
			return out
		}
	}
	for _, rec := range rows {
		if matches(rec, filter) {
			out = append(out, rec)
		}
	}
	return out
}

func matches(rec record.Record, filter FilterSpec) bool {
	for field, p := range filter {
		if p == nil {
			continue
		}
		v, ok := rec.Get(field)
		if !p.Match(v, ok, rec) {
			return false
		}
	}
	return true
}

func applySort(schema record.Schema, rows []record.Record, spec SortSpec) {
	if !spec.Active() {
		return
	}
	col, ok := schema.Column(spec.Field)
	if !ok || !col.Sortable {
		return
	}
	cmp := func(a, b record.Record) int {
		va, oka := a.Get(col.Field)
		vb, okb := b.Get(col.Field)
		return compareKeys(va, oka, vb, okb)
	}
	if spec.Direction == Descending {
		asc := cmp
		cmp = func(a, b record.Record) int { return asc(b, a) }
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return cmp(rows[i], rows[j]) < 0
	})
}

// compareKeys is the sort comparator. Missing values order first, then
// values group by kind so mixed columns still sort deterministically.
func compareKeys(a any, oka bool, b any, okb bool) int {
	if !oka || a == nil {
		if !okb || b == nil {
			return 0
		}
		return -1
	}
	if !okb || b == nil {
		return 1
	}
	if c, ok := compareValues(a, b, true); ok {
		return c
	}
	ra, rb := kindRank(a), kindRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	sa, sb := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	}
	return 0
}

func kindRank(v any) int {
	if _, ok := toFloat(v); ok {
		return 0
	}
	switch v.(type) {
	case time.Time:
		return 1
	case string:
		return 2
	}
	return 3
}

func visibleColumns(schema record.Schema, vis Visibility) []record.Column {
	cols := make([]record.Column, 0, len(schema.Columns))
	for _, col := range schema.Columns {
		if vis.Shown(col.Field) {
			cols = append(cols, col)
		}
	}
	return cols
}
