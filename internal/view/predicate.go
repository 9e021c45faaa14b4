package view

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oakwood-commons/crmx/internal/cel"
	"github.com/oakwood-commons/crmx/internal/record"
)

// Predicate decides whether a field value passes a filter. present is false
// when the record has no value for the field.
type Predicate interface {
	Match(value any, present bool, rec record.Record) bool
	String() string
}

// Op is a comparison operator used by Compare.
type Op string

const (
	OpLess         Op = "<"
	OpLessEqual    Op = "<="
	OpGreater      Op = ">"
	OpGreaterEqual Op = ">="
	OpNotEqual     Op = "!="
)

// Contains matches when the value's text contains Text, ignoring case.
type Contains struct {
	Text string
}

func (p Contains) Match(value any, present bool, _ record.Record) bool {
	if !present {
		return false
	}
	return strings.Contains(strings.ToLower(Text(value)), strings.ToLower(p.Text))
}

func (p Contains) String() string { return fmt.Sprintf("~ %q", p.Text) }

// Equals matches values equal to Value. Text compares case-insensitively.
type Equals struct {
	Value any
}

func (p Equals) Match(value any, present bool, _ record.Record) bool {
	if !present {
		return false
	}
	c, ok := compareValues(value, p.Value, false)
	return ok && c == 0
}

func (p Equals) String() string { return "= " + Text(p.Value) }

// Compare matches values ordered against Value by Op. A missing value only
// satisfies OpNotEqual.
type Compare struct {
	Op    Op
	Value any
}

func (p Compare) Match(value any, present bool, _ record.Record) bool {
	if !present {
		return p.Op == OpNotEqual
	}
	c, ok := compareValues(value, p.Value, false)
	if !ok {
		return p.Op == OpNotEqual
	}
	switch p.Op {
	case OpLess:
		return c < 0
	case OpLessEqual:
		return c <= 0
	case OpGreater:
		return c > 0
	case OpGreaterEqual:
		return c >= 0
	case OpNotEqual:
		return c != 0
	}
	return false
}

func (p Compare) String() string { return string(p.Op) + " " + Text(p.Value) }

// Between matches values within [Low, High].
type Between struct {
	Low  any
	High any
}

func (p Between) Match(value any, present bool, _ record.Record) bool {
	if !present {
		return false
	}
	lo, ok := compareValues(value, p.Low, false)
	if !ok || lo < 0 {
		return false
	}
	hi, ok := compareValues(value, p.High, false)
	return ok && hi <= 0
}

func (p Between) String() string { return Text(p.Low) + ".." + Text(p.High) }

// OneOf matches when the value's text equals one of Values, ignoring case.
type OneOf struct {
	Values []string
}

func (p OneOf) Match(value any, present bool, _ record.Record) bool {
	if !present {
		return false
	}
	s := Text(value)
	for _, v := range p.Values {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

func (p OneOf) String() string { return "in " + strings.Join(p.Values, "|") }

// Expr matches when a CEL expression evaluates to true, with the field value
// bound to "_" and every schema field bound by name.
type Expr struct {
	prg *cel.Program
}

// NewExpr compiles src against the fields of schema.
func NewExpr(schema record.Schema, src string) (Expr, error) {
	eval, err := evaluatorFor(schema)
	if err != nil {
		return Expr{}, err
	}
	prg, err := eval.Compile(src)
	if err != nil {
		return Expr{}, err
	}
	return Expr{prg: prg}, nil
}

func (p Expr) Match(value any, present bool, rec record.Record) bool {
	if !present || p.prg == nil {
		return false
	}
	return p.prg.Match(value, rec.Fields())
}

func (p Expr) String() string {
	if p.prg == nil {
		return "expr"
	}
	return "expr " + p.prg.Source()
}

var evaluators sync.Map

func evaluatorFor(schema record.Schema) (*cel.Evaluator, error) {
	fields := schema.Fields()
	key := strings.Join(fields, "\x00")
	if e, ok := evaluators.Load(key); ok {
		return e.(*cel.Evaluator), nil
	}
	e, err := cel.NewEvaluator(fields...)
	if err != nil {
		return nil, err
	}
	actual, _ := evaluators.LoadOrStore(key, e)
	return actual.(*cel.Evaluator), nil
}

// ParseFilter turns filter text for field into a predicate:
//
//	<10000, >= 30, != low   Compare
//	=female                 Equals
//	100000..200000          Between (inclusive)
//	low|medium              OneOf
//	_ % 2 == 0              Expr (CEL)
//	anything else           Contains
//
// Operands are parsed per the column kind, so "<10,000" works on a currency
// column and ">2025-01-01" on a datetime column.
func ParseFilter(schema record.Schema, field, text string) (Predicate, error) {
	col, ok := schema.Column(field)
	if !ok {
		return nil, fmt.Errorf("unknown field %q", field)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty filter for %q", field)
	}
	kind := col.Kind()

	for _, op := range []Op{OpLessEqual, OpGreaterEqual, OpNotEqual, OpLess, OpGreater} {
		if rest, found := strings.CutPrefix(text, string(op)); found {
			v, err := parseOperand(kind, rest)
			if err != nil {
				return nil, fmt.Errorf("filter %s: %w", field, err)
			}
			return Compare{Op: op, Value: v}, nil
		}
	}
	if rest, found := strings.CutPrefix(text, "="); found {
		rest = strings.TrimPrefix(rest, "=")
		v, err := parseOperand(kind, rest)
		if err != nil {
			return nil, fmt.Errorf("filter %s: %w", field, err)
		}
		return Equals{Value: v}, nil
	}
	if cel.IsCELExpression(text) {
		expr, err := NewExpr(schema, text)
		if err != nil {
			return nil, fmt.Errorf("filter %s: %w", field, err)
		}
		return expr, nil
	}
	if lo, hi, found := strings.Cut(text, ".."); found {
		low, err := parseOperand(kind, lo)
		if err != nil {
			return nil, fmt.Errorf("filter %s: %w", field, err)
		}
		high, err := parseOperand(kind, hi)
		if err != nil {
			return nil, fmt.Errorf("filter %s: %w", field, err)
		}
		return Between{Low: low, High: high}, nil
	}
	if strings.Contains(text, "|") {
		var values []string
		for _, v := range strings.Split(text, "|") {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			return nil, fmt.Errorf("filter %s: empty value list", field)
		}
		return OneOf{Values: values}, nil
	}
	return Contains{Text: text}, nil
}

func parseOperand(kind record.Kind, s string) (any, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("missing value")
	}
	switch kind {
	case record.KindNumber:
		clean := strings.NewReplacer("$", "", ",", "", "_", "").Replace(s)
		f, err := strconv.ParseFloat(clean, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", s)
		}
		return f, nil
	case record.KindTime:
		return record.ParseTime(s)
	default:
		return s, nil
	}
}

// Text is the plain text form of a field value used by Contains and OneOf.
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case time.Time:
		return t.Format("2006-01-02 15:04")
	}
	return fmt.Sprint(v)
}

// compareValues orders a against b. ok is false when the values are not of a
// comparable kind. Text compares case-insensitively; with tiebreak set, text
// equal under folding falls back to a case-sensitive comparison.
func compareValues(a, b any, tiebreak bool) (int, bool) {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		}
		return 0, true
	}
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return ta.Compare(tb), true
	}
	if sa, ok := a.(string); ok {
		sb, ok := b.(string)
		if !ok {
			return 0, false
		}
		if c := strings.Compare(strings.ToLower(sa), strings.ToLower(sb)); c != 0 || !tiebreak {
			return c, true
		}
		return strings.Compare(sa, sb), true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case int32:
		return float64(t), true
	case uint64:
		return float64(t), true
	}
	return 0, false
}
