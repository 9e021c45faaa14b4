// Package cel compiles CEL filter expressions evaluated against one field
// value (bound as "_") and the rest of the row (bound by field name).
package cel

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	celext "github.com/google/cel-go/ext"
)

// ValueVar is the variable bound to the filtered field's value.
const ValueVar = "_"

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// reserved identifiers cannot be declared as row variables.
var reserved = map[string]bool{
	"as": true, "break": true, "const": true, "continue": true, "else": true,
	"false": true, "for": true, "function": true, "if": true, "import": true,
	"in": true, "let": true, "loop": true, "package": true, "namespace": true,
	"null": true, "return": true, "true": true, "var": true, "void": true, "while": true,
	ValueVar: true,
}

// Evaluator compiles expressions in an environment that knows the row's fields.
type Evaluator struct {
	env    *cel.Env
	fields []string
}

// NewEvaluator creates an environment declaring "_" plus every usable field name.
// Field names that are not CEL identifiers are skipped; they remain reachable
// only through "_" when they are the filtered field.
func NewEvaluator(fields ...string) (*Evaluator, error) {
	opts := make([]cel.EnvOption, 0, len(fields)+6)
	opts = append(opts,
		cel.Variable(ValueVar, cel.DynType),
		cel.CrossTypeNumericComparisons(true),
		celext.Strings(),
		celext.Encoders(),
		celext.Lists(),
		celext.Math(),
	)
	declared := make([]string, 0, len(fields))
	for _, f := range fields {
		if !identPattern.MatchString(f) || reserved[f] {
			continue
		}
		opts = append(opts, cel.Variable(f, cel.DynType))
		declared = append(declared, f)
	}
	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Evaluator{env: env, fields: declared}, nil
}

// Environment returns the underlying CEL environment.
func (e *Evaluator) Environment() *cel.Env {
	return e.env
}

// Fields returns the row fields declared as variables.
func (e *Evaluator) Fields() []string {
	return append([]string(nil), e.fields...)
}

// Program is a compiled boolean filter expression.
type Program struct {
	source string
	prg    cel.Program
	fields []string
}

// Compile parses and type-checks expr. The expression must yield a bool.
func (e *Evaluator) Compile(expr string) (*Program, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("empty expression")
	}
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	out := ast.OutputType()
	if !out.IsExactType(types.BoolType) && !out.IsExactType(types.DynType) {
		return nil, fmt.Errorf("expression %q must return bool, got %s", expr, out.String())
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Program{source: expr, prg: prg, fields: e.fields}, nil
}

// Source returns the expression text.
func (p *Program) Source() string {
	return p.source
}

// Eval runs the program with value bound to "_" and present row fields bound by name.
func (p *Program) Eval(value any, row map[string]any) (any, error) {
	vars := make(map[string]any, len(p.fields)+1)
	vars[ValueVar] = value
	for _, f := range p.fields {
		if v, ok := row[f]; ok {
			vars[f] = v
		}
	}
	result, _, err := p.prg.Eval(vars)
	if err != nil {
		return nil, fmt.Errorf("eval error: %w", err)
	}
	return ToGo(result), nil
}

// Match reports whether the program evaluates to true. Evaluation errors
// (for example a missing field) count as no match.
func (p *Program) Match(value any, row map[string]any) bool {
	out, err := p.Eval(value, row)
	if err != nil {
		return false
	}
	b, ok := out.(bool)
	return ok && b
}

// ToGo converts CEL values to Go native types recursively.
func ToGo(val ref.Val) any {
	if val == nil {
		return nil
	}
	switch v := val.(type) {
	case types.Bool:
		return bool(v)
	case types.Int:
		return int64(v)
	case types.Uint:
		return uint64(v)
	case types.Double:
		return float64(v)
	case types.String:
		return string(v)
	case types.Bytes:
		return []byte(v)
	case types.Timestamp:
		return v.Time
	}

	inner := val.Value()
	switch iv := inner.(type) {
	case []ref.Val:
		out := make([]any, len(iv))
		for i, elem := range iv {
			out[i] = ToGo(elem)
		}
		return out
	case map[ref.Val]ref.Val:
		out := make(map[string]any, len(iv))
		for k, v := range iv {
			out[fmt.Sprintf("%v", k.Value())] = ToGo(v)
		}
		return out
	}
	return inner
}

var celCallPattern = regexp.MustCompile(`\b(?:map|filter|all|exists|exists_one|has|size|matches|startsWith|endsWith|contains|lowerAscii|upperAscii|timestamp|duration|int|double|string)\s*\(`)

// IsCELExpression reports whether s looks like a CEL expression rather than
// plain search text: it references "_", calls a CEL function, or combines
// terms with boolean operators.
func IsCELExpression(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if s == ValueVar || strings.HasPrefix(s, ValueVar+" ") || strings.HasPrefix(s, ValueVar+".") || strings.Contains(s, " "+ValueVar+" ") {
		return true
	}
	if celCallPattern.MatchString(s) {
		return true
	}
	for _, op := range []string{"&&", "||", "==", " in "} {
		if strings.Contains(s, op) {
			return true
		}
	}
	return false
}
