// Package record defines the immutable CRM record, its column schema, and
// the validation applied to every payload before it may enter the row store.
package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// IDField is the reserved identifier field on incoming objects.
const IDField = "id"

// ErrMalformed is wrapped by every validation failure.
var ErrMalformed = errors.New("malformed record payload")

// Record is one immutable entity row. Field values are normalized per the
// schema: string for text, float64 for numbers, time.Time for timestamps.
type Record struct {
	id     string
	fields map[string]any
}

// New builds a record from already-normalized values. The map is copied.
func New(id string, fields map[string]any) Record {
	cp := make(map[string]any, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	return Record{id: id, fields: cp}
}

// ID returns the record identifier.
func (r Record) ID() string { return r.id }

// Get returns the value of field and whether it is present.
func (r Record) Get(field string) (any, bool) {
	if field == IDField {
		return r.id, r.id != ""
	}
	v, ok := r.fields[field]
	return v, ok
}

// Fields returns a copy of all values, including the identifier.
func (r Record) Fields() map[string]any {
	out := make(map[string]any, len(r.fields)+1)
	for k, v := range r.fields {
		out[k] = v
	}
	out[IDField] = r.id
	return out
}

// MarshalJSON emits the record as a flat object with RFC 3339 timestamps.
func (r Record) MarshalJSON() ([]byte, error) {
	out := r.Fields()
	for k, v := range out {
		if t, ok := v.(time.Time); ok {
			out[k] = t.UTC().Format(time.RFC3339)
		}
	}
	return json.Marshal(out)
}

// MarshalYAML emits the same flat shape as MarshalJSON.
func (r Record) MarshalYAML() (any, error) {
	out := r.Fields()
	for k, v := range out {
		if t, ok := v.(time.Time); ok {
			out[k] = t.UTC().Format(time.RFC3339)
		}
	}
	return out, nil
}

// DecodeRows validates a JSON payload that must be an array of objects.
func DecodeRows(schema Schema, payload []byte) ([]Record, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after top-level value", ErrMalformed)
	}
	return FromValues(schema, v)
}

// FromValues validates an already-decoded value (JSON, YAML, TOML or SQL rows).
func FromValues(schema Schema, v any) ([]Record, error) {
	var items []any
	switch t := v.(type) {
	case []any:
		items = t
	case []map[string]any:
		items = make([]any, len(t))
		for i := range t {
			items[i] = t[i]
		}
	default:
		return nil, fmt.Errorf("%w: expected an array of records, got %s", ErrMalformed, describe(v))
	}

	out := make([]Record, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: element %d: expected an object, got %s", ErrMalformed, i, describe(item))
		}
		rec, err := Normalize(schema, obj)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Normalize converts a raw object into a Record using the schema. Unknown
// fields are dropped and missing fields stay absent.
func Normalize(schema Schema, raw map[string]any) (Record, error) {
	id, err := normalizeID(raw[IDField])
	if err != nil {
		return Record{}, err
	}
	fields := make(map[string]any, len(schema.Columns))
	for _, col := range schema.Columns {
		v, ok := raw[col.Field]
		if !ok || v == nil {
			continue
		}
		nv, err := coerce(col.Kind(), v)
		if err != nil {
			return Record{}, fmt.Errorf("%w: field %q: %v", ErrMalformed, col.Field, err)
		}
		fields[col.Field] = nv
	}
	return Record{id: id, fields: fields}, nil
}

func normalizeID(v any) (string, error) {
	var id string
	switch t := v.(type) {
	case nil:
		return "", fmt.Errorf("%w: missing %q", ErrMalformed, IDField)
	case string:
		id = strings.TrimSpace(t)
	case json.Number:
		if _, err := t.Int64(); err != nil {
			return "", fmt.Errorf("%w: %q must be a string or integer, got %s", ErrMalformed, IDField, t.String())
		}
		id = t.String()
	case float64:
		if t != math.Trunc(t) {
			return "", fmt.Errorf("%w: %q must be a string or integer, got %v", ErrMalformed, IDField, t)
		}
		id = strconv.FormatInt(int64(t), 10)
	case int:
		id = strconv.Itoa(t)
	case int64:
		id = strconv.FormatInt(t, 10)
	case uint64:
		id = strconv.FormatUint(t, 10)
	default:
		return "", fmt.Errorf("%w: %q must be a string or integer, got %s", ErrMalformed, IDField, describe(v))
	}
	if id == "" {
		return "", fmt.Errorf("%w: empty %q", ErrMalformed, IDField)
	}
	return id, nil
}

func coerce(kind Kind, v any) (any, error) {
	switch kind {
	case KindNumber:
		return toNumber(v)
	case KindTime:
		return toTime(v)
	default:
		return toText(v)
	}
}

func toText(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case bool, int, int64, int32, uint64, float64, float32:
		return fmt.Sprint(t), nil
	}
	return "", fmt.Errorf("expected text, got %s", describe(v))
}

func toNumber(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int8:
		return float64(t), nil
	case int16:
		return float64(t), nil
	case int32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case uint:
		return float64(t), nil
	case uint8:
		return float64(t), nil
	case uint16:
		return float64(t), nil
	case uint32:
		return float64(t), nil
	case uint64:
		return float64(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", t.String())
		}
		return f, nil
	}
	return 0, fmt.Errorf("expected number, got %s", describe(v))
}

// timeLayouts are tried in order when parsing textual timestamps.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// ParseTime parses the timestamp layouts accepted for datetime fields.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

func toTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		return ParseTime(t)
	}
	return time.Time{}, fmt.Errorf("expected timestamp, got %s", describe(v))
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64, float32, int, int64:
		return "number"
	}
	return fmt.Sprintf("%T", v)
}
