package source

import (
	"context"
	_ "embed"

	"github.com/oakwood-commons/crmx/internal/record"
)

//go:embed customers.json
var customersJSON []byte

type builtinSource struct {
	schema record.Schema
}

func (s builtinSource) Load(context.Context) ([]record.Record, error) {
	return record.DecodeRows(s.schema, customersJSON)
}

func (s builtinSource) String() string { return Builtin }
