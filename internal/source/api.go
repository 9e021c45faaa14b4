package source

import (
	"context"
	"fmt"

	"github.com/oakwood-commons/crmx/internal/client"
	"github.com/oakwood-commons/crmx/internal/record"
)

type apiSource struct {
	schema record.Schema
	lister Lister
	params client.ListParams
	label  string
}

func (s *apiSource) Load(ctx context.Context) ([]record.Record, error) {
	body, err := s.lister.ListCustomers(ctx, s.params)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	rows, err := record.DecodeRows(s.schema, body)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return rows, nil
}

func (s *apiSource) String() string { return s.label }
