// Package source supplies the initial customer dataset from the builtin demo
// book, a local file, the CRM API, or a SQL table.
package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/oakwood-commons/crmx/internal/client"
	"github.com/oakwood-commons/crmx/internal/record"
)

// Builtin is the default source spec.
const Builtin = "builtin"

// Source loads the seed rows of the record grid.
type Source interface {
	Load(ctx context.Context) ([]record.Record, error)
	String() string
}

// Lister lists customers from the CRM API.
type Lister interface {
	ListCustomers(ctx context.Context, params client.ListParams) ([]byte, error)
}

// Deps are the collaborators a source may need.
type Deps struct {
	Schema record.Schema
	// Lister backs the "api" source. When nil, one is built from Client.
	Lister Lister
	// Client configures API clients created for http(s) sources.
	Client client.Config
}

// Open selects a source from spec:
//
//	builtin                     the demo customer book
//	api                         GET /customers/ on the configured API
//	api?riskProfile=low         the same, with server-side list filters
//	http://host/api?gender=male GET /customers/ on that API root
//	file:customers.yaml         a JSON, NDJSON, YAML or TOML file (the prefix is optional)
//	sqlite:crm.db#customers     a SQLite table (default table "customers")
//	postgres://…#customers      a PostgreSQL table
func Open(spec string, deps Deps) (Source, error) {
	if len(deps.Schema.Columns) == 0 {
		deps.Schema = record.CustomerSchema()
	}
	spec = strings.TrimSpace(spec)
	lower := strings.ToLower(spec)

	switch {
	case spec == "" || lower == Builtin:
		return builtinSource{schema: deps.Schema}, nil
	case lower == "api" || strings.HasPrefix(lower, "api?"):
		params, err := client.ParseListParams(strings.TrimPrefix(spec[len("api"):], "?"))
		if err != nil {
			return nil, err
		}
		lister := deps.Lister
		if lister == nil {
			c, err := client.NewClient(deps.Client)
			if err != nil {
				return nil, err
			}
			lister = c
		}
		return &apiSource{schema: deps.Schema, lister: lister, params: params, label: spec}, nil
	case strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://"):
		base, query, _ := strings.Cut(spec, "?")
		params, err := client.ParseListParams(query)
		if err != nil {
			return nil, err
		}
		cfg := deps.Client
		cfg.BaseURL = base
		lister := deps.Lister
		label := base
		if lister == nil {
			c, err := client.NewClient(cfg)
			if err != nil {
				return nil, err
			}
			lister, label = c, c.BaseURL()
		}
		return &apiSource{schema: deps.Schema, lister: lister, params: params, label: label}, nil
	case strings.HasPrefix(lower, "sqlite:"):
		path, table := splitTable(spec[len("sqlite:"):])
		return newSQLite(deps.Schema, path, table)
	case strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://"):
		dsn, table := splitTable(spec)
		return newPostgres(deps.Schema, dsn, table)
	case strings.HasPrefix(lower, "file:"):
		return newFile(deps.Schema, spec[len("file:"):])
	}
	if strings.Contains(spec, "://") {
		return nil, fmt.Errorf("unsupported source %q", spec)
	}
	return newFile(deps.Schema, spec)
}

// splitTable separates an optional "#table" suffix.
func splitTable(spec string) (string, string) {
	if i := strings.LastIndex(spec, "#"); i >= 0 {
		return spec[:i], spec[i+1:]
	}
	return spec, ""
}
