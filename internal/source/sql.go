package source

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/oakwood-commons/crmx/internal/record"
)

const defaultTable = "customers"

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func quoteIdent(ident string) string {
	// ident is validated to contain no quotes
	return `"` + ident + `"`
}

func validTable(table string) (string, error) {
	if table == "" {
		return defaultTable, nil
	}
	if !tableNameRe.MatchString(table) {
		return "", fmt.Errorf("invalid table name %q (must match %s)", table, tableNameRe.String())
	}
	return table, nil
}

// sqlSource reads every row of one table.
type sqlSource struct {
	schema  record.Schema
	table   string
	label   string
	connect func(ctx context.Context) (*sql.DB, error)
}

func newSQLite(schema record.Schema, path, table string) (*sqlSource, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("sqlite source: missing database path")
	}
	table, err := validTable(table)
	if err != nil {
		return nil, err
	}
	return &sqlSource{
		schema: schema,
		table:  table,
		label:  "sqlite:" + path + "#" + table,
		connect: func(ctx context.Context) (*sql.DB, error) {
			db, err := sql.Open("sqlite", path)
			if err != nil {
				return nil, err
			}
			if err := db.PingContext(ctx); err != nil {
				_ = db.Close()
				return nil, err
			}
			return db, nil
		},
	}, nil
}

func newPostgres(schema record.Schema, dsn, table string) (*sqlSource, error) {
	table, err := validTable(table)
	if err != nil {
		return nil, err
	}
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres source: %w", err)
	}
	return &sqlSource{
		schema: schema,
		table:  table,
		label:  fmt.Sprintf("postgres://%s/%s#%s", cfg.Host, cfg.Database, table),
		connect: func(ctx context.Context) (*sql.DB, error) {
			db := stdlib.OpenDB(*cfg)
			if err := db.PingContext(ctx); err != nil {
				_ = db.Close()
				return nil, err
			}
			return db, nil
		},
	}, nil
}

func (s *sqlSource) String() string { return s.label }

func (s *sqlSource) Load(ctx context.Context) ([]record.Record, error) {
	db, err := s.connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", s.label, err)
	}
	defer func() { _ = db.Close() }()

	raw, err := queryAll(ctx, db, s.table)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.label, err)
	}
	for _, row := range raw {
		s.convertRow(row)
	}
	rows, err := record.FromValues(s.schema, raw)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.label, err)
	}
	return rows, nil
}

func queryAll(ctx context.Context, db *sql.DB, table string) ([]map[string]any, error) {
	rs, err := db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(table))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rs.Close() }()

	cols, err := rs.Columns()
	if err != nil {
		return nil, err
	}
	out := []map[string]any{}
	for rs.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rs.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			row[c] = vals[i]
		}
		out = append(out, row)
	}
	return out, rs.Err()
}

// convertRow maps driver values onto the shapes record normalization accepts.
// Column names match schema fields case-insensitively, since PostgreSQL folds
// unquoted identifiers to lower case.
func (s *sqlSource) convertRow(row map[string]any) {
	for key, v := range row {
		if b, ok := v.([]byte); ok {
			v = string(b)
			row[key] = v
		}
		field := key
		if _, ok := s.schema.Column(key); !ok && key != record.IDField {
			for _, f := range s.schema.Fields() {
				if strings.EqualFold(f, key) {
					field = f
					break
				}
			}
			if field != key {
				delete(row, key)
				row[field] = v
			}
		}
		col, ok := s.schema.Column(field)
		if !ok || col.Kind() != record.KindNumber {
			continue
		}
		if str, ok := v.(string); ok {
			if f, err := strconv.ParseFloat(strings.TrimSpace(str), 64); err == nil {
				row[field] = f
			}
		}
	}
}
