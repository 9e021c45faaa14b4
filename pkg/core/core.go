// Package core is the embeddable crmx engine: the customer rows, the view
// derivation over them, and an optional natural-language search that
// replaces the rows with a resolver's answer.
package core

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/crmx/internal/formatter"
	"github.com/oakwood-commons/crmx/internal/record"
	"github.com/oakwood-commons/crmx/internal/search"
	"github.com/oakwood-commons/crmx/internal/source"
	"github.com/oakwood-commons/crmx/internal/store"
	"github.com/oakwood-commons/crmx/internal/view"
	"github.com/oakwood-commons/crmx/pkg/logger"
)

// Re-exported types so embedders can use the engine without reaching into
// internal packages.
type (
	Record        = record.Record
	Schema        = record.Schema
	Config        = view.Config
	Result        = view.Result
	Outcome       = search.Outcome
	Resolver      = search.Resolver
	ResolverFunc  = search.ResolverFunc
	RenderOptions = formatter.Options
)

// ErrNoResolver is returned by Search when the engine has no resolver.
var ErrNoResolver = errors.New("no search resolver configured")

// Engine owns a row store and answers view and search requests against it.
type Engine struct {
	schema   record.Schema
	store    *store.Store
	searcher *search.Controller
	log      logr.Logger
}

type options struct {
	schema   record.Schema
	resolver search.Resolver
	log      *logr.Logger
}

// Option configures the Engine.
type Option func(*options)

// WithSchema sets the column schema. The customer schema is the default.
func WithSchema(s Schema) Option {
	return func(o *options) {
		o.schema = s
	}
}

// WithResolver enables Search.
func WithResolver(r Resolver) Option {
	return func(o *options) {
		o.resolver = r
	}
}

// WithLogger sets the logger used by the engine and its search controller.
func WithLogger(l logr.Logger) Option {
	return func(o *options) {
		o.log = &l
	}
}

// New creates an Engine seeded with rows.
func New(rows []Record, opts ...Option) (*Engine, error) {
	o := options{schema: record.CustomerSchema()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.schema.Validate(); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	log := *logger.GetNoopLogger()
	if o.log != nil {
		log = *o.log
	}
	e := &Engine{
		schema: o.schema,
		store:  store.New(rows),
		log:    log,
	}
	if o.resolver != nil {
		e.searcher = search.New(e.store, e.schema, o.resolver, search.WithLogger(logger.Named(&log, "search")))
	}
	return e, nil
}

// LoadFile decodes a JSON, NDJSON, YAML or TOML file of records.
func LoadFile(ctx context.Context, schema Schema, path string) ([]Record, error) {
	src, err := source.Open("file:"+path, source.Deps{Schema: schema})
	if err != nil {
		return nil, err
	}
	return src.Load(ctx)
}

// DecodeRows validates a JSON array payload into records.
func DecodeRows(schema Schema, payload []byte) ([]Record, error) {
	return record.DecodeRows(schema, payload)
}

// Schema returns the column schema.
func (e *Engine) Schema() Schema {
	return e.schema
}

// Rows returns a copy of the current rows.
func (e *Engine) Rows() []Record {
	return e.store.Current()
}

// Replace swaps the rows wholesale and returns the new generation.
func (e *Engine) Replace(rows []Record) uint64 {
	return e.store.Replace(rows)
}

// Store exposes the underlying row store for UIs that watch its generation.
func (e *Engine) Store() *store.Store {
	return e.store
}

// Searcher returns the search controller, or nil without a resolver.
func (e *Engine) Searcher() *search.Controller {
	return e.searcher
}

// View derives one page of the current rows.
func (e *Engine) View(cfg Config) Result {
	return view.Derive(e.schema, e.store.Current(), cfg)
}

// Search resolves query and, on success, replaces the rows. A failed search
// leaves the rows untouched and is reported through the Outcome, not the error.
func (e *Engine) Search(ctx context.Context, query string) (Outcome, error) {
	if e.searcher == nil {
		return Outcome{}, ErrNoResolver
	}
	return e.searcher.Submit(ctx, query)
}

// Render writes one derived page in the format of opts.
func (e *Engine) Render(w io.Writer, cfg Config, opts RenderOptions) error {
	res := e.View(cfg)
	e.log.V(1).Info("rendering page", "page", res.PageLabel(), logger.RowsKey, len(res.Rows), "format", string(opts.Format))
	return formatter.Render(w, res, opts)
}
