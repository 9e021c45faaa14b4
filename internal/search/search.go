// Package search runs natural-language queries against a remote resolver and
// replaces the row store with the server-computed subset.
package search

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/crmx/internal/record"
	"github.com/oakwood-commons/crmx/internal/store"
	"github.com/oakwood-commons/crmx/pkg/logger"
)

var (
	// ErrEmptyQuery is returned by Begin for blank queries.
	ErrEmptyQuery = errors.New("search query is empty")
	// ErrInFlight is returned by Begin while a previous search has not finished.
	ErrInFlight = errors.New("search already in flight")
)

// Resolver turns a query into a raw JSON payload of records.
type Resolver interface {
	Resolve(ctx context.Context, query string) ([]byte, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, query string) ([]byte, error)

func (f ResolverFunc) Resolve(ctx context.Context, query string) ([]byte, error) {
	return f(ctx, query)
}

// Status is the result class of a finished search.
type Status int

const (
	StatusReplaced Status = iota
	StatusMalformed
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusReplaced:
		return "replaced"
	case StatusMalformed:
		return "malformed"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Outcome describes a finished search. Err and Notice are set unless Status
// is StatusReplaced.
type Outcome struct {
	Query      string
	Status     Status
	Rows       int
	Generation uint64
	Err        error
	Notice     string
	Duration   time.Duration
}

// Controller holds the query text and the single-flight flag.
type Controller struct {
	store    *store.Store
	schema   record.Schema
	resolver Resolver
	log      logr.Logger
	now      func() time.Time

	mu       sync.Mutex
	query    string
	inFlight bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(l logr.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithClock overrides the time source used for durations.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// New creates a controller writing to st.
func New(st *store.Store, schema record.Schema, resolver Resolver, opts ...Option) *Controller {
	c := &Controller{
		store:    st,
		schema:   schema,
		resolver: resolver,
		log:      *logger.GetNoopLogger(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Query returns the current query text.
func (c *Controller) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// SetQuery updates the query text without submitting it.
func (c *Controller) SetQuery(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query = text
}

// InFlight reports whether a search is running.
func (c *Controller) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// Pending is a search that passed validation and holds the in-flight slot.
type Pending struct {
	c     *Controller
	query string
	once  sync.Once
}

// Query returns the trimmed query being resolved.
func (p *Pending) Query() string {
	return p.query
}

// Begin validates query and claims the in-flight slot. A blank query or a
// second submission while one is running is rejected without side effects.
func (c *Controller) Begin(query string) (*Pending, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, ErrEmptyQuery
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight {
		c.log.V(1).Info("search rejected", logger.QueryKey, q, "reason", ErrInFlight.Error())
		return nil, ErrInFlight
	}
	c.inFlight = true
	c.query = query
	c.log.V(1).Info("search started", logger.QueryKey, q)
	return &Pending{c: c, query: q}, nil
}

// Run calls the resolver once and replaces the store when the payload is a
// valid record array. The in-flight slot is released in every case. Calling
// Run a second time returns a failed outcome without calling the resolver.
func (p *Pending) Run(ctx context.Context) Outcome {
	ran := false
	var out Outcome
	p.once.Do(func() {
		ran = true
		out = p.run(ctx)
	})
	if !ran {
		return Outcome{Query: p.query, Status: StatusFailed, Err: errors.New("search already completed"), Notice: "Search already completed"}
	}
	return out
}

func (p *Pending) run(ctx context.Context) Outcome {
	c := p.c
	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
	}()

	start := c.now()
	out := Outcome{Query: p.query}
	payload, err := c.resolver.Resolve(ctx, p.query)
	out.Duration = c.now().Sub(start)

	switch {
	case err != nil:
		out.Status = StatusFailed
		out.Err = err
		out.Notice = "Search failed; showing previous results"
		out.Generation = c.store.Generation()
	default:
		rows, derr := record.DecodeRows(c.schema, payload)
		if derr != nil {
			out.Status = StatusMalformed
			out.Err = derr
			out.Notice = "Search returned an unexpected response; showing previous results"
			out.Generation = c.store.Generation()
			break
		}
		out.Status = StatusReplaced
		out.Rows = len(rows)
		out.Generation = c.store.Replace(rows)
	}

	if out.Err != nil {
		c.log.V(1).Info("search finished", logger.QueryKey, p.query, "status", out.Status.String(), "error", out.Err.Error(), "duration", out.Duration.String())
	} else {
		c.log.V(1).Info("search finished", logger.QueryKey, p.query, "status", out.Status.String(),
			logger.RowsKey, out.Rows, logger.GenerationKey, out.Generation, "duration", out.Duration.String())
	}
	return out
}

// Submit is Begin followed by Run on the calling goroutine.
func (c *Controller) Submit(ctx context.Context, query string) (Outcome, error) {
	p, err := c.Begin(query)
	if err != nil {
		return Outcome{}, err
	}
	return p.Run(ctx), nil
}
