package search

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-logr/zapr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/oakwood-commons/crmx/internal/record"
	"github.com/oakwood-commons/crmx/internal/store"
	"github.com/oakwood-commons/crmx/internal/view"
	"github.com/oakwood-commons/crmx/pkg/logger"
)

type fakeResolver struct {
	calls   atomic.Int32
	payload []byte
	err     error
}

func (f *fakeResolver) Resolve(_ context.Context, _ string) ([]byte, error) {
	f.calls.Add(1)
	return f.payload, f.err
}

func aliceBob() []record.Record {
	return []record.Record{
		record.New("1", map[string]any{"name": "Alice", "aum": 5000.0}),
		record.New("2", map[string]any{"name": "Bob", "aum": 20000.0}),
	}
}

func TestSubmitReplacesStore(t *testing.T) {
	st := store.New(aliceBob())
	res := &fakeResolver{payload: []byte(`[{"id":2,"name":"Bob","aum":20000}]`)}
	c := New(st, record.CustomerSchema(), res)

	out, err := c.Submit(context.Background(), "  big accounts ")
	require.NoError(t, err)

	assert.Equal(t, StatusReplaced, out.Status)
	assert.Equal(t, "big accounts", out.Query)
	assert.Equal(t, 1, out.Rows)
	assert.Equal(t, uint64(1), out.Generation)
	assert.NoError(t, out.Err)
	assert.Empty(t, out.Notice)
	require.Len(t, st.Current(), 1)
	assert.Equal(t, "2", st.Current()[0].ID())
	assert.False(t, c.InFlight())
}

func TestReplacementKeepsViewConfig(t *testing.T) {
	schema := record.CustomerSchema()
	st := store.New(aliceBob())
	pred, err := view.ParseFilter(schema, "aum", "<10000")
	require.NoError(t, err)
	cfg := view.Config{Filter: view.FilterSpec{"aum": pred}}
	require.Equal(t, 1, view.Derive(schema, st.Current(), cfg).Total)

	res := &fakeResolver{payload: []byte(`[{"id":2,"name":"Bob","aum":20000}]`)}
	_, err = New(st, schema, res).Submit(context.Background(), "bob")
	require.NoError(t, err)

	derived := view.Derive(schema, st.Current(), cfg)
	assert.Empty(t, derived.Rows)
	assert.Equal(t, 0, derived.Total)
}

func TestSubmitEmptyQueryIsNoop(t *testing.T) {
	for _, q := range []string{"", "   ", "\t\n"} {
		st := store.New(aliceBob())
		res := &fakeResolver{payload: []byte(`[]`)}
		c := New(st, record.CustomerSchema(), res)

		_, err := c.Submit(context.Background(), q)

		require.ErrorIs(t, err, ErrEmptyQuery)
		assert.Zero(t, res.calls.Load())
		assert.False(t, c.InFlight())
		assert.Len(t, st.Current(), 2)
		assert.Zero(t, st.Generation())
	}
}

func TestSubmitMalformedLeavesStore(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"single object", `{"id":1,"name":"Alice","aum":5000}`},
		{"null", `null`},
		{"scalar", `"nope"`},
		{"non object element", `[{"id":1,"name":"A"}, 3]`},
		{"not json", `<html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := store.New(aliceBob())
			c := New(st, record.CustomerSchema(), &fakeResolver{payload: []byte(tt.payload)})

			out, err := c.Submit(context.Background(), "anything")
			require.NoError(t, err)

			assert.Equal(t, StatusMalformed, out.Status)
			require.ErrorIs(t, out.Err, record.ErrMalformed)
			assert.NotEmpty(t, out.Notice)
			assert.Len(t, st.Current(), 2)
			assert.Zero(t, st.Generation())
			assert.False(t, c.InFlight())
		})
	}
}

func TestSubmitTransportFailureLeavesStore(t *testing.T) {
	st := store.New(aliceBob())
	boom := errors.New("connection refused")
	c := New(st, record.CustomerSchema(), &fakeResolver{err: boom})

	out, err := c.Submit(context.Background(), "anything")
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, out.Status)
	assert.ErrorIs(t, out.Err, boom)
	assert.NotEmpty(t, out.Notice)
	assert.Len(t, st.Current(), 2)
	assert.False(t, c.InFlight())
}

func TestEmptyArrayClearsStore(t *testing.T) {
	st := store.New(aliceBob())
	c := New(st, record.CustomerSchema(), &fakeResolver{payload: []byte(`[]`)})

	out, err := c.Submit(context.Background(), "nobody")
	require.NoError(t, err)

	assert.Equal(t, StatusReplaced, out.Status)
	assert.Empty(t, st.Current())
}

func TestBeginRejectsWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var calls atomic.Int32
	resolver := ResolverFunc(func(ctx context.Context, q string) ([]byte, error) {
		calls.Add(1)
		close(started)
		<-release
		return []byte(`[{"id":"9","name":"Zed"}]`), nil
	})
	st := store.New(aliceBob())
	c := New(st, record.CustomerSchema(), resolver)

	p, err := c.Begin("first")
	require.NoError(t, err)
	assert.True(t, c.InFlight())

	done := make(chan Outcome, 1)
	go func() { done <- p.Run(context.Background()) }()
	<-started

	_, err = c.Begin("second")
	require.ErrorIs(t, err, ErrInFlight)
	assert.Equal(t, "first", c.Query())

	close(release)
	out := <-done
	assert.Equal(t, StatusReplaced, out.Status)
	assert.Equal(t, int32(1), calls.Load())
	assert.False(t, c.InFlight())

	_, err = c.Begin("third")
	assert.NoError(t, err)
}

func TestPendingRunsOnce(t *testing.T) {
	res := &fakeResolver{payload: []byte(`[]`)}
	c := New(store.New(nil), record.CustomerSchema(), res)
	p, err := c.Begin("q")
	require.NoError(t, err)
	assert.Equal(t, "q", p.Query())

	first := p.Run(context.Background())
	second := p.Run(context.Background())

	assert.Equal(t, StatusReplaced, first.Status)
	assert.Equal(t, StatusFailed, second.Status)
	assert.Equal(t, int32(1), res.calls.Load())
}

func TestQueryText(t *testing.T) {
	c := New(store.New(nil), record.CustomerSchema(), &fakeResolver{})
	c.SetQuery("high risk")
	assert.Equal(t, "high risk", c.Query())
	assert.False(t, c.InFlight())
}

func TestOutcomeDurationAndLogging(t *testing.T) {
	var buf bytes.Buffer
	zl := logger.NewZap(-1, zapcore.AddSync(&buf))
	tick := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		tick = tick.Add(250 * time.Millisecond)
		return tick
	}
	c := New(store.New(nil), record.CustomerSchema(), &fakeResolver{payload: []byte(`[]`)},
		WithLogger(zapr.NewLogger(zl)), WithClock(clock))

	out, err := c.Submit(context.Background(), "recent")
	require.NoError(t, err)
	require.NoError(t, zl.Sync())

	assert.Equal(t, 250*time.Millisecond, out.Duration)
	assert.Contains(t, buf.String(), `"query":"recent"`)
	assert.Contains(t, buf.String(), `"status":"replaced"`)
	assert.Contains(t, buf.String(), `"generation":1`)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "replaced", StatusReplaced.String())
	assert.Equal(t, "malformed", StatusMalformed.String())
	assert.Equal(t, "failed", StatusFailed.String())
	assert.Equal(t, "unknown", Status(42).String())
}
