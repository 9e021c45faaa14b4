package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(Config{BaseURL: srv.URL + "/api/", UserAgent: "crmx/test"})
	require.NoError(t, err)
	return c
}

func TestResolvePostsMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/customers/filter", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "crmx/test", r.Header.Get("User-Agent"))
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "high risk clients", body["message"])
		_, _ = io.WriteString(w, `[{"id":"3","name":"Carol Lee"}]`)
	})

	raw, err := c.Resolve(context.Background(), "high risk clients")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"3","name":"Carol Lee"}]`, string(raw))
}

func TestResolveReturnsBodyUnvalidated(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"detail":"not a list"}`)
	})
	raw, err := c.Resolve(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, `{"detail":"not a list"}`, string(raw))
}

func TestReply(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chatbot/", r.URL.Path)
		_, _ = io.WriteString(w, `{"response":"You have 20 customers."}`)
	})
	reply, err := c.Reply(context.Background(), "how many?")
	require.NoError(t, err)
	assert.Equal(t, "You have 20 customers.", reply)
}

func TestReplyInvalidJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `not json`)
	})
	_, err := c.Reply(context.Background(), "hi")
	var ce *ClientError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrTypeInvalidResponse, ce.Type)
}

func TestListCustomersQuery(t *testing.T) {
	minAUM, maxAge := 100000, 50
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/customers/", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "female", q.Get("gender"))
		assert.Equal(t, "100000", q.Get("aum_min"))
		assert.Equal(t, "50", q.Get("age_max"))
		assert.Equal(t, "aum", q.Get("sort_by"))
		assert.False(t, q.Has("riskProfile"))
		assert.Empty(t, r.Header.Get("Content-Type"))
		_, _ = io.WriteString(w, `[]`)
	})

	raw, err := c.ListCustomers(context.Background(), ListParams{Gender: "female", AUMMin: &minAUM, AgeMax: &maxAge, SortBy: "aum"})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestParseListParams(t *testing.T) {
	p, err := ParseListParams("?gender=female&riskProfile=low&aum_min=100000&aum_max=500000&age_min=30&sort_by=aum&sort_dir=asc&search=al")
	require.NoError(t, err)
	assert.Equal(t, "female", p.Gender)
	assert.Equal(t, "low", p.RiskProfile)
	assert.Equal(t, "aum", p.SortBy)
	assert.Equal(t, "asc", p.SortDir)
	assert.Equal(t, "al", p.Search)
	require.NotNil(t, p.AUMMin)
	require.NotNil(t, p.AUMMax)
	require.NotNil(t, p.AgeMin)
	assert.Equal(t, 100000, *p.AUMMin)
	assert.Equal(t, 500000, *p.AUMMax)
	assert.Equal(t, 30, *p.AgeMin)
	assert.Nil(t, p.AgeMax)
	assert.Equal(t, "age_min=30&aum_max=500000&aum_min=100000&gender=female&riskProfile=low&search=al&sort_by=aum&sort_dir=asc", p.values().Encode())

	empty, err := ParseListParams("")
	require.NoError(t, err)
	assert.Equal(t, ListParams{}, empty)

	tests := []struct {
		name  string
		query string
	}{
		{"unknown key", "colour=red"},
		{"non-integer bound", "age_min=old"},
		{"bad escape", "search=%zz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseListParams(tt.query)
			require.Error(t, err)
		})
	}
}

func TestStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err := c.ListCustomers(context.Background(), ListParams{Search: "al"})
	var ce *ClientError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrTypeStatus, ce.Type)
	assert.Equal(t, http.StatusInternalServerError, ce.StatusCode)
	assert.Equal(t, "api /customers/ returned status 500", err.Error())
	assert.False(t, errors.Is(err, ErrUnavailable))
}

func TestConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := NewClient(Config{BaseURL: base})
	require.NoError(t, err)
	_, err = c.Resolve(context.Background(), "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	c, err := NewClient(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)
	_, err = c.Reply(context.Background(), "slow")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestParseBaseURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", DefaultBaseURL, false},
		{"localhost:8000/api", "http://localhost:8000/api", false},
		{"https://crm.example.com/api/", "https://crm.example.com/api", false},
		{"ftp://crm.example.com", "", true},
		{"http://", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseBaseURL(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaults(t *testing.T) {
	c, err := NewClient(Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.Equal(t, DefaultTimeout, c.http.Timeout)
	assert.Contains(t, c.userAgent, "crmx/")
}
