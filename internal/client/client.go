// Package client talks to the CRM HTTP API: natural-language customer
// filtering, the chatbot, and the customer listing.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/oakwood-commons/crmx/pkg/settings"
)

const (
	DefaultBaseURL = settings.DefaultAPIURL
	DefaultTimeout = 10 * time.Second

	maxBodyBytes = 8 << 20
)

// ErrorType categorizes client errors.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeTimeout
	ErrTypeStatus
	ErrTypeInvalidResponse
)

func (t ErrorType) String() string {
	switch t {
	case ErrTypeConnection:
		return "connection"
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeStatus:
		return "status"
	case ErrTypeInvalidResponse:
		return "invalid response"
	}
	return "unknown"
}

// ClientError is returned by every Client call.
type ClientError struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Cause      error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is matches the sentinel errors by type.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	if !ok {
		return false
	}
	return (t == ErrTimeout || t == ErrUnavailable) && t.Type == e.Type
}

// Sentinel errors for errors.Is checks.
var (
	ErrTimeout     = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrUnavailable = &ClientError{Type: ErrTypeConnection, Message: "api unavailable"}
)

// Config configures a Client. Zero values fall back to the defaults.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Client is the CRM API client.
type Client struct {
	base      string
	http      *http.Client
	userAgent string
}

// NewClient validates cfg and builds a Client.
func NewClient(cfg Config) (*Client, error) {
	base, err := parseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ua := strings.TrimSpace(cfg.UserAgent)
	if ua == "" {
		ua = settings.UserAgent()
	}
	return &Client{
		base:      base,
		http:      &http.Client{Timeout: timeout},
		userAgent: ua,
	}, nil
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	return c.base
}

type messageRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// Resolve posts a natural-language query to /customers/filter and returns the
// raw response body. Validation of the payload is left to the caller.
func (c *Client) Resolve(ctx context.Context, query string) ([]byte, error) {
	return c.do(ctx, http.MethodPost, "/customers/filter", messageRequest{Message: query})
}

// Reply sends a chat message to /chatbot/ and returns the assistant response.
func (c *Client) Reply(ctx context.Context, message string) (string, error) {
	body, err := c.do(ctx, http.MethodPost, "/chatbot/", messageRequest{Message: message})
	if err != nil {
		return "", err
	}
	var payload chatResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "decode response", Cause: err}
	}
	return payload.Response, nil
}

// ListParams are the server-side filters of GET /customers/.
type ListParams struct {
	Search      string
	SortBy      string
	SortDir     string
	Gender      string
	RiskProfile string
	AUMMin      *int
	AUMMax      *int
	AgeMin      *int
	AgeMax      *int
}

func (p ListParams) values() url.Values {
	values := url.Values{}
	set := func(key, v string) {
		if v = strings.TrimSpace(v); v != "" {
			values.Set(key, v)
		}
	}
	setInt := func(key string, v *int) {
		if v != nil {
			values.Set(key, strconv.Itoa(*v))
		}
	}
	set("search", p.Search)
	set("sort_by", p.SortBy)
	set("sort_dir", p.SortDir)
	set("gender", p.Gender)
	set("riskProfile", p.RiskProfile)
	setInt("aum_min", p.AUMMin)
	setInt("aum_max", p.AUMMax)
	setInt("age_min", p.AgeMin)
	setInt("age_max", p.AgeMax)
	return values
}

// ParseListParams reads list filters from a URL query string such as
// "riskProfile=low&aum_min=100000". Unknown keys and non-integer bounds are
// errors.
func ParseListParams(query string) (ListParams, error) {
	var p ListParams
	values, err := url.ParseQuery(strings.TrimPrefix(query, "?"))
	if err != nil {
		return p, fmt.Errorf("parse list parameters: %w", err)
	}
	for key, vs := range values {
		v := strings.TrimSpace(vs[len(vs)-1])
		var bound **int
		switch key {
		case "search":
			p.Search = v
		case "sort_by":
			p.SortBy = v
		case "sort_dir":
			p.SortDir = v
		case "gender":
			p.Gender = v
		case "riskProfile":
			p.RiskProfile = v
		case "aum_min":
			bound = &p.AUMMin
		case "aum_max":
			bound = &p.AUMMax
		case "age_min":
			bound = &p.AgeMin
		case "age_max":
			bound = &p.AgeMax
		default:
			return ListParams{}, fmt.Errorf("unknown list parameter %q", key)
		}
		if bound != nil {
			n, err := strconv.Atoi(v)
			if err != nil {
				return ListParams{}, fmt.Errorf("list parameter %s: %q is not an integer", key, v)
			}
			*bound = &n
		}
	}
	return p, nil
}

// ListCustomers fetches GET /customers/ and returns the raw body.
func (c *Client) ListCustomers(ctx context.Context, params ListParams) ([]byte, error) {
	path := "/customers/"
	if q := params.values().Encode(); q != "" {
		path += "?" + q
	}
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "marshal request", Cause: err}
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "create request", Cause: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, &ClientError{Type: ErrTypeTimeout, Message: "request timed out", Cause: err}
		}
		return nil, &ClientError{Type: ErrTypeConnection, Message: "execute request", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	route, _, _ := strings.Cut(path, "?")
	if resp.StatusCode >= 400 {
		return nil, &ClientError{
			Type:       ErrTypeStatus,
			Message:    fmt.Sprintf("api %s returned status %d", route, resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if isTimeout(err) {
			return nil, &ClientError{Type: ErrTypeTimeout, Message: "request timed out", Cause: err}
		}
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "read response", Cause: err}
	}
	return data, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func parseBaseURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("parse api url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("parse api url %q: unsupported scheme %q", raw, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("parse api url %q: missing host", raw)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return strings.TrimRight(u.String(), "/"), nil
}
