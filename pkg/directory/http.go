package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sipeed/chanscout/pkg/discovery"
	"github.com/sipeed/chanscout/pkg/logger"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout  = 15 * time.Second
	maxResponseBody = 4 << 20
)

// HTTPClient queries a JSON directory endpoint:
//
//	GET {base}?q=<query>&limit=<n>  ->  {"results": [Entry, ...]}
//
// Outbound requests share one token bucket.
type HTTPClient struct {
	base    *url.URL
	token   string
	client  *http.Client
	limiter *rate.Limiter
	groups  bool
}

type HTTPOption func(*HTTPClient)

// WithToken sends token as a bearer credential.
func WithToken(token string) HTTPOption {
	return func(c *HTTPClient) { c.token = token }
}

// WithGroups keeps megagroups and basic groups next to channels.
func WithGroups(include bool) HTTPOption {
	return func(c *HTTPClient) { c.groups = include }
}

func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(c *HTTPClient) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithRate limits outbound requests to rps with a burst of one.
func WithRate(rps float64) HTTPOption {
	return func(c *HTTPClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

func WithTimeout(d time.Duration) HTTPOption {
	return func(c *HTTPClient) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

func NewHTTPClient(base string, opts ...HTTPOption) (*HTTPClient, error) {
	if base == "" {
		return nil, ErrNoDirectory
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid directory URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid directory URL scheme %q", u.Scheme)
	}
	c := &HTTPClient{
		base:    u,
		client:  &http.Client{Timeout: defaultTimeout},
		limiter: rate.NewLimiter(rate.Limit(1), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *HTTPClient) Search(ctx context.Context, query string, limit int) ([]discovery.Candidate, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("directory rate limit: %w", err)
	}

	u := *c.base
	q := u.Query()
	q.Set("q", query)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directory request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("directory returned %d: %s", resp.StatusCode, string(body))
	}

	var out Response
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode directory response: %w", err)
	}
	cands := Candidates(out.Results, c.groups)
	cands = cands[:clampLimit(limit, len(cands))]

	logger.DebugCF("directory", "search", map[string]any{
		"query":      query,
		"raw":        len(out.Results),
		"candidates": len(cands),
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return cands, nil
}
