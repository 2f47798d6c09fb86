// Package youtube finds companion videos through the YouTube Data API search endpoint.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/AndrewDonelson/viola-flow/internal/apperr"
	"github.com/goccy/go-json"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrDisabled is returned when no API key is configured
	ErrDisabled = errors.New("youtube search disabled: no API key")
	// ErrNoResults is returned when the search matched nothing
	ErrNoResults = errors.New("youtube search returned no results")
)

// Finder resolves a free-text query to a watch URL
type Finder interface {
	Find(ctx context.Context, query string) (string, error)
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

// Client calls the search endpoint behind a circuit breaker
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
	group   singleflight.Group
	log     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithBaseURL points the client at another API root
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.baseURL = base
	}
}

// WithTimeout bounds one shared search request; zero keeps the default
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithBreakerSettings replaces the breaker configuration
func WithBreakerSettings(st gobreaker.Settings) Option {
	return func(c *Client) {
		c.breaker = gobreaker.NewCircuitBreaker(st)
	}
}

// NewClient creates a search client; an empty apiKey disables lookups
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: "https://www.googleapis.com/youtube/v3",
		http:    &http.Client{Timeout: 10 * time.Second},
		timeout: 10 * time.Second,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.breaker == nil {
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "youtube-search",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				c.log.Warn("Circuit breaker state changed",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()))
			},
		})
	}

	return c
}

// Find returns the watch URL of the first video matching query
func (c *Client) Find(ctx context.Context, query string) (string, error) {
	if c.apiKey == "" {
		return "", ErrDisabled
	}

	// the search is shared by every caller of query, so it outlives any
	// single caller's ctx and is bounded by its own timeout instead
	ch := c.group.DoChan(query, func() (interface{}, error) {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return c.breaker.Execute(func() (interface{}, error) {
			return c.search(sctx, query)
		})
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return "", res.Err
	}

	id := res.Val.(string)
	if id == "" {
		return "", ErrNoResults
	}
	return WatchURL(id), nil
}

// search returns the first video id, or "" when the result set is empty.
// An empty result is not a breaker failure.
func (c *Client) search(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("maxResults", "1")
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", apperr.Upstream("youtube search request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", apperr.Upstream(fmt.Sprintf("youtube search returned %d", resp.StatusCode), nil)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", apperr.Upstream("youtube search returned malformed JSON", err)
	}

	if len(payload.Items) == 0 {
		return "", nil
	}
	return payload.Items[0].ID.VideoID, nil
}
