package sparql

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// Client defaults. The config package carries the user-facing defaults;
// these exist so a bare NewClient(endpoint) is usable on its own.
const (
	defaultTimeout     = 30 * time.Second
	defaultUserAgent   = "wikimark/1.0 (+https://github.com/wikimark/wikimark)"
	defaultMaxBodySize = 5 * 1024 * 1024 // 5MB
	defaultQueryRate   = rate.Limit(2)
	defaultQueryBurst  = 4
)

// acceptResultsJSON is the media type of the standard SPARQL JSON results.
const acceptResultsJSON = "application/sparql-results+json"

// Client queries a SPARQL endpoint speaking the standard JSON results
// format. It is safe for concurrent use: the rate limiter coordinates
// goroutines and the underlying http.Client pools connections.
//
// Requests carry a descriptive User-Agent and no Referer, so the endpoint
// learns nothing about the resolved token beyond the query itself.
type Client struct {
	// endpoint is the SPARQL query service URL.
	endpoint string

	// httpClient performs the requests. A default client with a timeout is
	// created unless WithHTTPClient supplies one.
	httpClient *http.Client

	// userAgent is sent with every request. Public endpoints require a
	// descriptive value with contact information.
	userAgent string

	// limiter throttles outgoing queries below the endpoint's allowance.
	limiter *rate.Limiter

	// maxBodySize caps the number of response bytes read.
	maxBodySize int64

	// timeout applies to the default HTTP client only.
	timeout time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient supplies the HTTP client used for requests.
// The caller keeps responsibility for its timeout settings.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithUserAgent sets the User-Agent header sent to the endpoint.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithTimeout sets the request timeout of the default HTTP client.
// It has no effect when WithHTTPClient supplies a client.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithQueryRate sets the sustained query rate (per second) and burst.
func WithQueryRate(qps float64, burst int) ClientOption {
	return func(c *Client) {
		if qps > 0 && burst > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(qps), burst)
		}
	}
}

// WithMaxBodySize sets the maximum response body size in bytes.
func WithMaxBodySize(size int64) ClientOption {
	return func(c *Client) {
		if size > 0 {
			c.maxBodySize = size
		}
	}
}

// NewClient creates a Client for the given endpoint.
// The endpoint must be an http or https URL; the constructor validates the
// form but does not contact the endpoint.
func NewClient(endpoint string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEndpoint, endpoint)
	}

	c := &Client{
		endpoint:    endpoint,
		userAgent:   defaultUserAgent,
		limiter:     rate.NewLimiter(defaultQueryRate, defaultQueryBurst),
		maxBodySize: defaultMaxBodySize,
		timeout:     defaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}

	return c, nil
}

// Endpoint returns the configured endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Query executes a SPARQL query and returns the flattened result rows in
// the endpoint's order. It blocks on the rate limiter first, so a burst of
// resolutions queues rather than tripping the endpoint's throttling.
func (c *Client) Query(ctx context.Context, query string) ([]Row, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?query="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", acceptResultsJSON)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query endpoint: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // Response body close error is not actionable

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %s", ErrEndpointStatus, resp.Status)
	}

	rows, err := decodeRows(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return nil, err
	}

	return rows, nil
}
