// Package httpclient provides the HTTP client shared by the catalog,
// directory, asset and provisioning call sites. It wraps the resty library
// with connection pooling and optional rate limiting, and executes every
// request through the shared retry policy: resty's own retry machinery stays
// disabled so that the policy is the single place deciding whether and when
// to retry.
//
// Example usage:
//
//	client := httpclient.New(cfg.HTTPClient, "https://shop.example.com", policy)
//	defer client.Close()
//
//	op := retry.NewOperation("CatalogFetch.Products", url, "product")
//	resp, err := client.Get("/wp-json/wc/store/v1/products").Do(ctx, op)
package httpclient

import (
	"context"
	"net/http"

	"golang.org/x/time/rate"
	"resty.dev/v3"

	"github.com/storemover/smi/pkg/config"
	"github.com/storemover/smi/pkg/errors"
	"github.com/storemover/smi/pkg/retry"
)

// Client executes HTTP requests against one base URL under the shared retry
// policy. It is safe for concurrent use.
type Client struct {
	resty   *resty.Client
	policy  *retry.Policy
	limiter *rate.Limiter
	cfg     config.HTTPClientConfig
}

// New creates a Client for the given base URL. The policy drives the attempt
// loop of every request issued through this client.
func New(cfg config.HTTPClientConfig, baseURL string, policy *retry.Policy) *Client {
	restyClient := resty.New()
	if baseURL != "" {
		restyClient.SetBaseURL(baseURL)
	}
	restyClient.SetTimeout(cfg.Timeout)
	if cfg.UserAgent != "" {
		restyClient.SetHeader("User-Agent", cfg.UserAgent)
	}

	restyClient.SetTransport(&http.Transport{
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		MaxConnsPerHost:     cfg.MaxConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		TLSHandshakeTimeout: cfg.TLSHandshakeTimeout,
	})

	var limiter *rate.Limiter
	if cfg.RateLimitPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitPerSecond), cfg.RateLimitBurst)
	}

	return &Client{
		resty:   restyClient,
		policy:  policy,
		limiter: limiter,
		cfg:     cfg,
	}
}

// Get creates a new GET request for the specified URL.
// The URL can be relative (appended to the base URL) or absolute.
func (c *Client) Get(url string) *Request {
	return c.NewRequest().SetMethod(http.MethodGet).SetURL(url)
}

// Post creates a new POST request for the specified URL.
func (c *Client) Post(url string) *Request {
	return c.NewRequest().SetMethod(http.MethodPost).SetURL(url)
}

// Put creates a new PUT request for the specified URL.
func (c *Client) Put(url string) *Request {
	return c.NewRequest().SetMethod(http.MethodPut).SetURL(url)
}

// Delete creates a new DELETE request for the specified URL.
func (c *Client) Delete(url string) *Request {
	return c.NewRequest().SetMethod(http.MethodDelete).SetURL(url)
}

// NewRequest creates an empty request bound to this client.
func (c *Client) NewRequest() *Request {
	return &Request{client: c}
}

// BaseURL returns the client's configured base URL.
func (c *Client) BaseURL() string {
	return c.resty.BaseURL()
}

// Close releases all resources associated with the client.
func (c *Client) Close() error {
	return c.resty.Close()
}

// checkRateLimit enforces the configured request rate before an attempt.
// Each retry attempt takes its own token, keeping the scraper polite even
// while backing off.
func (c *Client) checkRateLimit(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "rate limit wait failed")
	}
	return nil
}
