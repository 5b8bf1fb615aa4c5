// ABOUTME: Standard HTTP client implementation performing single GET attempts
// ABOUTME: Retry and User-Agent policy live in the fetcher; this layer only moves bytes

package standard

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"newswire-api/core/interfaces"
)

const defaultUserAgent = "newswire/1.0"

// Option configures a StandardHTTPClient
type Option func(*StandardHTTPClient) error

// WithProxy routes every request through proxyURL
func WithProxy(proxyURL string) Option {
	return func(c *StandardHTTPClient) error {
		if proxyURL == "" {
			return nil
		}
		u, err := url.Parse(proxyURL)
		if err != nil {
			return fmt.Errorf("invalid proxy URL: %w", err)
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = http.ProxyURL(u)
		c.client.Transport = transport
		return nil
	}
}

// StandardHTTPClient implements the HTTPClient interface using net/http
type StandardHTTPClient struct {
	client *http.Client
}

// NewStandardHTTPClient creates a new HTTP client with the specified overall timeout
func NewStandardHTTPClient(timeout time.Duration, opts ...Option) (*StandardHTTPClient, error) {
	c := &StandardHTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Get performs one HTTP GET request with the given headers
func (c *StandardHTTPClient) Get(ctx context.Context, url string, headers map[string]string) (interfaces.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}

	return &httpResponse{
		statusCode: resp.StatusCode,
		body:       resp.Body,
		headers:    resp.Header,
	}, nil
}

// httpResponse implements the Response interface
type httpResponse struct {
	statusCode int
	body       io.ReadCloser
	headers    http.Header
}

// StatusCode returns the HTTP status code
func (r *httpResponse) StatusCode() int {
	return r.statusCode
}

// Body returns the response body
func (r *httpResponse) Body() io.ReadCloser {
	return r.body
}

// Header returns the value of the specified header
func (r *httpResponse) Header(key string) string {
	return r.headers.Get(key)
}
