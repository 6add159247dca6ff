// Package contentapi provides an HTTP client for the Content Service that
// stores widgets and announcements, and for the local API of display clients.
package contentapi

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// DefaultTimeout bounds every request unless overridden
const DefaultTimeout = 10 * time.Second

// Client provides methods for interacting with the Content Service API
type Client struct {
	// baseURL is the API root, including its path (for example http://host:4000/api)
	baseURL *url.URL
	// httpClient is the underlying HTTP client
	httpClient *http.Client
	// token is the bearer token sent on authenticated routes
	token string
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithToken sets the authentication token
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithTLSConfig sets custom TLS configuration
func WithTLSConfig(config *tls.Config) ClientOption {
	return func(c *Client) {
		c.httpClient.Transport = &http.Transport{
			TLSClientConfig: config,
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new API client
func NewClient(baseURL string, options ...ClientOption) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")

	c := &Client{
		baseURL: u,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}

	for _, opt := range options {
		opt(c)
	}

	return c, nil
}

// BaseURL returns the API root the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// doRequest performs an HTTP request relative to the API root
func (c *Client) doRequest(ctx context.Context, method, pathStr string, body interface{}) (*http.Response, error) {
	ref, err := url.Parse(pathStr)
	if err != nil {
		return nil, fmt.Errorf("invalid request path %q: %w", pathStr, err)
	}
	u := *c.baseURL
	u.Path = path.Join(u.Path, ref.Path)
	u.RawQuery = ref.RawQuery

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("error encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}

	return resp, nil
}
