// Package fetch retrieves remote media over HTTP, either buffered in memory
// for small payloads or streamed directly to disk for videos.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"mediagrab/internal/domain"
)

// Browser-like default so media hosts serve us like a regular client.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// CancelProbe reports whether the original requester has gone away. The
// streaming fetch consults it between chunks.
type CancelProbe func() bool

// Response is a fully buffered upstream response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Client fetches remote media.
type Client struct {
	http      *http.Client
	userAgent string
}

// New returns a Client backed by httpClient; nil uses http.DefaultClient.
func New(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{http: httpClient, userAgent: defaultUserAgent}
}

// Get issues a single GET and buffers the whole body in memory. Intended for
// individually small payloads such as images.
func (c *Client) Get(ctx context.Context, url string, headers http.Header) (*Response, error) {
	resp, err := c.do(ctx, url, headers)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &domain.UpstreamHTTPError{URL: url, Status: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch: read body from %s: %w", url, err)
	}
	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

func (c *Client) do(ctx context.Context, url string, headers http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: build request for %s: %w", url, err)
	}
	if headers != nil {
		req.Header = headers.Clone()
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %s: %w", url, err)
	}
	return resp, nil
}
