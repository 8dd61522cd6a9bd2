package strapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/providentiaww/strapi-mcp/pkg/mcp"
)

// DefaultTimeout bounds every outbound call when no timeout is configured
const DefaultTimeout = 10 * time.Second

// sharedTransport pools connections to the content API across clients
var sharedTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
}

// Client issues REST calls against a Strapi instance
type Client struct {
	baseURL    string
	encoding   FiltersEncoding
	httpClient *http.Client
}

// Option customises a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithFiltersEncoding selects the query-string encoding for filters
func WithFiltersEncoding(enc FiltersEncoding) Option {
	return func(c *Client) {
		if enc != "" {
			c.encoding = enc
		}
	}
}

// NewClient creates a client for baseURL (e.g. "http://127.0.0.1:1337")
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		encoding: EncodingJSON,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: sharedTransport,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured API root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FiltersEncoding returns the configured filters encoding
func (c *Client) FiltersEncoding() FiltersEncoding {
	return c.encoding
}

// Request describes one outbound call
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   interface{} // JSON-encoded when non-nil
}

// Response is the raw result of an outbound call
type Response struct {
	StatusCode int
	Body       []byte
}

// JSON decodes the body. An empty body decodes to nil. Numbers are kept as
// json.Number so they re-encode exactly as received.
func (r *Response) JSON() (interface{}, error) {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(r.Body))
	dec.UseNumber()
	var out interface{}
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("decoding response: unexpected data after top-level value")
	}
	return out, nil
}

// Do sends req and reads the full response. A non-nil error means the call
// did not complete; any HTTP status is returned in the Response.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if id := mcp.RequestID(ctx); id != "" {
		httpReq.Header.Set("X-Request-ID", id)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}

// Ping probes /admin/init and returns its status code
func (c *Client) Ping(ctx context.Context) (int, error) {
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/admin/init"})
	if err != nil {
		return 0, err
	}
	return resp.StatusCode, nil
}

// CollectionPath builds /api/{contentType}
func CollectionPath(contentType string) string {
	return "/api/" + url.PathEscape(contentType)
}

// EntryPath builds /api/{contentType}/{id}
func EntryPath(contentType, id string) string {
	return CollectionPath(contentType) + "/" + url.PathEscape(id)
}

// ContentTypesPath is the content-type-builder listing endpoint
const ContentTypesPath = "/api/content-type-builder/content-types"
