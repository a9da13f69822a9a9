package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/kbukum/pipegen/httpclient"
)

// Client is a JSON-focused REST client that wraps the base HTTP client.
type Client struct {
	http *httpclient.Client
}

// New creates a new REST client from the given config.
// Accept: application/json is applied unless already set.
func New(cfg httpclient.Config) (*Client, error) {
	if cfg.Headers == nil {
		cfg.Headers = make(map[string]string)
	}
	if _, ok := cfg.Headers["Accept"]; !ok {
		cfg.Headers["Accept"] = "application/json"
	}

	c, err := httpclient.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{http: c}, nil
}

// HTTP returns the underlying HTTP client.
func (c *Client) HTTP() *httpclient.Client {
	return c.http
}

// RequestOption configures a single REST request.
type RequestOption func(*httpclient.Request)

// WithQuery adds query parameters to the request.
func WithQuery(params map[string]string) RequestOption {
	return func(r *httpclient.Request) { r.Query = params }
}

// WithHeaders adds headers to the request.
func WithHeaders(headers map[string]string) RequestOption {
	return func(r *httpclient.Request) { r.Headers = headers }
}

// Response wraps a typed REST response.
type Response[T any] struct {
	StatusCode int
	Headers    map[string]string
	Data       T
	// Raw is the undecoded body.
	Raw []byte
}

// Get performs a GET request and decodes the JSON response into type T.
// A non-2xx response is returned as an *httpclient.Error without decoding.
func Get[T any](ctx context.Context, c *Client, path string, opts ...RequestOption) (*Response[T], error) {
	req := httpclient.Request{Method: http.MethodGet, Path: path}
	for _, opt := range opts {
		opt(&req)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	var data T
	if len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, &data); err != nil {
			return nil, &DecodeError{StatusCode: resp.StatusCode, Err: err}
		}
	}

	return &Response[T]{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Data:       data,
		Raw:        resp.Body,
	}, nil
}

// DecodeError reports a successful response whose body is not valid JSON for T.
type DecodeError struct {
	StatusCode int
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("httpclient/rest: decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
