package e2etest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Client struct {
	client *http.Client
	url    string
	// headers are added to every request.
	headers http.Header
}

// NewClient creates a JSON API client for the server at url.
func NewClient(url string) *Client {
	return &Client{
		client:  &http.Client{Timeout: 5 * time.Second}, //nolint:mnd // generous for tests.
		url:     url,
		headers: make(http.Header),
	}
}

// WithHeader returns a copy of the client that sends the header with every request.
func (c *Client) WithHeader(key, value string) *Client {
	headers := c.headers.Clone()
	headers.Set(key, value)
	return &Client{client: c.client, url: c.url, headers: headers}
}

// WaitForReady calls the specified endpoint until it gets a HTTP 200 Success
// response or until the context is cancelled or the 1-second timeout is reached.
func (c *Client) WaitForReady(ctx context.Context, urlPath string) error {
	timeout := 1 * time.Second
	startTime := time.Now()
	for {
		resp, err := c.Do(ctx, http.MethodGet, urlPath, "", nil)
		if err == nil {
			if err = resp.Body.Close(); err != nil {
				return fmt.Errorf("close response body: %w", err)
			}
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
			if time.Since(startTime) >= timeout {
				return errors.New("timeout waiting for endpoint to be ready")
			}
			time.Sleep(100 * time.Millisecond) //nolint:mnd // 100ms
		}
	}
}

// Do sends a request with an optional body and returns the response. The caller closes the body.
func (c *Client) Do(ctx context.Context, method, urlPath, contentType string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url+urlPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for key, values := range c.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	return resp, nil
}

// Get fetches a URL and returns the response.
func (c *Client) Get(ctx context.Context, urlPath string) (*http.Response, error) {
	return c.Do(ctx, http.MethodGet, urlPath, "", nil)
}

// GetJSON fetches urlPath and decodes the JSON response into v. It returns the status code.
func (c *Client) GetJSON(ctx context.Context, urlPath string, v any) (int, error) {
	resp, err := c.Get(ctx, urlPath)
	if err != nil {
		return 0, fmt.Errorf("client get: %w", err)
	}
	return DecodeJSON(resp, v)
}

// PostJSON encodes in as the request body and decodes the response into out. It returns the status code.
func (c *Client) PostJSON(ctx context.Context, urlPath string, in, out any) (int, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return 0, fmt.Errorf("marshal request: %w", err)
	}
	resp, err := c.Do(ctx, http.MethodPost, urlPath, "application/json", body)
	if err != nil {
		return 0, fmt.Errorf("client post: %w", err)
	}
	return DecodeJSON(resp, out)
}

// DecodeJSON reads and closes the response body and decodes it into v unless v is nil or the body is empty.
// It returns the status code.
func DecodeJSON(resp *http.Response, v any) (_ int, err error) {
	defer func() {
		err = errors.Join(err, resp.Body.Close())
	}()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response body: %w", err)
	}
	if v == nil || len(data) == 0 {
		return resp.StatusCode, nil
	}
	if err = json.Unmarshal(data, v); err != nil {
		return resp.StatusCode, fmt.Errorf("unmarshal response %q: %w", data, err)
	}
	return resp.StatusCode, nil
}
