// Package client talks to the developer registration API and holds the form
// and list state a front end needs around it.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

const DefaultTimeout = 10 * time.Second

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	ErrTimeout = errors.New("request timed out")
	ErrNetwork = errors.New("network failure")
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Messages   []string
}

func (e *APIError) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, strings.Join(e.Messages, "; "))
}

func (e *APIError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

type Option func(*Client)

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.timeout = timeout }
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Create(ctx context.Context, input DeveloperInput) (Developer, error) {
	var developer Developer
	err := c.do(ctx, http.MethodPost, "/developers", input, &developer)
	return developer, err
}

func (c *Client) List(ctx context.Context) ([]Developer, error) {
	developers := []Developer{}
	err := c.do(ctx, http.MethodGet, "/developers", nil, &developers)
	return developers, err
}

func (c *Client) Get(ctx context.Context, id string) (Developer, error) {
	var developer Developer
	err := c.do(ctx, http.MethodGet, "/developers/"+url.PathEscape(id), nil, &developer)
	return developer, err
}

func (c *Client) Update(ctx context.Context, id string, patch DeveloperPatch) (Developer, error) {
	var developer Developer
	err := c.do(ctx, http.MethodPatch, "/developers/"+url.PathEscape(id), patch, &developer)
	return developer, err
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/developers/"+url.PathEscape(id), nil, nil)
}

// do runs one request bounded by the client timeout. The timeout only cancels
// the local call; the server may still finish the work.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%s %s: %w", method, path, ErrTimeout)
		}
		return fmt.Errorf("%s %s: %w: %v", method, path, ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%s %s: %w", method, path, ErrTimeout)
		}
		return fmt.Errorf("%s %s: %w: %v", method, path, ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp.StatusCode, data)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(status int, data []byte) error {
	apiErr := &APIError{StatusCode: status}

	var body struct {
		Message any `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return apiErr
	}

	switch message := body.Message.(type) {
	case string:
		apiErr.Messages = []string{message}
	case []any:
		for _, m := range message {
			if s, ok := m.(string); ok {
				apiErr.Messages = append(apiErr.Messages, s)
			}
		}
	}
	return apiErr
}
