// Package rbacapi is a typed client for the remote RBAC REST API.
//
// Every call is attempted once. The client holds no cached state: callers
// re-fetch after each mutation.
package rbacapi

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
)

const (
	rbacPrefix = "rbac"
	authPrefix = "auth"
)

// Observer records the outcome of API calls.
type Observer interface {
	ObserveAPICall(resource, method string, status int, err error)
}

// Client calls the RBAC API on behalf of one operator.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	observer   Observer
	token      string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithObserver attaches a metrics observer.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// NewClient constructs a client for the API rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("rbacapi: parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("rbacapi: base url %q must be absolute", baseURL)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WithToken returns a copy of the client that sends token as bearer
// credentials.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

// do issues one request. body, when non-nil, is sent as JSON; out, when
// non-nil, receives the decoded JSON response. Any non-2xx status is
// returned as *StatusError.
func (c *Client) do(ctx context.Context, method string, body, out any, segments ...string) error {
	resource := ""
	if len(segments) > 0 {
		resource = segments[0]
		if resource == rbacPrefix && len(segments) > 1 {
			resource = segments[1]
		}
	}
	status, err := c.roundTrip(ctx, method, body, out, segments)
	if c.observer != nil {
		c.observer.ObserveAPICall(resource, method, status, err)
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, method string, body, out any, segments []string) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("rbacapi: marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	endpoint := c.baseURL.JoinPath(escaped...)

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return 0, fmt.Errorf("rbacapi: build request: %w", err)
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
		return 0, fmt.Errorf("rbacapi: %s %s: %w", method, endpoint.Path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, readStatusError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("rbacapi: decode %s: %w", endpoint.Path, err)
	}
	return resp.StatusCode, nil
}

func readStatusError(resp *http.Response) error {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	msg := ""
	if err := json.Unmarshal(data, &payload); err == nil {
		msg = payload.Message
		if payload.Error != "" {
			msg = strings.TrimSpace(msg + ": " + payload.Error)
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(string(data))
	}
	return &StatusError{StatusCode: resp.StatusCode, Message: msg}
}
