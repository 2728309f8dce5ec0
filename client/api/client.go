// Package api is the REST client for the incubator backend. Each resource
// area lives in its own file; every call attaches the bearer token and
// returns decoded JSON or an error for non-2xx responses.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"incubator/portal/logger"
)

// TokenSource supplies the current bearer token. An empty token means anonymous.
type TokenSource interface {
	Token() string
}

// HTTPError is returned for any non-2xx response.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool {
	var herr *HTTPError
	return errors.As(err, &herr) && herr.StatusCode == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	var herr *HTTPError
	return errors.As(err, &herr) && herr.StatusCode == http.StatusNotFound
}

// Client talks to one backend origin.
type Client struct {
	baseURL string
	http    *http.Client
	log     logger.Logger

	mu             sync.RWMutex
	tokens         TokenSource
	onUnauthorized func()
}

// Option customizes a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New returns a client for baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		log:     logger.Discard,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UseTokens wires the token source and the hook invoked on a 401 response.
// It is separate from New because the session manager itself needs a client to log in.
func (c *Client) UseTokens(ts TokenSource, onUnauthorized func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = ts
	c.onUnauthorized = onUnauthorized
}

// BaseURL returns the configured origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ResolveURL turns a server-assigned URL into an absolute one. Absolute URLs are
// returned unchanged; origin-relative ones get the backend origin prefixed.
func (c *Client) ResolveURL(raw string) string {
	if raw == "" {
		return ""
	}
	if u, err := url.Parse(raw); err == nil && u.IsAbs() {
		return raw
	}
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	return c.baseURL + raw
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("building %s %s: %w", method, path, err)
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do issues a JSON request. in may be nil; out may be nil to discard the body.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

// upload posts a single file as multipart field "file" plus optional text fields.
func (c *Client) upload(ctx context.Context, path, filename string, r io.Reader, fields map[string]string, out interface{}) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return fmt.Errorf("writing field %s: %w", k, err)
		}
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(fw, r); err != nil {
		return fmt.Errorf("copying %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("closing multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("request failed", map[string]interface{}{"method": req.Method, "path": req.URL.Path}, err)
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		herr := &HTTPError{StatusCode: resp.StatusCode, Message: errorMessage(resp)}
		c.log.Error("request rejected", map[string]interface{}{"method": req.Method, "path": req.URL.Path, "status": resp.StatusCode}, herr)
		if resp.StatusCode == http.StatusUnauthorized {
			c.mu.RLock()
			hook := c.onUnauthorized
			c.mu.RUnlock()
			if hook != nil {
				hook()
			}
		}
		return herr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s %s: %w", req.Method, req.URL.Path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := decodeStrict(data, out); err != nil {
		var unknown *unknownFieldError
		if !errors.As(err, &unknown) {
			return fmt.Errorf("decoding %s %s: %w", req.Method, req.URL.Path, err)
		}
		// Unknown fields are tolerated but never read; log the shape drift.
		c.log.Warn("unexpected response field", map[string]interface{}{"path": req.URL.Path, "field": unknown.field})
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding %s %s: %w", req.Method, req.URL.Path, err)
		}
	}
	return nil
}

type unknownFieldError struct {
	field string
}

func (e *unknownFieldError) Error() string {
	return "unknown field " + e.field
}

func decodeStrict(data []byte, out interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	err := dec.Decode(out)
	if err != nil && strings.HasPrefix(err.Error(), "json: unknown field ") {
		return &unknownFieldError{field: strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)}
	}
	return err
}

// errorMessage prefers a JSON "message" (or "error") field and falls back to
// "HTTP error! status: N".
func errorMessage(resp *http.Response) string {
	fallback := fmt.Sprintf("HTTP error! status: %d", resp.StatusCode)
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(data) == 0 {
		return fallback
	}
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return fallback
	}
	switch {
	case body.Message != "":
		return body.Message
	case body.Error != "":
		return body.Error
	default:
		return fallback
	}
}

func idPath(prefix string, id int) string {
	return fmt.Sprintf("%s/%d", prefix, id)
}
