// Package apiclient is the JSON-over-HTTP transport to the burger backend.
//
// Every round trip ends in one of two outcomes: success, or an error that
// matches ErrRequestFailed (non-2xx status or a transport failure). Callers
// are not expected to tell validation, not-found and server errors apart.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrRequestFailed matches every failed round trip.
var ErrRequestFailed = errors.New("request failed")

// RequestError describes a failed round trip for the log.
type RequestError struct {
	Method string
	Path   string
	Status int    // 0 when no response arrived
	Body   string // truncated response body
	Err    error  // transport error, if any
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	}
	if e.Body != "" {
		return fmt.Sprintf("%s %s: bad status %d: %s", e.Method, e.Path, e.Status, e.Body)
	}
	return fmt.Sprintf("%s %s: bad status %d", e.Method, e.Path, e.Status)
}

func (e *RequestError) Is(target error) bool { return target == ErrRequestFailed }

func (e *RequestError) Unwrap() error { return e.Err }

const errBodyLimit = 4096

// Client issues requests against a fixed base URL. Paths are passed per call.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *zap.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default transport, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New validates baseURL and builds a client whose requests time out after timeout.
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base url %q: missing host", baseURL)
	}
	c := &Client{
		base:   u,
		http:   httpClient(timeout),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string { return c.base.String() }

// ---------- HTTP ----------

func httpClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 60 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// Do sends body (JSON-encoded when non-nil) to path and decodes a 2xx response
// into out when out is non-nil. An empty 2xx body is a success. There is no retry.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, reader)
	if err != nil {
		return &RequestError{Method: method, Path: path, Err: err}
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := c.logger.With(zap.String("method", method), zap.String("path", path), zap.String("request_id", reqID))
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		log.Debug("Request failed", zap.Error(err))
		return &RequestError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	log.Debug("Response", zap.Int("status", resp.StatusCode), zap.Duration("took", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))
		return &RequestError{Method: method, Path: path, Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			// 2xx with no body, e.g. a bare 201 or 204; out is left untouched.
			return nil
		}
		return &RequestError{Method: method, Path: path, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
