// Package api is the single chokepoint for calls to the storefront REST
// backend. It merges JSON headers, injects the bearer token, evicts the
// session on 401 and turns every other non-2xx into a *RequestError.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type Config struct {
	BaseURL string
	Timeout time.Duration
	// MaxRetries applies to GET requests only. Zero disables retries.
	MaxRetries int
	RetryDelay time.Duration
}

// RequestOptions describes one call. Body is JSON-encoded unless it is an
// io.Reader, in which case ContentType is sent as is.
type RequestOptions struct {
	Method      string
	Query       url.Values
	Header      http.Header
	Body        any
	ContentType string
}

type Client struct {
	baseURL    string
	maxRetries int
	retryDelay time.Duration

	http      *http.Client
	creds     Credentials
	onExpired func(redirect string)
	log       *zap.Logger
	inflight  *singleflight.Group
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithCredentials(creds Credentials) Option {
	return func(c *Client) { c.creds = creds }
}

// WithSessionExpiredHandler is called with LoginRedirect after a 401.
func WithSessionExpiredHandler(fn func(redirect string)) Option {
	return func(c *Client) { c.onExpired = fn }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

func New(cfg Config, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 200 * time.Millisecond
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		http:       &http.Client{Timeout: cfg.Timeout},
		log:        zap.NewNop(),
		inflight:   &singleflight.Group{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// As returns a client sharing c's transport and hooks that authenticates
// with creds.
func (c *Client) As(creds Credentials) *Client {
	cp := *c
	cp.creds = creds
	return &cp
}

// WithToken is As with a fixed bearer token.
func (c *Client) WithToken(token string) *Client {
	return c.As(StaticToken(token))
}

// Request performs an unauthenticated call and decodes the response into
// out. A 204 or an empty body leaves out untouched.
func (c *Client) Request(ctx context.Context, endpoint string, opts RequestOptions, out any) error {
	return c.do(ctx, endpoint, opts, "", out)
}

// AuthenticatedRequest is Request with the bearer token from the client's
// credentials.
func (c *Client) AuthenticatedRequest(ctx context.Context, endpoint string, opts RequestOptions, out any) error {
	token := ""
	if c.creds != nil {
		t, err := c.creds.Token(ctx)
		if err != nil {
			return fmt.Errorf("api: read token: %w", err)
		}
		token = t
	}
	return c.do(ctx, endpoint, opts, token, out)
}

func (c *Client) do(ctx context.Context, endpoint string, opts RequestOptions, token string, out any) error {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	target := c.baseURL + endpoint
	if len(opts.Query) > 0 {
		target += "?" + opts.Query.Encode()
	}

	var (
		body []byte
		err  error
	)
	if method == http.MethodGet && opts.Body == nil {
		// Concurrent identical GETs share one round trip. The shared call
		// outlives any single caller's ctx and is bounded by the client
		// timeout; each caller stops waiting when its own ctx ends.
		key := method + " " + target + " " + token
		ch := c.inflight.DoChan(key, func() (any, error) {
			return c.send(context.WithoutCancel(ctx), method, target, endpoint, opts, token)
		})
		select {
		case <-ctx.Done():
			return fmt.Errorf("api: %s %s: %w", method, endpoint, ctx.Err())
		case res := <-ch:
			err = res.Err
			if b, ok := res.Val.([]byte); ok {
				body = b
			}
		}
	} else {
		body, err = c.send(ctx, method, target, endpoint, opts, token)
	}
	if err != nil {
		return err
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("api: decode %s %s: %w", method, endpoint, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, target, endpoint string, opts RequestOptions, token string) ([]byte, error) {
	payload, contentType, err := encodeBody(opts)
	if err != nil {
		return nil, err
	}

	attempts := 1
	if method == http.MethodGet {
		attempts += c.maxRetries
	}

	for attempt := 1; ; attempt++ {
		body, err := c.once(ctx, method, target, endpoint, opts.Header, payload, contentType, token)
		if err == nil || attempt >= attempts || !retryable(ctx, err) {
			return body, err
		}

		c.log.Warn("retrying request",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.Int("attempt", attempt),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * c.retryDelay):
		}
	}
}

func (c *Client) once(ctx context.Context, method, target, endpoint string, header http.Header, payload io.Reader, contentType, token string) ([]byte, error) {
	if r, ok := payload.(*bytes.Reader); ok {
		_, _ = r.Seek(0, io.SeekStart)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, payload)
	if err != nil {
		return nil, fmt.Errorf("api: build %s %s: %w", method, endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed", zap.String("method", method), zap.String("endpoint", endpoint), zap.Error(err))
		return nil, fmt.Errorf("api: %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("api: read %s %s: %w", method, endpoint, err)
	}

	c.log.Debug("api request",
		zap.String("method", method),
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.expireSession(ctx)
		return nil, &RequestError{
			StatusCode: resp.StatusCode,
			Message:    ErrAuthExpired.Error(),
			Endpoint:   endpoint,
			Err:        ErrAuthExpired,
		}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		var parsed map[string]any
		_ = json.Unmarshal(body, &parsed)
		reqErr := &RequestError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.StatusCode, parsed),
			Endpoint:   endpoint,
		}
		c.log.Warn("request rejected",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.String("message", reqErr.Message))
		return nil, reqErr
	case resp.StatusCode == http.StatusNoContent:
		return nil, nil
	}
	return body, nil
}

// expireSession evicts the stored credentials and hands the login redirect
// to the session-expired hook.
func (c *Client) expireSession(ctx context.Context) {
	if c.creds != nil {
		if err := c.creds.Clear(ctx); err != nil {
			c.log.Error("clearing credentials failed", zap.Error(err))
		}
	}
	c.log.Info("session expired", zap.String("redirect", LoginRedirect))
	if c.onExpired != nil {
		c.onExpired(LoginRedirect)
	}
}

func encodeBody(opts RequestOptions) (io.Reader, string, error) {
	switch b := opts.Body.(type) {
	case nil:
		return nil, "", nil
	case io.Reader:
		return b, opts.ContentType, nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", fmt.Errorf("api: encode body: %w", err)
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, ErrAuthExpired) {
		return false
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode >= 500
	}
	return true
}

// call is the shape shared by the typed wrappers.
func (c *Client) call(ctx context.Context, auth bool, method, endpoint string, query url.Values, body, out any) error {
	opts := RequestOptions{Method: method, Query: query, Body: body}
	if auth {
		return c.AuthenticatedRequest(ctx, endpoint, opts, out)
	}
	return c.Request(ctx, endpoint, opts, out)
}
