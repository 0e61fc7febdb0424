// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package httpclient is a small retrying HTTP client for outbound integrations.
package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// RoundTripper is a request middleware, e.g. for authentication headers
type RoundTripper interface {
	RoundTrip(req *http.Request, next func(*http.Request) (*http.Response, error)) (*http.Response, error)
}

// Client sends requests through its middleware chain, retrying transient
// failures
type Client struct {
	config        Config
	httpClient    *http.Client
	roundTrippers []RoundTripper
}

// Request describes one call. Body is kept as bytes so that it can be
// replayed on retries.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// Response is a fully read HTTP response
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// StatusError is returned for responses with a 4xx or 5xx status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Temporary reports whether the same request may succeed later
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

// Do executes req, retrying server errors, rate limiting and network failures
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.delay(attempt)):
			}
		}

		response, err := c.doRequest(ctx, req)
		if err == nil {
			return response, nil
		}
		lastErr = err

		if !shouldRetry(err) {
			break
		}
		slog.DebugContext(ctx, "retrying request",
			"method", req.Method,
			"attempt", attempt+1,
			"error", err,
		)
	}

	slog.ErrorContext(ctx, "request failed",
		"method", req.Method,
		"error", lastErr,
	)
	return nil, lastErr
}

// Request performs an HTTP request with the specified verb
func (c *Client) Request(ctx context.Context, verb, url string, body []byte, headers map[string]string) (*Response, error) {
	return c.Do(ctx, Request{
		Method:  verb,
		URL:     url,
		Headers: headers,
		Body:    body,
	})
}

// delay is the wait before attempt, doubling from RetryDelay up to MaxDelay
// with up to 25% jitter when backoff is enabled
func (c *Client) delay(attempt int) time.Duration {
	delay := c.config.RetryDelay
	if !c.config.RetryBackoff {
		return delay
	}

	for i := 1; i < attempt && delay < c.config.MaxDelay/2; i++ {
		delay *= 2
	}
	if delay > c.config.MaxDelay {
		delay = c.config.MaxDelay
	}

	if jitter := int64(delay / 4); jitter > 0 {
		delay += time.Duration(rand.Int64N(jitter))
	}
	return delay
}

func (c *Client) doRequest(ctx context.Context, req Request) (*Response, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	resp, err := c.next(httpReq, 0)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	response := &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return response, &StatusError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	return response, nil
}

// next runs the middleware at index, or the transport once the chain is
// exhausted
func (c *Client) next(req *http.Request, index int) (*http.Response, error) {
	if index >= len(c.roundTrippers) {
		return c.httpClient.Do(req)
	}
	return c.roundTrippers[index].RoundTrip(req, func(req *http.Request) (*http.Response, error) {
		return c.next(req, index+1)
	})
}

func shouldRetry(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// AddRoundTripper appends a middleware. It must be called before the client
// is shared.
func (c *Client) AddRoundTripper(rt RoundTripper) {
	c.roundTrippers = append(c.roundTrippers, rt)
}

// NewClient creates a new HTTP client with the given configuration
func NewClient(config Config) *Client {
	if config.MaxDelay == 0 {
		config.MaxDelay = 30 * time.Second
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}
