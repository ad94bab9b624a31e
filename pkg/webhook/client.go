// Package webhook posts business-event payloads to merchant endpoints with a
// single fixed-delay retry.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultUserAgent  = "PMCELL-Webhook/1.0"
	DefaultRetryDelay = 5 * time.Second
	DefaultTimeout    = 30 * time.Second

	responseDrainLimit int64 = 4096
)

var errURLRequired = errors.New("webhook url is required")

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("webhook responded with status %d", e.StatusCode)
}

// Target is where and how one event is delivered.
type Target struct {
	URL          string
	Timeout      time.Duration
	RetryEnabled bool
}

// Result summarises a delivery. Err holds the last attempt's failure.
type Result struct {
	Delivered  bool
	Skipped    bool
	Attempts   int
	StatusCode int
	Err        error
}

// Client delivers webhook payloads.
type Client struct {
	httpClient *http.Client
	userAgent  string
	retryDelay time.Duration
	sleep      func(context.Context, time.Duration) error
	now        func() time.Time
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

// WithRetryDelay overrides the pause before the second attempt.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.retryDelay = d
		}
	}
}

// WithSleep replaces the retry pause, for tests.
func WithSleep(fn func(context.Context, time.Duration) error) Option {
	return func(c *Client) {
		if fn != nil {
			c.sleep = fn
		}
	}
}

// WithClock replaces the payload timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient builds a webhook client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		userAgent:  DefaultUserAgent,
		retryDelay: DefaultRetryDelay,
		sleep:      sleepContext,
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Send posts event to target. A failed first attempt is retried once after
// the retry delay when target.RetryEnabled is set; otherwise it is final.
func (c *Client) Send(ctx context.Context, target Target, event string, data map[string]any) Result {
	if strings.TrimSpace(target.URL) == "" {
		return Result{Err: errURLRequired}
	}

	res := c.attempt(ctx, target, event, data, 0)
	if res.Delivered || !target.RetryEnabled {
		return res
	}

	if err := c.sleep(ctx, c.retryDelay); err != nil {
		res.Err = err
		return res
	}

	retry := c.attempt(ctx, target, event, data, 1)
	retry.Attempts = 2
	return retry
}

func (c *Client) attempt(ctx context.Context, target Target, event string, data map[string]any, retryCount int) Result {
	res := Result{Attempts: retryCount + 1}

	body, err := c.encode(event, data, retryCount)
	if err != nil {
		res.Err = err
		return res
	}

	timeout := target.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, target.URL, bytes.NewReader(body))
	if err != nil {
		res.Err = fmt.Errorf("build webhook request: %w", err)
		return res
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		res.Err = fmt.Errorf("post webhook: %w", err)
		return res
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, responseDrainLimit))

	res.StatusCode = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		res.Err = &StatusError{StatusCode: resp.StatusCode}
		return res
	}
	res.Delivered = true
	return res
}

func (c *Client) encode(event string, data map[string]any, retryCount int) ([]byte, error) {
	payload := make(map[string]any, len(data)+3)
	for k, v := range data {
		payload[k] = v
	}
	payload["evento"] = event
	payload["timestamp"] = c.now().Format(time.RFC3339)
	payload["retry_count"] = retryCount

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode webhook payload: %w", err)
	}
	return body, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
