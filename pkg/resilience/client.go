// Package resilience provides an outbound HTTP helper that retries transient
// failures with exponential backoff and jitter.
//
// Usage:
//
//	resp, err := resilience.Request(ctx, "https://api.example.com/data",
//		resilience.RequestOptions{Method: http.MethodGet},
//		&resilience.RetryOptions{
//			MaxRetries: resilience.Int(5),
//			OnRetry: func(err error, attempt int) {
//				log.Printf("retry %d after %v", attempt, err)
//			},
//		})
//
// Responses with non-retryable statuses are returned, not raised. Once the
// retry budget is spent the last response or error is surfaced to the caller.
package resilience

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/cdkforge/cdkforge/pkg/tracing"
)

// maxDrainBytes bounds how much of a discarded response body is read so the
// connection can be reused.
const maxDrainBytes = 64 << 10

// Doer sends a single HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RequestOptions describes the request issued by Request.
type RequestOptions struct {
	Method string
	Header http.Header
	Body   []byte
}

// Client issues HTTP requests under a retry policy.
// A Client holds no per-call state and is safe for concurrent use.
type Client struct {
	doer    Doer
	breaker *gobreaker.CircuitBreaker
	tracer  trace.Tracer
	logger  *slog.Logger

	// sleep and random are replaced in tests.
	sleep  func(ctx context.Context, d time.Duration) error
	random func() float64
}

// Option configures a Client.
type Option func(*Client)

// WithDoer sets the transport used for each attempt.
func WithDoer(d Doer) Option {
	return func(c *Client) {
		if d != nil {
			c.doer = d
		}
	}
}

// WithHTTPClient sets the *http.Client used for each attempt.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.doer = hc
		}
	}
}

// WithTracer wraps every attempt in a span from tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		c.tracer = tracer
	}
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithCircuitBreaker guards the whole retried call with a circuit breaker.
// Transport failures that survive the retry loop count as breaker failures.
// An open breaker fails fast with gobreaker.ErrOpenState.
func WithCircuitBreaker(settings gobreaker.Settings) Option {
	return func(c *Client) {
		c.breaker = gobreaker.NewCircuitBreaker(settings)
	}
}

// NewClient creates a Client. Without WithDoer it uses a fresh *http.Client
// with a 30 second timeout.
func NewClient(opts ...Option) *Client {
	c := &Client{
		doer:   &http.Client{Timeout: 30 * time.Second},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request builds a request for target and sends it with a new default Client.
func Request(ctx context.Context, target string, ro RequestOptions, opts *RetryOptions) (*http.Response, error) {
	return NewClient().Request(ctx, target, ro, opts)
}

// Request builds a request for target and sends it under the retry policy.
func (c *Client) Request(ctx context.Context, target string, ro RequestOptions, opts *RetryOptions) (*http.Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	method := ro.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if ro.Body != nil {
		body = bytes.NewReader(ro.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("resilience: build request: %w", err)
	}
	for key, values := range ro.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	return c.Do(req, opts)
}

// Do sends req under the policy resolved from opts. The request body is
// replayed for every attempt.
func (c *Client) Do(req *http.Request, opts *RetryOptions) (*http.Response, error) {
	if err := makeReplayable(req); err != nil {
		return nil, err
	}
	policy := MergeRetryOptions(opts)

	if c.breaker == nil {
		return c.do(req, policy)
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.do(req, policy)
	})
	if err != nil {
		return nil, err
	}
	return out.(*http.Response), nil
}

// do runs the attempt loop.
func (c *Client) do(req *http.Request, policy RetryPolicy) (*http.Response, error) {
	ctx := req.Context()
	var lastErr error

	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		resp, err := c.attempt(ctx, req, attempt)
		if err != nil {
			// The caller's context has ended; nothing more may be sent.
			if ctx.Err() != nil {
				return nil, err
			}
			lastErr = err

			retry := attempt < policy.MaxRetries &&
				((policy.RetryOnNetworkError && IsNetworkError(err)) ||
					(policy.ShouldRetry != nil && policy.ShouldRetry(err, attempt)))
			if !retry {
				return nil, err
			}

			if err := c.backoff(ctx, policy, err, attempt); err != nil {
				return nil, err
			}
			continue
		}

		if policy.IsRetryableStatus(resp.StatusCode) && attempt < policy.MaxRetries {
			statusErr := &StatusError{StatusCode: resp.StatusCode, Response: resp}

			if policy.ShouldRetry != nil && !policy.ShouldRetry(statusErr, attempt) {
				return resp, nil
			}

			lastErr = statusErr
			drainAndClose(resp)

			if err := c.backoff(ctx, policy, statusErr, attempt); err != nil {
				return nil, err
			}
			continue
		}

		return resp, nil
	}

	if lastErr == nil {
		lastErr = ErrRetriesExhausted
	}
	return nil, lastErr
}

// attempt issues one request inside its own span.
func (c *Client) attempt(ctx context.Context, req *http.Request, attempt int) (*http.Response, error) {
	return tracing.Do(ctx, c.tracer, "http.attempt", func(ctx context.Context) (*http.Response, error) {
		r := req.Clone(ctx)
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("resilience: replay body: %w", err)
			}
			r.Body = body
		}
		return c.doer.Do(r)
	},
		attribute.Int("http.attempt", attempt),
		attribute.String("http.method", req.Method),
		attribute.String("http.url", req.URL.Redacted()),
	)
}

// backoff notifies OnRetry and then sleeps for the attempt's delay.
func (c *Client) backoff(ctx context.Context, policy RetryPolicy, cause error, attempt int) error {
	if policy.OnRetry != nil {
		policy.OnRetry(cause, attempt+1)
	}

	r := c.random
	if r == nil {
		r = rand.Float64
	}
	delay := backoffWithJitter(attempt, policy.InitialDelay, policy.MaxDelay, policy.BackoffMultiplier, r())

	c.logger.Debug("retrying request",
		"attempt", attempt+1,
		"delay", delay,
		"error", cause,
	)

	return c.sleep(ctx, delay)
}

// makeReplayable buffers a body without GetBody so each attempt can resend it.
func makeReplayable(req *http.Request) error {
	if req.Body == nil || req.Body == http.NoBody || req.GetBody != nil {
		return nil
	}
	data, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return fmt.Errorf("resilience: read request body: %w", err)
	}
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	req.Body, _ = req.GetBody()
	return nil
}

// drainAndClose discards a response that will be retried.
func drainAndClose(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.CopyN(io.Discard, resp.Body, maxDrainBytes)
	_ = resp.Body.Close()
}

// sleepContext waits for d or until ctx is done.
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
