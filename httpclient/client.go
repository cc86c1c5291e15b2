package httpclient

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net"
	nethttp "net/http"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/cocofhu/mcp-adapter-console/logger"
	"github.com/cocofhu/mcp-adapter-console/trace"
)

const (
	// DefaultTimeout is the default request timeout duration
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the default maximum number of retries for failed requests
	DefaultMaxRetries = 0

	// DefaultRetryDelay is the default delay between retries
	DefaultRetryDelay = 1 * time.Second

	maxBackoff = 30 * time.Second
)

type client struct {
	httpClient           *nethttp.Client
	logger               logger.Logger
	config               *Config
	limiter              *rate.Limiter
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
	callCount            int64
}

func defaultConfig() *Config {
	return &Config{
		Timeout:              DefaultTimeout,
		MaxRetries:           DefaultMaxRetries,
		RetryDelay:           DefaultRetryDelay,
		RequestInterceptors:  []RequestInterceptor{},
		ResponseInterceptors: []ResponseInterceptor{},
		DefaultHeaders:       make(map[string]string),
		RateLimit:            rate.Inf,
	}
}

// NewClient creates a new REST client with default configuration
func NewClient(log logger.Logger) Client {
	return NewBuilder(log).Build()
}

// Builder provides a fluent interface for configuring the REST client
type Builder struct {
	config *Config
	logger logger.Logger
}

// NewBuilder creates a new client builder
func NewBuilder(log logger.Logger) *Builder {
	if log == nil {
		log = logger.Nop()
	}
	return &Builder{config: defaultConfig(), logger: log}
}

// WithTimeout sets the request timeout
func (b *Builder) WithTimeout(timeout time.Duration) *Builder {
	b.config.Timeout = timeout
	return b
}

// WithRetries sets the retry configuration
func (b *Builder) WithRetries(maxRetries int, retryDelay time.Duration) *Builder {
	b.config.MaxRetries = maxRetries
	b.config.RetryDelay = retryDelay
	return b
}

// WithDefaultHeader adds a default header that will be sent with all requests
func (b *Builder) WithDefaultHeader(key, value string) *Builder {
	b.config.DefaultHeaders[key] = value
	return b
}

// WithRateLimit limits outgoing attempts to rps per second with the given burst.
// A non-positive rps disables limiting.
func (b *Builder) WithRateLimit(rps float64, burst int) *Builder {
	if rps <= 0 {
		b.config.RateLimit = rate.Inf
		return b
	}
	if burst < 1 {
		burst = 1
	}
	b.config.RateLimit = rate.Limit(rps)
	b.config.RateBurst = burst
	return b
}

// WithTransport replaces the HTTP transport
func (b *Builder) WithTransport(rt nethttp.RoundTripper) *Builder {
	b.config.Transport = rt
	return b
}

// WithRequestInterceptor adds a request interceptor
func (b *Builder) WithRequestInterceptor(interceptor RequestInterceptor) *Builder {
	b.config.RequestInterceptors = append(b.config.RequestInterceptors, interceptor)
	return b
}

// WithResponseInterceptor adds a response interceptor
func (b *Builder) WithResponseInterceptor(interceptor ResponseInterceptor) *Builder {
	b.config.ResponseInterceptors = append(b.config.ResponseInterceptors, interceptor)
	return b
}

// Build creates the REST client with the configured options
func (b *Builder) Build() Client {
	c := &client{
		httpClient: &nethttp.Client{
			Timeout:   b.config.Timeout,
			Transport: b.config.Transport,
		},
		logger:               b.logger,
		config:               b.config,
		requestInterceptors:  b.config.RequestInterceptors,
		responseInterceptors: b.config.ResponseInterceptors,
	}
	if b.config.RateLimit != rate.Inf {
		c.limiter = rate.NewLimiter(b.config.RateLimit, b.config.RateBurst)
	}
	return c
}

func (c *client) Get(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodGet, req)
}

func (c *client) Post(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodPost, req)
}

func (c *client) Put(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodPut, req)
}

func (c *client) Delete(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodDelete, req)
}

// Do performs an HTTP request with the specified method
func (c *client) Do(ctx context.Context, method string, req *Request) (*Response, error) {
	if err := c.validateRequest(req); err != nil {
		return nil, err
	}

	// one request id across every attempt
	ctx = trace.WithRequestID(ctx, trace.EnsureRequestID(ctx))

	start := time.Now()
	callCount := atomic.AddInt64(&c.callCount, 1)
	maxRetries := c.config.MaxRetries

	for attempt := 0; ; attempt++ {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}
		c.logRequest(ctx, method, req, attempt)

		httpReq, err := c.buildRequest(ctx, method, req)
		if err != nil {
			return nil, err
		}

		httpResp, err := c.httpClient.Do(httpReq)
		if err != nil {
			if attempt < maxRetries && ctx.Err() == nil {
				if err := c.sleep(ctx, attempt); err != nil {
					return nil, err
				}
				continue
			}
			if c.isTimeout(err) {
				return nil, NewTimeoutError("request timeout", c.config.Timeout)
			}
			return nil, NewNetworkError("request execution failed", err)
		}

		resp, err := c.buildResponse(ctx, start, callCount, attempt, httpReq, httpResp)
		if err != nil {
			if attempt < maxRetries && IsErrorType(err, NetworkError) {
				if err := c.sleep(ctx, attempt); err != nil {
					return nil, err
				}
				continue
			}
			return nil, err
		}

		if IsSuccessStatus(resp.StatusCode) {
			c.logResponse(method, req, resp)
			return resp, nil
		}

		if c.isRetryableStatus(resp.StatusCode) && attempt < maxRetries {
			if err := c.sleep(ctx, attempt); err != nil {
				return nil, err
			}
			continue
		}

		c.logResponse(method, req, resp)
		return resp, NewHTTPError(
			fmt.Sprintf("HTTP request failed with status %d", resp.StatusCode),
			resp.StatusCode,
			resp.Body,
		)
	}
}

// wait blocks until the rate limiter admits the next attempt.
func (c *client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return NewNetworkError("request canceled while rate limited", err)
		}
		// the deadline passed or would pass before a token is available
		return NewTimeoutError("rate limit wait exceeds deadline", c.config.Timeout)
	}
	return nil
}

// sleep waits out the backoff delay of attempt or until ctx is done.
func (c *client) sleep(ctx context.Context, attempt int) error {
	timer := time.NewTimer(c.backoffDelay(attempt))
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return NewTimeoutError("request timeout during retry backoff", c.config.Timeout)
		}
		return NewNetworkError("request canceled during retry backoff", ctx.Err())
	}
}

// backoffDelay returns the exponential backoff delay for the given attempt,
// using RetryDelay as the base, with full jitter.
func (c *client) backoffDelay(attempt int) time.Duration {
	base := c.config.RetryDelay
	if base <= 0 {
		base = 50 * time.Millisecond
	}
	if attempt > 20 {
		attempt = 20
	}
	d := base * time.Duration(1<<attempt)
	if d > maxBackoff || d <= 0 {
		d = maxBackoff
	}
	n, err := crand.Int(crand.Reader, big.NewInt(int64(d)))
	if err != nil {
		return d
	}
	return time.Duration(n.Int64())
}

func (c *client) validateRequest(req *Request) error {
	if req == nil {
		return NewValidationError("request cannot be nil", "request")
	}
	if req.URL == "" {
		return NewValidationError("URL cannot be empty", "url")
	}
	return nil
}

func (c *client) applyHeaders(httpReq *nethttp.Request, req *Request) {
	for key, value := range c.config.DefaultHeaders {
		httpReq.Header.Set(key, value)
	}
	// request-specific headers override defaults
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	if httpReq.Header.Get("Content-Type") == "" && req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json")
	}
}

// buildRequest constructs an *http.Request with headers applied and runs the request interceptors.
func (c *client) buildRequest(ctx context.Context, method string, req *Request) (*nethttp.Request, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := nethttp.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, NewNetworkError("failed to create HTTP request", err)
	}

	c.applyHeaders(httpReq, req)

	if err := c.runRequestInterceptors(ctx, httpReq); err != nil {
		return nil, NewInterceptorError("request interceptor failed", "request", err)
	}
	return httpReq, nil
}

// buildResponse runs response interceptors, reads body, and builds a Response.
func (c *client) buildResponse(ctx context.Context, start time.Time, callCount int64, attempt int, httpReq *nethttp.Request, httpResp *nethttp.Response) (*Response, error) {
	defer httpResp.Body.Close()

	if err := c.runResponseInterceptors(ctx, httpReq, httpResp); err != nil {
		return nil, NewInterceptorError("response interceptor failed", "response", err)
	}

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, NewNetworkError("failed to read response body", err)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       respBody,
		Headers:    httpResp.Header,
		Stats: Stats{
			ElapsedTime: time.Since(start),
			CallCount:   callCount,
			Attempts:    attempt + 1,
		},
	}, nil
}

func (c *client) isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func (c *client) isRetryableStatus(code int) bool {
	return code >= 500 && code < 600
}

func (c *client) runRequestInterceptors(ctx context.Context, req *nethttp.Request) error {
	for _, interceptor := range c.requestInterceptors {
		if err := interceptor(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

func (c *client) runResponseInterceptors(ctx context.Context, req *nethttp.Request, resp *nethttp.Response) error {
	for _, interceptor := range c.responseInterceptors {
		if err := interceptor(ctx, req, resp); err != nil {
			return err
		}
	}
	return nil
}

func (c *client) logRequest(ctx context.Context, method string, req *Request, attempt int) {
	event := c.logger.WithContext(ctx).Debug().
		Str("direction", "outbound").
		Str("method", method).
		Str("url", req.URL).
		Int("attempt", attempt+1)

	if id, ok := trace.RequestIDFromContext(ctx); ok {
		event = event.Str("request_id", id)
	}

	if len(req.Headers) > 0 {
		event = event.Interface("headers", req.Headers)
	}
	if len(req.Body) > 0 {
		event = event.Int("body_bytes", len(req.Body))
	}

	event.Msg("REST client request")
}

func (c *client) logResponse(method string, req *Request, resp *Response) {
	event := c.logger.Debug()
	if !IsSuccessStatus(resp.StatusCode) {
		event = c.logger.Warn()
	}
	event.
		Str("direction", "inbound").
		Str("method", method).
		Str("url", req.URL).
		Int("status", resp.StatusCode).
		Dur("elapsed", resp.Stats.ElapsedTime).
		Int64("call_count", resp.Stats.CallCount).
		Int("body_bytes", len(resp.Body)).
		Msg("REST client response")
}
