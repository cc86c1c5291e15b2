// Package backend is a typed client for the MCP adapter REST API.
//
// Every call runs in an OpenTelemetry client span and maps non-2xx responses
// to *APIError with a user-facing message.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.32.0"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/cocofhu/mcp-adapter-console/config"
	"github.com/cocofhu/mcp-adapter-console/httpclient"
	"github.com/cocofhu/mcp-adapter-console/logger"
	"github.com/cocofhu/mcp-adapter-console/schema"
	"github.com/cocofhu/mcp-adapter-console/trace"
)

const (
	tracerName = "github.com/cocofhu/mcp-adapter-console/backend"

	routeApplications = "/applications"
	routeCustomTypes  = "/custom-types"
	routeInterfaces   = "/interfaces"
)

// Client calls the backend over an httpclient.Client.
type Client struct {
	http    httpclient.Client
	baseURL string
	tracer  oteltrace.Tracer
	log     logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTracerProvider emits spans through tp instead of the global provider.
func WithTracerProvider(tp oteltrace.TracerProvider) Option {
	return func(c *Client) {
		if tp != nil {
			c.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(log logger.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a Client for the API rooted at baseURL.
func New(baseURL string, hc httpclient.Client, opts ...Option) *Client {
	c := &Client{
		http:    hc,
		baseURL: strings.TrimRight(baseURL, "/"),
		tracer:  otel.Tracer(tracerName),
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = httpclient.NewClient(c.log)
	}
	return c
}

// NewFromConfig builds the HTTP transport from the backend section of cfg.
func NewFromConfig(cfg *config.Config, log logger.Logger, opts ...Option) *Client {
	if log == nil {
		log = logger.Nop()
	}
	b := httpclient.NewBuilder(log).
		WithTimeout(cfg.Backend.Timeout).
		WithRetries(cfg.Backend.Retries, cfg.Backend.RetryDelay).
		WithRequestInterceptor(httpclient.NewRequestIDInterceptor()).
		WithRequestInterceptor(httpclient.NewOperationInterceptor()).
		WithRequestInterceptor(httpclient.NewTracePropagationInterceptor())
	if cfg.Backend.RateLimit.RPS > 0 {
		b = b.WithRateLimit(cfg.Backend.RateLimit.RPS, cfg.Backend.RateLimit.Burst)
	}
	for name, value := range cfg.Backend.Headers {
		b = b.WithDefaultHeader(name, value)
	}
	return New(cfg.Backend.URL, b.Build(), append([]Option{WithLogger(log)}, opts...)...)
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// ListApplications returns every application.
func (c *Client) ListApplications(ctx context.Context) ([]schema.Application, error) {
	body, err := c.call(ctx, nethttp.MethodGet, routeApplications, routeApplications, nil, nil)
	if err != nil {
		return nil, err
	}
	return list[schema.Application](body, "applications")
}

// CreateApplication creates an application and returns the stored record.
func (c *Client) CreateApplication(ctx context.Context, d schema.ApplicationDraft) (schema.Application, error) {
	return send[schema.Application](ctx, c, nethttp.MethodPost, routeApplications, routeApplications, d)
}

// UpdateApplication replaces application id.
func (c *Client) UpdateApplication(ctx context.Context, id int64, d schema.ApplicationDraft) (schema.Application, error) {
	return send[schema.Application](ctx, c, nethttp.MethodPut, routeApplications+"/{id}", itemPath(routeApplications, id), d)
}

// DeleteApplication deletes application id.
func (c *Client) DeleteApplication(ctx context.Context, id int64) error {
	return c.remove(ctx, routeApplications, id)
}

// ListCustomTypes returns the custom types of application appID.
func (c *Client) ListCustomTypes(ctx context.Context, appID int64) ([]schema.CustomType, error) {
	body, err := c.call(ctx, nethttp.MethodGet, routeCustomTypes, routeCustomTypes, appQuery(appID), nil)
	if err != nil {
		return nil, err
	}
	return list[schema.CustomType](body, "custom_types")
}

// CreateCustomType creates a custom type and returns the stored record.
func (c *Client) CreateCustomType(ctx context.Context, d schema.CustomTypeDraft) (schema.CustomType, error) {
	return send[schema.CustomType](ctx, c, nethttp.MethodPost, routeCustomTypes, routeCustomTypes, d)
}

// UpdateCustomType replaces custom type id.
func (c *Client) UpdateCustomType(ctx context.Context, id int64, d schema.CustomTypeDraft) (schema.CustomType, error) {
	return send[schema.CustomType](ctx, c, nethttp.MethodPut, routeCustomTypes+"/{id}", itemPath(routeCustomTypes, id), d)
}

// DeleteCustomType deletes custom type id.
func (c *Client) DeleteCustomType(ctx context.Context, id int64) error {
	return c.remove(ctx, routeCustomTypes, id)
}

// ListInterfaces returns the interfaces of application appID.
func (c *Client) ListInterfaces(ctx context.Context, appID int64) ([]schema.Interface, error) {
	body, err := c.call(ctx, nethttp.MethodGet, routeInterfaces, routeInterfaces, appQuery(appID), nil)
	if err != nil {
		return nil, err
	}
	return list[schema.Interface](body, "interfaces")
}

// CreateInterface creates an interface and returns the stored record.
func (c *Client) CreateInterface(ctx context.Context, d schema.InterfaceDraft) (schema.Interface, error) {
	return send[schema.Interface](ctx, c, nethttp.MethodPost, routeInterfaces, routeInterfaces, d)
}

// UpdateInterface replaces interface id.
func (c *Client) UpdateInterface(ctx context.Context, id int64, d schema.InterfaceDraft) (schema.Interface, error) {
	return send[schema.Interface](ctx, c, nethttp.MethodPut, routeInterfaces+"/{id}", itemPath(routeInterfaces, id), d)
}

// DeleteInterface deletes interface id.
func (c *Client) DeleteInterface(ctx context.Context, id int64) error {
	return c.remove(ctx, routeInterfaces, id)
}

func (c *Client) remove(ctx context.Context, collection string, id int64) error {
	_, err := c.call(ctx, nethttp.MethodDelete, collection+"/{id}", itemPath(collection, id), nil, nil)
	return err
}

func send[T any](ctx context.Context, c *Client, method, route, path string, payload any) (T, error) {
	var zero T
	data, err := json.Marshal(payload)
	if err != nil {
		return zero, fmt.Errorf("encode request: %w", err)
	}
	body, err := c.call(ctx, method, route, path, nil, data)
	if err != nil {
		return zero, err
	}
	out, err := decodeRecord[T](body)
	if err != nil {
		return zero, newTransportError(err)
	}
	return out, nil
}

func list[T any](body []byte, member string) ([]T, error) {
	out, err := decodeList[T](body, member)
	if err != nil {
		return nil, newTransportError(err)
	}
	return out, nil
}

// call performs one request inside a client span and returns the 2xx body.
func (c *Client) call(ctx context.Context, method, route, path string, query url.Values, payload []byte) ([]byte, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	ctx, span := c.tracer.Start(ctx, method+" "+route, oteltrace.WithSpanKind(oteltrace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		semconv.HTTPRequestMethodKey.String(method),
		semconv.HTTPRoute(route),
		semconv.URLFull(target),
	)
	if op, ok := trace.OperationFromContext(ctx); ok {
		span.SetAttributes(attribute.String("console.operation", op))
	}

	start := time.Now()
	resp, err := c.http.Do(ctx, method, &httpclient.Request{URL: target, Body: payload})
	if resp != nil {
		span.SetAttributes(semconv.HTTPResponseStatusCode(resp.StatusCode))
	}
	if err != nil {
		apiErr := c.mapError(err)
		span.RecordError(apiErr)
		span.SetStatus(codes.Error, apiErr.Message)
		c.log.Warn().
			Str("method", method).
			Str("route", route).
			Int("status", apiErr.Status).
			Dur("elapsed", time.Since(start)).
			Msg(apiErr.Message)
		return nil, apiErr
	}

	span.SetStatus(codes.Ok, "")
	c.log.Debug().
		Str("method", method).
		Str("route", route).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("backend call completed")
	return resp.Body, nil
}

func (c *Client) mapError(err error) *APIError {
	if statusErr, ok := httpclient.AsStatusError(err); ok {
		return newStatusError(statusErr.StatusCode(), statusErr.Body(), err)
	}
	return newTransportError(err)
}

func itemPath(collection string, id int64) string {
	return collection + "/" + strconv.FormatInt(id, 10)
}

func appQuery(appID int64) url.Values {
	q := url.Values{}
	q.Set("app_id", strconv.FormatInt(appID, 10))
	return q
}
