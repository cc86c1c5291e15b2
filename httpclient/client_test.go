package httpclient

import (
	"bytes"
	"context"
	"errors"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/cocofhu/mcp-adapter-console/logger"
	"github.com/cocofhu/mcp-adapter-console/trace"
)

const (
	testContentTypeHdr = "Content-Type"
	testJSONType       = "application/json"
	testClientHdr      = "X-Client"
)

type roundTripperFunc func(*nethttp.Request) (*nethttp.Response, error)

func (f roundTripperFunc) RoundTrip(req *nethttp.Request) (*nethttp.Response, error) {
	return f(req)
}

func TestClientVerbs(t *testing.T) {
	var gotMethods []string
	var mu sync.Mutex
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		mu.Lock()
		gotMethods = append(gotMethods, r.Method)
		mu.Unlock()
		w.WriteHeader(nethttp.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(logger.Nop())
	ctx := context.Background()
	req := &Request{URL: srv.URL}

	for _, call := range []func(context.Context, *Request) (*Response, error){c.Get, c.Post, c.Put, c.Delete} {
		resp, err := call(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	}
	assert.Equal(t, []string{"GET", "POST", "PUT", "DELETE"}, gotMethods)
}

func TestClientHeadersAndBody(t *testing.T) {
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, testJSONType, r.Header.Get(testContentTypeHdr))
		assert.Equal(t, testJSONType, r.Header.Get("Accept"))
		assert.Equal(t, "override", r.Header.Get(testClientHdr))
		assert.Equal(t, "kept", r.Header.Get("X-Default"))

		body, _ := io.ReadAll(r.Body)
		w.Header().Set(testContentTypeHdr, testJSONType)
		w.WriteHeader(nethttp.StatusCreated)
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	c := NewBuilder(logger.Nop()).
		WithDefaultHeader(testClientHdr, "console").
		WithDefaultHeader("X-Default", "kept").
		Build()

	resp, err := c.Post(context.Background(), &Request{
		URL:     srv.URL,
		Headers: map[string]string{testClientHdr: "override"},
		Body:    []byte(`{"name":"demo"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusCreated, resp.StatusCode)
	assert.JSONEq(t, `{"name":"demo"}`, string(resp.Body))
	assert.Equal(t, testJSONType, resp.Headers.Get(testContentTypeHdr))
	assert.Equal(t, 1, resp.Stats.Attempts)
	assert.Positive(t, resp.Stats.CallCount)
}

func TestClientValidation(t *testing.T) {
	c := NewClient(logger.Nop())

	_, err := c.Get(context.Background(), nil)
	assert.True(t, IsErrorType(err, ValidationError))

	_, err = c.Get(context.Background(), &Request{})
	assert.True(t, IsErrorType(err, ValidationError))
}

func TestClientHTTPErrorReturnsResponse(t *testing.T) {
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		nethttp.Error(w, "name already exists", nethttp.StatusConflict)
	}))
	defer srv.Close()

	c := NewBuilder(logger.Nop()).WithRetries(3, time.Millisecond).Build()
	resp, err := c.Put(context.Background(), &Request{URL: srv.URL})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, nethttp.StatusConflict, resp.StatusCode)
	assert.Equal(t, 1, resp.Stats.Attempts, "4xx responses are not retried")
	assert.True(t, IsHTTPStatusError(err, nethttp.StatusConflict))

	se, ok := AsStatusError(err)
	require.True(t, ok)
	assert.Contains(t, string(se.Body()), "name already exists")
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	var ids sync.Map
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		ids.Store(r.Header.Get(trace.HeaderXRequestID), true)
		if calls.Add(1) < 3 {
			w.WriteHeader(nethttp.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(nethttp.StatusOK)
	}))
	defer srv.Close()

	c := NewBuilder(logger.Nop()).
		WithRetries(3, time.Millisecond).
		WithRequestInterceptor(NewRequestIDInterceptor()).
		Build()

	resp, err := c.Get(context.Background(), &Request{URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 3, resp.Stats.Attempts)

	distinct := 0
	ids.Range(func(_, _ any) bool { distinct++; return true })
	assert.Equal(t, 1, distinct, "retries keep the request id")
}

func TestClientRetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		calls.Add(1)
		w.WriteHeader(nethttp.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewBuilder(logger.Nop()).WithRetries(2, time.Millisecond).Build()
	_, err := c.Get(context.Background(), &Request{URL: srv.URL})
	assert.True(t, IsHTTPStatusError(err, nethttp.StatusInternalServerError))
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientNetworkError(t *testing.T) {
	var calls atomic.Int32
	rt := roundTripperFunc(func(*nethttp.Request) (*nethttp.Response, error) {
		calls.Add(1)
		return nil, errors.New("connection refused")
	})

	c := NewBuilder(logger.Nop()).WithTransport(rt).WithRetries(1, time.Millisecond).Build()
	_, err := c.Get(context.Background(), &Request{URL: "http://backend.invalid/applications"})
	assert.True(t, IsErrorType(err, NetworkError))
	assert.Equal(t, int32(2), calls.Load())
}

func TestClientTimeout(t *testing.T) {
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
		w.WriteHeader(nethttp.StatusOK)
	}))
	defer srv.Close()

	c := NewBuilder(logger.Nop()).WithTimeout(20 * time.Millisecond).Build()
	_, err := c.Get(context.Background(), &Request{URL: srv.URL})
	assert.True(t, IsErrorType(err, TimeoutError), "got %v", err)
}

func TestClientInterceptors(t *testing.T) {
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, "req-1", r.Header.Get(trace.HeaderXRequestID))
		assert.Equal(t, "update-interface-7", r.Header.Get(trace.HeaderOperation))
		w.WriteHeader(nethttp.StatusNoContent)
	}))
	defer srv.Close()

	var seen int
	c := NewBuilder(logger.Nop()).
		WithRequestInterceptor(NewRequestIDInterceptor()).
		WithRequestInterceptor(NewOperationInterceptor()).
		WithResponseInterceptor(func(_ context.Context, _ *nethttp.Request, resp *nethttp.Response) error {
			seen = resp.StatusCode
			return nil
		}).
		Build()

	ctx := trace.WithOperation(trace.WithRequestID(context.Background(), "req-1"), "update-interface-7")
	_, err := c.Delete(ctx, &Request{URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusNoContent, seen)
}

func TestClientPropagatesTraceContext(t *testing.T) {
	originalPropagator := otel.GetTextMapPropagator()
	defer otel.SetTextMapPropagator(originalPropagator)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	traceID, err := oteltrace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := oteltrace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	sc := oteltrace.NewSpanContext(oteltrace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: oteltrace.FlagsSampled,
	})

	var got string
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		got = r.Header.Get("traceparent")
		w.WriteHeader(nethttp.StatusOK)
	}))
	defer srv.Close()

	c := NewBuilder(logger.Nop()).
		WithRequestInterceptor(NewTracePropagationInterceptor()).
		Build()

	_, err = c.Get(oteltrace.ContextWithSpanContext(context.Background(), sc), &Request{URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", got)

	got = "unset"
	_, err = c.Get(context.Background(), &Request{URL: srv.URL})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClientInterceptorErrors(t *testing.T) {
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		w.WriteHeader(nethttp.StatusOK)
	}))
	defer srv.Close()

	denied := errors.New("denied")
	c := NewBuilder(logger.Nop()).
		WithRetries(2, time.Millisecond).
		WithRequestInterceptor(func(context.Context, *nethttp.Request) error { return denied }).
		Build()
	_, err := c.Get(context.Background(), &Request{URL: srv.URL})
	assert.True(t, IsErrorType(err, InterceptorError))
	assert.ErrorIs(t, err, denied)

	c = NewBuilder(logger.Nop()).
		WithResponseInterceptor(func(context.Context, *nethttp.Request, *nethttp.Response) error { return denied }).
		Build()
	_, err = c.Get(context.Background(), &Request{URL: srv.URL})
	assert.True(t, IsErrorType(err, InterceptorError))
}

func TestClientRateLimit(t *testing.T) {
	var calls atomic.Int32
	rt := roundTripperFunc(func(r *nethttp.Request) (*nethttp.Response, error) {
		calls.Add(1)
		return &nethttp.Response{StatusCode: nethttp.StatusOK, Body: io.NopCloser(bytes.NewReader(nil)), Header: nethttp.Header{}, Request: r}, nil
	})

	c := NewBuilder(logger.Nop()).WithTransport(rt).WithRateLimit(1, 1).Build()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err := c.Get(ctx, &Request{URL: "http://backend.invalid/applications"})
	require.NoError(t, err)

	// the bucket is empty and the next token is a second away
	_, err = c.Get(ctx, &Request{URL: "http://backend.invalid/applications"})
	assert.True(t, IsErrorType(err, TimeoutError), "got %v", err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClientLogsRequests(t *testing.T) {
	var buf bytes.Buffer
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		w.WriteHeader(nethttp.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewBuilder(logger.NewWithWriter(&buf, "debug", false)).Build()
	_, _ = c.Post(context.Background(), &Request{
		URL:     srv.URL,
		Headers: map[string]string{"Authorization": "Bearer secret-token"},
		Body:    []byte(`{}`),
	})

	out := buf.String()
	assert.Contains(t, out, "REST client request")
	assert.Contains(t, out, "REST client response")
	assert.Contains(t, out, `"status":400`)
	assert.Contains(t, out, `"request_id"`)
	assert.NotContains(t, out, "secret-token")
}

func TestBackoffDelayBounds(t *testing.T) {
	c := &client{config: &Config{RetryDelay: 10 * time.Millisecond}}
	for attempt := range 5 {
		d := c.backoffDelay(attempt)
		assert.GreaterOrEqual(t, d, time.Duration(0))
		assert.Less(t, d, 10*time.Millisecond*time.Duration(1<<attempt))
	}
	assert.LessOrEqual(t, c.backoffDelay(40), maxBackoff)
}
