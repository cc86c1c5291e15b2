package httpclient

import (
	"context"
	nethttp "net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/cocofhu/mcp-adapter-console/trace"
)

// NewRequestIDInterceptor sets the X-Request-ID header from the context,
// generating an id when the context carries none.
func NewRequestIDInterceptor() RequestInterceptor {
	return NewRequestIDInterceptorFor(trace.HeaderXRequestID)
}

// NewRequestIDInterceptorFor is NewRequestIDInterceptor with a custom header name
func NewRequestIDInterceptorFor(header string) RequestInterceptor {
	if header == "" {
		header = trace.HeaderXRequestID
	}
	return func(ctx context.Context, req *nethttp.Request) error {
		if req.Header.Get(header) == "" {
			req.Header.Set(header, trace.EnsureRequestID(ctx))
		}
		return nil
	}
}

// NewOperationInterceptor forwards the console operation identifier, if the
// context carries one.
func NewOperationInterceptor() RequestInterceptor {
	return func(ctx context.Context, req *nethttp.Request) error {
		if op, ok := trace.OperationFromContext(ctx); ok {
			req.Header.Set(trace.HeaderOperation, op)
		}
		return nil
	}
}

// NewTracePropagationInterceptor writes the span context carried by ctx into
// the request headers using the global propagator (traceparent by default).
func NewTracePropagationInterceptor() RequestInterceptor {
	return func(ctx context.Context, req *nethttp.Request) error {
		otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
		return nil
	}
}
