// Package trace carries request correlation values through a context so that every
// backend call issued by the console can be matched with the user action that caused it.
package trace

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	operationKey contextKey = "operation"

	// HeaderXRequestID is the header carrying the request id to the backend
	HeaderXRequestID = "X-Request-ID"
	// HeaderOperation is the header naming the console operation (e.g. "update-interface-7")
	HeaderOperation = "X-Console-Operation"
)

// WithRequestID adds a request id to the context
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request id stored in ctx, if any
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if id, ok := ctx.Value(requestIDKey).(string); ok && id != "" {
		return id, true
	}
	return "", false
}

// EnsureRequestID returns the request id from ctx or a fresh UUID
func EnsureRequestID(ctx context.Context) string {
	if id, ok := RequestIDFromContext(ctx); ok {
		return id
	}
	return uuid.NewString()
}

// WithOperation records the console operation identifier on the context
func WithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, operationKey, op)
}

// OperationFromContext returns the console operation identifier, if any
func OperationFromContext(ctx context.Context) (string, bool) {
	if op, ok := ctx.Value(operationKey).(string); ok && op != "" {
		return op, true
	}
	return "", false
}
