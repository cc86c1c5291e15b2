package observability

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// noopProvider is used when tracing is disabled.
type noopProvider struct {
	tracerProvider trace.TracerProvider
}

func newNoopProvider() *noopProvider {
	return &noopProvider{tracerProvider: noop.NewTracerProvider()}
}

func (n *noopProvider) TracerProvider() trace.TracerProvider {
	return n.tracerProvider
}

func (n *noopProvider) Shutdown(_ context.Context) error {
	return nil
}
