package observability

import (
	"fmt"
	"maps"
	"strings"
)

const (
	// EndpointStdout writes spans to the provider's writer instead of an OTLP collector.
	EndpointStdout = "stdout"

	// ProtocolHTTP specifies OTLP over HTTP/protobuf.
	ProtocolHTTP = "http"

	// ProtocolGRPC specifies OTLP over gRPC.
	ProtocolGRPC = "grpc"

	// DefaultServiceName is used when no service name is configured.
	DefaultServiceName = "mcpconsole"
)

// Config controls span export. The zero value disables tracing.
type Config struct {
	// Enabled turns span export on. When false, spans go to a no-op provider.
	Enabled bool `koanf:"enabled" json:"enabled" yaml:"enabled"`

	// Service identifies the console in exported spans.
	Service ServiceConfig `koanf:"service" json:"service" yaml:"service"`

	// Environment indicates the deployment environment (e.g., production, development).
	Environment string `koanf:"environment" json:"environment" yaml:"environment"`

	Trace TraceConfig `koanf:"trace" json:"trace" yaml:"trace"`
}

// ServiceConfig contains service identification metadata.
type ServiceConfig struct {
	Name    string `koanf:"name" json:"name" yaml:"name"`
	Version string `koanf:"version" json:"version" yaml:"version"`
}

// TraceConfig selects the span exporter.
type TraceConfig struct {
	// Endpoint is "stdout" or the OTLP collector address.
	Endpoint string `koanf:"endpoint" json:"endpoint" yaml:"endpoint"`
	// Protocol is "http" or "grpc"; ignored for stdout.
	Protocol string `koanf:"protocol" json:"protocol" yaml:"protocol"`
	// Insecure disables TLS towards a gRPC collector.
	Insecure bool `koanf:"insecure" json:"insecure" yaml:"insecure"`
	// SampleRate is the fraction of traces kept, from 0.0 to 1.0.
	SampleRate float64 `koanf:"samplerate" json:"samplerate" yaml:"samplerate"`
	// Headers are sent to the collector, e.g. for authentication.
	Headers map[string]string `koanf:"headers" json:"headers" yaml:"headers"`
}

// ApplyDefaults fills unset values. A zero sample rate is kept only when
// tracing is disabled.
func (c *Config) ApplyDefaults() {
	if c.Service.Name == "" {
		c.Service.Name = DefaultServiceName
	}
	if c.Service.Version == "" {
		c.Service.Version = "unknown"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Trace.Endpoint == "" {
		c.Trace.Endpoint = EndpointStdout
	}
	if c.Trace.Protocol == "" {
		c.Trace.Protocol = ProtocolHTTP
	}
	if c.Enabled && c.Trace.SampleRate == 0 {
		c.Trace.SampleRate = 1.0
	}
	c.Trace.Headers = cloneHeaderMap(c.Trace.Headers)
}

// Validate checks an enabled configuration. A disabled one is always valid.
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	if !c.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Service.Name) == "" {
		return ErrMissingServiceName
	}
	if c.Trace.SampleRate < 0 || c.Trace.SampleRate > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidSampleRate, c.Trace.SampleRate)
	}
	if c.Trace.Endpoint == EndpointStdout {
		return nil
	}
	if c.Trace.Protocol != ProtocolHTTP && c.Trace.Protocol != ProtocolGRPC {
		return fmt.Errorf("trace protocol '%s': %w", c.Trace.Protocol, ErrInvalidProtocol)
	}
	return validateEndpointFormat(c.Trace.Endpoint, c.Trace.Protocol)
}

// validateEndpointFormat checks that the endpoint format matches the protocol.
func validateEndpointFormat(endpoint, protocol string) error {
	hasScheme := strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://")

	if protocol == ProtocolGRPC && hasScheme {
		return fmt.Errorf("%w: grpc endpoint %q must be host:port", ErrInvalidEndpointFormat, endpoint)
	}
	if protocol == ProtocolHTTP && !hasScheme {
		return fmt.Errorf("%w: http endpoint %q must include the scheme", ErrInvalidEndpointFormat, endpoint)
	}
	return nil
}

// cloneHeaderMap creates a copy of a header map to avoid aliasing.
func cloneHeaderMap(headers map[string]string) map[string]string {
	if headers == nil {
		return nil
	}
	clone := make(map[string]string, len(headers))
	maps.Copy(clone, headers)
	return clone
}
