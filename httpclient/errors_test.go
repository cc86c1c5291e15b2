package httpclient

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConnectionRefused = "connection refused"

func TestClientErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		err      ClientError
		kind     ErrorType
		contains []string
	}{
		{
			name:     "network",
			err:      NewNetworkError("request execution failed", errors.New(testConnectionRefused)),
			kind:     NetworkError,
			contains: []string{"network error", "request execution failed", testConnectionRefused},
		},
		{
			name:     "network_without_cause",
			err:      NewNetworkError("offline", nil),
			kind:     NetworkError,
			contains: []string{"network error: offline"},
		},
		{
			name:     "timeout",
			err:      NewTimeoutError("request timeout", 5*time.Second),
			kind:     TimeoutError,
			contains: []string{"timeout error", "5s"},
		},
		{
			name:     "http",
			err:      NewHTTPError("HTTP request failed with status 409", 409, []byte("name taken")),
			kind:     HTTPError,
			contains: []string{"HTTP error", "409"},
		},
		{
			name:     "validation",
			err:      NewValidationError("URL cannot be empty", "url"),
			kind:     ValidationError,
			contains: []string{"validation error", "field: url"},
		},
		{
			name:     "interceptor",
			err:      NewInterceptorError("request interceptor failed", "request", errors.New("no token")),
			kind:     InterceptorError,
			contains: []string{"interceptor error", "stage: request", "no token"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.err.Type())
			for _, want := range tt.contains {
				assert.Contains(t, tt.err.Error(), want)
			}
			assert.True(t, IsErrorType(tt.err, tt.kind))
		})
	}
}

func TestErrorChains(t *testing.T) {
	root := errors.New(testConnectionRefused)
	netErr := NewNetworkError("request execution failed", root)
	wrapped := fmt.Errorf("list applications: %w", netErr)

	assert.ErrorIs(t, wrapped, root)
	assert.True(t, IsErrorType(wrapped, NetworkError))
	assert.False(t, IsErrorType(wrapped, TimeoutError))
	assert.False(t, IsErrorType(nil, NetworkError))
	assert.False(t, IsErrorType(errors.New("plain"), NetworkError))

	inter := NewInterceptorError("response interceptor failed", "response", netErr)
	assert.ErrorIs(t, inter, root)
}

func TestStatusErrors(t *testing.T) {
	err := fmt.Errorf("create interface: %w", NewHTTPError("failed", 404, []byte("missing")))

	assert.True(t, IsHTTPStatusError(err, 404))
	assert.False(t, IsHTTPStatusError(err, 500))
	assert.False(t, IsHTTPStatusError(nil, 404))
	assert.False(t, IsHTTPStatusError(NewNetworkError("x", nil), 404))

	se, ok := AsStatusError(err)
	require.True(t, ok)
	assert.Equal(t, 404, se.StatusCode())
	assert.Equal(t, []byte("missing"), se.Body())

	_, ok = AsStatusError(NewTimeoutError("t", time.Second))
	assert.False(t, ok)
}

func TestIsSuccessStatus(t *testing.T) {
	for code, want := range map[int]bool{199: false, 200: true, 201: true, 204: true, 299: true, 300: false, 404: false, 503: false} {
		assert.Equal(t, want, IsSuccessStatus(code), "status %d", code)
	}
}
