package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/cocofhu/mcp-adapter-console/httpclient"
)

// APIError is a failed backend call. Status is 0 when no response arrived.
type APIError struct {
	Status int
	// Body is the raw response body
	Body string
	// Message is the user-facing text
	Message string

	err error
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Unwrap() error { return e.err }

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// FriendlyStatus returns the user-facing description of an HTTP status.
func FriendlyStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "resource not found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusInternalServerError:
		return "internal server error"
	case http.StatusServiceUnavailable:
		return "service unavailable"
	default:
		return fmt.Sprintf("request failed (status %d)", status)
	}
}

// newStatusError builds the APIError of a non-2xx response. The backend's own
// error text follows the status description verbatim.
func newStatusError(status int, body []byte, cause error) *APIError {
	msg := FriendlyStatus(status)
	if detail := errorDetail(body); detail != "" {
		msg += ": " + detail
	}
	return &APIError{Status: status, Body: string(body), Message: msg, err: cause}
}

// errorDetail extracts the error text from a plain-text or JSON error body.
func errorDetail(body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return ""
	}
	if text[0] != '{' {
		return text
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return text
	}
	for _, key := range []string{"error", "message"} {
		if s, ok := payload[key].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return text
}

// newTransportError wraps failures that produced no usable response.
func newTransportError(err error) *APIError {
	switch {
	case errors.Is(err, errDecode):
		return &APIError{Message: "unexpected response from backend", err: err}
	case httpclient.IsErrorType(err, httpclient.TimeoutError):
		return &APIError{Message: "request timed out", err: err}
	case httpclient.IsErrorType(err, httpclient.NetworkError):
		return &APIError{Message: "network error: backend unreachable", err: err}
	default:
		return &APIError{Message: "request failed", err: err}
	}
}
