// Package httpclient provides the REST client the console uses to reach the
// adapter backend. It supports request/response interceptors (request id,
// operation and trace context propagation) and default headers, with
// client-side rate limiting and retries using exponential backoff.
//
// Retries
//   - Controlled via Builder.WithRetries(maxRetries, retryDelay).
//   - Retries occur on transport errors, timeouts and HTTP 5xx responses.
//   - 4xx responses are not retried.
//
// Backoff Strategy
//   - Exponential backoff based on retryDelay: delay = retryDelay * 2^attempt
//   - Full jitter is applied: actual sleep is random in [0, delay).
//   - Delay is capped at 30 seconds.
//
// Rate limiting
//   - Builder.WithRateLimit(rps, burst) makes every attempt, retries included,
//     wait for a token before it is sent.
//
// Notes
//   - Request bodies are re-sent by rebuilding the http.Request on each attempt.
//   - Interceptor errors are not retried and are surfaced immediately.
package httpclient
