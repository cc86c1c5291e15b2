// Package fakebackend is an in-memory MCP adapter API for tests.
//
// It serves the applications, custom-types and interfaces routes under
// /api, counts calls per route and supports injected failures and requests
// held until released.
package fakebackend

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/cocofhu/mcp-adapter-console/schema"
)

// BasePath is the API prefix every route is served under.
const BasePath = "/api"

// Route patterns accepted by Fail, Hold and Calls.
const (
	RouteApplications = "/applications"
	RouteApplication  = "/applications/:id"
	RouteCustomTypes  = "/custom-types"
	RouteCustomType   = "/custom-types/:id"
	RouteInterfaces   = "/interfaces"
	RouteInterface    = "/interfaces/:id"
)

type failure struct {
	status      int
	contentType string
	body        string
	remaining   int
}

// Server is a running fake backend.
type Server struct {
	echo *echo.Echo
	http *httptest.Server

	mu       sync.Mutex
	nextID   int64
	apps     map[int64]schema.Application
	types    map[int64]schema.CustomType
	ifaces   map[int64]schema.Interface
	calls    map[string]int
	failures map[string]*failure
	holds    map[string]chan struct{}
	now      func() time.Time
}

// Option configures a Server.
type Option func(*options)

type options struct {
	tracerProvider oteltrace.TracerProvider
}

// WithTracerProvider records a server span per request on tp. Without it the
// global provider is used.
func WithTracerProvider(tp oteltrace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// New starts a fake backend. Call Close when done.
func New(opts ...Option) *Server {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	s := &Server{
		nextID:   1,
		apps:     make(map[int64]schema.Application),
		types:    make(map[int64]schema.CustomType),
		ifaces:   make(map[int64]schema.Interface),
		calls:    make(map[string]int),
		failures: make(map[string]*failure),
		holds:    make(map[string]chan struct{}),
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	var otelOpts []otelecho.Option
	if o.tracerProvider != nil {
		otelOpts = append(otelOpts, otelecho.WithTracerProvider(o.tracerProvider))
	}
	e.Use(otelecho.Middleware("fakebackend", otelOpts...))
	e.Use(s.intercept)

	api := e.Group(BasePath)
	api.GET(RouteApplications, s.listApplications)
	api.POST(RouteApplications, s.createApplication)
	api.PUT(RouteApplication, s.updateApplication)
	api.DELETE(RouteApplication, s.deleteApplication)

	api.GET(RouteCustomTypes, s.listCustomTypes)
	api.POST(RouteCustomTypes, s.createCustomType)
	api.PUT(RouteCustomType, s.updateCustomType)
	api.DELETE(RouteCustomType, s.deleteCustomType)

	api.GET(RouteInterfaces, s.listInterfaces)
	api.POST(RouteInterfaces, s.createInterface)
	api.PUT(RouteInterface, s.updateInterface)
	api.DELETE(RouteInterface, s.deleteInterface)

	s.echo = e
	s.http = httptest.NewServer(e)
	return s
}

// URL returns the API root, including BasePath.
func (s *Server) URL() string { return s.http.URL + BasePath }

// Close releases held requests and stops the server.
func (s *Server) Close() {
	s.mu.Lock()
	for key, ch := range s.holds {
		close(ch)
		delete(s.holds, key)
	}
	s.mu.Unlock()
	s.http.Close()
}

// Calls returns how many requests reached method and route.
func (s *Server) Calls(method, route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[routeKey(method, route)]
}

// Fail makes the next times requests to method and route answer status with
// a plain-text body. times <= 0 fails until Reset.
func (s *Server) Fail(method, route string, status int, body string, times int) {
	s.inject(method, route, &failure{status: status, contentType: echo.MIMETextPlainCharsetUTF8, body: body, remaining: times})
}

// FailJSON is Fail with a JSON body.
func (s *Server) FailJSON(method, route string, status int, body string, times int) {
	s.inject(method, route, &failure{status: status, contentType: echo.MIMEApplicationJSON, body: body, remaining: times})
}

func (s *Server) inject(method, route string, f *failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[routeKey(method, route)] = f
}

// Hold blocks requests to method and route until release is called.
func (s *Server) Hold(method, route string) (release func()) {
	key := routeKey(method, route)
	ch := make(chan struct{})

	s.mu.Lock()
	s.holds[key] = ch
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if current, ok := s.holds[key]; ok && current == ch {
				delete(s.holds, key)
				close(ch)
			}
		})
	}
}

// Reset clears injected failures and call counts.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]*failure)
	s.calls = make(map[string]int)
}

// intercept counts the call, then applies a hold or an injected failure.
func (s *Server) intercept(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := routeKey(c.Request().Method, strings.TrimPrefix(c.Path(), BasePath))

		s.mu.Lock()
		s.calls[key]++
		hold := s.holds[key]
		var injected *failure
		if f, ok := s.failures[key]; ok {
			injected = f
			if f.remaining > 0 {
				f.remaining--
				if f.remaining == 0 {
					delete(s.failures, key)
				}
			}
		}
		s.mu.Unlock()

		if hold != nil {
			select {
			case <-hold:
			case <-c.Request().Context().Done():
				return c.Request().Context().Err()
			}
		}

		if injected != nil {
			return c.Blob(injected.status, injected.contentType, []byte(injected.body))
		}
		return next(c)
	}
}

func routeKey(method, route string) string {
	return strings.ToUpper(method) + " " + route
}

func (s *Server) allocID() int64 {
	id := s.nextID
	s.nextID++
	return id
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func queryAppID(c echo.Context) (int64, error) {
	raw := c.QueryParam("app_id")
	if raw == "" {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "app_id is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid app_id")
	}
	return id, nil
}

func jsonError(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg})
}
