// Package console drives an editing session against the MCP adapter backend.
//
// A Session caches the open application's custom types and interfaces,
// validates drafts locally before anything is sent, rejects duplicate
// submissions and reports outcomes through a Notifier.
package console

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/cocofhu/mcp-adapter-console/inflight"
	"github.com/cocofhu/mcp-adapter-console/logger"
	"github.com/cocofhu/mcp-adapter-console/schema"
	"github.com/cocofhu/mcp-adapter-console/trace"
	"github.com/cocofhu/mcp-adapter-console/validation"
)

var (
	// ErrNoApplication is returned by operations that need an open application.
	ErrNoApplication = errors.New("no application selected")
	// ErrNotFound is returned when a record is missing from the session cache.
	ErrNotFound = errors.New("not found")
)

// Resource kinds used in operation keys.
const (
	KindApplication = "application"
	KindCustomType  = "custom-type"
	KindInterface   = "interface"
)

// Backend is the subset of the REST API a session needs.
type Backend interface {
	ListApplications(ctx context.Context) ([]schema.Application, error)
	CreateApplication(ctx context.Context, d schema.ApplicationDraft) (schema.Application, error)
	UpdateApplication(ctx context.Context, id int64, d schema.ApplicationDraft) (schema.Application, error)
	DeleteApplication(ctx context.Context, id int64) error

	ListCustomTypes(ctx context.Context, appID int64) ([]schema.CustomType, error)
	CreateCustomType(ctx context.Context, d schema.CustomTypeDraft) (schema.CustomType, error)
	UpdateCustomType(ctx context.Context, id int64, d schema.CustomTypeDraft) (schema.CustomType, error)
	DeleteCustomType(ctx context.Context, id int64) error

	ListInterfaces(ctx context.Context, appID int64) ([]schema.Interface, error)
	CreateInterface(ctx context.Context, d schema.InterfaceDraft) (schema.Interface, error)
	UpdateInterface(ctx context.Context, id int64, d schema.InterfaceDraft) (schema.Interface, error)
	DeleteInterface(ctx context.Context, id int64) error
}

// Session is one console editing session.
type Session struct {
	backend  Backend
	log      logger.Logger
	notifier Notifier
	registry *inflight.Registry
	checker  *validation.Validator

	mu         sync.RWMutex
	apps       []schema.Application
	app        *schema.Application
	catalog    *schema.Catalog
	interfaces []schema.Interface
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

// WithNotifier sets where notices are delivered.
func WithNotifier(n Notifier) Option {
	return func(s *Session) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithRegistry shares a duplicate-submission registry between sessions.
func WithRegistry(r *inflight.Registry) Option {
	return func(s *Session) {
		if r != nil {
			s.registry = r
		}
	}
}

// New creates a session over b.
func New(b Backend, opts ...Option) *Session {
	s := &Session{
		backend:  b,
		log:      logger.Nop(),
		notifier: discard{},
		registry: inflight.New(),
		checker:  validation.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open loads application appID with its custom types and interfaces and
// makes it the session's current application.
func (s *Session) Open(ctx context.Context, appID int64) error {
	var (
		apps   []schema.Application
		types  []schema.CustomType
		ifaces []schema.Interface
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		apps, err = s.backend.ListApplications(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		types, err = s.backend.ListCustomTypes(gctx, appID)
		return err
	})
	g.Go(func() error {
		var err error
		ifaces, err = s.backend.ListInterfaces(gctx, appID)
		return err
	})
	if err := g.Wait(); err != nil {
		return s.fail(fmt.Errorf("open application %d: %w", appID, err))
	}

	app, ok := findApplication(apps, appID)
	if !ok {
		return s.fail(fmt.Errorf("application %d: %w", appID, ErrNotFound))
	}

	s.mu.Lock()
	s.apps = apps
	s.app = &app
	s.catalog = schema.NewCatalog(appID, types)
	s.interfaces = ifaces
	s.mu.Unlock()

	s.log.Info().
		Int64("app_id", appID).
		Int("custom_types", len(types)).
		Int("interfaces", len(ifaces)).
		Msg("application opened")
	return nil
}

// Close forgets the current application.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.app = nil
	s.catalog = nil
	s.interfaces = nil
}

// Application returns the current application.
func (s *Session) Application() (schema.Application, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.app == nil {
		return schema.Application{}, false
	}
	return *s.app, true
}

// Catalog returns the custom types of the current application, nil when
// none is open.
func (s *Session) Catalog() *schema.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

// Interfaces returns the cached interfaces of the current application.
func (s *Session) Interfaces() []schema.Interface {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]schema.Interface(nil), s.interfaces...)
}

// Refresh reloads the custom types and interfaces of the current application.
func (s *Session) Refresh(ctx context.Context) error {
	appID, err := s.currentAppID()
	if err != nil {
		return s.fail(err)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.refreshTypes(gctx, appID) })
	g.Go(func() error { return s.refreshInterfaces(gctx, appID) })
	if err := g.Wait(); err != nil {
		return s.fail(err)
	}
	return nil
}

func (s *Session) currentAppID() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.app == nil {
		return 0, ErrNoApplication
	}
	return s.app.ID, nil
}

func (s *Session) refreshTypes(ctx context.Context, appID int64) error {
	types, err := s.backend.ListCustomTypes(ctx, appID)
	if err != nil {
		return fmt.Errorf("reload custom types: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.app != nil && s.app.ID == appID {
		s.catalog = schema.NewCatalog(appID, types)
	}
	return nil
}

func (s *Session) refreshInterfaces(ctx context.Context, appID int64) error {
	ifaces, err := s.backend.ListInterfaces(ctx, appID)
	if err != nil {
		return fmt.Errorf("reload interfaces: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.app != nil && s.app.ID == appID {
		s.interfaces = ifaces
	}
	return nil
}

// guard runs fn under the operation key and tags ctx with it.
func (s *Session) guard(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	ctx = trace.WithOperation(ctx, key)
	return s.registry.Do(ctx, key, fn)
}

// afterWrite reloads a cached list once a write has succeeded. A failed
// reload does not fail the write.
func (s *Session) afterWrite(ctx context.Context, reload func(ctx context.Context, appID int64) error, appID int64) {
	if err := reload(ctx, appID); err != nil {
		s.log.Warn().Err(err).Int64("app_id", appID).Msg("reload after write failed")
		s.notifier.Notify(Notice{Level: LevelWarning, Message: "saved, but the list could not be refreshed: " + err.Error(), Err: err})
	}
}

func (s *Session) succeed(msg string) {
	s.notifier.Notify(Notice{Level: LevelSuccess, Message: msg})
}

// fail reports err through the notifier and returns it unchanged.
func (s *Session) fail(err error) error {
	switch {
	case errors.Is(err, inflight.ErrInProgress):
		s.log.Debug().Err(err).Msg("duplicate submission rejected")
		s.notifier.Notify(Notice{Level: LevelInfo, Message: inflight.ErrInProgress.Error(), Err: err})
	case errors.Is(err, ErrNoApplication):
		s.notifier.Notify(Notice{Level: LevelWarning, Message: "select an application first", Err: err})
	default:
		s.log.Warn().Err(err).Msg("operation failed")
		s.notifier.Notify(Notice{Level: LevelError, Message: err.Error(), Err: err})
	}
	return err
}

func findApplication(apps []schema.Application, id int64) (schema.Application, bool) {
	for _, app := range apps {
		if app.ID == id {
			return app, true
		}
	}
	return schema.Application{}, false
}
