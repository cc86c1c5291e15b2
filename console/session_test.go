package console

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cocofhu/mcp-adapter-console/backend"
	"github.com/cocofhu/mcp-adapter-console/httpclient"
	"github.com/cocofhu/mcp-adapter-console/inflight"
	"github.com/cocofhu/mcp-adapter-console/logger"
	"github.com/cocofhu/mcp-adapter-console/schema"
	"github.com/cocofhu/mcp-adapter-console/testing/fakebackend"
	"github.com/cocofhu/mcp-adapter-console/validation"
)

const (
	testTimeout = 2 * time.Second
	testTick    = 10 * time.Millisecond
)

type fixture struct {
	srv      *fakebackend.Server
	session  *Session
	notices  *Recorder
	app      schema.Application
	address  schema.CustomType
	forecast schema.Interface
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	srv := fakebackend.New()
	t.Cleanup(srv.Close)

	app := srv.SeedApplication(schema.ApplicationDraft{Name: "weather", Enabled: true})
	address := srv.SeedCustomType(schema.CustomTypeDraft{
		AppID:       app.ID,
		Name:        "Address",
		Description: "postal address",
		Fields:      []schema.Field{{Name: "street", Type: schema.TypeString, Required: true}},
	})
	forecast := srv.SeedInterface(schema.InterfaceDraft{
		AppID:       app.ID,
		Name:        "forecast",
		Description: "daily forecast",
		Method:      schema.MethodGet,
		Protocol:    "http",
		URL:         "https://api.example.com/forecast",
		AuthType:    "none",
		Enabled:     true,
		Parameters: []schema.Parameter{
			{Field: schema.Field{Name: "city", Type: schema.TypeString, Required: true}, Location: schema.LocationQuery, Group: schema.GroupInput},
		},
	})

	hc := httpclient.NewBuilder(logger.Nop()).WithTimeout(testTimeout).Build()
	notices := &Recorder{}
	session := New(backend.New(srv.URL(), hc), WithNotifier(notices), WithLogger(logger.Nop()))

	return &fixture{srv: srv, session: session, notices: notices, app: app, address: address, forecast: forecast}
}

func (f *fixture) open(t *testing.T) {
	t.Helper()
	require.NoError(t, f.session.Open(context.Background(), f.app.ID))
	f.notices.Reset()
	f.srv.Reset()
}

func lastNotice(t *testing.T, r *Recorder) Notice {
	t.Helper()
	n, ok := r.Last()
	require.True(t, ok, "expected a notice")
	return n
}

func TestOpen(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.session.Open(context.Background(), f.app.ID))

	app, ok := f.session.Application()
	require.True(t, ok)
	assert.Equal(t, "weather", app.Name)

	catalog := f.session.Catalog()
	require.NotNil(t, catalog)
	assert.Equal(t, f.app.ID, catalog.AppID())
	_, ok = catalog.Lookup(f.address.ID)
	assert.True(t, ok)

	ifaces := f.session.Interfaces()
	require.Len(t, ifaces, 1)
	assert.Equal(t, "forecast", ifaces[0].Name)

	f.session.Close()
	_, ok = f.session.Application()
	assert.False(t, ok)
	assert.Nil(t, f.session.Catalog())
}

func TestOpenUnknownApplication(t *testing.T) {
	f := newFixture(t)

	err := f.session.Open(context.Background(), 999)
	require.ErrorIs(t, err, ErrNotFound)

	n := lastNotice(t, f.notices)
	assert.Equal(t, LevelError, n.Level)
	_, ok := f.session.Application()
	assert.False(t, ok)
}

func TestOpenBackendFailure(t *testing.T) {
	f := newFixture(t)
	f.srv.Fail(http.MethodGet, fakebackend.RouteInterfaces, http.StatusServiceUnavailable, "maintenance", 1)

	err := f.session.Open(context.Background(), f.app.ID)
	require.Error(t, err)
	assert.True(t, backend.IsStatus(err, http.StatusServiceUnavailable))
	assert.Contains(t, lastNotice(t, f.notices).Message, "service unavailable: maintenance")
}

func TestOperationsRequireApplication(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	checks := map[string]func() error{
		"new_type":         func() error { _, err := f.session.NewTypeEditor(); return err },
		"edit_type":        func() error { _, err := f.session.EditType(f.address.ID); return err },
		"new_interface":    func() error { _, err := f.session.NewInterfaceEditor(); return err },
		"edit_interface":   func() error { _, err := f.session.EditInterface(f.forecast.ID); return err },
		"delete_type":      func() error { return f.session.DeleteType(ctx, f.address.ID) },
		"delete_interface": func() error { return f.session.DeleteInterface(ctx, f.forecast.ID) },
		"refresh":          func() error { return f.session.Refresh(ctx) },
	}

	for name, check := range checks {
		t.Run(name, func(t *testing.T) {
			f.notices.Reset()
			require.ErrorIs(t, check(), ErrNoApplication)
			assert.Equal(t, LevelWarning, lastNotice(t, f.notices).Level)
		})
	}
	assert.Equal(t, 0, f.srv.Calls(http.MethodDelete, fakebackend.RouteCustomType))
	assert.Equal(t, 0, f.srv.Calls(http.MethodDelete, fakebackend.RouteInterface))
}

func TestApplications(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	apps, err := f.session.Applications(ctx)
	require.NoError(t, err)
	require.Len(t, apps, 1)

	created, err := f.session.CreateApplication(ctx, schema.ApplicationDraft{Name: "maps", Protocol: "sse"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, LevelSuccess, lastNotice(t, f.notices).Level)

	updated, err := f.session.UpdateApplication(ctx, created.ID, schema.ApplicationDraft{Name: "maps", Description: "tiles"})
	require.NoError(t, err)
	assert.Equal(t, "tiles", updated.Description)

	require.NoError(t, f.session.DeleteApplication(ctx, created.ID))

	apps, err = f.session.Applications(ctx)
	require.NoError(t, err)
	assert.Len(t, apps, 1)
}

func TestCreateApplicationChecksDraft(t *testing.T) {
	f := newFixture(t)

	_, err := f.session.CreateApplication(context.Background(), schema.ApplicationDraft{Name: "  ", Protocol: "grpc"})
	require.Error(t, err)

	var verr *validation.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Errors, 2)
	assert.Equal(t, LevelError, lastNotice(t, f.notices).Level)
	assert.Equal(t, 0, f.srv.Calls(http.MethodPost, fakebackend.RouteApplications))
}

func TestCreateApplicationConflict(t *testing.T) {
	f := newFixture(t)

	_, err := f.session.CreateApplication(context.Background(), schema.ApplicationDraft{Name: "weather"})
	require.Error(t, err)
	assert.True(t, backend.IsStatus(err, http.StatusConflict))

	n := lastNotice(t, f.notices)
	assert.Equal(t, LevelError, n.Level)
	assert.Equal(t, "conflict: application name already exists", n.Message)
}

func TestDeleteOpenApplicationClosesIt(t *testing.T) {
	f := newFixture(t)
	f.open(t)

	require.NoError(t, f.session.DeleteApplication(context.Background(), f.app.ID))
	_, ok := f.session.Application()
	assert.False(t, ok)
	assert.Nil(t, f.session.Catalog())
}

func TestRefresh(t *testing.T) {
	f := newFixture(t)
	f.open(t)

	f.srv.SeedInterface(schema.InterfaceDraft{AppID: f.app.ID, Name: "alerts", Method: schema.MethodGet, URL: "https://api.example.com/alerts"})
	f.srv.SeedCustomType(schema.CustomTypeDraft{AppID: f.app.ID, Name: "Coordinates"})

	require.NoError(t, f.session.Refresh(context.Background()))
	assert.Len(t, f.session.Interfaces(), 2)
	assert.Len(t, f.session.Catalog().Types(), 2)
}

func TestSharedRegistry(t *testing.T) {
	reg := inflight.New()
	s := New(nil, WithRegistry(reg), WithNotifier(nil), WithLogger(nil))
	assert.Same(t, reg, s.registry)
	assert.NotNil(t, s.notifier)
	assert.NotNil(t, s.log)
}
