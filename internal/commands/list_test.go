package commands

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cocofhu/mcp-adapter-console/schema"
	"github.com/cocofhu/mcp-adapter-console/testing/fakebackend"
)

func TestAppsCommand(t *testing.T) {
	srv, _ := startBackend(t)

	out, _, err := execute(t, "apps", "--backend", srv.URL())
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "weather")
	assert.Contains(t, out, "/weather")
}

func TestTypesCommand(t *testing.T) {
	srv, app := startBackend(t)
	address := srv.SeedCustomType(schema.CustomTypeDraft{
		AppID:  app.ID,
		Name:   "Address",
		Fields: []schema.Field{{Name: "street", Type: schema.TypeString}},
	})
	srv.SeedCustomType(schema.CustomTypeDraft{
		AppID:  app.ID,
		Name:   "Person",
		Fields: []schema.Field{{Name: "homes", Type: schema.TypeCustom, Ref: schema.Ref(address.ID), IsArray: true}},
	})

	out, _, err := execute(t, "types", "--app", "1", "--backend", srv.URL())
	require.NoError(t, err)
	assert.Contains(t, out, "street:string")
	assert.Contains(t, out, "homes:Address[]")

	out, _, err = execute(t, "types", "--app", "1", "--search", "pers", "--backend", srv.URL())
	require.NoError(t, err)
	assert.Contains(t, out, "Person")
	assert.NotContains(t, out, "street:string")
}

func TestTypesCommandRequiresApp(t *testing.T) {
	t.Chdir(t.TempDir())

	_, _, err := execute(t, "types")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"app" not set`)
}

func TestInterfacesCommand(t *testing.T) {
	srv, app := startBackend(t)
	srv.SeedInterface(schema.InterfaceDraft{AppID: app.ID, Name: "forecast", Method: schema.MethodGet, URL: "https://api.example.com/forecast"})
	srv.SeedInterface(schema.InterfaceDraft{AppID: app.ID, Name: "alerts", Method: schema.MethodPost, URL: "https://api.example.com/alerts"})

	out, _, err := execute(t, "interfaces", "--app", "1", "--method", "POST", "--backend", srv.URL())
	require.NoError(t, err)
	assert.Contains(t, out, "alerts")
	assert.NotContains(t, out, "forecast")

	_, _, err = execute(t, "interfaces", "--app", "1", "--method", "TRACE", "--backend", srv.URL())
	require.ErrorIs(t, err, schema.ErrUnknownMethod)
}

func TestListReportsBackendErrors(t *testing.T) {
	srv, _ := startBackend(t)
	srv.Fail(http.MethodGet, fakebackend.RouteApplications, http.StatusUnauthorized, "token expired", 0)

	_, _, err := execute(t, "apps", "--backend", srv.URL())
	require.Error(t, err)
	assert.Equal(t, "list applications: unauthorized: token expired", err.Error())
}

func TestInvalidBackendFlag(t *testing.T) {
	t.Chdir(t.TempDir())

	_, _, err := execute(t, "apps", "--backend", "not a url")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend.url")
}

func TestAppsCommandExportsSpans(t *testing.T) {
	srv, _ := startBackend(t)
	t.Setenv("MCPCONSOLE_OBSERVABILITY_ENABLED", "true")

	_, stderr, err := execute(t, "apps", "--backend", srv.URL())
	require.NoError(t, err)
	assert.Contains(t, stderr, "GET /applications")
	assert.Contains(t, stderr, "mcpconsole")
}
