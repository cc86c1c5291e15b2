package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cocofhu/mcp-adapter-console/schema"
	"github.com/cocofhu/mcp-adapter-console/testing/fakebackend"
)

const interfaceDraftYAML = `app_id: 1
name: forecast
description: daily forecast
method: GET
protocol: http
url: https://api.example.com/forecast
auth_type: none
enabled: true
parameters:
  - name: city
    type: string
    location: query
    group: input
    required: true
  - name: days
    type: number
    location: query
    group: input
  - name: api_key
    type: string
    location: header
    group: fixed
    required: true
    default_value: secret
`

// execute runs the root command in a scratch directory and returns stdout and stderr
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := NewRootCommand("test")
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func writeDraft(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// startBackend runs a fake backend seeded with application 1 and returns it
func startBackend(t *testing.T) (*fakebackend.Server, schema.Application) {
	t.Helper()
	t.Chdir(t.TempDir())

	srv := fakebackend.New()
	t.Cleanup(srv.Close)
	app := srv.SeedApplication(schema.ApplicationDraft{Name: "weather", Path: "/weather", Protocol: "sse", Enabled: true})
	require.Equal(t, int64(1), app.ID)
	return srv, app
}
