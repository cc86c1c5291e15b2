package commands

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVersionCommand(t *testing.T) {
	tests := []struct {
		name    string
		version string
	}{
		{name: "development version", version: "dev"},
		{name: "release version", version: "v1.2.3"},
		{name: "empty version", version: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			cmd := NewVersionCommand(tt.version)
			require.NotNil(t, cmd)
			assert.Equal(t, "version", cmd.Use)
			cmd.SetOut(&buf)
			cmd.SetArgs([]string{})

			require.NoError(t, cmd.Execute())
			assert.Equal(t,
				"mcpconsole version "+tt.version+"\n"+
					"Built with "+runtime.Version()+" "+runtime.GOOS+"/"+runtime.GOARCH+"\n",
				buf.String())
		})
	}
}

func TestVersionCommandIntegration(t *testing.T) {
	rootCmd := &cobra.Command{Use: "test-root"}
	rootCmd.AddCommand(NewVersionCommand("test-version"))

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"version"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "mcpconsole version test-version")
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := NewRootCommand("dev")
	names := []string{}
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"validate", "preview", "apps", "types", "interfaces", "apply", "version"} {
		assert.Contains(t, names, want)
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("backend"))
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
	assert.NotNil(t, root.PersistentFlags().Lookup("log-level"))
}
