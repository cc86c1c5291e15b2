package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/cocofhu/mcp-adapter-console/backend"
	"github.com/cocofhu/mcp-adapter-console/config"
	"github.com/cocofhu/mcp-adapter-console/console"
	"github.com/cocofhu/mcp-adapter-console/logger"
	"github.com/cocofhu/mcp-adapter-console/observability"
)

const shutdownTimeout = 5 * time.Second

// GlobalOptions holds the flags shared by every command
type GlobalOptions struct {
	ConfigFile string
	BackendURL string
	LogLevel   string

	version string
}

// NewRootCommand creates the mcpconsole command tree
func NewRootCommand(version string) *cobra.Command {
	opts := &GlobalOptions{version: version}

	root := &cobra.Command{
		Use:   "mcpconsole",
		Short: "Manage MCP adapter applications, custom types and interfaces",
		Long: `Administration console for an MCP adapter backend.

Drafts of interfaces and custom types are validated locally before anything
is sent, and the backend is reached through its REST API.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "Config file (default: ./"+config.DefaultFile+" if present)")
	root.PersistentFlags().StringVar(&opts.BackendURL, "backend", "", "Backend API base URL, overrides backend.url")
	root.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "Log level (trace|debug|info|warn|error|disabled)")

	root.AddCommand(
		NewValidateCommand(opts),
		NewPreviewCommand(opts),
		NewAppsCommand(opts),
		NewTypesCommand(opts),
		NewInterfacesCommand(opts),
		NewApplyCommand(opts),
		NewConfigCommand(opts),
		NewVersionCommand(version),
	)

	return root
}

// loadConfig reads the configuration and applies flag overrides
func (o *GlobalOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.ConfigFile)
	if err != nil {
		return nil, err
	}
	if o.BackendURL == "" && o.LogLevel == "" {
		return cfg, nil
	}

	if o.BackendURL != "" {
		cfg.Backend.URL = o.BackendURL
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// conn is what a command needs to talk to the backend
type conn struct {
	cfg     *config.Config
	log     logger.Logger
	client  *backend.Client
	session *console.Session
	tracing observability.Provider
}

func (o *GlobalOptions) connect(cmd *cobra.Command) (*conn, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	log := logger.NewWithWriter(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Pretty)

	if cfg.Observability.Service.Version == "" {
		cfg.Observability.Service.Version = o.version
	}
	if cfg.Observability.Environment == "" {
		cfg.Observability.Environment = cfg.App.Env
	}
	tracing, err := observability.NewProvider(cfg.Observability,
		observability.WithWriter(cmd.ErrOrStderr()),
		observability.WithGlobal(),
	)
	if err != nil {
		return nil, err
	}

	client := backend.NewFromConfig(cfg, log, backend.WithTracerProvider(tracing.TracerProvider()))
	session := console.New(client,
		console.WithLogger(log),
		console.WithNotifier(printNotices(cmd.ErrOrStderr())),
	)

	log.Debug().Str("backend", client.BaseURL()).Str("env", cfg.App.Env).Msg("console ready")
	return &conn{cfg: cfg, log: log, client: client, session: session, tracing: tracing}, nil
}

// close flushes spans still held by the exporter
func (c *conn) close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := c.tracing.Shutdown(ctx); err != nil {
		c.log.Warn().Err(err).Msg("failed to flush traces")
	}
}

// printNotices writes non-error notices to w. Errors are returned to the
// caller and reported once by main.
func printNotices(w io.Writer) console.Notifier {
	return console.NotifierFunc(func(n console.Notice) {
		if n.Level == console.LevelError {
			return
		}
		fmt.Fprintf(w, "%s: %s\n", n.Level, n.Message)
	})
}
