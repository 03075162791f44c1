// Command sdlc-tools-mcp-server serves Maven, Jira and Confluence tooling to
// MCP clients over stdin/stdout. Logs are written to stderr.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sdlc-tools/mcp-server/pkg/config"
	"github.com/sdlc-tools/mcp-server/pkg/logging"
	"github.com/sdlc-tools/mcp-server/pkg/transport"
)

const shutdownTimeout = 5 * time.Second

// options are the command line flags. Server flags only apply when set.
type options struct {
	logLevel      string
	logFormat     string
	metricsAddr   string
	traceExporter string
	traceEndpoint string
	cacheBackend  string
	redisAddr     string
}

// apply copies the flags that were set onto the env-derived settings
func (o *options) apply(changed func(name string) bool, sc *config.ServerConfig) {
	if changed("metrics-addr") {
		sc.MetricsAddr = o.metricsAddr
	}
	if changed("trace-exporter") {
		sc.TraceExporter = o.traceExporter
	}
	if changed("trace-endpoint") {
		sc.TraceEndpoint = o.traceEndpoint
	}
	if changed("cache-backend") {
		sc.CacheBackend = o.cacheBackend
	}
	if changed("redis-addr") {
		sc.RedisAddr = o.redisAddr
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           serverName,
		Short:         "MCP server for Maven analysis, JIRA issue tracking and Confluence documentation",
		Version:       serverVersion,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}
	// stdout carries the protocol
	cmd.SetOut(os.Stderr)

	flags := cmd.Flags()
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "listen address of the Prometheus endpoint, e.g. :9090")
	flags.StringVar(&opts.traceExporter, "trace-exporter", "none", "trace exporter: none, noop, otlp-grpc, otlp-http")
	flags.StringVar(&opts.traceEndpoint, "trace-endpoint", "", "OTLP collector endpoint, host:port")
	flags.StringVar(&opts.cacheBackend, "cache-backend", "memory", "analysis cache backend: memory or redis")
	flags.StringVar(&opts.redisAddr, "redis-addr", "localhost:6379", "Redis address for the redis cache backend")
	return cmd
}

func run(cmd *cobra.Command, opts *options) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logging.NewFromOptions(os.Stderr, opts.logLevel, opts.logFormat)
	if err != nil {
		return err
	}

	cfg, err := config.Load(config.WithLogger(logger))
	if err != nil {
		logger.WithError(err).Error("Failed to load configuration")
		return err
	}
	opts.apply(cmd.Flags().Changed, &cfg.Server)

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to start server")
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.Close(shutdownCtx); err != nil {
			logger.WithError(err).Warn("Shutdown incomplete")
		}
	}()

	stdio := transport.NewStdioTransport(os.Stdin, os.Stdout)
	t := transport.NewLoggingMiddleware(logger).Wrap(stdio)
	return a.server.Serve(ctx, t)
}

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		cmd.PrintErrln("Error:", err)
		os.Exit(1)
	}
}
