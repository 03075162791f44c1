package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sdlc-tools/mcp-server/pkg/atlassian"
	"github.com/sdlc-tools/mcp-server/pkg/cache"
	"github.com/sdlc-tools/mcp-server/pkg/config"
	"github.com/sdlc-tools/mcp-server/pkg/logging"
	"github.com/sdlc-tools/mcp-server/pkg/maven"
	"github.com/sdlc-tools/mcp-server/pkg/observability"
	"github.com/sdlc-tools/mcp-server/pkg/prompts"
	"github.com/sdlc-tools/mcp-server/pkg/protocol"
	"github.com/sdlc-tools/mcp-server/pkg/resources"
	"github.com/sdlc-tools/mcp-server/pkg/server"
	"github.com/sdlc-tools/mcp-server/pkg/tools"
)

const (
	serverName    = "sdlc-tools-mcp-server"
	serverVersion = "2.0.0"
)

// app is a fully wired server plus everything that must be released on exit
type app struct {
	server  *server.Server
	cache   *cache.Cache
	closers []func(context.Context) error
}

func serverInfo() map[string]interface{} {
	return map[string]interface{}{
		"description": "SDLC Tools MCP Server for Maven analysis, JIRA issue tracking, and Confluence documentation",
		"capabilities": map[string]bool{
			"tools":     true,
			"resources": true,
			"prompts":   true,
		},
		"integrations": map[string]string{
			"maven":      "Maven project analysis and build automation",
			"jira":       "JIRA issue tracking and management",
			"confluence": "Confluence documentation management",
		},
		"sdlcPersonas": map[string]string{
			"analyst":    ".github/mcp/personas/01-analyst.md",
			"architect":  ".github/mcp/personas/02-architect.md",
			"developer":  ".github/mcp/personas/03-developer.md",
			"tester":     ".github/mcp/personas/04-tester.md",
			"reviewer":   ".github/mcp/personas/05-reviewer.md",
			"documentor": ".github/mcp/personas/06-documentor.md",
		},
	}
}

// newApp builds the cache, observability providers and server from cfg and
// registers every tool, resource and prompt. On error everything already
// started is released.
func newApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			_ = a.Close(context.Background())
		}
	}()

	store, err := a.newStore(ctx, cfg.Server, logger)
	if err != nil {
		return nil, err
	}
	a.cache = cache.New(store, cache.WithMaxAge(cfg.Server.CacheMaxAge), cache.WithLogger(logger))

	watcher, err := cache.NewWatcher(a.cache, logger)
	if err != nil {
		logger.WithError(err).Warn("pom.xml watching disabled")
	} else {
		watchCtx, cancel := context.WithCancel(ctx)
		go watcher.Run(watchCtx)
		a.closers = append(a.closers, func(context.Context) error {
			cancel()
			return watcher.Close()
		})
	}

	obs, err := a.newObservability(ctx, cfg.Server, logger)
	if err != nil {
		return nil, err
	}

	a.server = server.New(
		server.WithName(serverName),
		server.WithVersion(serverVersion),
		server.WithProtocolVersion(protocol.ProtocolVersion),
		server.WithServerInfo(serverInfo()),
		server.WithLogger(logger),
		server.WithMiddleware(
			server.LoggingMiddleware(logger, &logging.UUIDGenerator{}),
			obs.Middleware(),
		),
		server.WithInterceptor(obs.Interceptor()),
	)

	toolset := tools.New(tools.Dependencies{
		Config:  cfg,
		Cache:   a.cache,
		Watcher: watcher,
		Maven:   maven.NewCommandExecutor(cfg.Server.MavenBin, logger),
		RateLimiter: atlassian.NewRateLimiter(atlassian.RateLimitConfig{
			RequestsPerMinute: cfg.Server.AtlassianRequestsPerMinute,
		}),
		Logger: logger,
	})
	if err := toolset.Register(a.server); err != nil {
		return nil, err
	}
	if err := a.server.RegisterResource(resources.NewAnalysisCache(a.cache, logger)); err != nil {
		return nil, err
	}
	if err := a.server.RegisterPrompt(prompts.NewWorkflow(logger)); err != nil {
		return nil, err
	}

	logger.Info("Server configured",
		logging.String("cacheBackend", cfg.Server.CacheBackend),
		logging.Bool("jira", cfg.IsJiraConfigured()),
		logging.Bool("confluence", cfg.IsConfluenceConfigured()),
		logging.Any("configSources", cfg.Sources),
	)
	return a, nil
}

func (a *app) newStore(ctx context.Context, sc config.ServerConfig, logger logging.Logger) (cache.Store, error) {
	switch strings.ToLower(sc.CacheBackend) {
	case "", "memory":
		return cache.NewMemoryStore(), nil
	case "redis":
		rc, err := cache.LoadRedisConfig()
		if err != nil {
			return nil, err
		}
		if sc.RedisAddr != "" {
			rc.Addr = sc.RedisAddr
		}
		store, err := cache.NewRedisStore(ctx, rc)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return store.Close() })
		logger.Info("Using Redis analysis cache", logging.String("addr", rc.Addr))
		return store, nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", sc.CacheBackend)
	}
}

func (a *app) newObservability(ctx context.Context, sc config.ServerConfig, logger logging.Logger) (*observability.Observability, error) {
	metrics, err := observability.NewMetricsProvider(observability.MetricsConfig{
		ServiceName:    serverName,
		ServiceVersion: serverVersion,
		Addr:           sc.MetricsAddr,
	})
	if err != nil {
		return nil, err
	}
	if err := metrics.Start(ctx); err != nil {
		return nil, err
	}
	if sc.MetricsAddr != "" {
		logger.Info("Metrics endpoint listening", logging.String("addr", metrics.Addr()))
	}

	exporter, err := observability.ParseExporterType(sc.TraceExporter)
	if err != nil {
		_ = metrics.Shutdown(ctx)
		return nil, err
	}

	var tracer *observability.TracingProvider
	if exporter != observability.ExporterTypeNone {
		tracer, err = observability.NewTracingProvider(observability.TracingConfig{
			ServiceName:    serverName,
			ServiceVersion: serverVersion,
			ExporterType:   exporter,
			Endpoint:       sc.TraceEndpoint,
			Insecure:       true,
			SetGlobal:      true,
		})
		if err != nil {
			_ = metrics.Shutdown(ctx)
			return nil, err
		}
		logger.Info("Tracing enabled", logging.String("exporter", string(exporter)))
	}

	obs := observability.New(tracer, metrics)
	a.closers = append(a.closers, obs.Shutdown)
	return obs, nil
}

// Close releases resources in reverse order of acquisition
func (a *app) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
