// Package cli wires configuration into a running assistant and implements
// the command behaviors of the barista binary.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/GenAICloudDevOps/AgenticBarista"
	filestore "github.com/GenAICloudDevOps/AgenticBarista/internal/adapters/file"
	redisstore "github.com/GenAICloudDevOps/AgenticBarista/internal/adapters/redis"
	sqlcatalog "github.com/GenAICloudDevOps/AgenticBarista/internal/adapters/sql"
	"github.com/GenAICloudDevOps/AgenticBarista/internal/config"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/adapters/completion"
	httpadapter "github.com/GenAICloudDevOps/AgenticBarista/pkg/adapters/http"
	memadapter "github.com/GenAICloudDevOps/AgenticBarista/pkg/adapters/memory"
	redislock "github.com/GenAICloudDevOps/AgenticBarista/pkg/adapters/redis"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/domain"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/memory"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/observability"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/persistence/middleware"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/ports"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/router"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/session"
)

// Assistant is a fully wired assistant and everything it owns.
type Assistant struct {
	Config   *config.Config
	Logger   *slog.Logger
	Router   *router.Router
	Sessions *session.Manager
	Memory   *memory.Store
	Catalog  ports.Catalog

	// Registry is nil when metrics are disabled.
	Registry *prometheus.Registry
	Metrics  *observability.Metrics
	// Streams fans committed session diffs out to SSE and WebSocket clients.
	Streams *httpadapter.StreamManager

	closers []func(context.Context) error
}

// Build wires an Assistant from cfg. Close releases what it opened.
// On failure everything opened so far is closed and a nil Assistant is returned.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Assistant, error) {
	a := &Assistant{Config: cfg, Logger: logger}
	if err := a.wire(ctx); err != nil {
		if cerr := a.Close(context.Background()); cerr != nil {
			logger.Warn("Failed to release resources after wiring error", "err", cerr)
		}
		return nil, err
	}
	return a, nil
}

func (a *Assistant) wire(ctx context.Context) error {
	cfg, logger := a.Config, a.Logger

	store, locker, err := a.createStore(ctx)
	if err != nil {
		return err
	}
	if a.Catalog, err = a.createCatalog(ctx); err != nil {
		return err
	}

	sessionOpts := []session.Option{
		session.WithLogger(logger),
		session.WithLockTTL(cfg.Lock.TTL),
	}
	if locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(locker))
	}
	a.Sessions = session.NewManager(store, sessionOpts...)
	a.Memory = memory.NewStore(a.Sessions, memory.WithPolicy(cfg.Memory))

	if cfg.Metrics.Enabled {
		a.Registry = prometheus.NewRegistry()
		a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		a.Metrics = observability.NewMetrics(a.Registry)
	}

	tracer, shutdown, err := observability.NewTracer(ctx, observability.TraceConfig{
		ServiceName:    "barista",
		ServiceVersion: barista.Version,
		Endpoint:       cfg.Tracing.Endpoint,
		SamplingRate:   cfg.Tracing.SamplingRate,
		Insecure:       cfg.Tracing.Insecure,
	})
	if err != nil {
		return err
	}
	a.closers = append(a.closers, shutdown)

	a.Streams = httpadapter.NewStreamManager(logger)
	opts := []router.Option{
		router.WithTaxRate(cfg.TaxRate),
		router.WithMemoryPolicy(cfg.Memory),
		router.WithLogger(logger),
		router.WithTracer(tracer),
		router.WithLifecycleHooks(observability.CombineHooks(observability.LogHooks(logger), a.Streams.Hooks())),
	}
	if a.Metrics != nil {
		opts = append(opts, router.WithMetrics(a.Metrics))
	}

	completer, err := completion.New(ctx, completionConfig(cfg.Completion))
	if err != nil {
		return err
	}
	if completer != nil {
		instrumented := observability.InstrumentCompleter(completer, cfg.Completion.Provider,
			observability.WithCompleterMetrics(a.Metrics),
			observability.WithCompleterTracer(tracer),
			observability.WithCompleterLogger(logger),
		)
		opts = append(opts, router.WithCompleter(instrumented))
		logger.Info("Completion enabled", "provider", cfg.Completion.Provider, "model", cfg.Completion.Model)
	}

	a.Router = router.New(a.Catalog, a.Sessions, opts...)
	return nil
}

func completionConfig(c config.CompletionConfig) completion.Config {
	return completion.Config{
		Provider:    c.Provider,
		Model:       c.Model,
		Region:      c.Region,
		APIKey:      c.APIKey,
		BaseURL:     c.BaseURL,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
		Timeout:     c.Timeout,
		Command:     c.Command,
		Args:        c.Args,
	}
}

// createStore builds the session backend wrapped by the configured middleware.
// The locker is nil unless distributed locking is enabled.
func (a *Assistant) createStore(ctx context.Context) (ports.StateStore, ports.DistributedLocker, error) {
	cfg := a.Config.Store

	var (
		store  ports.StateStore
		locker ports.DistributedLocker
	)
	switch cfg.Type {
	case "file":
		store = filestore.New(cfg.Dir)
	case "redis":
		rs := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, redisstore.WithTTL(cfg.TTL))
		a.closers = append(a.closers, func(context.Context) error { return rs.Close() })
		if err := rs.Ping(ctx); err != nil {
			return nil, nil, err
		}
		if a.Config.Lock.Distributed {
			locker = redislock.NewLocker(rs.Client(), "")
		}
		store = rs
	default:
		store = memadapter.NewStore()
	}

	var mws []middleware.Middleware
	if len(cfg.PIIPatterns) > 0 {
		pii, err := middleware.NewPIIMiddleware(cfg.PIIPatterns)
		if err != nil {
			return nil, nil, err
		}
		mws = append(mws, pii)
	}
	if cfg.EncryptionKey != "" {
		key, err := cfg.Key()
		if err != nil {
			return nil, nil, err
		}
		enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			return nil, nil, err
		}
		mws = append(mws, enc)
	}

	a.Logger.Debug("Session store ready", "type", cfg.Type, "middleware", len(mws), "distributed_lock", locker != nil)
	return middleware.Chain(store, mws...), locker, nil
}

func (a *Assistant) createCatalog(ctx context.Context) (ports.Catalog, error) {
	cfg := a.Config.Catalog

	switch cfg.Source {
	case "file":
		return filestore.NewCatalog(cfg.Path, filestore.WithCatalogLogger(a.Logger))
	case "sqlite", "postgres":
		dialect, err := sqlcatalog.ParseDialect(cfg.Source)
		if err != nil {
			return nil, err
		}
		c, err := sqlcatalog.Open(ctx, dialect, cfg.DSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return c.Close() })
		if err := c.Migrate(ctx); err != nil {
			return nil, err
		}
		if cfg.Seed {
			items, err := c.List(ctx)
			if err != nil {
				return nil, err
			}
			if len(items) == 0 {
				if err := c.Seed(ctx, domain.DefaultCatalog()); err != nil {
					return nil, err
				}
				a.Logger.Info("Seeded menu", "dialect", cfg.Source)
			}
		}
		return c, nil
	default:
		return memadapter.NewDefaultCatalog(), nil
	}
}

// WatchCatalog logs every menu reload until ctx is done.
// It returns immediately when watching is disabled or unsupported.
func (a *Assistant) WatchCatalog(ctx context.Context) error {
	if !a.Config.Catalog.Watch {
		return nil
	}
	w, ok := a.Catalog.(ports.Watchable)
	if !ok {
		a.Logger.Warn("Catalog source does not support watching", "source", a.Config.Catalog.Source)
		return nil
	}
	ch, err := w.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to watch catalog: %w", err)
	}
	a.Logger.Info("Watching menu", "path", a.Config.Catalog.Path)
	for range ch {
		a.Logger.Info("Menu reloaded")
	}
	return nil
}

// Close releases resources in reverse order of acquisition.
func (a *Assistant) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}
	a.closers = nil
	return errors.Join(errs...)
}
