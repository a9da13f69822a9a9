package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/kbukum/pipegen/bootstrap"
	"github.com/kbukum/pipegen/catalog"
	"github.com/kbukum/pipegen/config"
	"github.com/kbukum/pipegen/extension"
	"github.com/kbukum/pipegen/host"
	"github.com/kbukum/pipegen/host/redis"
	"github.com/kbukum/pipegen/host/sqlite"
	"github.com/kbukum/pipegen/httpclient"
	"github.com/kbukum/pipegen/logger"
	"github.com/kbukum/pipegen/observability"
	"github.com/kbukum/pipegen/version"
)

// runtime holds the services every command works with.
type runtime struct {
	cfg      *config.Config
	log      *logger.Logger
	app      *bootstrap.App
	backend  host.Backend
	checkers []observability.HealthChecker
	metrics  *observability.Metrics
	ext      *extension.Extension
	inbox    *extension.Inbox

	closers []bootstrap.Component
}

// newRuntime opens the store, starts telemetry when enabled and builds the
// extension. Everything opened here is closed when the App stops.
func newRuntime(ctx context.Context, cfg *config.Config, notifier extension.Notifier) (rt *runtime, err error) {
	log := logger.Get(cfg.Name)
	rt = &runtime{
		cfg:   cfg,
		log:   log,
		app:   bootstrap.New(cfg.Name, version.Get().String(), bootstrap.WithLogger(log.WithComponent("bootstrap"))),
		inbox: extension.NewInbox(0),
	}
	defer func() {
		if err != nil {
			rt.abort(ctx)
			rt = nil
		}
	}()

	if cfg.Tracing.Enabled {
		if err := rt.initTelemetry(ctx); err != nil {
			return rt, err
		}
	}
	if err := rt.openStore(ctx); err != nil {
		return rt, err
	}
	for _, name := range cfg.Store.Modules {
		if err := rt.backend.SaveModule(ctx, host.Module{Name: name}); err != nil {
			return rt, fmt.Errorf("seed module %s: %w", name, err)
		}
	}

	clientCfg := httpclient.Config{Timeout: cfg.Catalog.Timeout, Proxy: cfg.Catalog.Proxy}
	if cfg.Catalog.Token != "" {
		clientCfg.Auth = httpclient.BearerAuth(cfg.Catalog.Token)
	}
	fetcher, err := catalog.NewFetcher(clientCfg,
		catalog.WithLogger(log.WithComponent("catalog")),
		catalog.WithMetrics(rt.metrics),
	)
	if err != nil {
		return rt, err
	}

	workspace := host.NewWorkspace(rt.backend, host.WithLogger(log.WithComponent("host")))
	if notifier == nil {
		notifier = extension.LogNotifier{Log: log.WithComponent("notice")}
	}
	rt.ext = extension.New(fetcher, workspace, extension.Config{
		Prefix:   cfg.Generator.Prefix,
		Language: cfg.Generator.Language,
		PerPage:  cfg.Catalog.PerPage,
	},
		extension.WithNotifier(extension.Notifiers(notifier, rt.inbox)),
		extension.WithLogger(log.WithComponent("extension")),
		extension.WithMetrics(rt.metrics),
	)
	rt.checkers = append(rt.checkers, rt.ext)

	// A bad configured prefix stops startup instead of failing every
	// generation later.
	if err := rt.ext.SetPrefix(ctx, cfg.Generator.Prefix); err != nil {
		return rt, err
	}

	rt.app.Register(rt.closers...)
	return rt, nil
}

func (rt *runtime) initTelemetry(ctx context.Context) error {
	t := rt.cfg.Tracing
	tp, err := observability.InitTracer(ctx, observability.TracerConfig{
		ServiceName:    rt.cfg.Name,
		ServiceVersion: version.Get().String(),
		Environment:    rt.cfg.Environment,
		Endpoint:       t.Endpoint,
		Insecure:       t.Insecure,
		SampleRate:     t.SampleRate,
	})
	if err != nil {
		return err
	}
	rt.closers = append(rt.closers, bootstrap.NewComponent("tracer", nil, tp.Shutdown))

	mp, err := observability.InitMeter(ctx, observability.MeterConfig{
		ServiceName:    rt.cfg.Name,
		ServiceVersion: version.Get().String(),
		Environment:    rt.cfg.Environment,
		Endpoint:       t.Endpoint,
		Insecure:       t.Insecure,
		Interval:       t.MetricsInterval,
	})
	if err != nil {
		return err
	}
	rt.closers = append(rt.closers, bootstrap.NewComponent("meter", nil, mp.Shutdown))

	rt.metrics, err = observability.NewMetrics(observability.Meter(rt.cfg.Name))
	return err
}

func (rt *runtime) openStore(ctx context.Context) error {
	log := rt.log.WithComponent("store")
	switch rt.cfg.Store.Driver {
	case config.StoreSQLite:
		s, err := sqlite.Open(ctx, rt.cfg.Store.SQLite, log)
		if err != nil {
			return err
		}
		rt.backend = s
		rt.checkers = append(rt.checkers, s)
		rt.closers = append(rt.closers, bootstrap.Closer("sqlite", s.Close))
	case config.StoreRedis:
		s, err := redis.New(ctx, rt.cfg.Store.Redis, log)
		if err != nil {
			return err
		}
		rt.backend = s
		rt.checkers = append(rt.checkers, s)
		rt.closers = append(rt.closers, bootstrap.Closer("redis", s.Close))
	default:
		rt.backend = host.NewMemoryBackend()
	}
	log.Info("Workspace store ready", logger.Fields("driver", rt.cfg.Store.Driver))
	return nil
}

// abort closes what newRuntime opened before it failed.
func (rt *runtime) abort(ctx context.Context) {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i].Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", rt.closers[i].Name(), err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		rt.log.Warn("Cleanup after failed startup", logger.ErrorFields("abort", err))
	}
}

// loadCatalog loads the catalog from url, or from catalog.url when url is
// empty.
func (rt *runtime) loadCatalog(ctx context.Context, url string) error {
	if url == "" {
		url = rt.cfg.Catalog.URL
	}
	if url == "" {
		return fmt.Errorf("no catalog URL: pass --url or set catalog.url")
	}
	_, err := rt.ext.LoadCatalog(ctx, url)
	return err
}
