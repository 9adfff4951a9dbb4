// Package app assembles the management server from configuration: the
// primary registry, virtual providers, router, notification broker and the
// HTTP host.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/zjrosen/mxview/internal/api"
	"github.com/zjrosen/mxview/internal/config"
	"github.com/zjrosen/mxview/internal/domain/objname"
	"github.com/zjrosen/mxview/internal/filter"
	"github.com/zjrosen/mxview/internal/flags"
	"github.com/zjrosen/mxview/internal/log"
	"github.com/zjrosen/mxview/internal/metrics"
	"github.com/zjrosen/mxview/internal/model"
	"github.com/zjrosen/mxview/internal/notify"
	"github.com/zjrosen/mxview/internal/provider/alphabet"
	"github.com/zjrosen/mxview/internal/provider/fstree"
	"github.com/zjrosen/mxview/internal/pubsub"
	"github.com/zjrosen/mxview/internal/registry"
	"github.com/zjrosen/mxview/internal/router"
	"github.com/zjrosen/mxview/internal/tracing"
	"github.com/zjrosen/mxview/internal/view"
)

// ErrAlreadyStarted is returned by Start on a running App.
var ErrAlreadyStarted = errors.New("app already started")

// App owns every long-lived component.
type App struct {
	cfg config.Config

	gatherer *prometheus.Registry
	metrics  *metrics.Metrics
	broker   *pubsub.Broker[notify.Notification]
	sink     *notify.BrokerSink
	primary  *registry.Registry
	router   *router.Router
	compiler *filter.Compiler
	flags    *flags.Registry
	tracing  *tracing.Provider

	mu      sync.Mutex
	started bool
}

// Build validates cfg and wires the components. Nothing is started.
func Build(cfg config.Config, version string) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	delegateName, err := objname.Parse(cfg.Primary.DelegateName)
	if err != nil {
		return nil, fmt.Errorf("delegate name: %w", err)
	}

	gatherer := prometheus.NewRegistry()
	gatherer.MustRegister(collectors.NewGoCollector())
	m := metrics.New(gatherer)

	broker := pubsub.NewBrokerWithBuffer[notify.Notification](cfg.Notifications.BufferSize)
	sink := notify.NewBrokerSink(broker, delegateName, m)

	primary := registry.New(cfg.Primary.Domain, sink)
	if _, err := primary.Register(delegateName, "", registry.NewDelegate(uuid.NewString(), version)); err != nil {
		return nil, fmt.Errorf("registering delegate: %w", err)
	}
	runtimeName := objname.MustNew(cfg.Primary.Domain, map[string]string{"type": "Runtime"})
	if _, err := primary.Register(runtimeName, "", registry.NewRuntime()); err != nil {
		return nil, fmt.Errorf("registering runtime: %w", err)
	}

	virtual, err := virtualServers(cfg.Providers, m)
	if err != nil {
		return nil, err
	}

	r, err := router.New(primary, virtual, router.WithMetrics(m))
	if err != nil {
		return nil, fmt.Errorf("creating router: %w", err)
	}

	tp, err := tracing.NewProvider(tracingConfig(cfg.Tracing))
	if err != nil {
		return nil, fmt.Errorf("creating tracer: %w", err)
	}

	a := &App{
		cfg:      cfg,
		gatherer: gatherer,
		metrics:  m,
		broker:   broker,
		sink:     sink,
		primary:  primary,
		router:   r,
		compiler: filter.NewCompiler(cfg.Filter.CacheTTL),
		flags:    flags.New(cfg.Flags),
		tracing:  tp,
	}

	log.Info(log.CatConfig, "app built",
		"primary", cfg.Primary.Domain,
		"virtual", len(virtual),
		"tracing", tp.Enabled(),
		"flags", a.flags.EnabledNames())
	return a, nil
}

func virtualServers(cfg config.ProvidersConfig, m *metrics.Metrics) (map[string]model.Server, error) {
	virtual := make(map[string]model.Server)

	if cfg.Alphabet.Enabled {
		virtual[cfg.Alphabet.Domain] = view.New(alphabet.New(cfg.Alphabet.Domain, m))
	}

	if cfg.Files.Enabled {
		root := cfg.Files.Root
		if root == "" {
			wd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("resolving files root: %w", err)
			}
			root = wd
		}
		virtual[cfg.Files.Domain] = view.New(fstree.New(fstree.Config{
			Domain:          cfg.Files.Domain,
			Root:            root,
			MaxDepth:        cfg.Files.MaxDepth,
			RefreshInterval: cfg.Files.RefreshInterval,
			ResolveTimeout:  cfg.Files.ResolveTimeout,
			Debounce:        cfg.Files.Debounce,
			Watch:           cfg.Files.Watch,
		}, m))
	}

	return virtual, nil
}

func tracingConfig(c config.TracingConfig) tracing.Config {
	path := c.FilePath
	if path == "" {
		path = config.DefaultTracesFilePath()
	}
	return tracing.Config{
		Enabled:      c.Enabled,
		Exporter:     c.Exporter,
		FilePath:     path,
		OTLPEndpoint: c.OTLPEndpoint,
		SampleRate:   c.SampleRate,
		ServiceName:  c.ServiceName,
	}
}

// Server returns the composite server.
func (a *App) Server() *router.Router { return a.router }

// Broker returns the notification broker.
func (a *App) Broker() *pubsub.Broker[notify.Notification] { return a.broker }

// Compiler returns the filter compiler.
func (a *App) Compiler() *filter.Compiler { return a.compiler }

// Flags returns the feature flags.
func (a *App) Flags() *flags.Registry { return a.flags }

// Gatherer returns the Prometheus registry the metrics are recorded on.
func (a *App) Gatherer() prometheus.Gatherer { return a.gatherer }

// Config returns the configuration the app was built from.
func (a *App) Config() config.Config { return a.cfg }

// HandlerConfig returns the HTTP handler wiring for this app.
func (a *App) HandlerConfig() api.HandlerConfig {
	return api.HandlerConfig{
		Server:   a.router,
		Compiler: a.compiler,
		Events:   a.broker,
		Flags:    a.flags,
		Gatherer: a.gatherer,
		Tracer:   a.tracing.Tracer(),
	}
}

// Start starts every virtual provider. Their initial contents are announced
// on the broker.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.started {
		return ErrAlreadyStarted
	}
	if err := a.router.Start(ctx, a.sink); err != nil {
		return fmt.Errorf("starting providers: %w", err)
	}
	a.started = true
	log.Info(log.CatConfig, "app started", "resources", a.router.Count())
	return nil
}

// Stop stops the providers, flushes traces and closes the broker. It is safe
// to call on an App that was never started.
func (a *App) Stop(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	if a.started {
		if err := a.router.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stopping providers: %w", err))
		}
		a.started = false
	}
	if err := a.tracing.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutting down tracing: %w", err))
	}
	a.broker.Close()

	log.Info(log.CatConfig, "app stopped", "errors", len(errs))
	return errors.Join(errs...)
}
