// Package app wires the platform core into a single application context.
// One context is constructed at startup and passed by reference to every
// collaborator; tests get isolation by constructing fresh instances.
package app

import (
	"log/slog"

	"tasklane/internal/event"
	eventmw "tasklane/internal/event/middleware"
	flagservice "tasklane/internal/flag/service"
	"tasklane/internal/flag/store/override"
	"tasklane/internal/module/loader"
	"tasklane/internal/module/registry"
	"tasklane/internal/platform/config"
	"tasklane/internal/platform/metrics"
)

// App is the application context for the extensibility substrate. The three
// subsystems never call one another; they are composed here and by the
// surrounding application only.
type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	Bus      *event.Bus
	Registry *registry.Registry
	Loader   *loader.Loader
	Flags    *flagservice.Service
}

// New constructs the application context with the standard middleware chain.
// A nil override store falls back to the in-memory one.
func New(cfg config.Config, logger *slog.Logger, m *metrics.Metrics, overrides flagservice.OverrideStore) (*App, error) {
	bus := event.New(
		event.WithLogger(logger),
		event.WithHandlerTimeout(cfg.HandlerTimeout),
		event.WithMaxConcurrent(cfg.MaxConcurrentHandlers),
	)
	// Correlation runs first so every later hook sees stamped metadata.
	bus.Use(eventmw.NewCorrelation())
	bus.Use(eventmw.NewTracing())
	bus.Use(eventmw.NewLogging(logger))
	bus.Use(eventmw.NewMetrics(m))

	reg := registry.New(
		registry.WithLogger(logger),
		registry.WithMetrics(m),
	)
	ldr := loader.New(reg, loader.WithLogger(logger))

	if overrides == nil {
		overrides = override.NewInMemoryStore()
	}
	flags, err := flagservice.New(overrides,
		flagservice.WithLogger(logger),
		flagservice.WithMetrics(m),
	)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:   cfg,
		Logger:   logger,
		Metrics:  m,
		Bus:      bus,
		Registry: reg,
		Loader:   ldr,
		Flags:    flags,
	}, nil
}
