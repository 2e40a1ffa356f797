// Package injector assembles the engine from a configuration.
package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/bladeguard/internal/config"
	"github.com/zeusync/bladeguard/internal/core/events/bus"
	"github.com/zeusync/bladeguard/internal/core/observability/log"
	"github.com/zeusync/bladeguard/internal/core/systems/contact"
	"github.com/zeusync/bladeguard/internal/replay"
	"github.com/zeusync/bladeguard/internal/server"
	"github.com/zeusync/bladeguard/internal/tracker"
)

// App bundles the long-lived services of the simulator.
type App struct {
	Log         log.Log
	Events      bus.EventBus
	Runner      *replay.Runner
	Diagnostics *server.DiagnosticsServer
}

func NewApp(logger log.Log, events bus.EventBus, runner *replay.Runner, diagnostics *server.DiagnosticsServer) *App {
	return &App{Log: logger, Events: events, Runner: runner, Diagnostics: diagnostics}
}

// ProvideLogger builds the zap-backed logger described by cfg.Log.
func ProvideLogger(cfg config.Config) (log.Log, error) {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	encoding := cfg.Log.Encoding
	if encoding == "" {
		encoding = "json"
	}
	logger, err := log.Build(level, log.WithEncoding(encoding), log.WithOutputPaths(cfg.Log.OutputPaths...))
	if err != nil {
		return nil, err
	}
	return logger, nil
}

func ProvideEventBus() bus.EventBus {
	return bus.New()
}

// ProvideTracker wires a tracker without functional options.
func ProvideTracker(cfg config.Config, observer contact.Observer, actions contact.Actions, events bus.EventBus, logger log.Log) *tracker.Tracker {
	return tracker.New(cfg, observer, actions, events, logger)
}

var CoreSet = wire.NewSet(
	ProvideLogger,
	ProvideEventBus,
)

var AppSet = wire.NewSet(
	CoreSet,
	replay.NewRunner,
	server.NewDiagnosticsServerWithConfig,
	NewApp,
)

var TrackerSet = wire.NewSet(
	CoreSet,
	ProvideTracker,
)
