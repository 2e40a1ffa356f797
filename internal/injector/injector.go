//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/bladeguard/internal/config"
	"github.com/zeusync/bladeguard/internal/core/systems/contact"
	"github.com/zeusync/bladeguard/internal/server"
	"github.com/zeusync/bladeguard/internal/tracker"
)

func InitializeApp(cfg config.Config, diagnostics server.Config) (*App, error) {
	wire.Build(AppSet)
	return nil, nil
}

func InitializeTracker(cfg config.Config, observer contact.Observer, actions contact.Actions) (*tracker.Tracker, error) {
	wire.Build(TrackerSet)
	return nil, nil
}
