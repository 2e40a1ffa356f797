package contact

import (
	"github.com/zeusync/bladeguard/internal/config"
	"github.com/zeusync/bladeguard/internal/core/systems/blade"
)

// Observer receives edge-triggered contact notifications. Calls happen
// synchronously inside the tick and must return quickly.
type Observer interface {
	OnCollisionStart(result blade.Result)
	OnCollisionImminent(result blade.Result)
}

// Actions are the fire-and-forget requests the machine issues to the host.
type Actions interface {
	RequestForceUnequipAndGrab(hand config.Hand)
	RequestStartBlocking()
	RequestStopBlocking()
}

type NopObserver struct{}

func (NopObserver) OnCollisionStart(blade.Result)    {}
func (NopObserver) OnCollisionImminent(blade.Result) {}

type NopActions struct{}

func (NopActions) RequestForceUnequipAndGrab(config.Hand) {}
func (NopActions) RequestStartBlocking()                  {}
func (NopActions) RequestStopBlocking()                   {}
