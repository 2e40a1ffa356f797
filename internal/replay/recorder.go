package replay

import (
	"github.com/zeusync/bladeguard/internal/config"
	"github.com/zeusync/bladeguard/internal/core/systems/blade"
)

// Call kinds recorded during a replay.
const (
	CallCollisionStart = "collision_start"
	CallImminent       = "collision_imminent"
	CallUnequip        = "force_unequip"
	CallStartBlocking  = "start_blocking"
	CallStopBlocking   = "stop_blocking"
)

// Call is one observer or action invocation.
type Call struct {
	Tick     int     `json:"tick" yaml:"tick"`
	Kind     string  `json:"kind" yaml:"kind"`
	Hand     string  `json:"hand,omitempty" yaml:"hand,omitempty"`
	Distance float64 `json:"distance" yaml:"distance"`
}

// recorder captures tracker callbacks, stamped with the tick being replayed.
type recorder struct {
	tick     int
	distance float64
	calls    []Call
}

func (r *recorder) add(kind, hand string, distance float64) {
	r.calls = append(r.calls, Call{Tick: r.tick, Kind: kind, Hand: hand, Distance: distance})
}

func (r *recorder) OnCollisionStart(res blade.Result) {
	r.distance = res.ClosestDistance
	r.add(CallCollisionStart, "", res.ClosestDistance)
}

func (r *recorder) OnCollisionImminent(res blade.Result) {
	r.distance = res.ClosestDistance
	r.add(CallImminent, "", res.ClosestDistance)
}

func (r *recorder) RequestForceUnequipAndGrab(h config.Hand) { r.add(CallUnequip, h.String(), r.distance) }
func (r *recorder) RequestStartBlocking()                    { r.add(CallStartBlocking, "", r.distance) }
func (r *recorder) RequestStopBlocking()                     { r.add(CallStopBlocking, "", r.distance) }
