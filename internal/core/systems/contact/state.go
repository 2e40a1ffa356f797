package contact

import (
	"github.com/zeusync/bladeguard/internal/core/systems/blade"
)

// Phase is the externally visible contact state.
type Phase uint8

const (
	PhaseSeparated Phase = iota
	PhaseImminent
	PhaseColliding
	PhaseGrinding
)

func (p Phase) String() string {
	switch p {
	case PhaseSeparated:
		return "separated"
	case PhaseImminent:
		return "imminent"
	case PhaseColliding:
		return "colliding"
	case PhaseGrinding:
		return "grinding"
	default:
		return "unknown"
	}
}

// State is what the machine remembers between ticks. The Was* flags hold
// the previous tick's classification while a tick is being evaluated.
type State struct {
	WasColliding bool
	WasImminent  bool
	WasGrinding  bool

	Grind blade.GrindTimer

	FramesSinceEquipmentChange int
	InBlockPose                bool

	// Last is the most recent colliding or imminent result, nil once the
	// blades separate.
	Last *blade.Result
}

// Phase derives the current phase from the flags.
func (s State) Phase() Phase {
	switch {
	case s.WasGrinding:
		return PhaseGrinding
	case s.WasColliding:
		return PhaseColliding
	case s.WasImminent:
		return PhaseImminent
	default:
		return PhaseSeparated
	}
}

// InContact reports whether the blades touched on the last tick.
func (s State) InContact() bool { return s.WasColliding }

// GrindStartTime and GrindDuration expose the grind timer in seconds.
func (s State) GrindStartTime() float64 { return s.Grind.StartTime() }

func (s State) GrindDuration() float64 { return s.Grind.Duration() }

// clearContact drops every contact flag but keeps the grace counter.
func (s *State) clearContact() {
	s.WasColliding = false
	s.WasImminent = false
	s.WasGrinding = false
	s.Grind.Stop()
	s.Last = nil
}
