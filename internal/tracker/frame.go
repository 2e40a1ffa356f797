package tracker

import (
	"github.com/zeusync/bladeguard/internal/core/systems/physics"
)

// Body is a free-floating weapon the off-hand holds through a grab.
type Body struct {
	Transform physics.Transform
	Reach     float64
	ItemID    string
}

// HandInput is what the host knows about one hand on this tick.
type HandInput struct {
	Equipped bool
	// ItemID identifies the equipped weapon. A change is treated as an
	// equipment change.
	ItemID string
	Reach  float64
	// Node is the weapon's world transform; nil when the host could not
	// resolve it this tick.
	Node *physics.Transform
	// Grabbed is set when the hand holds a grabbed weapon instead of an
	// equipped one.
	Grabbed *Body
}

// Frame is the complete per-tick input.
type Frame struct {
	DeltaTime        float64
	Left             HandInput
	Right            HandInput
	EquipmentChanged bool
	CloseCombat      bool
	TriggerHeld      bool
	OffHandCooldown  bool
	Heading          float64
}
