package contact

import (
	"github.com/zeusync/bladeguard/internal/core/systems/blade"
)

// Event types published on the bus.
const (
	EventCollisionStart    = "contact.collision_start"
	EventImminent          = "contact.imminent"
	EventUnequipRequested  = "contact.unequip_requested"
	EventUnequipSuppressed = "contact.unequip_suppressed"
	EventGrindStart        = "contact.grind_start"
	EventGrindEnd          = "contact.grind_end"
	EventSeparated         = "contact.separated"
	EventBlockStart        = "pose.block_start"
	EventBlockEnd          = "pose.block_end"
)

// EventSource is the Source of every event the machine publishes.
const EventSource = "contact"

// Reasons an unequip request was withheld.
const (
	ReasonGracePeriod     = "grace_period"
	ReasonRecentGrind     = "recently_grinding"
	ReasonOffHandGrabbed  = "off_hand_grabbed"
	ReasonOffHandCooldown = "off_hand_cooldown"
	ReasonCloseCombat     = "close_combat"
	ReasonTriggerHeld     = "trigger_held"
)

// Payload is the Data of contact events.
type Payload struct {
	Episode string       `json:"episode"`
	Phase   string       `json:"phase"`
	Hand    string       `json:"hand,omitempty"`
	Reason  string       `json:"reason,omitempty"`
	Result  blade.Result `json:"result"`
}
