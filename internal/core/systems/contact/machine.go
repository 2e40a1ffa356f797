// Package contact turns per-tick blade classifications into edge-triggered
// notifications and action requests.
package contact

import (
	"github.com/google/uuid"

	"github.com/zeusync/bladeguard/internal/config"
	"github.com/zeusync/bladeguard/internal/core/events/bus"
	"github.com/zeusync/bladeguard/internal/core/observability/log"
	"github.com/zeusync/bladeguard/internal/core/systems/blade"
)

// Inputs are the per-tick host flags the machine consults before asking for
// an unequip.
type Inputs struct {
	CloseCombat     bool
	TriggerHeld     bool
	OffHandCooldown bool
	OffHandGrabbed  bool
	// Heading is the player's facing in radians, used by the block stance.
	Heading float64
}

// Machine tracks contact between the two blades across ticks. It is owned by
// a single tick loop and is not safe for concurrent use.
type Machine struct {
	state      State
	classifier *blade.Classifier
	pose       *PoseClassifier
	observer   Observer
	actions    Actions
	events     bus.EventBus
	log        log.Log
	offHand    config.Hand
	graceTicks int
	episode    string
}

// NewMachine wires a machine. observer, actions and logger may be nil; events
// may be nil to disable publishing.
func NewMachine(cfg config.Config, observer Observer, actions Actions, events bus.EventBus, logger log.Log) *Machine {
	if observer == nil {
		observer = NopObserver{}
	}
	if actions == nil {
		actions = NopActions{}
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Machine{
		classifier: blade.NewClassifier(cfg.Blade, cfg.Engine.RaycastSamples),
		pose:       NewPoseClassifier(cfg.Pose),
		observer:   observer,
		actions:    actions,
		events:     events,
		log:        logger.With(log.String("system", "contact")),
		offHand:    cfg.Engine.OffHand,
		graceTicks: cfg.Blade.EquipGraceTicks,
	}
}

// State returns a snapshot of the machine's memory.
func (m *Machine) State() State { return m.state }

// Episode is the id shared by every event of the current contact, empty
// while separated.
func (m *Machine) Episode() string { return m.episode }

// EquipmentChanged restarts the grace period and drops any contact in
// progress.
func (m *Machine) EquipmentChanged() {
	m.abandon()
	m.state.FramesSinceEquipmentChange = 0
}

// Reset returns the machine to a cold start.
func (m *Machine) Reset() {
	m.abandon()
	m.state = State{}
}

// Update evaluates one tick. It reports false when either blade is missing or
// implausible, in which case the machine falls back to separated.
func (m *Machine) Update(left, right *blade.Geometry, in Inputs, dt float64) (blade.Result, bool) {
	st := &m.state
	st.FramesSinceEquipmentChange++
	st.Grind.Advance(dt)

	if !left.Plausible() || !right.Plausible() {
		m.abandon()
		return blade.EmptyResult(), false
	}

	res := m.classifier.Classify(left, right, &st.Grind)
	switch {
	case res.Colliding:
		m.onColliding(res, left, right, in)
	case res.Imminent:
		m.onImminent(res, in)
	default:
		m.onSeparated(res)
	}

	st.WasColliding = res.Colliding
	st.WasImminent = res.Imminent
	st.WasGrinding = res.Grinding
	return res, true
}

func (m *Machine) onColliding(res blade.Result, left, right *blade.Geometry, in Inputs) {
	st := &m.state
	st.Last = &res

	if !st.WasColliding {
		if !st.WasImminent {
			m.episode = uuid.NewString()
		}
		m.observer.OnCollisionStart(res)
		m.publish(EventCollisionStart, res, "")
		m.log.Info("blades collided", resultFields(res)...)
	}

	switch {
	case res.Grinding && !st.WasGrinding:
		m.publish(EventGrindStart, res, "")
		m.log.Info("blades grinding",
			log.Float64("started_at", st.GrindStartTime()),
			log.Float64("duration", res.GrindDuration))
	case !res.Grinding && st.WasGrinding:
		m.publish(EventGrindEnd, res, "")
	}

	m.updatePose(left, right, in.Heading, res)
}

func (m *Machine) onImminent(res blade.Result, in Inputs) {
	st := &m.state
	st.Last = &res

	if st.WasColliding {
		m.leaveContact(res)
		return
	}
	if st.WasImminent {
		return
	}

	m.episode = uuid.NewString()
	m.observer.OnCollisionImminent(res)
	m.publish(EventImminent, res, "")

	if reason := m.suppression(res, in); reason != "" {
		m.publish(EventUnequipSuppressed, res, reason)
		m.log.Debug("unequip suppressed", log.String("reason", reason), log.Float64("distance", res.ClosestDistance))
		return
	}

	m.actions.RequestForceUnequipAndGrab(m.offHand)
	m.publish(EventUnequipRequested, res, "")
	m.log.Info("collision imminent, unequipping off-hand", append(resultFields(res), log.String("hand", m.offHand.String()))...)
}

func (m *Machine) onSeparated(res blade.Result) {
	st := &m.state
	if st.WasColliding {
		m.leaveContact(res)
	}
	if st.WasColliding || st.WasImminent {
		m.publish(EventSeparated, res, "")
		m.log.Debug("blades separated", log.Float64("distance", res.ClosestDistance))
	}
	m.endBlock(res)
	st.Last = nil
	m.episode = ""
}

// suppression names the first rule that withholds the unequip request, or
// returns "" when the request should go out.
func (m *Machine) suppression(res blade.Result, in Inputs) string {
	st := &m.state
	switch {
	case st.FramesSinceEquipmentChange <= m.graceTicks:
		return ReasonGracePeriod
	case st.WasGrinding:
		return ReasonRecentGrind
	case in.OffHandGrabbed:
		return ReasonOffHandGrabbed
	case in.OffHandCooldown && !res.WithinBackupOnly:
		return ReasonOffHandCooldown
	case in.CloseCombat:
		return ReasonCloseCombat
	case in.TriggerHeld:
		return ReasonTriggerHeld
	default:
		return ""
	}
}

// leaveContact closes a grind in progress. A block stance outlives the
// contact and only ends once the blades fully separate.
func (m *Machine) leaveContact(res blade.Result) {
	if m.state.WasGrinding {
		m.publish(EventGrindEnd, res, "")
	}
}

func (m *Machine) updatePose(left, right *blade.Geometry, heading float64, res blade.Result) {
	reading := m.pose.Classify(left, right, heading)
	switch {
	case reading.Blocking && !m.state.InBlockPose:
		m.state.InBlockPose = true
		m.actions.RequestStartBlocking()
		m.publish(EventBlockStart, res, "")
		m.log.Info("block stance", log.Float64("angle", reading.Angle))
	case !reading.Blocking && m.state.InBlockPose:
		m.endBlock(res)
	}
}

func (m *Machine) endBlock(res blade.Result) {
	if !m.state.InBlockPose {
		return
	}
	m.state.InBlockPose = false
	m.actions.RequestStopBlocking()
	m.publish(EventBlockEnd, res, "")
}

// abandon drops to separated without a classification, e.g. when a blade
// disappears mid-contact.
func (m *Machine) abandon() {
	st := &m.state
	res := blade.EmptyResult()
	if st.WasColliding {
		m.leaveContact(res)
	}
	if st.WasColliding || st.WasImminent {
		m.publish(EventSeparated, res, "")
	}
	m.endBlock(res)
	st.clearContact()
	m.episode = ""
}

func (m *Machine) publish(eventType string, res blade.Result, reason string) {
	if m.events == nil {
		return
	}
	payload := Payload{
		Episode: m.episode,
		Phase:   m.phaseOf(res).String(),
		Reason:  reason,
		Result:  res,
	}
	if eventType == EventUnequipRequested || eventType == EventUnequipSuppressed {
		payload.Hand = m.offHand.String()
	}
	meta := map[string]any{"episode": m.episode}
	if err := m.events.Publish(bus.NewEvent(eventType, EventSource, payload, 0, meta)); err != nil {
		m.log.Warn("contact event handler failed", log.String("event", eventType), log.Error(err))
	}
}

func (m *Machine) phaseOf(res blade.Result) Phase {
	switch {
	case res.Grinding:
		return PhaseGrinding
	case res.Colliding:
		return PhaseColliding
	case res.Imminent:
		return PhaseImminent
	default:
		return PhaseSeparated
	}
}

func resultFields(res blade.Result) []log.Field {
	return []log.Field{
		log.Float64("distance", res.ClosestDistance),
		log.Int("hits", res.RaycastHits),
		log.Float64("closing_velocity", res.ClosingVelocity),
		log.Float64("ttc", res.TimeToCollision),
		log.Float64("scale", res.ScaleFactor),
	}
}
