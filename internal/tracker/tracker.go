// Package tracker drives blade sampling and contact classification once per
// tick.
package tracker

import (
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/time/rate"

	"github.com/zeusync/bladeguard/internal/config"
	"github.com/zeusync/bladeguard/internal/core/events/bus"
	"github.com/zeusync/bladeguard/internal/core/observability/log"
	"github.com/zeusync/bladeguard/internal/core/systems"
	"github.com/zeusync/bladeguard/internal/core/systems/blade"
	"github.com/zeusync/bladeguard/internal/core/systems/contact"
)

// EventEquipmentChanged is published when either hand's weapon identity
// changes.
const EventEquipmentChanged = "tracker.equipment_changed"

var _ systems.System = (*Tracker)(nil)

// Tracker owns both blade geometries and the contact machine. It is not safe
// for concurrent use.
type Tracker struct {
	cfg     config.Config
	sampler *blade.Sampler
	machine *contact.Machine
	events  bus.EventBus
	log     log.Log
	diag    *rate.Limiter
	now     func() time.Time

	hands    [2]blade.Geometry
	identity [2]uint64
	metrics  systems.Metrics
}

// Option customizes a Tracker.
type Option func(*Tracker)

// WithClock replaces the wall clock used for execution metrics.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

func New(cfg config.Config, observer contact.Observer, actions contact.Actions, events bus.EventBus, logger log.Log, opts ...Option) *Tracker {
	if logger == nil {
		logger = log.NewNop()
	}
	t := &Tracker{
		cfg:     cfg,
		sampler: blade.NewSampler(),
		machine: contact.NewMachine(cfg, observer, actions, events, logger),
		events:  events,
		log:     logger.With(log.String("system", "tracker")),
		diag:    cfg.Log.Diagnostics.Limiter(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) Name() string { return "blade-tracker" }

// Update samples both hands and runs one contact evaluation. The boolean is
// false when the pair could not be classified this tick.
func (t *Tracker) Update(f Frame) (blade.Result, bool) {
	start := t.now()

	if changed := t.refreshIdentity(f); changed || f.EquipmentChanged {
		t.hands[config.LeftHand].Clear()
		t.hands[config.RightHand].Clear()
		t.machine.EquipmentChanged()
		t.publishEquipmentChange()
	}

	offHand := t.cfg.Engine.OffHand
	t.sample(config.LeftHand, f.Left, f.DeltaTime)
	t.sample(config.RightHand, f.Right, f.DeltaTime)
	grabbed := offHandGrab(offHand, f) != nil

	res, ok := t.machine.Update(&t.hands[config.LeftHand], &t.hands[config.RightHand], contact.Inputs{
		CloseCombat:     f.CloseCombat,
		TriggerHeld:     f.TriggerHeld,
		OffHandCooldown: f.OffHandCooldown,
		OffHandGrabbed:  grabbed,
		Heading:         f.Heading,
	}, f.DeltaTime)

	if ok && t.diag.Allow() {
		t.log.Debug("blade distance",
			log.Float64("distance", res.ClosestDistance),
			log.Float64("segment_distance", res.SegmentDistance),
			log.Float64("relative_velocity", res.RelativeVelocity),
			log.String("phase", t.machine.State().Phase().String()),
			log.Bool("in_contact", t.machine.State().InContact()),
		)
	}

	end := t.now()
	t.metrics.Record(end, end.Sub(start), ok)
	return res, ok
}

// BladeGeometry returns a copy of the hand's current blade.
func (t *Tracker) BladeGeometry(hand config.Hand) blade.Geometry {
	if hand != config.LeftHand && hand != config.RightHand {
		return blade.Geometry{}
	}
	return t.hands[hand]
}

// State exposes the contact machine's memory.
func (t *Tracker) State() contact.State { return t.machine.State() }

// Episode is the id of the contact in progress, empty while separated.
func (t *Tracker) Episode() string { return t.machine.Episode() }

func (t *Tracker) GetMetrics() systems.Metrics { return t.metrics }

// Reset forgets every blade and contact; the next Update is a cold start.
func (t *Tracker) Reset() {
	t.hands = [2]blade.Geometry{}
	t.identity = [2]uint64{}
	t.machine.Reset()
}

func (t *Tracker) sample(hand config.Hand, in HandInput, dt float64) {
	g := &t.hands[hand]
	switch {
	case in.Equipped && in.Node != nil:
		t.sampler.Sample(g, blade.SourceFrom(*in.Node, in.Reach), dt)
	case in.Equipped:
		t.sampler.Sample(g, blade.Source{}, dt)
	case in.Grabbed != nil && hand == t.cfg.Engine.OffHand:
		t.sampler.Sample(g, blade.SourceFrom(in.Grabbed.Transform, in.Grabbed.Reach), dt)
	default:
		g.Clear()
	}
}

// refreshIdentity fingerprints each hand's equipped item and reports whether
// either changed since the previous tick.
func (t *Tracker) refreshIdentity(f Frame) bool {
	next := [2]uint64{t.fingerprint(config.LeftHand, f.Left), t.fingerprint(config.RightHand, f.Right)}
	changed := next != t.identity
	t.identity = next
	return changed
}

func (t *Tracker) publishEquipmentChange() {
	t.log.Info("equipment changed, grace period restarted", log.Int("grace_ticks", t.cfg.Blade.EquipGraceTicks))
	if t.events == nil {
		return
	}
	ev := bus.NewEvent(EventEquipmentChanged, "tracker", map[string]any{
		"left":  t.identity[config.LeftHand],
		"right": t.identity[config.RightHand],
	}, 0, nil)
	if err := t.events.Publish(ev); err != nil {
		t.log.Warn("equipment event handler failed", log.Error(err))
	}
}

// fingerprint identifies what a hand holds: an equipped item, or a grabbed
// body when the hand is the off-hand. Swapping one grabbed body for another
// counts as an identity change like any re-equip.
func (t *Tracker) fingerprint(hand config.Hand, in HandInput) uint64 {
	switch {
	case in.Equipped:
		return xxhash.Sum64String("equipped:" + in.ItemID)
	case in.Grabbed != nil && hand == t.cfg.Engine.OffHand:
		return xxhash.Sum64String("grabbed:" + in.Grabbed.ItemID)
	default:
		return 0
	}
}

func offHandGrab(hand config.Hand, f Frame) *Body {
	in := f.Left
	if hand == config.RightHand {
		in = f.Right
	}
	if in.Equipped {
		return nil
	}
	return in.Grabbed
}
