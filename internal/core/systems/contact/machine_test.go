package contact

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/bladeguard/internal/config"
	"github.com/zeusync/bladeguard/internal/core/events/bus"
	"github.com/zeusync/bladeguard/internal/core/systems/blade"
)

const dt = 1.0 / 90

type recorder struct {
	starts      int
	imminents   int
	unequips    []config.Hand
	blockStarts int
	blockStops  int
}

func (r *recorder) OnCollisionStart(blade.Result)    { r.starts++ }
func (r *recorder) OnCollisionImminent(blade.Result) { r.imminents++ }

func (r *recorder) RequestForceUnequipAndGrab(h config.Hand) { r.unequips = append(r.unequips, h) }
func (r *recorder) RequestStartBlocking()                    { r.blockStarts++ }
func (r *recorder) RequestStopBlocking()                     { r.blockStops++ }

func segment(base, dir mgl64.Vec3, length float64, vel mgl64.Vec3) *blade.Geometry {
	tip := base.Add(dir.Normalize().Mul(length))
	return &blade.Geometry{
		Base:         base,
		Tip:          tip,
		BaseVelocity: vel,
		TipVelocity:  vel,
		Length:       length,
		Valid:        true,
	}
}

var up = mgl64.Vec3{0, 0, 1}

func farPair() (*blade.Geometry, *blade.Geometry) {
	return segment(mgl64.Vec3{10, 0, 0}, up, 70, mgl64.Vec3{}),
		segment(mgl64.Vec3{80, 0, 0}, up, 70, mgl64.Vec3{})
}

func imminentPair() (*blade.Geometry, *blade.Geometry) {
	return segment(mgl64.Vec3{10, 0, 0}, up, 70, mgl64.Vec3{300, 0, 0}),
		segment(mgl64.Vec3{30, 0, 0}, up, 70, mgl64.Vec3{})
}

func touchingPair() (*blade.Geometry, *blade.Geometry) {
	return segment(mgl64.Vec3{10, 0, 0}, up, 70, mgl64.Vec3{}),
		segment(mgl64.Vec3{12, 0, 0}, up, 70, mgl64.Vec3{})
}

// crossedPair forms an X in front of a player facing +Y.
func crossedPair() (*blade.Geometry, *blade.Geometry) {
	return segment(mgl64.Vec3{0, 10, 100}, mgl64.Vec3{0.6, 0, 0.8}, 70, mgl64.Vec3{}),
		segment(mgl64.Vec3{42, 10, 100}, mgl64.Vec3{-0.6, 0, 0.8}, 70, mgl64.Vec3{})
}

type harness struct {
	m      *Machine
	rec    *recorder
	events []bus.Event
}

func newHarness(t *testing.T, mutate func(*config.Config)) *harness {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	h := &harness{rec: &recorder{}}
	eb := bus.New()
	_, err := eb.Subscribe(bus.AnyEvent, func(e bus.Event) error {
		h.events = append(h.events, e)
		return nil
	})
	require.NoError(t, err)
	h.m = NewMachine(cfg, h.rec, h.rec, eb, nil)
	return h
}

// settle runs enough separated ticks to leave the equip grace period.
func (h *harness) settle() {
	l, r := farPair()
	for i := 0; i < 25; i++ {
		h.m.Update(l, r, Inputs{}, dt)
	}
}

func (h *harness) types() []string {
	out := make([]string, 0, len(h.events))
	for _, e := range h.events {
		out = append(out, e.Type())
	}
	return out
}

func (h *harness) last(eventType string) (Payload, bool) {
	for i := len(h.events) - 1; i >= 0; i-- {
		if h.events[i].Type() == eventType {
			return h.events[i].Data().(Payload), true
		}
	}
	return Payload{}, false
}

func TestImminentRequestsUnequipOnce(t *testing.T) {
	h := newHarness(t, nil)
	h.settle()

	l, r := imminentPair()
	for i := 0; i < 3; i++ {
		res, ok := h.m.Update(l, r, Inputs{}, dt)
		require.True(t, ok)
		require.True(t, res.Imminent)
	}

	assert.Equal(t, 1, h.rec.imminents)
	assert.Equal(t, []config.Hand{config.LeftHand}, h.rec.unequips)
	assert.Equal(t, []string{EventImminent, EventUnequipRequested}, h.types())
	p, ok := h.last(EventUnequipRequested)
	require.True(t, ok)
	assert.Equal(t, "left", p.Hand)
	assert.NotEmpty(t, p.Episode)
	assert.Equal(t, PhaseImminent, h.m.State().Phase())
	require.NotNil(t, h.m.State().Last)
}

func TestUnequipTargetsConfiguredOffHand(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Engine.OffHand = config.RightHand })
	h.settle()
	l, r := imminentPair()
	h.m.Update(l, r, Inputs{}, dt)
	assert.Equal(t, []config.Hand{config.RightHand}, h.rec.unequips)
}

func TestGracePeriodSuppressesUnequip(t *testing.T) {
	h := newHarness(t, nil)
	grace := config.Default().Blade.EquipGraceTicks
	far1, far2 := farPair()
	near1, near2 := imminentPair()

	h.m.EquipmentChanged()
	for tick := 1; tick <= grace; tick++ {
		// alternate so every imminent tick is a fresh edge
		if tick%2 == 0 {
			h.m.Update(near1, near2, Inputs{}, dt)
		} else {
			h.m.Update(far1, far2, Inputs{}, dt)
		}
	}
	assert.Empty(t, h.rec.unequips)
	assert.Equal(t, grace/2, h.rec.imminents, "callbacks still fire during grace")
	p, ok := h.last(EventUnequipSuppressed)
	require.True(t, ok)
	assert.Equal(t, ReasonGracePeriod, p.Reason)

	h.m.Update(far1, far2, Inputs{}, dt)
	h.m.Update(near1, near2, Inputs{}, dt)
	assert.Len(t, h.rec.unequips, 1)
}

func TestSuppressionRules(t *testing.T) {
	tests := []struct {
		name   string
		in     Inputs
		reason string
	}{
		{"close combat", Inputs{CloseCombat: true}, ReasonCloseCombat},
		{"trigger held", Inputs{TriggerHeld: true}, ReasonTriggerHeld},
		{"off-hand grabbed", Inputs{OffHandGrabbed: true}, ReasonOffHandGrabbed},
		{"off-hand cooldown", Inputs{OffHandCooldown: true}, ReasonOffHandCooldown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			h.settle()
			l, r := imminentPair()
			h.m.Update(l, r, tt.in, dt)

			assert.Equal(t, 1, h.rec.imminents)
			assert.Empty(t, h.rec.unequips)
			p, ok := h.last(EventUnequipSuppressed)
			require.True(t, ok)
			assert.Equal(t, tt.reason, p.Reason)
		})
	}
}

func TestCooldownAllowsBackupBand(t *testing.T) {
	h := newHarness(t, nil)
	h.settle()
	l := segment(mgl64.Vec3{10, 0, 0}, up, 70, mgl64.Vec3{60, 0, 0})
	r := segment(mgl64.Vec3{38, 0, 0}, up, 70, mgl64.Vec3{})

	res, _ := h.m.Update(l, r, Inputs{OffHandCooldown: true}, dt)
	require.True(t, res.WithinBackupOnly)
	assert.Len(t, h.rec.unequips, 1)
}

func TestCollisionStartIsEdgeTriggered(t *testing.T) {
	h := newHarness(t, nil)
	h.settle()
	l, r := touchingPair()
	for i := 0; i < 5; i++ {
		res, ok := h.m.Update(l, r, Inputs{}, dt)
		require.True(t, ok)
		require.True(t, res.Colliding)
		require.False(t, res.Imminent)
	}
	assert.Equal(t, 1, h.rec.starts)
	assert.Empty(t, h.rec.unequips)
	assert.True(t, h.m.State().InContact())

	far1, far2 := farPair()
	h.m.Update(far1, far2, Inputs{}, dt)
	assert.False(t, h.m.State().InContact())
	assert.Equal(t, PhaseSeparated, h.m.State().Phase())
	assert.Nil(t, h.m.State().Last)
	assert.Equal(t, 0.0, h.m.State().GrindDuration())
	assert.Empty(t, h.m.Episode())
	assert.Equal(t, []string{EventCollisionStart, EventSeparated}, h.types())
}

func TestGrindingThenImminentDoesNotUnequip(t *testing.T) {
	h := newHarness(t, nil)
	h.settle()
	l, r := touchingPair()
	for i := 0; i < 30; i++ {
		h.m.Update(l, r, Inputs{}, dt)
	}
	require.Equal(t, PhaseGrinding, h.m.State().Phase())
	st := h.m.State()
	assert.Greater(t, st.GrindStartTime(), 0.0)
	assert.GreaterOrEqual(t, st.GrindDuration(), config.DefaultThresholds().GrindMinDuration)

	near1, near2 := imminentPair()
	res, _ := h.m.Update(near1, near2, Inputs{}, dt)
	require.True(t, res.Imminent)
	assert.Empty(t, h.rec.unequips)
	assert.Zero(t, h.rec.imminents)
	assert.Contains(t, h.types(), EventGrindStart)
	assert.Contains(t, h.types(), EventGrindEnd)
}

func TestBlockStanceStartsAndStops(t *testing.T) {
	h := newHarness(t, nil)
	h.settle()
	l, r := crossedPair()

	res, ok := h.m.Update(l, r, Inputs{}, dt)
	require.True(t, ok)
	require.True(t, res.Colliding)
	assert.Equal(t, 1, h.rec.blockStarts)
	assert.True(t, h.m.State().InBlockPose)

	h.m.Update(l, r, Inputs{}, dt)
	assert.Equal(t, 1, h.rec.blockStarts)

	far1, far2 := farPair()
	h.m.Update(far1, far2, Inputs{}, dt)
	assert.Equal(t, 1, h.rec.blockStops)
	assert.False(t, h.m.State().InBlockPose)
	assert.Contains(t, h.types(), EventBlockEnd)
}

func TestBlockStanceHeldUntilFullSeparation(t *testing.T) {
	h := newHarness(t, nil)
	h.settle()
	l, r := crossedPair()
	h.m.Update(l, r, Inputs{}, dt)
	require.Equal(t, 1, h.rec.blockStarts)

	near1, near2 := imminentPair()
	res, ok := h.m.Update(near1, near2, Inputs{}, dt)
	require.True(t, ok)
	require.True(t, res.Imminent)
	assert.Zero(t, h.rec.blockStops)
	assert.True(t, h.m.State().InBlockPose)

	far1, far2 := farPair()
	h.m.Update(far1, far2, Inputs{}, dt)
	assert.Equal(t, 1, h.rec.blockStops)
	assert.False(t, h.m.State().InBlockPose)
}

func TestBlockStanceEndsWhenPlayerTurnsAway(t *testing.T) {
	h := newHarness(t, nil)
	h.settle()
	l, r := crossedPair()
	h.m.Update(l, r, Inputs{}, dt)
	require.Equal(t, 1, h.rec.blockStarts)

	// same blades, but the player now faces +X: the right blade leans back
	h.m.Update(l, r, Inputs{Heading: 1.5707963267948966}, dt)
	assert.Equal(t, 1, h.rec.blockStops)
}

func TestInvalidGeometryDropsContact(t *testing.T) {
	h := newHarness(t, nil)
	h.settle()
	l, r := crossedPair()
	h.m.Update(l, r, Inputs{}, dt)
	require.True(t, h.m.State().InBlockPose)

	var missing blade.Geometry
	res, ok := h.m.Update(l, &missing, Inputs{}, dt)
	assert.False(t, ok)
	assert.Equal(t, blade.EmptyResult(), res)
	assert.Equal(t, 1, h.rec.blockStops)
	assert.Equal(t, PhaseSeparated, h.m.State().Phase())
	assert.Contains(t, h.types(), EventSeparated)
}

func TestEquipmentChangedResetsGrace(t *testing.T) {
	h := newHarness(t, nil)
	h.settle()
	assert.Greater(t, h.m.State().FramesSinceEquipmentChange, 20)

	h.m.EquipmentChanged()
	assert.Equal(t, 0, h.m.State().FramesSinceEquipmentChange)

	h.m.Reset()
	assert.Equal(t, State{}, h.m.State())
}
