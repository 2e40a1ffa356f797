package blade

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/bladeguard/internal/config"
	"github.com/zeusync/bladeguard/internal/core/systems/physics"
)

// segment builds a valid geometry from explicit endpoints and velocities.
func segment(base, tip, vel mgl64.Vec3) *Geometry {
	return &Geometry{
		Base:         base,
		Tip:          tip,
		BaseVelocity: vel,
		TipVelocity:  vel,
		Length:       tip.Sub(base).Len(),
		Valid:        true,
	}
}

func TestSamplerBuildsTipAlongBladeAxis(t *testing.T) {
	s := NewSampler()
	var g Geometry
	src := SourceFrom(physics.TransformFromDirection(mgl64.Vec3{10, 20, 30}, mgl64.Vec3{0, 0, 1}), 1.0)

	s.Sample(&g, src, 1.0/90)

	require.True(t, g.Valid)
	assert.True(t, g.Tip.ApproxEqualThreshold(mgl64.Vec3{10, 20, 100}, 1e-9), "tip %v", g.Tip)
	assert.InDelta(t, 70, g.Length, 1e-9)
	assert.Equal(t, mgl64.Vec3{}, g.BaseVelocity, "first sample has no velocity")
	assert.True(t, g.Plausible())
}

func TestSamplerVelocity(t *testing.T) {
	s := NewSampler()
	var g Geometry
	dir := mgl64.Vec3{0, 1, 0}
	s.Sample(&g, SourceFrom(physics.TransformFromDirection(mgl64.Vec3{10, 0, 0}, dir), 0.5), 0.1)
	s.Sample(&g, SourceFrom(physics.TransformFromDirection(mgl64.Vec3{20, 0, 0}, dir), 0.5), 0.1)

	assert.True(t, g.BaseVelocity.ApproxEqualThreshold(mgl64.Vec3{100, 0, 0}, 1e-9))
	assert.True(t, g.TipVelocity.ApproxEqualThreshold(mgl64.Vec3{100, 0, 0}, 1e-9))
	assert.Equal(t, mgl64.Vec3{10, 0, 0}, g.PrevBase)

	s.Sample(&g, SourceFrom(physics.TransformFromDirection(mgl64.Vec3{30, 0, 0}, dir), 0.5), 0)
	assert.Equal(t, mgl64.Vec3{}, g.BaseVelocity, "non-positive dt yields zero velocity")
}

func TestSamplerMissingSourceKeepsPositions(t *testing.T) {
	s := NewSampler()
	var g Geometry
	dir := mgl64.Vec3{0, 1, 0}
	s.Sample(&g, SourceFrom(physics.TransformFromDirection(mgl64.Vec3{10, 0, 0}, dir), 1), 0.1)
	before := g

	s.Sample(&g, Source{}, 0.1)
	assert.False(t, g.Valid)
	assert.Equal(t, before.Base, g.Base)
	assert.Equal(t, before.Tip, g.Tip)

	// the first sample after a gap has no previous sample to difference
	s.Sample(&g, SourceFrom(physics.TransformFromDirection(mgl64.Vec3{50, 0, 0}, dir), 1), 0.1)
	assert.True(t, g.Valid)
	assert.Equal(t, mgl64.Vec3{}, g.BaseVelocity)
}

func TestPlausible(t *testing.T) {
	g := segment(mgl64.Vec3{10, 10, 10}, mgl64.Vec3{10, 10, 80}, mgl64.Vec3{})
	assert.True(t, g.Plausible())

	atOrigin := segment(mgl64.Vec3{0.05, 0, 0}, mgl64.Vec3{0, 0, 70}, mgl64.Vec3{})
	assert.False(t, atOrigin.Plausible())

	short := segment(mgl64.Vec3{10, 10, 10}, mgl64.Vec3{10, 10, 10.5}, mgl64.Vec3{})
	assert.False(t, short.Plausible())

	g.Clear()
	assert.Equal(t, Geometry{}, *g)
	assert.False(t, g.Plausible())
}

func TestIntersectBladesCoincident(t *testing.T) {
	a := segment(mgl64.Vec3{10, 0, 0}, mgl64.Vec3{10, 0, 70}, mgl64.Vec3{})
	hits := IntersectBlades(nil, a, a, 4, 5)
	require.Len(t, hits, 5)
	for _, h := range hits {
		assert.Equal(t, 0.0, h.Distance)
	}
}

func TestIntersectBladesMaxDistance(t *testing.T) {
	a := segment(mgl64.Vec3{10, 0, 0}, mgl64.Vec3{10, 0, 70}, mgl64.Vec3{})
	b := segment(mgl64.Vec3{13, 0, 0}, mgl64.Vec3{13, 0, 70}, mgl64.Vec3{})

	hits := IntersectBlades(nil, a, b, 4, 5)
	require.Len(t, hits, 5)
	for i, h := range hits {
		assert.InDelta(t, 1, h.Distance, 1e-9)
		assert.InDelta(t, float64(i)/4, h.BladeParameter, 1e-9)
	}

	assert.Empty(t, IntersectBlades(nil, a, b, 0.5, 5))
}

func TestEffectiveRadiusAndScale(t *testing.T) {
	assert.InDelta(t, 2, EffectiveRadius(70, 70), 1e-9)
	assert.InDelta(t, 1, EffectiveRadius(10, 10), 1e-9)
	assert.InDelta(t, 3, EffectiveRadius(200, 200), 1e-9)

	assert.Equal(t, 0.25, ScaleFactor(40, 40))
	assert.Equal(t, 0.5, ScaleFactor(40, 70))
	assert.Equal(t, 1.0, ScaleFactor(70, 70))
	assert.Equal(t, 1.0, ScaleFactor(0, 0))

	s := Scale(config.DefaultThresholds(), 0.25)
	assert.Equal(t, ScaledThresholds{Collision: 1.25, Imminent: 6.25, ImminentBackup: 7.5}, s)
}

func TestTimeToCollision(t *testing.T) {
	assert.Equal(t, NoPrediction, TimeToCollision(20, 0, 5))
	assert.Equal(t, NoPrediction, TimeToCollision(20, -10, 5))
	assert.Equal(t, NoPrediction, TimeToCollision(4, 100, 5))
	assert.Equal(t, NoPrediction, TimeToCollision(500, 100, 5))
	assert.InDelta(t, 0.05, TimeToCollision(20, 300, 5), 1e-12)
}

func TestClassifyCoincidentBladesCollide(t *testing.T) {
	c := NewClassifier(config.DefaultThresholds(), DefaultRaycastSamples)
	var timer GrindTimer
	a := segment(mgl64.Vec3{10, 0, 0}, mgl64.Vec3{10, 0, 70}, mgl64.Vec3{})

	res := c.Classify(a, a, &timer)
	assert.True(t, res.Colliding)
	assert.False(t, res.Imminent)
	assert.Equal(t, 10, res.RaycastHits)
	assert.Equal(t, 0.0, res.ClosestDistance)
}

func TestClassifyFarBlades(t *testing.T) {
	c := NewClassifier(config.DefaultThresholds(), DefaultRaycastSamples)
	var timer GrindTimer
	left := segment(mgl64.Vec3{10, 0, 0}, mgl64.Vec3{10, 0, 70}, mgl64.Vec3{})
	right := segment(mgl64.Vec3{50, 0, 0}, mgl64.Vec3{50, 0, 70}, mgl64.Vec3{})

	res := c.Classify(left, right, &timer)
	assert.False(t, res.Colliding)
	assert.False(t, res.Imminent)
	assert.Equal(t, 0, res.RaycastHits)
	assert.InDelta(t, 40, res.ClosestDistance, 1e-9)
	assert.Equal(t, NoPrediction, res.TimeToCollision)
}

func TestClassifyDaggerScaledThreshold(t *testing.T) {
	c := NewClassifier(config.DefaultThresholds(), DefaultRaycastSamples)
	var timer GrindTimer
	// two 40-unit blades crossing with 1 unit of clearance
	left := segment(mgl64.Vec3{10, -20, 50}, mgl64.Vec3{10, 20, 50}, mgl64.Vec3{})
	right := segment(mgl64.Vec3{-10, 0, 51}, mgl64.Vec3{30, 0, 51}, mgl64.Vec3{})

	res := c.Classify(left, right, &timer)
	assert.Equal(t, 0.25, res.ScaleFactor)
	assert.InDelta(t, 1.0, res.SegmentDistance, 1e-9)
	assert.True(t, res.Colliding, "1.0 is within the scaled 1.25 collision threshold")
	assert.False(t, res.Imminent)
}

func TestClassifySwordImminent(t *testing.T) {
	th := config.DefaultThresholds()
	c := NewClassifier(th, DefaultRaycastSamples)
	var timer GrindTimer
	left := segment(mgl64.Vec3{10, 0, 0}, mgl64.Vec3{10, 0, 70}, mgl64.Vec3{300, 0, 0})
	right := segment(mgl64.Vec3{30, 0, 0}, mgl64.Vec3{30, 0, 70}, mgl64.Vec3{})

	res := c.Classify(left, right, &timer)
	require.False(t, res.Colliding)
	assert.InDelta(t, 20, res.SegmentDistance, 1e-9)
	assert.InDelta(t, 300, res.ClosingVelocity, 1e-9)
	assert.InDelta(t, 0.05, res.TimeToCollision, 1e-9)
	assert.True(t, res.SegmentDistance <= th.Imminent && res.ClosingVelocity >= th.MinClosingVelocity)
	assert.True(t, res.Imminent)
	assert.False(t, res.WithinBackupOnly)
}

func TestClassifyRecedingBladesNotImminent(t *testing.T) {
	c := NewClassifier(config.DefaultThresholds(), DefaultRaycastSamples)
	var timer GrindTimer
	left := segment(mgl64.Vec3{10, 0, 0}, mgl64.Vec3{10, 0, 70}, mgl64.Vec3{-300, 0, 0})
	right := segment(mgl64.Vec3{30, 0, 0}, mgl64.Vec3{30, 0, 70}, mgl64.Vec3{})

	res := c.Classify(left, right, &timer)
	assert.False(t, res.Imminent)
	assert.Equal(t, NoPrediction, res.TimeToCollision)
}

func TestClassifyBackupBand(t *testing.T) {
	c := NewClassifier(config.DefaultThresholds(), DefaultRaycastSamples)
	var timer GrindTimer
	left := segment(mgl64.Vec3{10, 0, 0}, mgl64.Vec3{10, 0, 70}, mgl64.Vec3{60, 0, 0})
	right := segment(mgl64.Vec3{38, 0, 0}, mgl64.Vec3{38, 0, 70}, mgl64.Vec3{})

	res := c.Classify(left, right, &timer)
	assert.True(t, res.Imminent)
	assert.True(t, res.WithinBackupOnly)
}

func TestClassifyFastApproachLongBlades(t *testing.T) {
	th := config.DefaultThresholds()
	c := NewClassifier(th, DefaultRaycastSamples)
	var timer GrindTimer
	// closing below the minimum closing velocity, so only the TTC rule can fire
	left := segment(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 0, 70}, mgl64.Vec3{40, 0, 0})
	right := segment(mgl64.Vec3{10, 0, 0}, mgl64.Vec3{10, 0, 70}, mgl64.Vec3{})

	res := c.Classify(left, right, &timer)
	require.Zero(t, res.RaycastHits)
	require.False(t, res.Colliding)
	assert.Less(t, res.ClosingVelocity, th.MinClosingVelocity)
	assert.InDelta(t, 40, res.ClosingVelocity, 1e-9)
	assert.InDelta(t, 0.125, res.TimeToCollision, 1e-9)
	assert.True(t, res.Imminent)
}

func TestClassifyFastApproachIgnoredForDaggers(t *testing.T) {
	th := config.DefaultThresholds()
	c := NewClassifier(th, DefaultRaycastSamples)
	var timer GrindTimer
	left := segment(mgl64.Vec3{10, 0, 0}, mgl64.Vec3{10, 0, 35}, mgl64.Vec3{40, 0, 0})
	right := segment(mgl64.Vec3{16.25, 0, 0}, mgl64.Vec3{16.25, 0, 35}, mgl64.Vec3{})

	res := c.Classify(left, right, &timer)
	require.Equal(t, 0.25, res.ScaleFactor)
	require.False(t, res.Colliding)
	assert.InDelta(t, 40, res.ClosingVelocity, 1e-9)
	assert.InDelta(t, 0.125, res.TimeToCollision, 1e-9)
	assert.LessOrEqual(t, res.SegmentDistance, th.ImminentBackup*res.ScaleFactor)
	assert.False(t, res.Imminent)
}

func TestGrindingSuppressesImminent(t *testing.T) {
	th := config.DefaultThresholds()
	c := NewClassifier(th, DefaultRaycastSamples)
	var timer GrindTimer
	left := segment(mgl64.Vec3{10, 0, 0}, mgl64.Vec3{10, 0, 70}, mgl64.Vec3{})
	right := segment(mgl64.Vec3{12, 0, 0}, mgl64.Vec3{12, 0, 70}, mgl64.Vec3{})

	var res Result
	for i := 0; i < 30; i++ {
		timer.Advance(1.0 / 90)
		res = c.Classify(left, right, &timer)
		if res.Grinding {
			assert.False(t, res.Imminent, "tick %d", i)
		}
	}
	assert.True(t, res.Colliding)
	assert.True(t, res.Grinding)
	assert.GreaterOrEqual(t, res.GrindDuration, th.GrindMinDuration)
}

func TestGrindTimer(t *testing.T) {
	th := config.DefaultThresholds()
	var g GrindTimer

	g.Advance(1)
	grinding, d := g.Observe(true, 10, th)
	assert.False(t, grinding)
	assert.Equal(t, 0.0, d)
	assert.Equal(t, 1.0, g.StartTime())

	g.Advance(0.2)
	grinding, d = g.Observe(true, 10, th)
	assert.True(t, grinding)
	assert.InDelta(t, 0.2, d, 1e-12)

	grinding, _ = g.Observe(true, 150, th)
	assert.False(t, grinding, "fast relative motion is a clash, not a grind")

	grinding, d = g.Observe(false, 0, th)
	assert.False(t, grinding)
	assert.Equal(t, 0.0, d)
	assert.Equal(t, 0.0, g.Duration())
}

func TestClassifyInvalidGeometry(t *testing.T) {
	c := NewClassifier(config.DefaultThresholds(), 0)
	var timer GrindTimer
	a := segment(mgl64.Vec3{10, 0, 0}, mgl64.Vec3{10, 0, 70}, mgl64.Vec3{})
	var missing Geometry

	res := c.Classify(a, &missing, &timer)
	assert.Equal(t, EmptyResult(), res)
}
