package blade

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/bladeguard/internal/config"
	"github.com/zeusync/bladeguard/internal/core/systems/physics"
)

const (
	// ShortBladeMaxLength is the longest blade still scaled as a dagger.
	ShortBladeMaxLength = 55.0
	// MaxPredictionTime caps time-to-collision estimates, in seconds.
	MaxPredictionTime = 2.0
	// NoPrediction marks a Result without a time-to-collision estimate.
	NoPrediction = -1.0

	minRaycastHits     = 2
	minEffectiveRadius = 1.0
	maxEffectiveRadius = 3.0
)

// Result is the classification of one blade pair on one tick.
type Result struct {
	// ClosestDistance is the segment distance, replaced by the nearest ray
	// hit distance when any ray hit.
	ClosestDistance  float64    `json:"closest_distance"`
	SegmentDistance  float64    `json:"segment_distance"`
	LeftParameter    float64    `json:"left_parameter"`
	RightParameter   float64    `json:"right_parameter"`
	LeftContact      mgl64.Vec3 `json:"left_contact"`
	RightContact     mgl64.Vec3 `json:"right_contact"`
	CollisionPoint   mgl64.Vec3 `json:"collision_point"`
	RaycastHits      int        `json:"raycast_hits"`
	RelativeVelocity float64    `json:"relative_velocity"`
	ClosingVelocity  float64    `json:"closing_velocity"`
	TimeToCollision  float64    `json:"time_to_collision"`
	ScaleFactor      float64    `json:"scale_factor"`
	Colliding        bool       `json:"colliding"`
	Imminent         bool       `json:"imminent"`
	Grinding         bool       `json:"grinding"`
	GrindDuration    float64    `json:"grind_duration"`
	// WithinBackupOnly is set when the blades are inside the backup band but
	// outside the primary imminent distance.
	WithinBackupOnly bool `json:"within_backup_only"`
}

// EmptyResult is the Result reported when no classification took place.
func EmptyResult() Result {
	return Result{TimeToCollision: NoPrediction, ScaleFactor: 1}
}

// ScaledThresholds are the distance thresholds after short-blade scaling.
type ScaledThresholds struct {
	Collision      float64
	Imminent       float64
	ImminentBackup float64
}

// Classifier evaluates a blade pair. It reuses internal hit buffers and is
// not safe for concurrent use.
type Classifier struct {
	thresholds config.Thresholds
	samples    int
	leftHits   []Hit
	rightHits  []Hit
}

func NewClassifier(thresholds config.Thresholds, samples int) *Classifier {
	if samples < 2 {
		samples = DefaultRaycastSamples
	}
	return &Classifier{
		thresholds: thresholds,
		samples:    samples,
		leftHits:   make([]Hit, 0, samples),
		rightHits:  make([]Hit, 0, samples),
	}
}

// Classify measures the pair and decides whether it is colliding, grinding
// or about to collide. Both geometries must be valid; callers check
// plausibility first. timer carries contact duration across ticks.
func (c *Classifier) Classify(left, right *Geometry, timer *GrindTimer) Result {
	res := EmptyResult()
	if !left.Valid || !right.Valid {
		timer.Stop()
		return res
	}

	radius := EffectiveRadius(left.Length, right.Length)
	c.leftHits = IntersectBlades(c.leftHits[:0], left, right, 2*radius, c.samples)
	c.rightHits = IntersectBlades(c.rightHits[:0], right, left, 2*radius, c.samples)
	res.RaycastHits = len(c.leftHits) + len(c.rightHits)

	prox := physics.ClosestPointsSegmentSegment(left.Base, left.Tip, right.Base, right.Tip)
	res.SegmentDistance = prox.Distance
	res.ClosestDistance = prox.Distance
	res.LeftParameter = prox.S
	res.RightParameter = prox.T
	res.LeftContact = prox.PointA
	res.RightContact = prox.PointB
	res.CollisionPoint = physics.Midpoint(prox.PointA, prox.PointB)
	if nearest, ok := nearestHit(c.leftHits, c.rightHits); ok {
		res.ClosestDistance = nearest.Distance
		res.CollisionPoint = nearest.Point
	}

	res.ScaleFactor = ScaleFactor(left.Length, right.Length)
	scaled := Scale(c.thresholds, res.ScaleFactor)

	relative := left.VelocityAt(prox.S).Sub(right.VelocityAt(prox.T))
	res.RelativeVelocity = relative.Len()
	separation := physics.Normalize(prox.PointB.Sub(prox.PointA))
	res.ClosingVelocity = relative.Dot(separation)
	res.TimeToCollision = TimeToCollision(prox.Distance, res.ClosingVelocity, scaled.Collision)

	res.Colliding = res.RaycastHits >= minRaycastHits || prox.Distance <= scaled.Collision
	res.Grinding, res.GrindDuration = timer.Observe(res.Colliding, res.RelativeVelocity, c.thresholds)

	approaching := res.ClosingVelocity >= c.thresholds.MinClosingVelocity
	primary := prox.Distance <= scaled.Imminent && approaching
	backup := prox.Distance <= scaled.ImminentBackup && approaching
	fast := false
	if !(IsShort(left.Length) && IsShort(right.Length)) {
		fast = res.TimeToCollision > 0 &&
			res.TimeToCollision < c.thresholds.TimeToCollision &&
			prox.Distance <= scaled.ImminentBackup
	}
	res.Imminent = !res.Colliding && !res.Grinding && (primary || backup || fast)
	res.WithinBackupOnly = prox.Distance <= scaled.ImminentBackup && prox.Distance > scaled.Imminent

	return res
}

// EffectiveRadius averages the per-blade radii implied by their lengths and
// clamps the result.
func EffectiveRadius(leftLength, rightLength float64) float64 {
	left := BladeRadius * leftLength / LengthScale
	right := BladeRadius * rightLength / LengthScale
	return mgl64.Clamp((left+right)/2, minEffectiveRadius, maxEffectiveRadius)
}

// ScaleFactor shrinks distance thresholds for dagger-class blades: 0.25 when
// both are short, 0.5 when one is, 1 otherwise.
func ScaleFactor(leftLength, rightLength float64) float64 {
	switch l, r := IsShort(leftLength), IsShort(rightLength); {
	case l && r:
		return 0.25
	case l || r:
		return 0.5
	default:
		return 1
	}
}

// Scale applies factor to the distance thresholds.
func Scale(th config.Thresholds, factor float64) ScaledThresholds {
	return ScaledThresholds{
		Collision:      th.Collision * factor,
		Imminent:       th.Imminent * factor,
		ImminentBackup: th.ImminentBackup * factor,
	}
}

// TimeToCollision estimates how long until the gap closes to threshold at
// the current closing speed. It returns NoPrediction when the blades are not
// approaching, are already within threshold, or the estimate exceeds
// MaxPredictionTime.
func TimeToCollision(distance, closing, threshold float64) float64 {
	if closing <= 0 || distance <= threshold {
		return NoPrediction
	}
	ttc := (distance - threshold) / closing
	if ttc > MaxPredictionTime {
		return NoPrediction
	}
	return ttc
}
