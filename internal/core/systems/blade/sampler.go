package blade

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/bladeguard/internal/core/systems/physics"
)

// BladeAxis is the rotation column the blade extends along.
const BladeAxis = 1

// Source describes what a hand holds on this tick: an equipped weapon node or
// a grabbed free body. A zero Source means nothing could be resolved.
type Source struct {
	Present   bool
	Transform physics.Transform
	Reach     float64
}

// SourceFrom builds a present Source from a transform and reach.
func SourceFrom(t physics.Transform, reach float64) Source {
	return Source{Present: true, Transform: t, Reach: reach}
}

type Sampler struct {
	lengthScale float64
}

func NewSampler() *Sampler {
	return &Sampler{lengthScale: LengthScale}
}

// Sample refreshes g from src. A missing source only clears Valid and leaves
// positions untouched. Velocities are finite differences against the previous
// sample and are zero when dt is not positive or the previous tick had no
// valid sample.
func (s *Sampler) Sample(g *Geometry, src Source, dt float64) {
	if !src.Present {
		g.Valid = false
		return
	}

	base := src.Transform.Position
	dir := physics.Normalize(src.Transform.Axis(BladeAxis))
	tip := base.Add(dir.Mul(src.Reach * s.lengthScale))

	hadPrevious := g.Valid
	g.PrevBase, g.PrevTip = g.Base, g.Tip
	g.Base, g.Tip = base, tip
	g.Length = tip.Sub(base).Len()
	g.Valid = true

	if !hadPrevious || dt <= 0 {
		if !hadPrevious {
			g.PrevBase, g.PrevTip = base, tip
		}
		g.BaseVelocity = mgl64.Vec3{}
		g.TipVelocity = mgl64.Vec3{}
		return
	}
	g.BaseVelocity = base.Sub(g.PrevBase).Mul(1 / dt)
	g.TipVelocity = tip.Sub(g.PrevTip).Mul(1 / dt)
}
