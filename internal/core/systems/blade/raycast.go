package blade

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/bladeguard/internal/core/systems/physics"
)

const (
	// BladeRadius is the nominal radius of the cylinder rays are cast against.
	BladeRadius = 2.0
	// DefaultRaycastSamples is the number of rays cast per direction.
	DefaultRaycastSamples = 5

	coincidentEpsilon = 1e-3
)

// Hit is one ray that reached the target blade.
type Hit struct {
	Point          mgl64.Vec3
	Distance       float64
	RayParameter   float64
	BladeParameter float64
}

// IntersectBlades casts samples rays from evenly spaced points on source
// toward the matching points on target and appends every hit against the
// target's cylinder to dst. Rays longer than maxDistance miss.
func IntersectBlades(dst []Hit, source, target *Geometry, maxDistance float64, samples int) []Hit {
	if samples < 2 {
		samples = 2
	}
	cyl := physics.Cylinder{Base: target.Base, Tip: target.Tip, Radius: BladeRadius}
	axisLen := target.Tip.Sub(target.Base).Len()

	for i := 0; i < samples; i++ {
		t := float64(i) / float64(samples-1)
		origin := source.PointAt(t)
		toward := target.PointAt(t).Sub(origin)
		length := toward.Len()

		if length < coincidentEpsilon {
			dst = append(dst, Hit{Point: origin, RayParameter: t, BladeParameter: t})
			continue
		}

		ray := physics.Ray{Origin: origin, Direction: toward.Mul(1 / length)}
		hit, ok := physics.IntersectRayCylinder(ray, cyl, maxDistance)
		if !ok {
			continue
		}
		param := 0.0
		if axisLen > coincidentEpsilon {
			param = mgl64.Clamp(hit.Height/axisLen, 0, 1)
		}
		dst = append(dst, Hit{
			Point:          hit.Point,
			Distance:       hit.Distance,
			RayParameter:   t,
			BladeParameter: param,
		})
	}
	return dst
}

// nearestHit returns the hit with the smallest distance across both sets.
func nearestHit(sets ...[]Hit) (Hit, bool) {
	best := Hit{Distance: math.Inf(1)}
	found := false
	for _, hits := range sets {
		for _, h := range hits {
			if h.Distance < best.Distance {
				best = h
				found = true
			}
		}
	}
	return best, found
}
