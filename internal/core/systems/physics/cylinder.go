package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Ray is a half-line. Direction is expected to be unit length.
type Ray struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3
}

// At returns the point at distance d along the ray.
func (r Ray) At(d float64) mgl64.Vec3 { return r.Origin.Add(r.Direction.Mul(d)) }

// Cylinder is a finite cylinder around the Base-Tip axis.
type Cylinder struct {
	Base   mgl64.Vec3
	Tip    mgl64.Vec3
	Radius float64
}

// CylinderHit describes where a ray meets a cylinder. Height is measured
// along the axis from Base.
type CylinderHit struct {
	Distance float64
	Point    mgl64.Vec3
	Height   float64
}

// IntersectRayCylinder returns the first intersection of ray with the
// cylinder's lateral surface that lies in front of the origin, within
// maxDistance and between the end caps. Pass math.Inf(1) for an unbounded
// ray. A ray parallel to the axis hits at distance 0 when it starts inside
// the radius.
func IntersectRayCylinder(ray Ray, cyl Cylinder, maxDistance float64) (CylinderHit, bool) {
	axis := cyl.Tip.Sub(cyl.Base)
	axisLenSq := axis.Dot(axis)
	if axisLenSq < Epsilon {
		return CylinderHit{}, false
	}
	axisLen := math.Sqrt(axisLenSq)
	n := axis.Mul(1 / axisLen)

	oc := ray.Origin.Sub(cyl.Base)
	dirPerp := ray.Direction.Sub(n.Mul(ray.Direction.Dot(n)))
	ocPerp := oc.Sub(n.Mul(oc.Dot(n)))

	a := dirPerp.Dot(dirPerp)
	b := 2 * dirPerp.Dot(ocPerp)
	c := ocPerp.Dot(ocPerp) - cyl.Radius*cyl.Radius

	if a < Epsilon {
		if c > 0 {
			return CylinderHit{}, false
		}
		return CylinderHit{Point: ray.Origin, Height: oc.Dot(n)}, true
	}

	disc := b*b - 4*a*c
	if disc < 0 {
		return CylinderHit{}, false
	}
	sq := math.Sqrt(disc)

	for _, d := range [2]float64{(-b - sq) / (2 * a), (-b + sq) / (2 * a)} {
		if d < 0 || d > maxDistance {
			continue
		}
		p := ray.At(d)
		h := p.Sub(cyl.Base).Dot(n)
		if h >= 0 && h <= axisLen {
			return CylinderHit{Distance: d, Point: p, Height: h}, true
		}
	}
	return CylinderHit{}, false
}
