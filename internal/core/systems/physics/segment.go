package physics

import (
	"github.com/go-gl/mathgl/mgl64"
)

// SegmentProximity is the closest approach between two segments. S and T are
// the clamped parameters on the first and second segment.
type SegmentProximity struct {
	Distance float64
	S, T     float64
	PointA   mgl64.Vec3
	PointB   mgl64.Vec3
}

// ClosestPointsSegmentSegment computes the closest points between segment
// p1-q1 and segment p2-q2. Degenerate segments collapse to points; parallel
// segments fix S at 0 and solve for T.
func ClosestPointsSegmentSegment(p1, q1, p2, q2 mgl64.Vec3) SegmentProximity {
	d1 := q1.Sub(p1)
	d2 := q2.Sub(p2)
	r := p1.Sub(p2)
	a := d1.Dot(d1)
	e := d2.Dot(d2)
	f := d2.Dot(r)

	var s, t float64
	switch {
	case a <= Epsilon && e <= Epsilon:
		// both points
	case a <= Epsilon:
		t = mgl64.Clamp(f/e, 0, 1)
	default:
		c := d1.Dot(r)
		if e <= Epsilon {
			s = mgl64.Clamp(-c/a, 0, 1)
			break
		}

		b := d1.Dot(d2)
		denom := a*e - b*b
		if denom > Epsilon*a*e {
			s = mgl64.Clamp((b*f-c*e)/denom, 0, 1)
		}

		t = (b*s + f) / e
		if t < 0 {
			t = 0
			s = mgl64.Clamp(-c/a, 0, 1)
		} else if t > 1 {
			t = 1
			s = mgl64.Clamp((b-c)/a, 0, 1)
		}
	}

	pa := p1.Add(d1.Mul(s))
	pb := p2.Add(d2.Mul(t))
	return SegmentProximity{
		Distance: pb.Sub(pa).Len(),
		S:        s,
		T:        t,
		PointA:   pa,
		PointB:   pb,
	}
}
