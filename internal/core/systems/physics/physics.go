// Package physics holds the small set of 3D primitives the blade systems are
// built on: world transforms, segment proximity and ray casting.
package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the squared length below which a vector or a segment is treated
// as degenerate.
const Epsilon = 1e-4

// Transform is a world-space pose: a position and a 3x3 rotation whose
// columns are the local X, Y and Z axes.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Mat3
}

// NewTransform returns a transform with the given position and rotation.
func NewTransform(position mgl64.Vec3, rotation mgl64.Mat3) Transform {
	return Transform{Position: position, Rotation: rotation}
}

// TransformFromDirection builds a transform whose local Y axis points along
// dir. A zero direction yields the identity rotation.
func TransformFromDirection(position, dir mgl64.Vec3) Transform {
	d := Normalize(dir)
	if d == (mgl64.Vec3{}) {
		return NewTransform(position, mgl64.Ident3())
	}
	q := mgl64.QuatBetweenVectors(mgl64.Vec3{0, 1, 0}, d)
	return NewTransform(position, q.Mat4().Mat3())
}

// Axis returns column i of the rotation.
func (t Transform) Axis(i int) mgl64.Vec3 { return t.Rotation.Col(i) }

// Normalize returns v scaled to unit length, or the zero vector when v is too
// short to carry a direction.
func Normalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < Epsilon {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}

// Lerp returns the point a + (b-a)*t.
func Lerp(a, b mgl64.Vec3, t float64) mgl64.Vec3 { return a.Add(b.Sub(a).Mul(t)) }

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b mgl64.Vec3) mgl64.Vec3 { return a.Add(b).Mul(0.5) }

// Distance computes the Euclidean distance between two points.
func Distance(a, b mgl64.Vec3) float64 { return b.Sub(a).Len() }

// NearOrigin reports whether every component of v is within tol of zero.
func NearOrigin(v mgl64.Vec3, tol float64) bool {
	return math.Abs(v[0]) <= tol && math.Abs(v[1]) <= tol && math.Abs(v[2]) <= tol
}
