// Package blade turns hand transforms into blade segments and classifies how
// two blades relate to each other on a single tick.
package blade

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/bladeguard/internal/core/systems/physics"
)

const (
	// LengthScale converts a weapon reach value into world units.
	LengthScale = 70.0
	// MinPlausibleLength is the shortest segment treated as a real blade.
	MinPlausibleLength = 1.0
	// originTolerance rejects bases sitting at the world origin, which is
	// what an unresolved node reports.
	originTolerance = 0.1
)

// Geometry is one hand's blade segment for the current tick.
type Geometry struct {
	Base         mgl64.Vec3 `json:"base"`
	Tip          mgl64.Vec3 `json:"tip"`
	PrevBase     mgl64.Vec3 `json:"prev_base"`
	PrevTip      mgl64.Vec3 `json:"prev_tip"`
	BaseVelocity mgl64.Vec3 `json:"base_velocity"`
	TipVelocity  mgl64.Vec3 `json:"tip_velocity"`
	Length       float64    `json:"length"`
	Valid        bool       `json:"valid"`
}

// Clear zeroes every field.
func (g *Geometry) Clear() { *g = Geometry{} }

// Plausible reports whether the segment is valid, long enough and not
// anchored at the origin.
func (g *Geometry) Plausible() bool {
	return g.Valid && g.Length > MinPlausibleLength && !physics.NearOrigin(g.Base, originTolerance)
}

// Direction is the unit vector from base to tip, or zero for a degenerate
// segment.
func (g *Geometry) Direction() mgl64.Vec3 { return physics.Normalize(g.Tip.Sub(g.Base)) }

// PointAt returns the point at parameter t in [0,1] along the blade.
func (g *Geometry) PointAt(t float64) mgl64.Vec3 { return physics.Lerp(g.Base, g.Tip, t) }

// VelocityAt interpolates the base and tip velocities at parameter t.
func (g *Geometry) VelocityAt(t float64) mgl64.Vec3 {
	return physics.Lerp(g.BaseVelocity, g.TipVelocity, t)
}

// IsShort reports whether a blade of this length counts as a dagger-class
// weapon for threshold scaling.
func IsShort(length float64) bool {
	return length > 0.1 && length <= ShortBladeMaxLength
}
