package contact

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/bladeguard/internal/config"
	"github.com/zeusync/bladeguard/internal/core/systems/blade"
)

// PoseReading is the outcome of one block stance check.
type PoseReading struct {
	Angle        float64
	LeftUp       bool
	RightUp      bool
	LeftForward  float64
	RightForward float64
	Blocking     bool
}

// PoseClassifier recognizes the crossed-blade block stance: blades crossed
// at a moderate angle, both pointing up, neither pointing back at the player.
type PoseClassifier struct {
	cfg config.Pose
}

func NewPoseClassifier(cfg config.Pose) *PoseClassifier {
	return &PoseClassifier{cfg: cfg}
}

// Classify checks the stance for a player facing heading (radians, 0 is +Y).
func (p *PoseClassifier) Classify(left, right *blade.Geometry, heading float64) PoseReading {
	if !left.Valid || !right.Valid {
		return PoseReading{}
	}
	ld, rd := left.Direction(), right.Direction()
	if ld == (mgl64.Vec3{}) || rd == (mgl64.Vec3{}) {
		return PoseReading{}
	}

	forward := mgl64.Vec3{math.Sin(heading), math.Cos(heading), 0}
	r := PoseReading{
		Angle:        mgl64.RadToDeg(math.Acos(mgl64.Clamp(ld.Dot(rd), -1, 1))),
		LeftUp:       ld[2] > p.cfg.MinUpward,
		RightUp:      rd[2] > p.cfg.MinUpward,
		LeftForward:  ld[0]*forward[0] + ld[1]*forward[1],
		RightForward: rd[0]*forward[0] + rd[1]*forward[1],
	}
	r.Blocking = r.Angle > p.cfg.MinCrossAngle && r.Angle < p.cfg.MaxCrossAngle &&
		r.LeftUp && r.RightUp &&
		r.LeftForward > p.cfg.MinForward && r.RightForward > p.cfg.MinForward
	return r
}
