package config

import (
	"fmt"

	"go.uber.org/multierr"
)

// Validate reports every inconsistent setting at once.
func (c Config) Validate() error {
	var err error
	err = multierr.Append(err, c.Blade.Validate())
	err = multierr.Append(err, c.Pose.Validate())
	if c.Engine.OffHand != LeftHand && c.Engine.OffHand != RightHand {
		err = multierr.Append(err, invalid("engine.off_hand", "must be left or right"))
	}
	if c.Engine.RaycastSamples < 2 {
		err = multierr.Append(err, invalid("engine.raycast_samples", "must be at least 2, got %d", c.Engine.RaycastSamples))
	}
	if c.Log.Encoding != "" && c.Log.Encoding != "json" && c.Log.Encoding != "console" {
		err = multierr.Append(err, invalid("log.encoding", "must be json or console, got %q", c.Log.Encoding))
	}
	return err
}

func (t Thresholds) Validate() error {
	var err error
	if t.Collision <= 0 {
		err = multierr.Append(err, invalid("blade.collision", "must be positive, got %g", t.Collision))
	}
	if t.Imminent < t.Collision {
		err = multierr.Append(err, invalid("blade.imminent", "must not be below collision (%g < %g)", t.Imminent, t.Collision))
	}
	if t.ImminentBackup < t.Imminent {
		err = multierr.Append(err, invalid("blade.imminent_backup", "must not be below imminent (%g < %g)", t.ImminentBackup, t.Imminent))
	}
	if t.TimeToCollision < 0 {
		err = multierr.Append(err, invalid("blade.time_to_collision", "must not be negative"))
	}
	if t.MinClosingVelocity < 0 {
		err = multierr.Append(err, invalid("blade.min_closing_velocity", "must not be negative"))
	}
	if t.GrindVelocityCeiling <= 0 {
		err = multierr.Append(err, invalid("blade.grind_velocity_ceiling", "must be positive"))
	}
	if t.GrindMinDuration < 0 {
		err = multierr.Append(err, invalid("blade.grind_min_duration", "must not be negative"))
	}
	if t.EquipGraceTicks < 0 {
		err = multierr.Append(err, invalid("blade.equip_grace_ticks", "must not be negative"))
	}
	return err
}

func (p Pose) Validate() error {
	var err error
	if p.MinCrossAngle < 0 || p.MaxCrossAngle > 180 || p.MinCrossAngle >= p.MaxCrossAngle {
		err = multierr.Append(err, invalid("pose.cross_angle", "need 0 <= min < max <= 180, got %g..%g", p.MinCrossAngle, p.MaxCrossAngle))
	}
	if p.MinUpward < -1 || p.MinUpward > 1 {
		err = multierr.Append(err, invalid("pose.min_upward", "must be within [-1, 1]"))
	}
	if p.MinForward < -1 || p.MinForward > 1 {
		err = multierr.Append(err, invalid("pose.min_forward", "must be within [-1, 1]"))
	}
	return err
}

func invalid(field, format string, args ...any) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidConfig, field, fmt.Sprintf(format, args...))
}
