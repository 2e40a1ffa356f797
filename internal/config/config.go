// Package config holds the immutable settings the blade tracker is built
// from, together with file loading and validation.
package config

import (
	"errors"
	"time"

	"golang.org/x/time/rate"
)

var (
	ErrInvalidConfig      = errors.New("invalid config")
	ErrUnsupportedFormat  = errors.New("unsupported config format")
	ErrUnknownConfigField = errors.New("unknown config field")
)

type Config struct {
	Log    Log        `yaml:"log" toml:"log"`
	Blade  Thresholds `yaml:"blade" toml:"blade"`
	Pose   Pose       `yaml:"pose" toml:"pose"`
	Engine Engine     `yaml:"engine" toml:"engine"`
}

type Log struct {
	Level    string `yaml:"level" toml:"level"`
	Encoding string `yaml:"encoding" toml:"encoding"`
	// OutputPaths are zap sink URLs or file paths; empty means stderr.
	OutputPaths []string `yaml:"output_paths,omitempty" toml:"output_paths,omitempty"`
	// Diagnostics throttles per-tick debug output.
	Diagnostics Limiter `yaml:"diagnostics" toml:"diagnostics"`
}

// Thresholds are the distance, velocity and timing limits used to classify
// blade contact. Distances are world units, velocities units per second and
// times seconds.
type Thresholds struct {
	Collision            float64 `yaml:"collision" toml:"collision"`
	Imminent             float64 `yaml:"imminent" toml:"imminent"`
	ImminentBackup       float64 `yaml:"imminent_backup" toml:"imminent_backup"`
	TimeToCollision      float64 `yaml:"time_to_collision" toml:"time_to_collision"`
	MinClosingVelocity   float64 `yaml:"min_closing_velocity" toml:"min_closing_velocity"`
	GrindVelocityCeiling float64 `yaml:"grind_velocity_ceiling" toml:"grind_velocity_ceiling"`
	GrindMinDuration     float64 `yaml:"grind_min_duration" toml:"grind_min_duration"`
	EquipGraceTicks      int     `yaml:"equip_grace_ticks" toml:"equip_grace_ticks"`
}

// Pose bounds the crossed-blade block stance. Angles are degrees.
type Pose struct {
	MinCrossAngle float64 `yaml:"min_cross_angle" toml:"min_cross_angle"`
	MaxCrossAngle float64 `yaml:"max_cross_angle" toml:"max_cross_angle"`
	MinUpward     float64 `yaml:"min_upward" toml:"min_upward"`
	MinForward    float64 `yaml:"min_forward" toml:"min_forward"`
}

type Engine struct {
	// OffHand is the hand whose weapon is unequipped when a clash is imminent.
	OffHand        Hand `yaml:"off_hand" toml:"off_hand"`
	RaycastSamples int  `yaml:"raycast_samples" toml:"raycast_samples"`
}

// Limiter allows N events every Every.
type Limiter struct {
	Every Duration `yaml:"every" toml:"every"`
	N     int      `yaml:"n" toml:"n"`
}

// Limiter builds a rate.Limiter from the settings. A zero interval never
// allows anything.
func (l Limiter) Limiter() *rate.Limiter {
	if l.Every.Duration <= 0 || l.N <= 0 {
		return rate.NewLimiter(0, 0)
	}
	return rate.NewLimiter(rate.Every(l.Every.Duration), l.N)
}

// Duration reads "250ms" style strings from config files.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) (err error) {
	d.Duration, err = time.ParseDuration(string(text))
	return
}

// DefaultThresholds returns the stock contact thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Collision:            5,
		Imminent:             25,
		ImminentBackup:       30,
		TimeToCollision:      0.15,
		MinClosingVelocity:   50,
		GrindVelocityCeiling: 100,
		GrindMinDuration:     0.15,
		EquipGraceTicks:      20,
	}
}

// DefaultPose returns the stock block stance bounds.
func DefaultPose() Pose {
	return Pose{
		MinCrossAngle: 30,
		MaxCrossAngle: 150,
		MinUpward:     0.3,
		MinForward:    -0.5,
	}
}

func Default() Config {
	return Config{
		Log: Log{
			Level:    "info",
			Encoding: "json",
			Diagnostics: Limiter{
				Every: Duration{Duration: 500 * time.Millisecond},
				N:     1,
			},
		},
		Blade: DefaultThresholds(),
		Pose:  DefaultPose(),
		Engine: Engine{
			OffHand:        LeftHand,
			RaycastSamples: 5,
		},
	}
}
