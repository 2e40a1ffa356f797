package blade

import "github.com/zeusync/bladeguard/internal/config"

// GrindTimer measures how long two blades have stayed in contact. It keeps
// its own clock advanced by tick deltas so it never reads wall time.
type GrindTimer struct {
	now      float64
	start    float64
	duration float64
	touching bool
}

// Advance moves the timer's clock forward by dt seconds.
func (g *GrindTimer) Advance(dt float64) {
	if dt > 0 {
		g.now += dt
	}
}

// Observe records this tick's contact and reports whether the blades are
// grinding: in contact for at least the minimum duration while moving slower
// than the ceiling relative to each other.
func (g *GrindTimer) Observe(colliding bool, relativeVelocity float64, th config.Thresholds) (bool, float64) {
	if !colliding {
		g.touching = false
		g.duration = 0
		return false, 0
	}
	if !g.touching {
		g.touching = true
		g.start = g.now
	}
	g.duration = g.now - g.start
	return relativeVelocity < th.GrindVelocityCeiling && g.duration >= th.GrindMinDuration, g.duration
}

// StartTime is the clock reading when the current contact began.
func (g *GrindTimer) StartTime() float64 { return g.start }

func (g *GrindTimer) Duration() float64 { return g.duration }

// Stop ends the current contact without touching the clock.
func (g *GrindTimer) Stop() {
	g.touching = false
	g.duration = 0
}

func (g *GrindTimer) Reset() { *g = GrindTimer{} }
