package replay

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"github.com/zeusync/bladeguard/internal/core/systems"
)

// Report summarizes one replay.
type Report struct {
	Scenario   string          `json:"scenario" yaml:"scenario"`
	Ticks      int             `json:"ticks" yaml:"ticks"`
	Classified int             `json:"classified" yaml:"classified"`
	Calls      []Call          `json:"calls" yaml:"calls"`
	Events     map[string]int  `json:"events" yaml:"events"`
	Distance   DistanceSummary `json:"distance" yaml:"distance"`
	Metrics    systems.Metrics `json:"-" yaml:"-"`
	Failures   []string        `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// DistanceSummary describes the closest blade distance over classified ticks.
type DistanceSummary struct {
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
	Mean   float64 `json:"mean" yaml:"mean"`
	Median float64 `json:"median" yaml:"median"`
	P10    float64 `json:"p10" yaml:"p10"`
}

// Count returns how many calls of kind were recorded.
func (r *Report) Count(kind string) int {
	n := 0
	for _, c := range r.Calls {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

// Passed reports whether every expectation held.
func (r *Report) Passed() bool { return len(r.Failures) == 0 }

func (r *Report) check(e *Expectation) {
	if e == nil {
		return
	}
	for _, c := range []struct {
		kind string
		want *int
	}{
		{CallCollisionStart, e.CollisionStarts},
		{CallImminent, e.Imminents},
		{CallUnequip, e.Unequips},
		{CallStartBlocking, e.BlockStarts},
		{CallStopBlocking, e.BlockStops},
	} {
		if c.want == nil {
			continue
		}
		if got := r.Count(c.kind); got != *c.want {
			r.Failures = append(r.Failures, fmt.Sprintf("%s: want %d, got %d", c.kind, *c.want, got))
		}
	}
}

func summarize(distances []float64) (DistanceSummary, error) {
	if len(distances) == 0 {
		return DistanceSummary{}, nil
	}
	data := stats.Float64Data(distances)
	var (
		s   DistanceSummary
		err error
	)
	if s.Min, err = data.Min(); err != nil {
		return s, err
	}
	if s.Max, err = data.Max(); err != nil {
		return s, err
	}
	if s.Mean, err = data.Mean(); err != nil {
		return s, err
	}
	if s.Median, err = data.Median(); err != nil {
		return s, err
	}
	if s.P10, err = data.PercentileNearestRank(10); err != nil {
		return s, err
	}
	return s, nil
}
