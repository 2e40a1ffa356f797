package systems

import (
	"time"
)

// System is a unit of per-tick logic driven by a host loop.
type System interface {
	Name() string
	// Reset returns the system to a cold start.
	Reset()
	GetMetrics() Metrics
}

// Metrics provides runtime metrics for a system
type Metrics struct {
	ExecutionCount       uint64
	TotalExecutionTime   time.Duration
	AverageExecutionTime time.Duration
	MaxExecutionTime     time.Duration
	MinExecutionTime     time.Duration
	LastExecutionTime    time.Time
	// EntitiesProcessed counts ticks on which both blades were classified.
	EntitiesProcessed uint64
}

// Record folds one execution into the metrics.
func (m *Metrics) Record(at time.Time, took time.Duration, processed bool) {
	m.ExecutionCount++
	m.TotalExecutionTime += took
	m.AverageExecutionTime = m.TotalExecutionTime / time.Duration(m.ExecutionCount)
	if took > m.MaxExecutionTime {
		m.MaxExecutionTime = took
	}
	if m.ExecutionCount == 1 || took < m.MinExecutionTime {
		m.MinExecutionTime = took
	}
	m.LastExecutionTime = at
	if processed {
		m.EntitiesProcessed++
	}
}
