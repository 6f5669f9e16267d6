// Package monitoring keeps in-process counters for the prediction service.
package monitoring

import (
	"fmt"
	"math"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// Outcome labels how a prediction request ended.
type Outcome string

const (
	OutcomeOK             Outcome = "ok"
	OutcomeInvalid        Outcome = "invalid"
	OutcomeSchemaMismatch Outcome = "schema_mismatch"
	OutcomeTimeout        Outcome = "timeout"
	OutcomeFailed         Outcome = "failed"
)

// Summary aggregates observed values without keeping them.
type Summary struct {
	Count int64   `json:"count"`
	Sum   float64 `json:"sum"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

func (s *Summary) observe(v float64) {
	if s.Count == 0 || v < s.Min {
		s.Min = v
	}
	if s.Count == 0 || v > s.Max {
		s.Max = v
	}
	s.Count++
	s.Sum += v
}

// Average is zero when nothing was observed.
func (s Summary) Average() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

// PredictionMetrics counts requests by outcome and summarises latency and
// predicted income. Safe for concurrent use.
type PredictionMetrics struct {
	mu sync.RWMutex

	startTime  time.Time
	outcomes   map[Outcome]int64
	degenerate int64
	latency    Summary
	income     Summary
}

func NewPredictionMetrics() *PredictionMetrics {
	return &PredictionMetrics{
		startTime: time.Now(),
		outcomes:  make(map[Outcome]int64),
	}
}

// RecordOutcome counts a request that did not produce a prediction.
func (m *PredictionMetrics) RecordOutcome(outcome Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.outcomes[outcome]++
}

// RecordPrediction counts a successful prediction.
func (m *PredictionMetrics) RecordPrediction(income float64, degenerate bool, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.outcomes[OutcomeOK]++
	if degenerate {
		m.degenerate++
	}
	m.latency.observe(elapsed.Seconds())
	if !math.IsNaN(income) && !math.IsInf(income, 0) {
		m.income.observe(income)
	}
}

// Snapshot is a point-in-time copy of the metrics.
type Snapshot struct {
	Uptime         string           `json:"uptime"`
	Goroutines     int              `json:"goroutines"`
	Requests       map[string]int64 `json:"requests"`
	DegenerateRuns int64            `json:"degenerate_range"`
	LatencySeconds Summary          `json:"latency_seconds"`
	Income         Summary          `json:"income"`
	AverageIncome  float64          `json:"average_income"`
}

func (m *PredictionMetrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	requests := make(map[string]int64, len(m.outcomes))
	for outcome, n := range m.outcomes {
		requests[string(outcome)] = n
	}
	return Snapshot{
		Uptime:         time.Since(m.startTime).Round(time.Second).String(),
		Goroutines:     runtime.NumGoroutine(),
		Requests:       requests,
		DegenerateRuns: m.degenerate,
		LatencySeconds: m.latency,
		Income:         m.income,
		AverageIncome:  m.income.Average(),
	}
}

// ExportPrometheus renders the metrics in the Prometheus text format.
func (m *PredictionMetrics) ExportPrometheus() string {
	snapshot := m.Snapshot()

	var b strings.Builder
	b.WriteString("# HELP income_predictions_total Prediction requests by outcome\n")
	b.WriteString("# TYPE income_predictions_total counter\n")
	outcomes := make([]string, 0, len(snapshot.Requests))
	for outcome := range snapshot.Requests {
		outcomes = append(outcomes, outcome)
	}
	sort.Strings(outcomes)
	for _, outcome := range outcomes {
		fmt.Fprintf(&b, "income_predictions_total{outcome=%q} %d\n", outcome, snapshot.Requests[outcome])
	}

	b.WriteString("# HELP income_degenerate_range_total Predictions made while the income range was degenerate\n")
	b.WriteString("# TYPE income_degenerate_range_total counter\n")
	fmt.Fprintf(&b, "income_degenerate_range_total %d\n", snapshot.DegenerateRuns)

	b.WriteString("# HELP income_prediction_seconds Time spent in the inference pipeline\n")
	b.WriteString("# TYPE income_prediction_seconds summary\n")
	fmt.Fprintf(&b, "income_prediction_seconds_sum %g\n", snapshot.LatencySeconds.Sum)
	fmt.Fprintf(&b, "income_prediction_seconds_count %d\n", snapshot.LatencySeconds.Count)

	b.WriteString("# HELP income_predicted_average Mean predicted monthly income\n")
	b.WriteString("# TYPE income_predicted_average gauge\n")
	fmt.Fprintf(&b, "income_predicted_average %g\n", snapshot.AverageIncome)
	return b.String()
}
