// Package metric defines the Prometheus instrumentation for the
// reasoning engine and its HTTP gateway.
package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains all engine-level metrics.
type Metrics struct {
	TurnsProcessed   *prometheus.CounterVec
	FactsAppended    prometheus.Counter
	FactsDerived     prometheus.Counter
	RuleFirings      *prometheus.CounterVec
	Escalations      *prometheus.CounterVec
	EvaluateDuration prometheus.Histogram
	TurnDuration     prometheus.Histogram
	SessionsActive   prometheus.Gauge
	ErrorsTotal      *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{
		TurnsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wellgraph",
				Subsystem: "engine",
				Name:      "turns_total",
				Help:      "Total number of turns processed",
			},
			[]string{"status"},
		),

		FactsAppended: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "wellgraph",
				Subsystem: "graph",
				Name:      "facts_appended_total",
				Help:      "Total number of evidence facts appended to session graphs",
			},
		),

		FactsDerived: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "wellgraph",
				Subsystem: "engine",
				Name:      "facts_derived_total",
				Help:      "Total number of facts derived by the evaluator",
			},
		),

		RuleFirings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wellgraph",
				Subsystem: "engine",
				Name:      "rule_firings_total",
				Help:      "Total number of rule firings",
			},
			[]string{"rule"},
		),

		Escalations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wellgraph",
				Subsystem: "safety",
				Name:      "escalations_total",
				Help:      "Total number of triggered safety escalations",
			},
			[]string{"category"},
		),

		EvaluateDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "wellgraph",
				Subsystem: "engine",
				Name:      "evaluate_duration_seconds",
				Help:      "Forward-chaining evaluation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),

		TurnDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "wellgraph",
				Subsystem: "engine",
				Name:      "turn_duration_seconds",
				Help:      "Whole-turn processing duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),

		SessionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "wellgraph",
				Subsystem: "gateway",
				Name:      "sessions_active",
				Help:      "Number of sessions currently held in memory",
			},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wellgraph",
				Subsystem: "errors",
				Name:      "total",
				Help:      "Total number of errors by component and class",
			},
			[]string{"component", "class"},
		),
	}
}

// Register registers all collectors on reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.TurnsProcessed,
		m.FactsAppended,
		m.FactsDerived,
		m.RuleFirings,
		m.Escalations,
		m.EvaluateDuration,
		m.TurnDuration,
		m.SessionsActive,
		m.ErrorsTotal,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// RecordTurn increments the turn counter.
func (m *Metrics) RecordTurn(status string) {
	m.TurnsProcessed.WithLabelValues(status).Inc()
}

// RecordRuleFiring increments the firing counter for a rule.
func (m *Metrics) RecordRuleFiring(rule string) {
	m.RuleFirings.WithLabelValues(rule).Inc()
}

// RecordEscalation increments the escalation counter.
func (m *Metrics) RecordEscalation(category string) {
	m.Escalations.WithLabelValues(category).Inc()
}

// RecordEvaluateDuration records one evaluation run's duration.
func (m *Metrics) RecordEvaluateDuration(d time.Duration) {
	m.EvaluateDuration.Observe(d.Seconds())
}

// RecordTurnDuration records one whole turn's duration.
func (m *Metrics) RecordTurnDuration(d time.Duration) {
	m.TurnDuration.Observe(d.Seconds())
}

// RecordError increments the error counter.
func (m *Metrics) RecordError(component, class string) {
	m.ErrorsTotal.WithLabelValues(component, class).Inc()
}
