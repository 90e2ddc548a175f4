// Package observability holds the Prometheus collectors shared by the service layers.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for RecordOperation.
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

var (
	operationCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workout_tracker",
		Subsystem: "usecase",
		Name:      "operations_total",
		Help:      "Use case invocations grouped by entity, operation and outcome.",
	}, []string{"entity", "operation", "outcome"})

	lastWriteGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "workout_tracker",
		Subsystem: "persistence",
		Name:      "last_write_timestamp_seconds",
		Help:      "Unix timestamp of the most recent committed write per table group.",
	}, []string{"topic"})

	subscriberGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "workout_tracker",
		Subsystem: "stream",
		Name:      "subscribers",
		Help:      "Open reactive read subscriptions per topic.",
	}, []string{"topic"})

	droppedEnumCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workout_tracker",
		Subsystem: "persistence",
		Name:      "unrecognized_enum_values_total",
		Help:      "Stored enum values that did not decode and were dropped on read.",
	}, []string{"field"})
)

func init() {
	prometheus.MustRegister(operationCounter, lastWriteGauge, subscriberGauge, droppedEnumCounter)
}

// RecordOperation counts one use case invocation.
func RecordOperation(entity, operation, outcome string) {
	operationCounter.WithLabelValues(entity, operation, outcome).Inc()
}

// RecordWrite updates the write watermark for topic.
func RecordWrite(topic string, ts time.Time) {
	if ts.IsZero() {
		return
	}
	lastWriteGauge.WithLabelValues(topic).Set(float64(ts.Unix()))
}

// AddSubscribers adjusts the open subscription gauge by delta.
func AddSubscribers(topic string, delta int) {
	subscriberGauge.WithLabelValues(topic).Add(float64(delta))
}

// RecordDroppedEnum counts stored enum values that were skipped during decoding.
func RecordDroppedEnum(field string, n int) {
	if n <= 0 {
		return
	}
	droppedEnumCounter.WithLabelValues(field).Add(float64(n))
}
