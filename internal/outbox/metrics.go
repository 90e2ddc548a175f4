package outbox

import "github.com/prometheus/client_golang/prometheus"

var (
	deliveredCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "workout_tracker",
		Subsystem: "outbox",
		Name:      "events_delivered_total",
		Help:      "Number of outbox events published to Kafka.",
	})

	failedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "workout_tracker",
		Subsystem: "outbox",
		Name:      "events_failed_total",
		Help:      "Number of outbox event deliveries that failed and were released for retry.",
	})

	batchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "workout_tracker",
		Subsystem: "outbox",
		Name:      "batch_duration_seconds",
		Help:      "Time spent delivering and marking outbox batches.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
	})
)

func init() {
	prometheus.MustRegister(deliveredCounter, failedCounter, batchDuration)
}
