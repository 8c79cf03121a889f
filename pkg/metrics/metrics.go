package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Notifications delivered, by category and channel",
		},
		[]string{"category", "channel"},
	)

	NotificationsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_skipped_total",
			Help: "Notifications suppressed by the 24h dedup guard",
		},
		[]string{"category"},
	)

	NotificationsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_failed_total",
			Help: "Candidates where every requested channel failed",
		},
		[]string{"category"},
	)

	PredictRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "predict_run_duration_seconds",
			Help:    "Wall-clock duration of a full prediction run",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~200s
		},
	)

	PredictCandidates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predict_candidates_total",
			Help: "Candidates produced per prediction task",
		},
		[]string{"task"},
	)
)

// ObserveRun records the duration of one prediction run.
func ObserveRun(d time.Duration) {
	PredictRunDuration.Observe(d.Seconds())
}
