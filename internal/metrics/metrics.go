package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	EmailsSent      prometheus.Counter
	EmailsFailed    prometheus.Counter
	TasksMalformed  prometheus.Counter
	EmailQueueDepth prometheus.Gauge

	PushesDelivered prometheus.Counter
	PushesDropped   prometheus.Counter
	LiveConnections prometheus.Gauge

	RankingRuns *prometheus.CounterVec
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EmailsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "verification_emails_sent_total",
			Help: "Total number of verification emails delivered to the mail transport.",
		}),
		EmailsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "verification_emails_failed_total",
			Help: "Total number of email tasks dropped after a send or record failure.",
		}),
		TasksMalformed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "email_tasks_malformed_total",
			Help: "Total number of queue payloads dropped because they could not be decoded.",
		}),
		EmailQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "email_queue_depth",
			Help: "Number of tasks waiting in the durable email queue after the last drain pass.",
		}),

		PushesDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notification_pushes_delivered_total",
			Help: "Total number of notifications handed to a live connection binding.",
		}),
		PushesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notification_pushes_dropped_total",
			Help: "Total number of pushes dropped because a client's buffer was full.",
		}),
		LiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "live_connections",
			Help: "Current number of bound real-time connections.",
		}),

		RankingRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ranking_runs_total",
			Help: "Total aggregation scheduler runs by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.EmailsSent,
		m.EmailsFailed,
		m.TasksMalformed,
		m.EmailQueueDepth,
		m.PushesDelivered,
		m.PushesDropped,
		m.LiveConnections,
		m.RankingRuns,
	)

	return m
}

// RecordRankingRun feeds the scheduler's OnRun hook.
func (m *Metrics) RecordRankingRun(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	m.RankingRuns.WithLabelValues(result).Inc()
}
