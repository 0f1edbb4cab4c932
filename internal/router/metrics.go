package router

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the router's Prometheus collectors.
type Metrics struct {
	Routed        *prometheus.CounterVec
	Learned       *prometheus.CounterVec
	RemoteErrors  prometheus.Counter
	RemoteLatency prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Routed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gatekeeper",
			Name:      "queries_total",
			Help:      "Queries routed, by category and origin.",
		}, []string{"category", "origin"}),
		Learned: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gatekeeper",
			Name:      "learning_events_total",
			Help:      "Learning events applied, by channel.",
		}, []string{"channel"}),
		RemoteErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: "gatekeeper",
			Name:      "remote_errors_total",
			Help:      "Failed calls to the external model.",
		}),
		RemoteLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "gatekeeper",
			Name:      "remote_latency_seconds",
			Help:      "Latency of external model calls.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
