package psync

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the counters of one FullProducer.
type Metrics struct {
	SyncInterestsSent     prometheus.Counter
	SyncInterestsReceived prometheus.Counter
	SyncRepliesSent       prometheus.Counter
	NamesPublished        prometheus.Counter
	NamesReceived         prometheus.Counter
	DecodeFailures        prometheus.Counter
	PendingInterests      prometheus.Gauge
}

// NewMetrics registers the producer metrics with reg.
// A nil reg creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SyncInterestsSent: f.NewCounter(prometheus.CounterOpts{
			Namespace: "psync",
			Name:      "sync_interests_sent_total",
			Help:      "Sync Interests expressed.",
		}),
		SyncInterestsReceived: f.NewCounter(prometheus.CounterOpts{
			Namespace: "psync",
			Name:      "sync_interests_received_total",
			Help:      "Sync Interests received from peers.",
		}),
		SyncRepliesSent: f.NewCounter(prometheus.CounterOpts{
			Namespace: "psync",
			Name:      "sync_replies_sent_total",
			Help:      "Sync replies published.",
		}),
		NamesPublished: f.NewCounter(prometheus.CounterOpts{
			Namespace: "psync",
			Name:      "names_published_total",
			Help:      "Names published by this node.",
		}),
		NamesReceived: f.NewCounter(prometheus.CounterOpts{
			Namespace: "psync",
			Name:      "names_received_total",
			Help:      "New names learned from peers.",
		}),
		DecodeFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: "psync",
			Name:      "iblt_decode_failures_total",
			Help:      "IBLT differences that could not be listed.",
		}),
		PendingInterests: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "psync",
			Name:      "pending_interests",
			Help:      "Sync Interests waiting for new names.",
		}),
	}
}
