package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Proof lifecycle metrics
	ProofsIssued       *prometheus.CounterVec
	IssuanceRejected   *prometheus.CounterVec
	Redemptions        *prometheus.CounterVec
	PendingRequests    prometheus.Gauge
	IssuanceLatency    prometheus.Histogram
	RedemptionLatency  prometheus.Histogram
	ScanFailures       *prometheus.CounterVec
	IdentitiesAttested prometheus.Counter
	ActiveSessions     prometheus.Gauge
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		ProofsIssued: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "attesta_proofs_issued_total",
			Help: "Total number of verification requests issued, labeled by purpose",
		}, []string{"purpose"}),
		IssuanceRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "attesta_issuance_rejected_total",
			Help: "Total number of rejected issuance attempts, labeled by reason",
		}, []string{"reason"}),
		Redemptions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "attesta_redemptions_total",
			Help: "Total number of redemption attempts, labeled by outcome",
		}, []string{"outcome"}),
		PendingRequests: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "attesta_pending_requests",
			Help: "Current number of pending verification requests",
		}),
		IssuanceLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "attesta_issuance_latency_seconds",
			Help:    "Latency of proof issuance in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		RedemptionLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "attesta_redemption_latency_seconds",
			Help:    "Latency of token redemption in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		ScanFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "attesta_scan_failures_total",
			Help: "Total number of failed scan submissions, labeled by reason",
		}, []string{"reason"}),
		IdentitiesAttested: promauto.NewCounter(prometheus.CounterOpts{
			Name: "attesta_identities_attested_total",
			Help: "Total number of identities attested by the external authority",
		}),
		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "attesta_active_sessions",
			Help: "Current number of active holder sessions",
		}),
	}
}
