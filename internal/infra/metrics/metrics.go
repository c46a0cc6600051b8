// Package metrics provides Prometheus metrics for the Lattice node —
// dial outcomes, backoff suppressions, and reputation-store state.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Dialing ────────────────────────────────────────────────────────────────

// DialsAttempted counts connection attempts that passed the admission gate.
var DialsAttempted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "lattice",
	Name:      "dials_attempted_total",
	Help:      "Total outbound connection attempts.",
})

// DialsBlocked counts attempts suppressed by the reputation backoff window.
var DialsBlocked = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "lattice",
	Name:      "dials_blocked_total",
	Help:      "Total dials suppressed because the peer is in a backoff window.",
})

// DialFailures counts failed dials by reason class.
var DialFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "lattice",
	Name:      "dial_failures_total",
	Help:      "Total failed connection attempts.",
}, []string{"reason"})

// DialLatency tracks successful dial duration in seconds.
var DialLatency = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "lattice",
	Name:      "dial_latency_seconds",
	Help:      "Successful dial duration in seconds.",
	Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
})

// ─── Peers ──────────────────────────────────────────────────────────────────

// PeersConnected tracks currently established outbound connections.
var PeersConnected = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "lattice",
	Name:      "peers_connected",
	Help:      "Number of currently connected peers.",
})

// BadPeers tracks peers with an active failure record.
var BadPeers = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "lattice",
	Name:      "bad_peers",
	Help:      "Number of peers with a recorded failure history.",
})

// ─── Reputation store ───────────────────────────────────────────────────────

// FailuresRecorded counts writes to the reputation store.
var FailuresRecorded = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "lattice",
	Name:      "failures_recorded_total",
	Help:      "Total peer failures recorded in the reputation store.",
})

// ─── Health ─────────────────────────────────────────────────────────────────

// HealthCheckStatus tracks health check results (1=healthy, 0=unhealthy).
var HealthCheckStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "lattice",
	Name:      "health_check_status",
	Help:      "Health check result per component (1=healthy, 0=unhealthy).",
}, []string{"check"})
