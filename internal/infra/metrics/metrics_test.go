package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func gatheredNames(t *testing.T) map[string]bool {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	return names
}

func TestDialMetrics(t *testing.T) {
	DialsAttempted.Inc()
	DialsBlocked.Inc()
	DialFailures.WithLabelValues("refused").Inc()
	DialLatency.Observe(0.05)

	names := gatheredNames(t)
	expected := []string{
		"lattice_dials_attempted_total",
		"lattice_dials_blocked_total",
		"lattice_dial_failures_total",
		"lattice_dial_latency_seconds",
	}
	for _, name := range expected {
		if !names[name] {
			t.Errorf("metric %q not found", name)
		}
	}
}

func TestPeerMetrics(t *testing.T) {
	PeersConnected.Set(4)
	BadPeers.Set(2)
	FailuresRecorded.Inc()

	names := gatheredNames(t)
	expected := []string{
		"lattice_peers_connected",
		"lattice_bad_peers",
		"lattice_failures_recorded_total",
	}
	for _, name := range expected {
		if !names[name] {
			t.Errorf("metric %q not found", name)
		}
	}
}

func TestHealthMetrics(t *testing.T) {
	HealthCheckStatus.WithLabelValues("peerdb").Set(1)
	HealthCheckStatus.WithLabelValues("disk_space").Set(0)

	if !gatheredNames(t)["lattice_health_check_status"] {
		t.Error("lattice_health_check_status not found")
	}
}

func TestAllMetricsGatherable(t *testing.T) {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}

	latticeMetrics := 0
	for _, f := range families {
		if strings.HasPrefix(f.GetName(), "lattice_") {
			latticeMetrics++
		}
	}
	if latticeMetrics < 7 {
		t.Errorf("expected at least 7 lattice_ metric families, got %d", latticeMetrics)
	}
}
