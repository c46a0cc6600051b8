package health

import (
	"context"
	"errors"
	"testing"
)

func TestChecker_AllHealthy(t *testing.T) {
	c := NewChecker(func() error { return nil }, t.TempDir())

	c.runAll(context.Background())

	if !c.IsHealthy() {
		t.Error("IsHealthy() = false, want true")
	}
	statuses := c.Statuses()
	if len(statuses) != 2 {
		t.Fatalf("len(statuses) = %d, want 2", len(statuses))
	}
	for _, s := range statuses {
		if !s.Healthy {
			t.Errorf("check %q unhealthy: %s", s.Name, s.Error)
		}
	}
}

func TestChecker_PeerDBFailure(t *testing.T) {
	pingErr := errors.New("store is closed")
	c := NewChecker(func() error { return pingErr }, t.TempDir())

	c.runAll(context.Background())

	if c.IsHealthy() {
		t.Error("IsHealthy() = true, want false")
	}
	for _, s := range c.Statuses() {
		if s.Name == "peerdb" {
			if s.Healthy {
				t.Error("peerdb check should be unhealthy")
			}
			if s.Error != pingErr.Error() {
				t.Errorf("peerdb error = %q, want %q", s.Error, pingErr.Error())
			}
		}
	}
}

func TestChecker_NoResultsYet(t *testing.T) {
	c := NewChecker(func() error { return nil }, t.TempDir())

	// Before the first run there are no statuses, which counts as healthy.
	if !c.IsHealthy() {
		t.Error("IsHealthy() = false before first run, want true")
	}
	if len(c.Statuses()) != 0 {
		t.Errorf("Statuses() = %d results before first run, want 0", len(c.Statuses()))
	}
}
