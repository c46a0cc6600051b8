package peerdb

import (
	"testing"
	"time"
)

// testNode is a minimal Remote — the store must treat identities as
// opaque strings.
type testNode string

func (n testNode) URI() string { return string(n) }

// fakeClock is a manually advanced time source.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestTimeRoundTrip(t *testing.T) {
	in := time.Date(2024, 3, 1, 12, 34, 56, 789000000, time.UTC)
	out, err := parseTime(formatTime(in))
	if err != nil {
		t.Fatalf("parseTime() error: %v", err)
	}
	want := in.Truncate(time.Second)
	if !out.Equal(want) {
		t.Errorf("round-trip = %v, want %v (whole seconds)", out, want)
	}
}

// mustConnect asserts the admission answer for a store variant.
func mustConnect(t *testing.T, s Store, n Remote, want bool) {
	t.Helper()
	ok, err := s.ShouldConnectTo(n)
	if err != nil {
		t.Fatalf("ShouldConnectTo(%s) error: %v", n.URI(), err)
	}
	if ok != want {
		t.Errorf("ShouldConnectTo(%s) = %v, want %v", n.URI(), ok, want)
	}
}
