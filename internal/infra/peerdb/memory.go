package peerdb

import (
	"sort"
	"sync"
	"time"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore is the ephemeral Store variant. Each instance owns a
// private map: nothing survives Close, and two instances never observe
// each other's records even within the same process.
type MemoryStore struct {
	clock Clock

	mu      sync.Mutex
	records map[string]FailureRecord
	closed  bool
}

// NewMemory returns an empty, isolated in-memory store. A nil clock
// means the wall clock.
func NewMemory(clock Clock) *MemoryStore {
	if clock == nil {
		clock = time.Now
	}
	return &MemoryStore{clock: clock, records: make(map[string]FailureRecord)}
}

func (m *MemoryStore) String() string { return "<MemoryStore>" }

// ShouldConnectTo reports whether a new connection attempt to the peer
// is permitted at the current time.
func (m *MemoryStore) ShouldConnectTo(remote Remote) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false, ErrClosed
	}

	rec, ok := m.records[remote.URI()]
	if !ok {
		return true, nil
	}
	return !m.clock().UTC().Before(rec.UnusableUntil), nil
}

// RecordFailure upserts the failure record for the peer. Timestamps
// are truncated to whole seconds, matching the durable variant.
func (m *MemoryStore) RecordFailure(remote Remote, baseTimeout time.Duration, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	uri := remote.URI()
	now := m.clock().UTC()

	rec := m.records[uri] // zero value when absent
	rec.PeerURI = uri
	rec.ErrorCount++
	rec.Reason = reason
	rec.UnusableUntil = now.Add(baseTimeout * time.Duration(rec.ErrorCount)).Truncate(time.Second)
	m.records[uri] = rec
	return nil
}

// Records returns all failure records ordered by peer URI.
func (m *MemoryStore) Records() ([]FailureRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}

	records := make([]FailureRecord, 0, len(m.records))
	for _, rec := range m.records {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].PeerURI < records[j].PeerURI })
	return records, nil
}

// Forget removes the failure record for the peer. Returns
// ErrUnknownPeer if no record exists.
func (m *MemoryStore) Forget(remote Remote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	uri := remote.URI()
	if _, ok := m.records[uri]; !ok {
		return ErrUnknownPeer
	}
	delete(m.records, uri)
	return nil
}

// Close discards all state. Like the durable variant, Close is
// terminal and any later call fails with ErrClosed.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.closed = true
	m.records = nil
	return nil
}
