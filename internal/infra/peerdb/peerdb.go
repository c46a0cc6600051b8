// Package peerdb persists per-peer connection-failure history and
// answers admission queries for the connection manager. A peer that
// keeps failing is suppressed for a window that grows linearly with
// its consecutive-failure count.
package peerdb

import (
	"errors"
	"time"
)

// Remote is a peer identity as seen by the store. Only the URI string
// is ever read; it must be stable and deterministic across restarts.
type Remote interface {
	URI() string
}

// RawURI adapts an already-serialized peer identity to Remote, for
// admin surfaces that only hold the URI string.
type RawURI string

// URI returns the string unchanged.
func (u RawURI) URI() string { return string(u) }

// Clock supplies the current time. Stores never read the wall clock
// inline so tests can advance time deterministically.
type Clock func() time.Time

// FailureRecord is the persisted failure history for one peer.
type FailureRecord struct {
	PeerURI       string    `json:"peer_uri"`
	UnusableUntil time.Time `json:"unusable_until"`
	Reason        string    `json:"reason"`
	ErrorCount    int       `json:"error_count"`
}

// Store is the admission gate consulted before every dial.
//
// ShouldConnectTo reports whether a new connection attempt to the peer
// is permitted right now. A peer with no failure history is always
// admitted.
//
// RecordFailure notes one failed connection attempt. The peer becomes
// unusable until now + baseTimeout*errorCount, where errorCount is the
// cumulative consecutive-failure count — the window grows linearly,
// not exponentially. There is no success counterpart: a record only
// disappears via Forget.
//
// Close releases the underlying storage. Close is terminal: every
// operation on a closed store fails with ErrClosed.
type Store interface {
	ShouldConnectTo(remote Remote) (bool, error)
	RecordFailure(remote Remote, baseTimeout time.Duration, reason string) error
	Close() error
}

var (
	// ErrClosed is returned by every operation invoked after Close.
	ErrClosed = errors.New("peerdb: store is closed")

	// ErrMalformedSchema marks a database whose schema_version table is
	// missing its single row or carries an unsupported version. There is
	// no migration path; delete the file to recover.
	ErrMalformedSchema = errors.New("peerdb: malformed schema")

	// ErrUnknownPeer is returned by Forget when no record exists.
	ErrUnknownPeer = errors.New("peerdb: no record for peer")
)

// schemaVersion is the only on-disk layout this build understands.
const schemaVersion = 1

// timeLayout is ISO-8601 truncated to whole seconds, the format the
// unusable_until column is stored in.
const timeLayout = "2006-01-02T15:04:05"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}
