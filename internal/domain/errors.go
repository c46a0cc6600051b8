package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Dial errors
	ErrPeerBackoff = errors.New("peer is in a backoff window — connection suppressed")
	ErrSelfDial    = errors.New("refusing to dial our own node")

	// Identity errors
	ErrInvalidNodeURI = errors.New("invalid node URI")
)
