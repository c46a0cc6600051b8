// Package network provides the node-side connection manager.
//
// The Dialer owns the one peer-reputation store of the process: every
// outbound dial is gated on the store's failure history, and every
// failed dial is recorded back into it. Peers inside a backoff window
// are never dialed.
package network

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/lattice-network/lattice/internal/domain"
	"github.com/lattice-network/lattice/internal/infra/metrics"
	"github.com/lattice-network/lattice/internal/infra/peerdb"
)

// DialerConfig configures the connection manager.
type DialerConfig struct {
	BaseTimeout    time.Duration // backoff unit multiplied by a peer's failure count
	DialTimeout    time.Duration
	RedialInterval time.Duration
	StaticPeers    []domain.Node
	SelfURI        string // our own identity, never dialed (empty disables the check)
}

// DefaultDialerConfig returns the stock connection-manager settings.
func DefaultDialerConfig() DialerConfig {
	return DialerConfig{
		BaseTimeout:    10 * time.Second,
		DialTimeout:    5 * time.Second,
		RedialInterval: 30 * time.Second,
	}
}

// recordLister is satisfied by store variants that expose their records
// for the bad-peer gauge.
type recordLister interface {
	Records() ([]peerdb.FailureRecord, error)
}

// Dialer manages outbound peer connections behind the reputation gate.
type Dialer struct {
	config    DialerConfig
	store     peerdb.Store
	startedAt time.Time

	mu    sync.RWMutex
	conns map[string]net.Conn

	// dial is swappable for tests.
	dial func(ctx context.Context, network, addr string) (net.Conn, error)
}

// NewDialer creates a connection manager around the given reputation
// store. The dialer does not take ownership of the store; the daemon
// closes it on shutdown.
func NewDialer(cfg DialerConfig, store peerdb.Store) *Dialer {
	def := DefaultDialerConfig()
	if cfg.BaseTimeout <= 0 {
		cfg.BaseTimeout = def.BaseTimeout
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = def.DialTimeout
	}
	if cfg.RedialInterval <= 0 {
		cfg.RedialInterval = def.RedialInterval
	}

	nd := &net.Dialer{Timeout: cfg.DialTimeout}
	return &Dialer{
		config:    cfg,
		store:     store,
		startedAt: time.Now(),
		conns:     make(map[string]net.Conn),
		dial:      nd.DialContext,
	}
}

// Connect attempts an outbound connection to the peer. Peers inside a
// backoff window are rejected with domain.ErrPeerBackoff without any
// network traffic; a dial failure records exactly one failure against
// the peer before the error is returned.
func (d *Dialer) Connect(ctx context.Context, node domain.Node) (net.Conn, error) {
	if d.config.SelfURI != "" && node.URI() == d.config.SelfURI {
		return nil, domain.ErrSelfDial
	}

	ok, err := d.store.ShouldConnectTo(node)
	if err != nil {
		return nil, fmt.Errorf("admission check for %s: %w", node, err)
	}
	if !ok {
		metrics.DialsBlocked.Inc()
		return nil, fmt.Errorf("%s: %w", node, domain.ErrPeerBackoff)
	}

	attempt := uuid.NewString()
	metrics.DialsAttempted.Inc()
	start := time.Now()

	conn, err := d.dial(ctx, "tcp", node.Endpoint())
	if err != nil {
		metrics.DialFailures.WithLabelValues(reasonClass(err)).Inc()
		log.Printf("[network] dial %s failed (attempt %s): %v", node, attempt, err)
		if recErr := d.store.RecordFailure(node, d.config.BaseTimeout, err.Error()); recErr != nil {
			log.Printf("[network] record failure for %s: %v", node, recErr)
		} else {
			metrics.FailuresRecorded.Inc()
		}
		return nil, fmt.Errorf("dial %s: %w", node, err)
	}

	metrics.DialLatency.Observe(time.Since(start).Seconds())
	log.Printf("[network] connected to %s (attempt %s)", node, attempt)

	d.mu.Lock()
	if old, dup := d.conns[node.URI()]; dup {
		_ = old.Close()
	}
	d.conns[node.URI()] = conn
	n := len(d.conns)
	d.mu.Unlock()
	metrics.PeersConnected.Set(float64(n))

	return conn, nil
}

// Disconnect closes and forgets the connection to the peer, if any.
func (d *Dialer) Disconnect(node domain.Node) {
	d.mu.Lock()
	conn, ok := d.conns[node.URI()]
	if ok {
		delete(d.conns, node.URI())
	}
	n := len(d.conns)
	d.mu.Unlock()

	if ok {
		_ = conn.Close()
		metrics.PeersConnected.Set(float64(n))
		log.Printf("[network] disconnected from %s", node)
	}
}

// Connected reports whether a live connection to the peer is tracked.
func (d *Dialer) Connected(node domain.Node) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.conns[node.URI()]
	return ok
}

// ConnCount returns the number of tracked connections.
func (d *Dialer) ConnCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.conns)
}

// Run keeps connections to the configured static peers alive, retrying
// on every tick. Backoff-suppressed peers are skipped silently; the
// reputation store decides when they become dialable again.
func (d *Dialer) Run(ctx context.Context) {
	d.redialAll(ctx)

	ticker := time.NewTicker(d.config.RedialInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.closeAll()
			return
		case <-ticker.C:
			d.redialAll(ctx)
		}
	}
}

func (d *Dialer) redialAll(ctx context.Context) {
	for _, node := range d.config.StaticPeers {
		if d.Connected(node) {
			continue
		}
		if _, err := d.Connect(ctx, node); err != nil && !errors.Is(err, domain.ErrPeerBackoff) {
			log.Printf("[network] redial %s: %v", node, err)
		}
	}
	d.updateBadPeerGauge()
}

func (d *Dialer) updateBadPeerGauge() {
	lister, ok := d.store.(recordLister)
	if !ok {
		return
	}
	records, err := lister.Records()
	if err != nil {
		return
	}
	metrics.BadPeers.Set(float64(len(records)))
}

func (d *Dialer) closeAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for uri, conn := range d.conns {
		_ = conn.Close()
		delete(d.conns, uri)
	}
	metrics.PeersConnected.Set(0)
}

// Status is a point-in-time snapshot for the admin API and CLI.
type Status struct {
	Connected   int           `json:"connected"`
	StaticPeers int           `json:"static_peers"`
	Uptime      time.Duration `json:"uptime"`
}

// Status returns the dialer's current state.
func (d *Dialer) Status() Status {
	return Status{
		Connected:   d.ConnCount(),
		StaticPeers: len(d.config.StaticPeers),
		Uptime:      time.Since(d.startedAt),
	}
}

// reasonClass buckets dial errors for the failure counter.
func reasonClass(err error) string {
	var nerr net.Error
	switch {
	case errors.As(err, &nerr) && nerr.Timeout():
		return "timeout"
	case errors.Is(err, syscall.ECONNREFUSED):
		return "refused"
	default:
		return "other"
	}
}
