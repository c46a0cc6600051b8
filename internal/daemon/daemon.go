package daemon

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/lattice-network/lattice/internal/api"
	"github.com/lattice-network/lattice/internal/domain"
	"github.com/lattice-network/lattice/internal/health"
	_ "github.com/lattice-network/lattice/internal/infra/metrics" // Register Prometheus metrics
	"github.com/lattice-network/lattice/internal/infra/network"
	"github.com/lattice-network/lattice/internal/infra/peerdb"
)

// ReputationStore is the full store surface the daemon wires together:
// the admission-gate contract plus the admin operations the API and
// CLI expose. Both peerdb variants satisfy it.
type ReputationStore interface {
	peerdb.Store
	Records() ([]peerdb.FailureRecord, error)
	Forget(remote peerdb.Remote) error
}

// Daemon is the core Lattice runtime. It wires together all services
// and exclusively owns the one reputation store of the process.
type Daemon struct {
	Config Config
	Peers  ReputationStore
	Dialer *network.Dialer
	Server *api.Server
	Health *health.Checker
	cancel context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration. A fatal
// schema or storage error at startup aborts initialization rather than
// running with unreliable reputation data.
func NewWithConfig(cfg Config) (*Daemon, error) {
	dataDir := cfg.Node.DataDir
	if dataDir == "" {
		dataDir = latticeHome()
	}

	var (
		store ReputationStore
		ping  func() error
	)
	if cfg.Peers.Ephemeral {
		mem := peerdb.NewMemory(nil)
		store = mem
		ping = func() error { return nil }
	} else {
		if err := os.MkdirAll(dataDir, 0700); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		sq, err := peerdb.Open(filepath.Join(dataDir, "peers.db"), nil)
		if err != nil {
			return nil, fmt.Errorf("open peer database: %w", err)
		}
		store = sq
		ping = sq.Ping
	}

	static, err := parseStaticPeers(cfg.Peers.Static)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	dialerCfg := network.DialerConfig{
		BaseTimeout:    parseDuration(cfg.Peers.BaseTimeout, 10*time.Second),
		DialTimeout:    parseDuration(cfg.Peers.DialTimeout, 5*time.Second),
		RedialInterval: parseDuration(cfg.Peers.RedialInterval, 30*time.Second),
		StaticPeers:    static,
	}
	dialer := network.NewDialer(dialerCfg, store)

	srv := api.NewServer(store, dialer)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	return &Daemon{
		Config: cfg,
		Peers:  store,
		Dialer: dialer,
		Server: srv,
		Health: health.NewChecker(ping, dataDir),
	}, nil
}

// Serve starts the background loops and the admin HTTP server, and
// blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	go d.Health.Run(ctx)
	go d.Dialer.Run(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		_ = httpServer.Shutdown(shutdownCtx)
		// The store closes last: the dialer loop has stopped by now and
		// nothing may write after the handle is released.
		if err := d.Peers.Close(); err != nil {
			log.Printf("[daemon] close peer database: %v", err)
		}
	}()

	fmt.Printf("Lattice serving on http://%s\n", addr)
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts down all daemon resources. Used by one-shot CLI commands
// that never call Serve.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
		return // Serve's shutdown path owns the store
	}
	if d.Peers != nil {
		_ = d.Peers.Close()
	}
}

// parseStaticPeers converts configured enode URIs into nodes.
func parseStaticPeers(uris []string) ([]domain.Node, error) {
	nodes := make([]domain.Node, 0, len(uris))
	for _, uri := range uris {
		node, err := domain.ParseNode(uri)
		if err != nil {
			return nil, fmt.Errorf("static peer: %w", err)
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// parseDuration parses a duration string, returning a fallback on error.
func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
