// Package api provides the local admin HTTP server for the Lattice
// node: dialer status, the bad-peer list, and Prometheus metrics.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lattice-network/lattice/internal/infra/network"
	"github.com/lattice-network/lattice/internal/infra/peerdb"
)

// PeerStore is what the admin API needs from the reputation store.
// Both store variants satisfy it.
type PeerStore interface {
	Records() ([]peerdb.FailureRecord, error)
	Forget(remote peerdb.Remote) error
}

// Server is the Lattice admin HTTP API server.
type Server struct {
	peers          PeerStore
	dialer         *network.Dialer
	metricsEnabled bool
}

// NewServer creates a new API server.
func NewServer(peers PeerStore, dialer *network.Dialer) *Server {
	return &Server{peers: peers, dialer: dialer}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/peers/bad", s.handleListBadPeers)
		r.Delete("/peers/bad", s.handleForgetPeer)
	})

	// Prometheus metrics endpoint
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.dialer.Status())
}

func (s *Server) handleListBadPeers(w http.ResponseWriter, r *http.Request) {
	records, err := s.peers.Records()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []peerdb.FailureRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// handleForgetPeer clears the failure record named by the ?uri= query
// parameter, re-admitting the peer immediately.
func (s *Server) handleForgetPeer(w http.ResponseWriter, r *http.Request) {
	uri := r.URL.Query().Get("uri")
	if uri == "" {
		writeError(w, http.StatusBadRequest, "missing uri parameter")
		return
	}

	err := s.peers.Forget(peerdb.RawURI(uri))
	switch {
	case errors.Is(err, peerdb.ErrUnknownPeer):
		writeError(w, http.StatusNotFound, "no record for peer")
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, map[string]string{"forgotten": uri})
	}
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}
