package peerdb

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore is the durable Store variant, bound to a single database
// file. It exclusively owns its connection handle; the handle is
// released on Close and never shared across instances.
type SQLiteStore struct {
	path  string
	clock Clock

	mu     sync.Mutex
	db     *sql.DB
	closed bool
}

// Open creates or opens the peer database at path. The schema is
// verified — or created, on first-ever open — before the store serves
// a single query; on any schema or I/O error the handle is released
// and the error propagates. A nil clock means the wall clock.
func Open(path string, clock Clock) (*SQLiteStore, error) {
	if clock == nil {
		clock = time.Now
	}

	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open peer database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping peer database: %w", err)
	}

	// SQLite is single-writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := checkSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{path: path, clock: clock, db: db}, nil
}

func (s *SQLiteStore) String() string {
	return fmt.Sprintf("<SQLiteStore(%s)>", s.path)
}

// ShouldConnectTo reports whether a new connection attempt to the peer
// is permitted at the current time.
func (s *SQLiteStore) ShouldConnectTo(remote Remote) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrClosed
	}

	uri := remote.URI()
	var untilStr string
	err := s.db.QueryRow(
		`SELECT unusable_until FROM bad_peers WHERE peer_id = ?`, uri,
	).Scan(&untilStr)
	if err == sql.ErrNoRows {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("query peer %s: %w", uri, err)
	}

	until, err := parseTime(untilStr)
	if err != nil {
		return false, fmt.Errorf("decode unusable_until for %s: %w", uri, err)
	}
	return !s.clock().UTC().Before(until), nil
}

// RecordFailure upserts the failure record for the peer inside a
// single transaction, so a crash mid-write cannot leave a partially
// updated row.
func (s *SQLiteStore) RecordFailure(remote Remote, baseTimeout time.Duration, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	uri := remote.URI()
	now := s.clock().UTC()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("record failure for %s: %w", uri, err)
	}
	defer tx.Rollback()

	var count int
	err = tx.QueryRow(`SELECT error_count FROM bad_peers WHERE peer_id = ?`, uri).Scan(&count)
	switch {
	case err == sql.ErrNoRows:
		until := now.Add(baseTimeout)
		_, err = tx.Exec(
			`INSERT INTO bad_peers (peer_id, unusable_until, reason, error_count)
			 VALUES (?, ?, ?, ?)`,
			uri, formatTime(until), reason, 1,
		)
	case err == nil:
		count++
		until := now.Add(baseTimeout * time.Duration(count))
		_, err = tx.Exec(
			`UPDATE bad_peers SET unusable_until = ?, reason = ?, error_count = ?
			 WHERE peer_id = ?`,
			formatTime(until), reason, count, uri,
		)
	}
	if err != nil {
		return fmt.Errorf("record failure for %s: %w", uri, err)
	}
	return tx.Commit()
}

// Records returns all failure records ordered by peer URI.
func (s *SQLiteStore) Records() ([]FailureRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	rows, err := s.db.Query(
		`SELECT peer_id, unusable_until, reason, error_count FROM bad_peers ORDER BY peer_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list bad peers: %w", err)
	}
	defer rows.Close()

	var records []FailureRecord
	for rows.Next() {
		var rec FailureRecord
		var untilStr string
		if err := rows.Scan(&rec.PeerURI, &untilStr, &rec.Reason, &rec.ErrorCount); err != nil {
			return nil, fmt.Errorf("list bad peers: %w", err)
		}
		if rec.UnusableUntil, err = parseTime(untilStr); err != nil {
			return nil, fmt.Errorf("decode unusable_until for %s: %w", rec.PeerURI, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Forget removes the failure record for the peer, re-admitting it
// immediately. Returns ErrUnknownPeer if no record exists.
func (s *SQLiteStore) Forget(remote Remote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	uri := remote.URI()
	result, err := s.db.Exec(`DELETE FROM bad_peers WHERE peer_id = ?`, uri)
	if err != nil {
		return fmt.Errorf("forget %s: %w", uri, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrUnknownPeer
	}
	return nil
}

// Ping checks database connectivity for health checks.
func (s *SQLiteStore) Ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return s.db.Ping()
}

// Close releases the database handle. Close is terminal: the store
// cannot be reopened, and any later call — including another Close —
// fails with ErrClosed.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.closed = true
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close peer database: %w", err)
	}
	return nil
}
