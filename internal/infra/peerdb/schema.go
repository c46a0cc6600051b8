package peerdb

import (
	"database/sql"
	"fmt"
)

// checkSchema validates or initializes the on-disk layout before the
// store serves a single query. A version mismatch is fatal: there is
// no migration logic, only the one supported version.
func checkSchema(db *sql.DB) error {
	var count int
	err := db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_version'`,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("inspect schema: %w", err)
	}
	if count == 0 {
		return createSchema(db)
	}
	return verifySchemaVersion(db)
}

// createSchema sets up a fresh store: the failure-record table and the
// singleton version row, in one transaction.
func createSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE bad_peers (
			peer_id        TEXT PRIMARY KEY,
			unusable_until TEXT NOT NULL,
			reason         TEXT NOT NULL,
			error_count    INTEGER NOT NULL
		)`,
		`CREATE TABLE schema_version (version INTEGER NOT NULL)`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?)`, schemaVersion); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return tx.Commit()
}

// verifySchemaVersion requires exactly one schema_version row holding
// the supported version.
func verifySchemaVersion(db *sql.DB) error {
	rows, err := db.Query(`SELECT version FROM schema_version`)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return fmt.Errorf("read schema version: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if len(versions) != 1 {
		return fmt.Errorf("%w: expected one schema_version row, got %d", ErrMalformedSchema, len(versions))
	}
	if versions[0] != schemaVersion {
		return fmt.Errorf("%w: version %d is unsupported (want %d)", ErrMalformedSchema, versions[0], schemaVersion)
	}
	return nil
}
