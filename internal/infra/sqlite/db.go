// Package sqlite is the durable local store: the append-only transaction
// ledger, residents, the singleton residence config, and the sync outbox.
// Writes are serialized (single writer at a time); reads are concurrent and
// observe whole rows only.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"
)

// DB wraps the sqlite handle and the writer lock.
type DB struct {
	db *sql.DB
	mu sync.Mutex // serializes writes; sqlite WAL handles reader concurrency
}

// Open creates (or opens) the database under dir and runs migrations.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	path := filepath.Join(dir, "syndic.db")

	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db := &DB{db: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.db.Close()
}

// migrate applies the schema. Each statement runs on its own (sqlite
// executes one at a time).
func (db *DB) migrate() error {
	for _, stmt := range Migrations() {
		if _, err := db.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

// Migrations returns the schema migration statements.
func Migrations() []string {
	return []string{
		// Append-only transaction ledger. No UPDATE or DELETE path except
		// the remote-pull upsert. Timestamps are unix milliseconds,
		// amounts are decimal strings.
		`CREATE TABLE IF NOT EXISTS transactions (
			id             TEXT PRIMARY KEY,
			user_id        TEXT,
			amount         TEXT NOT NULL,
			type           TEXT NOT NULL,
			label          TEXT NOT NULL DEFAULT '',
			payment_method TEXT,
			provider       TEXT,
			category       TEXT,
			charge_month   TEXT NOT NULL DEFAULT '',
			occurred_at    INTEGER NOT NULL,
			created_at     INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tx_user ON transactions(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_tx_type ON transactions(type)`,
		`CREATE INDEX IF NOT EXISTS idx_tx_occurred ON transactions(occurred_at)`,

		// At most one generated charge per resident per calendar month.
		// charge_month is set only by the monthly generator, so the index
		// closes its check-then-create race without constraining manual
		// cotisation entries (corrections, back-charges).
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_tx_monthly_charge
			ON transactions(user_id, charge_month) WHERE charge_month <> ''`,

		// Residents
		`CREATE TABLE IF NOT EXISTS residents (
			id               TEXT PRIMARY KEY,
			email            TEXT NOT NULL DEFAULT '',
			first_name       TEXT NOT NULL DEFAULT '',
			last_name        TEXT NOT NULL DEFAULT '',
			role             TEXT NOT NULL,
			phone            TEXT NOT NULL DEFAULT '',
			apartment_number TEXT NOT NULL DEFAULT '',
			pin_hash         TEXT NOT NULL DEFAULT '',
			created_at       INTEGER NOT NULL,
			updated_at       INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_residents_role ON residents(role)`,
		`CREATE INDEX IF NOT EXISTS idx_residents_apartment ON residents(apartment_number)`,

		// Singleton residence config, keyed by the fixed config id.
		`CREATE TABLE IF NOT EXISTS residence_config (
			id                 TEXT PRIMARY KEY,
			residence_name     TEXT NOT NULL DEFAULT '',
			address            TEXT NOT NULL DEFAULT '',
			monthly_fee        TEXT NOT NULL DEFAULT '0',
			concierge_salary   TEXT NOT NULL DEFAULT '0',
			cleaning_cost      TEXT NOT NULL DEFAULT '0',
			electricity_cost   TEXT NOT NULL DEFAULT '0',
			water_cost         TEXT NOT NULL DEFAULT '0',
			elevator_cost      TEXT NOT NULL DEFAULT '0',
			insurance_cost     TEXT NOT NULL DEFAULT '0',
			misc_cost          TEXT NOT NULL DEFAULT '0',
			total_apartments   INTEGER NOT NULL DEFAULT 0,
			currency           TEXT NOT NULL DEFAULT 'DH',
			master_pin_hash    TEXT NOT NULL DEFAULT '',
			syndic_pin_hash    TEXT NOT NULL DEFAULT '',
			concierge_pin_hash TEXT NOT NULL DEFAULT '',
			setup_complete     INTEGER NOT NULL DEFAULT 0,
			created_at         INTEGER NOT NULL,
			updated_at         INTEGER NOT NULL
		)`,

		// Sync outbox: one row per deferred remote delivery. Deduplicated
		// per entity — re-enqueueing an already pending entity keeps the
		// existing job.
		`CREATE TABLE IF NOT EXISTS sync_jobs (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			kind             TEXT NOT NULL,
			entity_id        TEXT NOT NULL,
			attempts         INTEGER NOT NULL DEFAULT 0,
			next_eligible_at INTEGER NOT NULL,
			last_error       TEXT NOT NULL DEFAULT '',
			created_at       INTEGER NOT NULL,
			UNIQUE(kind, entity_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sync_due ON sync_jobs(next_eligible_at)`,
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i > 0 {
		return s[:i]
	}
	return s
}

// isUniqueViolation reports whether err is a sqlite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
