// Package storage optionally persists the converged routing table to
// PostgreSQL, batching inserts the way the teacher's EventWriter
// batches BGP event writes.
package storage

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/ajimenezvargas/bgp-route-sim/internal/bgp"
	"github.com/ajimenezvargas/bgp-route-sim/internal/prefix"
	_ "github.com/lib/pq"
)

const batchSize = 500

// Row is one (AS, prefix) routing-table entry to persist.
type Row struct {
	ASN    bgp.ASN
	Prefix prefix.Prefix
	ASPath string
}

// Sink batch-writes Rows to a "bgpsim_ribs" table. Unlike the
// teacher's EventWriter, there is no background goroutine: a
// simulation run is a single batch job, not a live stream, so WriteAll
// runs the teacher's transaction-per-batch technique synchronously
// once convergence is reached.
type Sink struct {
	db *sql.DB
}

// Open connects to databaseURL, verifies the connection, and ensures
// the destination table exists.
func Open(databaseURL string) (*Sink, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS bgpsim_ribs (
			run_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
			asn        BIGINT NOT NULL,
			prefix     TEXT NOT NULL,
			as_path    TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, err
	}

	slog.Info("storage: connected", "url", databaseURL)
	return &Sink{db: db}, nil
}

// WriteAll persists rows in batches of batchSize, one transaction per
// batch, logging but not aborting on a batch failure so that a single
// bad row does not discard the rest of the run's output.
func (s *Sink) WriteAll(rows []Row) error {
	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := s.writeBatch(rows[start:end]); err != nil {
			slog.Warn("storage: batch write failed", "error", err, "offset", start)
		}
	}
	return nil
}

func (s *Sink) writeBatch(batch []Row) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO bgpsim_ribs (asn, prefix, as_path) VALUES ($1, $2, $3)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range batch {
		if _, err := stmt.Exec(int64(row.ASN), row.Prefix.String(), row.ASPath); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Close releases the underlying connection pool.
func (s *Sink) Close() error {
	return s.db.Close()
}
