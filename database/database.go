package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// Fixed-width so resolved_at sorts correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type Database struct {
	db *sql.DB
}

// LookupRecord is one answered lyrics request. It is an audit trail only;
// the resolver never reads it back.
type LookupRecord struct {
	ID              string
	RequestID       string
	Artist          string
	Track           string
	DurationSeconds *float64
	Source          string
	LineCount       int
	ElapsedMs       int64
	ResolvedAt      time.Time
}

type SourceCount struct {
	Source string
	Count  int
}

// New opens (and migrates) the history database at dbPath.
func New(dbPath string) (*Database, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	d := &Database{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Infof("History database initialized at %s", dbPath)
	return d, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS lookup_history (
			id TEXT PRIMARY KEY,
			request_id TEXT NOT NULL DEFAULT '',
			artist TEXT NOT NULL,
			track TEXT NOT NULL,
			duration_seconds REAL,
			source TEXT NOT NULL,
			line_count INTEGER NOT NULL DEFAULT 0,
			elapsed_ms INTEGER NOT NULL DEFAULT 0,
			resolved_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_lookup_history_resolved_at ON lookup_history(resolved_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_lookup_history_source ON lookup_history(source)`,
		`CREATE INDEX IF NOT EXISTS idx_lookup_history_request_id ON lookup_history(request_id)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}

	return nil
}

// RecordLookup inserts a lookup record, filling in ID and ResolvedAt when unset.
// RequestID is informational and may repeat across rows.
func (d *Database) RecordLookup(r LookupRecord) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.ResolvedAt.IsZero() {
		r.ResolvedAt = time.Now()
	}

	var duration sql.NullFloat64
	if r.DurationSeconds != nil {
		duration = sql.NullFloat64{Float64: *r.DurationSeconds, Valid: true}
	}

	_, err := d.db.Exec(
		`INSERT INTO lookup_history (id, request_id, artist, track, duration_seconds, source, line_count, elapsed_ms, resolved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.RequestID, r.Artist, r.Track, duration, r.Source, r.LineCount, r.ElapsedMs,
		r.ResolvedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to record lookup: %w", err)
	}
	return nil
}

// GetRecentLookups returns the most recent lookups, newest first.
func (d *Database) GetRecentLookups(limit int) ([]LookupRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := d.db.Query(
		`SELECT id, request_id, artist, track, duration_seconds, source, line_count, elapsed_ms, resolved_at
		 FROM lookup_history
		 ORDER BY resolved_at DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []LookupRecord
	for rows.Next() {
		var r LookupRecord
		var duration sql.NullFloat64
		var resolvedAt string
		if err := rows.Scan(&r.ID, &r.RequestID, &r.Artist, &r.Track, &duration, &r.Source,
			&r.LineCount, &r.ElapsedMs, &resolvedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		if duration.Valid {
			v := duration.Float64
			r.DurationSeconds = &v
		}
		r.ResolvedAt, err = time.Parse(timeLayout, resolvedAt)
		if err != nil {
			log.Warnf("failed to parse resolved_at timestamp '%s': %v", resolvedAt, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// GetSourceCounts returns how often each strategy answered, most frequent first.
func (d *Database) GetSourceCounts() ([]SourceCount, error) {
	rows, err := d.db.Query(
		`SELECT source, COUNT(*) AS n
		 FROM lookup_history
		 GROUP BY source
		 ORDER BY n DESC, source ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query source counts: %w", err)
	}
	defer rows.Close()

	var counts []SourceCount
	for rows.Next() {
		var c SourceCount
		if err := rows.Scan(&c.Source, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan source count row: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
