// Package audit keeps a SQLite log of snapshot load attempts so
// operators can see when the calendar data last refreshed and how often
// loads fail.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps sql.DB for the load-audit log.
type DB struct {
	*sql.DB
}

// NewDB opens the audit database at path and runs migrations.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return &DB{db}, nil
}

func createTables(db *sql.DB) error {
	query := `CREATE TABLE IF NOT EXISTS snapshot_loads (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		loaded_at DATETIME NOT NULL,
		result TEXT NOT NULL,
		facilities INTEGER NOT NULL DEFAULT 0,
		reservations INTEGER NOT NULL DEFAULT 0
	)`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("create snapshot_loads: %w", err)
	}
	return nil
}

// LoadRecord is one row of the load log.
type LoadRecord struct {
	ID           int64     `json:"id"`
	LoadedAt     time.Time `json:"loaded_at"`
	Result       string    `json:"result"`
	Facilities   int       `json:"facilities"`
	Reservations int       `json:"reservations"`
}

// RecordLoad appends one load attempt to the log.
func (db *DB) RecordLoad(ctx context.Context, result string, facilities, reservations int) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO snapshot_loads (loaded_at, result, facilities, reservations) VALUES (?, ?, ?, ?)`,
		time.Now().UTC(), result, facilities, reservations,
	)
	if err != nil {
		return fmt.Errorf("record load: %w", err)
	}
	return nil
}

// RecentLoads returns the newest limit entries, newest first.
func (db *DB) RecentLoads(ctx context.Context, limit int) ([]LoadRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.QueryContext(ctx,
		`SELECT id, loaded_at, result, facilities, reservations
		 FROM snapshot_loads ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query loads: %w", err)
	}
	defer rows.Close()

	var records []LoadRecord
	for rows.Next() {
		var r LoadRecord
		if err := rows.Scan(&r.ID, &r.LoadedAt, &r.Result, &r.Facilities, &r.Reservations); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
