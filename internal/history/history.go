// Package history keeps an SQLite audit log of what was promoted into the
// asset store and appended to which catalogs.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"codeberg.org/snonux/cardprep/internal/assets"
)

// Event is one logged action
type Event struct {
	ID     int64
	Time   time.Time
	Action string // "promote" or "catalog"
	Word   string
	Slug   string
	Detail string // asset kind and status, or target/group
	Bytes  int64
}

// String formats the event for listing
func (e Event) String() string {
	return fmt.Sprintf("%s  %-8s %-20s %s", e.Time.Local().Format("2006-01-02 15:04:05"), e.Action, e.Word, e.Detail)
}

// Log is an open history database
type Log struct {
	db *sql.DB
}

// Open opens or creates the history database at path
func Open(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	l := &Log{db: db}
	if err := l.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return l, nil
}

// Close closes the database
func (l *Log) Close() error {
	return l.db.Close()
}

func (l *Log) createTables() error {
	_, err := l.db.Exec(`CREATE TABLE IF NOT EXISTS events (
		id integer PRIMARY KEY AUTOINCREMENT,
		at integer NOT NULL,
		action text NOT NULL,
		word text NOT NULL,
		slug text NOT NULL,
		detail text NOT NULL,
		bytes integer NOT NULL DEFAULT 0
	)`)
	return err
}

// RecordPromotion logs every entry of a promotion run in one transaction
func (l *Log) RecordPromotion(entries []assets.PromotionEntry) error {
	tx, err := l.db.Begin()
	if err != nil {
		return err
	}

	now := time.Now().UnixNano()
	for _, e := range entries {
		detail := fmt.Sprintf("%s %s", e.Kind, e.Status)
		if _, err := tx.Exec(
			`INSERT INTO events (at, action, word, slug, detail, bytes) VALUES (?, ?, ?, ?, ?, ?)`,
			now, "promote", e.Word, e.Slug, detail, e.Bytes,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record promotion of %s: %w", e.Word, err)
		}
	}

	return tx.Commit()
}

// RecordCatalog logs words appended to a catalog group
func (l *Log) RecordCatalog(target, group string, words []string) error {
	tx, err := l.db.Begin()
	if err != nil {
		return err
	}

	now := time.Now().UnixNano()
	detail := target + "/" + group
	for _, w := range words {
		if _, err := tx.Exec(
			`INSERT INTO events (at, action, word, slug, detail) VALUES (?, ?, ?, '', ?)`,
			now, "catalog", w, detail,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record catalog update for %s: %w", w, err)
		}
	}

	return tx.Commit()
}

// Recent returns up to limit events, newest first
func (l *Log) Recent(limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := l.db.Query(
		`SELECT id, at, action, word, slug, detail, bytes FROM events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var at int64
		if err := rows.Scan(&e.ID, &at, &e.Action, &e.Word, &e.Slug, &e.Detail, &e.Bytes); err != nil {
			return nil, err
		}
		e.Time = time.Unix(0, at)
		events = append(events, e)
	}
	return events, rows.Err()
}
