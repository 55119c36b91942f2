package journal

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists entries to SQLite.
// It is suitable for single-process use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore opens (or creates) a journal database.
// The path should be a file path (e.g., "./journal.db") or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &StoreError{Op: "open", Err: err}
	}

	// A single connection keeps ":memory:" databases coherent and serialises
	// writers, which SQLite does anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, &StoreError{Op: "open", Err: err}
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS deliveries (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id TEXT NOT NULL,
			event_type TEXT NOT NULL,
			bus TEXT NOT NULL,
			subscriber TEXT NOT NULL,
			mode TEXT NOT NULL,
			payload BLOB,
			delivered_at TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, &StoreError{Op: "open", Err: err}
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_deliveries_bus_type
		ON deliveries(bus, event_type)
	`); err != nil {
		db.Close()
		return nil, &StoreError{Op: "open", Err: err}
	}

	return &SQLiteStore{db: db}, nil
}

// Append implements Store.
func (s *SQLiteStore) Append(ctx context.Context, e Entry) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrStoreClosed
	}

	deliveredAt := e.DeliveredAt
	if deliveredAt.IsZero() {
		deliveredAt = time.Now()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO deliveries (event_id, event_type, bus, subscriber, mode, payload, delivered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.EventID, e.EventType, e.Bus, e.Subscriber, e.Mode, e.Payload,
		deliveredAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, &StoreError{Op: "append", Err: err}
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return 0, &StoreError{Op: "append", Err: err}
	}
	return seq, nil
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context, f Filter) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	var (
		where []string
		args  []any
	)
	if f.Bus != "" {
		where = append(where, "bus = ?")
		args = append(args, f.Bus)
	}
	if f.EventType != "" {
		where = append(where, "event_type = ?")
		args = append(args, f.EventType)
	}

	query := `SELECT seq, event_id, event_type, bus, subscriber, mode, payload, delivered_at FROM deliveries`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY seq"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &StoreError{Op: "list", Err: err}
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		var deliveredAt string
		if err := rows.Scan(&e.Seq, &e.EventID, &e.EventType, &e.Bus, &e.Subscriber,
			&e.Mode, &e.Payload, &deliveredAt); err != nil {
			return nil, &StoreError{Op: "list", Err: err}
		}
		e.DeliveredAt, _ = time.Parse(time.RFC3339Nano, deliveredAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "list", Err: err}
	}
	return entries, nil
}

// Count implements Store.
func (s *SQLiteStore) Count(ctx context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `SELECT bus, COUNT(*) FROM deliveries GROUP BY bus`)
	if err != nil {
		return nil, &StoreError{Op: "count", Err: err}
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var bus string
		var n int
		if err := rows.Scan(&bus, &n); err != nil {
			return nil, &StoreError{Op: "count", Err: err}
		}
		counts[bus] = n
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "count", Err: err}
	}
	return counts, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}
