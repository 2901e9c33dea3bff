package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/allot/internal/alloc"
	"github.com/theirongolddev/allot/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// SQLiteStore keeps records in a SQLite database, one row per portfolio and
// one row per line item.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates the database at the given path.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening portfolio db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db, path: dbPath}, nil
}

// Path returns the database file.
func (s *SQLiteStore) Path() string { return s.path }

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save replaces the record stored under key in a single transaction.
func (s *SQLiteStore) Save(key string, rec alloc.Record) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.Exec(`INSERT INTO portfolios (record_key, total_funds, id_counter, saved_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(record_key) DO UPDATE SET
			total_funds = excluded.total_funds,
			id_counter = excluded.id_counter,
			saved_at = excluded.saved_at`,
		key, rec.TotalFunds, rec.ProjectIDCounter, now,
	)
	if err != nil {
		return fmt.Errorf("saving portfolio: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM line_items WHERE record_key = ?", key); err != nil {
		return fmt.Errorf("clearing line items: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO line_items
		(record_key, position, item_id, name, amount, percentage, category, color)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i, it := range rec.Projects {
		if _, err := stmt.Exec(key, i, it.ID, it.Name, it.Amount, it.Percentage, string(it.Category), it.Color); err != nil {
			return fmt.Errorf("saving line item %s: %w", it.ID, err)
		}
	}

	return tx.Commit()
}

// Load reads the record stored under key.
func (s *SQLiteStore) Load(key string) (alloc.Record, error) {
	var rec alloc.Record
	err := s.db.QueryRow("SELECT total_funds, id_counter FROM portfolios WHERE record_key = ?", key).
		Scan(&rec.TotalFunds, &rec.ProjectIDCounter)
	if errors.Is(err, sql.ErrNoRows) {
		return alloc.Record{}, ErrNoRecord
	}
	if err != nil {
		return alloc.Record{}, fmt.Errorf("loading portfolio: %w", err)
	}

	rows, err := s.db.Query(`SELECT item_id, name, amount, percentage, category, color
		FROM line_items WHERE record_key = ? ORDER BY position`, key)
	if err != nil {
		return alloc.Record{}, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var it model.LineItem
		var category string
		if err := rows.Scan(&it.ID, &it.Name, &it.Amount, &it.Percentage, &category, &it.Color); err != nil {
			return alloc.Record{}, err
		}
		if c, ok := model.ParseCategory(category); ok {
			it.Category = c
		} else {
			it.Category = model.DefaultCategory
		}
		if !model.ValidColor(it.Color) {
			it.Color = model.Palette[0]
		}
		it.Percentage = alloc.ClampPercentage(it.Percentage)
		rec.Projects = append(rec.Projects, it)
	}
	return rec, rows.Err()
}

// Keys lists stored record keys in sorted order.
func (s *SQLiteStore) Keys() ([]string, error) {
	rows, err := s.db.Query("SELECT record_key FROM portfolios ORDER BY record_key")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// ItemCount returns the number of stored line items across all records.
func (s *SQLiteStore) ItemCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM line_items").Scan(&count)
	return count, err
}
