// SPDX-License-Identifier: MIT

package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver (pure Go, no CGO)

	"github.com/jamaisvu/jamaisvu/internal/recording"
)

// SQLiteStore is the alternative document-database backend: a single table
// holding JSON document bodies keyed by filename.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) a SQLite-backed document store at dbPath.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_synchronous=NORMAL", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		filename TEXT PRIMARY KEY,
		body     BLOB NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Put(ctx context.Context, doc recording.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (filename, body) VALUES (?, ?)
		 ON CONFLICT(filename) DO UPDATE SET body = excluded.body`,
		doc.Filename, body)
	return err
}

func (s *SQLiteStore) Get(ctx context.Context, filename string) (recording.Document, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE filename = ?`, filename).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return recording.Document{}, ErrNotFound
	}
	if err != nil {
		return recording.Document{}, err
	}
	var doc recording.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return recording.Document{}, err
	}
	return doc, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]recording.Document, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT body FROM documents`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []recording.Document
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var doc recording.Document
		if err := json.Unmarshal(body, &doc); err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
