// Package drafts provides a local SQLite store for unpublished posts.
package drafts

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/scrawl/internal/apperr"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS drafts (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL DEFAULT '',
	content    TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Draft is an unpublished post kept on the local machine only.
type Draft struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DB wraps a sql.DB with draft operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the drafts database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("drafts: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("drafts: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("drafts: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Save inserts d when it has no id yet, or updates the existing row.
// The stored draft is returned with its id and timestamps filled in.
func (db *DB) Save(d Draft) (Draft, error) {
	now := time.Now().UTC()
	if d.ID == "" {
		d.ID = uuid.NewString()
		d.CreatedAt = now
		d.UpdatedAt = now
		_, err := db.conn.Exec(
			`INSERT INTO drafts (id, title, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			d.ID, d.Title, d.Content, d.CreatedAt, d.UpdatedAt)
		if err != nil {
			return Draft{}, fmt.Errorf("drafts: insert: %w", err)
		}
		return d, nil
	}

	d.UpdatedAt = now
	res, err := db.conn.Exec(
		`UPDATE drafts SET title = ?, content = ?, updated_at = ? WHERE id = ?`,
		d.Title, d.Content, d.UpdatedAt, d.ID)
	if err != nil {
		return Draft{}, fmt.Errorf("drafts: update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Draft{}, apperr.ErrNotFound
	}
	return d, nil
}

// Get returns the draft with the given id.
func (db *DB) Get(id string) (*Draft, error) {
	var d Draft
	err := db.conn.QueryRow(
		`SELECT id, title, content, created_at, updated_at FROM drafts WHERE id = ?`, id).
		Scan(&d.ID, &d.Title, &d.Content, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("drafts: get: %w", err)
	}
	return &d, nil
}

// List returns all drafts, most recently updated first.
func (db *DB) List() ([]Draft, error) {
	rows, err := db.conn.Query(
		`SELECT id, title, content, created_at, updated_at FROM drafts ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("drafts: list: %w", err)
	}
	defer rows.Close()

	var out []Draft
	for rows.Next() {
		var d Draft
		if err := rows.Scan(&d.ID, &d.Title, &d.Content, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("drafts: scan: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("drafts: iterate: %w", err)
	}
	return out, nil
}

// Delete removes the draft with the given id.
func (db *DB) Delete(id string) error {
	res, err := db.conn.Exec(`DELETE FROM drafts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("drafts: delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
