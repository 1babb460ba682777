package kv

import "database/sql"

// SQLiteStore keeps the key/value pairs in a local SQLite database.
type SQLiteStore struct {
	sqlStore
}

// NewSQLiteStore wraps an open database that already has the kv table.
// SQLite serializes writers per database, so callers should keep the pool
// at a single connection (Open does).
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{sqlStore{db: db, q: queries{
		get:          `SELECT value FROM kv WHERE key = ?`,
		getForUpdate: `SELECT value FROM kv WHERE key = ?`,
		set: `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`,
		insert: `INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT DO NOTHING`,
		del:    `DELETE FROM kv WHERE key = ?`,
		keys:   `SELECT key FROM kv WHERE key LIKE ? ESCAPE '\' ORDER BY key`,
		list:   `SELECT key, value FROM kv`,
		clear:  `DELETE FROM kv`,
	}}}
}
