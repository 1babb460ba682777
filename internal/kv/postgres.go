package kv

import "database/sql"

// PostgresStore keeps the key/value pairs in PostgreSQL. Update locks an
// existing row with SELECT ... FOR UPDATE. A key that does not exist yet is
// created with INSERT ... ON CONFLICT DO NOTHING, so of two processes
// creating it one wins and the other reruns against the stored value.
type PostgresStore struct {
	sqlStore
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{sqlStore{db: db, q: queries{
		get:          `SELECT value FROM kv WHERE key = $1`,
		getForUpdate: `SELECT value FROM kv WHERE key = $1 FOR UPDATE`,
		set: `
		INSERT INTO kv (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`,
		insert: `INSERT INTO kv (key, value) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		del:    `DELETE FROM kv WHERE key = $1`,
		keys:   `SELECT key FROM kv WHERE key LIKE $1 ESCAPE '\' ORDER BY key`,
		list:   `SELECT key, value FROM kv`,
		clear:  `DELETE FROM kv`,
	}}}
}
