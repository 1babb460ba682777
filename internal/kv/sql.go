package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/breathepure/internal/common"
	"github.com/dmitrijs2005/breathepure/internal/dbx"
)

// queries is the dialect-specific SQL used by sqlStore.
type queries struct {
	get          string
	getForUpdate string
	set          string
	insert       string
	del          string
	keys         string
	list         string
	clear        string
}

// sqlStore implements Store over a single "kv" table. SQLiteStore and
// PostgresStore differ only in their queries.
type sqlStore struct {
	db *sql.DB
	q  queries
}

func (s *sqlStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.get(ctx, s.db, s.q.get, key)
}

func (s *sqlStore) get(ctx context.Context, db dbx.DBTX, query, key string) ([]byte, error) {
	var value []byte
	err := db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get kv[%s]: %w: %w", key, common.ErrStorage, err)
	}
	return value, nil
}

func (s *sqlStore) Set(ctx context.Context, key string, value []byte) error {
	return s.set(ctx, s.db, key, value)
}

func (s *sqlStore) set(ctx context.Context, db dbx.DBTX, key string, value []byte) error {
	if _, err := db.ExecContext(ctx, s.q.set, key, value); err != nil {
		return fmt.Errorf("failed to set kv[%s]: %w: %w", key, common.ErrStorage, err)
	}
	return nil
}

func (s *sqlStore) Merge(ctx context.Context, key string, patch []byte) error {
	return s.Update(ctx, key, mergeUpdate(patch))
}

// updateAttempts bounds how often Update re-reads a key that another writer
// created between our read and our insert.
const updateAttempts = 3

// errKeyCreated means the key was absent when read but present at insert time.
var errKeyCreated = errors.New("key created concurrently")

// Update runs fn inside a transaction. A present row is locked by the read;
// an absent key has nothing to lock, so the first write goes through an
// insert that skips existing rows, and losing that race reruns fn against
// the winner's value.
func (s *sqlStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	var err error
	for range updateAttempts {
		err = s.update(ctx, key, fn)
		if !errors.Is(err, errKeyCreated) {
			return err
		}
	}
	return err
}

func (s *sqlStore) update(ctx context.Context, key string, fn UpdateFunc) error {
	var fnErr error
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		old, err := s.get(ctx, tx, s.q.getForUpdate, key)
		if err != nil {
			return err
		}
		value, err := fn(old)
		if err != nil {
			fnErr = err
			return err
		}
		if value == nil {
			return nil
		}
		if old == nil {
			return s.insert(ctx, tx, key, value)
		}
		return s.set(ctx, tx, key, value)
	})
	if fnErr != nil {
		return fnErr
	}
	if err != nil && !errors.Is(err, common.ErrStorage) {
		return fmt.Errorf("failed to update kv[%s]: %w: %w", key, common.ErrStorage, err)
	}
	return err
}

func (s *sqlStore) insert(ctx context.Context, db dbx.DBTX, key string, value []byte) error {
	res, err := db.ExecContext(ctx, s.q.insert, key, value)
	if err != nil {
		return fmt.Errorf("failed to insert kv[%s]: %w: %w", key, common.ErrStorage, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to insert kv[%s]: %w: %w", key, common.ErrStorage, err)
	}
	if n == 0 {
		return fmt.Errorf("failed to insert kv[%s]: %w: %w", key, common.ErrStorage, errKeyCreated)
	}
	return nil
}

func (s *sqlStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.q.del, key); err != nil {
		return fmt.Errorf("failed to delete kv[%s]: %w: %w", key, common.ErrStorage, err)
	}
	return nil
}

func (s *sqlStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.q.keys, likePrefix(prefix))
	if err != nil {
		return nil, fmt.Errorf("failed to list kv keys: %w: %w", common.ErrStorage, err)
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan kv key: %w: %w", common.ErrStorage, err)
		}
		// SQLite's LIKE ignores ASCII case
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate kv keys: %w: %w", common.ErrStorage, err)
	}

	sort.Strings(keys)
	return keys, nil
}

func (s *sqlStore) List(ctx context.Context) (map[string][]byte, error) {
	rows, err := s.db.QueryContext(ctx, s.q.list)
	if err != nil {
		return nil, fmt.Errorf("failed to list kv: %w: %w", common.ErrStorage, err)
	}
	defer rows.Close()

	result := make(map[string][]byte)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan kv row: %w: %w", common.ErrStorage, err)
		}
		result[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate kv rows: %w: %w", common.ErrStorage, err)
	}

	return result, nil
}

func (s *sqlStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.q.clear); err != nil {
		return fmt.Errorf("failed to clear kv: %w: %w", common.ErrStorage, err)
	}
	return nil
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}

// likePrefix escapes LIKE wildcards in prefix; the queries use '\' as the
// escape character.
func likePrefix(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix) + "%"
}
