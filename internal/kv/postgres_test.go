package kv

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/breathepure/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostgresWithMock(t *testing.T) (*PostgresStore, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresStore(db), mock, db
}

const (
	pgGetQ       = `(?s)^SELECT\s+value\s+FROM\s+kv\s+WHERE\s+key\s*=\s*\$1$`
	pgGetLockedQ = `(?s)^SELECT\s+value\s+FROM\s+kv\s+WHERE\s+key\s*=\s*\$1\s+FOR\s+UPDATE$`
	pgSetQ       = `(?s)^\s*INSERT\s+INTO\s+kv\s*\(key,\s*value\)\s*VALUES\s*\(\$1,\s*\$2\)\s*ON\s+CONFLICT\s*\(key\)\s*DO\s+UPDATE\s+SET\s+value\s*=\s*EXCLUDED\.value\s*$`
	pgInsertQ    = `(?s)^INSERT\s+INTO\s+kv\s*\(key,\s*value\)\s*VALUES\s*\(\$1,\s*\$2\)\s*ON\s+CONFLICT\s+DO\s+NOTHING$`
	pgDelQ       = `(?s)^DELETE\s+FROM\s+kv\s+WHERE\s+key\s*=\s*\$1$`
	pgKeysQ      = `(?s)^SELECT\s+key\s+FROM\s+kv\s+WHERE\s+key\s+LIKE\s+\$1`
)

func TestPostgres_Get_Found(t *testing.T) {
	s, mock, _ := newPostgresWithMock(t)

	mock.ExpectQuery(pgGetQ).WithArgs("user:a").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`{"a":1}`)))

	v, err := s.Get(context.Background(), "user:a")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), v)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Get_NotFound(t *testing.T) {
	s, mock, _ := newPostgresWithMock(t)

	mock.ExpectQuery(pgGetQ).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	v, err := s.Get(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestPostgres_Get_DBError(t *testing.T) {
	s, mock, _ := newPostgresWithMock(t)

	mock.ExpectQuery(pgGetQ).WithArgs("k").WillReturnError(errors.New("db down"))

	_, err := s.Get(context.Background(), "k")
	require.ErrorIs(t, err, common.ErrStorage)
	assert.Contains(t, err.Error(), "db down")
}

func TestPostgres_Set(t *testing.T) {
	s, mock, _ := newPostgresWithMock(t)

	mock.ExpectExec(pgSetQ).WithArgs("k", []byte("v")).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Set(context.Background(), "k", []byte("v")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Update_LocksRowAndCommits(t *testing.T) {
	s, mock, _ := newPostgresWithMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(pgGetLockedQ).WithArgs("admin:logs").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`[1]`)))
	mock.ExpectExec(pgSetQ).WithArgs("admin:logs", []byte(`[2,1]`)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.Update(context.Background(), "admin:logs", func(old []byte) ([]byte, error) {
		assert.Equal(t, []byte(`[1]`), old)
		return []byte(`[2,1]`), nil
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Update_FnErrorRollsBack(t *testing.T) {
	s, mock, _ := newPostgresWithMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(pgGetLockedQ).WithArgs("user:a").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := s.Update(context.Background(), "user:a", func(old []byte) ([]byte, error) {
		require.Nil(t, old)
		return nil, common.ErrNotFound
	})
	require.ErrorIs(t, err, common.ErrNotFound)
	require.NotErrorIs(t, err, common.ErrStorage)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Update_CommitErrorIsStorageError(t *testing.T) {
	s, mock, _ := newPostgresWithMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(pgGetLockedQ).WithArgs("k").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(pgInsertQ).WithArgs("k", []byte("v")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

	err := s.Update(context.Background(), "k", func(old []byte) ([]byte, error) {
		return []byte("v"), nil
	})
	require.ErrorIs(t, err, common.ErrStorage)
	assert.Contains(t, err.Error(), "failed to update kv[k]")
}

func TestPostgres_Update_AbsentKeyInsertsWithoutOverwrite(t *testing.T) {
	s, mock, _ := newPostgresWithMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(pgGetLockedQ).WithArgs("user:a").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(pgInsertQ).WithArgs("user:a", []byte(`{"v":1}`)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.Update(context.Background(), "user:a", func(old []byte) ([]byte, error) {
		return []byte(`{"v":1}`), nil
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Update_AbsentKeyCreatedConcurrentlyReruns(t *testing.T) {
	s, mock, _ := newPostgresWithMock(t)

	// another transaction creates the key after our read
	mock.ExpectBegin()
	mock.ExpectQuery(pgGetLockedQ).WithArgs("user:a").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(pgInsertQ).WithArgs("user:a", []byte("mine")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	mock.ExpectBegin()
	mock.ExpectQuery(pgGetLockedQ).WithArgs("user:a").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte("theirs")))
	mock.ExpectRollback()

	var seen [][]byte
	err := s.Update(context.Background(), "user:a", func(old []byte) ([]byte, error) {
		seen = append(seen, old)
		if old != nil {
			return nil, common.ErrUserExists
		}
		return []byte("mine"), nil
	})
	require.ErrorIs(t, err, common.ErrUserExists)
	assert.Equal(t, [][]byte{nil, []byte("theirs")}, seen)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Update_GivesUpAfterRepeatedInsertConflicts(t *testing.T) {
	s, mock, _ := newPostgresWithMock(t)

	for range updateAttempts {
		mock.ExpectBegin()
		mock.ExpectQuery(pgGetLockedQ).WithArgs("k").WillReturnError(sql.ErrNoRows)
		mock.ExpectExec(pgInsertQ).WithArgs("k", []byte("v")).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()
	}

	err := s.Update(context.Background(), "k", func(old []byte) ([]byte, error) {
		return []byte("v"), nil
	})
	require.ErrorIs(t, err, common.ErrStorage)
	require.ErrorIs(t, err, errKeyCreated)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Delete(t *testing.T) {
	s, mock, _ := newPostgresWithMock(t)

	mock.ExpectExec(pgDelQ).WithArgs("session:a").WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Delete(context.Background(), "session:a"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Keys_EscapesPrefix(t *testing.T) {
	s, mock, _ := newPostgresWithMock(t)

	mock.ExpectQuery(pgKeysQ).WithArgs(`user:a\_b%`).
		WillReturnRows(sqlmock.NewRows([]string{"key"}).AddRow("user:a_bz").AddRow("user:a_ba"))

	keys, err := s.Keys(context.Background(), "user:a_b")
	require.NoError(t, err)
	assert.Equal(t, []string{"user:a_ba", "user:a_bz"}, keys)
}
