package kv

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/dmitrijs2005/breathepure/internal/common"
	"github.com/dmitrijs2005/breathepure/internal/filex"
	"github.com/dmitrijs2005/breathepure/internal/kv/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// Supported driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations for driver to db.
func RunMigrations(ctx context.Context, db *sql.DB, driver string) error {
	var dir, dialect string
	switch driver {
	case DriverSQLite:
		dir, dialect = "sqlite", "sqlite3"
	case DriverPostgres:
		dir, dialect = "postgres", "pgx"
	default:
		return fmt.Errorf("%w: %q", common.ErrUnsupportedDriver, driver)
	}

	sub, err := fs.Sub(migrations.Migrations, dir)
	if err != nil {
		return err
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(sub)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	return nil
}

// Open connects to the store selected by driver, applies migrations and
// returns it. For SQLite the dsn is a file path (its directory is created
// when missing) or an SQLite URI; the memory driver ignores dsn.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case DriverMemory:
		return NewMemoryStore(), nil

	case DriverSQLite:
		if isFilePath(dsn) {
			if err := filex.EnsureParentDir(dsn); err != nil {
				return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
			}
		}
		db, err := sql.Open("sqlite", sqliteDSN(dsn))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
		}
		db.SetMaxOpenConns(1)
		if err := RunMigrations(ctx, db, DriverSQLite); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
		}
		return NewSQLiteStore(db), nil

	case DriverPostgres:
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
		}
		if err := RunMigrations(ctx, db, DriverPostgres); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
		}
		return NewPostgresStore(db), nil

	default:
		return nil, fmt.Errorf("%w: %q", common.ErrUnsupportedDriver, driver)
	}
}

// sqlitePragmas let another process (a watching operator command) share the
// file. WAL keeps readers from blocking the writer. Update takes the write
// lock at BEGIN and waits up to busy_timeout for it.
const sqlitePragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"

func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "?") {
		return dsn + "&" + sqlitePragmas
	}
	return dsn + "?" + sqlitePragmas
}

func isFilePath(dsn string) bool {
	return dsn != "" && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:")
}
