package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/brunoscheufler/pocketnotes/constants"
	"github.com/brunoscheufler/pocketnotes/store/migrations"
	"github.com/brunoscheufler/pocketnotes/util"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

type sqliteKV struct {
	db  *sql.DB
	now func() time.Time
}

func (s *sqliteKV) Get(ctx context.Context, key string) (string, bool, error) {
	query := `SELECT value FROM kv WHERE key = ?`

	value, err := util.RetryValue(ctx, defaultRetryConfig, func() (string, error) {
		var value string
		err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
		return value, err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query key %s: %w", key, err)
	}

	return value, true, nil
}

func (s *sqliteKV) Set(ctx context.Context, key, value string) error {
	query := `
	INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	err := util.Retry(ctx, defaultRetryConfig, func() error {
		_, execErr := s.db.ExecContext(ctx, query, key, value, s.now().UnixMilli())
		return execErr
	})
	if err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

func (s *sqliteKV) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqliteKV) Close() error {
	return s.db.Close()
}

// NewSQLiteKV opens (and migrates) the database file <BasePath>/.data/<Name>.db
func NewSQLiteKV(opts StoreOptions) (KV, error) {
	db, err := createSQLiteDatabaseWithPath(opts.Name, opts.BasePath, opts.Config)
	if err != nil {
		return nil, fmt.Errorf("could not create sqlite db: %w", err)
	}

	if err := runMigrations(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not migrate sqlite db: %w", err)
	}

	return &sqliteKV{db: db, now: time.Now}, nil
}

// goose keeps its base FS and dialect in package globals
var migrateMu sync.Mutex

func runMigrations(ctx context.Context, db *sql.DB) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return util.Retry(ctx, defaultRetryConfig, func() error {
		return goose.UpContext(ctx, db, ".")
	})
}

func createSQLiteDatabaseWithPath(name, basePath string, config DatabaseConfig) (*sql.DB, error) {
	if name == "" {
		name = constants.DefaultDatabaseName
	}

	var dir string
	if basePath != "" {
		dir = filepath.Join(basePath, constants.DataDirName)
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("could not get working directory: %w", err)
		}
		dir = filepath.Join(wd, constants.DataDirName)
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("could not create data dir: %w", err)
	}

	file := filepath.Join(dir, fmt.Sprintf("%s.db", name))

	// https://www.sqlite.org/pragma.html#pragma_busy_timeout
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)", file, config.BusyTimeout.Milliseconds())
	if config.EnableWAL {
		// https://www.sqlite.org/pragma.html#pragma_journal_mode
		// https://www.sqlite.org/pragma.html#pragma_synchronous
		dsn += "&_pragma=journal_mode(WAL)&_pragma=synchronous(FULL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open sqlite db: %w", err)
	}

	// Single connection to prevent lock contention
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	return db, nil
}

// isSQLiteBusyError checks if an error is a SQLite BUSY error that should be retried
func isSQLiteBusyError(err error) bool {
	if err == nil {
		return false
	}
	errorStr := err.Error()
	return strings.Contains(errorStr, "database is locked") ||
		strings.Contains(errorStr, "SQLITE_BUSY")
}

var defaultRetryConfig = util.RetryConfig{
	MaxRetries:      5,
	BaseDelay:       10 * time.Millisecond,
	MaxDelay:        1 * time.Second,
	ShouldRetryFunc: isSQLiteBusyError,
}
