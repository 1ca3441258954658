package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/example/memorizer/internal/apperr"
	"github.com/example/memorizer/internal/config"
)

// DB is an open store handle. It is safe for concurrent use.
type DB struct {
	*sqlx.DB
	driver string
	clock  func() time.Time
}

// Option customizes a DB at open time.
type Option func(*DB)

// WithClock replaces time.Now as the source of record timestamps.
func WithClock(clock func() time.Time) Option {
	return func(db *DB) {
		db.clock = clock
	}
}

// Open connects to the configured backend and creates the schema if needed.
func Open(ctx context.Context, cfg config.Database, opts ...Option) (*DB, error) {
	var (
		conn *sqlx.DB
		err  error
	)

	switch cfg.Driver {
	case config.DriverSQLite:
		conn, err = openSQLite(ctx, cfg)
	case config.DriverPostgres:
		conn, err = openPostgres(ctx, cfg)
	default:
		return nil, apperr.InvalidInput("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, apperr.Storage("connect", err)
	}

	db := &DB{DB: conn, driver: cfg.Driver, clock: time.Now}
	for _, opt := range opts {
		opt(db)
	}

	if err := db.initializeSchema(ctx); err != nil {
		_ = conn.Close()
		return nil, apperr.Storage("initialize schema", err)
	}

	return db, nil
}

func openSQLite(ctx context.Context, cfg config.Database) (*sqlx.DB, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrap(err, "failed to create data directory")
		}
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=%d",
		cfg.Path, cfg.BusyTimeout.Milliseconds())
	conn, err := sqlx.ConnectContext(ctx, "sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to sqlite")
	}

	// SQLite doesn't support multiple writers
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	return conn, nil
}

func openPostgres(ctx context.Context, cfg config.Database) (*sqlx.DB, error) {
	conn, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to postgres")
	}

	if cfg.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(cfg.MaxOpenConns)
		conn.SetMaxIdleConns(cfg.MaxOpenConns)
	}

	return conn, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	if db == nil || db.DB == nil {
		return nil
	}
	return db.DB.Close()
}

// Backend returns the configured backend name (sqlite or postgres).
func (db *DB) Backend() string {
	return db.driver
}

func (db *DB) now() time.Time {
	return db.clock().UTC().Truncate(time.Microsecond)
}

// lockClause is appended to selects that precede an update in the same
// transaction. SQLite already serializes writers on its single connection.
func (db *DB) lockClause() string {
	if db.driver == config.DriverPostgres {
		return " FOR UPDATE"
	}
	return ""
}

// withTx runs fn in a transaction that is rolled back unless fn succeeds.
// All statements inside fn must go through tx: with SQLite the pool holds a
// single connection and any other query would block until the tx ends.
func (db *DB) withTx(ctx context.Context, op string, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return apperr.Storage(op, err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperr.Storage(op, err)
	}
	return nil
}

// initializeSchema creates necessary tables if they don't exist
func (db *DB) initializeSchema(ctx context.Context) error {
	statements := sqliteSchema
	if db.driver == config.DriverPostgres {
		statements = postgresSchema
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "failed to apply schema statement %q", firstLine(stmt))
		}
	}
	return nil
}

func firstLine(stmt string) string {
	for i, r := range stmt {
		if r == '(' {
			return stmt[:i]
		}
	}
	return stmt
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS sentence_pairs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		english TEXT NOT NULL,
		korean TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS memorization_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sentence_pair_id INTEGER NOT NULL UNIQUE,
		attempts INTEGER NOT NULL DEFAULT 0,
		correct_attempts INTEGER NOT NULL DEFAULT 0,
		exposure_count INTEGER NOT NULL DEFAULT 0,
		is_memorized BOOLEAN NOT NULL DEFAULT FALSE,
		memorized_at TIMESTAMP,
		last_attempt_at TIMESTAMP,
		difficulty_score REAL NOT NULL DEFAULT 0.5,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		FOREIGN KEY (sentence_pair_id) REFERENCES sentence_pairs(id) ON DELETE CASCADE,
		CHECK (correct_attempts >= 0 AND correct_attempts <= attempts),
		CHECK (difficulty_score >= 0 AND difficulty_score <= 1)
	)`,
	`CREATE TABLE IF NOT EXISTS attempt_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sentence_pair_id INTEGER NOT NULL,
		is_correct BOOLEAN NOT NULL,
		response_time_ms INTEGER NOT NULL,
		attempted_at TIMESTAMP NOT NULL,
		FOREIGN KEY (sentence_pair_id) REFERENCES sentence_pairs(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_attempt_log_attempted_at ON attempt_log(attempted_at)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS sentence_pairs (
		id BIGSERIAL PRIMARY KEY,
		english TEXT NOT NULL,
		korean TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS memorization_records (
		id BIGSERIAL PRIMARY KEY,
		sentence_pair_id BIGINT NOT NULL UNIQUE REFERENCES sentence_pairs(id) ON DELETE CASCADE,
		attempts INTEGER NOT NULL DEFAULT 0,
		correct_attempts INTEGER NOT NULL DEFAULT 0,
		exposure_count INTEGER NOT NULL DEFAULT 0,
		is_memorized BOOLEAN NOT NULL DEFAULT FALSE,
		memorized_at TIMESTAMPTZ,
		last_attempt_at TIMESTAMPTZ,
		difficulty_score DOUBLE PRECISION NOT NULL DEFAULT 0.5,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		CHECK (correct_attempts >= 0 AND correct_attempts <= attempts),
		CHECK (difficulty_score >= 0 AND difficulty_score <= 1)
	)`,
	`CREATE TABLE IF NOT EXISTS attempt_log (
		id BIGSERIAL PRIMARY KEY,
		sentence_pair_id BIGINT NOT NULL REFERENCES sentence_pairs(id) ON DELETE CASCADE,
		is_correct BOOLEAN NOT NULL,
		response_time_ms BIGINT NOT NULL,
		attempted_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_attempt_log_attempted_at ON attempt_log(attempted_at)`,
}
