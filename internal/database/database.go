package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"shareit/internal/config"
	"shareit/internal/domain"
)

const (
	tableUsers    = "users"
	tableItems    = "items"
	tableBookings = "bookings"
	tableComments = "comments"
	tableRequests = "item_requests"
)

// sqliteDriver is go-sqlite3 with lower() replaced by a Unicode-aware version.
// The built-in one folds ASCII only.
const sqliteDriver = "sqlite3_unicode"

func init() {
	sql.Register(sqliteDriver, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("lower", strings.ToLower, true)
		},
	})
	sqlx.BindDriver(sqliteDriver, sqlx.QUESTION)
}

// DB is the relational store behind domain.Repository. Inside InTx the same type
// is bound to a transaction instead of the pool.
type DB struct {
	conn    *sqlx.DB
	q       sqlx.ExtContext
	dialect goqu.DialectWrapper
	driver  string
	logger  *zerolog.Logger
}

var _ domain.Repository = (*DB)(nil)

// NewDB opens a SQLite database at path, creating parent directories as needed.
// ":memory:" gives a private in-memory database.
func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	return Open(config.DatabaseConfig{Driver: config.DriverSQLite, Path: path}, logger)
}

// Open connects to the configured driver and applies the schema.
func Open(cfg config.DatabaseConfig, logger *zerolog.Logger) (*DB, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	var (
		conn *sqlx.DB
		err  error
	)
	switch cfg.Driver {
	case config.DriverSQLite, "":
		conn, err = openSQLite(cfg)
	case config.DriverPostgres:
		conn, err = openPostgres(cfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDriver, cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	driver := cfg.Driver
	if driver == "" {
		driver = config.DriverSQLite
	}

	db := &DB{
		conn:    conn,
		q:       conn,
		dialect: goqu.Dialect(driver),
		driver:  driver,
		logger:  logger,
	}

	if err := db.migrate(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("driver", driver).Msg("database initialized")
	return db, nil
}

func openSQLite(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	busy := cfg.BusyTimeout
	if busy == 0 {
		busy = 5 * time.Second
	}

	memory := cfg.Path == ":memory:"
	if !memory {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_foreign_keys=on&_txlock=immediate&_busy_timeout=%d", cfg.Path, busy.Milliseconds())
	conn, err := sqlx.Open(sqliteDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if memory {
		// every new connection to :memory: is a fresh empty database
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return conn, nil
}

func openPostgres(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	conn, err := sqlx.Open("pgx", cfg.Postgres.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if cfg.Postgres.MaxConnections > 0 {
		conn.SetMaxOpenConns(cfg.Postgres.MaxConnections)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return conn, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) PingContext(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

func (db *DB) Driver() string {
	return db.driver
}

// InTx runs fn against a transaction-bound repository. A nested call joins the outer transaction.
func (db *DB) InTx(ctx context.Context, fn func(repo domain.Repository) error) error {
	if db.q != db.conn {
		return fn(db)
	}

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	txDB := *db
	txDB.q = tx
	if err := fn(&txDB); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (db *DB) migrate(ctx context.Context) error {
	for _, query := range schema(db.driver) {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

func schema(driver string) []string {
	if driver == config.DriverPostgres {
		return []string{
			`CREATE TABLE IF NOT EXISTS users (
				id BIGSERIAL PRIMARY KEY,
				name TEXT NOT NULL,
				email TEXT NOT NULL UNIQUE
			)`,
			`CREATE TABLE IF NOT EXISTS item_requests (
				id BIGSERIAL PRIMARY KEY,
				description TEXT NOT NULL,
				requestor_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				created_at TIMESTAMPTZ NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS items (
				id BIGSERIAL PRIMARY KEY,
				name TEXT NOT NULL,
				description TEXT NOT NULL,
				available BOOLEAN NOT NULL,
				owner_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				request_id BIGINT REFERENCES item_requests(id) ON DELETE SET NULL
			)`,
			`CREATE TABLE IF NOT EXISTS bookings (
				id BIGSERIAL PRIMARY KEY,
				start_date TIMESTAMPTZ NOT NULL,
				end_date TIMESTAMPTZ NOT NULL,
				item_id BIGINT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
				booker_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				status TEXT NOT NULL,
				CHECK (end_date > start_date)
			)`,
			`CREATE TABLE IF NOT EXISTS comments (
				id BIGSERIAL PRIMARY KEY,
				text TEXT NOT NULL,
				item_id BIGINT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
				author_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				created_at TIMESTAMPTZ NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_items_owner_id ON items(owner_id)`,
			`CREATE INDEX IF NOT EXISTS idx_items_request_id ON items(request_id)`,
			`CREATE INDEX IF NOT EXISTS idx_bookings_item_id ON bookings(item_id)`,
			`CREATE INDEX IF NOT EXISTS idx_bookings_booker_id ON bookings(booker_id)`,
			`CREATE INDEX IF NOT EXISTS idx_comments_item_id ON comments(item_id)`,
			`CREATE INDEX IF NOT EXISTS idx_item_requests_requestor_id ON item_requests(requestor_id)`,
		}
	}

	return []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS item_requests (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			description TEXT NOT NULL,
			requestor_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			description TEXT NOT NULL,
			available BOOLEAN NOT NULL,
			owner_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			request_id INTEGER REFERENCES item_requests(id) ON DELETE SET NULL
		)`,
		`CREATE TABLE IF NOT EXISTS bookings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			start_date DATETIME NOT NULL,
			end_date DATETIME NOT NULL,
			item_id INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
			booker_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			status TEXT NOT NULL,
			CHECK (end_date > start_date)
		)`,
		`CREATE TABLE IF NOT EXISTS comments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			text TEXT NOT NULL,
			item_id INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
			author_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_items_owner_id ON items(owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_items_request_id ON items(request_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_item_id ON bookings(item_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_booker_id ON bookings(booker_id)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_item_id ON comments(item_id)`,
		`CREATE INDEX IF NOT EXISTS idx_item_requests_requestor_id ON item_requests(requestor_id)`,
	}
}

// storedTime normalizes instants to UTC whole seconds so that stored values compare correctly as text on SQLite.
func storedTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// upperBound converts a strict "less than t" bound to stored precision, rounding up.
func upperBound(t time.Time) time.Time {
	s := storedTime(t)
	if s.Before(t) {
		return s.Add(time.Second)
	}
	return s
}

func (db *DB) insert(ctx context.Context, ds *goqu.InsertDataset, what string) (int64, error) {
	ds = ds.Prepared(true)
	if db.driver == config.DriverPostgres {
		query, args, err := ds.Returning(goqu.C("id")).ToSQL()
		if err != nil {
			return 0, fmt.Errorf("failed to build insert: %w", err)
		}
		var id int64
		if err := db.q.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
			return 0, mapError(err, what)
		}
		return id, nil
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return 0, fmt.Errorf("failed to build insert: %w", err)
	}
	result, err := db.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapError(err, what)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return id, nil
}

// exec runs a built statement and returns the number of affected rows.
func (db *DB) exec(ctx context.Context, query string, args []interface{}, buildErr error, what string) (int64, error) {
	if buildErr != nil {
		return 0, fmt.Errorf("failed to build statement: %w", buildErr)
	}
	result, err := db.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapError(err, what)
	}
	return result.RowsAffected()
}

func (db *DB) get(ctx context.Context, dest interface{}, ds *goqu.SelectDataset, what string) error {
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	return mapError(sqlx.GetContext(ctx, db.q, dest, query, args...), what)
}

func (db *DB) selectAll(ctx context.Context, dest interface{}, ds *goqu.SelectDataset, what string) error {
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	if err := sqlx.SelectContext(ctx, db.q, dest, query, args...); err != nil {
		return fmt.Errorf("failed to list %s: %w", what, mapError(err, what))
	}
	return nil
}

func paginate(ds *goqu.SelectDataset, offset, limit int) *goqu.SelectDataset {
	if offset > 0 {
		ds = ds.Offset(uint(offset))
	}
	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}
	return ds
}
