// Package postgres reads assessment records from the PostgreSQL
// assessments table.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/matzehuels/secassess/pkg/errors"
	"github.com/matzehuels/secassess/pkg/record"
	"github.com/matzehuels/secassess/pkg/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store reads records from PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// Options configures [Open].
type Options struct {
	// Migrate applies pending schema migrations after connecting.
	Migrate bool
	// MaxOpenConns bounds the pool; zero keeps the default of 20.
	MaxOpenConns int
}

// Open connects to the database at databaseURL and configures the pool.
func Open(ctx context.Context, databaseURL string, opts Options) (*Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "open database")
	}

	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 20
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(30 * time.Second)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "ping database")
	}

	if opts.Migrate {
		if err := runMigrations(db); err != nil {
			db.Close()
			return nil, errors.Wrap(errors.ErrCodeStorage, err, "run migrations")
		}
	}
	return &Store{db: db}, nil
}

// New wraps an open database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Get loads one record.
func (s *Store) Get(ctx context.Context, id string) (*record.Assessment, error) {
	if err := errors.ValidateRecordID(id); err != nil {
		return nil, err
	}
	return queryGet(ctx, s.db, id)
}

// List returns summaries ordered by last update.
func (s *Store) List(ctx context.Context) ([]store.Summary, error) {
	return queryList(ctx, s.db)
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
