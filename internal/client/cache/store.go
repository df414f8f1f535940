// Package cache is the local record store of the client: categories and
// transactions kept in SQLite, readable per owner and observable through
// live queries.
package cache

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	"github.com/atinyakov/ebudget/internal/models"

	_ "modernc.org/sqlite" // SQLite driver
)

// ErrInvalidRecord is returned by upserts of records that could not be read
// back.
var ErrInvalidRecord = errors.New("invalid record")

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is the SQLite-backed cache. Writes are serialised, so of two
// concurrent upserts of one key the one that returns last is what stays.
type Store struct {
	db  *sql.DB
	log *zap.Logger

	// mu orders writes together with the live-query fan-out that follows
	// each of them.
	mu         sync.Mutex
	categories *hub[[]models.Category]
	txs        *hub[[]models.Transaction]
}

// Open creates or opens the cache file at path and brings its schema up to
// date.
func Open(ctx context.Context, path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}
	if err := RunMigrations(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	// one connection: SQLite serialises writers anyway and this keeps
	// read-after-write on the same handle
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping cache: %w", err)
	}

	return &Store{
		db:         db,
		log:        log,
		categories: newHub[[]models.Category](),
		txs:        newHub[[]models.Transaction](),
	}, nil
}

// RunMigrations applies the embedded schema migrations to the database at
// path over a dedicated connection.
func RunMigrations(path string) error {
	migrateDB, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	driver, err := sqlite.WithInstance(migrateDB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Close stops every live query and closes the database.
func (s *Store) Close() error {
	s.categories.closeAll()
	s.txs.closeAll()
	return s.db.Close()
}

// ownerOf returns the owner currently stored for id in table, or false.
func (s *Store) ownerOf(ctx context.Context, table string, id int64) (int64, bool, error) {
	var owner int64
	err := s.db.QueryRowContext(ctx, `SELECT owner_user_id FROM `+table+` WHERE id = ?`, id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("lookup %s %d: %w", table, id, err)
	}
	return owner, true, nil
}
