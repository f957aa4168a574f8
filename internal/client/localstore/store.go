// Package localstore owns the on-device SQLite database: opening it under an
// exclusive file lock, applying the embedded schema and tracking table
// changes for live queries.
package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/amanotes/internal/client/localstore/migrations"
	"github.com/gofrs/flock"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// ErrLocked is returned when another process already owns the database file.
var ErrLocked = errors.New("local database is in use by another process")

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Store bundles the shared connection with its change tracker. It is built
// once at startup and handed to every SQLite repository.
type Store struct {
	DB      *sql.DB
	Tracker *Tracker
	lock    *flock.Flock
}

// RunMigrations applies the embedded schema. Goose output is discarded so it
// cannot bleed into the terminal UI.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrations failed: %w", err)
	}
	return nil
}

func isFilePath(path string) bool {
	return path != "" && path != ":memory:" && !strings.HasPrefix(path, "file:")
}

func dsn(path string) string {
	if !isFilePath(path) {
		return path
	}
	return path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// Open locks path, opens the database and migrates it. Paths starting with
// "file:" and ":memory:" are passed to the driver as-is and are not locked.
func Open(ctx context.Context, path string) (*Store, error) {
	var lock *flock.Flock
	if isFilePath(path) {
		lock = flock.New(path + ".lock")
		ok, err := lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("failed to lock database: %w", err)
		}
		if !ok {
			return nil, ErrLocked
		}
	}

	db, err := InitDatabase(ctx, dsn(path))
	if err != nil {
		if lock != nil {
			_ = lock.Unlock()
		}
		return nil, err
	}

	return &Store{DB: db, Tracker: NewTracker(), lock: lock}, nil
}

// InitDatabase opens a SQLite database and applies migrations.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// one writer at a time; also keeps ":memory:" on a single database
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (s *Store) Close() error {
	err := s.DB.Close()
	if s.lock != nil {
		err = errors.Join(err, s.lock.Unlock())
	}
	return err
}
