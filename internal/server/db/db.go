// Package db opens the backend's PostgreSQL pool and applies its schema.
package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/amanotes/internal/server/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

var gooseUpContext = goose.UpContext

type DB struct {
	Pool *pgxpool.Pool
	SQL  *sql.DB
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}
	return nil
}

// Open connects to dsn and brings the schema up to date.
func Open(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	sqlDB := stdlib.OpenDBFromPool(pool)

	if err := RunMigrations(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		pool.Close()
		return nil, err
	}
	return &DB{Pool: pool, SQL: sqlDB}, nil
}

func (d *DB) Ping(ctx context.Context) error {
	return d.Pool.Ping(ctx)
}

func (d *DB) Close() error {
	err := d.SQL.Close()
	d.Pool.Close()
	return err
}
