package docstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

// Conn owns the pool shared by CRUD (through database/sql) and listeners.
type Conn struct {
	Pool *pgxpool.Pool
	DB   *sql.DB
}

// Connect opens a pool for dsn and verifies it with a ping.
func Connect(ctx context.Context, dsn string) (*Conn, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping cloud store: %w", err)
	}
	return &Conn{Pool: pool, DB: stdlib.OpenDBFromPool(pool)}, nil
}

// Client returns a document client over this connection.
func (c *Conn) Client() *Client {
	return New(c.DB, NewPoolNotifier(c.Pool))
}

func (c *Conn) Close() error {
	err := c.DB.Close()
	c.Pool.Close()
	return err
}
