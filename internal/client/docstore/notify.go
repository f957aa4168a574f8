package docstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/amanotes/internal/common"
	"github.com/dmitrijs2005/amanotes/internal/live"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Notifier opens dedicated listeners on notification channels.
type Notifier interface {
	Listen(ctx context.Context, channel string) (Listener, error)
}

// Listener holds one LISTEN registration on its own connection.
type Listener interface {
	// Wait blocks until a notification arrives and returns its payload.
	Wait(ctx context.Context) (string, error)
	// Close unregisters and returns the connection.
	Close() error
}

// PoolNotifier acquires listener connections from a pgx pool.
type PoolNotifier struct {
	pool *pgxpool.Pool
}

func NewPoolNotifier(pool *pgxpool.Pool) *PoolNotifier {
	return &PoolNotifier{pool: pool}
}

func (n *PoolNotifier) Listen(ctx context.Context, channel string) (Listener, error) {
	conn, err := n.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: acquire listener: %v", common.ErrTransport, err)
	}

	ident := pgx.Identifier{channel}.Sanitize()
	if _, err := conn.Exec(ctx, "LISTEN "+ident); err != nil {
		conn.Release()
		return nil, fmt.Errorf("%w: listen %s: %v", common.ErrTransport, channel, err)
	}
	return &poolListener{conn: conn, ident: ident}, nil
}

type poolListener struct {
	conn  *pgxpool.Conn
	ident string
	once  sync.Once
	err   error
}

func (l *poolListener) Wait(ctx context.Context) (string, error) {
	n, err := l.conn.Conn().WaitForNotification(ctx)
	if err != nil {
		return "", err
	}
	return n.Payload, nil
}

func (l *poolListener) Close() error {
	l.once.Do(func() {
		c := l.conn.Conn()
		if !c.IsClosed() {
			_, l.err = c.Exec(context.Background(), "UNLISTEN "+l.ident)
		}
		l.conn.Release()
	})
	return l.err
}

// ownerSource adapts a Listener to live.Source, skipping notifications that
// belong to other owners.
type ownerSource struct {
	listener Listener
	ownerID  string
}

func (s *ownerSource) Next(ctx context.Context) error {
	for {
		payload, err := s.listener.Wait(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: listener: %v", common.ErrTransport, err)
		}
		if payload == s.ownerID {
			return nil
		}
	}
}

func (s *ownerSource) Close() error {
	return s.listener.Close()
}

// Watch subscribes to q's collection and re-runs q on every change made by
// q's owner. mapFn turns the documents into the emitted values. The listener
// is acquired before Watch returns and released exactly once when the
// subscription ends.
func Watch[T any](ctx context.Context, q *Query, mapFn func([]Document) ([]T, error)) (*live.Subscription[T], error) {
	if q.coll.notifier == nil {
		return nil, fmt.Errorf("%w: collection %s has no notifier", common.ErrTransport, q.coll.name)
	}
	if _, _, err := q.SQL(); err != nil {
		return nil, err
	}

	l, err := q.coll.notifier.Listen(ctx, q.coll.Channel())
	if err != nil {
		return nil, err
	}

	src := &ownerSource{listener: l, ownerID: q.ownerID}
	return live.Watch(ctx, src, func(ctx context.Context) ([]T, error) {
		docs, err := q.Get(ctx)
		if err != nil {
			return nil, err
		}
		return mapFn(docs)
	}), nil
}
