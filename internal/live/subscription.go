// Package live implements restartable live queries: a query is re-run and its
// full result re-emitted every time the underlying change source fires.
package live

import (
	"context"
	"sync"
)

// Source signals that the data behind a live query may have changed.
type Source interface {
	// Next blocks until the next change or until ctx is done.
	Next(ctx context.Context) error
	// Close releases the underlying listener.
	Close() error
}

// QueryFunc produces the current full result set.
type QueryFunc[T any] func(ctx context.Context) ([]T, error)

// Subscription delivers result sets on C until it is closed or the source
// fails. The source is released exactly once, whichever happens first.
type Subscription[T any] struct {
	ch     chan []T
	done   chan struct{}
	cancel context.CancelFunc
	src    Source

	releaseOnce sync.Once
	releaseErr  error

	mu  sync.Mutex
	err error
}

// Watch runs query immediately and again after every change reported by src.
// Only the most recent unread result is kept.
func Watch[T any](ctx context.Context, src Source, query QueryFunc[T]) *Subscription[T] {
	ctx, cancel := context.WithCancel(ctx)
	s := &Subscription[T]{
		ch:     make(chan []T, 1),
		done:   make(chan struct{}),
		cancel: cancel,
		src:    src,
	}
	go s.run(ctx, query)
	return s
}

func (s *Subscription[T]) run(ctx context.Context, query QueryFunc[T]) {
	defer close(s.done)
	defer close(s.ch)
	defer s.release()

	for {
		rows, err := query(ctx)
		if err != nil {
			s.fail(ctx, err)
			return
		}
		s.publish(rows)

		if err := s.src.Next(ctx); err != nil {
			s.fail(ctx, err)
			return
		}
	}
}

func (s *Subscription[T]) publish(rows []T) {
	select {
	case s.ch <- rows:
		return
	default:
	}
	// drop the stale unread result
	select {
	case <-s.ch:
	default:
	}
	s.ch <- rows
}

func (s *Subscription[T]) fail(ctx context.Context, err error) {
	if ctx.Err() != nil {
		return
	}
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *Subscription[T]) release() {
	s.releaseOnce.Do(func() {
		s.releaseErr = s.src.Close()
	})
}

// C returns the result channel. It is closed when the subscription ends.
func (s *Subscription[T]) C() <-chan []T {
	return s.ch
}

// Done is closed once the subscription has stopped and released its source.
func (s *Subscription[T]) Done() <-chan struct{} {
	return s.done
}

// Err returns the error that terminated the stream, nil after a normal Close.
func (s *Subscription[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close stops the subscription and waits for the source to be released.
// It is safe to call more than once.
func (s *Subscription[T]) Close() error {
	s.cancel()
	<-s.done
	return s.releaseErr
}

// First waits for the first result of s and closes it.
func First[T any](ctx context.Context, s *Subscription[T]) ([]T, error) {
	defer s.Close()

	select {
	case rows, ok := <-s.C():
		if !ok {
			return nil, s.Err()
		}
		return rows, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
