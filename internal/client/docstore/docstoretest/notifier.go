// Package docstoretest provides an in-memory docstore.Notifier for tests.
package docstoretest

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/amanotes/internal/client/docstore"
)

// Notifier hands out Listeners that are driven by Publish and Fail.
type Notifier struct {
	mu        sync.Mutex
	listeners []*Listener
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

func (n *Notifier) Listen(ctx context.Context, channel string) (docstore.Listener, error) {
	l := &Listener{Channel: channel, events: make(chan event, 16)}
	n.mu.Lock()
	n.listeners = append(n.listeners, l)
	n.mu.Unlock()
	return l, nil
}

// Listeners returns every listener opened so far.
func (n *Notifier) Listeners() []*Listener {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*Listener(nil), n.listeners...)
}

// Publish delivers payload to every listener on channel.
func (n *Notifier) Publish(channel, payload string) {
	for _, l := range n.Listeners() {
		if l.Channel == channel {
			l.events <- event{payload: payload}
		}
	}
}

type event struct {
	payload string
	err     error
}

type Listener struct {
	Channel  string
	events   chan event
	released atomic.Int32
}

func (l *Listener) Wait(ctx context.Context) (string, error) {
	select {
	case ev := <-l.events:
		return ev.payload, ev.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (l *Listener) Close() error {
	l.released.Add(1)
	return nil
}

// Fail makes the pending Wait return err.
func (l *Listener) Fail(err error) {
	l.events <- event{err: err}
}

// Released reports how many times Close was called.
func (l *Listener) Released() int {
	return int(l.released.Load())
}
