package localstore

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/amanotes/internal/live"
)

// Table names shared by the SQLite repositories and the tracker.
const (
	TableUsers    = "users"
	TableNotes    = "notes"
	TableTasks    = "tasks"
	TableProjects = "projects"
)

// Tracker fans table invalidations out to live queries observing them.
// Writers call Invalidate after a successful write or commit.
type Tracker struct {
	mu        sync.Mutex
	observers map[string]map[*observer]struct{}
}

func NewTracker() *Tracker {
	return &Tracker{observers: make(map[string]map[*observer]struct{})}
}

// Observe returns a live.Source that fires whenever any of tables changes.
func (t *Tracker) Observe(tables ...string) live.Source {
	o := &observer{tracker: t, tables: tables, changed: make(chan struct{}, 1)}

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, name := range tables {
		set, ok := t.observers[name]
		if !ok {
			set = make(map[*observer]struct{})
			t.observers[name] = set
		}
		set[o] = struct{}{}
	}
	return o
}

func (t *Tracker) Invalidate(tables ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, name := range tables {
		for o := range t.observers[name] {
			o.notify()
		}
	}
}

// Observers reports how many sources currently observe table.
func (t *Tracker) Observers(table string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.observers[table])
}

func (t *Tracker) remove(o *observer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, name := range o.tables {
		delete(t.observers[name], o)
		if len(t.observers[name]) == 0 {
			delete(t.observers, name)
		}
	}
}

type observer struct {
	tracker *Tracker
	tables  []string
	changed chan struct{}
	once    sync.Once
}

// notify coalesces bursts of writes into one pending signal.
func (o *observer) notify() {
	select {
	case o.changed <- struct{}{}:
	default:
	}
}

func (o *observer) Next(ctx context.Context) error {
	select {
	case <-o.changed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *observer) Close() error {
	o.once.Do(func() { o.tracker.remove(o) })
	return nil
}
