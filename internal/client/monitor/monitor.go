// Package monitor tracks whether the cloud backend is reachable. The state
// is informational; nothing is queued or replayed while offline.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/amanotes/internal/logging"
)

// Capabilities describes a network path. Only an internet-capable,
// validated path counts as available.
type Capabilities struct {
	Internet  bool
	Validated bool
}

func (c Capabilities) Available() bool {
	return c.Internet && c.Validated
}

type State struct {
	Online  bool
	Syncing bool
}

// Prober reports the current capabilities of the path to the backend.
type Prober interface {
	Probe(ctx context.Context) Capabilities
}

type Monitor struct {
	mu        sync.Mutex
	state     State
	listeners map[int]func(State)
	nextID    int

	prober   Prober
	interval time.Duration
	logger   logging.Logger
}

// DefaultInterval is used when New is given a non-positive interval.
const DefaultInterval = 3 * time.Second

func New(p Prober, interval time.Duration, l logging.Logger) *Monitor {
	if l == nil {
		l = logging.NewNopLogger()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{
		listeners: make(map[int]func(State)),
		prober:    p,
		interval:  interval,
		logger:    l.With("module", "monitor"),
	}
}

func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Online
}

func (m *Monitor) IsSyncing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Syncing
}

func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// OnAvailable is the connectivity callback for a usable network.
func (m *Monitor) OnAvailable() {
	m.update(func(s *State) { s.Online = true })
}

func (m *Monitor) OnLost() {
	m.update(func(s *State) { s.Online = false })
}

func (m *Monitor) OnCapabilitiesChanged(c Capabilities) {
	m.update(func(s *State) { s.Online = c.Available() })
}

// Check is the periodic pass; it marks syncing while offline.
func (m *Monitor) Check() {
	m.update(func(s *State) { s.Syncing = !s.Online })
}

// Subscribe registers fn for state changes and returns its cancel func.
// fn runs on the goroutine that caused the change.
func (m *Monitor) Subscribe(fn func(State)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.listeners, id)
			m.mu.Unlock()
		})
	}
}

func (m *Monitor) update(fn func(*State)) {
	m.mu.Lock()
	prev := m.state
	fn(&m.state)
	cur := m.state
	var ls []func(State)
	if cur != prev {
		for _, l := range m.listeners {
			ls = append(ls, l)
		}
	}
	m.mu.Unlock()

	for _, l := range ls {
		l(cur)
	}
}

// Run probes the backend every interval until ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	if m.prober == nil {
		<-ctx.Done()
		return nil
	}

	tick := func() {
		caps := m.prober.Probe(ctx)
		was := m.IsOnline()
		m.OnCapabilitiesChanged(caps)
		m.Check()
		if now := m.IsOnline(); now != was {
			m.logger.Info(ctx, "connectivity changed", "online", now, "validated", caps.Validated)
		}
	}

	interval := m.interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	tick()
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			tick()
		}
	}
}
