package monitor

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func TestCapabilities_Available(t *testing.T) {
	require.True(t, Capabilities{Internet: true, Validated: true}.Available())
	require.False(t, Capabilities{Internet: true}.Available())
	require.False(t, Capabilities{Validated: true}.Available())
}

func TestMonitor_Transitions(t *testing.T) {
	m := New(nil, time.Second, nil)
	require.False(t, m.IsOnline())

	m.OnCapabilitiesChanged(Capabilities{Internet: true, Validated: true})
	require.True(t, m.IsOnline())
	m.Check()
	require.False(t, m.IsSyncing())

	m.OnCapabilitiesChanged(Capabilities{Internet: true})
	require.False(t, m.IsOnline())
	m.Check()
	require.True(t, m.IsSyncing())

	m.OnAvailable()
	require.True(t, m.IsOnline())
	m.OnLost()
	require.False(t, m.IsOnline())
}

func TestMonitor_Subscribe(t *testing.T) {
	m := New(nil, time.Second, nil)

	var got []State
	cancel := m.Subscribe(func(s State) { got = append(got, s) })

	m.OnAvailable()
	m.OnAvailable() // no change, no event
	m.OnLost()
	cancel()
	cancel()
	m.OnAvailable()

	require.Equal(t, []State{{Online: true}, {Online: false}}, got)
}

type scriptedProber struct {
	mu    sync.Mutex
	caps  []Capabilities
	calls int
}

func (p *scriptedProber) Probe(ctx context.Context) Capabilities {
	p.mu.Lock()
	defer p.mu.Unlock()
	c := p.caps[min(p.calls, len(p.caps)-1)]
	p.calls++
	return c
}

func TestMonitor_RunProbes(t *testing.T) {
	p := &scriptedProber{caps: []Capabilities{{Internet: true, Validated: true}, {}}}
	m := New(p, 10*time.Millisecond, nil)

	states := make(chan State, 16)
	m.Subscribe(func(s State) { states <- s })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	require.Eventually(t, func() bool { return !m.IsOnline() && m.IsSyncing() && len(states) >= 2 }, 2*time.Second, 5*time.Millisecond)
	require.Equal(t, State{Online: true}, <-states)

	cancel()
	require.NoError(t, <-done)
}

func TestMonitor_NonPositiveIntervalUsesDefault(t *testing.T) {
	for _, d := range []time.Duration{0, -time.Second} {
		m := New(&scriptedProber{caps: []Capabilities{{Internet: true, Validated: true}}}, d, nil)
		require.Equal(t, DefaultInterval, m.interval)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- m.Run(ctx) }()
		require.Eventually(t, m.IsOnline, time.Second, 5*time.Millisecond)
		cancel()
		require.NoError(t, <-done)
	}

	m := &Monitor{listeners: make(map[int]func(State)), prober: &scriptedProber{caps: []Capabilities{{}}}, logger: New(nil, 0, nil).logger}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NotPanics(t, func() { _ = m.Run(ctx) })
}

func startHealth(t *testing.T) (*health.Server, *HealthProber) {
	t.Helper()
	lis := bufconn.Listen(1 << 16)
	srv := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	p, err := NewHealthProber("passthrough:///bufnet", time.Second,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return hs, p
}

func TestHealthProber(t *testing.T) {
	hs, p := startHealth(t)
	ctx := context.Background()

	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	require.Equal(t, Capabilities{Internet: true, Validated: true}, p.Probe(ctx))

	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	require.Equal(t, Capabilities{Internet: true}, p.Probe(ctx))

	hs.Shutdown()
	require.Equal(t, Capabilities{Internet: true}, p.Probe(ctx))
}

func TestHealthProber_Unreachable(t *testing.T) {
	lis := bufconn.Listen(1 << 10)
	require.NoError(t, lis.Close())

	p, err := NewHealthProber("passthrough:///bufnet", 200*time.Millisecond,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }))
	require.NoError(t, err)
	defer p.Close()

	require.Equal(t, Capabilities{}, p.Probe(context.Background()))
}
