package monitor

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthProber asks the backend's gRPC health service.
type HealthProber struct {
	conn    *grpc.ClientConn
	client  healthpb.HealthClient
	timeout time.Duration
}

func NewHealthProber(target string, timeout time.Duration, opts ...grpc.DialOption) (*HealthProber, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, err
	}
	return &HealthProber{conn: conn, client: healthpb.NewHealthClient(conn), timeout: timeout}, nil
}

// Probe maps SERVING to a validated path, any other status to an
// unvalidated one, and an RPC failure to no path at all.
func (p *HealthProber) Probe(ctx context.Context) Capabilities {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		return Capabilities{}
	}
	if resp.GetStatus() == healthpb.HealthCheckResponse_SERVING {
		return Capabilities{Internet: true, Validated: true}
	}
	return Capabilities{Internet: true}
}

func (p *HealthProber) Close() error {
	return p.conn.Close()
}
