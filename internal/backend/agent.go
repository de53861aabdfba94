package backend

import (
	"context"
	"fmt"
	"time"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Agent is the adapter for a remote remediation agent reachable over gRPC.
// Connectivity and liveness probing are real; the capability calls themselves
// are not wired to a command protocol yet and return ErrNotImplemented.
type Agent struct {
	addr string
	conn *grpc.ClientConn
}

// NewAgent dials the remediation agent. The connection carries Prometheus
// client interceptors so per-RPC metrics line up with the rest of the engine.
func NewAgent(addr string) (*Agent, error) {
	if addr == "" {
		return nil, fmt.Errorf("agent address is required")
	}
	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(grpc_prometheus.UnaryClientInterceptor),
		grpc.WithStreamInterceptor(grpc_prometheus.StreamClientInterceptor),
	)
	if err != nil {
		return nil, fmt.Errorf("dial agent %s: %w", addr, err)
	}
	return &Agent{addr: addr, conn: conn}, nil
}

// Name identifies the adapter.
func (a *Agent) Name() string { return "agent" }

// Ready probes the agent's gRPC health service.
func (a *Agent) Ready(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	resp, err := healthpb.NewHealthClient(a.conn).Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		return fmt.Errorf("agent health check: %w", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("agent not serving: %s", resp.GetStatus())
	}
	return nil
}

// Close releases the underlying connection.
func (a *Agent) Close() error {
	if a.conn == nil {
		return nil
	}
	return a.conn.Close()
}

func (a *Agent) unsupported(capability string) error {
	return fmt.Errorf("agent %s %s: %w", a.addr, capability, ErrNotImplemented)
}

func (a *Agent) ScaleUp(context.Context, string, map[string]any) error {
	return a.unsupported("scale_up")
}

func (a *Agent) ScaleDown(context.Context, string, map[string]any) error {
	return a.unsupported("scale_down")
}

func (a *Agent) Restart(context.Context, string, map[string]any) error {
	return a.unsupported("restart")
}

func (a *Agent) EnableCache(context.Context, string, map[string]any) error {
	return a.unsupported("enable_cache")
}

func (a *Agent) ClearCache(context.Context, string, map[string]any) error {
	return a.unsupported("clear_cache")
}

func (a *Agent) CircuitBreak(context.Context, string, map[string]any) error {
	return a.unsupported("circuit_break")
}

func (a *Agent) TrafficShift(context.Context, string, map[string]any) error {
	return a.unsupported("traffic_shift")
}

func (a *Agent) Rollback(context.Context, string, map[string]any) error {
	return a.unsupported("rollback")
}
