package backend

import (
	"context"
	"log/slog"
	"time"
)

// Simulated is the deterministic Backend used for demos and tests: every
// capability succeeds after a fixed delay.
type Simulated struct {
	delay  time.Duration
	logger *slog.Logger
}

// NewSimulated constructs a Simulated backend with the given per-call delay.
func NewSimulated(delay time.Duration, logger *slog.Logger) *Simulated {
	if delay < 0 {
		delay = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Simulated{delay: delay, logger: logger}
}

// Name identifies the adapter.
func (s *Simulated) Name() string { return "simulated" }

func (s *Simulated) apply(ctx context.Context, capability, target string) error {
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.logger.Debug("simulated capability applied",
		slog.String("capability", capability), slog.String("target", target))
	return nil
}

func (s *Simulated) ScaleUp(ctx context.Context, target string, _ map[string]any) error {
	return s.apply(ctx, "scale_up", target)
}

func (s *Simulated) ScaleDown(ctx context.Context, target string, _ map[string]any) error {
	return s.apply(ctx, "scale_down", target)
}

func (s *Simulated) Restart(ctx context.Context, target string, _ map[string]any) error {
	return s.apply(ctx, "restart", target)
}

func (s *Simulated) EnableCache(ctx context.Context, target string, _ map[string]any) error {
	return s.apply(ctx, "enable_cache", target)
}

func (s *Simulated) ClearCache(ctx context.Context, target string, _ map[string]any) error {
	return s.apply(ctx, "clear_cache", target)
}

func (s *Simulated) CircuitBreak(ctx context.Context, target string, _ map[string]any) error {
	return s.apply(ctx, "circuit_break", target)
}

func (s *Simulated) TrafficShift(ctx context.Context, target string, _ map[string]any) error {
	return s.apply(ctx, "traffic_shift", target)
}

func (s *Simulated) Rollback(ctx context.Context, target string, _ map[string]any) error {
	return s.apply(ctx, "rollback", target)
}
