// Package backend defines the remediation capability set and its adapters.
package backend

import (
	"context"
	"errors"
)

// ErrNotImplemented marks a capability that an adapter does not support yet.
var ErrNotImplemented = errors.New("capability not implemented")

// Backend adapts the remediation capability set to one infrastructure target.
// One method per capability keeps dispatch exhaustive at the call site.
type Backend interface {
	Name() string

	ScaleUp(ctx context.Context, target string, params map[string]any) error
	ScaleDown(ctx context.Context, target string, params map[string]any) error
	Restart(ctx context.Context, target string, params map[string]any) error
	EnableCache(ctx context.Context, target string, params map[string]any) error
	ClearCache(ctx context.Context, target string, params map[string]any) error
	CircuitBreak(ctx context.Context, target string, params map[string]any) error
	TrafficShift(ctx context.Context, target string, params map[string]any) error
	Rollback(ctx context.Context, target string, params map[string]any) error
}
