// Package executor drives remediation actions through their lifecycle against
// a pluggable backend.
package executor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/healops/remedy-engine/internal/backend"
	"github.com/healops/remedy-engine/internal/metrics"
	"github.com/healops/remedy-engine/internal/models"
	"github.com/healops/remedy-engine/internal/utils"
)

// Executor transitions actions Pending -> Executing -> {Completed | Failed},
// tracks in-flight actions by target, and appends every outcome to a bounded
// history.
type Executor struct {
	mu         sync.Mutex
	backend    backend.Backend
	logger     *slog.Logger
	active     map[string]*models.RemediationAction
	history    []models.RemediationAction
	historyCap int
	completed  int
	failed     int
	latencies  *utils.LatencyTracker
}

// New constructs an Executor around the given backend.
func New(b backend.Backend, historyCap int, logger *slog.Logger) *Executor {
	if historyCap <= 0 {
		historyCap = 500
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		backend:    b,
		logger:     logger,
		active:     make(map[string]*models.RemediationAction),
		historyCap: historyCap,
		latencies:  utils.NewLatencyTracker(historyCap),
	}
}

// Execute runs the action against the backend. Failures are captured in the
// returned ExecutionError and on the action itself; they are never raised to
// the caller as anything harder. The action always ends terminal and always
// lands in history.
func (x *Executor) Execute(ctx context.Context, action *models.RemediationAction) (bool, *ExecutionError) {
	if action == nil {
		return false, &ExecutionError{Kind: KindNoHandler, Message: "nil action"}
	}

	x.mu.Lock()
	action.Status = models.StatusExecuting
	x.active[action.Target] = action
	x.mu.Unlock()

	start := time.Now()
	err := x.dispatch(ctx, action)
	elapsed := time.Since(start)

	// Registry holds a pointer to the action, so terminal mutation happens
	// under the same lock that readers of the registry take.
	x.mu.Lock()
	var execErr *ExecutionError
	switch {
	case err == nil:
		action.Status = models.StatusCompleted
		action.ExecutionSeconds = elapsed.Seconds()
		x.latencies.Observe(elapsed)
	case errors.Is(err, errNoHandler):
		action.Status = models.StatusFailed
		action.Error = "no handler registered"
		execErr = &ExecutionError{Kind: KindNoHandler, Message: action.Error}
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		action.Status = models.StatusFailed
		action.Error = err.Error()
		execErr = &ExecutionError{Kind: KindCanceled, Message: action.Error}
	default:
		action.Status = models.StatusFailed
		action.Error = err.Error()
		execErr = &ExecutionError{Kind: KindBackend, Message: action.Error}
	}

	delete(x.active, action.Target)
	if action.Status == models.StatusCompleted {
		x.completed++
	} else {
		x.failed++
	}
	x.history = append(x.history, *action)
	if len(x.history) > x.historyCap {
		copy(x.history[0:], x.history[1:])
		x.history = x.history[:x.historyCap]
	}
	x.mu.Unlock()

	outcome := metrics.OutcomeSuccess
	if execErr != nil {
		outcome = metrics.OutcomeError
		x.logger.Warn("action failed",
			slog.String("id", action.ID),
			slog.String("type", string(action.Type)),
			slog.String("target", action.Target),
			slog.String("kind", string(execErr.Kind)),
			slog.String("reason", execErr.Message))
	} else {
		x.logger.Info("action completed",
			slog.String("id", action.ID),
			slog.String("type", string(action.Type)),
			slog.String("target", action.Target),
			slog.Duration("took", elapsed))
	}
	metrics.ObserveAction(string(action.Type), outcome, elapsed)

	return execErr == nil, execErr
}

var errNoHandler = errors.New("no handler registered")

// dispatch selects the backend capability for the action type. The switch is
// exhaustive over models.ActionType; unknown types fall through to
// errNoHandler, as does a missing backend.
func (x *Executor) dispatch(ctx context.Context, action *models.RemediationAction) error {
	if x.backend == nil {
		return errNoHandler
	}
	switch action.Type {
	case models.ActionScaleUp:
		return x.backend.ScaleUp(ctx, action.Target, action.Params)
	case models.ActionScaleDown:
		return x.backend.ScaleDown(ctx, action.Target, action.Params)
	case models.ActionRestartService:
		return x.backend.Restart(ctx, action.Target, action.Params)
	case models.ActionEnableCache:
		return x.backend.EnableCache(ctx, action.Target, action.Params)
	case models.ActionClearCache:
		return x.backend.ClearCache(ctx, action.Target, action.Params)
	case models.ActionCircuitBreaker:
		return x.backend.CircuitBreak(ctx, action.Target, action.Params)
	case models.ActionTrafficShift:
		return x.backend.TrafficShift(ctx, action.Target, action.Params)
	case models.ActionRollback:
		return x.backend.Rollback(ctx, action.Target, action.Params)
	default:
		return errNoHandler
	}
}

// Active returns a copy of the in-flight actions.
func (x *Executor) Active() []models.RemediationAction {
	x.mu.Lock()
	defer x.mu.Unlock()

	out := make([]models.RemediationAction, 0, len(x.active))
	for _, action := range x.active {
		out = append(out, *action)
	}
	return out
}

// History returns up to limit most recent outcomes, newest first.
// limit <= 0 returns everything retained.
func (x *Executor) History(limit int) []models.RemediationAction {
	x.mu.Lock()
	defer x.mu.Unlock()

	n := len(x.history)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]models.RemediationAction, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, x.history[i])
	}
	return out
}

// Totals returns lifetime completed and failed counts.
func (x *Executor) Totals() (completed, failed int) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.completed, x.failed
}

// MeanExecution returns the mean execution time of completed actions.
func (x *Executor) MeanExecution() time.Duration {
	return x.latencies.Mean()
}
