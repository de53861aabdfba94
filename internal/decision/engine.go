// Package decision maps classified anomalies onto remediation actions,
// gated by per-dimension cooldowns.
package decision

import (
	"log/slog"
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/healops/remedy-engine/internal/models"
)

// Engine selects a candidate remediation for an anomaly.
type Engine struct {
	rules     []Rule
	cooldowns CooldownStore
	ttl       time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewEngine constructs an Engine. nil rules select the built-in table; a nil
// store gets an in-memory one.
func NewEngine(rules []Rule, cooldowns CooldownStore, ttl time.Duration, logger *slog.Logger) *Engine {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	if cooldowns == nil {
		cooldowns = NewMemoryCooldowns(0)
	}
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		rules:     rules,
		cooldowns: cooldowns,
		ttl:       ttl,
		logger:    logger,
		now:       time.Now,
	}
}

// Decide returns a Pending action for the anomaly, or nil when the dimension
// is cooling down or no rule matches. The cooldown starts at decision time,
// before the action runs: a second trigger while the first is still in
// flight must not produce a duplicate, even if the first later fails.
func (e *Engine) Decide(dim models.Dimension, severity models.Severity, sample models.Sample) *models.RemediationAction {
	now := e.now()

	if e.cooldowns.Active(string(dim), now) {
		e.logger.Debug("decision blocked by cooldown", slog.String("dimension", string(dim)))
		return nil
	}

	for _, rule := range e.rules {
		if !rule.matches(dim, severity, sample) {
			continue
		}

		e.cooldowns.Set(string(dim), now.Add(e.ttl))

		action := &models.RemediationAction{
			ID:        uuid.NewString(),
			Type:      rule.Action,
			Dimension: dim,
			Target:    rule.Target,
			Status:    models.StatusPending,
			CreatedAt: now.UTC(),
		}
		if len(rule.Params) > 0 {
			action.Params = maps.Clone(rule.Params)
		}

		e.logger.Info("remediation decided",
			slog.String("rule", rule.ID),
			slog.String("action", string(rule.Action)),
			slog.String("dimension", string(dim)),
			slog.String("severity", string(severity)))
		return action
	}

	return nil
}

// ActiveCooldowns returns the number of unexpired cooldown entries.
func (e *Engine) ActiveCooldowns() int {
	return e.cooldowns.ActiveCount(e.now())
}
