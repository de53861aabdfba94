package models

import "time"

// ActionType enumerates corrective operations the executor can dispatch.
type ActionType string

const (
	ActionScaleUp        ActionType = "scale_up"
	ActionScaleDown      ActionType = "scale_down"
	ActionRestartService ActionType = "restart_service"
	ActionEnableCache    ActionType = "enable_cache"
	ActionClearCache     ActionType = "clear_cache"
	ActionCircuitBreaker ActionType = "circuit_breaker"
	ActionTrafficShift   ActionType = "traffic_shift"
	ActionRollback       ActionType = "rollback"
)

// ActionStatus tracks the remediation lifecycle.
// Transitions: Pending -> Executing -> {Completed | Failed}. Terminal states
// are never left.
type ActionStatus string

const (
	StatusPending   ActionStatus = "pending"
	StatusExecuting ActionStatus = "executing"
	StatusCompleted ActionStatus = "completed"
	StatusFailed    ActionStatus = "failed"
)

// Terminal reports whether the status is an end state.
func (s ActionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// RemediationAction is a corrective operation decided by the decision engine.
// Created with StatusPending; mutated only by the executor afterwards.
type RemediationAction struct {
	ID               string         `json:"id"`
	Type             ActionType     `json:"type"`
	Dimension        Dimension      `json:"dimension"`
	Target           string         `json:"target"`
	Params           map[string]any `json:"params,omitempty"`
	Status           ActionStatus   `json:"status"`
	CreatedAt        time.Time      `json:"created_at"`
	ExecutionSeconds float64        `json:"execution_seconds,omitempty"`
	Error            string         `json:"error,omitempty"`
}

// Statistics is a read-only projection over orchestrator state.
type Statistics struct {
	TotalActions     int     `json:"total_actions"`
	CompletedActions int     `json:"completed_actions"`
	FailedActions    int     `json:"failed_actions"`
	SuccessRate      float64 `json:"success_rate"`
	MeanExecSeconds  float64 `json:"mean_exec_seconds"`
	ActiveActions    int     `json:"active_actions"`
	ActiveCooldowns  int     `json:"active_cooldowns"`
	WindowSize       int     `json:"window_size"`
	ModelTrained     bool    `json:"model_trained"`
	SamplesIngested  int64   `json:"samples_ingested"`
	AnomaliesFlagged int64   `json:"anomalies_flagged"`
}
