package models

import "time"

// RemediationInsight aggregates action outcomes for one anomaly dimension.
type RemediationInsight struct {
	Dimension      Dimension  `json:"dimension"`
	Actions        int        `json:"actions"`
	Completed      int        `json:"completed"`
	Failed         int        `json:"failed"`
	SuccessRate    float64    `json:"success_rate"`
	DominantAction ActionType `json:"dominant_action"`
	LastApplied    time.Time  `json:"last_applied"`
}
