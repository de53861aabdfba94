package models

import "time"

// Severity captures anomaly impact levels.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Anomaly is the per-detection verdict for one sample. It is ephemeral: the
// engine produces one per detection call and does not persist it.
type Anomaly struct {
	IsAnomaly bool      `json:"is_anomaly"`
	Score     float64   `json:"score"`
	Dimension Dimension `json:"dimension"`
	Severity  Severity  `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
	Sample    Sample    `json:"sample"`
}

// ForecastAlert is a proactive advisory emitted when a metric is predicted to
// cross its ceiling within the forecast horizon. Advisory only: never routed
// through the decision engine.
type ForecastAlert struct {
	Metric     Dimension `json:"metric"`
	Predicted  float64   `json:"predicted"`
	Threshold  float64   `json:"threshold"`
	StepsAhead int       `json:"steps_ahead"`
	IssuedAt   time.Time `json:"issued_at"`
}
