package decision

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/healops/remedy-engine/internal/models"
)

// Rule maps an anomaly dimension to a candidate action, guarded by a metric
// threshold and an optional severity filter. Rules are evaluated in order and
// the first match wins.
type Rule struct {
	ID        string           `yaml:"id"`
	Dimension models.Dimension `yaml:"dimension"`
	// Metric names the guard metric; empty means the rule's dimension.
	Metric   models.Dimension  `yaml:"metric"`
	Above    *float64          `yaml:"above"`
	Below    *float64          `yaml:"below"`
	Severity models.Severity   `yaml:"severity"`
	Action   models.ActionType `yaml:"action"`
	Target   string            `yaml:"target"`
	Params   map[string]any    `yaml:"params"`
}

// ruleFile is the YAML root for an external rule pack.
type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// DefaultRules returns the built-in decision table.
func DefaultRules() []Rule {
	f := func(v float64) *float64 { return &v }
	return []Rule{
		{
			ID:        "cpu-scale-up",
			Dimension: models.DimensionCPU,
			Above:     f(80),
			Action:    models.ActionScaleUp,
			Target:    "application-cluster",
			Params:    map[string]any{"instances": 2},
		},
		{
			ID:        "latency-enable-cache",
			Dimension: models.DimensionLatency,
			Above:     f(800),
			Action:    models.ActionEnableCache,
			Target:    "response-cache",
			Params:    map[string]any{"ttl": 300},
		},
		{
			ID:        "error-rate-circuit-break",
			Dimension: models.DimensionErrorRate,
			Above:     f(5),
			Severity:  models.SeverityCritical,
			Action:    models.ActionCircuitBreaker,
			Target:    "upstream-dependencies",
		},
		{
			ID:        "error-rate-traffic-shift",
			Dimension: models.DimensionErrorRate,
			Above:     f(5),
			Action:    models.ActionTrafficShift,
			Target:    "traffic-manager",
			Params:    map[string]any{"shift_percent": 50},
		},
		{
			ID:        "throughput-restart",
			Dimension: models.DimensionThroughput,
			Below:     f(30),
			Action:    models.ActionRestartService,
			Target:    "application-service",
		},
		{
			ID:        "disk-io-clear-cache",
			Dimension: models.DimensionDiskIO,
			Above:     f(85),
			Action:    models.ActionClearCache,
			Target:    "disk-cache",
		},
	}
}

// LoadRules reads a rule pack from path. An empty path or missing file means
// "use the built-in table" and returns nil rules without error.
func LoadRules(path string) ([]Rule, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	return file.Rules, nil
}

// matches reports whether the rule applies to the anomaly and metric snapshot.
func (r Rule) matches(dim models.Dimension, severity models.Severity, sample models.Sample) bool {
	if r.Dimension != dim {
		return false
	}
	if r.Severity != "" && r.Severity != severity {
		return false
	}
	metric := r.Metric
	if metric == "" {
		metric = r.Dimension
	}
	value := sample.Value(metric)
	if r.Above != nil && value <= *r.Above {
		return false
	}
	if r.Below != nil && value >= *r.Below {
		return false
	}
	return true
}
