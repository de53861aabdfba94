package decision

import (
	"testing"
	"time"

	"github.com/healops/remedy-engine/internal/models"
)

func sampleWith(metrics map[string]float64) models.Sample {
	return models.Sample{Timestamp: time.Now(), Metrics: metrics}
}

func TestDecideMatchesCPURule(t *testing.T) {
	e := NewEngine(nil, nil, time.Minute, nil)

	action := e.Decide(models.DimensionCPU, models.SeverityCritical, sampleWith(map[string]float64{"cpu": 95}))
	if action == nil {
		t.Fatalf("expected an action")
	}
	if action.Type != models.ActionScaleUp {
		t.Fatalf("expected scale_up, got %s", action.Type)
	}
	if action.Target != "application-cluster" {
		t.Fatalf("expected application-cluster, got %s", action.Target)
	}
	if action.Status != models.StatusPending {
		t.Fatalf("expected pending status, got %s", action.Status)
	}
	if action.ID == "" {
		t.Fatalf("expected a generated action ID")
	}
	if action.Params["instances"] != 2 {
		t.Fatalf("expected instances=2, got %v", action.Params["instances"])
	}
}

func TestDecideThresholdNotMet(t *testing.T) {
	e := NewEngine(nil, nil, time.Minute, nil)

	if a := e.Decide(models.DimensionCPU, models.SeverityWarning, sampleWith(map[string]float64{"cpu": 75})); a != nil {
		t.Fatalf("cpu below the rule threshold should not act, got %+v", a)
	}
	if a := e.Decide(models.DimensionUnknown, models.SeverityCritical, sampleWith(map[string]float64{"cpu": 95})); a != nil {
		t.Fatalf("unknown dimension should not act, got %+v", a)
	}
}

func TestDecideSeveritySplitsErrorRateRules(t *testing.T) {
	e := NewEngine(nil, nil, time.Minute, nil)

	a := e.Decide(models.DimensionErrorRate, models.SeverityCritical, sampleWith(map[string]float64{"error_rate": 9}))
	if a == nil || a.Type != models.ActionCircuitBreaker {
		t.Fatalf("critical error rate should circuit-break, got %+v", a)
	}

	e = NewEngine(nil, nil, time.Minute, nil)
	a = e.Decide(models.DimensionErrorRate, models.SeverityWarning, sampleWith(map[string]float64{"error_rate": 9}))
	if a == nil || a.Type != models.ActionTrafficShift {
		t.Fatalf("warning error rate should shift traffic, got %+v", a)
	}
}

func TestDecideLowThroughputRestarts(t *testing.T) {
	e := NewEngine(nil, nil, time.Minute, nil)

	a := e.Decide(models.DimensionThroughput, models.SeverityWarning, sampleWith(map[string]float64{"throughput": 12}))
	if a == nil || a.Type != models.ActionRestartService {
		t.Fatalf("collapsed throughput should restart, got %+v", a)
	}
}

func TestDecideCooldownSingleFire(t *testing.T) {
	e := NewEngine(nil, nil, time.Minute, nil)
	sample := sampleWith(map[string]float64{"cpu": 95})

	first := e.Decide(models.DimensionCPU, models.SeverityCritical, sample)
	second := e.Decide(models.DimensionCPU, models.SeverityCritical, sample)
	if first == nil {
		t.Fatalf("expected the first decision to act")
	}
	if second != nil {
		t.Fatalf("expected the second decision to be blocked, got %+v", second)
	}
	if e.ActiveCooldowns() != 1 {
		t.Fatalf("expected one active cooldown, got %d", e.ActiveCooldowns())
	}

	// Other dimensions are unaffected.
	other := e.Decide(models.DimensionLatency, models.SeverityWarning, sampleWith(map[string]float64{"latency": 1200}))
	if other == nil {
		t.Fatalf("latency decision should not be blocked by the cpu cooldown")
	}
}

func TestDecideCooldownSurvivesFailedAction(t *testing.T) {
	// The cooldown starts when the action is decided, not when it
	// completes, so a failed execution does not reopen the gate early.
	e := NewEngine(nil, nil, time.Minute, nil)
	sample := sampleWith(map[string]float64{"cpu": 95})

	action := e.Decide(models.DimensionCPU, models.SeverityCritical, sample)
	if action == nil {
		t.Fatalf("expected an action")
	}
	action.Status = models.StatusFailed
	action.Error = "backend unreachable"

	if a := e.Decide(models.DimensionCPU, models.SeverityCritical, sample); a != nil {
		t.Fatalf("cooldown should hold after the action failed, got %+v", a)
	}
}

func TestDecideCooldownExpires(t *testing.T) {
	e := NewEngine(nil, nil, time.Minute, nil)
	sample := sampleWith(map[string]float64{"cpu": 95})

	base := time.Now()
	e.now = func() time.Time { return base }
	if e.Decide(models.DimensionCPU, models.SeverityCritical, sample) == nil {
		t.Fatalf("expected the first decision to act")
	}

	e.now = func() time.Time { return base.Add(61 * time.Second) }
	if e.Decide(models.DimensionCPU, models.SeverityCritical, sample) == nil {
		t.Fatalf("expected a new action after the cooldown expired")
	}
}

func TestDecideCustomRuleMetricGuard(t *testing.T) {
	lat := 700.0
	rules := []Rule{
		{
			ID:        "mem-pressure-rollback",
			Dimension: models.DimensionMemory,
			Metric:    models.DimensionLatency,
			Above:     &lat,
			Action:    models.ActionRollback,
			Target:    "release",
		},
	}
	e := NewEngine(rules, nil, time.Minute, nil)

	a := e.Decide(models.DimensionMemory, models.SeverityCritical, sampleWith(map[string]float64{"memory": 92, "latency": 900}))
	if a == nil || a.Type != models.ActionRollback {
		t.Fatalf("expected rollback via the latency guard, got %+v", a)
	}
}
