package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/healops/remedy-engine/internal/backend"
	"github.com/healops/remedy-engine/internal/detector"
	"github.com/healops/remedy-engine/internal/models"
)

var metricRanges = map[string][2]float64{
	"cpu":                {40, 70},
	"memory":             {50, 75},
	"latency":            {150, 400},
	"error_rate":         {0, 3},
	"throughput":         {80, 150},
	"disk_io":            {20, 60},
	"network_throughput": {100, 300},
}

// normalSample produces in-range readings with a fixed interleaved spread so
// runs are reproducible without a random source.
func normalSample(i int) models.Sample {
	metrics := make(map[string]float64, len(metricRanges))
	for d, dim := range models.Dimensions() {
		r := metricRanges[string(dim)]
		frac := float64((i*7+d*3)%20) / 19.0
		metrics[string(dim)] = r[0] + frac*(r[1]-r[0])
	}
	return models.Sample{Timestamp: time.Now().UTC(), Metrics: metrics}
}

// cpuSpikeSample is a saturated-CPU incident: the CPU reading dominates, with
// the secondary symptoms such an incident drags along.
func cpuSpikeSample() models.Sample {
	return models.Sample{
		Timestamp: time.Now().UTC(),
		Metrics: map[string]float64{
			"cpu":                95,
			"memory":             80,
			"latency":            450,
			"error_rate":         1.5,
			"throughput":         75,
			"disk_io":            40,
			"network_throughput": 200,
		},
	}
}

func newTestOrchestrator(delay time.Duration) *Orchestrator {
	return New(Options{
		WindowCapacity:  100,
		Detector:        detector.DefaultConfig(),
		CooldownTTL:     time.Minute,
		HistoryCapacity: 50,
		Backend:         backend.NewSimulated(delay, nil),
		ForecastThresholds: map[models.Dimension]float64{
			models.DimensionCPU: 85,
		},
		ForecastSteps: 5,
	}, nil)
}

func TestDetectBeforeTrainingReturnsNil(t *testing.T) {
	orch := newTestOrchestrator(time.Millisecond)

	for i := 0; i < 10; i++ {
		if anomaly := orch.DetectAnomaly(normalSample(i)); anomaly != nil {
			t.Fatalf("sample %d: expected no verdict before training, got %+v", i, anomaly)
		}
	}
	if orch.Statistics().ModelTrained {
		t.Fatalf("model should not train on a short window")
	}
}

func TestEndToEndRemediation(t *testing.T) {
	orch := newTestOrchestrator(10 * time.Millisecond)

	for i := 0; i < 20; i++ {
		orch.AddMetrics(normalSample(i))
	}
	if orch.Statistics().ModelTrained {
		t.Fatalf("model should still be untrained before the first detection")
	}

	anomaly := orch.DetectAnomaly(cpuSpikeSample())
	if anomaly == nil {
		t.Fatalf("expected a verdict once the window reached the training threshold")
	}
	if !anomaly.IsAnomaly {
		t.Fatalf("expected the spike to be flagged, score %v", anomaly.Score)
	}
	if anomaly.Severity != models.SeverityCritical {
		t.Fatalf("expected critical severity, got %s (score %v)", anomaly.Severity, anomaly.Score)
	}
	if anomaly.Dimension != models.DimensionCPU {
		t.Fatalf("expected cpu attribution, got %s", anomaly.Dimension)
	}

	action := orch.Decide(anomaly)
	if action == nil {
		t.Fatalf("expected a remediation decision")
	}
	if action.Type != models.ActionScaleUp || action.Target != "application-cluster" {
		t.Fatalf("expected scale_up on application-cluster, got %s on %s", action.Type, action.Target)
	}
	if action.Status != models.StatusPending {
		t.Fatalf("expected pending before execution, got %s", action.Status)
	}

	if !orch.Execute(context.Background(), action) {
		t.Fatalf("expected the simulated backend to succeed")
	}
	if action.Status != models.StatusCompleted {
		t.Fatalf("expected completed, got %s", action.Status)
	}
	if action.ExecutionSeconds <= 0 {
		t.Fatalf("expected execution seconds recorded, got %v", action.ExecutionSeconds)
	}

	stats := orch.Statistics()
	if stats.TotalActions != 1 || stats.CompletedActions != 1 || stats.FailedActions != 0 {
		t.Fatalf("statistics wrong: %+v", stats)
	}
	if stats.SuccessRate != 1 {
		t.Fatalf("expected success rate 1, got %v", stats.SuccessRate)
	}
	if !stats.ModelTrained {
		t.Fatalf("expected the model to be trained")
	}
	if stats.SamplesIngested != 21 {
		t.Fatalf("expected 21 samples ingested, got %d", stats.SamplesIngested)
	}
	if stats.ActiveCooldowns != 1 {
		t.Fatalf("expected the cpu cooldown to be active, got %d", stats.ActiveCooldowns)
	}

	// The cooldown gates a repeat decision for the same dimension.
	if repeat := orch.Decide(anomaly); repeat != nil {
		t.Fatalf("expected the repeat decision to be blocked, got %+v", repeat)
	}

	hist := orch.History(10)
	if len(hist) != 1 || hist[0].Status != models.StatusCompleted {
		t.Fatalf("history wrong: %+v", hist)
	}
}

func TestProcessSampleDispatchesAndDrains(t *testing.T) {
	orch := newTestOrchestrator(20 * time.Millisecond)

	for i := 0; i < 20; i++ {
		orch.AddMetrics(normalSample(i))
	}

	anomaly, action := orch.ProcessSample(context.Background(), cpuSpikeSample())
	if anomaly == nil || !anomaly.IsAnomaly {
		t.Fatalf("expected a flagged anomaly")
	}
	if action == nil {
		t.Fatalf("expected a dispatched action")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := orch.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	hist := orch.History(1)
	if len(hist) != 1 {
		t.Fatalf("expected the dispatched action in history, got %d entries", len(hist))
	}
	if !hist[0].Status.Terminal() {
		t.Fatalf("expected a terminal outcome after drain, got %s", hist[0].Status)
	}
	if hist[0].Status != models.StatusCompleted {
		t.Fatalf("expected the simulated backend to complete, got %s", hist[0].Status)
	}
}

func TestForecastAlertsOnRisingTrend(t *testing.T) {
	orch := newTestOrchestrator(time.Millisecond)

	for i := 0; i < 10; i++ {
		s := normalSample(i)
		s.Metrics["cpu"] = 60 + 3*float64(i)
		orch.AddMetrics(s)
	}

	alerts := orch.ForecastAlerts()
	if len(alerts) == 0 {
		t.Fatalf("expected a proactive cpu alert")
	}
	if alerts[0].Metric != models.DimensionCPU {
		t.Fatalf("expected cpu alert, got %s", alerts[0].Metric)
	}
	if alerts[0].Predicted <= 85 {
		t.Fatalf("expected prediction above the ceiling, got %v", alerts[0].Predicted)
	}
}

func TestRetrainAfterWindowGrowth(t *testing.T) {
	orch := newTestOrchestrator(time.Millisecond)

	for i := 0; i < 10; i++ {
		orch.AddMetrics(normalSample(i))
	}
	if orch.Retrain() {
		t.Fatalf("retrain should fail below the threshold")
	}

	for i := 10; i < 25; i++ {
		orch.AddMetrics(normalSample(i))
	}
	if !orch.Retrain() {
		t.Fatalf("retrain should succeed once the window is large enough")
	}
	if !orch.Statistics().ModelTrained {
		t.Fatalf("expected trained=true")
	}
}
