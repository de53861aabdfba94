// Package orchestrator owns the detection-to-remediation control loop state.
package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/healops/remedy-engine/internal/backend"
	"github.com/healops/remedy-engine/internal/classifier"
	"github.com/healops/remedy-engine/internal/decision"
	"github.com/healops/remedy-engine/internal/detector"
	"github.com/healops/remedy-engine/internal/executor"
	"github.com/healops/remedy-engine/internal/forecast"
	"github.com/healops/remedy-engine/internal/metrics"
	"github.com/healops/remedy-engine/internal/models"
	"github.com/healops/remedy-engine/internal/utils"
	"github.com/healops/remedy-engine/internal/window"
)

// classifyK is how many recent window entries the attribution baseline uses.
const classifyK = 10

// Options wires the orchestrator's components together.
type Options struct {
	WindowCapacity     int
	Detector           detector.Config
	Rules              []decision.Rule
	CooldownTTL        time.Duration
	CooldownMaxKeys    int
	HistoryCapacity    int
	Backend            backend.Backend
	ForecastAlphas     map[models.Dimension]float64
	ForecastThresholds map[models.Dimension]float64
	ForecastSteps      int
}

// Orchestrator is the single owner of all mutable control-loop state. Sample
// ingestion, detection, and decisions run serially under one lock; action
// dispatch is fire-and-forget and tracked for shutdown.
type Orchestrator struct {
	logger *slog.Logger

	mu         sync.Mutex
	window     *window.MetricWindow
	model      *detector.OutlierModel
	classifier *classifier.Classifier
	forecaster *forecast.Forecaster
	engine     *decision.Engine
	executor   *executor.Executor

	forecastThresholds map[models.Dimension]float64
	forecastSteps      int

	samples   atomic.Int64
	anomalies atomic.Int64
	dispatch  sync.WaitGroup
}

// New constructs an Orchestrator from the given options.
func New(opts Options, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.ForecastSteps <= 0 {
		opts.ForecastSteps = 5
	}

	cooldowns := decision.NewMemoryCooldowns(opts.CooldownMaxKeys)

	return &Orchestrator{
		logger:             utils.ComponentLogger(logger, "orchestrator"),
		window:             window.New(opts.WindowCapacity),
		model:              detector.New(opts.Detector, utils.ComponentLogger(logger, "detector")),
		classifier:         classifier.New(),
		forecaster:         forecast.New(opts.ForecastAlphas),
		engine:             decision.NewEngine(opts.Rules, cooldowns, opts.CooldownTTL, utils.ComponentLogger(logger, "decision")),
		executor:           executor.New(opts.Backend, opts.HistoryCapacity, utils.ComponentLogger(logger, "executor")),
		forecastThresholds: opts.ForecastThresholds,
		forecastSteps:      opts.ForecastSteps,
	}
}

// AddMetrics ingests a sample into the window and forecaster without running
// detection.
func (o *Orchestrator) AddMetrics(sample models.Sample) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ingest(sample)
}

func (o *Orchestrator) ingest(sample models.Sample) models.FeatureVector {
	vec := o.window.Add(sample)
	for _, dim := range models.Dimensions() {
		o.forecaster.Update(dim, sample.Value(dim))
	}
	o.samples.Add(1)
	metrics.ObserveSample()
	return vec
}

// DetectAnomaly ingests the sample and scores it. It returns nil while the
// model is untrained (training is attempted automatically once the window
// reaches the threshold). A scored sample always yields an Anomaly whose
// IsAnomaly flag carries the verdict.
func (o *Orchestrator) DetectAnomaly(sample models.Sample) *models.Anomaly {
	o.mu.Lock()
	defer o.mu.Unlock()

	vec := o.ingest(sample)

	if !o.model.Trained() {
		o.model.Train(o.window.Snapshot())
	}

	res := o.model.Score(vec)
	if res == nil {
		return nil
	}

	anomaly := &models.Anomaly{
		IsAnomaly: res.IsOutlier,
		Score:     res.Score,
		Dimension: models.DimensionUnknown,
		Severity:  res.Severity,
		Timestamp: sample.Timestamp,
		Sample:    sample,
	}

	if res.IsOutlier {
		anomaly.Dimension = o.classify(vec)
		o.anomalies.Add(1)
		metrics.ObserveAnomaly(string(anomaly.Severity), string(anomaly.Dimension))
		o.logger.Info("anomaly detected",
			slog.Float64("score", res.Score),
			slog.String("severity", string(res.Severity)),
			slog.String("dimension", string(anomaly.Dimension)))
	}
	return anomaly
}

// classify attributes the anomaly using the window entries preceding the
// current sample.
func (o *Orchestrator) classify(current models.FeatureVector) models.Dimension {
	recent := o.window.Last(classifyK + 1)
	if len(recent) > 0 {
		// Drop the newest entry: it is the sample under scrutiny.
		recent = recent[:len(recent)-1]
	}
	return o.classifier.Classify(current, recent)
}

// Decide routes an anomaly through the decision engine. Nil, non-anomalous,
// cooled-down, and rule-miss inputs all yield nil; none are errors.
func (o *Orchestrator) Decide(anomaly *models.Anomaly) *models.RemediationAction {
	if anomaly == nil || !anomaly.IsAnomaly {
		return nil
	}
	return o.engine.Decide(anomaly.Dimension, anomaly.Severity, anomaly.Sample)
}

// Execute runs the action synchronously and reports success.
func (o *Orchestrator) Execute(ctx context.Context, action *models.RemediationAction) bool {
	ok, _ := o.executor.Execute(ctx, action)
	return ok
}

// Dispatch runs the action in the background. In-flight dispatches are
// drained by Close.
func (o *Orchestrator) Dispatch(ctx context.Context, action *models.RemediationAction) {
	o.dispatch.Add(1)
	go func() {
		defer o.dispatch.Done()
		o.executor.Execute(ctx, action)
	}()
}

// ProcessSample runs the full loop for one sample: detect, emit advisory
// forecasts, decide, and dispatch. Every failure mode is local; a bad sample
// never stops the loop.
func (o *Orchestrator) ProcessSample(ctx context.Context, sample models.Sample) (*models.Anomaly, *models.RemediationAction) {
	anomaly := o.DetectAnomaly(sample)

	for _, alert := range o.forecaster.Alerts(o.forecastThresholds, o.forecastSteps) {
		metrics.ObserveForecastAlert(string(alert.Metric))
		o.logger.Warn("forecast alert",
			slog.String("metric", string(alert.Metric)),
			slog.Float64("predicted", alert.Predicted),
			slog.Float64("threshold", alert.Threshold),
			slog.Int("steps_ahead", alert.StepsAhead))
	}

	action := o.Decide(anomaly)
	if action != nil {
		o.Dispatch(ctx, action)
	}
	return anomaly, action
}

// Retrain refits the model on the current window contents.
func (o *Orchestrator) Retrain() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.model.Retrain(o.window.Snapshot())
}

// SaveModel persists the fitted model to path.
func (o *Orchestrator) SaveModel(path string) bool {
	return o.model.Save(path)
}

// LoadModel replaces the model state from path.
func (o *Orchestrator) LoadModel(path string) bool {
	return o.model.Load(path)
}

// History returns up to limit most recent action outcomes, newest first.
func (o *Orchestrator) History(limit int) []models.RemediationAction {
	return o.executor.History(limit)
}

// ActiveActions returns the currently executing actions.
func (o *Orchestrator) ActiveActions() []models.RemediationAction {
	return o.executor.Active()
}

// ForecastAlerts exposes the current advisory alerts for reporting layers.
func (o *Orchestrator) ForecastAlerts() []models.ForecastAlert {
	return o.forecaster.Alerts(o.forecastThresholds, o.forecastSteps)
}

// Statistics returns a read-only projection of the engine state.
func (o *Orchestrator) Statistics() models.Statistics {
	completed, failed := o.executor.Totals()
	total := completed + failed

	stats := models.Statistics{
		TotalActions:     total,
		CompletedActions: completed,
		FailedActions:    failed,
		MeanExecSeconds:  o.executor.MeanExecution().Seconds(),
		ActiveActions:    len(o.executor.Active()),
		ActiveCooldowns:  o.engine.ActiveCooldowns(),
		WindowSize:       o.window.Len(),
		ModelTrained:     o.model.Trained(),
		SamplesIngested:  o.samples.Load(),
		AnomaliesFlagged: o.anomalies.Load(),
	}
	if total > 0 {
		stats.SuccessRate = float64(completed) / float64(total)
	}
	return stats
}

// Close waits for in-flight action dispatches, up to the context deadline.
func (o *Orchestrator) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		o.dispatch.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
