package detector

import (
	"log/slog"
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/healops/remedy-engine/internal/models"
)

// Config tunes the outlier model.
type Config struct {
	// TrainingThreshold is the minimum window size before Train succeeds.
	TrainingThreshold int
	// Contamination is the expected fraction of outliers, used to calibrate
	// the decision boundary.
	Contamination float64
	Trees         int
	SubsampleSize int
	// Seed makes training reproducible. Zero selects the default seed.
	Seed int64
}

// DefaultConfig returns the tuning used by the engine unless overridden.
func DefaultConfig() Config {
	return Config{
		TrainingThreshold: 20,
		Contamination:     0.10,
		Trees:             100,
		SubsampleSize:     256,
		Seed:              42,
	}
}

// Result is the model's verdict for a single sample.
type Result struct {
	// Score is continuous; more negative means more anomalous.
	Score float64
	// IsOutlier is true when the score crosses the contamination-calibrated
	// decision boundary learned at training time.
	IsOutlier bool
	Severity  models.Severity
}

// OutlierModel scores feature vectors against a forest fitted on a window
// snapshot. Untrained models have no opinion: Score returns nil, not an error.
type OutlierModel struct {
	mu     sync.RWMutex
	cfg    Config
	logger *slog.Logger

	scaler  *scaler
	forest  *isolationForest
	offset  float64
	trained bool
}

// New constructs an OutlierModel.
func New(cfg Config, logger *slog.Logger) *OutlierModel {
	if cfg.TrainingThreshold <= 0 {
		cfg.TrainingThreshold = 20
	}
	if cfg.Contamination <= 0 || cfg.Contamination >= 1 {
		cfg.Contamination = 0.10
	}
	if cfg.Trees <= 0 {
		cfg.Trees = 100
	}
	if cfg.SubsampleSize <= 0 {
		cfg.SubsampleSize = 256
	}
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OutlierModel{cfg: cfg, logger: logger}
}

// Train fits the scaler and forest on a window snapshot. Returns false when
// the snapshot is smaller than the training threshold; the model then stays
// in its previous state and training is retried on a later batch.
func (m *OutlierModel) Train(data []models.FeatureVector) bool {
	if len(data) < m.cfg.TrainingThreshold {
		m.logger.Warn("insufficient data to train",
			slog.Int("have", len(data)), slog.Int("need", m.cfg.TrainingThreshold))
		return false
	}

	sc, err := fitScaler(data)
	if err != nil {
		m.logger.Warn("scaler fit failed", slog.Any("error", err))
		return false
	}
	standardized := sc.transformAll(data)

	rng := rand.New(rand.NewSource(m.cfg.Seed))
	forest := buildForest(standardized, m.cfg.Trees, m.cfg.SubsampleSize, rng)

	// Calibrate the decision boundary so the configured contamination
	// fraction of the training set falls below it.
	trainScores := make([]float64, len(standardized))
	for i, vec := range standardized {
		trainScores[i] = -forest.anomalyScore(vec)
	}
	offset := percentile(trainScores, m.cfg.Contamination)

	m.mu.Lock()
	m.scaler = sc
	m.forest = forest
	m.offset = offset
	m.trained = true
	m.mu.Unlock()

	m.logger.Info("outlier model trained",
		slog.Int("samples", len(data)), slog.Float64("offset", offset))
	return true
}

// Retrain discards the fitted state and trains again on the given snapshot.
func (m *OutlierModel) Retrain(data []models.FeatureVector) bool {
	m.mu.Lock()
	m.trained = false
	m.mu.Unlock()
	return m.Train(data)
}

// Score evaluates one feature vector. Returns nil while the model is
// untrained; that is "no opinion yet", not a failure.
func (m *OutlierModel) Score(vec models.FeatureVector) *Result {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.trained {
		return nil
	}

	score := -m.forest.anomalyScore(m.scaler.transform(vec))
	return &Result{
		Score:     score,
		IsOutlier: score < m.offset,
		Severity:  SeverityFor(score),
	}
}

// Trained reports whether the model has been fitted.
func (m *OutlierModel) Trained() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trained
}

// criticalScore is the severity policy cut: scores below it are critical.
const criticalScore = -0.5

// SeverityFor maps a model score onto the severity policy: scores below -0.5
// are critical, everything else is a warning.
func SeverityFor(score float64) models.Severity {
	if score < criticalScore {
		return models.SeverityCritical
	}
	return models.SeverityWarning
}

func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	idx := int(math.Round(p * float64(len(sorted)-1)))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
