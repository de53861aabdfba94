// Package forecast provides short-horizon metric prediction used for
// proactive alerting ahead of an actual anomaly.
package forecast

import (
	"sync"
	"time"

	"github.com/healops/remedy-engine/internal/models"
)

// trendWindow is the number of recent points the linear extrapolation uses.
const trendWindow = 10

// Forecaster tracks per-metric exponential smoothing state and a short
// history for linear-trend extrapolation. Each metric is forecast
// independently.
type Forecaster struct {
	mu       sync.Mutex
	alphas   map[models.Dimension]float64
	smoothed map[models.Dimension]float64
	seeded   map[models.Dimension]bool
	history  map[models.Dimension][]float64
}

// New constructs a Forecaster. alphas may be nil to use per-metric defaults.
func New(alphas map[models.Dimension]float64) *Forecaster {
	merged := defaultAlphas()
	for dim, a := range alphas {
		if a > 0 && a < 1 {
			merged[dim] = a
		}
	}
	return &Forecaster{
		alphas:   merged,
		smoothed: make(map[models.Dimension]float64),
		seeded:   make(map[models.Dimension]bool),
		history:  make(map[models.Dimension][]float64),
	}
}

func defaultAlphas() map[models.Dimension]float64 {
	return map[models.Dimension]float64{
		models.DimensionCPU:               0.30,
		models.DimensionMemory:            0.30,
		models.DimensionLatency:           0.35,
		models.DimensionErrorRate:         0.35,
		models.DimensionThroughput:        0.25,
		models.DimensionDiskIO:            0.25,
		models.DimensionNetworkThroughput: 0.25,
	}
}

// Update feeds one observation and returns the new smoothed forecast.
// The first observation seeds the forecast with the value itself.
func (f *Forecaster) Update(metric models.Dimension, value float64) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	alpha, ok := f.alphas[metric]
	if !ok {
		alpha = 0.30
	}

	if !f.seeded[metric] {
		f.smoothed[metric] = value
		f.seeded[metric] = true
	} else {
		f.smoothed[metric] = alpha*value + (1-alpha)*f.smoothed[metric]
	}

	hist := append(f.history[metric], value)
	if len(hist) > trendWindow {
		hist = hist[len(hist)-trendWindow:]
	}
	f.history[metric] = hist

	return f.smoothed[metric]
}

// Forecast returns the current smoothed value and whether the metric has
// been observed at all.
func (f *Forecaster) Forecast(metric models.Dimension) (float64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.smoothed[metric]
	return v, ok
}

// Trend extrapolates a least-squares line over the recent history steps
// points ahead. With fewer than three observations the last known value is
// repeated; with none, nil is returned.
func (f *Forecaster) Trend(metric models.Dimension, steps int) []float64 {
	if steps <= 0 {
		return nil
	}

	f.mu.Lock()
	hist := append([]float64(nil), f.history[metric]...)
	f.mu.Unlock()

	if len(hist) == 0 {
		return nil
	}
	out := make([]float64, steps)
	if len(hist) < 3 {
		last := hist[len(hist)-1]
		for i := range out {
			out[i] = last
		}
		return out
	}

	slope, intercept := leastSquares(hist)
	n := float64(len(hist))
	for i := 0; i < steps; i++ {
		out[i] = intercept + slope*(n+float64(i))
	}
	return out
}

// Alerts extrapolates each thresholded metric and emits an advisory when the
// prediction crosses its ceiling within steps. Alerts never feed the decision
// engine.
func (f *Forecaster) Alerts(thresholds map[models.Dimension]float64, steps int) []models.ForecastAlert {
	if steps <= 0 {
		return nil
	}

	now := time.Now().UTC()
	alerts := make([]models.ForecastAlert, 0)
	for metric, ceiling := range thresholds {
		predicted := f.Trend(metric, steps)
		for i, value := range predicted {
			if value > ceiling {
				alerts = append(alerts, models.ForecastAlert{
					Metric:     metric,
					Predicted:  value,
					Threshold:  ceiling,
					StepsAhead: i + 1,
					IssuedAt:   now,
				})
				break
			}
		}
	}
	return alerts
}

func leastSquares(values []float64) (slope, intercept float64) {
	n := float64(len(values))
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}
