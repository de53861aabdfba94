// Package classifier attributes an anomaly to the metric dimension that
// deviates most from its recent baseline.
package classifier

import (
	"math"

	"github.com/healops/remedy-engine/internal/models"
)

const epsilon = 1e-6

// minSamples is the smallest baseline that gives a usable deviation estimate.
const minSamples = 5

// Classifier names the dimension behind an anomaly using rolling z-scores.
type Classifier struct{}

// New constructs a Classifier.
func New() *Classifier {
	return &Classifier{}
}

// Classify computes per-dimension z-scores of the current vector against the
// recent window entries and returns the argmax dimension. This is a post-hoc
// approximation of what drove the anomaly, independent of the outlier model's
// own reasoning; it is not a causal attribution. Fewer than five baseline
// samples yield DimensionUnknown.
func (c *Classifier) Classify(current models.FeatureVector, recent []models.FeatureVector) models.Dimension {
	if len(recent) < minSamples {
		return models.DimensionUnknown
	}

	dims := models.Dimensions()
	best := models.DimensionUnknown
	bestScore := -1.0

	for d, dim := range dims {
		if d >= len(current) {
			break
		}
		mean, std := baselineStats(recent, d)
		if std < epsilon {
			std = epsilon
		}
		score := math.Abs(current[d]-mean) / std
		if score > bestScore {
			bestScore = score
			best = dim
		}
	}
	return best
}

func baselineStats(vectors []models.FeatureVector, d int) (mean, std float64) {
	n := 0
	for _, vec := range vectors {
		if d < len(vec) {
			mean += vec[d]
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	mean /= float64(n)

	variance := 0.0
	for _, vec := range vectors {
		if d < len(vec) {
			diff := vec[d] - mean
			variance += diff * diff
		}
	}
	std = math.Sqrt(variance / float64(n))
	return mean, std
}
