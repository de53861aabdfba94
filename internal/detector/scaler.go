package detector

import (
	"fmt"
	"math"

	"github.com/healops/remedy-engine/internal/models"
)

// scaler standardises feature vectors using per-dimension mean and standard
// deviation captured at training time.
type scaler struct {
	Means []float64 `json:"means"`
	Stds  []float64 `json:"stds"`
}

func fitScaler(data []models.FeatureVector) (*scaler, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("no data to fit scaler")
	}

	dims := len(data[0])
	means := make([]float64, dims)
	stds := make([]float64, dims)

	for _, vec := range data {
		for d := 0; d < dims && d < len(vec); d++ {
			means[d] += vec[d]
		}
	}
	for d := range means {
		means[d] /= float64(len(data))
	}

	for _, vec := range data {
		for d := 0; d < dims && d < len(vec); d++ {
			diff := vec[d] - means[d]
			stds[d] += diff * diff
		}
	}
	for d := range stds {
		stds[d] = math.Sqrt(stds[d] / float64(len(data)))
		if stds[d] == 0 {
			stds[d] = 1
		}
	}

	return &scaler{Means: means, Stds: stds}, nil
}

// transform returns the standardised copy of vec.
func (s *scaler) transform(vec models.FeatureVector) models.FeatureVector {
	out := make(models.FeatureVector, len(s.Means))
	for d := range s.Means {
		v := 0.0
		if d < len(vec) {
			v = vec[d]
		}
		out[d] = (v - s.Means[d]) / s.Stds[d]
	}
	return out
}

func (s *scaler) transformAll(data []models.FeatureVector) []models.FeatureVector {
	out := make([]models.FeatureVector, len(data))
	for i, vec := range data {
		out[i] = s.transform(vec)
	}
	return out
}
