package window

import (
	"sync"

	"github.com/healops/remedy-engine/internal/models"
)

// MetricWindow is a bounded FIFO buffer of feature vectors extracted from
// incoming samples. The oldest entry is evicted once capacity is exceeded.
type MetricWindow struct {
	mu       sync.RWMutex
	vectors  []models.FeatureVector
	capacity int
}

// New creates a MetricWindow holding up to capacity vectors.
func New(capacity int) *MetricWindow {
	if capacity <= 0 {
		capacity = 100
	}
	return &MetricWindow{capacity: capacity}
}

// Add extracts the sample's feature vector and appends it, evicting the oldest
// entry when the window is full. Malformed samples are never rejected: missing
// fields project to zero.
func (w *MetricWindow) Add(sample models.Sample) models.FeatureVector {
	vec := sample.Extract()

	w.mu.Lock()
	defer w.mu.Unlock()

	w.vectors = append(w.vectors, vec)
	if len(w.vectors) > w.capacity {
		copy(w.vectors[0:], w.vectors[1:])
		w.vectors = w.vectors[:w.capacity]
	}
	return vec
}

// Snapshot returns a copy of the current window contents, oldest first.
func (w *MetricWindow) Snapshot() []models.FeatureVector {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]models.FeatureVector, len(w.vectors))
	for i, vec := range w.vectors {
		out[i] = append(models.FeatureVector(nil), vec...)
	}
	return out
}

// Last returns up to k most recent vectors, oldest first.
func (w *MetricWindow) Last(k int) []models.FeatureVector {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if k <= 0 || len(w.vectors) == 0 {
		return nil
	}
	if k > len(w.vectors) {
		k = len(w.vectors)
	}
	out := make([]models.FeatureVector, 0, k)
	for _, vec := range w.vectors[len(w.vectors)-k:] {
		out = append(out, append(models.FeatureVector(nil), vec...))
	}
	return out
}

// Len returns the number of stored vectors.
func (w *MetricWindow) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.vectors)
}

// Cap returns the configured capacity.
func (w *MetricWindow) Cap() int {
	return w.capacity
}
