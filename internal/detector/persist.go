package detector

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/healops/remedy-engine/internal/models"
)

// modelBlob is the on-disk representation of a fitted model. The feature
// order is recorded so a loaded model refuses to score against a window
// whose dimension layout has changed.
type modelBlob struct {
	Version       int              `json:"version"`
	Trained       bool             `json:"trained"`
	Contamination float64          `json:"contamination"`
	Offset        float64          `json:"offset"`
	Features      []string         `json:"features"`
	Scaler        *scaler          `json:"scaler,omitempty"`
	Forest        *isolationForest `json:"forest,omitempty"`
}

const blobVersion = 1

// Save serialises the fitted model to path. Returns false on I/O or encoding
// failure; persistence problems are logged and never fatal.
func (m *OutlierModel) Save(path string) bool {
	m.mu.RLock()
	blob := modelBlob{
		Version:       blobVersion,
		Trained:       m.trained,
		Contamination: m.cfg.Contamination,
		Offset:        m.offset,
		Features:      featureNames(),
		Scaler:        m.scaler,
		Forest:        m.forest,
	}
	m.mu.RUnlock()

	data, err := json.Marshal(blob)
	if err != nil {
		m.logger.Error("encode model", slog.Any("error", err))
		return false
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		m.logger.Error("write model", slog.String("path", path), slog.Any("error", err))
		return false
	}
	return true
}

// Load replaces the model state with the blob at path. The round trip
// reproduces identical detection behaviour. Returns false on I/O, decoding,
// or feature-order mismatch.
func (m *OutlierModel) Load(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		m.logger.Error("read model", slog.String("path", path), slog.Any("error", err))
		return false
	}

	var blob modelBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		m.logger.Error("decode model", slog.String("path", path), slog.Any("error", err))
		return false
	}
	if blob.Version != blobVersion {
		m.logger.Error("unsupported model version", slog.Int("version", blob.Version))
		return false
	}
	if !featureOrderMatches(blob.Features) {
		m.logger.Error("feature order mismatch", slog.Any("features", blob.Features))
		return false
	}

	m.mu.Lock()
	m.trained = blob.Trained
	m.cfg.Contamination = blob.Contamination
	m.offset = blob.Offset
	m.scaler = blob.Scaler
	m.forest = blob.Forest
	m.mu.Unlock()
	return true
}

func featureNames() []string {
	dims := models.Dimensions()
	names := make([]string, len(dims))
	for i, d := range dims {
		names[i] = string(d)
	}
	return names
}

func featureOrderMatches(names []string) bool {
	expected := featureNames()
	if len(names) != len(expected) {
		return false
	}
	for i := range names {
		if names[i] != expected[i] {
			return false
		}
	}
	return true
}
