package models

import "time"

// Dimension names one tracked metric dimension of a sample.
type Dimension string

const (
	DimensionCPU               Dimension = "cpu"
	DimensionMemory            Dimension = "memory"
	DimensionLatency           Dimension = "latency"
	DimensionErrorRate         Dimension = "error_rate"
	DimensionThroughput        Dimension = "throughput"
	DimensionDiskIO            Dimension = "disk_io"
	DimensionNetworkThroughput Dimension = "network_throughput"
	DimensionUnknown           Dimension = "unknown"
)

// Dimensions returns the canonical feature order. Training and scoring must both
// project samples through this order.
func Dimensions() []Dimension {
	return []Dimension{
		DimensionCPU,
		DimensionMemory,
		DimensionLatency,
		DimensionErrorRate,
		DimensionThroughput,
		DimensionDiskIO,
		DimensionNetworkThroughput,
	}
}

// Sample is one raw metric observation delivered by a collector.
type Sample struct {
	Timestamp time.Time          `json:"timestamp"`
	Metrics   map[string]float64 `json:"metrics"`
}

// FeatureVector is a sample projected into the canonical dimension order.
type FeatureVector []float64

// Extract projects a sample into a FeatureVector. Missing fields default to 0.
func (s Sample) Extract() FeatureVector {
	dims := Dimensions()
	vec := make(FeatureVector, len(dims))
	for i, dim := range dims {
		vec[i] = s.Metrics[string(dim)]
	}
	return vec
}

// Value returns the sample's reading for a dimension, zero when absent.
func (s Sample) Value(dim Dimension) float64 {
	return s.Metrics[string(dim)]
}
