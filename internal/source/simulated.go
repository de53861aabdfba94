package source

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/healops/remedy-engine/internal/models"
)

type metricRange struct {
	low, high float64
}

// normalRanges are the healthy operating bands the generator draws from.
var normalRanges = map[models.Dimension]metricRange{
	models.DimensionCPU:               {40, 70},
	models.DimensionMemory:            {50, 75},
	models.DimensionLatency:           {150, 400},
	models.DimensionErrorRate:         {0, 3},
	models.DimensionThroughput:        {80, 150},
	models.DimensionDiskIO:            {20, 60},
	models.DimensionNetworkThroughput: {100, 300},
}

// spikeValues describe a degraded system: saturated CPU and memory, slow
// responses, failing requests, collapsed throughput.
var spikeValues = map[models.Dimension]float64{
	models.DimensionCPU:               95,
	models.DimensionMemory:            90,
	models.DimensionLatency:           1500,
	models.DimensionErrorRate:         10,
	models.DimensionThroughput:        20,
	models.DimensionDiskIO:            88,
	models.DimensionNetworkThroughput: 40,
}

// Simulated generates samples inside normal operating ranges, optionally
// injecting a degradation spike every spikeEvery samples. It is the demo and
// test stand-in for an external collector.
type Simulated struct {
	mu         sync.Mutex
	rng        *rand.Rand
	spikeEvery int
	count      int
}

// NewSimulated creates a generator. seed fixes the random walk; spikeEvery
// of zero disables spikes.
func NewSimulated(seed int64, spikeEvery int) *Simulated {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulated{
		rng:        rand.New(rand.NewSource(seed)),
		spikeEvery: spikeEvery,
	}
}

// Next returns the next generated sample.
func (s *Simulated) Next(ctx context.Context) (models.Sample, error) {
	if err := ctx.Err(); err != nil {
		return models.Sample{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.count++
	if s.spikeEvery > 0 && s.count%s.spikeEvery == 0 {
		return spikeSample(), nil
	}

	sample := models.Sample{
		Timestamp: time.Now().UTC(),
		Metrics:   make(map[string]float64, len(normalRanges)),
	}
	for dim, r := range normalRanges {
		sample.Metrics[string(dim)] = r.low + s.rng.Float64()*(r.high-r.low)
	}
	return sample, nil
}

func spikeSample() models.Sample {
	sample := models.Sample{
		Timestamp: time.Now().UTC(),
		Metrics:   make(map[string]float64, len(spikeValues)),
	}
	for dim, v := range spikeValues {
		sample.Metrics[string(dim)] = v
	}
	return sample
}
