package window

import (
	"testing"
	"time"

	"github.com/healops/remedy-engine/internal/models"
)

func sampleAt(cpu float64) models.Sample {
	return models.Sample{
		Timestamp: time.Now(),
		Metrics: map[string]float64{
			"cpu":                cpu,
			"memory":             60,
			"latency":            250,
			"error_rate":         1,
			"throughput":         100,
			"disk_io":            30,
			"network_throughput": 200,
		},
	}
}

func TestWindowEvictsOldest(t *testing.T) {
	w := New(3)

	for i := 0; i < 5; i++ {
		w.Add(sampleAt(float64(i)))
	}

	if w.Len() != 3 {
		t.Fatalf("expected len 3, got %d", w.Len())
	}
	snap := w.Snapshot()
	if snap[0][0] != 2 || snap[2][0] != 4 {
		t.Fatalf("expected oldest entries evicted, got cpu values %v, %v", snap[0][0], snap[2][0])
	}
}

func TestWindowSnapshotIsCopy(t *testing.T) {
	w := New(10)
	w.Add(sampleAt(50))

	snap := w.Snapshot()
	snap[0][0] = 999

	if w.Snapshot()[0][0] != 50 {
		t.Fatalf("snapshot mutation leaked into the window")
	}
}

func TestWindowLast(t *testing.T) {
	w := New(10)
	for i := 0; i < 6; i++ {
		w.Add(sampleAt(float64(i)))
	}

	last := w.Last(3)
	if len(last) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(last))
	}
	if last[0][0] != 3 || last[2][0] != 5 {
		t.Fatalf("expected newest three entries, got cpu values %v, %v", last[0][0], last[2][0])
	}

	if got := w.Last(100); len(got) != 6 {
		t.Fatalf("oversized request should return the full window, got %d", len(got))
	}
}

func TestWindowMissingFieldDefaultsToZero(t *testing.T) {
	w := New(10)
	vec := w.Add(models.Sample{Timestamp: time.Now(), Metrics: map[string]float64{"cpu": 55}})

	if vec[0] != 55 {
		t.Fatalf("expected cpu 55, got %v", vec[0])
	}
	for i := 1; i < len(vec); i++ {
		if vec[i] != 0 {
			t.Fatalf("expected missing field %d to default to 0, got %v", i, vec[i])
		}
	}
}
