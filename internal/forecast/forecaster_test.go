package forecast

import (
	"math"
	"testing"

	"github.com/healops/remedy-engine/internal/models"
)

func TestUpdateSeedsWithFirstValue(t *testing.T) {
	f := New(nil)

	if got := f.Update(models.DimensionCPU, 42); got != 42 {
		t.Fatalf("first update should seed the forecast, got %v", got)
	}
	if v, ok := f.Forecast(models.DimensionCPU); !ok || v != 42 {
		t.Fatalf("expected forecast 42, got %v (%v)", v, ok)
	}
	if _, ok := f.Forecast(models.DimensionMemory); ok {
		t.Fatalf("unseen metric should report no forecast")
	}
}

func TestConstantInputConverges(t *testing.T) {
	f := New(nil)

	f.Update(models.DimensionLatency, 0)
	var got float64
	for i := 0; i < 50; i++ {
		got = f.Update(models.DimensionLatency, 300)
	}
	if math.Abs(got-300) > 1e-3 {
		t.Fatalf("expected convergence to 300, got %v", got)
	}
}

func TestTrendShortHistoryRepeatsLastValue(t *testing.T) {
	f := New(nil)

	if got := f.Trend(models.DimensionCPU, 3); got != nil {
		t.Fatalf("no history should yield nil, got %v", got)
	}

	f.Update(models.DimensionCPU, 10)
	f.Update(models.DimensionCPU, 20)
	got := f.Trend(models.DimensionCPU, 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 predictions, got %d", len(got))
	}
	for _, v := range got {
		if v != 20 {
			t.Fatalf("short history should repeat the last value, got %v", got)
		}
	}
}

func TestTrendExtrapolatesLinearSeries(t *testing.T) {
	f := New(nil)

	for i := 1; i <= 10; i++ {
		f.Update(models.DimensionMemory, float64(i))
	}

	got := f.Trend(models.DimensionMemory, 3)
	want := []float64{11, 12, 13}
	for i, w := range want {
		if math.Abs(got[i]-w) > 1e-9 {
			t.Fatalf("step %d: want %v, got %v", i+1, w, got[i])
		}
	}
}

func TestAlertsFireOnPredictedCrossing(t *testing.T) {
	f := New(nil)

	for i := 1; i <= 10; i++ {
		f.Update(models.DimensionCPU, float64(i))
		f.Update(models.DimensionMemory, 50)
	}

	thresholds := map[models.Dimension]float64{
		models.DimensionCPU:    13.5,
		models.DimensionMemory: 90,
	}
	alerts := f.Alerts(thresholds, 5)
	if len(alerts) != 1 {
		t.Fatalf("expected one alert, got %d", len(alerts))
	}
	a := alerts[0]
	if a.Metric != models.DimensionCPU {
		t.Fatalf("expected cpu alert, got %s", a.Metric)
	}
	if a.StepsAhead != 4 {
		t.Fatalf("expected first crossing at step 4, got %d", a.StepsAhead)
	}
	if a.Predicted <= a.Threshold {
		t.Fatalf("predicted value %v should exceed threshold %v", a.Predicted, a.Threshold)
	}
}

func TestAlertsQuietWhenFlat(t *testing.T) {
	f := New(nil)

	for i := 0; i < 10; i++ {
		f.Update(models.DimensionCPU, 50)
	}
	alerts := f.Alerts(map[models.Dimension]float64{models.DimensionCPU: 80}, 5)
	if len(alerts) != 0 {
		t.Fatalf("flat series below threshold should not alert, got %v", alerts)
	}
}
