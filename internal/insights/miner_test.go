package insights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/healops/remedy-engine/internal/models"
)

type fakeInsightStore struct {
	stored int
	fail   error
}

func (f *fakeInsightStore) StoreInsights(ctx context.Context, insights []models.RemediationInsight) error {
	if f.fail != nil {
		return f.fail
	}
	f.stored += len(insights)
	return nil
}

func history() []models.RemediationAction {
	now := time.Now().UTC()
	return []models.RemediationAction{
		{Type: models.ActionScaleUp, Dimension: models.DimensionCPU, Status: models.StatusCompleted, CreatedAt: now},
		{Type: models.ActionScaleUp, Dimension: models.DimensionCPU, Status: models.StatusCompleted, CreatedAt: now.Add(time.Minute)},
		{Type: models.ActionRestartService, Dimension: models.DimensionCPU, Status: models.StatusFailed, CreatedAt: now.Add(2 * time.Minute)},
		{Type: models.ActionEnableCache, Dimension: models.DimensionLatency, Status: models.StatusCompleted, CreatedAt: now},
		{Type: models.ActionTrafficShift, Dimension: models.DimensionErrorRate, Status: models.StatusExecuting, CreatedAt: now},
	}
}

func TestMinerAggregatesPerDimension(t *testing.T) {
	store := &fakeInsightStore{}
	miner := NewMiner(nil, store)

	insights, err := miner.Mine(context.Background(), history())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(insights) != 2 {
		t.Fatalf("expected 2 insights, non-terminal actions skipped, got %d", len(insights))
	}

	cpu := insights[0]
	if cpu.Dimension != models.DimensionCPU {
		t.Fatalf("expected cpu first by volume, got %s", cpu.Dimension)
	}
	if cpu.Actions != 3 || cpu.Completed != 2 || cpu.Failed != 1 {
		t.Fatalf("cpu aggregate wrong: %+v", cpu)
	}
	if cpu.SuccessRate < 0.66 || cpu.SuccessRate > 0.67 {
		t.Fatalf("expected success rate 2/3, got %v", cpu.SuccessRate)
	}
	if cpu.DominantAction != models.ActionScaleUp {
		t.Fatalf("expected scale_up dominant, got %s", cpu.DominantAction)
	}
	if store.stored != 2 {
		t.Fatalf("expected insights persisted, got %d", store.stored)
	}
}

func TestMinerEmptyHistory(t *testing.T) {
	miner := NewMiner(nil, &fakeInsightStore{})

	insights, err := miner.Mine(context.Background(), nil)
	if err != nil || insights != nil {
		t.Fatalf("expected nothing for empty history, got %v, %v", insights, err)
	}
}

func TestMinerStoreFailureIsNonFatal(t *testing.T) {
	store := &fakeInsightStore{fail: errors.New("store down")}
	miner := NewMiner(nil, store)

	insights, err := miner.Mine(context.Background(), history())
	if err != nil {
		t.Fatalf("persistence failure must not surface: %v", err)
	}
	if len(insights) == 0 {
		t.Fatalf("expected insights despite the store failure")
	}
}
