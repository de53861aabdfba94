// Package insights aggregates remediation outcomes so reporting layers can
// see which actions actually help per anomaly dimension.
package insights

import (
	"context"
	"log/slog"
	"sort"

	"github.com/healops/remedy-engine/internal/models"
)

// Store abstracts persistence for mined insights.
type Store interface {
	StoreInsights(ctx context.Context, insights []models.RemediationInsight) error
}

// Miner aggregates terminal actions from the execution history.
type Miner struct {
	store  Store
	logger *slog.Logger
}

// NewMiner constructs a Miner; store may be nil for dry runs.
func NewMiner(logger *slog.Logger, store Store) *Miner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Miner{store: store, logger: logger}
}

type dimensionAggregate struct {
	actions     int
	completed   int
	failed      int
	byType      map[models.ActionType]int
	lastApplied models.RemediationAction
}

// Mine folds the action history into per-dimension outcome summaries,
// ordered by action volume. Non-terminal actions are skipped.
func (m *Miner) Mine(ctx context.Context, history []models.RemediationAction) ([]models.RemediationInsight, error) {
	if len(history) == 0 {
		return nil, nil
	}

	aggregates := make(map[models.Dimension]*dimensionAggregate)
	for _, action := range history {
		if !action.Status.Terminal() {
			continue
		}
		agg, ok := aggregates[action.Dimension]
		if !ok {
			agg = &dimensionAggregate{byType: make(map[models.ActionType]int)}
			aggregates[action.Dimension] = agg
		}
		agg.actions++
		agg.byType[action.Type]++
		if action.Status == models.StatusCompleted {
			agg.completed++
		} else {
			agg.failed++
		}
		if action.CreatedAt.After(agg.lastApplied.CreatedAt) {
			agg.lastApplied = action
		}
	}

	insights := make([]models.RemediationInsight, 0, len(aggregates))
	for dim, agg := range aggregates {
		insight := models.RemediationInsight{
			Dimension:      dim,
			Actions:        agg.actions,
			Completed:      agg.completed,
			Failed:         agg.failed,
			DominantAction: dominantType(agg.byType),
			LastApplied:    agg.lastApplied.CreatedAt,
		}
		if agg.actions > 0 {
			insight.SuccessRate = float64(agg.completed) / float64(agg.actions)
		}
		insights = append(insights, insight)
	}

	sort.Slice(insights, func(i, j int) bool {
		if insights[i].Actions != insights[j].Actions {
			return insights[i].Actions > insights[j].Actions
		}
		return insights[i].Dimension < insights[j].Dimension
	})

	if m.store != nil && len(insights) > 0 {
		if err := m.store.StoreInsights(ctx, insights); err != nil {
			m.logger.Warn("failed to persist insights", slog.Any("error", err))
		}
	}
	return insights, nil
}

func dominantType(counts map[models.ActionType]int) models.ActionType {
	var best models.ActionType
	bestCount := -1
	for t, count := range counts {
		if count > bestCount || (count == bestCount && t < best) {
			best = t
			bestCount = count
		}
	}
	return best
}
