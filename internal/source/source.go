// Package source provides the metric sample feeds driving the control loop.
// The wire schema of a real collector belongs to that collaborator; sources
// here only deliver models.Sample values.
package source

import (
	"context"

	"github.com/healops/remedy-engine/internal/models"
)

// Source yields metric samples for the control loop.
type Source interface {
	Next(ctx context.Context) (models.Sample, error)
}
