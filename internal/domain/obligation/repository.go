package obligation

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence contract for derived obligations.
type Repository interface {
	// HasDeadlines reports whether any deadline exists for the asset.  The
	// deriver consults it to make derivation idempotent.
	HasDeadlines(ctx context.Context, assetID uuid.UUID) (bool, error)

	// CreateDeadline persists one deadline.
	CreateDeadline(ctx context.Context, d *Deadline) error

	// CreateCost persists one cost.
	CreateCost(ctx context.Context, c *Cost) error

	// ListDeadlinesByAsset returns the asset's deadlines ordered by due year.
	ListDeadlinesByAsset(ctx context.Context, assetID uuid.UUID) ([]*Deadline, error)

	// ListCostsByAsset returns the asset's costs ordered by due year.
	ListCostsByAsset(ctx context.Context, assetID uuid.UUID) ([]*Cost, error)

	CountDeadlines(ctx context.Context) (int64, error)
	CountCosts(ctx context.Context) (int64, error)
}
