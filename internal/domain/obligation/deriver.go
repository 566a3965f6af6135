package obligation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ipfolio/patmaint/internal/domain/patent"
	"github.com/ipfolio/patmaint/internal/infrastructure/monitoring/logging"
)

// Deriver generates the fixed set of deadlines and their priced costs for a
// canonical patent.  Derivation is idempotent: patents that already have
// deadlines, and patents without a grant year, produce nothing — the latter
// is a documented skip, not an error, since a due year cannot be computed
// without a grant year.
type Deriver interface {
	// Derive creates and persists one deadline and one cost per schedule
	// offset.  It returns the created rows, or empty slices when the patent
	// was skipped.
	Derive(ctx context.Context, p *patent.Patent) ([]*Deadline, []*Cost, error)
}

type deriver struct {
	repo     Repository
	schedule *FeeSchedule
	log      logging.Logger
}

// NewDeriver constructs a Deriver using schedule for offsets and amounts.
func NewDeriver(repo Repository, schedule *FeeSchedule, log logging.Logger) Deriver {
	return &deriver{
		repo:     repo,
		schedule: schedule,
		log:      log.Named("deriver"),
	}
}

func (d *deriver) Derive(ctx context.Context, p *patent.Patent) ([]*Deadline, []*Cost, error) {
	if p.GrantYear == nil {
		d.log.Debug("skipping obligation derivation, no grant year",
			logging.String("patent_number", p.PatentNumber))
		return nil, nil, nil
	}

	exists, err := d.repo.HasDeadlines(ctx, p.ID)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		return nil, nil, nil
	}

	offsets := d.schedule.Offsets()
	deadlines := make([]*Deadline, 0, len(offsets))
	costs := make([]*Cost, 0, len(offsets))
	now := time.Now().UTC()

	for _, offset := range offsets {
		amount, err := d.schedule.AmountFor(offset)
		if err != nil {
			return nil, nil, err
		}

		deadline := &Deadline{
			ID:        uuid.New(),
			AssetType: AssetTypePatent,
			AssetID:   p.ID,
			Type:      DeadlineTypeFor(offset),
			DueYear:   *p.GrantYear + offset,
			Status:    DeadlineStatusOpen,
			CreatedAt: now,
		}
		if err := deadline.Validate(); err != nil {
			return nil, nil, err
		}
		if err := d.repo.CreateDeadline(ctx, deadline); err != nil {
			return nil, nil, err
		}

		cost := &Cost{
			ID:             uuid.New(),
			AssetType:      AssetTypePatent,
			AssetID:        p.ID,
			DeadlineID:     deadline.ID,
			JurisdictionID: p.JurisdictionID,
			FeeType:        FeeTypeMaintenance,
			Amount:         amount,
			DueYear:        deadline.DueYear,
			CreatedAt:      now,
		}
		if err := cost.Validate(); err != nil {
			return nil, nil, err
		}
		if err := d.repo.CreateCost(ctx, cost); err != nil {
			return nil, nil, err
		}

		deadlines = append(deadlines, deadline)
		costs = append(costs, cost)
	}

	d.log.Debug("derived obligations",
		logging.String("patent_number", p.PatentNumber),
		logging.Int("deadlines", len(deadlines)),
	)
	return deadlines, costs, nil
}
