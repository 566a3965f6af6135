package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/ipfolio/patmaint/internal/domain/obligation"
	"github.com/ipfolio/patmaint/internal/infrastructure/database/postgres"
	"github.com/ipfolio/patmaint/internal/infrastructure/monitoring/logging"
	"github.com/ipfolio/patmaint/pkg/errors"
)

type postgresObligationRepo struct {
	baseRepo
}

// NewObligationRepo returns the PostgreSQL store for derived deadlines
// and costs.
func NewObligationRepo(conn *postgres.Connection, log logging.Logger) obligation.Repository {
	return &postgresObligationRepo{
		baseRepo: baseRepo{conn: conn, log: log.Named("obligation_repo")},
	}
}

func (r *postgresObligationRepo) HasDeadlines(ctx context.Context, assetID uuid.UUID) (bool, error) {
	var exists bool
	err := r.executor(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM deadlines WHERE asset_id = $1)`, assetID,
	).Scan(&exists)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to check deadlines")
	}
	return exists, nil
}

func (r *postgresObligationRepo) CreateDeadline(ctx context.Context, d *obligation.Deadline) error {
	query := `
		INSERT INTO deadlines (id, asset_type, asset_id, deadline_type, due_year, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.executor(ctx).ExecContext(ctx, query,
		d.ID, string(d.AssetType), d.AssetID, d.Type, d.DueYear, string(d.Status), d.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.New(errors.ErrCodeConflict, "deadline already exists for asset and type").
				WithDetail(d.Type)
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create deadline")
	}
	return nil
}

func (r *postgresObligationRepo) CreateCost(ctx context.Context, c *obligation.Cost) error {
	query := `
		INSERT INTO costs (
			id, asset_type, asset_id, deadline_id, jurisdiction_id,
			fee_type, amount_cents, currency, due_year, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.executor(ctx).ExecContext(ctx, query,
		c.ID, string(c.AssetType), c.AssetID, c.DeadlineID, nullableUUID(c.JurisdictionID),
		c.FeeType, c.Amount.Amount, c.Amount.Currency, c.DueYear, c.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.New(errors.ErrCodeConflict, "cost already exists for deadline").
				WithDetail(c.DeadlineID.String())
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create cost")
	}
	return nil
}

func (r *postgresObligationRepo) ListDeadlinesByAsset(ctx context.Context, assetID uuid.UUID) ([]*obligation.Deadline, error) {
	query := `
		SELECT id, asset_type, asset_id, deadline_type, due_year, status, created_at
		FROM deadlines
		WHERE asset_id = $1
		ORDER BY due_year
	`
	rows, err := r.executor(ctx).QueryContext(ctx, query, assetID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list deadlines")
	}
	defer rows.Close()

	var out []*obligation.Deadline
	for rows.Next() {
		var (
			d         obligation.Deadline
			assetType string
			status    string
		)
		err := rows.Scan(&d.ID, &assetType, &d.AssetID, &d.Type, &d.DueYear, &status, &d.CreatedAt)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan deadline")
		}
		d.AssetType = obligation.AssetType(assetType)
		d.Status = obligation.DeadlineStatus(status)
		out = append(out, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate deadlines")
	}
	return out, nil
}

func (r *postgresObligationRepo) ListCostsByAsset(ctx context.Context, assetID uuid.UUID) ([]*obligation.Cost, error) {
	query := `
		SELECT id, asset_type, asset_id, deadline_id, jurisdiction_id,
		       fee_type, amount_cents, currency, due_year, created_at
		FROM costs
		WHERE asset_id = $1
		ORDER BY due_year
	`
	rows, err := r.executor(ctx).QueryContext(ctx, query, assetID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list costs")
	}
	defer rows.Close()

	var out []*obligation.Cost
	for rows.Next() {
		var (
			c              obligation.Cost
			assetType      string
			jurisdictionID uuid.NullUUID
			amountCents    int64
			currency       string
		)
		err := rows.Scan(
			&c.ID, &assetType, &c.AssetID, &c.DeadlineID, &jurisdictionID,
			&c.FeeType, &amountCents, &currency, &c.DueYear, &c.CreatedAt,
		)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan cost")
		}
		c.AssetType = obligation.AssetType(assetType)
		c.JurisdictionID = uuidPtr(jurisdictionID)
		c.Amount = obligation.Money{Amount: amountCents, Currency: currency}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate costs")
	}
	return out, nil
}

func (r *postgresObligationRepo) CountDeadlines(ctx context.Context) (int64, error) {
	return r.countTable(ctx, "deadlines")
}

func (r *postgresObligationRepo) CountCosts(ctx context.Context) (int64, error) {
	return r.countTable(ctx, "costs")
}

func (r *postgresObligationRepo) countTable(ctx context.Context, table string) (int64, error) {
	var n int64
	if err := r.executor(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count "+table)
	}
	return n, nil
}
