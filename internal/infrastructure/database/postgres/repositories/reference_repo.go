package repositories

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/ipfolio/patmaint/internal/domain/reference"
	"github.com/ipfolio/patmaint/internal/infrastructure/database/postgres"
	"github.com/ipfolio/patmaint/internal/infrastructure/monitoring/logging"
	"github.com/ipfolio/patmaint/pkg/errors"
)

type postgresReferenceRepo struct {
	baseRepo
}

// NewReferenceRepo returns the PostgreSQL reference-dimension store.  The
// insert-if-absent contract is enforced by unique constraints on
// clients.name and jurisdictions.code; ON CONFLICT DO NOTHING plus a
// re-select makes concurrent first resolution of the same value converge
// on a single row.
func NewReferenceRepo(conn *postgres.Connection, log logging.Logger) reference.Repository {
	return &postgresReferenceRepo{
		baseRepo: baseRepo{conn: conn, log: log.Named("reference_repo")},
	}
}

func (r *postgresReferenceRepo) GetOrCreateClient(ctx context.Context, candidate *reference.Client) (uuid.UUID, error) {
	insert := `
		INSERT INTO clients (id, name, contact, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO NOTHING
		RETURNING id
	`
	var id uuid.UUID
	err := r.executor(ctx).QueryRowContext(ctx, insert,
		candidate.ID, candidate.Name, candidate.Contact, candidate.CreatedAt,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return uuid.Nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create client")
	}

	// Conflict: another resolution won the race or the row predates this run.
	err = r.executor(ctx).QueryRowContext(ctx,
		`SELECT id FROM clients WHERE name = $1`, candidate.Name,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to look up client")
	}
	return id, nil
}

func (r *postgresReferenceRepo) GetOrCreateJurisdiction(ctx context.Context, candidate *reference.Jurisdiction) (uuid.UUID, error) {
	insert := `
		INSERT INTO jurisdictions (id, code, display_name, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (code) DO NOTHING
		RETURNING id
	`
	var id uuid.UUID
	err := r.executor(ctx).QueryRowContext(ctx, insert,
		candidate.ID, candidate.Code, candidate.DisplayName, candidate.CreatedAt,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return uuid.Nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create jurisdiction")
	}

	err = r.executor(ctx).QueryRowContext(ctx,
		`SELECT id FROM jurisdictions WHERE code = $1`, candidate.Code,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to look up jurisdiction")
	}
	return id, nil
}

func (r *postgresReferenceRepo) GetJurisdiction(ctx context.Context, id uuid.UUID) (*reference.Jurisdiction, error) {
	var j reference.Jurisdiction
	err := r.executor(ctx).QueryRowContext(ctx,
		`SELECT id, code, display_name, created_at FROM jurisdictions WHERE id = $1`, id,
	).Scan(&j.ID, &j.Code, &j.DisplayName, &j.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodeNotFound, "jurisdiction not found").
			WithDetail(id.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to get jurisdiction")
	}
	return &j, nil
}

func (r *postgresReferenceRepo) CountClients(ctx context.Context) (int64, error) {
	var n int64
	if err := r.executor(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM clients`).Scan(&n); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count clients")
	}
	return n, nil
}

func (r *postgresReferenceRepo) CountJurisdictions(ctx context.Context) (int64, error) {
	var n int64
	if err := r.executor(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM jurisdictions`).Scan(&n); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count jurisdictions")
	}
	return n, nil
}
