package repositories

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/ipfolio/patmaint/internal/domain/patent"
	"github.com/ipfolio/patmaint/internal/infrastructure/database/postgres"
	"github.com/ipfolio/patmaint/internal/infrastructure/monitoring/logging"
	"github.com/ipfolio/patmaint/pkg/errors"
)

type postgresPatentRepo struct {
	baseRepo
}

// NewPatentRepo returns the PostgreSQL canonical-patent store.
func NewPatentRepo(conn *postgres.Connection, log logging.Logger) patent.Repository {
	return &postgresPatentRepo{
		baseRepo: baseRepo{conn: conn, log: log.Named("patent_repo")},
	}
}

func (r *postgresPatentRepo) Create(ctx context.Context, p *patent.Patent) error {
	query := `
		INSERT INTO patents (
			id, patent_number, title, filing_year, grant_year,
			status, client_id, jurisdiction_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.executor(ctx).ExecContext(ctx, query,
		p.ID, p.PatentNumber, p.Title,
		nullableInt(p.FilingYear), nullableInt(p.GrantYear),
		string(p.Status), nullableUUID(p.ClientID), nullableUUID(p.JurisdictionID),
		p.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.New(errors.ErrCodePatentExists, "patent number already exists").
				WithDetail(p.PatentNumber)
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create patent")
	}
	return nil
}

func (r *postgresPatentRepo) GetByID(ctx context.Context, id uuid.UUID) (*patent.Patent, error) {
	row := r.executor(ctx).QueryRowContext(ctx,
		selectPatent+` WHERE id = $1`, id)
	p, err := scanPatent(row)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodePatentNotFound, "patent not found").
			WithDetail(id.String())
	}
	return p, err
}

func (r *postgresPatentRepo) GetByNumber(ctx context.Context, patentNumber string) (*patent.Patent, error) {
	row := r.executor(ctx).QueryRowContext(ctx,
		selectPatent+` WHERE patent_number = $1`, patentNumber)
	p, err := scanPatent(row)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodePatentNotFound, "patent not found").
			WithDetail(patentNumber)
	}
	return p, err
}

func (r *postgresPatentRepo) ListNumbers(ctx context.Context) (map[string]bool, error) {
	rows, err := r.executor(ctx).QueryContext(ctx, `SELECT patent_number FROM patents`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list patent numbers")
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var number string
		if err := rows.Scan(&number); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan patent number")
		}
		out[number] = true
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate patent numbers")
	}
	return out, nil
}

func (r *postgresPatentRepo) List(ctx context.Context) ([]*patent.Patent, error) {
	rows, err := r.executor(ctx).QueryContext(ctx, selectPatent+` ORDER BY patent_number`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list patents")
	}
	defer rows.Close()

	var out []*patent.Patent
	for rows.Next() {
		p, err := scanPatent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate patents")
	}
	return out, nil
}

func (r *postgresPatentRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.executor(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM patents`).Scan(&n); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count patents")
	}
	return n, nil
}

const selectPatent = `
	SELECT id, patent_number, title, filing_year, grant_year,
	       status, client_id, jurisdiction_id, created_at
	FROM patents`

func scanPatent(s scanner) (*patent.Patent, error) {
	var (
		p              patent.Patent
		title          sql.NullString
		filingYear     sql.NullInt64
		grantYear      sql.NullInt64
		status         string
		clientID       uuid.NullUUID
		jurisdictionID uuid.NullUUID
	)
	err := s.Scan(
		&p.ID, &p.PatentNumber, &title, &filingYear, &grantYear,
		&status, &clientID, &jurisdictionID, &p.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan patent")
	}
	p.Title = title.String
	p.FilingYear = intPtr(filingYear)
	p.GrantYear = intPtr(grantYear)
	p.Status = patent.Status(status)
	p.ClientID = uuidPtr(clientID)
	p.JurisdictionID = uuidPtr(jurisdictionID)
	return &p, nil
}

func nullableUUID(v *uuid.UUID) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func uuidPtr(v uuid.NullUUID) *uuid.UUID {
	if !v.Valid {
		return nil
	}
	id := v.UUID
	return &id
}
