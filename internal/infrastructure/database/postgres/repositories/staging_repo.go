package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ipfolio/patmaint/internal/domain/staging"
	"github.com/ipfolio/patmaint/internal/infrastructure/database/postgres"
	"github.com/ipfolio/patmaint/internal/infrastructure/monitoring/logging"
	"github.com/ipfolio/patmaint/pkg/errors"
)

type postgresStagingRepo struct {
	baseRepo
}

// NewStagingRepo returns the PostgreSQL staging store.
func NewStagingRepo(conn *postgres.Connection, log logging.Logger) staging.Repository {
	return &postgresStagingRepo{
		baseRepo: baseRepo{conn: conn, log: log.Named("staging_repo")},
	}
}

// BulkInsert streams records through COPY inside its own transaction.
// COPY needs a prepared statement on a transaction, so it ignores any
// transaction carried by ctx and always runs standalone; staging loads
// happen before the transformation and never share a unit of work with it.
func (r *postgresStagingRepo) BulkInsert(ctx context.Context, records []*staging.RawRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.conn.DB().BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to begin staging load")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("raw_records",
		"id", "patent_number", "title", "assignee", "country_code",
		"filing_year", "grant_year", "abstract", "ipc_class", "ingested_at",
	))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to prepare staging copy")
	}

	now := time.Now().UTC()
	for _, rec := range records {
		if rec.ID == uuid.Nil {
			rec.ID = uuid.New()
		}
		if rec.IngestedAt.IsZero() {
			rec.IngestedAt = now
		}
		_, err = stmt.ExecContext(ctx,
			rec.ID, rec.PatentNumber, rec.Title, rec.Assignee, rec.CountryCode,
			nullableInt(rec.FilingYear), nullableInt(rec.GrantYear),
			rec.Abstract, rec.IPCClass, rec.IngestedAt,
		)
		if err != nil {
			stmt.Close()
			return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to buffer staging row")
		}
	}

	// Flush the copy buffer.
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to flush staging copy")
	}
	if err := stmt.Close(); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to close staging copy")
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to commit staging load")
	}

	r.log.Debug("staged raw records", logging.Int("rows", len(records)))
	return nil
}

func (r *postgresStagingRepo) ListAll(ctx context.Context) ([]*staging.RawRecord, error) {
	query := `
		SELECT id, patent_number, title, assignee, country_code,
		       filing_year, grant_year, abstract, ipc_class, ingested_at
		FROM raw_records
		ORDER BY ingested_at, id
	`
	rows, err := r.executor(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list raw records")
	}
	defer rows.Close()

	var out []*staging.RawRecord
	for rows.Next() {
		rec, err := scanRawRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate raw records")
	}
	return out, nil
}

func (r *postgresStagingRepo) CountAll(ctx context.Context) (int64, error) {
	var n int64
	err := r.executor(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM raw_records`).Scan(&n)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count raw records")
	}
	return n, nil
}

func scanRawRecord(s scanner) (*staging.RawRecord, error) {
	var (
		rec         staging.RawRecord
		filingYear  sql.NullInt64
		grantYear   sql.NullInt64
		title       sql.NullString
		assignee    sql.NullString
		countryCode sql.NullString
		abstract    sql.NullString
		ipcClass    sql.NullString
	)
	err := s.Scan(
		&rec.ID, &rec.PatentNumber, &title, &assignee, &countryCode,
		&filingYear, &grantYear, &abstract, &ipcClass, &rec.IngestedAt,
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan raw record")
	}
	rec.Title = title.String
	rec.Assignee = assignee.String
	rec.CountryCode = countryCode.String
	rec.Abstract = abstract.String
	rec.IPCClass = ipcClass.String
	rec.FilingYear = intPtr(filingYear)
	rec.GrantYear = intPtr(grantYear)
	return &rec, nil
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
