package repositories

import (
	"context"
	"database/sql"

	"github.com/ipfolio/patmaint/internal/domain/reporting"
	"github.com/ipfolio/patmaint/internal/infrastructure/database/postgres"
	"github.com/ipfolio/patmaint/internal/infrastructure/monitoring/logging"
	"github.com/ipfolio/patmaint/pkg/errors"
)

type postgresReporter struct {
	baseRepo
	expiryTermYears int
}

// NewReporter returns the SQL implementation of the reporting queries.
// expiryTermYears is the statutory term added to the filing year.
func NewReporter(conn *postgres.Connection, expiryTermYears int, log logging.Logger) reporting.Reporter {
	return &postgresReporter{
		baseRepo:        baseRepo{conn: conn, log: log.Named("reporter")},
		expiryTermYears: expiryTermYears,
	}
}

func (r *postgresReporter) MaintenanceSchedule(ctx context.Context) ([]reporting.ScheduleRow, error) {
	query := `
		SELECT p.patent_number, p.title, p.grant_year, d.deadline_type, d.due_year
		FROM deadlines d
		JOIN patents p ON p.id = d.asset_id
		ORDER BY p.patent_number, d.due_year
	`
	rows, err := r.executor(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query maintenance schedule")
	}
	defer rows.Close()

	var out []reporting.ScheduleRow
	for rows.Next() {
		var (
			row       reporting.ScheduleRow
			title     sql.NullString
			grantYear sql.NullInt64
		)
		if err := rows.Scan(&row.PatentNumber, &title, &grantYear, &row.DeadlineType, &row.DueYear); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan schedule row")
		}
		row.Title = title.String
		row.GrantYear = intPtr(grantYear)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate schedule rows")
	}
	return out, nil
}

func (r *postgresReporter) RevenueForecast(ctx context.Context) ([]reporting.RevenueRow, error) {
	// COALESCE/NULLIF folds both a missing jurisdiction reference and an
	// empty display name into the Unknown label before grouping.
	query := `
		SELECT c.due_year,
		       COALESCE(NULLIF(j.display_name, ''), 'Unknown') AS jurisdiction_label,
		       SUM(c.amount_cents) AS total_cents,
		       MAX(c.currency) AS currency
		FROM costs c
		LEFT JOIN jurisdictions j ON j.id = c.jurisdiction_id
		GROUP BY c.due_year, COALESCE(NULLIF(j.display_name, ''), 'Unknown')
		ORDER BY c.due_year, total_cents DESC
	`
	rows, err := r.executor(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query revenue forecast")
	}
	defer rows.Close()

	var out []reporting.RevenueRow
	for rows.Next() {
		var row reporting.RevenueRow
		if err := rows.Scan(&row.DueYear, &row.JurisdictionLabel, &row.TotalCents, &row.Currency); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan revenue row")
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate revenue rows")
	}
	return out, nil
}

func (r *postgresReporter) ExpiringPatents(ctx context.Context, startYear, endYear int) ([]reporting.ExpiryRow, error) {
	if err := reporting.ValidateWindow(startYear, endYear); err != nil {
		return nil, err
	}

	query := `
		SELECT p.patent_number, p.title, p.filing_year, p.filing_year + $1 AS expiry_year,
		       COALESCE(c.name, '') AS client_name,
		       COALESCE(j.display_name, '') AS jurisdiction_name
		FROM patents p
		LEFT JOIN clients c ON c.id = p.client_id
		LEFT JOIN jurisdictions j ON j.id = p.jurisdiction_id
		WHERE p.filing_year IS NOT NULL
		  AND p.filing_year + $1 BETWEEN $2 AND $3
		ORDER BY expiry_year, p.patent_number
	`
	rows, err := r.executor(ctx).QueryContext(ctx, query, r.expiryTermYears, startYear, endYear)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query expiring patents")
	}
	defer rows.Close()

	var out []reporting.ExpiryRow
	for rows.Next() {
		var (
			row   reporting.ExpiryRow
			title sql.NullString
		)
		err := rows.Scan(&row.PatentNumber, &title, &row.FilingYear, &row.ExpiryYear,
			&row.ClientName, &row.JurisdictionName)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan expiry row")
		}
		row.Title = title.String
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate expiry rows")
	}
	return out, nil
}
