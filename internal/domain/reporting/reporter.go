// Package reporting defines the read-only query surface over the
// normalized model.  It is a contract package: implementations live in the
// infrastructure layer (SQL) and in memory for tests; nothing here mutates
// the stores it reads.
package reporting

import (
	"context"

	"github.com/ipfolio/patmaint/pkg/errors"
)

// UnknownJurisdictionLabel substitutes for a missing or empty jurisdiction
// name in revenue reports.  Presentation only; no "Unknown" entity exists
// in the reference store.
const UnknownJurisdictionLabel = "Unknown"

// ScheduleRow is one line of the per-patent maintenance schedule.
type ScheduleRow struct {
	PatentNumber string `json:"patent_number"`
	Title        string `json:"title"`
	GrantYear    *int   `json:"grant_year,omitempty"`
	DeadlineType string `json:"deadline_type"`
	DueYear      int    `json:"due_year"`
}

// RevenueRow is one line of the fee forecast grouped by due year and
// jurisdiction label.  TotalCents keeps the exact summed amount;
// presentation layers convert to major units.
type RevenueRow struct {
	DueYear           int    `json:"due_year"`
	JurisdictionLabel string `json:"jurisdiction_label"`
	TotalCents        int64  `json:"total_cents"`
	Currency          string `json:"currency"`
}

// ExpiryRow is one line of the expiry-window lookup.
type ExpiryRow struct {
	PatentNumber     string `json:"patent_number"`
	Title            string `json:"title"`
	FilingYear       int    `json:"filing_year"`
	ExpiryYear       int    `json:"expiry_year"`
	ClientName       string `json:"client_name,omitempty"`
	JurisdictionName string `json:"jurisdiction_name,omitempty"`
}

// Reporter answers the three showcase questions over the normalized model.
type Reporter interface {
	// MaintenanceSchedule returns one row per (patent, deadline) for every
	// patent having at least one deadline, ordered by patent number
	// ascending then due year ascending.
	MaintenanceSchedule(ctx context.Context) ([]ScheduleRow, error)

	// RevenueForecast sums cost amounts grouped by (due year, jurisdiction
	// label), labelling costs without a resolvable jurisdiction as Unknown,
	// ordered by due year ascending then total descending.
	RevenueForecast(ctx context.Context) ([]RevenueRow, error)

	// ExpiringPatents returns patents whose expiry year (filing year plus
	// the statutory term) falls within [startYear, endYear], ordered by
	// expiry year ascending then patent number ascending.  Patents without
	// a filing year never match.
	ExpiringPatents(ctx context.Context, startYear, endYear int) ([]ExpiryRow, error)
}

// ValidateWindow checks the inclusive bounds of an expiry-window query.
func ValidateWindow(startYear, endYear int) error {
	if startYear > endYear {
		return errors.New(errors.ErrCodeReportInvalidRange, "start year is after end year")
	}
	return nil
}
