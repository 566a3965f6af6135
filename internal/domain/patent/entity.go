// Package patent implements the canonical patent entity and the collapsing
// rules that produce exactly one Patent per unique patent number from a
// group of raw staging rows.  All conflict-resolution business rules live
// here; persistence is handled by the repository layer.
package patent

import (
	"time"

	"github.com/google/uuid"

	"github.com/ipfolio/patmaint/pkg/errors"
)

// Status is the lifecycle status of a canonical patent.  The staging source
// contains only granted patents, so every collapsed Patent carries
// StatusGranted; the type exists so other source kinds can extend it.
type Status string

const (
	StatusGranted Status = "granted"
)

// Patent is the canonical record for one unique patent number.  It is
// created once by the collapser and never updated afterwards; re-running
// the pipeline against an unchanged staging set must not touch it.
// ClientID and JurisdictionID are nil when the source rows carried no
// resolvable assignee or country.
type Patent struct {
	ID             uuid.UUID  `json:"id"`
	PatentNumber   string     `json:"patent_number"`
	Title          string     `json:"title"`
	FilingYear     *int       `json:"filing_year,omitempty"`
	GrantYear      *int       `json:"grant_year,omitempty"`
	Status         Status     `json:"status"`
	ClientID       *uuid.UUID `json:"client_id,omitempty"`
	JurisdictionID *uuid.UUID `json:"jurisdiction_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Validate ensures the patent satisfies its invariants.
func (p *Patent) Validate() error {
	if p.ID == uuid.Nil {
		return errors.Validation("patent id must not be nil")
	}
	if p.PatentNumber == "" {
		return errors.Validation("patent number must not be empty")
	}
	if p.Status != StatusGranted {
		return errors.Validation("patent status must be granted")
	}
	return nil
}

// ExpiryYear returns filing year plus the statutory term, or nil when the
// filing year is unknown.
func (p *Patent) ExpiryYear(termYears int) *int {
	if p.FilingYear == nil {
		return nil
	}
	y := *p.FilingYear + termYears
	return &y
}
