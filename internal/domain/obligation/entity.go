// Package obligation implements the derived maintenance obligations of the
// normalized model: Deadlines generated from a patent's grant year by fixed
// offsets, and the Costs that price them from a static fee schedule.
package obligation

import (
	"time"

	"github.com/google/uuid"

	"github.com/ipfolio/patmaint/pkg/errors"
)

// AssetType tags which kind of asset an obligation belongs to.  Only
// patents exist in this domain today; the tag keeps room for designs and
// trademarks without a schema change.
type AssetType string

const (
	AssetTypePatent AssetType = "patent"
)

// DeadlineStatus is the operational state of a deadline.  The derivation
// pipeline only ever initializes it to open; transitions belong to the
// docketing workflow, not to derivation.
type DeadlineStatus string

const (
	DeadlineStatusOpen   DeadlineStatus = "open"
	DeadlineStatusPaid   DeadlineStatus = "paid"
	DeadlineStatusWaived DeadlineStatus = "waived"
)

// FeeType labels what a cost pays for.
const FeeTypeMaintenance = "maintenance"

// Deadline is one maintenance obligation instance.  AssetID is a foreign
// reference to the patent, not an ownership pointer; a patent does not own
// a deadlines collection.  DueYear is the patent's grant year plus the
// schedule offset.  Created once per (patent, offset) pair and never
// regenerated.
type Deadline struct {
	ID        uuid.UUID      `json:"id"`
	AssetType AssetType      `json:"asset_type"`
	AssetID   uuid.UUID      `json:"asset_id"`
	Type      string         `json:"type"` // e.g. "3-year maintenance fee"
	DueYear   int            `json:"due_year"`
	Status    DeadlineStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
}

// Validate ensures the deadline satisfies its invariants.
func (d *Deadline) Validate() error {
	if d.ID == uuid.Nil {
		return errors.Validation("deadline id must not be nil")
	}
	if d.AssetType != AssetTypePatent {
		return errors.Validation("deadline asset type must be patent")
	}
	if d.AssetID == uuid.Nil {
		return errors.Validation("deadline asset id must not be nil")
	}
	if d.Type == "" {
		return errors.Validation("deadline type must not be empty")
	}
	if d.DueYear < 1000 {
		return errors.Validation("deadline due year is implausible")
	}
	return nil
}

// Cost is the priced instance of a Deadline.  JurisdictionID is copied
// from the patent at creation time and never re-derived; patents never
// change after creation, so the copy cannot go stale.  DueYear always
// equals the paired deadline's due year.
type Cost struct {
	ID             uuid.UUID  `json:"id"`
	AssetType      AssetType  `json:"asset_type"`
	AssetID        uuid.UUID  `json:"asset_id"`
	DeadlineID     uuid.UUID  `json:"deadline_id"`
	JurisdictionID *uuid.UUID `json:"jurisdiction_id,omitempty"`
	FeeType        string     `json:"fee_type"`
	Amount         Money      `json:"amount"`
	DueYear        int        `json:"due_year"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Validate ensures the cost satisfies its invariants.
func (c *Cost) Validate() error {
	if c.ID == uuid.Nil {
		return errors.Validation("cost id must not be nil")
	}
	if c.AssetType != AssetTypePatent {
		return errors.Validation("cost asset type must be patent")
	}
	if c.AssetID == uuid.Nil {
		return errors.Validation("cost asset id must not be nil")
	}
	if c.DeadlineID == uuid.Nil {
		return errors.Validation("cost deadline id must not be nil")
	}
	if c.FeeType == "" {
		return errors.Validation("cost fee type must not be empty")
	}
	return c.Amount.Validate()
}
