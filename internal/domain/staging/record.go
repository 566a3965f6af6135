// Package staging holds the raw patent records exactly as ingested, one row
// per source observation.  Rows keep their full original cardinality: a
// single patent may appear several times with partially conflicting field
// values.  Nothing in the pipeline ever updates or deletes a staged row.
package staging

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RawRecord is one source observation.  PatentNumber may repeat across rows
// and may be empty; FilingYear and GrantYear are nil when the source row
// did not carry them.  Abstract and IPCClass are descriptive pass-through
// fields unused by the transformation.
type RawRecord struct {
	ID           uuid.UUID `json:"id"`
	PatentNumber string    `json:"patent_number"`
	Title        string    `json:"title"`
	Assignee     string    `json:"assignee"`
	CountryCode  string    `json:"country_code"`
	FilingYear   *int      `json:"filing_year,omitempty"`
	GrantYear    *int      `json:"grant_year,omitempty"`
	Abstract     string    `json:"abstract,omitempty"`
	IPCClass     string    `json:"ipc_class,omitempty"`
	IngestedAt   time.Time `json:"ingested_at"`
}

// Repository is the persistence contract for the raw record store.
type Repository interface {
	// BulkInsert appends records to the staging area.  It never deduplicates;
	// staging preserves source cardinality.
	BulkInsert(ctx context.Context, records []*RawRecord) error

	// ListAll returns every staged row in ingestion order.
	ListAll(ctx context.Context) ([]*RawRecord, error)

	// CountAll returns the number of staged rows.
	CountAll(ctx context.Context) (int64, error)
}

// GroupByPatentNumber partitions records into groups sharing one patent
// number.  Rows with an empty patent number cannot be keyed and are dropped;
// the second return value is the number of rows dropped this way.
func GroupByPatentNumber(records []*RawRecord) (map[string][]*RawRecord, int) {
	groups := make(map[string][]*RawRecord)
	dropped := 0
	for _, r := range records {
		if r.PatentNumber == "" {
			dropped++
			continue
		}
		groups[r.PatentNumber] = append(groups[r.PatentNumber], r)
	}
	return groups, dropped
}
