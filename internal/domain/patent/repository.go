package patent

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence contract for canonical patents.
type Repository interface {
	// Create persists a freshly collapsed patent.  Implementations return a
	// conflict error when the patent number already exists; the pipeline
	// treats that as "already collapsed" rather than a failure.
	Create(ctx context.Context, p *Patent) error

	// GetByID returns a patent by surrogate id.
	GetByID(ctx context.Context, id uuid.UUID) (*Patent, error)

	// GetByNumber returns a patent by its natural key.
	GetByNumber(ctx context.Context, patentNumber string) (*Patent, error)

	// ListNumbers returns the set of patent numbers already collapsed.
	// The pipeline consults it to skip existing groups on re-run.
	ListNumbers(ctx context.Context) (map[string]bool, error)

	// List returns every canonical patent ordered by patent number.
	List(ctx context.Context) ([]*Patent, error)

	Count(ctx context.Context) (int64, error)
}
