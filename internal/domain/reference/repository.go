package reference

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence contract for reference dimensions.  The
// GetOrCreate operations carry the insert-if-absent contract: when an entity
// with the same natural key already exists, the existing id is returned and
// the candidate is discarded.  Implementations must serialize creation of a
// given key so that concurrent resolution of the same previously-unseen
// value cannot create duplicates.
type Repository interface {
	GetOrCreateClient(ctx context.Context, candidate *Client) (uuid.UUID, error)
	GetOrCreateJurisdiction(ctx context.Context, candidate *Jurisdiction) (uuid.UUID, error)

	// GetJurisdiction returns a jurisdiction by id.
	GetJurisdiction(ctx context.Context, id uuid.UUID) (*Jurisdiction, error)

	CountClients(ctx context.Context) (int64, error)
	CountJurisdictions(ctx context.Context) (int64, error)
}
