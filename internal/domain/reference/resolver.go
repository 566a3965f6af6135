package reference

import (
	"context"

	"github.com/google/uuid"

	"github.com/ipfolio/patmaint/internal/infrastructure/monitoring/logging"
)

// Resolver turns distinct raw field values into canonical reference entity
// ids.  Resolution is idempotent: a value that already maps to an entity
// returns the existing id.  Empty values are skipped entirely; no "Unknown"
// placeholder entity is ever created here.  Default labeling of unresolved
// references is a reporting-layer presentation concern.
type Resolver interface {
	// ResolveClient returns the id of the client for name, creating it on
	// first observation.  An empty name returns uuid.Nil with no error.
	ResolveClient(ctx context.Context, name string) (uuid.UUID, error)

	// ResolveJurisdiction returns the id of the jurisdiction for code,
	// creating it on first observation.  An empty code returns uuid.Nil
	// with no error.
	ResolveJurisdiction(ctx context.Context, code string) (uuid.UUID, error)
}

type resolver struct {
	repo Repository
	log  logging.Logger
}

// NewResolver constructs a Resolver backed by repo.
func NewResolver(repo Repository, log logging.Logger) Resolver {
	return &resolver{
		repo: repo,
		log:  log.Named("resolver"),
	}
}

func (r *resolver) ResolveClient(ctx context.Context, name string) (uuid.UUID, error) {
	if name == "" {
		return uuid.Nil, nil
	}

	candidate := NewClient(name)
	if err := candidate.Validate(); err != nil {
		return uuid.Nil, err
	}

	id, err := r.repo.GetOrCreateClient(ctx, candidate)
	if err != nil {
		return uuid.Nil, err
	}
	if id == candidate.ID {
		r.log.Debug("created client", logging.String("name", name))
	}
	return id, nil
}

func (r *resolver) ResolveJurisdiction(ctx context.Context, code string) (uuid.UUID, error) {
	if code == "" {
		return uuid.Nil, nil
	}

	candidate := NewJurisdiction(code)
	if err := candidate.Validate(); err != nil {
		return uuid.Nil, err
	}

	id, err := r.repo.GetOrCreateJurisdiction(ctx, candidate)
	if err != nil {
		return uuid.Nil, err
	}
	if id == candidate.ID {
		r.log.Debug("created jurisdiction", logging.String("code", code))
	}
	return id, nil
}
