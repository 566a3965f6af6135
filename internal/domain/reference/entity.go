// Package reference implements the resolved, deduplicated reference
// dimensions of the normalized model: patent owners (Client) and
// country/office codes (Jurisdiction).  Entities are created the first time
// a distinct value is observed and are never updated or deleted afterwards.
package reference

import (
	"time"

	"github.com/google/uuid"

	"github.com/ipfolio/patmaint/pkg/errors"
)

// Client is a resolved patent owner.  Name is the natural key and is unique
// among resolved clients.  Contact is always empty when derived from the
// staging source, which carries no contact data; the field exists for
// enrichment from other sources.
type Client struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Contact   string    `json:"contact,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewClient constructs a Client for a raw assignee name.
func NewClient(name string) *Client {
	return &Client{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
}

// Validate ensures the client satisfies its invariants.
func (c *Client) Validate() error {
	if c.ID == uuid.Nil {
		return errors.Validation("client id must not be nil")
	}
	if c.Name == "" {
		return errors.Validation("client name must not be empty")
	}
	return nil
}

// Jurisdiction is a resolved country/office code.  Code is the natural key
// and is unique among resolved jurisdictions.  DisplayName always equals
// Code for this source, which carries no separate display name; that is a
// property of the source, not a general rule.
type Jurisdiction struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewJurisdiction constructs a Jurisdiction for a raw country code.
func NewJurisdiction(code string) *Jurisdiction {
	return &Jurisdiction{
		ID:          uuid.New(),
		Code:        code,
		DisplayName: code,
		CreatedAt:   time.Now().UTC(),
	}
}

// Validate ensures the jurisdiction satisfies its invariants.
func (j *Jurisdiction) Validate() error {
	if j.ID == uuid.Nil {
		return errors.Validation("jurisdiction id must not be nil")
	}
	if j.Code == "" {
		return errors.Validation("jurisdiction code must not be empty")
	}
	if len(j.Code) > 8 {
		return errors.Validation("jurisdiction code must be a short token")
	}
	return nil
}
