package patent

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ipfolio/patmaint/internal/domain/reference"
	"github.com/ipfolio/patmaint/internal/domain/staging"
	"github.com/ipfolio/patmaint/internal/infrastructure/monitoring/logging"
	"github.com/ipfolio/patmaint/pkg/errors"
)

// Collapser turns a group of raw rows sharing one patent number into a
// single canonical Patent.  When rows disagree on a field, the maximum
// under the field's natural ordering wins: lexicographic for strings,
// numeric for years.  The rule is applied independently per field, so the
// collapsed patent may combine values from different source rows.  A total
// order keeps the outcome stable across re-ingestion regardless of row
// order; "first row seen" would not.
type Collapser interface {
	// Collapse builds the canonical Patent for a non-empty group of raw
	// records sharing one patent number, resolving the chosen assignee and
	// country through the reference resolver.
	Collapse(ctx context.Context, group []*staging.RawRecord) (*Patent, error)
}

type collapser struct {
	resolver reference.Resolver
	log      logging.Logger
}

// NewCollapser constructs a Collapser using resolver for reference links.
func NewCollapser(resolver reference.Resolver, log logging.Logger) Collapser {
	return &collapser{
		resolver: resolver,
		log:      log.Named("collapser"),
	}
}

func (c *collapser) Collapse(ctx context.Context, group []*staging.RawRecord) (*Patent, error) {
	if len(group) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyRawGroup, "cannot collapse an empty raw group")
	}

	number := group[0].PatentNumber
	if number == "" {
		return nil, errors.InvalidParam("cannot collapse rows without a patent number")
	}
	for _, r := range group[1:] {
		if r.PatentNumber != number {
			return nil, errors.InvalidParam("raw group mixes patent numbers").
				WithDetail(number + " vs " + r.PatentNumber)
		}
	}

	var (
		title      string
		assignee   string
		country    string
		filingYear *int
		grantYear  *int
	)
	for _, r := range group {
		title = maxString(title, r.Title)
		assignee = maxString(assignee, r.Assignee)
		country = maxString(country, r.CountryCode)
		filingYear = maxYear(filingYear, r.FilingYear)
		grantYear = maxYear(grantYear, r.GrantYear)
	}

	clientID, err := c.resolveOptional(ctx, c.resolver.ResolveClient, assignee)
	if err != nil {
		return nil, err
	}
	jurisdictionID, err := c.resolveOptional(ctx, c.resolver.ResolveJurisdiction, country)
	if err != nil {
		return nil, err
	}

	p := &Patent{
		ID:             uuid.New(),
		PatentNumber:   number,
		Title:          title,
		FilingYear:     filingYear,
		GrantYear:      grantYear,
		Status:         StatusGranted,
		ClientID:       clientID,
		JurisdictionID: jurisdictionID,
		CreatedAt:      time.Now().UTC(),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	c.log.Debug("collapsed raw group",
		logging.String("patent_number", number),
		logging.Int("raw_rows", len(group)),
	)
	return p, nil
}

// resolveOptional maps an empty value to a nil reference and a resolved
// value to a pointer to its id.
func (c *collapser) resolveOptional(
	ctx context.Context,
	resolve func(context.Context, string) (uuid.UUID, error),
	value string,
) (*uuid.UUID, error) {
	id, err := resolve(ctx, value)
	if err != nil {
		return nil, err
	}
	if id == uuid.Nil {
		return nil, nil
	}
	return &id, nil
}

// maxString returns the lexicographic maximum of a and b.  The empty string
// loses to any non-empty value, so noise rows with blank cells never mask
// populated ones.
func maxString(a, b string) string {
	if b > a {
		return b
	}
	return a
}

// maxYear returns the numeric maximum over the non-nil arguments, or nil
// when both are nil.
func maxYear(a, b *int) *int {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if *b > *a {
		return b
	}
	return a
}
