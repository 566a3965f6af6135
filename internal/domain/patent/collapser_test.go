package patent_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ipfolio/patmaint/internal/domain/patent"
	"github.com/ipfolio/patmaint/internal/domain/reference"
	"github.com/ipfolio/patmaint/internal/domain/staging"
	"github.com/ipfolio/patmaint/internal/infrastructure/monitoring/logging"
	"github.com/ipfolio/patmaint/internal/testutil"
)

func yearPtr(y int) *int { return &y }

func newCollapser(t *testing.T) (patent.Collapser, *testutil.Store) {
	t.Helper()
	store := testutil.NewStore()
	resolver := reference.NewResolver(store, logging.NewNopLogger())
	return patent.NewCollapser(resolver, logging.NewNopLogger()), store
}

func TestCollapse_SingleRow(t *testing.T) {
	t.Parallel()

	c, _ := newCollapser(t)

	p, err := c.Collapse(context.Background(), []*staging.RawRecord{{
		PatentNumber: "US1000",
		Title:        "Widget coupling",
		Assignee:     "Acme Corp",
		CountryCode:  "US",
		FilingYear:   yearPtr(2006),
		GrantYear:    yearPtr(2010),
	}})
	require.NoError(t, err)

	assert.Equal(t, "US1000", p.PatentNumber)
	assert.Equal(t, "Widget coupling", p.Title)
	assert.Equal(t, yearPtr(2006), p.FilingYear)
	assert.Equal(t, yearPtr(2010), p.GrantYear)
	assert.Equal(t, patent.StatusGranted, p.Status)
	assert.NotNil(t, p.ClientID)
	assert.NotNil(t, p.JurisdictionID)
}

func TestCollapse_ConflictingFieldsTakeMaximum(t *testing.T) {
	t.Parallel()

	c, _ := newCollapser(t)

	// Duplicate observation of US1000 with differing titles; the
	// lexicographic maximum must win independent of row order.
	groupAB := []*staging.RawRecord{
		{PatentNumber: "US1000", Title: "A", GrantYear: yearPtr(2010)},
		{PatentNumber: "US1000", Title: "B", GrantYear: yearPtr(2010)},
	}
	groupBA := []*staging.RawRecord{
		{PatentNumber: "US1000", Title: "B", GrantYear: yearPtr(2010)},
		{PatentNumber: "US1000", Title: "A", GrantYear: yearPtr(2010)},
	}

	p1, err := c.Collapse(context.Background(), groupAB)
	require.NoError(t, err)
	p2, err := c.Collapse(context.Background(), groupBA)
	require.NoError(t, err)

	assert.Equal(t, "B", p1.Title)
	assert.Equal(t, "B", p2.Title, "result must not depend on row order")
}

func TestCollapse_FieldsAreResolvedIndependently(t *testing.T) {
	t.Parallel()

	c, _ := newCollapser(t)

	// Title max comes from the first row, year max from the second.
	group := []*staging.RawRecord{
		{PatentNumber: "EP7", Title: "Zeolite filter", FilingYear: yearPtr(2004)},
		{PatentNumber: "EP7", Title: "Aluminium filter", FilingYear: yearPtr(2005)},
	}

	p, err := c.Collapse(context.Background(), group)
	require.NoError(t, err)

	assert.Equal(t, "Zeolite filter", p.Title)
	assert.Equal(t, yearPtr(2005), p.FilingYear)
}

func TestCollapse_NilYearsLoseToValues(t *testing.T) {
	t.Parallel()

	c, _ := newCollapser(t)

	group := []*staging.RawRecord{
		{PatentNumber: "JP3", Title: "Pump", GrantYear: nil},
		{PatentNumber: "JP3", Title: "Pump", GrantYear: yearPtr(2012)},
		{PatentNumber: "JP3", Title: "Pump", GrantYear: nil},
	}

	p, err := c.Collapse(context.Background(), group)
	require.NoError(t, err)
	assert.Equal(t, yearPtr(2012), p.GrantYear)
}

func TestCollapse_AllYearsNilStaysNil(t *testing.T) {
	t.Parallel()

	c, _ := newCollapser(t)

	p, err := c.Collapse(context.Background(), []*staging.RawRecord{
		{PatentNumber: "JP4", Title: "Valve"},
	})
	require.NoError(t, err)
	assert.Nil(t, p.FilingYear)
	assert.Nil(t, p.GrantYear)
}

func TestCollapse_EmptyCountryYieldsNilJurisdiction(t *testing.T) {
	t.Parallel()

	c, store := newCollapser(t)
	ctx := context.Background()

	p, err := c.Collapse(ctx, []*staging.RawRecord{{
		PatentNumber: "US2000",
		Assignee:     "Acme Corp",
		CountryCode:  "",
		GrantYear:    yearPtr(2015),
	}})
	require.NoError(t, err)

	assert.NotNil(t, p.ClientID, "assignee resolves")
	assert.Nil(t, p.JurisdictionID, "empty country stays unresolved")

	n, _ := store.CountJurisdictions(ctx)
	assert.Zero(t, n, "no Unknown placeholder is created")
}

func TestCollapse_SharedAssigneeResolvesToOneClient(t *testing.T) {
	t.Parallel()

	c, store := newCollapser(t)
	ctx := context.Background()

	p1, err := c.Collapse(ctx, []*staging.RawRecord{
		{PatentNumber: "US1", Assignee: "Acme Corp"},
	})
	require.NoError(t, err)
	p2, err := c.Collapse(ctx, []*staging.RawRecord{
		{PatentNumber: "US2", Assignee: "Acme Corp"},
	})
	require.NoError(t, err)

	require.NotNil(t, p1.ClientID)
	require.NotNil(t, p2.ClientID)
	assert.Equal(t, *p1.ClientID, *p2.ClientID)

	n, _ := store.CountClients(ctx)
	assert.Equal(t, int64(1), n)
}

func TestCollapse_Errors(t *testing.T) {
	t.Parallel()

	c, _ := newCollapser(t)
	ctx := context.Background()

	_, err := c.Collapse(ctx, nil)
	require.Error(t, err, "empty group")

	_, err = c.Collapse(ctx, []*staging.RawRecord{{PatentNumber: ""}})
	require.Error(t, err, "rows without a patent number cannot be keyed")

	_, err = c.Collapse(ctx, []*staging.RawRecord{
		{PatentNumber: "US1"},
		{PatentNumber: "US2"},
	})
	require.Error(t, err, "mixed group")
}
