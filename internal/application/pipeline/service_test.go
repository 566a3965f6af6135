package pipeline_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ipfolio/patmaint/internal/application/pipeline"
	"github.com/ipfolio/patmaint/internal/domain/obligation"
	"github.com/ipfolio/patmaint/internal/domain/patent"
	"github.com/ipfolio/patmaint/internal/domain/reference"
	"github.com/ipfolio/patmaint/internal/domain/reporting"
	"github.com/ipfolio/patmaint/internal/domain/staging"
	"github.com/ipfolio/patmaint/internal/infrastructure/monitoring/logging"
	"github.com/ipfolio/patmaint/internal/testutil"
)

func yearPtr(y int) *int { return &y }

// newPipeline wires a full pipeline over one in-memory store.
func newPipeline(t *testing.T) (pipeline.Service, *testutil.Store) {
	t.Helper()
	store := testutil.NewStore()
	log := logging.NewNopLogger()
	resolver := reference.NewResolver(store, log)
	collapser := patent.NewCollapser(resolver, log)
	deriver := obligation.NewDeriver(store, obligation.DefaultFeeSchedule(), log)
	svc := pipeline.NewService(store, store, collapser, deriver, store, nil, log)
	return svc, store
}

func stage(t *testing.T, store *testutil.Store, records ...*staging.RawRecord) {
	t.Helper()
	require.NoError(t, store.BulkInsert(context.Background(), records))
}

func TestRun_FullTransformation(t *testing.T) {
	t.Parallel()

	svc, store := newPipeline(t)
	ctx := context.Background()

	stage(t, store,
		&staging.RawRecord{PatentNumber: "US1000", Title: "A", Assignee: "Acme Corp", CountryCode: "US", FilingYear: yearPtr(2006), GrantYear: yearPtr(2010)},
		&staging.RawRecord{PatentNumber: "US1000", Title: "B", Assignee: "Acme Corp", CountryCode: "US", FilingYear: yearPtr(2006), GrantYear: yearPtr(2010)},
		&staging.RawRecord{PatentNumber: "EP2000", Title: "Gear assembly", Assignee: "Globex", CountryCode: "EP", FilingYear: yearPtr(2008), GrantYear: yearPtr(2012)},
		&staging.RawRecord{PatentNumber: "JP3000", Title: "Quiet pump", Assignee: "Initech", CountryCode: "JP", FilingYear: yearPtr(2011)}, // no grant year
		&staging.RawRecord{PatentNumber: "", Title: "orphan row"},
	)

	stats, err := svc.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(5), stats.RawRows)
	assert.Equal(t, 1, stats.RowsWithoutKey)
	assert.Equal(t, 3, stats.PatentsCreated)
	assert.Zero(t, stats.PatentsSkipped)
	assert.Equal(t, 6, stats.DeadlinesCreated, "two granted patents, three deadlines each")
	assert.Equal(t, 6, stats.CostsCreated)

	// Duplicate observation collapsed to one patent with the max title.
	p, err := store.GetByNumber(ctx, "US1000")
	require.NoError(t, err)
	assert.Equal(t, "B", p.Title)

	// No obligations for the patent without a grant year.
	jp, err := store.GetByNumber(ctx, "JP3000")
	require.NoError(t, err)
	deadlines, err := store.ListDeadlinesByAsset(ctx, jp.ID)
	require.NoError(t, err)
	assert.Empty(t, deadlines)
}

func TestRun_Idempotent(t *testing.T) {
	t.Parallel()

	svc, store := newPipeline(t)
	ctx := context.Background()

	stage(t, store,
		&staging.RawRecord{PatentNumber: "US1000", Title: "A", Assignee: "Acme Corp", CountryCode: "US", GrantYear: yearPtr(2010)},
		&staging.RawRecord{PatentNumber: "US1000", Title: "B", Assignee: "Acme Corp", CountryCode: "US", GrantYear: yearPtr(2010)},
		&staging.RawRecord{PatentNumber: "EP2000", Title: "Gear assembly", Assignee: "Globex", CountryCode: "EP", GrantYear: yearPtr(2012)},
	)

	_, err := svc.Run(ctx)
	require.NoError(t, err)

	countAll := func() (int64, int64, int64, int64, int64) {
		clients, _ := store.CountClients(ctx)
		jurisdictions, _ := store.CountJurisdictions(ctx)
		patents, _ := store.Count(ctx)
		deadlines, _ := store.CountDeadlines(ctx)
		costs, _ := store.CountCosts(ctx)
		return clients, jurisdictions, patents, deadlines, costs
	}

	c1, j1, p1, d1, o1 := countAll()
	titleBefore, _ := store.GetByNumber(ctx, "US1000")

	stats, err := svc.Run(ctx)
	require.NoError(t, err)

	c2, j2, p2, d2, o2 := countAll()
	assert.Equal(t, c1, c2)
	assert.Equal(t, j1, j2)
	assert.Equal(t, p1, p2)
	assert.Equal(t, d1, d2)
	assert.Equal(t, o1, o2)

	assert.Zero(t, stats.PatentsCreated)
	assert.Equal(t, 2, stats.PatentsSkipped)
	assert.Zero(t, stats.DeadlinesCreated)

	titleAfter, _ := store.GetByNumber(ctx, "US1000")
	assert.Equal(t, titleBefore.Title, titleAfter.Title, "re-run never updates a stored patent")
	assert.Equal(t, titleBefore.ID, titleAfter.ID)
}

func TestRun_UnresolvedJurisdictionReportsUnknown(t *testing.T) {
	t.Parallel()

	svc, store := newPipeline(t)
	ctx := context.Background()

	stage(t, store,
		&staging.RawRecord{PatentNumber: "US5000", Title: "Mixer", Assignee: "Acme Corp", CountryCode: "", GrantYear: yearPtr(2015)},
	)

	_, err := svc.Run(ctx)
	require.NoError(t, err)

	p, err := store.GetByNumber(ctx, "US5000")
	require.NoError(t, err)
	assert.NotNil(t, p.ClientID)
	assert.Nil(t, p.JurisdictionID)

	rows, err := store.RevenueForecast(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.Equal(t, reporting.UnknownJurisdictionLabel, row.JurisdictionLabel)
	}
}

func TestRun_DerivationSchedule(t *testing.T) {
	t.Parallel()

	svc, store := newPipeline(t)
	ctx := context.Background()

	stage(t, store,
		&staging.RawRecord{PatentNumber: "US6000", Title: "Press", Assignee: "Acme Corp", CountryCode: "US", GrantYear: yearPtr(2018)},
	)

	_, err := svc.Run(ctx)
	require.NoError(t, err)

	p, err := store.GetByNumber(ctx, "US6000")
	require.NoError(t, err)

	deadlines, err := store.ListDeadlinesByAsset(ctx, p.ID)
	require.NoError(t, err)
	costs, err := store.ListCostsByAsset(ctx, p.ID)
	require.NoError(t, err)

	require.Len(t, deadlines, 3)
	require.Len(t, costs, 3)
	assert.Equal(t, []int{2021, 2025, 2029}, []int{deadlines[0].DueYear, deadlines[1].DueYear, deadlines[2].DueYear})
	assert.Equal(t, []int64{215000, 404000, 828000}, []int64{costs[0].Amount.Amount, costs[1].Amount.Amount, costs[2].Amount.Amount})
	for i := range costs {
		assert.Equal(t, deadlines[i].DueYear, costs[i].DueYear)
	}
}

func TestRun_ExpiryWindowScenario(t *testing.T) {
	t.Parallel()

	svc, store := newPipeline(t)
	ctx := context.Background()

	stage(t, store,
		&staging.RawRecord{PatentNumber: "US7000", Title: "Sensor", Assignee: "Acme Corp", CountryCode: "US", FilingYear: yearPtr(2008), GrantYear: yearPtr(2012)},
	)

	_, err := svc.Run(ctx)
	require.NoError(t, err)

	in, err := store.ExpiringPatents(ctx, 2025, 2030)
	require.NoError(t, err)
	require.Len(t, in, 1)
	assert.Equal(t, 2028, in[0].ExpiryYear)
	assert.Equal(t, "Acme Corp", in[0].ClientName)

	out, err := store.ExpiringPatents(ctx, 2029, 2035)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRun_EmptyStaging(t *testing.T) {
	t.Parallel()

	svc, _ := newPipeline(t)

	stats, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.RawRows)
	assert.Zero(t, stats.PatentsCreated)
}

func TestRun_SkippedExistingPatentHealsMissingObligations(t *testing.T) {
	t.Parallel()

	svc, store := newPipeline(t)
	ctx := context.Background()

	// Pre-existing canonical patent with a grant year but no derived rows,
	// as a run interrupted after the patent insert would leave behind under
	// a weaker storage setup.
	pre := &patent.Patent{
		ID:           uuid.New(),
		PatentNumber: "US8000",
		Title:        "Latch",
		GrantYear:    yearPtr(2016),
		Status:       patent.StatusGranted,
	}
	require.NoError(t, store.Create(ctx, pre))

	stage(t, store,
		&staging.RawRecord{PatentNumber: "US8000", Title: "Latch", GrantYear: yearPtr(2016)},
	)

	stats, err := svc.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.PatentsSkipped)
	assert.Zero(t, stats.PatentsCreated)
	assert.Equal(t, 3, stats.DeadlinesCreated, "missing obligations are derived for the existing patent")

	deadlines, err := store.ListDeadlinesByAsset(ctx, pre.ID)
	require.NoError(t, err)
	assert.Len(t, deadlines, 3)
}
