//go:build integration

package repositories_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/ipfolio/patmaint/internal/application/pipeline"
	"github.com/ipfolio/patmaint/internal/domain/obligation"
	"github.com/ipfolio/patmaint/internal/domain/patent"
	"github.com/ipfolio/patmaint/internal/domain/reference"
	"github.com/ipfolio/patmaint/internal/domain/reporting"
	"github.com/ipfolio/patmaint/internal/domain/staging"
	"github.com/ipfolio/patmaint/internal/infrastructure/database/postgres"
	"github.com/ipfolio/patmaint/internal/infrastructure/database/postgres/repositories"
	"github.com/ipfolio/patmaint/internal/infrastructure/monitoring/logging"
)

type pgHarness struct {
	conn *postgres.Connection

	staging    staging.Repository
	reference  reference.Repository
	patents    patent.Repository
	obligation obligation.Repository
	reporter   reporting.Reporter
	tx         *postgres.TxManager
}

func newPGHarness(t *testing.T) *pgHarness {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("patmaint_test"),
		tcpostgres.WithUsername("patmaint"),
		tcpostgres.WithPassword("patmaint"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.PingContext(ctx))

	log := logging.NewNopLogger()
	conn := postgres.NewConnectionWithDB(db, log)
	require.NoError(t, conn.RunMigrations("../../../../../migrations"))

	return &pgHarness{
		conn:       conn,
		staging:    repositories.NewStagingRepo(conn, log),
		reference:  repositories.NewReferenceRepo(conn, log),
		patents:    repositories.NewPatentRepo(conn, log),
		obligation: repositories.NewObligationRepo(conn, log),
		reporter:   repositories.NewReporter(conn, 20, log),
		tx:         postgres.NewTxManager(conn, log),
	}
}

func intp(y int) *int { return &y }

func TestPostgresPipelineEndToEnd(t *testing.T) {
	h := newPGHarness(t)
	ctx := context.Background()
	log := logging.NewNopLogger()

	err := h.staging.BulkInsert(ctx, []*staging.RawRecord{
		{PatentNumber: "US1000", Title: "A", Assignee: "Acme Corp", CountryCode: "US", FilingYear: intp(2006), GrantYear: intp(2010)},
		{PatentNumber: "US1000", Title: "B", Assignee: "Acme Corp", CountryCode: "US", FilingYear: intp(2006), GrantYear: intp(2010)},
		{PatentNumber: "EP2000", Title: "Gear assembly", Assignee: "Globex", CountryCode: "EP", FilingYear: intp(2008), GrantYear: intp(2012)},
		{PatentNumber: "JP3000", Title: "Quiet pump", Assignee: "Initech", CountryCode: "JP", FilingYear: intp(2011)},
		{PatentNumber: "", Title: "orphan"},
	})
	require.NoError(t, err)

	n, err := h.staging.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	resolver := reference.NewResolver(h.reference, log)
	collapser := patent.NewCollapser(resolver, log)
	deriver := obligation.NewDeriver(h.obligation, obligation.DefaultFeeSchedule(), log)
	svc := pipeline.NewService(h.staging, h.patents, collapser, deriver, h.tx, nil, log)

	stats, err := svc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.PatentsCreated)
	assert.Equal(t, 1, stats.RowsWithoutKey)
	assert.Equal(t, 6, stats.DeadlinesCreated)

	// Collapsing picked the per-field maximum.
	p, err := h.patents.GetByNumber(ctx, "US1000")
	require.NoError(t, err)
	assert.Equal(t, "B", p.Title)
	require.NotNil(t, p.ClientID)
	require.NotNil(t, p.JurisdictionID)

	// Re-run is a no-op under the real database constraints.
	stats, err = svc.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.PatentsCreated)
	assert.Equal(t, 3, stats.PatentsSkipped)
	assert.Zero(t, stats.DeadlinesCreated)

	deadlines, err := h.obligation.CountDeadlines(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(6), deadlines)

	schedule, err := h.reporter.MaintenanceSchedule(ctx)
	require.NoError(t, err)
	require.Len(t, schedule, 6)
	assert.Equal(t, "EP2000", schedule[0].PatentNumber)
	assert.Equal(t, 2015, schedule[0].DueYear)

	revenue, err := h.reporter.RevenueForecast(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, revenue)
	for _, row := range revenue {
		assert.NotEqual(t, reporting.UnknownJurisdictionLabel, row.JurisdictionLabel)
	}

	expiring, err := h.reporter.ExpiringPatents(ctx, 2026, 2031)
	require.NoError(t, err)
	require.Len(t, expiring, 3)
	assert.Equal(t, "US1000", expiring[0].PatentNumber)
	assert.Equal(t, 2026, expiring[0].ExpiryYear)
	assert.Equal(t, "Acme Corp", expiring[0].ClientName)
}

func TestPostgresReferenceInsertIfAbsent(t *testing.T) {
	h := newPGHarness(t)
	ctx := context.Background()

	first, err := h.reference.GetOrCreateClient(ctx, reference.NewClient("Acme Corp"))
	require.NoError(t, err)
	second, err := h.reference.GetOrCreateClient(ctx, reference.NewClient("Acme Corp"))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	count, err := h.reference.CountClients(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestPostgresTxRollbackOnError(t *testing.T) {
	h := newPGHarness(t)
	ctx := context.Background()
	log := logging.NewNopLogger()

	resolver := reference.NewResolver(h.reference, log)
	collapser := patent.NewCollapser(resolver, log)
	group := []*staging.RawRecord{
		{PatentNumber: "US9000", Title: "Valve", Assignee: "Acme Corp", CountryCode: "US", GrantYear: intp(2019)},
	}
	p, err := collapser.Collapse(ctx, group)
	require.NoError(t, err)

	sentinel := assert.AnError
	err = h.tx.InTx(ctx, func(txCtx context.Context) error {
		if err := h.patents.Create(txCtx, p); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	_, err = h.patents.GetByNumber(ctx, "US9000")
	assert.Error(t, err, "insert must have been rolled back")
}
