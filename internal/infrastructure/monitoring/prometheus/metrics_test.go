package prometheus_test

import (
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/ipfolio/patmaint/internal/application/pipeline"
	"github.com/ipfolio/patmaint/internal/infrastructure/monitoring/prometheus"
)

func TestObserveRun(t *testing.T) {
	t.Parallel()

	reg := promclient.NewRegistry()
	m := prometheus.New(reg)

	m.ObserveRun(pipeline.RunStats{
		RawRows:          5,
		RowsWithoutKey:   1,
		PatentsCreated:   3,
		PatentsSkipped:   0,
		DeadlinesCreated: 6,
		CostsCreated:     6,
	}, 250*time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.RunsTotal))
	assert.Equal(t, float64(5), testutil.ToFloat64(m.RowsProcessed.WithLabelValues("staged")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RowsProcessed.WithLabelValues("dropped")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.RowsProcessed.WithLabelValues("created")))
	assert.Equal(t, float64(6), testutil.ToFloat64(m.EntityCount.WithLabelValues("deadline")))
}

func TestObserveReport(t *testing.T) {
	t.Parallel()

	reg := promclient.NewRegistry()
	m := prometheus.New(reg)

	m.ObserveReport("schedule", "ok", 10*time.Millisecond)
	m.ObserveReport("schedule", "ok", 15*time.Millisecond)
	m.ObserveReport("revenue", "error", 5*time.Millisecond)
	m.ObserveCache("hit")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.ReportRequests.WithLabelValues("schedule", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ReportRequests.WithLabelValues("revenue", "error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheHits.WithLabelValues("hit")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	t.Parallel()

	var m *prometheus.Metrics
	m.ObserveRun(pipeline.RunStats{}, time.Second)
	m.ObserveReport("schedule", "ok", time.Second)
	m.ObserveCache("miss")
}
