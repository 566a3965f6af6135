// Package prometheus exposes pipeline and report metrics.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ipfolio/patmaint/internal/application/pipeline"
)

// Metrics holds the collectors for the transformation pipeline and the
// report endpoints.
type Metrics struct {
	RunsTotal     prometheus.Counter
	RunDuration   prometheus.Histogram
	RowsProcessed *prometheus.CounterVec
	EntityCount   *prometheus.GaugeVec

	ReportRequests *prometheus.CounterVec
	ReportDuration *prometheus.HistogramVec
	CacheHits      *prometheus.CounterVec
}

// New registers all collectors on reg and returns the Metrics instance.
// A nil reg falls back to the default registry, which is what /metrics
// serves.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		RunsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "patmaint_pipeline_runs_total",
			Help: "Total completed pipeline runs",
		}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "patmaint_pipeline_run_duration_seconds",
			Help:    "Duration of one full pipeline run",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		RowsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "patmaint_pipeline_rows_total",
			Help: "Rows handled per pipeline run by outcome",
		}, []string{"outcome"}), // outcome: staged, dropped, created, skipped

		EntityCount: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "patmaint_entities_created",
			Help: "Entities created by the most recent pipeline run",
		}, []string{"entity"}), // entity: patent, deadline, cost

		ReportRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "patmaint_report_requests_total",
			Help: "Report requests by report name and status",
		}, []string{"report", "status"}),
		ReportDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "patmaint_report_duration_seconds",
			Help:    "Report computation duration by report name",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"report"}),
		CacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "patmaint_report_cache_total",
			Help: "Report cache lookups by result",
		}, []string{"result"}), // result: hit, miss, bypass
	}
}

// ObserveRun records the outcome of one pipeline run.
func (m *Metrics) ObserveRun(stats pipeline.RunStats, duration time.Duration) {
	if m == nil {
		return
	}
	m.RunsTotal.Inc()
	m.RunDuration.Observe(duration.Seconds())
	m.RowsProcessed.WithLabelValues("staged").Add(float64(stats.RawRows))
	m.RowsProcessed.WithLabelValues("dropped").Add(float64(stats.RowsWithoutKey))
	m.RowsProcessed.WithLabelValues("created").Add(float64(stats.PatentsCreated))
	m.RowsProcessed.WithLabelValues("skipped").Add(float64(stats.PatentsSkipped))
	m.EntityCount.WithLabelValues("patent").Set(float64(stats.PatentsCreated))
	m.EntityCount.WithLabelValues("deadline").Set(float64(stats.DeadlinesCreated))
	m.EntityCount.WithLabelValues("cost").Set(float64(stats.CostsCreated))
}

// ObserveReport records one report request.
func (m *Metrics) ObserveReport(report, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.ReportRequests.WithLabelValues(report, status).Inc()
	m.ReportDuration.WithLabelValues(report).Observe(duration.Seconds())
}

// ObserveCache records one report-cache lookup result.
func (m *Metrics) ObserveCache(result string) {
	if m == nil {
		return
	}
	m.CacheHits.WithLabelValues(result).Inc()
}
