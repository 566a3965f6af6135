package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ipfolio/patmaint/internal/domain/reporting"
	"github.com/ipfolio/patmaint/internal/infrastructure/monitoring/logging"
	"github.com/ipfolio/patmaint/pkg/errors"
)

// ReportCache is the optional cache consulted before computing a report.
// A nil cache disables caching entirely.
type ReportCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}) error
}

// ReportMetrics records report request outcomes.  Satisfied by the
// prometheus metrics; nil disables recording.
type ReportMetrics interface {
	ObserveReport(report, status string, duration time.Duration)
	ObserveCache(result string)
}

// ReportHandler serves the three report endpoints.
type ReportHandler struct {
	reporter reporting.Reporter
	cache    ReportCache
	metrics  ReportMetrics
	log      logging.Logger
}

// NewReportHandler constructs a ReportHandler.  cache and metrics may be
// nil.
func NewReportHandler(reporter reporting.Reporter, cache ReportCache, metrics ReportMetrics, log logging.Logger) *ReportHandler {
	return &ReportHandler{
		reporter: reporter,
		cache:    cache,
		metrics:  metrics,
		log:      log.Named("report_handler"),
	}
}

// RegisterRoutes registers the report endpoints on the group.
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/reports/schedule", h.Schedule)
	rg.GET("/reports/revenue", h.Revenue)
	rg.GET("/reports/expiry", h.Expiry)
}

// Schedule handles GET /reports/schedule.
func (h *ReportHandler) Schedule(c *gin.Context) {
	start := time.Now()

	var rows []reporting.ScheduleRow
	if h.cacheGet(c, "report:schedule", &rows) {
		h.observe("schedule", "ok", start)
		c.JSON(http.StatusOK, gin.H{"rows": rows, "count": len(rows)})
		return
	}

	rows, err := h.reporter.MaintenanceSchedule(c.Request.Context())
	if err != nil {
		h.observe("schedule", "error", start)
		h.log.Error("maintenance schedule failed", logging.Err(err))
		respondError(c, err)
		return
	}
	h.cacheSet(c, "report:schedule", rows)
	h.observe("schedule", "ok", start)
	c.JSON(http.StatusOK, gin.H{"rows": rows, "count": len(rows)})
}

// Revenue handles GET /reports/revenue.
func (h *ReportHandler) Revenue(c *gin.Context) {
	start := time.Now()

	var rows []reporting.RevenueRow
	if h.cacheGet(c, "report:revenue", &rows) {
		h.observe("revenue", "ok", start)
		c.JSON(http.StatusOK, gin.H{"rows": rows, "count": len(rows)})
		return
	}

	rows, err := h.reporter.RevenueForecast(c.Request.Context())
	if err != nil {
		h.observe("revenue", "error", start)
		h.log.Error("revenue forecast failed", logging.Err(err))
		respondError(c, err)
		return
	}
	h.cacheSet(c, "report:revenue", rows)
	h.observe("revenue", "ok", start)
	c.JSON(http.StatusOK, gin.H{"rows": rows, "count": len(rows)})
}

// Expiry handles GET /reports/expiry?from=YYYY&to=YYYY.  The window is
// year-granular and inclusive on both ends, so it is never cached; the
// query itself is cheap.
func (h *ReportHandler) Expiry(c *gin.Context) {
	start := time.Now()

	from, err := yearParam(c, "from")
	if err != nil {
		h.observe("expiry", "error", start)
		respondError(c, err)
		return
	}
	to, err := yearParam(c, "to")
	if err != nil {
		h.observe("expiry", "error", start)
		respondError(c, err)
		return
	}

	rows, err := h.reporter.ExpiringPatents(c.Request.Context(), from, to)
	if err != nil {
		h.observe("expiry", "error", start)
		respondError(c, err)
		return
	}
	h.observe("expiry", "ok", start)
	c.JSON(http.StatusOK, gin.H{
		"rows":  rows,
		"count": len(rows),
		"from":  from,
		"to":    to,
	})
}

func (h *ReportHandler) cacheGet(c *gin.Context, key string, dest interface{}) bool {
	if h.cache == nil {
		if h.metrics != nil {
			h.metrics.ObserveCache("bypass")
		}
		return false
	}
	if err := h.cache.Get(c.Request.Context(), key, dest); err != nil {
		if h.metrics != nil {
			h.metrics.ObserveCache("miss")
		}
		return false
	}
	if h.metrics != nil {
		h.metrics.ObserveCache("hit")
	}
	return true
}

func (h *ReportHandler) cacheSet(c *gin.Context, key string, value interface{}) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Set(c.Request.Context(), key, value); err != nil {
		// Cache failures never fail the request.
		h.log.Warn("failed to cache report", logging.String("key", key), logging.Err(err))
	}
}

func (h *ReportHandler) observe(report, status string, start time.Time) {
	if h.metrics != nil {
		h.metrics.ObserveReport(report, status, time.Since(start))
	}
}

func yearParam(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, errors.New(errors.ErrCodeBadRequest, "missing required query parameter").WithDetail(name)
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(errors.ErrCodeBadRequest, "query parameter must be a year").WithDetail(name)
	}
	return year, nil
}
