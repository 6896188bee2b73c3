package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vahan-ai/chat-gateway/internal/api/dto"
	"github.com/vahan-ai/chat-gateway/internal/api/middleware"
	"github.com/vahan-ai/chat-gateway/internal/services/metrics"
)

// MetricsHandler exposes quality and latency measurements.
type MetricsHandler struct {
	evaluator *metrics.Evaluator
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(evaluator *metrics.Evaluator) *MetricsHandler {
	return &MetricsHandler{evaluator: evaluator}
}

// Summary handles the GET /metrics endpoint.
// @Summary Aggregate quality metrics with the last day of latency
// @Tags Metrics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.MetricsSummaryResponse "Aggregate metrics"
// @Failure 401 {object} middleware.ErrorResponse "Unauthorized"
// @Router /metrics [get]
func (h *MetricsHandler) Summary(c *gin.Context) {
	now := time.Now().UnixMilli()
	dayAgo := now - 24*time.Hour.Milliseconds()

	latency, err := h.evaluator.SeriesRange(c.Request.Context(), metrics.SeriesLatency, dayAgo, now)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MetricsSummaryResponse{
		Summary: h.evaluator.Aggregate(),
		Latency: latency,
	})
}

// Session handles the GET /metrics/sessions/:sessionId endpoint.
// @Summary Per-turn metrics for one session, newest first
// @Tags Metrics
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "Session identifier"
// @Success 200 {object} dto.SessionMetricsResponse "Session metrics"
// @Failure 404 {object} middleware.ErrorResponse "No metrics for session"
// @Router /metrics/sessions/{sessionId} [get]
func (h *MetricsHandler) Session(c *gin.Context) {
	sessionID := c.Param("sessionId")
	records, summary, err := h.evaluator.SessionMetrics(c.Request.Context(), sessionID)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	if len(records) == 0 {
		c.JSON(http.StatusNotFound, middleware.ErrorResponse{
			Code:    "NOT_FOUND",
			Message: "no metrics recorded for session",
			Details: sessionID,
		})
		return
	}

	c.JSON(http.StatusOK, dto.SessionMetricsResponse{
		SessionID: sessionID,
		Summary:   summary,
		Records:   records,
	})
}

// Series handles the GET /metrics/series/:name endpoint. The start and end
// query parameters are millisecond timestamps; they default to the last day.
// @Summary Points of one named metric series
// @Tags Metrics
// @Produce json
// @Security BearerAuth
// @Param name path string true "Series name"
// @Param start query int false "Range start, milliseconds since epoch"
// @Param end query int false "Range end, milliseconds since epoch"
// @Success 200 {object} dto.SeriesResponse "Series points"
// @Failure 401 {object} middleware.ErrorResponse "Unauthorized"
// @Router /metrics/series/{name} [get]
func (h *MetricsHandler) Series(c *gin.Context) {
	name := c.Param("name")
	now := time.Now().UnixMilli()

	start := parseMillisParam(c.Query("start"), now-24*time.Hour.Milliseconds())
	end := parseMillisParam(c.Query("end"), now)

	points, err := h.evaluator.SeriesRange(c.Request.Context(), name, start, end)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SeriesResponse{
		Series: name,
		Points: points,
	})
}

func parseMillisParam(value string, fallback int64) int64 {
	if value == "" {
		return fallback
	}
	ms, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return ms
}
