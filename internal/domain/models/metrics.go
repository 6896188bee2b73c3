package models

// MetricsRecord holds the per-turn quality and timing measurements. Latency is
// always present; the relevance scores are best-effort and stay nil when the
// scoring computation fails, so aggregates can exclude them instead of
// treating a failed measurement as zero.
type MetricsRecord struct {
	SessionID              string   `json:"session_id"`
	LatencySeconds         float64  `json:"latency_seconds"`
	QueryResponseRelevance *float64 `json:"query_response_relevance,omitempty"`
	ContextRelevance       *float64 `json:"context_relevance,omitempty"`
	Timestamp              int64    `json:"timestamp"`
}

// SessionSummary is the derived roll-up over one session's metrics records.
// It is recomputed on demand from the per-turn records and never persisted.
type SessionSummary struct {
	TotalInteractions int      `json:"total_interactions"`
	AvgLatency        float64  `json:"avg_latency"`
	AvgRelevanceScore *float64 `json:"avg_relevance_score,omitempty"`
	StartTime         int64    `json:"start_time"`
	EndTime           int64    `json:"end_time"`
}

// SeriesPoint is one (timestamp, value) sample of a metric time series.
// Timestamps are milliseconds since the Unix epoch.
type SeriesPoint struct {
	Timestamp int64   `json:"timestamp"`
	Value     float64 `json:"value"`
}
