// Package metrics measures chat turn quality and latency and persists the
// measurements for later inspection.
package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vahan-ai/chat-gateway/internal/core/cache"
	"github.com/vahan-ai/chat-gateway/internal/core/llm"
	"github.com/vahan-ai/chat-gateway/internal/domain/models"
)

// Cache key shapes. Session records live newest first in a list; time series
// live in sorted sets scored by millisecond timestamp.
const (
	sessionKeyPrefix = "response_metrics:"
	seriesKeyPrefix  = "metric:"
)

// Series names recorded per turn.
const (
	SeriesLatency          = "latency_seconds"
	SeriesQueryRelevance   = "query_relevance"
	SeriesContextRelevance = "context_relevance"
)

// Evaluator scores chat turns and records measurements. Scoring failures
// never fail a turn; a score that cannot be computed is simply absent.
type Evaluator struct {
	cache    cache.Cache
	embedder llm.Embedder
	logger   zerolog.Logger

	mu      sync.Mutex
	records []models.MetricsRecord
}

// NewEvaluator creates an evaluator.
func NewEvaluator(c cache.Cache, embedder llm.Embedder, logger zerolog.Logger) *Evaluator {
	return &Evaluator{
		cache:    c,
		embedder: embedder,
		logger:   logger.With().Str("service", "metrics").Logger(),
	}
}

// StartTimer marks the start of a turn.
func (e *Evaluator) StartTimer() time.Time {
	return time.Now()
}

// EvaluateResponse measures latency and, where embeddings can be computed,
// the semantic relevance of the reply to the query and of the retrieved
// context to the query. The finished record is kept in memory and appended
// to the session's record list.
func (e *Evaluator) EvaluateResponse(ctx context.Context, sessionID, query, response, retrievedContext string, started time.Time) models.MetricsRecord {
	record := models.MetricsRecord{
		SessionID:      sessionID,
		LatencySeconds: time.Since(started).Seconds(),
		Timestamp:      time.Now().UnixMilli(),
	}

	queryVec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		e.logger.Warn().Err(err).Str("session_id", sessionID).Msg("query embedding for scoring failed")
	} else {
		if responseVec, err := e.embedder.Embed(ctx, response); err == nil {
			record.QueryResponseRelevance = cosineSimilarity(queryVec, responseVec)
		} else {
			e.logger.Warn().Err(err).Str("session_id", sessionID).Msg("response embedding failed")
		}
		if retrievedContext != "" {
			if contextVec, err := e.embedder.Embed(ctx, retrievedContext); err == nil {
				record.ContextRelevance = cosineSimilarity(queryVec, contextVec)
			} else {
				e.logger.Warn().Err(err).Str("session_id", sessionID).Msg("context embedding failed")
			}
		}
	}

	e.mu.Lock()
	e.records = append(e.records, record)
	e.mu.Unlock()

	if payload, err := json.Marshal(record); err == nil {
		if err := e.cache.LPush(ctx, sessionKeyPrefix+sessionID, string(payload)); err != nil {
			e.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to persist metrics record")
		}
	}

	return record
}

// Record appends one point to a named time series.
func (e *Evaluator) Record(ctx context.Context, series string, value float64) {
	now := time.Now().UnixMilli()
	member := fmt.Sprintf("%d:%s", now, strconv.FormatFloat(value, 'f', -1, 64))
	if err := e.cache.ZAdd(ctx, seriesKeyPrefix+series, float64(now), member); err != nil {
		e.logger.Error().Err(err).Str("series", series).Msg("failed to record series point")
	}
}

// SeriesRange returns the points of a named series whose timestamps fall in
// [startMs, endMs], oldest first.
func (e *Evaluator) SeriesRange(ctx context.Context, series string, startMs, endMs int64) ([]models.SeriesPoint, error) {
	members, err := e.cache.ZRangeByScore(ctx, seriesKeyPrefix+series, float64(startMs), float64(endMs))
	if err != nil {
		return nil, err
	}
	points := make([]models.SeriesPoint, 0, len(members))
	for _, m := range members {
		ts, value, ok := parseSeriesMember(m)
		if !ok {
			continue
		}
		points = append(points, models.SeriesPoint{Timestamp: ts, Value: value})
	}
	return points, nil
}

// Aggregate summarises every record evaluated since the process started.
// Records whose relevance could not be scored contribute to counts and
// latency but are excluded from the relevance average.
func (e *Evaluator) Aggregate() models.SessionSummary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return summarise(e.records)
}

// SessionMetrics reads back a session's persisted records, newest first, and
// a summary over them.
func (e *Evaluator) SessionMetrics(ctx context.Context, sessionID string) ([]models.MetricsRecord, models.SessionSummary, error) {
	raw, err := e.cache.LRange(ctx, sessionKeyPrefix+sessionID, 0, -1)
	if err != nil {
		return nil, models.SessionSummary{}, err
	}
	records := make([]models.MetricsRecord, 0, len(raw))
	for _, item := range raw {
		var record models.MetricsRecord
		if err := json.Unmarshal([]byte(item), &record); err != nil {
			e.logger.Warn().Err(err).Str("session_id", sessionID).Msg("skipping malformed metrics record")
			continue
		}
		records = append(records, record)
	}
	return records, summarise(records), nil
}

func summarise(records []models.MetricsRecord) models.SessionSummary {
	summary := models.SessionSummary{TotalInteractions: len(records)}
	if len(records) == 0 {
		return summary
	}

	var latencySum float64
	var relevanceSum float64
	var relevanceCount int
	minTs, maxTs := records[0].Timestamp, records[0].Timestamp
	for _, r := range records {
		latencySum += r.LatencySeconds
		if r.QueryResponseRelevance != nil {
			relevanceSum += *r.QueryResponseRelevance
			relevanceCount++
		}
		if r.Timestamp < minTs {
			minTs = r.Timestamp
		}
		if r.Timestamp > maxTs {
			maxTs = r.Timestamp
		}
	}

	summary.AvgLatency = latencySum / float64(len(records))
	if relevanceCount > 0 {
		avg := relevanceSum / float64(relevanceCount)
		summary.AvgRelevanceScore = &avg
	}
	summary.StartTime = minTs
	summary.EndTime = maxTs
	return summary
}

// cosineSimilarity returns the cosine of the angle between two embeddings,
// or nil when it is undefined (mismatched lengths or a zero vector).
func cosineSimilarity(a, b []float32) *float64 {
	if len(a) == 0 || len(a) != len(b) {
		return nil
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return nil
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return &sim
}

func parseSeriesMember(member string) (int64, float64, bool) {
	parts := strings.SplitN(member, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	ts, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	value, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, false
	}
	return ts, value, true
}
