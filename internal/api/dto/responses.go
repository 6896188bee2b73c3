package dto

import "github.com/vahan-ai/chat-gateway/internal/domain/models"

// TokenResponse carries a freshly issued credential and the subject it was
// issued to.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      string `json:"user_id"`
}

// SignupResponse confirms a registration.
type SignupResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// SessionResponse carries a freshly minted session identifier.
type SessionResponse struct {
	SessionID string `json:"session_id"`
}

// UploadDocumentResponse reports an ingested document.
type UploadDocumentResponse struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	ChunkCount int    `json:"chunk_count"`
}

// DocumentListResponse lists a user's uploads.
type DocumentListResponse struct {
	Documents []*models.FileRecord `json:"documents"`
}

// MetricsSummaryResponse reports aggregate quality metrics together with a
// recent latency series.
type MetricsSummaryResponse struct {
	Summary models.SessionSummary `json:"summary"`
	Latency []models.SeriesPoint  `json:"latency_over_time"`
}

// SessionMetricsResponse reports one session's recorded turns, newest first.
type SessionMetricsResponse struct {
	SessionID string                 `json:"session_id"`
	Summary   models.SessionSummary  `json:"summary"`
	Records   []models.MetricsRecord `json:"records"`
}

// SeriesResponse reports the points of one named time series.
type SeriesResponse struct {
	Series string               `json:"series"`
	Points []models.SeriesPoint `json:"points"`
}
