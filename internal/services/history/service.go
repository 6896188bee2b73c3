// Package history persists per-session conversation transcripts in the cache.
package history

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vahan-ai/chat-gateway/internal/core/cache"
)

// Transcript lines carry a speaker prefix so the prompt builder and the
// retrieval contexts can tell the sides apart.
const (
	userLinePrefix  = "User: "
	replyLinePrefix = "Chatbot: "
)

// Service appends and reads session transcripts. Lines are stored oldest
// first under chat_history:{subject}:{session}.
type Service struct {
	cache  cache.Cache
	window int
	logger zerolog.Logger
}

// NewService creates a history service. window is how many of the most recent
// lines Recent returns.
func NewService(c cache.Cache, window int, logger zerolog.Logger) *Service {
	if window <= 0 {
		window = 10
	}
	return &Service{
		cache:  c,
		window: window,
		logger: logger.With().Str("service", "history").Logger(),
	}
}

func transcriptKey(subjectID, sessionID string) string {
	return fmt.Sprintf("chat_history:%s:%s", subjectID, sessionID)
}

// AppendUserLine appends the user's message to the transcript.
func (s *Service) AppendUserLine(ctx context.Context, subjectID, sessionID, text string) error {
	return s.cache.RPush(ctx, transcriptKey(subjectID, sessionID), userLinePrefix+text)
}

// AppendReplyLine appends the assistant's reply to the transcript.
func (s *Service) AppendReplyLine(ctx context.Context, subjectID, sessionID, reply string) error {
	return s.cache.RPush(ctx, transcriptKey(subjectID, sessionID), replyLinePrefix+reply)
}

// Recent returns the newest lines of the transcript, oldest first, capped at
// the configured window.
func (s *Service) Recent(ctx context.Context, subjectID, sessionID string) ([]string, error) {
	return s.cache.LRange(ctx, transcriptKey(subjectID, sessionID), int64(-s.window), -1)
}

// All returns the full transcript, oldest first.
func (s *Service) All(ctx context.Context, subjectID, sessionID string) ([]string, error) {
	return s.cache.LRange(ctx, transcriptKey(subjectID, sessionID), 0, -1)
}

// Len returns the current transcript length.
func (s *Service) Len(ctx context.Context, subjectID, sessionID string) (int64, error) {
	return s.cache.LLen(ctx, transcriptKey(subjectID, sessionID))
}
