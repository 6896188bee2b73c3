// Package assembler gathers the retrieval contexts a chat turn is answered
// against.
package assembler

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vahan-ai/chat-gateway/internal/core/llm"
	"github.com/vahan-ai/chat-gateway/internal/core/vector"
	"github.com/vahan-ai/chat-gateway/internal/services/history"
)

// Placeholder texts stand in for a retrieval context when the lookup comes
// back empty or fails. The prompt always carries some text for every slot.
const (
	NoDocuments     = "No relevant documents found."
	DocumentsFailed = "Error retrieving document context."
	NoChatHistory   = "No relevant chat history found."
	ChatHistoryFail = "Error retrieving chat history."
	NoRecentHistory = "No recent history."
	RecentFail      = "Error retrieving recent history."
)

// Bundle is everything assembled for one turn. Vector is the query embedding,
// reused downstream for memory persistence; it is nil when embedding failed.
type Bundle struct {
	DocContext     string
	HistoryContext string
	RecentHistory  string
	Vector         []float32
}

// Service assembles turn context from the vector store and the transcript.
type Service struct {
	embedder    llm.Embedder
	store       vector.Store
	history     *history.Service
	docTopK     int
	historyTopK int
	logger      zerolog.Logger
}

// NewService creates an assembler.
func NewService(embedder llm.Embedder, store vector.Store, hist *history.Service, docTopK, historyTopK int, logger zerolog.Logger) *Service {
	if docTopK <= 0 {
		docTopK = 10
	}
	if historyTopK <= 0 {
		historyTopK = 5
	}
	return &Service{
		embedder:    embedder,
		store:       store,
		history:     hist,
		docTopK:     docTopK,
		historyTopK: historyTopK,
		logger:      logger.With().Str("service", "assembler").Logger(),
	}
}

// Assemble embeds the message once, runs the document and chat-memory
// queries concurrently, and reads the recent transcript. Every failure
// degrades to a placeholder; Assemble itself never fails.
func (s *Service) Assemble(ctx context.Context, subjectID, sessionID, message string) *Bundle {
	bundle := &Bundle{}

	vec, err := s.embedder.Embed(ctx, message)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("query embedding failed")
		bundle.DocContext = DocumentsFailed
		bundle.HistoryContext = ChatHistoryFail
	} else {
		bundle.Vector = vec

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			bundle.DocContext = s.queryContext(gctx, vec, vector.ClassDocument, vector.TagSubjectID, subjectID, s.docTopK, NoDocuments, DocumentsFailed)
			return nil
		})
		g.Go(func() error {
			bundle.HistoryContext = s.queryContext(gctx, vec, vector.ClassChatMemory, vector.TagSessionID, sessionID, s.historyTopK, NoChatHistory, ChatHistoryFail)
			return nil
		})
		_ = g.Wait()
	}

	lines, err := s.history.Recent(ctx, subjectID, sessionID)
	switch {
	case err != nil:
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("recent history read failed")
		bundle.RecentHistory = RecentFail
	case len(lines) == 0:
		bundle.RecentHistory = NoRecentHistory
	default:
		bundle.RecentHistory = strings.Join(lines, "\n")
	}

	return bundle
}

// queryContext runs one similarity query and flattens the matches into a
// single context string.
func (s *Service) queryContext(ctx context.Context, vec []float32, class, field, value string, topK int, empty, failed string) string {
	matches, err := s.store.Query(ctx, class, vec, field, value, topK)
	if err != nil {
		s.logger.Error().Err(err).Str("class", class).Msg("similarity query failed")
		return failed
	}
	if len(matches) == 0 {
		return empty
	}
	texts := make([]string, 0, len(matches))
	for _, m := range matches {
		if m.Text != "" {
			texts = append(texts, m.Text)
		}
	}
	if len(texts) == 0 {
		return empty
	}
	return strings.Join(texts, " ")
}
