// Package chat runs the full request-to-reply pipeline for one chat turn.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vahan-ai/chat-gateway/internal/core/llm"
	"github.com/vahan-ai/chat-gateway/internal/core/vector"
	"github.com/vahan-ai/chat-gateway/internal/services/assembler"
	"github.com/vahan-ai/chat-gateway/internal/services/history"
	"github.com/vahan-ai/chat-gateway/internal/services/metrics"
)

// FallbackReply is sent when generation fails. The user always gets exactly
// one reply per message.
const FallbackReply = "I apologize, but I encountered an error processing your request. Please try again."

// memoryNamespace seeds deterministic IDs for persisted chat exchanges, so a
// retried persist overwrites rather than duplicates.
var memoryNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// Orchestrator executes chat turns: assemble context, generate, evaluate,
// and persist the exchange.
type Orchestrator struct {
	assembler *assembler.Service
	generator llm.Generator
	embedder  llm.Embedder
	store     vector.Store
	history   *history.Service
	metrics   *metrics.Evaluator
	logger    zerolog.Logger
}

// NewOrchestrator creates a chat orchestrator.
func NewOrchestrator(
	asm *assembler.Service,
	generator llm.Generator,
	embedder llm.Embedder,
	store vector.Store,
	hist *history.Service,
	eval *metrics.Evaluator,
	logger zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		assembler: asm,
		generator: generator,
		embedder:  embedder,
		store:     store,
		history:   hist,
		metrics:   eval,
		logger:    logger.With().Str("service", "chat").Logger(),
	}
}

// HandleTurn processes one user message and returns the reply. Generation is
// attempted exactly once; on failure the fallback reply is returned. Every
// step after generation is independent: a failed persist or measurement is
// logged and never surfaces to the user.
func (o *Orchestrator) HandleTurn(ctx context.Context, subjectID, sessionID, message string) string {
	started := o.metrics.StartTimer()

	bundle := o.assembler.Assemble(ctx, subjectID, sessionID, message)
	prompt := buildPrompt(bundle, message)

	reply, err := o.generator.Generate(ctx, prompt)
	if err != nil {
		o.logger.Error().Err(err).Str("session_id", sessionID).Msg("generation failed")
		reply = FallbackReply
	}

	record := o.metrics.EvaluateResponse(ctx, sessionID, message, reply, bundle.HistoryContext, started)
	o.metrics.Record(ctx, metrics.SeriesLatency, record.LatencySeconds)
	if record.QueryResponseRelevance != nil {
		o.metrics.Record(ctx, metrics.SeriesQueryRelevance, *record.QueryResponseRelevance)
	}
	if record.ContextRelevance != nil {
		o.metrics.Record(ctx, metrics.SeriesContextRelevance, *record.ContextRelevance)
	}

	if err := o.history.AppendUserLine(ctx, subjectID, sessionID, message); err != nil {
		o.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to append user line")
	}
	if err := o.history.AppendReplyLine(ctx, subjectID, sessionID, reply); err != nil {
		o.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to append reply line")
	}

	o.persistExchange(ctx, sessionID, message, reply)

	return reply
}

// persistExchange embeds the finished exchange and upserts it as session
// memory for future retrieval.
func (o *Orchestrator) persistExchange(ctx context.Context, sessionID, message, reply string) {
	exchange := fmt.Sprintf("User: %s\nChatbot: %s", message, reply)
	vec, err := o.embedder.Embed(ctx, exchange)
	if err != nil {
		o.logger.Error().Err(err).Str("session_id", sessionID).Msg("exchange embedding failed")
		return
	}

	obj := vector.Object{
		ID:     uuid.NewSHA1(memoryNamespace, []byte(sessionID+"\x00"+exchange)).String(),
		Vector: vec,
		Text:   exchange,
		Tags:   map[string]string{vector.TagSessionID: sessionID},
	}
	if err := o.store.Upsert(ctx, vector.ClassChatMemory, []vector.Object{obj}); err != nil {
		o.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to persist chat memory")
	}
}

// buildPrompt lays the turn out for the model: document context carries the
// highest priority, then retrieved and recent conversation history, then the
// query itself.
func buildPrompt(bundle *assembler.Bundle, message string) string {
	var b strings.Builder
	b.WriteString("Use the following context to answer the question. ")
	b.WriteString("Prioritize the document context over conversation history when they conflict.\n\n")
	b.WriteString("Document context:\n")
	b.WriteString(bundle.DocContext)
	b.WriteString("\n\nRelevant conversation history:\n")
	b.WriteString(bundle.HistoryContext)
	b.WriteString("\n\nRecent conversation:\n")
	b.WriteString(bundle.RecentHistory)
	b.WriteString("\n\nCurrent query: ")
	b.WriteString(message)
	return b.String()
}
