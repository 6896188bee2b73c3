// Package knowledge ingests uploaded documents into the vector store so chat
// turns can retrieve them.
package knowledge

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/textsplitter"

	"github.com/vahan-ai/chat-gateway/internal/core/docdb"
	"github.com/vahan-ai/chat-gateway/internal/core/llm"
	"github.com/vahan-ai/chat-gateway/internal/core/vector"
	"github.com/vahan-ai/chat-gateway/internal/domain/errors"
	"github.com/vahan-ai/chat-gateway/internal/domain/models"
)

// Chunking parameters for uploaded documents.
const (
	chunkSize    = 100
	chunkOverlap = 20
)

// documentNamespace seeds deterministic chunk IDs so re-uploading the same
// file overwrites its chunks instead of duplicating them.
var documentNamespace = uuid.MustParse("6ba7b811-9dad-11d1-80b4-00c04fd430c8")

// Service splits, embeds, and stores uploaded documents.
type Service struct {
	embedder  llm.Embedder
	store     vector.Store
	documents docdb.DocumentsCollection
	splitter  textsplitter.TextSplitter
	logger    zerolog.Logger
}

// NewService creates a knowledge service.
func NewService(embedder llm.Embedder, store vector.Store, documents docdb.DocumentsCollection, logger zerolog.Logger) *Service {
	return &Service{
		embedder:  embedder,
		store:     store,
		documents: documents,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
		),
		logger: logger.With().Str("service", "knowledge").Logger(),
	}
}

// Ingest splits the content into overlapping chunks, embeds each, stores
// them tagged with the owning subject, and records the upload. It returns
// the number of chunks stored.
func (s *Service) Ingest(ctx context.Context, subjectID, filename, content string) (*models.FileRecord, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errors.NewValidationError("document is empty", filename)
	}

	chunks, err := s.splitter.SplitText(content)
	if err != nil {
		return nil, errors.NewInternalError("failed to split document", err)
	}

	objects := make([]vector.Object, 0, len(chunks))
	for _, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		vec, err := s.embedder.Embed(ctx, chunk)
		if err != nil {
			return nil, errors.NewInternalError("failed to embed document chunk", err)
		}
		objects = append(objects, vector.Object{
			ID:     uuid.NewSHA1(documentNamespace, []byte(subjectID+"\x00"+filename+"\x00"+chunk)).String(),
			Vector: vec,
			Text:   chunk,
			Tags:   map[string]string{vector.TagSubjectID: subjectID},
		})
	}
	if len(objects) == 0 {
		return nil, errors.NewValidationError("document has no usable content", filename)
	}

	if err := s.store.Upsert(ctx, vector.ClassDocument, objects); err != nil {
		return nil, errors.NewInternalError("failed to store document chunks", err)
	}

	record := models.NewFileRecord(subjectID, filename, int64(len(content)), len(objects))
	if err := s.documents.Insert(ctx, record); err != nil {
		// The chunks are already searchable; losing the catalog entry is
		// worth surfacing but not rolling back.
		s.logger.Error().Err(err).Str("filename", filename).Msg("failed to record upload")
		return nil, errors.NewInternalError("failed to record upload", err)
	}

	s.logger.Info().
		Str("user_id", subjectID).
		Str("filename", filename).
		Int("chunks", len(objects)).
		Msg("document ingested")
	return record, nil
}

// List returns the subject's uploads, newest first.
func (s *Service) List(ctx context.Context, subjectID string) ([]*models.FileRecord, error) {
	return s.documents.ListBySubject(ctx, subjectID)
}
