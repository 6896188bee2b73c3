package knowledge_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vahan-ai/chat-gateway/internal/core/vector"
	domainerrors "github.com/vahan-ai/chat-gateway/internal/domain/errors"
	"github.com/vahan-ai/chat-gateway/internal/domain/models"
	"github.com/vahan-ai/chat-gateway/internal/services/knowledge"
	"github.com/vahan-ai/chat-gateway/tests/mocks"
)

func setup(t *testing.T) (*knowledge.Service, *mocks.MockEmbedder, *mocks.MockVectorStore, *mocks.MockDocumentsCollection) {
	t.Helper()

	embedder := &mocks.MockEmbedder{}
	store := &mocks.MockVectorStore{}
	documents := &mocks.MockDocumentsCollection{}
	svc := knowledge.NewService(embedder, store, documents, zerolog.Nop())
	return svc, embedder, store, documents
}

func TestIngest_ShortDocumentSingleChunk(t *testing.T) {
	svc, embedder, store, documents := setup(t)

	content := "Refunds are accepted within thirty days of purchase."
	embedder.On("Embed", mock.Anything, content).Return([]float32{0.1, 0.2}, nil)
	store.On("Upsert", mock.Anything, vector.ClassDocument, mock.MatchedBy(func(objects []vector.Object) bool {
		return len(objects) == 1 &&
			objects[0].Text == content &&
			objects[0].Tags[vector.TagSubjectID] == "user-1" &&
			objects[0].ID != ""
	})).Return(nil)
	documents.On("Insert", mock.Anything, mock.AnythingOfType("*models.FileRecord")).Return(nil)

	record, err := svc.Ingest(context.Background(), "user-1", "policy.txt", content)

	require.NoError(t, err)
	assert.Equal(t, "policy.txt", record.Filename)
	assert.Equal(t, "user-1", record.SubjectID)
	assert.Equal(t, 1, record.ChunkCount)
	assert.Equal(t, int64(len(content)), record.SizeBytes)
	store.AssertExpectations(t)
	documents.AssertExpectations(t)
}

func TestIngest_LongDocumentSplitsIntoChunks(t *testing.T) {
	svc, embedder, store, documents := setup(t)

	// Well over the chunk size, with paragraph breaks the splitter can use.
	content := "The first paragraph covers the return policy in detail and is quite long on its own.\n\n" +
		"The second paragraph covers shipping times, carriers, and tracking information for orders.\n\n" +
		"The third paragraph explains the warranty process and how to file a claim with support."

	embedder.On("Embed", mock.Anything, mock.AnythingOfType("string")).Return([]float32{0.3}, nil)

	var chunkCount int
	store.On("Upsert", mock.Anything, vector.ClassDocument, mock.Anything).
		Run(func(args mock.Arguments) {
			objects := args.Get(2).([]vector.Object)
			chunkCount = len(objects)
			for _, obj := range objects {
				assert.Equal(t, "user-1", obj.Tags[vector.TagSubjectID])
			}
		}).
		Return(nil)
	documents.On("Insert", mock.Anything, mock.Anything).Return(nil)

	record, err := svc.Ingest(context.Background(), "user-1", "guide.txt", content)

	require.NoError(t, err)
	assert.Equal(t, chunkCount, record.ChunkCount)
	assert.Greater(t, record.ChunkCount, 1)
}

func TestIngest_DeterministicChunkIDs(t *testing.T) {
	svc, embedder, store, documents := setup(t)

	content := "Stable content produces stable identifiers."
	embedder.On("Embed", mock.Anything, content).Return([]float32{0.1}, nil)

	var ids []string
	store.On("Upsert", mock.Anything, vector.ClassDocument, mock.Anything).
		Run(func(args mock.Arguments) {
			objects := args.Get(2).([]vector.Object)
			ids = append(ids, objects[0].ID)
		}).
		Return(nil)
	documents.On("Insert", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Ingest(context.Background(), "user-1", "notes.txt", content)
	require.NoError(t, err)
	_, err = svc.Ingest(context.Background(), "user-1", "notes.txt", content)
	require.NoError(t, err)

	require.Len(t, ids, 2)
	assert.Equal(t, ids[0], ids[1])
}

func TestIngest_EmptyContentRejected(t *testing.T) {
	svc, _, store, _ := setup(t)

	_, err := svc.Ingest(context.Background(), "user-1", "empty.txt", "   \n  ")

	require.Error(t, err)
	domainErr, ok := domainerrors.GetDomainError(err)
	require.True(t, ok)
	assert.Equal(t, domainerrors.ErrCodeValidation, domainErr.Code)
	store.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
}

func TestIngest_EmbedFailureAborts(t *testing.T) {
	svc, embedder, store, _ := setup(t)

	embedder.On("Embed", mock.Anything, mock.Anything).Return(nil, errors.New("embedder down"))

	_, err := svc.Ingest(context.Background(), "user-1", "doc.txt", "Some perfectly fine content.")

	require.Error(t, err)
	store.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
}

func TestList_PassesThrough(t *testing.T) {
	svc, _, _, documents := setup(t)

	expected := []*models.FileRecord{{ID: "rec-1", Filename: "a.txt"}}
	documents.On("ListBySubject", mock.Anything, "user-1").Return(expected, nil)

	records, err := svc.List(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, expected, records)
}
