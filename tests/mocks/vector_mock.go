package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/vahan-ai/chat-gateway/internal/core/vector"
)

// MockVectorStore is a mock implementation of vector.Store.
type MockVectorStore struct {
	mock.Mock
}

// Query runs a similarity search.
func (m *MockVectorStore) Query(ctx context.Context, class string, vec []float32, field, value string, topK int) ([]vector.Match, error) {
	args := m.Called(ctx, class, vec, field, value, topK)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]vector.Match), args.Error(1)
}

// Upsert stores objects.
func (m *MockVectorStore) Upsert(ctx context.Context, class string, objects []vector.Object) error {
	args := m.Called(ctx, class, objects)
	return args.Error(0)
}

// Ping checks the store connection.
func (m *MockVectorStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
