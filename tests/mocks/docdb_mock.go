package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/vahan-ai/chat-gateway/internal/domain/models"
)

// MockUsersCollection is a mock implementation of docdb.UsersCollection.
type MockUsersCollection struct {
	mock.Mock
}

// Insert stores a new user.
func (m *MockUsersCollection) Insert(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// FindByEmail returns the user with the given email.
func (m *MockUsersCollection) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// FindByID returns the user with the given ID.
func (m *MockUsersCollection) FindByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockDocumentsCollection is a mock implementation of docdb.DocumentsCollection.
type MockDocumentsCollection struct {
	mock.Mock
}

// Insert stores metadata for an ingested document.
func (m *MockDocumentsCollection) Insert(ctx context.Context, record *models.FileRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// ListBySubject returns file records owned by the subject.
func (m *MockDocumentsCollection) ListBySubject(ctx context.Context, subjectID string) ([]*models.FileRecord, error) {
	args := m.Called(ctx, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.FileRecord), args.Error(1)
}
