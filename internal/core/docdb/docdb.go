// Package docdb defines the document database interface.
package docdb

import (
	"context"

	"github.com/vahan-ai/chat-gateway/internal/domain/models"
)

// UsersCollection defines the operations on the user account collection.
type UsersCollection interface {
	// Insert stores a new user. Returns a conflict error when the email is
	// already registered.
	Insert(ctx context.Context, user *models.User) error

	// FindByEmail returns the user with the given email, or nil if absent.
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByID returns the user with the given ID, or nil if absent.
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// DocumentsCollection defines the operations on uploaded-file metadata.
type DocumentsCollection interface {
	// Insert stores metadata for an ingested document.
	Insert(ctx context.Context, record *models.FileRecord) error

	// ListBySubject returns all file records owned by the subject, newest first.
	ListBySubject(ctx context.Context, subjectID string) ([]*models.FileRecord, error)
}

// Client is the top-level document database handle.
type Client interface {
	// Users returns the user account collection.
	Users() UsersCollection

	// Documents returns the uploaded-file metadata collection.
	Documents() DocumentsCollection

	// EnsureIndexes creates the indexes the collections rely on.
	EnsureIndexes(ctx context.Context) error

	// Ping checks if the database connection is alive.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close(ctx context.Context) error
}
