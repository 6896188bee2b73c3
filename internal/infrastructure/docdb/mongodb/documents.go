// Package mongodb provides the documents collection implementation.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vahan-ai/chat-gateway/internal/domain/models"
)

const (
	// DocumentsCollectionName is the name of the file metadata collection.
	DocumentsCollectionName = "documents"
)

// DocumentsCollection implements docdb.DocumentsCollection for MongoDB.
type DocumentsCollection struct {
	documents *mongo.Collection
}

// NewDocumentsCollection creates a new documents collection wrapper.
func NewDocumentsCollection(db *mongo.Database) *DocumentsCollection {
	return &DocumentsCollection{
		documents: db.Collection(DocumentsCollectionName),
	}
}

// Insert stores metadata for an ingested document.
func (c *DocumentsCollection) Insert(ctx context.Context, record *models.FileRecord) error {
	if record.ID == "" {
		return fmt.Errorf("file record ID is required")
	}

	_, err := c.documents.InsertOne(ctx, record)
	if err != nil {
		return fmt.Errorf("failed to insert file record: %w", err)
	}

	return nil
}

// ListBySubject returns all file records owned by the subject, newest first.
func (c *DocumentsCollection) ListBySubject(ctx context.Context, subjectID string) ([]*models.FileRecord, error) {
	opts := options.Find().SetSort(bson.M{"uploadDate": -1})
	cursor, err := c.documents.Find(ctx, bson.M{"subjectId": subjectID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list file records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*models.FileRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode file records: %w", err)
	}
	return records, nil
}

// EnsureIndexes creates the subject index.
func (c *DocumentsCollection) EnsureIndexes(ctx context.Context) error {
	_, err := c.documents.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "subjectId", Value: 1}, {Key: "uploadDate", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create documents subject index: %w", err)
	}
	return nil
}
