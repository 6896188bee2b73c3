// Package mongodb provides the users collection implementation.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vahan-ai/chat-gateway/internal/domain/errors"
	"github.com/vahan-ai/chat-gateway/internal/domain/models"
)

const (
	// UsersCollectionName is the name of the user accounts collection.
	UsersCollectionName = "users"
)

// UsersCollection implements docdb.UsersCollection for MongoDB.
type UsersCollection struct {
	users *mongo.Collection
}

// NewUsersCollection creates a new users collection wrapper.
func NewUsersCollection(db *mongo.Database) *UsersCollection {
	return &UsersCollection{
		users: db.Collection(UsersCollectionName),
	}
}

// Insert stores a new user.
func (c *UsersCollection) Insert(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		return fmt.Errorf("user ID is required")
	}

	_, err := c.users.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.NewConflictError("email already registered", user.Email)
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// FindByEmail returns the user with the given email, or nil if absent.
func (c *UsersCollection) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := c.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return &user, nil
}

// FindByID returns the user with the given ID, or nil if absent.
func (c *UsersCollection) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := c.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by id: %w", err)
	}
	return &user, nil
}

// EnsureIndexes creates the unique email index.
func (c *UsersCollection) EnsureIndexes(ctx context.Context) error {
	_, err := c.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create users email index: %w", err)
	}
	return nil
}
