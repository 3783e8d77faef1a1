package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository owns the storage concerns of the users collection. Reads and
// writes go through the user controller; the indexes live here with the other
// collections'.
type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{collection: db.Collection("users")}
}

// CreateIndexes creates the users indexes. The unique email index is what
// actually enforces one account per email; the pre-check at registration only
// shapes the error message.
func (r *UserRepository) CreateIndexes(ctx context.Context) error {
	if _, err := r.collection.Indexes().CreateMany(ctx, userIndexModels()); err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	return nil
}

func userIndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
}
