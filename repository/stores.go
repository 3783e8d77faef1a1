package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Mishael-Joe/soraxi/models"
)

var ErrStoreNotFound = errors.New("store not found")

type StoreRepository struct {
	collection *mongo.Collection
}

func NewStoreRepository(db *mongo.Database) *StoreRepository {
	return &StoreRepository{collection: db.Collection("stores")}
}

func (r *StoreRepository) Insert(ctx context.Context, store *models.Store) (primitive.ObjectID, error) {
	now := time.Now()
	store.CreatedAt = now
	store.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, store)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to insert store: %w", err)
	}
	return result.InsertedID.(primitive.ObjectID), nil
}

func (r *StoreRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Store, error) {
	var store models.Store
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&store)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrStoreNotFound
		}
		return nil, fmt.Errorf("failed to find store: %w", err)
	}
	return &store, nil
}

func (r *StoreRepository) FindByOwner(ctx context.Context, ownerID primitive.ObjectID) (*models.Store, error) {
	var store models.Store
	err := r.collection.FindOne(ctx, bson.M{"owner_id": ownerID}).Decode(&store)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrStoreNotFound
		}
		return nil, fmt.Errorf("failed to find store: %w", err)
	}
	return &store, nil
}

// ActiveStoreIDs returns the ids of stores allowed on the storefront.
func (r *StoreRepository) ActiveStoreIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	cursor, err := r.collection.Find(ctx,
		bson.M{"status": models.StoreStatusActive},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to list active stores: %w", err)
	}
	defer cursor.Close(ctx)

	var ids []primitive.ObjectID
	for cursor.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode store id: %w", err)
		}
		ids = append(ids, doc.ID)
	}
	return ids, cursor.Err()
}

func (r *StoreRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.StoreStatus) error {
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update store status: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrStoreNotFound
	}
	return nil
}

func (r *StoreRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "store_email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create store indexes: %w", err)
	}
	return nil
}
