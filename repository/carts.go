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

var (
	ErrCartNotFound = errors.New("cart not found")
	ErrItemNotFound = errors.New("item not found in cart")
)

type CartRepository struct {
	collection *mongo.Collection
}

func NewCartRepository(db *mongo.Database) *CartRepository {
	return &CartRepository{collection: db.Collection("carts")}
}

func (r *CartRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	var cart models.Cart
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return &cart, nil
}

// AddItem merges the item into the user's cart, creating the cart on first
// use. Items with the same identity (product, type, store, size) merge into
// one line with a summed quantity.
func (r *CartRepository) AddItem(ctx context.Context, userID primitive.ObjectID, item models.CartItem) (*models.Cart, error) {
	now := time.Now()
	item.AddedAt = now

	cart, err := r.GetByUserID(ctx, userID)
	if errors.Is(err, ErrCartNotFound) {
		cart = &models.Cart{
			UserID:    userID,
			Items:     []models.CartItem{item},
			CreatedAt: now,
			UpdatedAt: now,
		}
		result, errInsert := r.collection.InsertOne(ctx, cart)
		if errInsert != nil {
			return nil, fmt.Errorf("failed to create cart: %w", errInsert)
		}
		cart.ID = result.InsertedID.(primitive.ObjectID)
		return cart, nil
	}
	if err != nil {
		return nil, err
	}

	cart.AddItem(item)
	cart.UpdatedAt = now

	update := bson.M{"$set": bson.M{"items": cart.Items, "updated_at": now}}
	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": cart.ID}, update); err != nil {
		return nil, fmt.Errorf("failed to update cart: %w", err)
	}
	return cart, nil
}

// SetQuantity replaces the quantity of the item matching the identity. A
// cart that no longer holds the line reports ErrItemNotFound instead of
// absorbing the write.
func (r *CartRepository) SetQuantity(ctx context.Context, userID primitive.ObjectID, item models.CartItem, quantity int) error {
	update := bson.M{"$set": bson.M{
		"items.$[elem].quantity": quantity,
		"updated_at":             time.Now(),
	}}
	arrayFilters := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{identityArrayFilter(item)},
	})

	result, err := r.collection.UpdateOne(ctx, cartLineFilter(userID, item), update, arrayFilters)
	if err != nil {
		return fmt.Errorf("failed to update item quantity: %w", err)
	}
	if result.MatchedCount == 0 {
		// Distinguish the vanished cart from the vanished line
		if _, err := r.GetByUserID(ctx, userID); err != nil {
			return err
		}
		return ErrItemNotFound
	}
	return nil
}

// RemoveItem pulls the item matching the identity out of the cart. Removing
// a line that is already gone succeeds; only a missing cart is an error.
func (r *CartRepository) RemoveItem(ctx context.Context, userID primitive.ObjectID, item models.CartItem) error {
	update := bson.M{
		"$pull": bson.M{"items": identityMatch(item)},
		"$set":  bson.M{"updated_at": time.Now()},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"user_id": userID}, update)
	if err != nil {
		return fmt.Errorf("failed to remove item: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrCartNotFound
	}
	return nil
}

// Clear drops the whole cart, as checkout does once the order is placed.
func (r *CartRepository) Clear(ctx context.Context, userID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrCartNotFound
	}
	return nil
}

func (r *CartRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create cart indexes: %w", err)
	}
	return nil
}

// cartLineFilter matches the user's cart only while it holds a line with the
// item's identity. Updates that target a line must filter with this, not just
// the user id: the unconditional updated_at write would otherwise count as a
// modification and mask the missing line.
func cartLineFilter(userID primitive.ObjectID, item models.CartItem) bson.M {
	return bson.M{
		"user_id": userID,
		"items":   bson.M{"$elemMatch": identityMatch(item)},
	}
}

// identityArrayFilter matches one cart line by its merge identity inside an
// arrayFilters clause.
func identityArrayFilter(item models.CartItem) bson.M {
	filter := bson.M{
		"elem.product_id":   item.ProductID,
		"elem.product_type": item.ProductType,
		"elem.store_id":     item.StoreID,
	}
	if item.SelectedSize != nil {
		filter["elem.selected_size.size"] = item.SelectedSize.Size
	} else {
		filter["elem.selected_size"] = bson.M{"$exists": false}
	}
	return filter
}

// identityMatch is the same identity match in the element form $pull and
// $elemMatch take.
func identityMatch(item models.CartItem) bson.M {
	filter := bson.M{
		"product_id":   item.ProductID,
		"product_type": item.ProductType,
		"store_id":     item.StoreID,
	}
	if item.SelectedSize != nil {
		filter["selected_size.size"] = item.SelectedSize.Size
	} else {
		filter["selected_size"] = bson.M{"$exists": false}
	}
	return filter
}
