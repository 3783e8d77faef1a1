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
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ProductKey identifies a product together with the collection it lives in.
type ProductKey struct {
	ID   primitive.ObjectID
	Type models.ProductType
}

// ProductRepository reads and writes products across the physical and digital
// collections.
type ProductRepository struct {
	physical *mongo.Collection
	digital  *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{
		physical: db.Collection(models.ProductTypePhysical.Collection()),
		digital:  db.Collection(models.ProductTypeDigital.Collection()),
	}
}

func (r *ProductRepository) collection(t models.ProductType) *mongo.Collection {
	if t == models.ProductTypeDigital {
		return r.digital
	}
	return r.physical
}

// FindByID looks the product up in both collections; ids never collide
// between them.
func (r *ProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	for _, coll := range []*mongo.Collection{r.physical, r.digital} {
		var product models.Product
		err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
		if err == nil {
			return &product, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("failed to find product: %w", err)
		}
	}
	return nil, ErrProductNotFound
}

func (r *ProductRepository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	for _, coll := range []*mongo.Collection{r.physical, r.digital} {
		var product models.Product
		err := coll.FindOne(ctx, bson.M{"slug": slug}).Decode(&product)
		if err == nil {
			return &product, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("failed to find product: %w", err)
		}
	}
	return nil, ErrProductNotFound
}

// FindManyByKeys fetches a batch of products in one query per collection. The
// result omits keys that matched nothing; callers decide whether a missing
// product is an error or a skip.
func (r *ProductRepository) FindManyByKeys(ctx context.Context, keys []ProductKey) (map[primitive.ObjectID]*models.Product, error) {
	var physicalIDs, digitalIDs []primitive.ObjectID
	for _, key := range keys {
		if key.Type == models.ProductTypeDigital {
			digitalIDs = append(digitalIDs, key.ID)
		} else {
			physicalIDs = append(physicalIDs, key.ID)
		}
	}

	found := make(map[primitive.ObjectID]*models.Product, len(keys))
	fetch := func(coll *mongo.Collection, ids []primitive.ObjectID) error {
		if len(ids) == 0 {
			return nil
		}
		cursor, err := coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
		if err != nil {
			return fmt.Errorf("failed to find products: %w", err)
		}
		defer cursor.Close(ctx)
		for cursor.Next(ctx) {
			var product models.Product
			if err := cursor.Decode(&product); err != nil {
				return fmt.Errorf("failed to decode product: %w", err)
			}
			found[product.ID] = &product
		}
		return cursor.Err()
	}

	if err := fetch(r.physical, physicalIDs); err != nil {
		return nil, err
	}
	if err := fetch(r.digital, digitalIDs); err != nil {
		return nil, err
	}
	return found, nil
}

// ListFilter narrows the catalog listing. Zero values mean no filtering.
type ListFilter struct {
	StoreIDs []primitive.ObjectID
	Category string
	Type     models.ProductType
}

// List returns catalog products, newest first.
func (r *ProductRepository) List(ctx context.Context, filter ListFilter) ([]models.Product, error) {
	query := bson.M{}
	if len(filter.StoreIDs) > 0 {
		query["store_id"] = bson.M{"$in": filter.StoreIDs}
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}

	colls := []*mongo.Collection{r.physical, r.digital}
	if filter.Type != "" {
		colls = []*mongo.Collection{r.collection(filter.Type)}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var products []models.Product
	for _, coll := range colls {
		cursor, err := coll.Find(ctx, query, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list products: %w", err)
		}
		for cursor.Next(ctx) {
			var product models.Product
			if err := cursor.Decode(&product); err != nil {
				cursor.Close(ctx)
				return nil, fmt.Errorf("failed to decode product: %w", err)
			}
			products = append(products, product)
		}
		if err := cursor.Err(); err != nil {
			cursor.Close(ctx)
			return nil, err
		}
		cursor.Close(ctx)
	}
	return products, nil
}

func (r *ProductRepository) Insert(ctx context.Context, product *models.Product) (primitive.ObjectID, error) {
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	result, err := r.collection(product.ProductType).InsertOne(ctx, product)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to insert product: %w", err)
	}
	return result.InsertedID.(primitive.ObjectID), nil
}

// Update replaces the mutable fields of a store's product. The store id in
// the filter keeps owners inside their own catalog.
func (r *ProductRepository) Update(ctx context.Context, storeID primitive.ObjectID, product *models.Product) error {
	result, err := r.collection(product.ProductType).UpdateOne(ctx,
		bson.M{"_id": product.ID, "store_id": storeID}, bson.M{"$set": productUpdate(product)})
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}

// productUpdate builds the $set document for Update. The slug and the stock
// flag are only written when present: updates normally leave the slug alone,
// and an absent flag must not erase a stored one.
func productUpdate(product *models.Product) bson.M {
	set := bson.M{
		"name":         product.Name,
		"description":  product.Description,
		"images":       product.Images,
		"price":        product.Price,
		"category":     product.Category,
		"stock":        product.Stock,
		"max_quantity": product.MaxQuantity,
		"sizes":        product.Sizes,
		"updated_at":   time.Now(),
	}
	if product.InStock != nil {
		set["in_stock"] = product.InStock
	}
	if product.Slug != "" {
		set["slug"] = product.Slug
	}
	return set
}

func (r *ProductRepository) Delete(ctx context.Context, storeID, id primitive.ObjectID, t models.ProductType) error {
	result, err := r.collection(t).DeleteOne(ctx, bson.M{"_id": id, "store_id": storeID})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}

// DecrementStock reserves stock for a purchase. The filter refuses to go
// negative, so a concurrent checkout of the last unit loses cleanly.
func (r *ProductRepository) DecrementStock(ctx context.Context, key ProductKey, quantity int) error {
	filter := bson.M{"_id": key.ID, "stock": bson.M{"$gte": quantity}}
	update := bson.M{"$inc": bson.M{"stock": -quantity}}

	result, err := r.collection(key.Type).UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// Restock returns previously reserved stock, used when an order fails after
// its decrements already went through.
func (r *ProductRepository) Restock(ctx context.Context, key ProductKey, quantity int) error {
	update := bson.M{"$inc": bson.M{"stock": quantity}}

	_, err := r.collection(key.Type).UpdateOne(ctx, bson.M{"_id": key.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to restock product: %w", err)
	}
	return nil
}

func (r *ProductRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "store_id", Value: 1}},
		},
	}

	for _, coll := range []*mongo.Collection{r.physical, r.digital} {
		if _, err := coll.Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("failed to create product indexes: %w", err)
		}
	}
	return nil
}
