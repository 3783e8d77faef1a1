package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Mishael-Joe/soraxi/models"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrSubOrderNotFound = errors.New("sub-order not found")
)

// OrderRepository reads and writes orders. Every read returns orders with
// their user, store and product references populated, so the formatting layer
// only ever sees tagged refs.
type OrderRepository struct {
	orders   *mongo.Collection
	users    *mongo.Collection
	stores   *mongo.Collection
	products *ProductRepository
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{
		orders:   db.Collection("orders"),
		users:    db.Collection("users"),
		stores:   db.Collection("stores"),
		products: NewProductRepository(db),
	}
}

func (r *OrderRepository) Insert(ctx context.Context, order *models.Order) (primitive.ObjectID, error) {
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now

	result, err := r.orders.InsertOne(ctx, order)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to insert order: %w", err)
	}
	return result.InsertedID.(primitive.ObjectID), nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := r.orders.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	orders := []models.Order{order}
	if err := r.populate(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *OrderRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return r.find(ctx, bson.M{"user": userID})
}

func (r *OrderRepository) FindByStore(ctx context.Context, storeID primitive.ObjectID) ([]models.Order, error) {
	return r.find(ctx, bson.M{"stores": storeID})
}

func (r *OrderRepository) FindAll(ctx context.Context) ([]models.Order, error) {
	return r.find(ctx, bson.M{})
}

func (r *OrderRepository) find(ctx context.Context, filter bson.M) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.orders.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	for cursor.Next(ctx) {
		var order models.Order
		if err := cursor.Decode(&order); err != nil {
			return nil, fmt.Errorf("failed to decode order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	if err := r.populate(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// populate attaches the referenced user, store and product documents to the
// fetched orders. Each collection is queried once with an $in batch. A
// reference whose document has gone missing stays a bare ref; the formatter
// turns that into a precise error rather than a silent gap.
func (r *OrderRepository) populate(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	userIDs := make(map[primitive.ObjectID]struct{})
	storeIDs := make(map[primitive.ObjectID]struct{})
	productKeys := make(map[primitive.ObjectID]ProductKey)
	for i := range orders {
		userIDs[orders[i].User.ID()] = struct{}{}
		for j := range orders[i].SubOrders {
			sub := &orders[i].SubOrders[j]
			storeIDs[sub.Store.ID()] = struct{}{}
			for k := range sub.Products {
				li := &sub.Products[k]
				productKeys[li.Product.ID()] = ProductKey{ID: li.Product.ID(), Type: li.ProductType}
			}
		}
	}

	users, err := r.findUsers(ctx, lo.Keys(userIDs))
	if err != nil {
		return err
	}
	stores, err := r.findStores(ctx, lo.Keys(storeIDs))
	if err != nil {
		return err
	}
	products, err := r.products.FindManyByKeys(ctx, lo.Values(productKeys))
	if err != nil {
		return err
	}

	for i := range orders {
		order := &orders[i]
		if user, ok := users[order.User.ID()]; ok {
			order.User = models.PopulatedRef(order.User.ID(), user)
		}
		for j := range order.SubOrders {
			sub := &order.SubOrders[j]
			if store, ok := stores[sub.Store.ID()]; ok {
				sub.Store = models.PopulatedRef(sub.Store.ID(), store)
			}
			for k := range sub.Products {
				li := &sub.Products[k]
				if product, ok := products[li.Product.ID()]; ok {
					li.Product = models.PopulatedRef(li.Product.ID(), product)
				}
			}
		}
	}
	return nil
}

func (r *OrderRepository) findUsers(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error) {
	cursor, err := r.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}
	defer cursor.Close(ctx)

	found := make(map[primitive.ObjectID]*models.User, len(ids))
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			return nil, fmt.Errorf("failed to decode user: %w", err)
		}
		found[user.ID] = &user
	}
	return found, cursor.Err()
}

func (r *OrderRepository) findStores(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Store, error) {
	cursor, err := r.stores.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to find stores: %w", err)
	}
	defer cursor.Close(ctx)

	found := make(map[primitive.ObjectID]*models.Store, len(ids))
	for cursor.Next(ctx) {
		var store models.Store
		if err := cursor.Decode(&store); err != nil {
			return nil, fmt.Errorf("failed to decode store: %w", err)
		}
		found[store.ID] = &store
	}
	return found, cursor.Err()
}

// UpdateSubOrderStatus moves one sub-order to the given status. Reaching
// delivered stamps the delivery date and opens the return window. Transition
// legality is the caller's check; this only writes.
func (r *OrderRepository) UpdateSubOrderStatus(ctx context.Context, orderID, subOrderID primitive.ObjectID, status models.DeliveryStatus, trackingNumber string) error {
	now := time.Now()
	set := bson.M{"updated_at": now}
	set["sub_orders.$[so].delivery_status"] = status
	if trackingNumber != "" {
		set["sub_orders.$[so].tracking_number"] = trackingNumber
	}
	if status == models.DeliveryDelivered {
		var delivered models.SubOrder
		delivered.MarkDelivered(now)
		set["sub_orders.$[so].delivery_date"] = delivered.DeliveryDate
		set["sub_orders.$[so].return_window"] = delivered.ReturnWindow
	}

	return r.updateSubOrder(ctx, bson.M{"_id": orderID, "sub_orders._id": subOrderID}, subOrderID, set)
}

// ConfirmDelivery flips the customer-confirmed flag on one sub-order. The
// user id in the filter keeps customers inside their own orders.
func (r *OrderRepository) ConfirmDelivery(ctx context.Context, orderID, userID, subOrderID primitive.ObjectID) error {
	filter := bson.M{"_id": orderID, "user": userID, "sub_orders._id": subOrderID}
	set := bson.M{"updated_at": time.Now()}
	set["sub_orders.$[so].customer_confirmed_delivery"] = true
	return r.updateSubOrder(ctx, filter, subOrderID, set)
}

// ReleaseEscrow pays out one sub-order's held funds.
func (r *OrderRepository) ReleaseEscrow(ctx context.Context, orderID, subOrderID primitive.ObjectID) error {
	now := time.Now()
	set := bson.M{"updated_at": now}
	set["sub_orders.$[so].escrow.held"] = false
	set["sub_orders.$[so].escrow.released"] = true
	set["sub_orders.$[so].escrow.released_at"] = now
	return r.updateSubOrder(ctx, bson.M{"_id": orderID, "sub_orders._id": subOrderID}, subOrderID, set)
}

// UpdatePaymentStatus sets the order-level payment status. Marking an order
// refunded also flags every sub-order's escrow as refunded so the funds can
// never be released.
func (r *OrderRepository) UpdatePaymentStatus(ctx context.Context, orderID primitive.ObjectID, status models.PaymentStatus) error {
	set := bson.M{"updated_at": time.Now()}
	set["payment_status"] = status
	if status == models.PaymentRefunded {
		set["sub_orders.$[].escrow.held"] = false
		set["sub_orders.$[].escrow.refunded"] = true
	}

	result, err := r.orders.UpdateOne(ctx, bson.M{"_id": orderID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) updateSubOrder(ctx context.Context, filter bson.M, subOrderID primitive.ObjectID, set bson.M) error {
	arrayFilters := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"so._id": subOrderID}},
	})

	result, err := r.orders.UpdateOne(ctx, filter, bson.M{"$set": set}, arrayFilters)
	if err != nil {
		return fmt.Errorf("failed to update sub-order: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrSubOrderNotFound
	}
	return nil
}

func (r *OrderRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "payment_ref", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys: bson.D{{Key: "user", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "stores", Value: 1}},
		},
	}

	if _, err := r.orders.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create order indexes: %w", err)
	}
	return nil
}
