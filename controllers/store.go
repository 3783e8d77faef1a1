package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Mishael-Joe/soraxi/events"
	"github.com/Mishael-Joe/soraxi/formatter"
	"github.com/Mishael-Joe/soraxi/models"
	"github.com/Mishael-Joe/soraxi/repository"
	"github.com/Mishael-Joe/soraxi/utils"
)

// StoreController handles store onboarding and the seller-facing order views
type StoreController struct {
	Stores   *repository.StoreRepository
	Orders   *repository.OrderRepository
	Users    *mongo.Collection
	Email    *utils.EmailService
	Events   *events.Publisher
	Validate *validatorv10.Validate
}

// NewStoreController creates a new StoreController
func NewStoreController(db *mongo.Database, emailService *utils.EmailService, publisher *events.Publisher, validate *validatorv10.Validate) *StoreController {
	return &StoreController{
		Stores:   repository.NewStoreRepository(db),
		Orders:   repository.NewOrderRepository(db),
		Users:    db.Collection("users"),
		Email:    emailService,
		Events:   publisher,
		Validate: validate,
	}
}

type onboardStoreRequest struct {
	Name        string `json:"name" validate:"required"`
	StoreEmail  string `json:"store_email" validate:"required,email"`
	Description string `json:"description"`
	LogoURL     string `json:"logo_url" validate:"omitempty,url"`
}

// OnboardStore creates a store for the authenticated user. New stores start
// pending and stay off the storefront until an admin activates them. The
// response carries a fresh token with the store claim baked in.
func (sc *StoreController) OnboardStore(w http.ResponseWriter, r *http.Request) {
	claims, userID, ok := authedUser(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req onboardStoreRequest
	if err := utils.BindAndValidate(w, r, sc.Validate, &req); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// One store per user
	_, err := sc.Stores.FindByOwner(ctx, userID)
	if err == nil {
		http.Error(w, "You already own a store", http.StatusConflict)
		return
	}
	if !errors.Is(err, repository.ErrStoreNotFound) {
		http.Error(w, "Error checking existing store", http.StatusInternalServerError)
		return
	}

	store := models.Store{
		Name:        req.Name,
		StoreEmail:  req.StoreEmail,
		LogoURL:     req.LogoURL,
		Description: req.Description,
		OwnerID:     userID,
		Status:      models.StoreStatusPending,
	}
	storeID, err := sc.Stores.Insert(ctx, &store)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			http.Error(w, "Store email already in use", http.StatusConflict)
			return
		}
		http.Error(w, "Failed to create store", http.StatusInternalServerError)
		return
	}
	store.ID = storeID

	_, err = sc.Users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$set": bson.M{"store_id": storeID, "updated_at": time.Now()},
	})
	if err != nil {
		http.Error(w, "Failed to link store to user", http.StatusInternalServerError)
		return
	}

	token, err := utils.GenerateStoreJWT(claims.UserID, claims.Email, claims.Role, storeID.Hex())
	if err != nil {
		http.Error(w, "Error generating token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"store": store,
		"token": token,
	})
}

// GetMyStore returns the authenticated seller's store.
func (sc *StoreController) GetMyStore(w http.ResponseWriter, r *http.Request) {
	claims, _, ok := authedUser(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	storeID, ok := storeFromClaims(claims)
	if !ok {
		http.Error(w, "Forbidden: Store owners only", http.StatusForbidden)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := sc.Stores.FindByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, repository.ErrStoreNotFound) {
			http.Error(w, "Store not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Error fetching store", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(store)
}

// ListStoreOrders returns every order containing a sub-order for the seller's
// store, scoped to that store's slice and including the customer contact.
func (sc *StoreController) ListStoreOrders(w http.ResponseWriter, r *http.Request) {
	claims, _, ok := authedUser(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	storeID, ok := storeFromClaims(claims)
	if !ok {
		http.Error(w, "Forbidden: Store owners only", http.StatusForbidden)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	orders, err := sc.Orders.FindByStore(ctx, storeID)
	if err != nil {
		http.Error(w, "Failed to retrieve orders", http.StatusInternalServerError)
		return
	}

	formatted := make([]formatter.FormattedStoreOrder, 0, len(orders))
	for i, order := range orders {
		storeOrder, err := formatter.FormatOrderForStore(order, storeID)
		if err != nil {
			log.Printf("formatting store order at index %d failed: %v", i, err)
			http.Error(w, "Error formatting orders", http.StatusInternalServerError)
			return
		}
		formatted = append(formatted, storeOrder)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(formatted)
}

// GetStoreOrder returns one order scoped to the seller's store.
func (sc *StoreController) GetStoreOrder(w http.ResponseWriter, r *http.Request) {
	claims, _, ok := authedUser(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	storeID, ok := storeFromClaims(claims)
	if !ok {
		http.Error(w, "Forbidden: Store owners only", http.StatusForbidden)
		return
	}

	params := mux.Vars(r)
	orderID, err := primitive.ObjectIDFromHex(params["id"])
	if err != nil {
		http.Error(w, "Invalid order ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	order, err := sc.Orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			http.Error(w, "Order not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Error fetching order", http.StatusInternalServerError)
		return
	}

	formatted, err := formatter.FormatOrderForStore(*order, storeID)
	if err != nil {
		var noSubOrders *formatter.NoSubOrdersForStoreError
		if errors.As(err, &noSubOrders) {
			http.Error(w, "Order not found for this store", http.StatusNotFound)
			return
		}
		http.Error(w, "Error formatting order", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(formatted)
}

type updateDeliveryStatusRequest struct {
	Status         string `json:"status" validate:"required"`
	TrackingNumber string `json:"tracking_number"`
}

// UpdateDeliveryStatus moves the seller's sub-order one step along the
// fulfilment path. Marking it delivered stamps the delivery date and opens
// the return window.
func (sc *StoreController) UpdateDeliveryStatus(w http.ResponseWriter, r *http.Request) {
	claims, _, ok := authedUser(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	storeID, ok := storeFromClaims(claims)
	if !ok {
		http.Error(w, "Forbidden: Store owners only", http.StatusForbidden)
		return
	}

	params := mux.Vars(r)
	orderID, err := primitive.ObjectIDFromHex(params["id"])
	if err != nil {
		http.Error(w, "Invalid order ID", http.StatusBadRequest)
		return
	}
	subOrderID, err := primitive.ObjectIDFromHex(params["sub_order_id"])
	if err != nil {
		http.Error(w, "Invalid sub-order ID", http.StatusBadRequest)
		return
	}

	var req updateDeliveryStatusRequest
	if err := utils.BindAndValidate(w, r, sc.Validate, &req); err != nil {
		return
	}
	next, err := models.ToDeliveryStatus(req.Status)
	if err != nil {
		http.Error(w, "Invalid delivery status", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	order, err := sc.Orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			http.Error(w, "Order not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Error fetching order", http.StatusInternalServerError)
		return
	}

	idx := order.FindSubOrder(subOrderID)
	if idx < 0 {
		http.Error(w, "Sub-order not found", http.StatusNotFound)
		return
	}
	sub := &order.SubOrders[idx]
	if sub.Store.ID() != storeID {
		http.Error(w, "Forbidden: sub-order belongs to another store", http.StatusForbidden)
		return
	}
	if !sub.DeliveryStatus.CanTransitionTo(next) {
		http.Error(w, fmt.Sprintf("Cannot change delivery status from %s to %s", sub.DeliveryStatus, next), http.StatusBadRequest)
		return
	}

	if err := sc.Orders.UpdateSubOrderStatus(ctx, orderID, subOrderID, next, req.TrackingNumber); err != nil {
		if errors.Is(err, repository.ErrSubOrderNotFound) {
			http.Error(w, "Sub-order not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to update delivery status", http.StatusInternalServerError)
		return
	}

	switch next {
	case models.DeliveryShipped:
		sc.Events.PublishAsync(events.OrderEvent{
			Name:       events.OrderShipped,
			OrderID:    orderID.Hex(),
			SubOrderID: subOrderID.Hex(),
			StoreID:    storeID.Hex(),
			OccurredAt: time.Now(),
		})
	case models.DeliveryDelivered:
		sc.Events.PublishAsync(events.OrderEvent{
			Name:       events.OrderDelivered,
			OrderID:    orderID.Hex(),
			SubOrderID: subOrderID.Hex(),
			StoreID:    storeID.Hex(),
			Amount:     sub.TotalAmount,
			OccurredAt: time.Now(),
		})
	}

	// Notify the customer asynchronously. The order came back populated, so
	// the user document is already at hand.
	if user, populated := order.User.Doc(); populated {
		storeName := ""
		if store, populated := sub.Store.Doc(); populated {
			storeName = store.Name
		}
		go func(email, firstName, storeName string) {
			if err := sc.Email.SendDeliveryStatusEmail(email, firstName, storeName, orderID.Hex(), next); err != nil {
				log.Printf("Failed to send email to %s: %v", email, err)
			}
		}(user.Email, user.FirstName, storeName)
	}

	json.NewEncoder(w).Encode("Delivery status updated")
}
