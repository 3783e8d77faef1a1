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
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Mishael-Joe/soraxi/events"
	"github.com/Mishael-Joe/soraxi/formatter"
	"github.com/Mishael-Joe/soraxi/models"
	"github.com/Mishael-Joe/soraxi/repository"
	"github.com/Mishael-Joe/soraxi/utils"
)

// AdminController handles the platform-operator endpoints
type AdminController struct {
	Orders   *repository.OrderRepository
	Stores   *repository.StoreRepository
	Email    *utils.EmailService
	Events   *events.Publisher
	Validate *validatorv10.Validate
}

// NewAdminController creates a new AdminController
func NewAdminController(db *mongo.Database, emailService *utils.EmailService, publisher *events.Publisher, validate *validatorv10.Validate) *AdminController {
	return &AdminController{
		Orders:   repository.NewOrderRepository(db),
		Stores:   repository.NewStoreRepository(db),
		Email:    emailService,
		Events:   publisher,
		Validate: validate,
	}
}

// ListAllOrders returns every order on the platform, formatted for display.
func (ac *AdminController) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	orders, err := ac.Orders.FindAll(ctx)
	if err != nil {
		http.Error(w, "Failed to retrieve orders", http.StatusInternalServerError)
		return
	}

	formatted, err := formatter.FormatOrders(orders)
	if err != nil {
		http.Error(w, "Error formatting orders", http.StatusInternalServerError)
		return
	}
	if formatted == nil {
		formatted = []formatter.FormattedOrder{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(formatted)
}

// ReleaseEscrow pays out one sub-order's held funds. Funds are only released
// for delivered sub-orders the customer confirmed or whose return window has
// closed.
func (ac *AdminController) ReleaseEscrow(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	order, err := ac.Orders.FindByID(ctx, orderID)
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
	if !sub.EscrowReleasable(time.Now()) {
		http.Error(w, "Escrow is not releasable for this sub-order", http.StatusBadRequest)
		return
	}

	if err := ac.Orders.ReleaseEscrow(ctx, orderID, subOrderID); err != nil {
		if errors.Is(err, repository.ErrSubOrderNotFound) {
			http.Error(w, "Sub-order not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to release escrow", http.StatusInternalServerError)
		return
	}

	ac.Events.PublishAsync(events.OrderEvent{
		Name:       events.EscrowReleased,
		OrderID:    orderID.Hex(),
		SubOrderID: subOrderID.Hex(),
		StoreID:    sub.Store.ID().Hex(),
		Amount:     sub.TotalAmount,
		OccurredAt: time.Now(),
	})

	json.NewEncoder(w).Encode("Escrow released")
}

type updateStoreStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateStoreStatus activates or suspends a store. Only active stores have
// their products listed on the storefront.
func (ac *AdminController) UpdateStoreStatus(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	storeID, err := primitive.ObjectIDFromHex(params["id"])
	if err != nil {
		http.Error(w, "Invalid store ID", http.StatusBadRequest)
		return
	}

	var req updateStoreStatusRequest
	if err := utils.BindAndValidate(w, r, ac.Validate, &req); err != nil {
		return
	}
	status, err := models.ToStoreStatus(req.Status)
	if err != nil {
		http.Error(w, "Invalid store status", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := ac.Stores.UpdateStatus(ctx, storeID, status); err != nil {
		if errors.Is(err, repository.ErrStoreNotFound) {
			http.Error(w, "Store not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to update store status", http.StatusInternalServerError)
		return
	}

	// Notify the store asynchronously
	store, err := ac.Stores.FindByID(ctx, storeID)
	if err == nil {
		go func(email, name string, status models.StoreStatus) {
			subject := "Store Status Updated - Soraxi"
			content := fmt.Sprintf("Dear %s,\n\nYour store status has been updated to '%s'.\n", name, status)
			if err := ac.Email.SendEmail(email, subject, content); err != nil {
				log.Printf("Failed to send email to %s: %v", email, err)
			}
		}(store.StoreEmail, store.Name, status)
	}

	json.NewEncoder(w).Encode(map[string]string{"message": "Store status updated successfully"})
}

type updatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" validate:"required"`
}

// UpdatePaymentStatus lets an admin settle an order's payment, typically to
// confirm a bank transfer. Orders cannot move back to pending.
func (ac *AdminController) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	orderID, err := primitive.ObjectIDFromHex(params["id"])
	if err != nil {
		http.Error(w, "Invalid order ID", http.StatusBadRequest)
		return
	}

	var req updatePaymentStatusRequest
	if err := utils.BindAndValidate(w, r, ac.Validate, &req); err != nil {
		return
	}
	status, err := models.ToPaymentStatus(req.PaymentStatus)
	if err != nil || status == models.PaymentPending {
		http.Error(w, "Invalid payment status", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := ac.Orders.UpdatePaymentStatus(ctx, orderID, status); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			http.Error(w, "Order not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to update payment status", http.StatusInternalServerError)
		return
	}

	// Optionally, send an email notification to the user about the payment status update
	order, err := ac.Orders.FindByID(ctx, orderID)
	if err == nil {
		if user, populated := order.User.Doc(); populated {
			go func(email, firstName string) {
				subject := "Payment Status Updated - Soraxi"
				content := fmt.Sprintf("Dear %s,\n\nYour order (ID: %s) payment status has been updated to '%s'.\n\nThank you for shopping with us!\n", firstName, orderID.Hex(), status)
				if err := ac.Email.SendEmail(email, subject, content); err != nil {
					log.Printf("Failed to send email to %s: %v", email, err)
				}
			}(user.Email, user.FirstName)
		}
	}

	// Respond with success message
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Payment status updated successfully"})
}
