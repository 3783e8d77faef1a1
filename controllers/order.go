// controllers/order.go
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
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Mishael-Joe/soraxi/events"
	"github.com/Mishael-Joe/soraxi/formatter"
	"github.com/Mishael-Joe/soraxi/models"
	"github.com/Mishael-Joe/soraxi/pricing"
	"github.com/Mishael-Joe/soraxi/repository"
	"github.com/Mishael-Joe/soraxi/utils"
)

// OrderController handles checkout and order-related requests
type OrderController struct {
	Orders   *repository.OrderRepository
	Carts    *repository.CartRepository
	Products *repository.ProductRepository
	Users    *mongo.Collection
	Email    *utils.EmailService
	Events   *events.Publisher
	Validate *validatorv10.Validate
}

// NewOrderController creates a new OrderController
func NewOrderController(db *mongo.Database, emailService *utils.EmailService, publisher *events.Publisher, validate *validatorv10.Validate) *OrderController {
	return &OrderController{
		Orders:   repository.NewOrderRepository(db),
		Carts:    repository.NewCartRepository(db),
		Products: repository.NewProductRepository(db),
		Users:    db.Collection("users"),
		Email:    emailService,
		Events:   publisher,
		Validate: validate,
	}
}

type checkoutRequest struct {
	ShippingAddress string `json:"shipping_address" validate:"required"`
	PaymentMethod   string `json:"payment_method" validate:"required,oneof=card transfer"`
	Notes           string `json:"notes"`
}

// Checkout turns the user's cart into an order. Items are grouped into one
// sub-order per store, each starting pending with its funds held in escrow.
// Prices are read live from the catalog and snapshotted onto the line items.
func (oc *OrderController) Checkout(w http.ResponseWriter, r *http.Request) {
	claims, userID, ok := authedUser(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req checkoutRequest
	if err := utils.BindAndValidate(w, r, oc.Validate, &req); err != nil {
		return
	}
	paymentMethod, err := models.ToPaymentMethod(req.PaymentMethod)
	if err != nil {
		http.Error(w, "Invalid payment method", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cart, err := oc.Carts.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			http.Error(w, "Cart is empty", http.StatusBadRequest)
			return
		}
		http.Error(w, "Error fetching cart", http.StatusInternalServerError)
		return
	}
	if len(cart.Items) == 0 {
		http.Error(w, "Cart is empty", http.StatusBadRequest)
		return
	}

	// Find the user in the database
	var user models.User
	err = oc.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	keys := lo.Map(cart.Items, func(item models.CartItem, _ int) repository.ProductKey {
		return repository.ProductKey{ID: item.ProductID, Type: item.ProductType}
	})
	products, err := oc.Products.FindManyByKeys(ctx, keys)
	if err != nil {
		http.Error(w, "Error fetching products", http.StatusInternalServerError)
		return
	}

	// Group the cart into one sub-order per store, in cart order. Unlike cart
	// hydration, checkout is strict: any missing product, dead price or stock
	// shortfall rejects the whole attempt.
	groups := make(map[primitive.ObjectID][]models.LineItem)
	var storeOrder []primitive.ObjectID
	var summaryLines []pricing.Line

	for _, item := range cart.Items {
		product, found := products[item.ProductID]
		if !found {
			http.Error(w, fmt.Sprintf("Product no longer available: %s", item.ProductID.Hex()), http.StatusBadRequest)
			return
		}
		if !lo.FromPtrOr(product.InStock, true) {
			http.Error(w, fmt.Sprintf("Product out of stock: %s", product.Name), http.StatusBadRequest)
			return
		}

		unitPrice := product.Price
		available := product.Stock
		var selectedSize *models.SelectedSize
		if item.SelectedSize != nil {
			size, found := product.SizeByLabel(item.SelectedSize.Size)
			if !found {
				http.Error(w, fmt.Sprintf("Size no longer available for %s", product.Name), http.StatusBadRequest)
				return
			}
			unitPrice = size.Price
			available = size.Quantity
			selectedSize = &models.SelectedSize{Size: size.Label, Price: size.Price}
		}
		if unitPrice <= 0 {
			http.Error(w, fmt.Sprintf("Product has no valid price: %s", product.Name), http.StatusBadRequest)
			return
		}
		if product.ProductType == models.ProductTypePhysical && item.Quantity > available {
			http.Error(w, fmt.Sprintf("Insufficient stock for %s", product.Name), http.StatusBadRequest)
			return
		}

		if _, seen := groups[product.StoreID]; !seen {
			storeOrder = append(storeOrder, product.StoreID)
		}
		groups[product.StoreID] = append(groups[product.StoreID], models.LineItem{
			ID:           primitive.NewObjectID(),
			Product:      models.RefTo[models.Product](product.ID),
			ProductType:  product.ProductType,
			StoreID:      product.StoreID,
			Quantity:     item.Quantity,
			PriceAtOrder: unitPrice,
			SelectedSize: selectedSize,
		})
		summaryLines = append(summaryLines, pricing.Line{Price: unitPrice, Quantity: item.Quantity})
	}

	subOrders := lo.Map(storeOrder, func(storeID primitive.ObjectID, _ int) models.SubOrder {
		lines := groups[storeID]
		var total int64
		for _, line := range lines {
			total += line.PriceAtOrder * int64(line.Quantity)
		}
		return models.SubOrder{
			ID:             primitive.NewObjectID(),
			Store:          models.RefTo[models.Store](storeID),
			Products:       lines,
			TotalAmount:    total,
			DeliveryStatus: models.DeliveryPending,
			Escrow:         models.Escrow{Held: true},
		}
	})

	summary := pricing.Summarize(summaryLines)
	order := models.Order{
		User:            models.RefTo[models.User](userID),
		Stores:          storeOrder,
		SubOrders:       subOrders,
		TotalAmount:     summary.Total,
		PaymentStatus:   models.PaymentPending,
		PaymentMethod:   paymentMethod,
		PaymentRef:      uuid.NewString(),
		ShippingAddress: req.ShippingAddress,
		Notes:           req.Notes,
	}

	// Reserve stock before inserting; the conditional decrement is the guard
	// against overselling. Digital products carry no stock to reserve.
	var reserved []models.CartItem
	for _, item := range cart.Items {
		if item.ProductType != models.ProductTypePhysical {
			continue
		}
		key := repository.ProductKey{ID: item.ProductID, Type: item.ProductType}
		if err := oc.Products.DecrementStock(ctx, key, item.Quantity); err != nil {
			oc.restock(reserved)
			if errors.Is(err, repository.ErrInsufficientStock) {
				http.Error(w, fmt.Sprintf("Insufficient stock for product %s", item.ProductID.Hex()), http.StatusBadRequest)
				return
			}
			http.Error(w, "Error reserving stock", http.StatusInternalServerError)
			return
		}
		reserved = append(reserved, item)
	}

	orderID, err := oc.Orders.Insert(ctx, &order)
	if err != nil {
		oc.restock(reserved)
		http.Error(w, "Failed to create order", http.StatusInternalServerError)
		return
	}
	order.ID = orderID

	if err := oc.Carts.Clear(ctx, userID); err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		log.Printf("failed to clear cart for user %s after checkout: %v", userID.Hex(), err)
	}

	// Send confirmation email to user
	go func(email, firstName string, order models.Order) {
		if err := oc.Email.SendOrderConfirmationEmail(email, firstName, &order); err != nil {
			log.Printf("Failed to send email to %s: %v", email, err)
		}
	}(user.Email, user.FirstName, order)

	oc.Events.PublishAsync(events.OrderEvent{
		Name:       events.OrderPlaced,
		OrderID:    orderID.Hex(),
		UserID:     claims.UserID,
		Amount:     summary.Total,
		OccurredAt: time.Now(),
	})

	// Respond with the created order details
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"order_id":    orderID.Hex(),
		"payment_ref": order.PaymentRef,
		"summary":     summary,
		"message":     "Order placed successfully",
	})
}

// restock returns reserved stock after a failed checkout, best effort.
func (oc *OrderController) restock(items []models.CartItem) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, item := range items {
		key := repository.ProductKey{ID: item.ProductID, Type: item.ProductType}
		if err := oc.Products.Restock(ctx, key, item.Quantity); err != nil {
			log.Printf("failed to restock product %s: %v", item.ProductID.Hex(), err)
		}
	}
}

// GetOrders retrieves all orders for the authenticated user, formatted for
// display.
func (oc *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authedUser(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	orders, err := oc.Orders.FindByUser(ctx, userID)
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

// GetOrder retrieves one order. Only its owner or an admin may read it.
func (oc *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	claims, userID, ok := authedUser(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
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

	order, err := oc.Orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			http.Error(w, "Order not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Error fetching order", http.StatusInternalServerError)
		return
	}
	if order.User.ID() != userID && claims.Role != "admin" {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	formatted, err := formatter.FormatOrder(*order)
	if err != nil {
		http.Error(w, "Error formatting order", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(formatted)
}

// ConfirmDelivery lets a customer confirm receipt of a delivered sub-order,
// which makes its escrow releasable before the return window closes.
func (oc *OrderController) ConfirmDelivery(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authedUser(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	order, err := oc.Orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			http.Error(w, "Order not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Error fetching order", http.StatusInternalServerError)
		return
	}
	if order.User.ID() != userID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	idx := order.FindSubOrder(subOrderID)
	if idx < 0 {
		http.Error(w, "Sub-order not found", http.StatusNotFound)
		return
	}
	if order.SubOrders[idx].DeliveryStatus != models.DeliveryDelivered {
		http.Error(w, "Sub-order has not been delivered", http.StatusBadRequest)
		return
	}

	if err := oc.Orders.ConfirmDelivery(ctx, orderID, userID, subOrderID); err != nil {
		if errors.Is(err, repository.ErrSubOrderNotFound) {
			http.Error(w, "Sub-order not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to confirm delivery", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode("Delivery confirmed")
}
