package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Mishael-Joe/soraxi/formatter"
	"github.com/Mishael-Joe/soraxi/models"
	"github.com/Mishael-Joe/soraxi/pricing"
	"github.com/Mishael-Joe/soraxi/repository"
	"github.com/Mishael-Joe/soraxi/utils"
)

// CartController handles cart-related requests
type CartController struct {
	Carts    *repository.CartRepository
	Products *repository.ProductRepository
	Validate *validatorv10.Validate
}

// NewCartController creates a new CartController
func NewCartController(db *mongo.Database, validate *validatorv10.Validate) *CartController {
	return &CartController{
		Carts:    repository.NewCartRepository(db),
		Products: repository.NewProductRepository(db),
		Validate: validate,
	}
}

type cartResponse struct {
	Items   []formatter.HydratedCartItem `json:"items"`
	Summary pricing.OrderSummary         `json:"summary"`
}

// GetCart returns the user's cart hydrated with live product data plus the
// money summary. Items whose product has vanished or lost its price are
// omitted; an empty items list is the empty-cart state.
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authedUser(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cart, err := cc.Carts.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(cartResponse{Items: []formatter.HydratedCartItem{}})
			return
		}
		http.Error(w, "Error fetching cart", http.StatusInternalServerError)
		return
	}

	// Fetch the live products for every item in one round trip per collection
	keys := lo.Map(cart.Items, func(item models.CartItem, _ int) repository.ProductKey {
		return repository.ProductKey{ID: item.ProductID, Type: item.ProductType}
	})
	products, err := cc.Products.FindManyByKeys(ctx, keys)
	if err != nil {
		http.Error(w, "Error fetching cart products", http.StatusInternalServerError)
		return
	}

	productsByHex := make(map[string]models.Product, len(products))
	for id, product := range products {
		productsByHex[id.Hex()] = *product
	}

	items, warnings := formatter.HydrateCart(cart.Items, productsByHex)
	for _, warning := range warnings {
		log.Printf("cart %s: %s", cart.ID.Hex(), warning)
	}

	summary := pricing.Summarize(lo.Map(items, func(item formatter.HydratedCartItem, _ int) pricing.Line {
		return pricing.Line{Price: item.Price, Quantity: item.Quantity}
	}))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cartResponse{Items: items, Summary: summary})
}

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"required,len=24"`
	Quantity  int    `json:"quantity" validate:"required,min=1,max=99"`
	Size      string `json:"size"`
}

// AddToCart adds a product to the user's cart. Adding a product already in
// the cart with the same size merges into one line.
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authedUser(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req addItemRequest
	if err := utils.BindAndValidate(w, r, cc.Validate, &req); err != nil {
		return
	}

	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	product, err := cc.Products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			http.Error(w, "Product not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Error fetching product", http.StatusInternalServerError)
		return
	}

	item := models.CartItem{
		ProductID:   product.ID,
		StoreID:     product.StoreID,
		Quantity:    req.Quantity,
		ProductType: product.ProductType,
	}
	if req.Size != "" {
		size, found := product.SizeByLabel(req.Size)
		if !found {
			http.Error(w, "Unknown size for product", http.StatusBadRequest)
			return
		}
		item.SelectedSize = &models.SelectedSize{Size: size.Label, Price: size.Price}
	}

	cart, err := cc.Carts.AddItem(ctx, userID, item)
	if err != nil {
		http.Error(w, "Error updating cart", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cart)
}

type updateQuantityRequest struct {
	ProductID string `json:"product_id" validate:"required,len=24"`
	Quantity  int    `json:"quantity" validate:"required,min=1,max=99"`
	Size      string `json:"size"`
}

// UpdateQuantity replaces the quantity of one cart line.
func (cc *CartController) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authedUser(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req updateQuantityRequest
	if err := utils.BindAndValidate(w, r, cc.Validate, &req); err != nil {
		return
	}

	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	item, ok := cc.findCartItem(ctx, w, userID, productID, req.Size)
	if !ok {
		return
	}

	if err := cc.Carts.SetQuantity(ctx, userID, item, req.Quantity); err != nil {
		if errors.Is(err, repository.ErrCartNotFound) || errors.Is(err, repository.ErrItemNotFound) {
			http.Error(w, "Item not found in cart", http.StatusNotFound)
			return
		}
		http.Error(w, "Error updating cart", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode("Quantity updated")
}

// RemoveFromCart removes one line from the user's cart
func (cc *CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authedUser(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	params := mux.Vars(r)
	productID, err := primitive.ObjectIDFromHex(params["product_id"])
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}
	size := r.URL.Query().Get("size")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	item, ok := cc.findCartItem(ctx, w, userID, productID, size)
	if !ok {
		return
	}

	if err := cc.Carts.RemoveItem(ctx, userID, item); err != nil {
		http.Error(w, "Error updating cart", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode("Item removed from cart")
}

// ClearCart drops the user's cart entirely.
func (cc *CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authedUser(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := cc.Carts.Clear(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		http.Error(w, "Error clearing cart", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode("Cart cleared")
}

// findCartItem locates the stored cart line for a product and size so its
// full identity can drive an update. The line is matched against the cart,
// not the catalog, so lines whose product has been deleted stay reachable.
func (cc *CartController) findCartItem(ctx context.Context, w http.ResponseWriter, userID, productID primitive.ObjectID, size string) (models.CartItem, bool) {
	cart, err := cc.Carts.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			http.Error(w, "Cart not found", http.StatusNotFound)
		} else {
			http.Error(w, "Error fetching cart", http.StatusInternalServerError)
		}
		return models.CartItem{}, false
	}

	for _, item := range cart.Items {
		if item.ProductID == productID && item.SizeLabel() == size {
			return item, true
		}
	}

	http.Error(w, "Item not found in cart", http.StatusNotFound)
	return models.CartItem{}, false
}
