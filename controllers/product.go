package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"strings"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/singleflight"

	"github.com/Mishael-Joe/soraxi/cache"
	"github.com/Mishael-Joe/soraxi/models"
	"github.com/Mishael-Joe/soraxi/repository"
	"github.com/Mishael-Joe/soraxi/utils"
)

// ProductController handles catalog requests
type ProductController struct {
	Products *repository.ProductRepository
	Stores   *repository.StoreRepository
	Cache    cache.ProductCache
	Validate *validatorv10.Validate

	group singleflight.Group // collapses concurrent cache misses per product
}

// NewProductController creates a new ProductController. Cache may be nil when
// Redis is not configured.
func NewProductController(db *mongo.Database, productCache cache.ProductCache, validate *validatorv10.Validate) *ProductController {
	return &ProductController{
		Products: repository.NewProductRepository(db),
		Stores:   repository.NewStoreRepository(db),
		Cache:    productCache,
		Validate: validate,
	}
}

// GetProducts lists the storefront catalog. Only products of active stores
// are shown.
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	activeStores, err := pc.Stores.ActiveStoreIDs(ctx)
	if err != nil {
		http.Error(w, "Error fetching products", http.StatusInternalServerError)
		return
	}
	if len(activeStores) == 0 {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]models.Product{})
		return
	}

	filter := repository.ListFilter{
		StoreIDs: activeStores,
		Category: r.URL.Query().Get("category"),
	}
	if t := r.URL.Query().Get("type"); t != "" {
		productType, err := models.ToProductType(t)
		if err != nil {
			http.Error(w, "Invalid product type", http.StatusBadRequest)
			return
		}
		filter.Type = productType
	}

	products, err := pc.Products.List(ctx, filter)
	if err != nil {
		http.Error(w, "Error fetching products", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(products)
}

// GetProductByID retrieves a single product by ID, serving from the cache
// when it can. Concurrent misses for the same product share one Mongo fetch.
func (pc *ProductController) GetProductByID(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	id, err := primitive.ObjectIDFromHex(params["id"])
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	product, err := pc.lookupProduct(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			http.Error(w, "Product not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Error fetching product", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(product)
}

func (pc *ProductController) lookupProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	hexID := id.Hex()

	v, err, _ := pc.group.Do(hexID, func() (interface{}, error) {
		if pc.Cache != nil {
			product, err := pc.Cache.Get(ctx, hexID)
			if err == nil {
				return product, nil
			}
			if !errors.Is(err, cache.ErrCacheMiss) {
				log.Printf("cache get error: %v", err)
			}
		}

		product, err := pc.Products.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if pc.Cache != nil {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				if err := pc.Cache.Set(ctx, hexID, product); err != nil {
					log.Printf("cache set error: %v", err)
				}
			}()
		}
		return product, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Product), nil
}

// GetProductBySlug retrieves a single product by its slug
func (pc *ProductController) GetProductBySlug(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	product, err := pc.Products.FindBySlug(ctx, params["slug"])
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			http.Error(w, "Product not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Error fetching product", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(product)
}

type productRequest struct {
	Name        string               `json:"name" validate:"required"`
	Description string               `json:"description"`
	Images      []string             `json:"images"`
	Price       int64                `json:"price" validate:"required,gt=0"`
	ProductType string               `json:"product_type" validate:"required,oneof=physical digital"`
	Category    string               `json:"category"`
	Stock       int                  `json:"stock" validate:"gte=0"`
	InStock     *bool                `json:"in_stock"`
	MaxQuantity *int                 `json:"max_quantity" validate:"omitempty,gt=0"`
	Sizes       []models.ProductSize `json:"sizes" validate:"omitempty,dive"`
}

// CreateProduct adds a product to the owner's store catalog
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
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

	var req productRequest
	if err := utils.BindAndValidate(w, r, pc.Validate, &req); err != nil {
		return
	}
	productType, _ := models.ToProductType(req.ProductType)

	product := models.Product{
		StoreID:     storeID,
		Name:        req.Name,
		Slug:        generateSlug(req.Name),
		Description: req.Description,
		Images:      req.Images,
		Price:       req.Price,
		ProductType: productType,
		Category:    req.Category,
		Stock:       req.Stock,
		InStock:     req.InStock,
		MaxQuantity: req.MaxQuantity,
		Sizes:       req.Sizes,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	id, err := pc.Products.Insert(ctx, &product)
	if err != nil {
		http.Error(w, "Error creating product", http.StatusInternalServerError)
		return
	}
	product.ID = id

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(product)
}

// UpdateProduct updates a product in the owner's store catalog
func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
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
	id, err := primitive.ObjectIDFromHex(params["id"])
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}

	var req productRequest
	if err := utils.BindAndValidate(w, r, pc.Validate, &req); err != nil {
		return
	}
	productType, _ := models.ToProductType(req.ProductType)

	// The slug survives updates so published links keep working.
	product := models.Product{
		ID:          id,
		StoreID:     storeID,
		Name:        req.Name,
		Description: req.Description,
		Images:      req.Images,
		Price:       req.Price,
		ProductType: productType,
		Category:    req.Category,
		Stock:       req.Stock,
		InStock:     req.InStock,
		MaxQuantity: req.MaxQuantity,
		Sizes:       req.Sizes,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pc.Products.Update(ctx, storeID, &product); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			http.Error(w, "Product not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Error updating product", http.StatusInternalServerError)
		return
	}

	pc.invalidate(id)
	json.NewEncoder(w).Encode(product)
}

// DeleteProduct removes a product from the owner's store catalog
func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
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
	id, err := primitive.ObjectIDFromHex(params["id"])
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}
	productType, err := models.ToProductType(r.URL.Query().Get("type"))
	if err != nil {
		http.Error(w, "Invalid product type", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pc.Products.Delete(ctx, storeID, id, productType); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			http.Error(w, "Product not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Error deleting product", http.StatusInternalServerError)
		return
	}

	pc.invalidate(id)
	json.NewEncoder(w).Encode(map[string]string{"message": "Product deleted"})
}

func (pc *ProductController) invalidate(id primitive.ObjectID) {
	if pc.Cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := pc.Cache.Delete(ctx, id.Hex()); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}

// generateSlug builds a URL slug from the product name plus a short random
// suffix so two stores can sell a "Blue Hoodie".
func generateSlug(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '_':
			return '-'
		default:
			return -1
		}
	}, slug)
	slug = strings.Trim(slug, "-")
	return fmt.Sprintf("%s-%04d", slug, rand.Intn(10000))
}
