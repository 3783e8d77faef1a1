// routes/routes.go
package routes

import (
	"github.com/gorilla/mux"

	"github.com/Mishael-Joe/soraxi/controllers"
	"github.com/Mishael-Joe/soraxi/middleware"
)

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(
	router *mux.Router,
	userController *controllers.UserController,
	productController *controllers.ProductController,
	cartController *controllers.CartController,
	orderController *controllers.OrderController,
	storeController *controllers.StoreController,
	adminController *controllers.AdminController,
) {
	// Public routes
	router.HandleFunc("/register", userController.Register).Methods("POST")
	router.HandleFunc("/login", userController.Login).Methods("POST")
	router.HandleFunc("/verify", userController.VerifyEmail).Methods("GET")
	router.HandleFunc("/products", productController.GetProducts).Methods("GET")
	router.HandleFunc("/products/slug/{slug}", productController.GetProductBySlug).Methods("GET")
	router.HandleFunc("/products/{id}", productController.GetProductByID).Methods("GET")

	// Protected routes
	protected := router.PathPrefix("/").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/profile", userController.GetProfile).Methods("GET")

	// Cart routes
	protected.HandleFunc("/cart", cartController.GetCart).Methods("GET")
	protected.HandleFunc("/cart", cartController.AddToCart).Methods("POST")
	protected.HandleFunc("/cart", cartController.ClearCart).Methods("DELETE")
	protected.HandleFunc("/cart/items", cartController.UpdateQuantity).Methods("PUT")
	protected.HandleFunc("/cart/items/{product_id}", cartController.RemoveFromCart).Methods("DELETE")

	// Order routes
	protected.HandleFunc("/checkout", orderController.Checkout).Methods("POST")
	protected.HandleFunc("/orders", orderController.GetOrders).Methods("GET")
	protected.HandleFunc("/orders/{id}", orderController.GetOrder).Methods("GET")
	protected.HandleFunc("/orders/{id}/suborders/{sub_order_id}/confirm", orderController.ConfirmDelivery).Methods("POST")

	// Store onboarding is open to any authenticated user
	protected.HandleFunc("/stores", storeController.OnboardStore).Methods("POST")

	// Seller routes
	store := router.PathPrefix("/store").Subrouter()
	store.Use(middleware.AuthMiddleware)
	store.Use(middleware.StoreMiddleware)
	store.HandleFunc("", storeController.GetMyStore).Methods("GET")
	store.HandleFunc("/orders", storeController.ListStoreOrders).Methods("GET")
	store.HandleFunc("/orders/{id}", storeController.GetStoreOrder).Methods("GET")
	store.HandleFunc("/orders/{id}/suborders/{sub_order_id}", storeController.UpdateDeliveryStatus).Methods("PATCH")
	store.HandleFunc("/products", productController.CreateProduct).Methods("POST")
	store.HandleFunc("/products/{id}", productController.UpdateProduct).Methods("PUT")
	store.HandleFunc("/products/{id}", productController.DeleteProduct).Methods("DELETE")

	// Admin routes
	admin := router.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AuthMiddleware)
	admin.Use(middleware.AdminMiddleware)
	admin.HandleFunc("/orders", adminController.ListAllOrders).Methods("GET")
	admin.HandleFunc("/orders/{id}/payment", adminController.UpdatePaymentStatus).Methods("PATCH")
	admin.HandleFunc("/orders/{id}/suborders/{sub_order_id}/release-escrow", adminController.ReleaseEscrow).Methods("POST")
	admin.HandleFunc("/stores/{id}", adminController.UpdateStoreStatus).Methods("PATCH")
}
