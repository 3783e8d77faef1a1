// main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Mishael-Joe/soraxi/cache"
	"github.com/Mishael-Joe/soraxi/controllers"
	"github.com/Mishael-Joe/soraxi/events"
	"github.com/Mishael-Joe/soraxi/metrics"
	"github.com/Mishael-Joe/soraxi/middleware"
	"github.com/Mishael-Joe/soraxi/repository"
	"github.com/Mishael-Joe/soraxi/routes"
	"github.com/Mishael-Joe/soraxi/utils"
)

func main() {
	// Load environment variables from .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found. Proceeding with environment variables.")
	}

	// Set the JWT secret key
	utils.JwtKey = []byte(os.Getenv("JWT_SECRET"))

	// Connect to MongoDB
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	db, err := repository.ConnectMongoDB(ctx, getEnv("MONGODB_URI", "mongodb://localhost:27017"), getEnv("MONGO_DATABASE", "soraxi"))
	if err != nil {
		log.Fatalf("failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := db.Client().Disconnect(context.Background()); err != nil {
			log.Printf("failed to disconnect from MongoDB: %v", err)
		}
	}()

	ensureIndexes(ctx, db)

	// Product cache is optional; without Redis every read goes to MongoDB
	var productCache cache.ProductCache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: addr})
		defer redisClient.Close()
		productCache = cache.NewRedisCache(redisClient)
		log.Println("Product cache enabled")
	}

	// Order events are optional; without brokers publishing is a no-op
	publisher := events.NewPublisher(os.Getenv("KAFKA_BROKERS"))
	defer publisher.Close()

	serverMetrics := metrics.NewServerMetrics()

	// Initialize EmailService
	emailService := utils.NewEmailService()

	validate := utils.NewValidator()

	// Initialize controllers
	userController := controllers.NewUserController(db, emailService, validate)
	productController := controllers.NewProductController(db, productCache, validate)
	cartController := controllers.NewCartController(db, validate)
	orderController := controllers.NewOrderController(db, emailService, publisher, validate)
	storeController := controllers.NewStoreController(db, emailService, publisher, validate)
	adminController := controllers.NewAdminController(db, emailService, publisher, validate)

	// Set up the router
	router := mux.NewRouter()
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.MetricsMiddleware(serverMetrics))

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.Client().Ping(ctx, nil); err != nil {
			http.Error(w, "Database unreachable", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprintln(w, "ok")
	}).Methods("GET")
	router.Handle("/metrics", metrics.Handler()).Methods("GET")

	// Register routes
	routes.RegisterRoutes(router, userController, productController, cartController, orderController, storeController, adminController)

	// Start the server
	port := getEnv("PORT", "8000")
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		fmt.Printf("Server is running on port %s\n", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Wait for an interrupt and drain in-flight requests before exiting
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown failed: %v", err)
	}
}

// ensureIndexes creates the collection indexes. Failures are logged, not
// fatal; the server can run against collections indexed out of band.
func ensureIndexes(ctx context.Context, db *mongo.Database) {
	indexed := map[string]interface{ CreateIndexes(context.Context) error }{
		"users":    repository.NewUserRepository(db),
		"products": repository.NewProductRepository(db),
		"stores":   repository.NewStoreRepository(db),
		"carts":    repository.NewCartRepository(db),
		"orders":   repository.NewOrderRepository(db),
	}
	for name, repo := range indexed {
		if err := repo.CreateIndexes(ctx); err != nil {
			log.Printf("failed to create %s indexes: %v", name, err)
		}
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
