package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Mishael-Joe/soraxi/models"
)

// setupTestRedis creates a miniredis server and returns a RedisCache instance
func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cache := NewRedisCache(client)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return cache, mr, cleanup
}

func testProduct() *models.Product {
	return &models.Product{
		ID:          primitive.NewObjectID(),
		StoreID:     primitive.NewObjectID(),
		Name:        "Leather Satchel",
		Slug:        "leather-satchel-0042",
		Price:       250000,
		ProductType: models.ProductTypePhysical,
		Stock:       12,
	}
}

func TestGet_Success(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	product := testProduct()
	productID := product.ID.Hex()

	// Manually set data in miniredis
	productJSON, _ := json.Marshal(product)
	mr.Set(cacheKey(productID), string(productJSON))

	result, err := cache.Get(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, product.ID, result.ID)
	assert.Equal(t, "Leather Satchel", result.Name)
	assert.Equal(t, int64(250000), result.Price)
}

func TestGet_CacheMiss(t *testing.T) {
	cache, _, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()

	result, err := cache.Get(ctx, "nonexistent")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, result)
}

func TestGet_InvalidJSON(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	product := testProduct()
	productID := product.ID.Hex()

	productJSON, err := json.Marshal(product)
	require.NoError(t, err)
	truncated := productJSON[0:10]
	require.NoError(t, mr.Set(cacheKey(productID), string(truncated)))

	_, cacheErr := cache.Get(ctx, productID)
	require.ErrorContains(t, cacheErr, "unmarshal product failed")
}

func TestSet_Success(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	product := testProduct()
	productID := product.ID.Hex()

	err := cache.Set(ctx, productID, product)
	require.NoError(t, err)

	// Verify data was stored correctly in miniredis
	stored, err := mr.Get(cacheKey(productID))
	require.NoError(t, err)
	assert.NotEmpty(t, stored)

	var storedProduct models.Product
	require.NoError(t, json.Unmarshal([]byte(stored), &storedProduct))
	assert.Equal(t, product.ID, storedProduct.ID)
	assert.Equal(t, product.Slug, storedProduct.Slug)
}

func TestSet_WithTTL(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	product := testProduct()
	productID := product.ID.Hex()

	err := cache.Set(ctx, productID, product)
	require.NoError(t, err)

	// Jitter adds 0 to 4 minutes on top of the 15 minute base
	ttl := mr.TTL(cacheKey(productID))
	assert.True(t, ttl >= 15*time.Minute, "TTL should be at least base TTL")
	assert.True(t, ttl < 20*time.Minute, "TTL should be base + max jitter")
}

func TestDelete_Success(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	product := testProduct()
	productID := product.ID.Hex()

	productJSON, _ := json.Marshal(product)
	mr.Set(cacheKey(productID), string(productJSON))
	assert.True(t, mr.Exists(cacheKey(productID)))

	err := cache.Delete(ctx, productID)
	require.NoError(t, err)

	assert.False(t, mr.Exists(cacheKey(productID)))
}

func TestDelete_NonExistentKey(t *testing.T) {
	cache, _, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()

	// Deleting non-existent key should not error
	err := cache.Delete(ctx, "nonexistent")
	assert.NoError(t, err)
}

func TestCacheKey_Format(t *testing.T) {
	key := cacheKey("abc123")
	assert.Equal(t, "product:abc123", key)
}
