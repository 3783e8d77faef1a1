package cache

import (
	"context"
	"errors"

	"github.com/Mishael-Joe/soraxi/models"
)

// ProductCache keeps hot product documents out of Mongo. Keys are product hex
// ids; both collections share the namespace because ids never collide.
type ProductCache interface {
	Get(ctx context.Context, productID string) (*models.Product, error)
	Set(ctx context.Context, productID string, product *models.Product) error
	Delete(ctx context.Context, productID string) error
}

var ErrCacheMiss = errors.New("cache miss")
