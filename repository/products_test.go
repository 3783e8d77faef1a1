package repository

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mishael-Joe/soraxi/models"
)

func TestProductUpdate_LeavesAbsentFlagsAlone(t *testing.T) {
	set := productUpdate(&models.Product{
		Name:  "Blue Hoodie",
		Price: 15000,
		Stock: 12,
	})

	_, hasInStock := set["in_stock"]
	assert.False(t, hasInStock, "nil in_stock must not be written")
	_, hasSlug := set["slug"]
	assert.False(t, hasSlug, "empty slug must not be written")

	assert.Equal(t, "Blue Hoodie", set["name"])
	assert.Equal(t, int64(15000), set["price"])
	assert.Equal(t, 12, set["stock"])
	require.Contains(t, set, "updated_at")
}

func TestProductUpdate_WritesPresentFlags(t *testing.T) {
	set := productUpdate(&models.Product{
		Name:    "Blue Hoodie",
		Slug:    "blue-hoodie-0042",
		InStock: lo.ToPtr(false),
	})

	assert.Equal(t, lo.ToPtr(false), set["in_stock"])
	assert.Equal(t, "blue-hoodie-0042", set["slug"])
}
