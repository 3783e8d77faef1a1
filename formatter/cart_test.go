package formatter

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mishael-Joe/soraxi/models"
	"github.com/Mishael-Joe/soraxi/pricing"
)

func cartItem(product *models.Product, quantity int) models.CartItem {
	return models.CartItem{
		ProductID:   product.ID,
		StoreID:     product.StoreID,
		Quantity:    quantity,
		ProductType: product.ProductType,
	}
}

func productMap(products ...*models.Product) map[string]models.Product {
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID.Hex()] = *p
	}
	return byID
}

func TestHydrateCart_SkipsMissingProducts(t *testing.T) {
	store := fakeStore()
	present := fakeProduct(store.ID)
	present.Price = 1000
	vanished := fakeProduct(store.ID)

	items := []models.CartItem{
		cartItem(present, 2),
		cartItem(vanished, 1),
	}

	hydrated, warnings := HydrateCart(items, productMap(present))

	require.Len(t, hydrated, 1)
	assert.Equal(t, present.ID.Hex(), hydrated[0].ProductID)
	assert.Equal(t, int64(1000), hydrated[0].Price)
	assert.Equal(t, 2, hydrated[0].Quantity)

	require.Len(t, warnings, 1)
	assert.Equal(t, vanished.ID.Hex(), warnings[0].ProductID)
	assert.Equal(t, "product not found", warnings[0].Reason)

	// Surviving items still price normally
	summary := pricing.Summarize(lo.Map(hydrated, func(item HydratedCartItem, _ int) pricing.Line {
		return pricing.Line{Price: item.Price, Quantity: item.Quantity}
	}))
	assert.Equal(t, int64(2000), summary.Subtotal)
}

func TestHydrateCart_CompositeKeys(t *testing.T) {
	store := fakeStore()
	product := fakeProduct(store.ID)

	sized := cartItem(product, 1)
	sized.SelectedSize = &models.SelectedSize{Size: "M", Price: 2000}
	unsized := cartItem(product, 1)

	hydrated, warnings := HydrateCart([]models.CartItem{sized, unsized}, productMap(product))

	require.Empty(t, warnings)
	require.Len(t, hydrated, 2)
	assert.Equal(t, product.ID.Hex()+"-M", hydrated[0].ID)
	assert.Equal(t, "M", hydrated[0].Size)
	assert.Equal(t, product.ID.Hex()+"-nosize", hydrated[1].ID)
	assert.Equal(t, "", hydrated[1].Size)
}

func TestHydrateCart_Defaults(t *testing.T) {
	store := fakeStore()
	product := fakeProduct(store.ID)
	product.Images = nil
	product.InStock = nil
	product.MaxQuantity = nil

	hydrated, warnings := HydrateCart([]models.CartItem{cartItem(product, 1)}, productMap(product))

	require.Empty(t, warnings)
	require.Len(t, hydrated, 1)
	assert.Equal(t, PlaceholderImage, hydrated[0].Image)
	assert.True(t, hydrated[0].InStock)
	assert.Equal(t, DefaultMaxQuantity, hydrated[0].MaxQuantity)
}

func TestHydrateCart_ExplicitAvailability(t *testing.T) {
	store := fakeStore()
	product := fakeProduct(store.ID)
	product.Images = []string{"https://cdn.example.com/satchel.jpg"}
	product.InStock = lo.ToPtr(false)
	product.MaxQuantity = lo.ToPtr(5)

	hydrated, warnings := HydrateCart([]models.CartItem{cartItem(product, 1)}, productMap(product))

	require.Empty(t, warnings)
	require.Len(t, hydrated, 1)
	assert.Equal(t, "https://cdn.example.com/satchel.jpg", hydrated[0].Image)
	assert.False(t, hydrated[0].InStock)
	assert.Equal(t, 5, hydrated[0].MaxQuantity)
}

func TestHydrateCart_SizeSnapshotPriceWins(t *testing.T) {
	store := fakeStore()
	product := fakeProduct(store.ID)
	product.Price = 5000

	item := cartItem(product, 1)
	item.SelectedSize = &models.SelectedSize{Size: "L", Price: 4500}

	hydrated, warnings := HydrateCart([]models.CartItem{item}, productMap(product))

	require.Empty(t, warnings)
	require.Len(t, hydrated, 1)
	assert.Equal(t, int64(4500), hydrated[0].Price)
}

func TestHydrateCart_SkipsInvalidPrice(t *testing.T) {
	store := fakeStore()

	freebie := fakeProduct(store.ID)
	freebie.Price = 0

	// A dead size snapshot is invalid even when the base price is fine
	snapshot := fakeProduct(store.ID)
	snapshot.Price = 1000
	snapshotItem := cartItem(snapshot, 1)
	snapshotItem.SelectedSize = &models.SelectedSize{Size: "S", Price: 0}

	hydrated, warnings := HydrateCart(
		[]models.CartItem{cartItem(freebie, 1), snapshotItem},
		productMap(freebie, snapshot),
	)

	assert.Empty(t, hydrated)
	require.Len(t, warnings, 2)
	assert.Equal(t, "invalid price", warnings[0].Reason)
	assert.Equal(t, "invalid price", warnings[1].Reason)
}

func TestHydrateCart_EmptyCart(t *testing.T) {
	hydrated, warnings := HydrateCart(nil, map[string]models.Product{})

	assert.NotNil(t, hydrated)
	assert.Empty(t, hydrated)
	assert.Empty(t, warnings)
}

func TestHydrationWarning_String(t *testing.T) {
	w := HydrationWarning{ProductID: "abc123", Reason: "product not found"}
	assert.Equal(t, "cart item for product abc123 skipped: product not found", w.String())
}
