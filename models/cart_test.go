package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func sizedItem(productID, storeID primitive.ObjectID, label string, quantity int) CartItem {
	return CartItem{
		ProductID:    productID,
		StoreID:      storeID,
		Quantity:     quantity,
		ProductType:  ProductTypePhysical,
		SelectedSize: &SelectedSize{Size: label, Price: 2500},
	}
}

func TestAddItem_MergesSameIdentity(t *testing.T) {
	productID := primitive.NewObjectID()
	storeID := primitive.NewObjectID()

	cart := Cart{UserID: primitive.NewObjectID()}
	cart.AddItem(sizedItem(productID, storeID, "M", 2))
	cart.AddItem(sizedItem(productID, storeID, "M", 1))

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
}

func TestAddItem_DifferentIdentityAppends(t *testing.T) {
	productID := primitive.NewObjectID()
	storeID := primitive.NewObjectID()

	tests := []struct {
		name  string
		other CartItem
	}{
		{name: "different size", other: sizedItem(productID, storeID, "L", 1)},
		{name: "no size at all", other: CartItem{ProductID: productID, StoreID: storeID, Quantity: 1, ProductType: ProductTypePhysical}},
		{name: "different product", other: sizedItem(primitive.NewObjectID(), storeID, "M", 1)},
		{name: "different store", other: sizedItem(productID, primitive.NewObjectID(), "M", 1)},
		{
			name: "different product type",
			other: CartItem{
				ProductID:    productID,
				StoreID:      storeID,
				Quantity:     1,
				ProductType:  ProductTypeDigital,
				SelectedSize: &SelectedSize{Size: "M", Price: 2500},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart := Cart{UserID: primitive.NewObjectID()}
			cart.AddItem(sizedItem(productID, storeID, "M", 2))
			cart.AddItem(tt.other)

			assert.Len(t, cart.Items, 2)
			assert.Equal(t, 2, cart.Items[0].Quantity)
		})
	}
}

func TestSetQuantity(t *testing.T) {
	productID := primitive.NewObjectID()
	storeID := primitive.NewObjectID()

	cart := Cart{UserID: primitive.NewObjectID()}
	cart.AddItem(sizedItem(productID, storeID, "M", 2))

	ok := cart.SetQuantity(sizedItem(productID, storeID, "M", 0), 7)
	require.True(t, ok)
	assert.Equal(t, 7, cart.Items[0].Quantity)

	ok = cart.SetQuantity(sizedItem(productID, storeID, "XL", 0), 7)
	assert.False(t, ok)
}

func TestRemoveItem(t *testing.T) {
	productID := primitive.NewObjectID()
	storeID := primitive.NewObjectID()

	cart := Cart{UserID: primitive.NewObjectID()}
	cart.AddItem(sizedItem(productID, storeID, "M", 2))
	cart.AddItem(sizedItem(productID, storeID, "L", 1))

	ok := cart.RemoveItem(sizedItem(productID, storeID, "M", 0))
	require.True(t, ok)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "L", cart.Items[0].SizeLabel())

	ok = cart.RemoveItem(sizedItem(productID, storeID, "M", 0))
	assert.False(t, ok)
}

func TestSizeLabel(t *testing.T) {
	item := CartItem{ProductID: primitive.NewObjectID()}
	assert.Equal(t, "", item.SizeLabel())

	item.SelectedSize = &SelectedSize{Size: "XXL", Price: 100}
	assert.Equal(t, "XXL", item.SizeLabel())
}
