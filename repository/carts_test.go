package repository

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Mishael-Joe/soraxi/models"
)

func TestCartLineFilter_DemandsTheLine(t *testing.T) {
	userID := primitive.NewObjectID()
	productID := primitive.NewObjectID()
	storeID := primitive.NewObjectID()

	tests := []struct {
		name string
		item models.CartItem
		want bson.M
	}{
		{
			name: "sized line",
			item: models.CartItem{
				ProductID:    productID,
				StoreID:      storeID,
				ProductType:  models.ProductTypePhysical,
				SelectedSize: &models.SelectedSize{Size: "M", Price: 2500},
			},
			want: bson.M{
				"user_id": userID,
				"items": bson.M{"$elemMatch": bson.M{
					"product_id":         productID,
					"product_type":       models.ProductTypePhysical,
					"store_id":           storeID,
					"selected_size.size": "M",
				}},
			},
		},
		{
			name: "line without a size",
			item: models.CartItem{
				ProductID:   productID,
				StoreID:     storeID,
				ProductType: models.ProductTypeDigital,
			},
			want: bson.M{
				"user_id": userID,
				"items": bson.M{"$elemMatch": bson.M{
					"product_id":    productID,
					"product_type":  models.ProductTypeDigital,
					"store_id":      storeID,
					"selected_size": bson.M{"$exists": false},
				}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cartLineFilter(userID, tt.item)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("cartLineFilter mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// A quantity update matches the cart through cartLineFilter and targets the
// line through identityArrayFilter; the two must agree on what a line's
// identity is, or the update could match on one line and write another.
func TestIdentityArrayFilter_AgreesWithIdentityMatch(t *testing.T) {
	productID := primitive.NewObjectID()
	storeID := primitive.NewObjectID()

	items := []models.CartItem{
		{
			ProductID:    productID,
			StoreID:      storeID,
			ProductType:  models.ProductTypePhysical,
			SelectedSize: &models.SelectedSize{Size: "XL", Price: 4000},
		},
		{
			ProductID:   productID,
			StoreID:     storeID,
			ProductType: models.ProductTypeDigital,
		},
	}

	for _, item := range items {
		match := identityMatch(item)
		elem := identityArrayFilter(item)

		require.Len(t, elem, len(match))
		for key, want := range match {
			assert.Equal(t, want, elem["elem."+key], "key %q", key)
		}
	}
}
