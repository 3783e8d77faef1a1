package formatter

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/Mishael-Joe/soraxi/models"
)

// PlaceholderImage is shown for products that carry no image of their own.
const PlaceholderImage = "/placeholder.svg"

// DefaultMaxQuantity caps purchases of products that declare no limit.
const DefaultMaxQuantity = 99

// HydratedCartItem is a display-ready cart line. It is derived per request
// and never persisted. ID combines the product's hex id with the size label,
// or "nosize" when no size was selected.
type HydratedCartItem struct {
	ID          string `json:"id"`
	ProductID   string `json:"product_id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Image       string `json:"image"`
	Price       int64  `json:"price"`
	Quantity    int    `json:"quantity"`
	Size        string `json:"size,omitempty"`
	InStock     bool   `json:"in_stock"`
	MaxQuantity int    `json:"max_quantity"`
}

// HydrationWarning records a cart item dropped during hydration, naming the
// product so the caller can log it.
type HydrationWarning struct {
	ProductID string
	Reason    string
}

func (w HydrationWarning) String() string {
	return fmt.Sprintf("cart item for product %s skipped: %s", w.ProductID, w.Reason)
}

// HydrateCart merges stored cart items with live product records keyed by hex
// id. An item whose product is missing, or whose price is not positive, is
// skipped with a warning; hydration itself never fails. Orders stay strict,
// carts stay lenient.
func HydrateCart(items []models.CartItem, productsByID map[string]models.Product) ([]HydratedCartItem, []HydrationWarning) {
	hydrated := make([]HydratedCartItem, 0, len(items))
	var warnings []HydrationWarning

	for _, item := range items {
		productHex := item.ProductID.Hex()
		product, ok := productsByID[productHex]
		if !ok {
			warnings = append(warnings, HydrationWarning{ProductID: productHex, Reason: "product not found"})
			continue
		}

		// The size price snapshot taken at add time wins over the base price.
		price := product.Price
		if item.SelectedSize != nil {
			price = item.SelectedSize.Price
		}
		if price <= 0 {
			warnings = append(warnings, HydrationWarning{ProductID: productHex, Reason: "invalid price"})
			continue
		}

		sizeLabel := item.SizeLabel()
		key := productHex + "-nosize"
		if sizeLabel != "" {
			key = productHex + "-" + sizeLabel
		}

		image := PlaceholderImage
		if len(product.Images) > 0 && product.Images[0] != "" {
			image = product.Images[0]
		}

		hydrated = append(hydrated, HydratedCartItem{
			ID:          key,
			ProductID:   productHex,
			Name:        product.Name,
			Slug:        product.Slug,
			Image:       image,
			Price:       price,
			Quantity:    item.Quantity,
			Size:        sizeLabel,
			InStock:     lo.FromPtrOr(product.InStock, true),
			MaxQuantity: lo.FromPtrOr(product.MaxQuantity, DefaultMaxQuantity),
		})
	}

	return hydrated, warnings
}
