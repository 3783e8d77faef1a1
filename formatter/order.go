package formatter

import (
	"fmt"
	"log"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Mishael-Joe/soraxi/models"
)

// FormatSubOrder projects one sub-order into its client-safe shape. The
// parent order's id and the sub-order's position feed error reporting only.
// The store and every line item's product must be populated; a bare reference
// is a hard stop for this sub-order, with no retry.
func FormatSubOrder(orderID primitive.ObjectID, index int, sub models.SubOrder) (FormattedSubOrder, error) {
	store, ok := sub.Store.Doc()
	if !ok {
		return FormattedSubOrder{}, &UnpopulatedStoreError{OrderID: orderID, SubOrderIndex: index}
	}

	items := make([]FormattedLineItem, 0, len(sub.Products))
	for i, li := range sub.Products {
		product, ok := li.Product.Doc()
		if !ok {
			return FormattedSubOrder{}, &UnpopulatedProductError{
				OrderID:       orderID,
				SubOrderIndex: index,
				ItemIndex:     i,
			}
		}
		items = append(items, FormattedLineItem{
			ID: li.ID.Hex(),
			Product: ProductSummary{
				ID:          li.Product.ID().Hex(),
				Name:        product.Name,
				Images:      product.Images,
				Price:       product.Price,
				ProductType: product.ProductType,
				StoreID:     product.StoreID.Hex(),
			},
			StoreID:      li.StoreID.Hex(),
			Quantity:     li.Quantity,
			PriceAtOrder: li.PriceAtOrder,
			SelectedSize: li.SelectedSize,
		})
	}

	return FormattedSubOrder{
		ID: sub.ID.Hex(),
		Store: StoreSummary{
			ID:         sub.Store.ID().Hex(),
			Name:       store.Name,
			StoreEmail: store.StoreEmail,
			LogoURL:    store.LogoURL,
		},
		Products:          items,
		TotalAmount:       sub.TotalAmount,
		DeliveryStatus:    sub.DeliveryStatus,
		ShippingMethod:    sub.ShippingMethod,
		TrackingNumber:    sub.TrackingNumber,
		DeliveryDate:      sub.DeliveryDate,
		CustomerConfirmed: sub.CustomerConfirmed,
		Escrow:            sub.Escrow,
		ReturnWindow:      sub.ReturnWindow,
	}, nil
}

// FormatOrder validates and assembles the full client-safe order. An order
// with zero sub-orders is rejected, and any sub-order failure aborts the
// whole order; no partial order is ever returned. TotalAmount passes through
// exactly as stored. Pure function, no I/O.
func FormatOrder(order models.Order) (FormattedOrder, error) {
	if len(order.SubOrders) == 0 {
		return FormattedOrder{}, &EmptyOrderError{OrderID: order.ID}
	}

	subs := make([]FormattedSubOrder, 0, len(order.SubOrders))
	for i, sub := range order.SubOrders {
		formatted, err := FormatSubOrder(order.ID, i, sub)
		if err != nil {
			return FormattedOrder{}, err
		}
		subs = append(subs, formatted)
	}

	return FormattedOrder{
		ID:     order.ID.Hex(),
		UserID: order.User.ID().Hex(),
		Stores: lo.Map(order.Stores, func(id primitive.ObjectID, _ int) string {
			return id.Hex()
		}),
		SubOrders:       subs,
		TotalAmount:     order.TotalAmount,
		PaymentStatus:   order.PaymentStatus,
		PaymentMethod:   order.PaymentMethod,
		PaymentRef:      order.PaymentRef,
		ShippingAddress: order.ShippingAddress,
		Notes:           order.Notes,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}, nil
}

// FormatOrders formats a batch of orders. One malformed order aborts the
// whole batch: the failure is logged with the order's position and returned
// wrapped with that order's id. Callers wanting best-effort semantics must
// filter before calling.
func FormatOrders(orders []models.Order) ([]FormattedOrder, error) {
	formatted := make([]FormattedOrder, 0, len(orders))
	for i, order := range orders {
		f, err := FormatOrder(order)
		if err != nil {
			log.Printf("formatting order at index %d failed: %v", i, err)
			return nil, fmt.Errorf("format order %s: %w", order.ID.Hex(), err)
		}
		formatted = append(formatted, f)
	}
	return formatted, nil
}

// FormatOrderForStore formats only the slice of an order that belongs to one
// store. The returned total is recomputed as the sum of the matching
// sub-orders' totals so a store never sees revenue from other stores or
// platform shipping and tax. The order's user must be populated; the customer
// summary defaults the phone number to "unknown" when absent.
func FormatOrderForStore(order models.Order, storeID primitive.ObjectID) (FormattedStoreOrder, error) {
	var matching []models.SubOrder
	for _, sub := range order.SubOrders {
		if sub.Store.ID() == storeID {
			matching = append(matching, sub)
		}
	}
	if len(matching) == 0 {
		return FormattedStoreOrder{}, &NoSubOrdersForStoreError{OrderID: order.ID, StoreID: storeID}
	}

	user, ok := order.User.Doc()
	if !ok {
		return FormattedStoreOrder{}, &UnpopulatedUserError{OrderID: order.ID}
	}

	scoped := order
	scoped.SubOrders = matching
	scoped.TotalAmount = 0
	for _, sub := range matching {
		scoped.TotalAmount += sub.TotalAmount
	}

	formatted, err := FormatOrder(scoped)
	if err != nil {
		return FormattedStoreOrder{}, err
	}

	phone := user.PhoneNumber
	if phone == "" {
		phone = "unknown"
	}

	return FormattedStoreOrder{
		FormattedOrder: formatted,
		Customer: CustomerSummary{
			ID:          order.User.ID().Hex(),
			FirstName:   user.FirstName,
			LastName:    user.LastName,
			Email:       user.Email,
			PhoneNumber: phone,
		},
	}, nil
}
