package formatter

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// All formatter errors report a precondition the input violated. None are
// transient; retrying with the same input fails the same way.

// EmptyOrderError reports an order that has no sub-orders at all.
type EmptyOrderError struct {
	OrderID primitive.ObjectID
}

func (e *EmptyOrderError) Error() string {
	return fmt.Sprintf("order %s has no sub-orders", e.OrderID.Hex())
}

// UnpopulatedStoreError reports a sub-order whose store is still a bare
// reference instead of a populated document.
type UnpopulatedStoreError struct {
	OrderID       primitive.ObjectID
	SubOrderIndex int
}

func (e *UnpopulatedStoreError) Error() string {
	return fmt.Sprintf("order %s: sub-order %d: store is not populated", e.OrderID.Hex(), e.SubOrderIndex)
}

// UnpopulatedProductError reports a line item whose product is still a bare
// reference instead of a populated document.
type UnpopulatedProductError struct {
	OrderID       primitive.ObjectID
	SubOrderIndex int
	ItemIndex     int
}

func (e *UnpopulatedProductError) Error() string {
	return fmt.Sprintf("order %s: sub-order %d: item %d: product is not populated",
		e.OrderID.Hex(), e.SubOrderIndex, e.ItemIndex)
}

// NoSubOrdersForStoreError reports that filtering an order down to one store
// left nothing to format.
type NoSubOrdersForStoreError struct {
	OrderID primitive.ObjectID
	StoreID primitive.ObjectID
}

func (e *NoSubOrdersForStoreError) Error() string {
	return fmt.Sprintf("order %s has no sub-orders for store %s", e.OrderID.Hex(), e.StoreID.Hex())
}

// UnpopulatedUserError reports an order whose user is still a bare reference;
// store-scoped formatting needs the customer document.
type UnpopulatedUserError struct {
	OrderID primitive.ObjectID
}

func (e *UnpopulatedUserError) Error() string {
	return fmt.Sprintf("order %s: user is not populated", e.OrderID.Hex())
}
