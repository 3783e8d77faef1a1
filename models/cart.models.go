package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SelectedSize captures the size variant chosen when the item was added.
// The price is a snapshot in kobo taken at add time.
type SelectedSize struct {
	Size  string `bson:"size" json:"size"`
	Price int64  `bson:"price" json:"price"`
}

// CartItem represents an item in the cart. Identity of a cart line is the
// combination of product id, product type, store id and selected size label;
// adding a matching item merges quantities instead of appending a duplicate.
type CartItem struct {
	ProductID    primitive.ObjectID `bson:"product_id" json:"product_id"`
	StoreID      primitive.ObjectID `bson:"store_id" json:"store_id"`
	Quantity     int                `bson:"quantity" json:"quantity"`
	ProductType  ProductType        `bson:"product_type" json:"product_type"`
	SelectedSize *SelectedSize      `bson:"selected_size,omitempty" json:"selected_size,omitempty"`
	AddedAt      time.Time          `bson:"added_at" json:"added_at"`
}

// SizeLabel returns the selected size label, or "" when no size was chosen.
func (i CartItem) SizeLabel() string {
	if i.SelectedSize == nil {
		return ""
	}
	return i.SelectedSize.Size
}

// SameIdentity reports whether two cart items refer to the same purchasable
// thing and should be merged.
func (i CartItem) SameIdentity(other CartItem) bool {
	return i.ProductID == other.ProductID &&
		i.ProductType == other.ProductType &&
		i.StoreID == other.StoreID &&
		i.SizeLabel() == other.SizeLabel()
}

// Cart represents a user's shopping cart. One cart per user.
type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Items     []CartItem         `bson:"items" json:"items"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// AddItem merges the item into the cart, incrementing quantity when an item
// with the same identity already exists.
func (c *Cart) AddItem(item CartItem) {
	for i := range c.Items {
		if c.Items[i].SameIdentity(item) {
			c.Items[i].Quantity += item.Quantity
			return
		}
	}
	c.Items = append(c.Items, item)
}

// SetQuantity replaces the quantity of the matching item. It returns false
// when no item with that identity is in the cart.
func (c *Cart) SetQuantity(item CartItem, quantity int) bool {
	for i := range c.Items {
		if c.Items[i].SameIdentity(item) {
			c.Items[i].Quantity = quantity
			return true
		}
	}
	return false
}

// RemoveItem deletes the matching item from the cart. It returns false when
// no item with that identity is in the cart.
func (c *Cart) RemoveItem(item CartItem) bool {
	for i := range c.Items {
		if c.Items[i].SameIdentity(item) {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}
