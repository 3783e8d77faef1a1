package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DeliveryStatus tracks a sub-order through fulfilment.
type DeliveryStatus string

const (
	DeliveryPending    DeliveryStatus = "pending"
	DeliveryProcessing DeliveryStatus = "processing"
	DeliveryShipped    DeliveryStatus = "shipped"
	DeliveryDelivered  DeliveryStatus = "delivered"
	DeliveryCanceled   DeliveryStatus = "canceled"
	DeliveryReturned   DeliveryStatus = "returned"
)

var validDeliveryStatuses = map[DeliveryStatus]struct{}{
	DeliveryPending:    {},
	DeliveryProcessing: {},
	DeliveryShipped:    {},
	DeliveryDelivered:  {},
	DeliveryCanceled:   {},
	DeliveryReturned:   {},
}

func ToDeliveryStatus(s string) (DeliveryStatus, error) {
	d := DeliveryStatus(s)
	if _, ok := validDeliveryStatuses[d]; ok {
		return d, nil
	}
	return "", errors.New("invalid delivery status")
}

// deliveryTransitions lists the legal next statuses for each status.
// Cancellation is only possible before the parcel ships; a return is only
// possible after delivery.
var deliveryTransitions = map[DeliveryStatus][]DeliveryStatus{
	DeliveryPending:    {DeliveryProcessing, DeliveryCanceled},
	DeliveryProcessing: {DeliveryShipped, DeliveryCanceled},
	DeliveryShipped:    {DeliveryDelivered},
	DeliveryDelivered:  {DeliveryReturned},
}

// CanTransitionTo reports whether moving from s to next is a legal step.
func (s DeliveryStatus) CanTransitionTo(next DeliveryStatus) bool {
	for _, allowed := range deliveryTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ReturnWindowDays is how long after delivery a customer may still return a
// sub-order. Escrow cannot be released while the window is open unless the
// customer has confirmed receipt.
const ReturnWindowDays = 7

// Escrow tracks the held funds of one sub-order.
type Escrow struct {
	Held       bool       `bson:"held" json:"held"`
	Released   bool       `bson:"released" json:"released"`
	ReleasedAt *time.Time `bson:"released_at,omitempty" json:"released_at,omitempty"`
	Refunded   bool       `bson:"refunded" json:"refunded"`
}

// ShippingMethod is the delivery option chosen for a sub-order. Price is in
// kobo.
type ShippingMethod struct {
	Name                  string `bson:"name" json:"name"`
	Price                 int64  `bson:"price" json:"price"`
	EstimatedDeliveryDays int    `bson:"estimated_delivery_days" json:"estimated_delivery_days"`
	Description           string `bson:"description,omitempty" json:"description,omitempty"`
}

// LineItem is one purchased product within a sub-order. Product is a
// reference that the repository populates on reads; stored orders keep the
// plain ObjectID. PriceAtOrder snapshots the unit price in kobo.
type LineItem struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Product      Ref[Product]       `bson:"product" json:"product"`
	ProductType  ProductType        `bson:"product_type" json:"product_type"`
	StoreID      primitive.ObjectID `bson:"store_id" json:"store_id"`
	Quantity     int                `bson:"quantity" json:"quantity"`
	PriceAtOrder int64              `bson:"price_at_order" json:"price_at_order"`
	SelectedSize *SelectedSize      `bson:"selected_size,omitempty" json:"selected_size,omitempty"`
}

// SubOrder is the slice of an order belonging to a single store. Its total is
// the sum of its line items only; platform shipping and tax accrue on the
// order itself.
type SubOrder struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Store             Ref[Store]         `bson:"store" json:"store"`
	Products          []LineItem         `bson:"products" json:"products"`
	TotalAmount       int64              `bson:"total_amount" json:"total_amount"`
	DeliveryStatus    DeliveryStatus     `bson:"delivery_status" json:"delivery_status"`
	ShippingMethod    *ShippingMethod    `bson:"shipping_method,omitempty" json:"shipping_method,omitempty"`
	TrackingNumber    string             `bson:"tracking_number,omitempty" json:"tracking_number,omitempty"`
	DeliveryDate      *time.Time         `bson:"delivery_date,omitempty" json:"delivery_date,omitempty"`
	CustomerConfirmed bool               `bson:"customer_confirmed_delivery" json:"customer_confirmed_delivery"`
	Escrow            Escrow             `bson:"escrow" json:"escrow"`
	ReturnWindow      *time.Time         `bson:"return_window,omitempty" json:"return_window,omitempty"`
}

// MarkDelivered stamps the delivery date and opens the return window.
func (s *SubOrder) MarkDelivered(at time.Time) {
	s.DeliveryStatus = DeliveryDelivered
	s.DeliveryDate = &at
	window := at.AddDate(0, 0, ReturnWindowDays)
	s.ReturnWindow = &window
}

// EscrowReleasable reports whether held funds may be paid out: the sub-order
// must be delivered and either confirmed by the customer or past its return
// window.
func (s SubOrder) EscrowReleasable(now time.Time) bool {
	if s.DeliveryStatus != DeliveryDelivered || !s.Escrow.Held || s.Escrow.Released || s.Escrow.Refunded {
		return false
	}
	if s.CustomerConfirmed {
		return true
	}
	return s.ReturnWindow != nil && now.After(*s.ReturnWindow)
}

// Order is a customer's purchase, split per store into sub-orders. User is a
// reference that the repository populates on reads. TotalAmount is the grand
// total in kobo including shipping and tax.
type Order struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	User            Ref[User]            `bson:"user" json:"user"`
	Stores          []primitive.ObjectID `bson:"stores" json:"stores"`
	SubOrders       []SubOrder           `bson:"sub_orders" json:"sub_orders"`
	TotalAmount     int64                `bson:"total_amount" json:"total_amount"`
	PaymentStatus   PaymentStatus        `bson:"payment_status" json:"payment_status"`
	PaymentMethod   PaymentMethod        `bson:"payment_method" json:"payment_method"`
	PaymentRef      string               `bson:"payment_ref,omitempty" json:"payment_ref,omitempty"`
	ShippingAddress string               `bson:"shipping_address" json:"shipping_address"`
	Notes           string               `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt       time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time            `bson:"updated_at" json:"updated_at"`
}

// FindSubOrder returns the index of the sub-order with the given id, or -1
// when the order has no such sub-order.
func (o Order) FindSubOrder(id primitive.ObjectID) int {
	for i := range o.SubOrders {
		if o.SubOrders[i].ID == id {
			return i
		}
	}
	return -1
}
