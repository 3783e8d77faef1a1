package formatter

import (
	"time"

	"github.com/Mishael-Joe/soraxi/models"
)

// Client-safe projections of stored orders. All identifiers are hex strings,
// every shape is plain JSON, and nothing here points back into the documents
// it was built from.

// ProductSummary is the trimmed product carried on a formatted line item.
type ProductSummary struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Images      []string           `json:"images,omitempty"`
	Price       int64              `json:"price"`
	ProductType models.ProductType `json:"product_type"`
	StoreID     string             `json:"store_id"`
}

// StoreSummary is the trimmed store carried on a formatted sub-order.
type StoreSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	StoreEmail string `json:"store_email"`
	LogoURL    string `json:"logo_url,omitempty"`
}

// CustomerSummary is the denormalized customer attached to store-scoped
// orders so store owners can arrange fulfilment.
type CustomerSummary struct {
	ID          string `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

type FormattedLineItem struct {
	ID           string               `json:"id"`
	Product      ProductSummary       `json:"product"`
	StoreID      string               `json:"store_id"`
	Quantity     int                  `json:"quantity"`
	PriceAtOrder int64                `json:"price_at_order"`
	SelectedSize *models.SelectedSize `json:"selected_size,omitempty"`
}

type FormattedSubOrder struct {
	ID                string                 `json:"id"`
	Store             StoreSummary           `json:"store"`
	Products          []FormattedLineItem    `json:"products"`
	TotalAmount       int64                  `json:"total_amount"`
	DeliveryStatus    models.DeliveryStatus  `json:"delivery_status"`
	ShippingMethod    *models.ShippingMethod `json:"shipping_method,omitempty"`
	TrackingNumber    string                 `json:"tracking_number,omitempty"`
	DeliveryDate      *time.Time             `json:"delivery_date,omitempty"`
	CustomerConfirmed bool                   `json:"customer_confirmed_delivery"`
	Escrow            models.Escrow          `json:"escrow"`
	ReturnWindow      *time.Time             `json:"return_window,omitempty"`
}

type FormattedOrder struct {
	ID              string               `json:"id"`
	UserID          string               `json:"user_id"`
	Stores          []string             `json:"stores"`
	SubOrders       []FormattedSubOrder  `json:"sub_orders"`
	TotalAmount     int64                `json:"total_amount"`
	PaymentStatus   models.PaymentStatus `json:"payment_status"`
	PaymentMethod   models.PaymentMethod `json:"payment_method"`
	PaymentRef      string               `json:"payment_ref,omitempty"`
	ShippingAddress string               `json:"shipping_address"`
	Notes           string               `json:"notes,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// FormattedStoreOrder is one store's slice of an order. TotalAmount is the
// sum of the included sub-orders only, never the customer's grand total.
type FormattedStoreOrder struct {
	FormattedOrder
	Customer CustomerSummary `json:"customer"`
}
