package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductType discriminates physical goods from digital ones. The two kinds
// live in separate collections, so a product reference is only meaningful
// together with its type.
type ProductType string

const (
	ProductTypePhysical ProductType = "physical"
	ProductTypeDigital  ProductType = "digital"
)

var validProductTypes = map[ProductType]struct{}{
	ProductTypePhysical: {},
	ProductTypeDigital:  {},
}

func ToProductType(s string) (ProductType, error) {
	t := ProductType(s)
	if _, ok := validProductTypes[t]; ok {
		return t, nil
	}
	return "", errors.New("invalid product type")
}

// Collection returns the MongoDB collection a product of this type lives in.
func (t ProductType) Collection() string {
	if t == ProductTypeDigital {
		return "digital_products"
	}
	return "products"
}

// ProductSize is a purchasable size variant with its own price and stock.
type ProductSize struct {
	Label    string `bson:"label" json:"label"`
	Price    int64  `bson:"price" json:"price"`
	Quantity int    `bson:"quantity" json:"quantity"`
}

// Product represents a product sold by a store. Prices are in kobo.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	StoreID     primitive.ObjectID `bson:"store_id" json:"store_id"`
	Name        string             `bson:"name" json:"name"`
	Slug        string             `bson:"slug" json:"slug"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Images      []string           `bson:"images,omitempty" json:"images,omitempty"`
	Price       int64              `bson:"price" json:"price"`
	ProductType ProductType        `bson:"product_type" json:"product_type"`
	Category    string             `bson:"category,omitempty" json:"category,omitempty"`
	Stock       int                `bson:"stock" json:"stock"`
	InStock     *bool              `bson:"in_stock,omitempty" json:"in_stock,omitempty"`         // nil means unknown
	MaxQuantity *int               `bson:"max_quantity,omitempty" json:"max_quantity,omitempty"` // nil means unknown
	Sizes       []ProductSize      `bson:"sizes,omitempty" json:"sizes,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// SizeByLabel returns the size variant with the given label.
func (p Product) SizeByLabel(label string) (ProductSize, bool) {
	for _, s := range p.Sizes {
		if s.Label == label {
			return s, true
		}
	}
	return ProductSize{}, false
}
