package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Address represents a delivery address
type Address struct {
	Street     string `bson:"street" json:"street"`
	City       string `bson:"city" json:"city"`
	State      string `bson:"state" json:"state"`
	PostalCode string `bson:"postal_code" json:"postal_code"`
	Country    string `bson:"country,omitempty" json:"country,omitempty"`
}

// User represents a user in the system
type User struct {
	ID                primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	FirstName         string              `bson:"first_name" json:"first_name"`
	LastName          string              `bson:"last_name" json:"last_name"`
	Email             string              `bson:"email" json:"email"`
	Password          string              `bson:"password,omitempty" json:"-"`
	PhoneNumber       string              `bson:"phone_number,omitempty" json:"phone_number,omitempty"`
	Address           Address             `bson:"address" json:"address"`
	Role              string              `bson:"role" json:"role"` // "user" or "admin"
	StoreID           *primitive.ObjectID `bson:"store_id,omitempty" json:"store_id,omitempty"`
	IsVerified        bool                `bson:"is_verified" json:"is_verified"`
	VerificationToken string              `bson:"verification_token,omitempty" json:"-"`
	CreatedAt         time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time           `bson:"updated_at" json:"updated_at"`
}
