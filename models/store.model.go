package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StoreStatus is the lifecycle state of a store.
type StoreStatus string

const (
	StoreStatusPending   StoreStatus = "pending"
	StoreStatusActive    StoreStatus = "active"
	StoreStatusSuspended StoreStatus = "suspended"
)

var validStoreStatuses = map[StoreStatus]struct{}{
	StoreStatusPending:   {},
	StoreStatusActive:    {},
	StoreStatusSuspended: {},
}

func ToStoreStatus(s string) (StoreStatus, error) {
	status := StoreStatus(s)
	if _, ok := validStoreStatuses[status]; ok {
		return status, nil
	}
	return "", errors.New("invalid store status")
}

// Store represents a merchant storefront. A store must be active before its
// products are listed to shoppers.
type Store struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	StoreEmail  string             `bson:"store_email" json:"store_email"`
	LogoURL     string             `bson:"logo_url,omitempty" json:"logo_url,omitempty"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	OwnerID     primitive.ObjectID `bson:"owner_id" json:"owner_id"`
	Status      StoreStatus        `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}
