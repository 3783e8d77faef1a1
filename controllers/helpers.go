package controllers

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Mishael-Joe/soraxi/middleware"
	"github.com/Mishael-Joe/soraxi/utils"
)

// authedUser pulls the JWT claims off the request context and parses the
// subject's object id. A false return means the request cannot be trusted.
func authedUser(r *http.Request) (*utils.Claims, primitive.ObjectID, bool) {
	claims, ok := r.Context().Value(middleware.UserContextKey).(*utils.Claims)
	if !ok {
		return nil, primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, primitive.NilObjectID, false
	}
	return claims, userID, true
}

// storeFromClaims parses the store id claim minted for store owners.
func storeFromClaims(claims *utils.Claims) (primitive.ObjectID, bool) {
	storeID, err := primitive.ObjectIDFromHex(claims.StoreID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return storeID, true
}
