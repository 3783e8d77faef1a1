package utils

import (
	"time"

	"github.com/dgrijalva/jwt-go"
)

// JWT Secret Key
var JwtKey = []byte("your_secret_key") // This will be loaded from .env

// Claims represents the JWT claims. StoreID is only present on tokens issued
// to store owners.
type Claims struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	StoreID string `json:"store_id,omitempty"`
	jwt.StandardClaims
}

// GenerateJWT generates a JWT token for a user
func GenerateJWT(userID, email, role string) (string, error) {
	return generateToken(&Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(24 * time.Hour).Unix(),
		},
	})
}

// GenerateStoreJWT generates a JWT token carrying the owner's store id. Store
// routes require this claim.
func GenerateStoreJWT(userID, email, role, storeID string) (string, error) {
	return generateToken(&Claims{
		UserID:  userID,
		Email:   email,
		Role:    role,
		StoreID: storeID,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(24 * time.Hour).Unix(),
		},
	})
}

func generateToken(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(JwtKey)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}
