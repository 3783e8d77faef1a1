package controllers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	validatorv10 "github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/Mishael-Joe/soraxi/models"
	"github.com/Mishael-Joe/soraxi/utils"
)

// UserController handles user-related requests
type UserController struct {
	Collection   *mongo.Collection
	EmailService *utils.EmailService
	Validate     *validatorv10.Validate
}

// NewUserController creates a new UserController with EmailService
func NewUserController(db *mongo.Database, emailService *utils.EmailService, validate *validatorv10.Validate) *UserController {
	return &UserController{
		Collection:   db.Collection("users"),
		EmailService: emailService,
		Validate:     validate,
	}
}

type registerRequest struct {
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	PhoneNumber string `json:"phone_number"`
}

// Register handles user registration
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := utils.BindAndValidate(w, r, uc.Validate, &req); err != nil {
		return
	}

	// Check if user already exists
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	count, err := uc.Collection.CountDocuments(ctx, bson.M{"email": req.Email})
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if count > 0 {
		http.Error(w, "User already exists", http.StatusBadRequest)
		return
	}

	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Error hashing password", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	user := models.User{
		ID:          primitive.NewObjectID(),
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Password:    string(hashedPassword),
		PhoneNumber: req.PhoneNumber,
		Role:        "user",
		IsVerified:  false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// Generate verification token
	verificationToken, err := utils.GenerateJWT(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		http.Error(w, "Error generating verification token", http.StatusInternalServerError)
		return
	}
	user.VerificationToken = verificationToken

	// Insert the user into the database. The unique email index catches the
	// duplicate the pre-check raced with.
	if _, err := uc.Collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			http.Error(w, "User already exists", http.StatusBadRequest)
			return
		}
		http.Error(w, "Error creating user", http.StatusInternalServerError)
		return
	}

	// Send verification email off the request path
	go func(email, token string) {
		if err := uc.EmailService.SendVerificationEmail(email, token); err != nil {
			log.Printf("Failed to send verification email to %s: %v", email, err)
		}
	}(user.Email, verificationToken)

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode("User registered successfully. Please check your email to verify your account.")
}

// VerifyEmail handles email verification
func (uc *UserController) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Verification token missing", http.StatusBadRequest)
		return
	}

	claims := &utils.Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return utils.JwtKey, nil
	})

	if err != nil {
		http.Error(w, "Invalid token", http.StatusBadRequest)
		return
	}

	// Find the user with the verification token
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var user models.User
	err = uc.Collection.FindOne(ctx, bson.M{"verification_token": token}).Decode(&user)
	if err != nil {
		http.Error(w, "User not found or already verified", http.StatusBadRequest)
		return
	}

	// Update the user's verification status
	_, err = uc.Collection.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{
		"$set": bson.M{
			"is_verified":        true,
			"verification_token": "",
			"updated_at":         time.Now(),
		},
	})
	if err != nil {
		http.Error(w, "Error updating user verification status", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode("Email verified successfully. You can now log in.")
}

// Login handles user authentication
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if err := utils.BindAndValidate(w, r, uc.Validate, &creds); err != nil {
		return
	}

	// Find the user in the database
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var user models.User
	err := uc.Collection.FindOne(ctx, bson.M{"email": creds.Email}).Decode(&user)
	if err != nil {
		http.Error(w, "User not found", http.StatusUnauthorized)
		return
	}

	// Check if email is verified
	if !user.IsVerified {
		http.Error(w, "Email not verified", http.StatusUnauthorized)
		return
	}

	// Compare the hashed password
	err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(creds.Password))
	if err != nil {
		http.Error(w, "Invalid password", http.StatusUnauthorized)
		return
	}

	// Store owners get the store claim baked into their token
	var token string
	if user.StoreID != nil {
		token, err = utils.GenerateStoreJWT(user.ID.Hex(), user.Email, user.Role, user.StoreID.Hex())
	} else {
		token, err = utils.GenerateJWT(user.ID.Hex(), user.Email, user.Role)
	}
	if err != nil {
		http.Error(w, "Error generating token", http.StatusInternalServerError)
		return
	}

	// Return the token
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"token": token})
}

// GetProfile retrieves the authenticated user's profile
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authedUser(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	// Find the user in the database
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var user models.User
	err := uc.Collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}
