package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims is the identity claim carried by access tokens.
// Batches authenticate as a single shared caller, so UserID holds the batch id for them.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	FullName string   `json:"full_name,omitempty"`
	jwt.RegisteredClaims
}
