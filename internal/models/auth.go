package models

import "github.com/golang-jwt/jwt/v5"

// SessionClaims are the claims carried by an admin session token.
type SessionClaims struct {
	AdminID  string `json:"admin_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
