package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"walletwatch/internal/models"
)

// TokenManager issues and validates admin session tokens. Session issuance
// is deliberately thin: a signed, time-limited HS256 credential carrying the
// admin identity.
type TokenManager struct {
	secret        string
	sessionExpiry time.Duration
}

// NewTokenManager creates a new TokenManager
func NewTokenManager(secret string, sessionExpiry time.Duration) *TokenManager {
	return &TokenManager{
		secret:        secret,
		sessionExpiry: sessionExpiry,
	}
}

// GenerateSessionToken creates a session token for a verified admin identity
func (tm *TokenManager) GenerateSessionToken(adminID, username string) (string, error) {
	now := time.Now()
	claims := &models.SessionClaims{
		AdminID:  adminID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.sessionExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(tm.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken verifies a session token and returns its claims
func (tm *TokenManager) ValidateToken(tokenString string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(tm.secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}

	if claims.AdminID == "" {
		return nil, fmt.Errorf("token missing admin identity")
	}

	return claims, nil
}
