package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// APIKeyManager handles read-API key generation, hashing, and validation
type APIKeyManager struct {
	prefix string
}

// NewAPIKeyManager creates a new APIKeyManager
func NewAPIKeyManager() *APIKeyManager {
	return &APIKeyManager{
		prefix: "ww_",
	}
}

// GenerateAPIKey generates a new API key in the format: ww_<64 hex chars>.
// Returns the plaintext key (shown once) and its SHA-256 hash (stored).
func (m *APIKeyManager) GenerateAPIKey() (plainKey, hash string, err error) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	plainKey = m.prefix + hex.EncodeToString(randomBytes)

	hashBytes := sha256.Sum256([]byte(plainKey))
	hash = hex.EncodeToString(hashBytes[:])

	return plainKey, hash, nil
}

// ValidateAndHashAPIKey validates the key format and returns the hash used
// for lookup.
func (m *APIKeyManager) ValidateAndHashAPIKey(plainKey string) (string, error) {
	if !strings.HasPrefix(plainKey, m.prefix) {
		return "", errors.New("invalid API key format: missing prefix")
	}
	if len(plainKey) != len(m.prefix)+64 {
		return "", fmt.Errorf("invalid API key format: expected %d chars, got %d", len(m.prefix)+64, len(plainKey))
	}
	hashBytes := sha256.Sum256([]byte(plainKey))
	return hex.EncodeToString(hashBytes[:]), nil
}

// KeyPrefix returns the first 10 characters of the key (for display)
func (m *APIKeyManager) KeyPrefix(plainKey string) (string, error) {
	if len(plainKey) < 10 {
		return "", errors.New("API key too short")
	}
	return plainKey[:10], nil
}

// ConstantTimeHashCompare compares two SHA-256 hex hashes in constant time
func ConstantTimeHashCompare(hash1, hash2 string) bool {
	return subtle.ConstantTimeCompare([]byte(hash1), []byte(hash2)) == 1
}
