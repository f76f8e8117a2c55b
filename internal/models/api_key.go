package models

import "time"

// API key tiers for the public read API.
const (
	APIKeyTierUnlimited = "UNLIMITED"
	APIKeyTierLimited   = "LIMITED"
)

// ValidAPIKeyTier reports whether tier is a known tier value.
func ValidAPIKeyTier(tier string) bool {
	return tier == APIKeyTierUnlimited || tier == APIKeyTierLimited
}

// APIKey grants read access to the public submissions API. Only the SHA-256
// hash of the key is stored; the plaintext is shown once at creation.
type APIKey struct {
	ID         string     `json:"id"`
	KeyHash    string     `json:"-"` // never exposed
	KeyPrefix  string     `json:"key_prefix"`
	Owner      string     `json:"owner"`
	Tier       string     `json:"tier"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// GeneratedAPIKey is the creation response, including the plaintext key.
type GeneratedAPIKey struct {
	PlainKey string  `json:"key"` // shown ONLY once at creation
	APIKey   *APIKey `json:"api_key"`
}
