package models

import (
	"encoding/json"
	"strconv"
	"time"
)

// Setting keys consumed by the abuse-control pipeline. All values are stored
// as strings; booleans and JSON are encoded as strings and decoded
// defensively by the consumer.
const (
	SettingRecaptchaEnabled        = "recaptchaEnabled"
	SettingRateLimitWindowMinutes  = "rateLimitWindowMinutes"
	SettingRateLimitMaxSubmissions = "rateLimitMaxSubmissions"
	SettingLoginMaxAttempts        = "loginMaxAttempts"
	SettingLoginLockoutMinutes     = "loginLockoutMinutes"
	SettingBlocklist               = "blocklist"
)

// Policy defaults applied when a setting is missing or unparseable.
const (
	DefaultRateLimitWindowMinutes  = 15
	DefaultRateLimitMaxSubmissions = 5
	DefaultLoginMaxAttempts        = 5
	DefaultLoginLockoutMinutes     = 15
	DefaultRecaptchaEnabled        = true
)

// SystemSetting is a single key-value configuration row.
type SystemSetting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SystemSettings is a convenience map for accessing settings by key.
type SystemSettings map[string]string

// Get returns the value for a key, or the fallback if the key is missing or
// empty.
func (s SystemSettings) Get(key, fallback string) string {
	if v, ok := s[key]; ok && v != "" {
		return v
	}
	return fallback
}

// GetInt parses an integer setting, returning the fallback on any parse
// failure or non-positive value.
func (s SystemSettings) GetInt(key string, fallback int) int {
	v, ok := s[key]
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// GetBool parses a boolean setting. Values may be stored either as JSON
// ("true") or as a bare string; both decode. Anything else returns the
// fallback.
func (s SystemSettings) GetBool(key string, fallback bool) bool {
	v, ok := s[key]
	if !ok || v == "" {
		return fallback
	}
	var b bool
	if err := json.Unmarshal([]byte(v), &b); err == nil {
		return b
	}
	return v == "true"
}
