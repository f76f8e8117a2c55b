package logger

import (
	"log/slog"
	"strings"
)

// SanitizedWallet masks a wallet address for logging, keeping only the first
// and last four characters.
func SanitizedWallet(address string) string {
	if len(address) <= 8 {
		return "[short-address]"
	}
	return address[:4] + strings.Repeat("*", len(address)-8) + address[len(address)-4:]
}

// RedactedAttr returns a redacted slog attribute for sensitive values.
// In production, returns "[REDACTED]"; in development, returns the actual value
func RedactedAttr(key, value, env string) slog.Attr {
	if env == "production" {
		return slog.String(key, "[REDACTED]")
	}
	return slog.String(key, value)
}

// SanitizeQueryString checks if a query string contains sensitive parameters
// and returns true if the entire query string should be redacted
func SanitizeQueryString(rawQuery string) bool {
	sensitiveParams := []string{
		"password",
		"token",
		"secret",
		"api_key",
		"apikey",
		"recaptcha",
		"auth",
	}

	query := strings.ToLower(rawQuery)
	for _, param := range sensitiveParams {
		if strings.Contains(query, param) {
			return true
		}
	}
	return false
}
