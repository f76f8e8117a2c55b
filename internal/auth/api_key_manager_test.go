package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAPIKeyFormat(t *testing.T) {
	m := NewAPIKeyManager()

	plainKey, hash, err := m.GenerateAPIKey()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(plainKey, "ww_"))
	assert.Len(t, plainKey, 3+64)
	assert.Len(t, hash, 64)

	// Validating the plaintext key must reproduce the stored hash
	computed, err := m.ValidateAndHashAPIKey(plainKey)
	require.NoError(t, err)
	assert.Equal(t, hash, computed)
}

func TestGenerateAPIKeyIsUnique(t *testing.T) {
	m := NewAPIKeyManager()

	first, _, err := m.GenerateAPIKey()
	require.NoError(t, err)
	second, _, err := m.GenerateAPIKey()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestValidateAndHashAPIKeyRejectsBadFormat(t *testing.T) {
	m := NewAPIKeyManager()

	tests := []struct {
		name string
		key  string
	}{
		{"missing prefix", strings.Repeat("a", 67)},
		{"too short", "ww_abc"},
		{"too long", "ww_" + strings.Repeat("a", 65)},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.ValidateAndHashAPIKey(tt.key)
			assert.Error(t, err)
		})
	}
}

func TestKeyPrefix(t *testing.T) {
	m := NewAPIKeyManager()

	plainKey, _, err := m.GenerateAPIKey()
	require.NoError(t, err)

	prefix, err := m.KeyPrefix(plainKey)
	require.NoError(t, err)
	assert.Equal(t, plainKey[:10], prefix)

	_, err = m.KeyPrefix("short")
	assert.Error(t, err)
}

func TestConstantTimeHashCompare(t *testing.T) {
	assert.True(t, ConstantTimeHashCompare("abc123", "abc123"))
	assert.False(t, ConstantTimeHashCompare("abc123", "abc124"))
	assert.False(t, ConstantTimeHashCompare("abc123", "abc1234"))
}
