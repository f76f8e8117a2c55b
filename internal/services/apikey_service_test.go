package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walletwatch/internal/auth"
	"walletwatch/internal/models"
)

func newAPIKeyService(repo *MockAPIKeyRepository) *APIKeyService {
	return NewAPIKeyService(repo, auth.NewAPIKeyManager(), newTestLogger(), &MockAuditRecorder{})
}

func TestAPIKeyCreateAndAuthenticate(t *testing.T) {
	store := map[string]*models.APIKey{}
	repo := &MockAPIKeyRepository{
		CreateFunc: func(ctx context.Context, key *models.APIKey) (*models.APIKey, error) {
			key.ID = "key_1"
			store[key.KeyHash] = key
			return key, nil
		},
		GetByHashFunc: func(ctx context.Context, hash string) (*models.APIKey, error) {
			if key, ok := store[hash]; ok {
				return key, nil
			}
			return nil, models.ErrNotFound
		},
	}
	svc := newAPIKeyService(repo)

	generated, err := svc.Create(context.Background(), "partner-feed", models.APIKeyTierLimited)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(generated.PlainKey, "ww_"))
	assert.Len(t, generated.PlainKey, 3+64)
	assert.Equal(t, generated.PlainKey[:10], generated.APIKey.KeyPrefix)
	assert.NotContains(t, generated.PlainKey, generated.APIKey.KeyHash)

	key, err := svc.Authenticate(context.Background(), generated.PlainKey)
	require.NoError(t, err)
	assert.Equal(t, "key_1", key.ID)
	assert.Equal(t, "partner-feed", key.Owner)
}

func TestAPIKeyCreateValidatesInput(t *testing.T) {
	svc := newAPIKeyService(&MockAPIKeyRepository{})

	_, err := svc.Create(context.Background(), "", models.APIKeyTierLimited)
	assert.ErrorIs(t, err, models.ErrBadRequest)

	_, err = svc.Create(context.Background(), "owner", "PLATINUM")
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestAPIKeyAuthenticateRejectsMalformed(t *testing.T) {
	svc := newAPIKeyService(&MockAPIKeyRepository{})

	for _, key := range []string{"", "ww_short", "xx_" + strings.Repeat("a", 64)} {
		_, err := svc.Authenticate(context.Background(), key)
		assert.ErrorIs(t, err, models.ErrAPIKeyInvalid)
	}
}

func TestAPIKeyAuthenticateUnknownKey(t *testing.T) {
	svc := newAPIKeyService(&MockAPIKeyRepository{})

	_, err := svc.Authenticate(context.Background(), "ww_"+strings.Repeat("a", 64))
	assert.ErrorIs(t, err, models.ErrAPIKeyInvalid)
}
