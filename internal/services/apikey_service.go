package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"walletwatch/internal/auth"
	"walletwatch/internal/models"
)

// APIKeyRepository defines the interface for API key persistence
type APIKeyRepository interface {
	Create(ctx context.Context, key *models.APIKey) (*models.APIKey, error)
	GetByHash(ctx context.Context, keyHash string) (*models.APIKey, error)
	List(ctx context.Context) ([]*models.APIKey, error)
	TouchLastUsed(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// APIKeyService manages read-API keys: creation, listing, revocation, and
// request authentication by hash.
type APIKeyService struct {
	repo     APIKeyRepository
	manager  *auth.APIKeyManager
	logger   *slog.Logger
	recorder AuditRecorder
}

// NewAPIKeyService creates a new APIKeyService
func NewAPIKeyService(repo APIKeyRepository, manager *auth.APIKeyManager, logger *slog.Logger, recorder AuditRecorder) *APIKeyService {
	return &APIKeyService{
		repo:     repo,
		manager:  manager,
		logger:   logger,
		recorder: recorder,
	}
}

// Create mints a new key. The plaintext appears only in this response.
func (s *APIKeyService) Create(ctx context.Context, owner, tier string) (*models.GeneratedAPIKey, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" || !models.ValidAPIKeyTier(tier) {
		return nil, models.ErrBadRequest
	}

	plainKey, hash, err := s.manager.GenerateAPIKey()
	if err != nil {
		s.logger.Error("failed to generate api key", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	prefix, err := s.manager.KeyPrefix(plainKey)
	if err != nil {
		return nil, models.ErrInternalServer
	}

	created, err := s.repo.Create(ctx, &models.APIKey{
		KeyHash:   hash,
		KeyPrefix: prefix,
		Owner:     owner,
		Tier:      tier,
	})
	if err != nil {
		s.logger.Error("failed to store api key", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	reason := "created for " + owner
	s.recorder.Record(ctx, models.AuditEvent{
		EventType:     models.AuditEventAPIKeyOp,
		Success:       true,
		FailureReason: &reason,
	})

	s.logger.Info("api key created",
		slog.String("key_id", created.ID),
		slog.String("key_prefix", prefix),
		slog.String("tier", tier))

	return &models.GeneratedAPIKey{PlainKey: plainKey, APIKey: created}, nil
}

// List returns all keys without hashes.
func (s *APIKeyService) List(ctx context.Context) ([]*models.APIKey, error) {
	keys, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list api keys", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return keys, nil
}

// Delete revokes a key immediately.
func (s *APIKeyService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete api key", slog.String("key_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("api key deleted", slog.String("key_id", id))
	return nil
}

// Authenticate resolves a presented plaintext key to its record. Malformed
// and unknown keys both return ErrAPIKeyInvalid.
func (s *APIKeyService) Authenticate(ctx context.Context, plainKey string) (*models.APIKey, error) {
	hash, err := s.manager.ValidateAndHashAPIKey(plainKey)
	if err != nil {
		return nil, models.ErrAPIKeyInvalid
	}

	key, err := s.repo.GetByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrAPIKeyInvalid
		}
		s.logger.Error("failed to look up api key", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if !auth.ConstantTimeHashCompare(hash, key.KeyHash) {
		return nil, models.ErrAPIKeyInvalid
	}

	if err := s.repo.TouchLastUsed(ctx, key.ID); err != nil {
		s.logger.Warn("failed to update api key last_used_at", slog.String("key_id", key.ID), slog.Any("error", err))
	}

	return key, nil
}
