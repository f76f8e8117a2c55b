package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"walletwatch/internal/models"
)

// LookupRepository defines the interface for the reference tables
type LookupRepository interface {
	ListCategories(ctx context.Context) ([]*models.Category, error)
	GetCategory(ctx context.Context, id string) (*models.Category, error)
	ListCryptocurrencies(ctx context.Context) ([]*models.Cryptocurrency, error)
	GetCryptocurrency(ctx context.Context, id string) (*models.Cryptocurrency, error)
	SeedCategories(ctx context.Context, categories []models.Category) error
	SeedCryptocurrencies(ctx context.Context, coins []models.Cryptocurrency) error
}

// LookupService serves the read-only category and cryptocurrency lists and
// seeds them at startup.
type LookupService struct {
	repo   LookupRepository
	logger *slog.Logger
}

// NewLookupService creates a new LookupService
func NewLookupService(repo LookupRepository, logger *slog.Logger) *LookupService {
	return &LookupService{repo: repo, logger: logger}
}

func (s *LookupService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		s.logger.Error("failed to list categories", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return categories, nil
}

func (s *LookupService) ListCryptocurrencies(ctx context.Context) ([]*models.Cryptocurrency, error) {
	coins, err := s.repo.ListCryptocurrencies(ctx)
	if err != nil {
		s.logger.Error("failed to list cryptocurrencies", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return coins, nil
}

func strPtr(s string) *string { return &s }

// SeedDefaults inserts the baseline reference rows if they are missing.
func (s *LookupService) SeedDefaults(ctx context.Context) error {
	categories := []models.Category{
		{ID: uuid.New().String(), Name: "Scam", Description: strPtr("Fraudulent schemes and fake investment offers"), Icon: "alert-triangle"},
		{ID: uuid.New().String(), Name: "Phishing", Description: strPtr("Credential theft via fake sites or messages"), Icon: "fish"},
		{ID: uuid.New().String(), Name: "Ransomware", Description: strPtr("Extortion payment collection addresses"), Icon: "lock"},
		{ID: uuid.New().String(), Name: "Hacking", Description: strPtr("Proceeds of exchange or wallet compromises"), Icon: "terminal"},
		{ID: uuid.New().String(), Name: "Darknet Market", Description: strPtr("Marketplace escrow and vendor wallets"), Icon: "eye-off"},
		{ID: uuid.New().String(), Name: "Other", Description: nil, Icon: "help-circle"},
	}

	coins := []models.Cryptocurrency{
		{ID: uuid.New().String(), Name: "Bitcoin", Symbol: "BTC", Icon: "bitcoin"},
		{ID: uuid.New().String(), Name: "Ethereum", Symbol: "ETH", Icon: "ethereum"},
		{ID: uuid.New().String(), Name: "Tether", Symbol: "USDT", Icon: "tether"},
		{ID: uuid.New().String(), Name: "Litecoin", Symbol: "LTC", Icon: "litecoin"},
		{ID: uuid.New().String(), Name: "Monero", Symbol: "XMR", Icon: "monero"},
		{ID: uuid.New().String(), Name: "Tron", Symbol: "TRX", Icon: "tron"},
	}

	if err := s.repo.SeedCategories(ctx, categories); err != nil {
		return err
	}
	return s.repo.SeedCryptocurrencies(ctx, coins)
}
